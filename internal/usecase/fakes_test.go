package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"talentlink-appointments/internal/domain"

	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory Transactor + repositories. Transactions are
// serialized and work on a copy that is only published on commit.
type memStore struct {
	mu        sync.Mutex
	committed *memData

	// beforeSave runs inside SaveTransition, before the version check.
	beforeSave func(data *memData, appointmentID int64)
}

type eligibleKey struct{ recruiter, candidate, offer int64 }

type memData struct {
	nextID       int64
	eligible     map[eligibleKey]domain.EligibleCandidate
	appointments map[int64]domain.Appointment
}

type memTxKey struct{}

func newMemStore() *memStore {
	return &memStore{committed: &memData{
		eligible:     map[eligibleKey]domain.EligibleCandidate{},
		appointments: map[int64]domain.Appointment{},
	}}
}

func (d *memData) clone() *memData {
	out := &memData{
		nextID:       d.nextID,
		eligible:     make(map[eligibleKey]domain.EligibleCandidate, len(d.eligible)),
		appointments: make(map[int64]domain.Appointment, len(d.appointments)),
	}
	for k, v := range d.eligible {
		out.eligible[k] = v
	}
	for k, v := range d.appointments {
		out.appointments[k] = copyAppointment(v)
	}
	return out
}

func copyAppointment(a domain.Appointment) domain.Appointment {
	a.ProposedSlots = append([]domain.AppointmentSlot(nil), a.ProposedSlots...)
	return a
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memTxKey{}).(*memData); ok {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.committed.clone()
	if err := fn(context.WithValue(ctx, memTxKey{}, work)); err != nil {
		return err
	}
	s.committed = work
	return nil
}

// run gives fn the transaction's data, or the committed data under the lock.
func (s *memStore) run(ctx context.Context, fn func(d *memData) error) error {
	if d, ok := ctx.Value(memTxKey{}).(*memData); ok {
		return fn(d)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.committed)
}

func (s *memStore) Eligibility() domain.EligibilityRepository { return memEligibility{s} }
func (s *memStore) Appointments() domain.AppointmentRepository {
	return memAppointments{s}
}

func (s *memStore) eligible(recruiterID, candidateID, offerID int64) (domain.EligibleCandidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.committed.eligible[eligibleKey{recruiterID, candidateID, offerID}]
	return c, ok
}

func (s *memStore) appointment(id int64) (domain.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.committed.appointments[id]
	return copyAppointment(a), ok
}

func (s *memStore) appointmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.committed.appointments)
}

type memEligibility struct{ s *memStore }

func (r memEligibility) Insert(ctx context.Context, c *domain.EligibleCandidate) (bool, error) {
	var created bool
	err := r.s.run(ctx, func(d *memData) error {
		key := eligibleKey{c.RecruiterID, c.CandidateID, c.OfferID}
		if _, exists := d.eligible[key]; exists {
			return nil
		}
		d.nextID++
		c.ID = d.nextID
		d.eligible[key] = *c
		created = true
		return nil
	})
	return created, err
}

func (r memEligibility) ListByRecruiter(ctx context.Context, recruiterID int64) ([]domain.EligibleCandidate, error) {
	out := []domain.EligibleCandidate{}
	err := r.s.run(ctx, func(d *memData) error {
		for k, v := range d.eligible {
			if k.recruiter == recruiterID {
				out = append(out, v)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, err
}

func (r memEligibility) Get(ctx context.Context, recruiterID, candidateID, offerID int64) (*domain.EligibleCandidate, error) {
	var out *domain.EligibleCandidate
	err := r.s.run(ctx, func(d *memData) error {
		c, ok := d.eligible[eligibleKey{recruiterID, candidateID, offerID}]
		if !ok {
			return domain.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r memEligibility) GetForUpdate(ctx context.Context, recruiterID, candidateID, offerID int64) (*domain.EligibleCandidate, error) {
	return r.Get(ctx, recruiterID, candidateID, offerID)
}

func (r memEligibility) MarkHasAppointment(ctx context.Context, recruiterID, candidateID, offerID int64) error {
	return r.s.run(ctx, func(d *memData) error {
		key := eligibleKey{recruiterID, candidateID, offerID}
		c, ok := d.eligible[key]
		if !ok {
			return domain.ErrNotFound
		}
		c.HasAppointment = true
		d.eligible[key] = c
		return nil
	})
}

type memAppointments struct{ s *memStore }

func (r memAppointments) Create(ctx context.Context, appt *domain.Appointment) error {
	return r.s.run(ctx, func(d *memData) error {
		d.nextID++
		appt.ID = d.nextID
		for i := range appt.ProposedSlots {
			d.nextID++
			appt.ProposedSlots[i].ID = d.nextID
			appt.ProposedSlots[i].AppointmentID = appt.ID
		}
		d.appointments[appt.ID] = copyAppointment(*appt)
		return nil
	})
}

func (r memAppointments) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	var out *domain.Appointment
	err := r.s.run(ctx, func(d *memData) error {
		a, ok := d.appointments[id]
		if !ok {
			return domain.ErrNotFound
		}
		cp := copyAppointment(a)
		out = &cp
		return nil
	})
	return out, err
}

func (r memAppointments) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.GetByID(ctx, id)
}

func (r memAppointments) SaveTransition(ctx context.Context, appt *domain.Appointment) error {
	return r.s.run(ctx, func(d *memData) error {
		if r.s.beforeSave != nil {
			r.s.beforeSave(d, appt.ID)
		}
		stored, ok := d.appointments[appt.ID]
		if !ok || stored.Version != appt.Version {
			return domain.ErrConcurrentUpdate
		}
		appt.Version++
		d.appointments[appt.ID] = copyAppointment(*appt)
		return nil
	})
}

func (r memAppointments) ListByRecruiter(ctx context.Context, recruiterID int64) ([]domain.Appointment, error) {
	return r.list(ctx, func(a domain.Appointment) bool { return a.RecruiterID == recruiterID })
}

func (r memAppointments) ListByCandidate(ctx context.Context, candidateID int64) ([]domain.Appointment, error) {
	return r.list(ctx, func(a domain.Appointment) bool { return a.CandidateID == candidateID })
}

func (r memAppointments) list(ctx context.Context, keep func(domain.Appointment) bool) ([]domain.Appointment, error) {
	out := []domain.Appointment{}
	err := r.s.run(ctx, func(d *memData) error {
		for _, a := range d.appointments {
			if keep(a) {
				out = append(out, copyAppointment(a))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, err
}

// MockNotifier records calls to the notification port
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendProposalEmail(ctx context.Context, email domain.ProposalEmail) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockNotifier) SendFinalEmail(ctx context.Context, email domain.FinalEmail) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockNotifier) StartConversation(ctx context.Context, candidateID, recruiterID, offerID int64) (string, error) {
	args := m.Called(ctx, candidateID, recruiterID, offerID)
	return args.String(0), args.Error(1)
}

func (m *MockNotifier) PostMessage(ctx context.Context, conversationID string, senderID int64, text string) error {
	return m.Called(ctx, conversationID, senderID, text).Error(0)
}

// memQueue is an in-memory NotificationRetryQueue
type memQueue struct {
	mu   sync.Mutex
	jobs []domain.NotificationJob
}

func (q *memQueue) Enqueue(_ context.Context, job domain.NotificationJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memQueue) Dequeue(_ context.Context, n int) ([]domain.NotificationJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > len(q.jobs) {
		n = len(q.jobs)
	}
	out := append([]domain.NotificationJob(nil), q.jobs[:n]...)
	q.jobs = q.jobs[n:]
	return out, nil
}

func (q *memQueue) snapshot() []domain.NotificationJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.NotificationJob(nil), q.jobs...)
}

var (
	slotT0 = time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)
	slotT1 = time.Date(2026, 11, 2, 14, 0, 0, 0, time.UTC)
	slotT2 = time.Date(2026, 11, 3, 10, 30, 0, 0, time.UTC)
)
