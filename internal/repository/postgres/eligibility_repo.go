package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type eligibilityRepo struct {
	db *pgxpool.Pool
}

// NewEligibilityRepository creates a new eligibility repository
func NewEligibilityRepository(db *pgxpool.Pool) domain.EligibilityRepository {
	return &eligibilityRepo{db: db}
}

const eligibleColumns = `
	id, recruiter_id, candidate_id, offer_id, candidate_name, candidate_email,
	position_title, company_name, application_status, added_at, has_appointment`

func scanEligible(row pgx.Row) (*domain.EligibleCandidate, error) {
	var c domain.EligibleCandidate
	err := row.Scan(
		&c.ID, &c.RecruiterID, &c.CandidateID, &c.OfferID, &c.CandidateName, &c.CandidateEmail,
		&c.PositionTitle, &c.CompanyName, &c.ApplicationStatus, &c.AddedAt, &c.HasAppointment,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Insert adds the record unless (recruiter_id, candidate_id, offer_id) already exists
func (r *eligibilityRepo) Insert(ctx context.Context, c *domain.EligibleCandidate) (bool, error) {
	query := `
		INSERT INTO eligible_candidates (
			recruiter_id, candidate_id, offer_id, candidate_name, candidate_email,
			position_title, company_name, application_status, added_at, has_appointment
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
		ON CONFLICT (recruiter_id, candidate_id, offer_id) DO NOTHING
		RETURNING id`

	if c.AddedAt.IsZero() {
		c.AddedAt = time.Now().UTC()
	}

	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		c.RecruiterID, c.CandidateID, c.OfferID, c.CandidateName, c.CandidateEmail,
		c.PositionTitle, c.CompanyName, c.ApplicationStatus, c.AddedAt,
	).Scan(&c.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert eligible candidate: %w", err)
	}
	return true, nil
}

// ListByRecruiter returns the recruiter's eligible candidates, newest first
func (r *eligibilityRepo) ListByRecruiter(ctx context.Context, recruiterID int64) ([]domain.EligibleCandidate, error) {
	query := `SELECT ` + eligibleColumns + `
		FROM eligible_candidates
		WHERE recruiter_id = $1
		ORDER BY added_at DESC, id DESC`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, recruiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := []domain.EligibleCandidate{}
	for rows.Next() {
		c, err := scanEligible(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, *c)
	}
	return candidates, rows.Err()
}

func (r *eligibilityRepo) Get(ctx context.Context, recruiterID, candidateID, offerID int64) (*domain.EligibleCandidate, error) {
	return r.get(ctx, recruiterID, candidateID, offerID, "")
}

// GetForUpdate locks the eligibility row until the surrounding transaction ends
func (r *eligibilityRepo) GetForUpdate(ctx context.Context, recruiterID, candidateID, offerID int64) (*domain.EligibleCandidate, error) {
	return r.get(ctx, recruiterID, candidateID, offerID, " FOR UPDATE")
}

func (r *eligibilityRepo) get(ctx context.Context, recruiterID, candidateID, offerID int64, lock string) (*domain.EligibleCandidate, error) {
	query := `SELECT ` + eligibleColumns + `
		FROM eligible_candidates
		WHERE recruiter_id = $1 AND candidate_id = $2 AND offer_id = $3` + lock

	c, err := scanEligible(database.Conn(ctx, r.db).QueryRow(ctx, query, recruiterID, candidateID, offerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

func (r *eligibilityRepo) MarkHasAppointment(ctx context.Context, recruiterID, candidateID, offerID int64) error {
	query := `
		UPDATE eligible_candidates SET has_appointment = TRUE
		WHERE recruiter_id = $1 AND candidate_id = $2 AND offer_id = $3`
	result, err := database.Conn(ctx, r.db).Exec(ctx, query, recruiterID, candidateID, offerID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
