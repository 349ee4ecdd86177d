package sqlite

import (
	"context"
	"errors"
	"time"

	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type eligibilityRepo struct {
	db *gorm.DB
}

// NewEligibilityRepository creates a GORM-backed eligibility repository
func NewEligibilityRepository(db *gorm.DB) domain.EligibilityRepository {
	return &eligibilityRepo{db: db}
}

func (r *eligibilityRepo) Insert(ctx context.Context, c *domain.EligibleCandidate) (bool, error) {
	if c.AddedAt.IsZero() {
		c.AddedAt = time.Now().UTC()
	}
	row := eligibleCandidateRow{
		RecruiterID:       c.RecruiterID,
		CandidateID:       c.CandidateID,
		OfferID:           c.OfferID,
		CandidateName:     c.CandidateName,
		CandidateEmail:    c.CandidateEmail,
		PositionTitle:     c.PositionTitle,
		CompanyName:       c.CompanyName,
		ApplicationStatus: c.ApplicationStatus,
		AddedAt:           c.AddedAt,
		HasAppointment:    c.HasAppointment,
	}

	result := database.GormConn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	c.ID = row.ID
	return true, nil
}

func (r *eligibilityRepo) ListByRecruiter(ctx context.Context, recruiterID int64) ([]domain.EligibleCandidate, error) {
	var rows []eligibleCandidateRow
	result := database.GormConn(ctx, r.db).
		Where("recruiter_id = ?", recruiterID).
		Order("added_at DESC, id DESC").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	out := make([]domain.EligibleCandidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *eligibilityRepo) Get(ctx context.Context, recruiterID, candidateID, offerID int64) (*domain.EligibleCandidate, error) {
	var row eligibleCandidateRow
	result := database.GormConn(ctx, r.db).
		First(&row, "recruiter_id = ? AND candidate_id = ? AND offer_id = ?", recruiterID, candidateID, offerID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, result.Error
	}
	c := row.toDomain()
	return &c, nil
}

// GetForUpdate is Get: the single SQLite connection already serializes transactions.
func (r *eligibilityRepo) GetForUpdate(ctx context.Context, recruiterID, candidateID, offerID int64) (*domain.EligibleCandidate, error) {
	return r.Get(ctx, recruiterID, candidateID, offerID)
}

func (r *eligibilityRepo) MarkHasAppointment(ctx context.Context, recruiterID, candidateID, offerID int64) error {
	result := database.GormConn(ctx, r.db).
		Model(&eligibleCandidateRow{}).
		Where("recruiter_id = ? AND candidate_id = ? AND offer_id = ?", recruiterID, candidateID, offerID).
		Update("has_appointment", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
