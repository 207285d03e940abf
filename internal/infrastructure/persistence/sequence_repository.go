package persistence

import (
	"context"

	"github.com/retailcore/backend/internal/domain/numbering"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSequenceRepository implements numbering.SequenceRepository using a
// single atomic upsert, so concurrent callers on the same scope serialize on
// the row without a separate SELECT ... FOR UPDATE round trip.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// NextNumber advances and returns the counter for (tenant, docType, year),
// creating the row at 1 when none exists yet
func (r *GormSequenceRepository) NextNumber(ctx context.Context, tenantID uuid.UUID, docType numbering.DocumentType, year int) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO document_sequences (id, tenant_id, document_type, year, last_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, NOW(), NOW())
		ON CONFLICT (tenant_id, document_type, year)
		DO UPDATE SET last_number = document_sequences.last_number + 1, updated_at = NOW()
		RETURNING last_number`,
		uuid.New(), tenantID, docType, year,
	).Scan(&next).Error
	if err != nil {
		return 0, translatePgError(err)
	}
	return next, nil
}

var _ numbering.SequenceRepository = (*GormSequenceRepository)(nil)
