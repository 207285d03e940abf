package numbering

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SequenceRepository issues reference numbers. Implementations must make
// NextNumber atomic with respect to concurrent callers on the same
// (tenant, docType, year) scope; two callers must never observe the same
// value. The restart at 00001 each year falls out of the year key.
type SequenceRepository interface {
	// NextNumber advances and returns the counter for the scope,
	// creating it at 1 when no row exists yet.
	NextNumber(ctx context.Context, tenantID uuid.UUID, docType DocumentType, year int) (int64, error)
}

// Generator draws formatted reference codes from a SequenceRepository
type Generator struct {
	sequences SequenceRepository
	now       func() time.Time
}

// NewGenerator creates a reference code generator
func NewGenerator(sequences SequenceRepository) *Generator {
	return &Generator{sequences: sequences, now: time.Now}
}

// NewGeneratorWithClock creates a generator with an injected clock for tests
func NewGeneratorWithClock(sequences SequenceRepository, now func() time.Time) *Generator {
	return &Generator{sequences: sequences, now: now}
}

// Next returns the next code for the tenant and document type,
// e.g. INV-2026-00042.
func (g *Generator) Next(ctx context.Context, tenantID uuid.UUID, docType DocumentType) (string, error) {
	year := g.now().Year()
	n, err := g.sequences.NextNumber(ctx, tenantID, docType, year)
	if err != nil {
		return "", err
	}
	return FormatCode(docType, year, n), nil
}
