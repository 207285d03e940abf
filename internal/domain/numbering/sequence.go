package numbering

import (
	"fmt"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentType identifies a document series with its own reference sequence
type DocumentType string

const (
	DocumentTypeSale     DocumentType = "SALE"
	DocumentTypeTransfer DocumentType = "TRANSFER"
	DocumentTypeJournal  DocumentType = "JOURNAL"
	DocumentTypeExpense  DocumentType = "EXPENSE"
	DocumentTypePayment  DocumentType = "PAYMENT"
)

// prefixes maps each document type to its human-readable code prefix
var prefixes = map[DocumentType]string{
	DocumentTypeSale:     "INV",
	DocumentTypeTransfer: "TRF",
	DocumentTypeJournal:  "JRN",
	DocumentTypeExpense:  "EXP",
	DocumentTypePayment:  "PAY",
}

// IsValid reports whether the document type is known
func (t DocumentType) IsValid() bool {
	_, ok := prefixes[t]
	return ok
}

// Prefix returns the code prefix for the document type
func (t DocumentType) Prefix() string {
	return prefixes[t]
}

// DocumentSequence is the durable counter behind reference number generation.
// One row exists per (tenant, document type, year); LastNumber is only ever
// advanced through an atomic increment, which is what makes concurrently
// issued codes collision-free. Sequences are gap-tolerant: a rolled-back
// consumer burns the number it drew.
type DocumentSequence struct {
	shared.BaseEntity
	TenantID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_document_sequences_scope,priority:1"`
	DocumentType DocumentType `gorm:"size:20;not null;uniqueIndex:idx_document_sequences_scope,priority:2"`
	Year         int          `gorm:"not null;uniqueIndex:idx_document_sequences_scope,priority:3"`
	LastNumber   int64        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentSequence) TableName() string {
	return "document_sequences"
}

// FormatCode renders a drawn sequence number as PREFIX-YYYY-NNNNN.
// The numeric suffix is zero-padded to five digits but not truncated,
// so the series keeps working past 99999 within a year.
func FormatCode(docType DocumentType, year int, number int64) string {
	return fmt.Sprintf("%s-%d-%05d", docType.Prefix(), year, number)
}
