package ledger

import (
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeJournal = "Journal"

// Event type constants
const (
	EventTypeJournalPosted = "JournalPosted"
)

// JournalPostedEvent is raised when a balanced journal is created
type JournalPostedEvent struct {
	shared.BaseDomainEvent
	JournalID   uuid.UUID `json:"journal_id"`
	Reference   string    `json:"reference"`
	AmountUnits int64     `json:"amount_units"`
}

// NewJournalPostedEvent creates a new JournalPostedEvent
func NewJournalPostedEvent(journal *Journal, amount valueobject.Money) *JournalPostedEvent {
	return &JournalPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalPosted, AggregateTypeJournal, journal.ID, journal.TenantID),
		JournalID:       journal.ID,
		Reference:       journal.Reference,
		AmountUnits:     amount.Units(),
	}
}

// EventType returns the event type name
func (e *JournalPostedEvent) EventType() string {
	return EventTypeJournalPosted
}
