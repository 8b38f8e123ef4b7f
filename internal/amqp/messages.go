package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event kinds carried on the export queue.
const (
	KindStatementGenerated = "statement_generated"
	KindRatiosComputed     = "ratios_computed"
)

// ExportEvent is a lightweight notification that a statement or ratio set
// was persisted. It carries only the natural key; the worker fetches the
// full payload from the database.
type ExportEvent struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	StatementType string    `json:"statement_type,omitempty"`
	StartDate     string    `json:"start_date,omitempty"`
	EndDate       string    `json:"end_date,omitempty"`
	AsOfDate      string    `json:"as_of_date,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewStatementGeneratedEvent builds the event for a persisted statement.
func NewStatementGeneratedEvent(statementType, startDate, endDate string) *ExportEvent {
	return &ExportEvent{
		ID:            uuid.NewString(),
		Kind:          KindStatementGenerated,
		StatementType: statementType,
		StartDate:     startDate,
		EndDate:       endDate,
		Timestamp:     time.Now(),
	}
}

// NewRatiosComputedEvent builds the event for a persisted ratio set.
func NewRatiosComputedEvent(asOfDate string) *ExportEvent {
	return &ExportEvent{
		ID:        uuid.NewString(),
		Kind:      KindRatiosComputed,
		AsOfDate:  asOfDate,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *ExportEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExportEventFromJSON parses an event from JSON bytes.
func ExportEventFromJSON(data []byte) (*ExportEvent, error) {
	var e ExportEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Kind {
	case KindStatementGenerated, KindRatiosComputed:
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return &e, nil
}
