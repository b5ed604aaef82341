package events

import (
	"encoding/json"
	"time"
)

const (
	MonthCreated = "month.created"
	MonthClosed  = "month.closed"
	MonthDeleted = "month.deleted"
)

// MonthEvent is the payload published for month lifecycle changes.
type MonthEvent struct {
	Type       string    `json:"type"`
	MonthID    string    `json:"monthId"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewMonthEvent(eventType, monthID, name string) MonthEvent {
	return MonthEvent{
		Type:       eventType,
		MonthID:    monthID,
		Name:       name,
		OccurredAt: time.Now().UTC(),
	}
}

func (e MonthEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
