package outbox

import (
	"time"

	"example.com/reactivities/internal/domain"
)

// Event types written to the outbox.
const (
	EventActivityCreated = "activity.created"
	EventActivityUpdated = "activity.updated"
	EventActivityDeleted = "activity.deleted"
)

// Event is one pending outbox entry.
type Event struct {
	AggregateID string
	Type        string
	Payload     any
}

// ActivityPayload is emitted when an activity is created or updated.
type ActivityPayload struct {
	ActivityID  string    `json:"activity_id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	IsCanceled  bool      `json:"is_canceled"`
	City        string    `json:"city"`
	Venue       string    `json:"venue"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
}

// NewActivityPayload snapshots an activity for publication.
func NewActivityPayload(a domain.Activity) ActivityPayload {
	return ActivityPayload{
		ActivityID:  a.ID,
		Title:       a.Title,
		Date:        a.Date,
		Description: a.Description,
		Category:    a.Category,
		IsCanceled:  a.IsCanceled,
		City:        a.City,
		Venue:       a.Venue,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
	}
}

// ActivityDeleted is emitted when an activity is removed.
type ActivityDeleted struct {
	ActivityID string    `json:"activity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
