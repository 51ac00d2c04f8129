package activities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"example.com/reactivities/internal/domain"
	"example.com/reactivities/internal/mediator"
)

// ListQuery asks for every activity.
type ListQuery struct{}

// DetailsQuery asks for one activity by id.
type DetailsQuery struct {
	ID string
}

// CreateCommand creates an activity from client input.
type CreateCommand struct {
	Activity CreateActivityDto
}

// EditCommand replaces the mutable fields of an existing activity.
type EditCommand struct {
	Activity EditActivityDto
}

// DeleteCommand removes an activity by id.
type DeleteCommand struct {
	ID string
}

func (ListQuery) Kind() mediator.Kind     { return mediator.ListActivities }
func (DetailsQuery) Kind() mediator.Kind  { return mediator.GetActivity }
func (CreateCommand) Kind() mediator.Kind { return mediator.CreateActivity }
func (EditCommand) Kind() mediator.Kind   { return mediator.EditActivity }
func (DeleteCommand) Kind() mediator.Kind { return mediator.DeleteActivity }

// BaseActivityDto holds the fields shared by create and edit payloads.
type BaseActivityDto struct {
	Title       string  `json:"title"`
	Date        Date    `json:"date"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	City        string  `json:"city"`
	Venue       string  `json:"venue"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Fields converts the payload into domain input.
func (d BaseActivityDto) Fields() domain.ActivityFields {
	return domain.ActivityFields{
		Title:       d.Title,
		Date:        d.Date.Time,
		Description: d.Description,
		Category:    d.Category,
		City:        d.City,
		Venue:       d.Venue,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
	}
}

// CreateActivityDto is the body of POST /api/activities.
type CreateActivityDto struct {
	BaseActivityDto
}

// EditActivityDto is the body of PUT /api/activities.
type EditActivityDto struct {
	ID string `json:"id"`
	BaseActivityDto
	IsCanceled bool `json:"isCanceled"`
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// Date accepts RFC 3339 timestamps as well as bare calendar dates.
type Date struct {
	time.Time
}

// NewDate wraps t.
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			d.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised date %q", raw)
}
