// Package domain defines the Activity entity and the result envelope shared by
// every request handler.
package domain

import "time"

// Activity is the sole entity managed by the service.
type Activity struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	IsCanceled  bool      `json:"isCanceled"`
	City        string    `json:"city"`
	Venue       string    `json:"venue"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
}

// ActivityFields carries the mutable, client-supplied part of an Activity.
type ActivityFields struct {
	Title       string
	Date        time.Time
	Description string
	Category    string
	City        string
	Venue       string
	Latitude    float64
	Longitude   float64
}

// NewActivity builds an Activity with the given id from client fields.
// IsCanceled always starts false.
func NewActivity(id string, f ActivityFields) Activity {
	return Activity{
		ID:          id,
		Title:       f.Title,
		Date:        f.Date.UTC(),
		Description: f.Description,
		Category:    f.Category,
		City:        f.City,
		Venue:       f.Venue,
		Latitude:    f.Latitude,
		Longitude:   f.Longitude,
	}
}

// Replace overwrites every mutable field. The id is never touched.
func (a *Activity) Replace(f ActivityFields, canceled bool) {
	a.Title = f.Title
	a.Date = f.Date.UTC()
	a.Description = f.Description
	a.Category = f.Category
	a.IsCanceled = canceled
	a.City = f.City
	a.Venue = f.Venue
	a.Latitude = f.Latitude
	a.Longitude = f.Longitude
}
