// Package persistence contains helpers shared by store implementations.
package persistence

import (
	"context"
	"fmt"
	"time"

	"example.com/reactivities/internal/domain"
)

// Seeder is the subset of a store needed to load sample data.
type Seeder interface {
	List(ctx context.Context) ([]domain.Activity, error)
	Insert(ctx context.Context, activity domain.Activity) (int64, error)
}

// Seed inserts SampleActivities when the store is empty. It returns the
// number of activities the store accepted; ids it refuses are skipped.
func Seed(ctx context.Context, store Seeder, now time.Time) (int, error) {
	existing, err := store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: list activities: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	inserted := 0
	for _, activity := range SampleActivities(now) {
		rows, err := store.Insert(ctx, activity)
		if err != nil {
			return inserted, fmt.Errorf("seed: insert %q: %w", activity.Title, err)
		}
		if rows > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// SampleActivities returns a fixed set of activities dated relative to now.
func SampleActivities(now time.Time) []domain.Activity {
	day := func(offset int) time.Time {
		return now.UTC().Truncate(time.Hour).AddDate(0, 0, offset)
	}
	return []domain.Activity{
		{ID: "b3c1a5a0-0d41-4b0e-9d4e-4a1f3d0e0001", Title: "Past Activity 1", Date: day(-60), Description: "Activity 2 months ago", Category: "drinks", City: "London", Venue: "The Lamb and Flag, 33, Rose Street, Seven Dials, Covent Garden, London", Latitude: 51.51171665, Longitude: -0.1256611057818921},
		{ID: "b3c1a5a0-0d41-4b0e-9d4e-4a1f3d0e0002", Title: "Past Activity 2", Date: day(-30), Description: "Activity 1 month ago", Category: "culture", City: "Paris", Venue: "Louvre Museum, Rue Saint-Honoré, Quartier du Palais Royal, Paris", Latitude: 48.8611473, Longitude: 2.33802768704666},
		{ID: "b3c1a5a0-0d41-4b0e-9d4e-4a1f3d0e0003", Title: "Future Activity 1", Date: day(30), Description: "Activity 1 month in future", Category: "culture", City: "London", Venue: "Natural History Museum", Latitude: 51.496510900000004, Longitude: -0.17600190725447445},
		{ID: "b3c1a5a0-0d41-4b0e-9d4e-4a1f3d0e0004", Title: "Future Activity 2", Date: day(60), Description: "Activity 2 months in future", Category: "music", City: "London", Venue: "The O2", Latitude: 51.502936649999995, Longitude: 0.0032029278126681844},
		{ID: "b3c1a5a0-0d41-4b0e-9d4e-4a1f3d0e0005", Title: "Future Activity 3", Date: day(90), Description: "Activity 3 months in future", Category: "drinks", City: "London", Venue: "The Mayflower", Latitude: 51.501778, Longitude: -0.053577},
		{ID: "b3c1a5a0-0d41-4b0e-9d4e-4a1f3d0e0006", Title: "Future Activity 4", Date: day(120), Description: "Activity 4 months in future", Category: "drinks", City: "London", Venue: "The Blackfriar", Latitude: 51.512146650000005, Longitude: -0.10364680647106028},
		{ID: "b3c1a5a0-0d41-4b0e-9d4e-4a1f3d0e0007", Title: "Future Activity 5", Date: day(150), Description: "Activity 5 months in future", Category: "culture", City: "London", Venue: "Sherlock Holmes Museum, 221b, Baker Street, Marylebone, London", Latitude: 51.5237629, Longitude: -0.1584743},
		{ID: "b3c1a5a0-0d41-4b0e-9d4e-4a1f3d0e0008", Title: "Future Activity 6", Date: day(180), Description: "Activity 6 months in future", Category: "music", City: "London", Venue: "Roundhouse, Chalk Farm Road, Camden, London", Latitude: 51.5432505, Longitude: -0.15197608174931165},
		{ID: "b3c1a5a0-0d41-4b0e-9d4e-4a1f3d0e0009", Title: "Future Activity 7", Date: day(210), Description: "Activity 7 months in future", Category: "travel", City: "London", Venue: "River Thames, England", Latitude: 51.5575525, Longitude: -0.781404},
		{ID: "b3c1a5a0-0d41-4b0e-9d4e-4a1f3d0e0010", Title: "Future Activity 8", Date: day(240), Description: "Activity 8 months in future", Category: "film", City: "London", Venue: "River Thames, England", Latitude: 51.5575525, Longitude: -0.781404},
	}
}
