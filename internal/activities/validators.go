package activities

import (
	"time"

	"example.com/reactivities/internal/validation"
)

const maxTitleLength = 100

func baseValidator() *validation.Validator[BaseActivityDto] {
	return validation.New[BaseActivityDto]().
		NotEmpty("title", func(d BaseActivityDto) string { return d.Title }, "Title is required.").
		MaxLength("title", func(d BaseActivityDto) string { return d.Title }, maxTitleLength, "Title must not exceed 100 characters.").
		NotEmpty("description", func(d BaseActivityDto) string { return d.Description }, "Description is required.").
		NotZeroTime("date", func(d BaseActivityDto) time.Time { return d.Date.Time }, "Date is required.").
		NotEmpty("category", func(d BaseActivityDto) string { return d.Category }, "Category is required.").
		NotEmpty("city", func(d BaseActivityDto) string { return d.City }, "City is required.").
		NotEmpty("venue", func(d BaseActivityDto) string { return d.Venue }, "Venue is required.")
}

// RegisterValidators installs the rule sets for every activity request kind.
func RegisterValidators(registry *validation.Registry) {
	create := validation.New[CreateCommand]()
	validation.Include(create, baseValidator(), func(c CreateCommand) BaseActivityDto { return c.Activity.BaseActivityDto })
	validation.Register(registry, create)

	edit := validation.New[EditCommand]().
		NotEmpty("id", func(c EditCommand) string { return c.Activity.ID }, "Activity ID is required.")
	validation.Include(edit, baseValidator(), func(c EditCommand) BaseActivityDto { return c.Activity.BaseActivityDto })
	validation.Register(registry, edit)

	validation.Register(registry, validation.New[DetailsQuery]().
		NotEmpty("id", func(q DetailsQuery) string { return q.ID }, "Activity ID is required."))

	validation.Register(registry, validation.New[DeleteCommand]().
		NotEmpty("id", func(c DeleteCommand) string { return c.ID }, "Activity ID is required."))
}
