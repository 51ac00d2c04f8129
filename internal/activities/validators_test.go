package activities

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/reactivities/internal/validation"
)

func TestEditWithEmptyIDIsRejected(t *testing.T) {
	registry := validation.NewRegistry()
	RegisterValidators(registry)

	err := registry.Validate(EditCommand{Activity: EditActivityDto{BaseActivityDto: sampleDto()}})
	require.NotNil(t, err)
	assert.Equal(t, []string{"Activity ID is required."}, err.Fields["id"])
}

func TestCreateReportsEveryMissingField(t *testing.T) {
	registry := validation.NewRegistry()
	RegisterValidators(registry)

	err := registry.Validate(CreateCommand{})
	require.NotNil(t, err)
	for _, field := range []string{"title", "description", "date", "category", "city", "venue"} {
		assert.Contains(t, err.Fields, field)
	}
	assert.NotContains(t, err.Fields, "latitude")
}

func TestTitleLengthLimit(t *testing.T) {
	registry := validation.NewRegistry()
	RegisterValidators(registry)

	dto := sampleDto()
	dto.Title = strings.Repeat("x", maxTitleLength+1)
	err := registry.Validate(CreateCommand{Activity: CreateActivityDto{BaseActivityDto: dto}})
	require.NotNil(t, err)
	assert.Equal(t, []string{"Title must not exceed 100 characters."}, err.Fields["title"])
}

func TestValidCreatePasses(t *testing.T) {
	registry := validation.NewRegistry()
	RegisterValidators(registry)

	assert.Nil(t, registry.Validate(CreateCommand{Activity: CreateActivityDto{BaseActivityDto: sampleDto()}}))
	assert.Nil(t, registry.Validate(ListQuery{}))
}
