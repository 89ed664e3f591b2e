package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpinpoint/analytics-service/internal/models"
)

var (
	t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 = time.Date(2024, 3, 2, 11, 30, 0, 0, time.UTC)
)

func fixedCohort(n int) func() int {
	return func() int { return n }
}

func TestApplyUpsertCreate(t *testing.T) {
	incoming := models.Endpoint{
		Demographic: models.EndpointDemographic{Model: "Pixel"},
		Attributes:  map[string][]string{"interests": {"science"}},
	}

	got, err := applyUpsert(models.Endpoint{}, incoming, "c1", t0, fixedCohort(42))
	require.NoError(t, err)

	assert.Equal(t, "c1", got.Id)
	assert.Equal(t, t0.Format(time.RFC3339), got.CreationDate)
	assert.Equal(t, t0.Format(time.RFC3339), got.EffectiveDate)
	assert.Equal(t, 42, got.CohortId)
	assert.Equal(t, "Pixel", got.Demographic.Model)
	assert.Equal(t, []string{"science"}, got.Attributes["interests"])
}

func TestApplyUpsertUpdatePreservesCreateOnlyFields(t *testing.T) {
	current, err := applyUpsert(models.Endpoint{}, models.Endpoint{
		Demographic: models.EndpointDemographic{Model: "Pixel", Make: "Google"},
	}, "c1", t0, fixedCohort(42))
	require.NoError(t, err)

	// Second write tries to smuggle in new create-only values.
	got, err := applyUpsert(current, models.Endpoint{
		CohortId:     99,
		CreationDate: "2030-01-01T00:00:00Z",
		Demographic:  models.EndpointDemographic{Model: "iPhone"},
	}, "c1", t1, fixedCohort(7))
	require.NoError(t, err)

	assert.Equal(t, "c1", got.Id)
	assert.Equal(t, t0.Format(time.RFC3339), got.CreationDate, "CreationDate is set exactly once")
	assert.Equal(t, 42, got.CohortId, "CohortId is set exactly once")
	assert.Equal(t, t1.Format(time.RFC3339), got.EffectiveDate, "EffectiveDate advances on every write")
	assert.Equal(t, "iPhone", got.Demographic.Model, "scalar fields are rightmost-wins")
	assert.Equal(t, "Google", got.Demographic.Make, "untouched fields survive the merge")
}

func TestApplyUpsertReplacesArraysWholesale(t *testing.T) {
	current, err := applyUpsert(models.Endpoint{}, models.Endpoint{
		Attributes: map[string][]string{
			"interests": {"science", "music"},
			"teams":     {"red"},
		},
	}, "c1", t0, fixedCohort(1))
	require.NoError(t, err)

	got, err := applyUpsert(current, models.Endpoint{
		Attributes: map[string][]string{"interests": {"cooking"}},
	}, "c1", t1, fixedCohort(1))
	require.NoError(t, err)

	assert.Equal(t, []string{"cooking"}, got.Attributes["interests"], "arrays replaced, never concatenated")
	assert.Equal(t, []string{"red"}, got.Attributes["teams"], "unmentioned keys survive")
}

func TestApplyUpsertIdempotentUnderRepeatedInput(t *testing.T) {
	incoming := models.Endpoint{
		Demographic: models.EndpointDemographic{Model: "Pixel", Locale: "en-US"},
		Attributes:  map[string][]string{"interests": {"science"}},
		Metrics:     map[string]float64{"sessions": 3},
	}

	once, err := applyUpsert(models.Endpoint{}, incoming, "c1", t0, fixedCohort(5))
	require.NoError(t, err)
	twice, err := applyUpsert(once, incoming, "c1", t1, fixedCohort(5))
	require.NoError(t, err)

	// Same state as a single application, except the effective date moved.
	once.EffectiveDate = twice.EffectiveDate
	assert.Equal(t, once, twice)
}

func TestApplyUpsertMergesNestedMaps(t *testing.T) {
	current, err := applyUpsert(models.Endpoint{}, models.Endpoint{
		User: models.EndpointUser{
			UserId:         "u1",
			UserAttributes: map[string][]string{"plan": {"free"}},
		},
	}, "c1", t0, fixedCohort(1))
	require.NoError(t, err)

	got, err := applyUpsert(current, models.Endpoint{
		User: models.EndpointUser{
			UserAttributes: map[string][]string{"tier": {"gold"}},
		},
	}, "c1", t1, fixedCohort(1))
	require.NoError(t, err)

	assert.Equal(t, "u1", got.User.UserId)
	assert.Equal(t, []string{"free"}, got.User.UserAttributes["plan"])
	assert.Equal(t, []string{"gold"}, got.User.UserAttributes["tier"])
}
