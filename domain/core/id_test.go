package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

func TestIDIsEmpty(t *testing.T) {
	assert.True(t, ID("").IsEmpty())
	assert.False(t, ID("not-empty").IsEmpty())
}

func TestParseID(t *testing.T) {
	tests := []struct {
		input    string
		hasError bool
	}{
		{NewID().String(), false},
		{"  " + NewID().String() + " ", false},
		{"", true},
		{"   ", true},
		{"run-123", true},
	}

	for _, test := range tests {
		result, err := ParseID(test.input)
		if test.hasError {
			assert.Error(t, err, "input %q", test.input)
			assert.True(t, result.IsEmpty())
			continue
		}
		require.NoError(t, err, "input %q", test.input)
		assert.False(t, result.IsEmpty())
	}
}

func TestNewReport(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	r := NewReport(ReportGroupStats, map[string]int{"count": 3})

	assert.Equal(t, ReportGroupStats, r.Kind)
	assert.False(t, r.ID.IsEmpty())
	assert.True(t, before.Before(r.CreatedAt.Time()))

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded struct {
		ID        ID        `json:"id"`
		Kind      string    `json:"kind"`
		CreatedAt Timestamp `json:"created_at"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r.ID, decoded.ID)
	assert.Equal(t, "group_stats", decoded.Kind)
	assert.True(t, r.CreatedAt.Time().Equal(decoded.CreatedAt.Time()))
}

func TestDomainErrorClassification(t *testing.T) {
	assert.True(t, IsInputError(NewInvalidInputError("values", "empty")))
	assert.True(t, IsInputError(NewInsufficientDataError("Laid", 1, 2)))
	assert.True(t, IsDegenerateError(NewDegenerateInputError("x", "zero variance")))
	assert.False(t, IsDegenerateError(NewInvalidInputError("x", "NaN")))

	err := NewNotFoundError(ErrColumnNotFound, "torque")
	assert.True(t, IsNotFoundError(err))
	assert.True(t, errors.Is(err, ErrColumnNotFound))
	assert.Contains(t, err.Error(), `"torque"`)
}
