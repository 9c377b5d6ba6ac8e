package trigger

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/pkg/events"
	"github.com/taskdeck/taskdeck/pkg/models"
)

func newMatcher() *Matcher {
	return NewMatcher(slog.Default())
}

func statusEvent(from, to string) events.DomainEvent {
	return events.DomainEvent{
		ID:               "evt-1",
		Trigger:          models.TriggerStatusChanged,
		PreviousStatusID: from,
		NewStatusID:      to,
	}
}

func TestMatchesRequiresTypeEquality(t *testing.T) {
	m := newMatcher()

	spec := models.TriggerSpec{Type: models.TriggerTaskCreated}
	event := events.DomainEvent{Trigger: models.TriggerTaskUpdated}

	assert.False(t, m.Matches(spec, event))
}

func TestMatchesTypeOnlyTriggers(t *testing.T) {
	m := newMatcher()

	spec := models.TriggerSpec{Type: models.TriggerTaskCreated}
	event := events.DomainEvent{Trigger: models.TriggerTaskCreated}

	assert.True(t, m.Matches(spec, event))
}

func TestMatchesStatusChangeNilConfigIsUnconstrained(t *testing.T) {
	m := newMatcher()

	spec := models.TriggerSpec{Type: models.TriggerStatusChanged}

	assert.True(t, m.Matches(spec, statusEvent("open", "done")))
}

func TestMatchesStatusChangeNilSetMatchesAny(t *testing.T) {
	m := newMatcher()

	spec := models.TriggerSpec{
		Type:   models.TriggerStatusChanged,
		Config: &models.TriggerConfig{ToStatusIDs: []string{"done"}},
	}

	// from_status_ids is nil: any previous status matches.
	assert.True(t, m.Matches(spec, statusEvent("open", "done")))
	assert.True(t, m.Matches(spec, statusEvent("review", "done")))
	assert.False(t, m.Matches(spec, statusEvent("open", "closed")))
}

func TestMatchesStatusChangeEmptySetMatchesNothing(t *testing.T) {
	m := newMatcher()

	spec := models.TriggerSpec{
		Type:   models.TriggerStatusChanged,
		Config: &models.TriggerConfig{FromStatusIDs: []string{}},
	}

	// An explicitly cleared set is not the same as an absent one.
	assert.False(t, m.Matches(spec, statusEvent("open", "done")))
}

func TestMatchesStatusChangeEmptySetSurvivesSerialization(t *testing.T) {
	m := newMatcher()

	spec := models.TriggerSpec{
		Type:   models.TriggerStatusChanged,
		Config: &models.TriggerConfig{FromStatusIDs: []string{}},
	}

	raw, err := json.Marshal(spec)
	require.NoError(t, err)

	var loaded models.TriggerSpec
	require.NoError(t, json.Unmarshal(raw, &loaded))

	// A cleared set must still match nothing after a marshal round trip,
	// and an absent one must stay unconstrained.
	assert.False(t, m.Matches(loaded, statusEvent("open", "done")))
	assert.Nil(t, loaded.Config.ToStatusIDs)
	assert.NotNil(t, loaded.Config.FromStatusIDs)
}

func TestMatchesStatusChangeBothFilters(t *testing.T) {
	m := newMatcher()

	spec := models.TriggerSpec{
		Type: models.TriggerStatusChanged,
		Config: &models.TriggerConfig{
			FromStatusIDs: []string{"open", "review"},
			ToStatusIDs:   []string{"done"},
		},
	}

	assert.True(t, m.Matches(spec, statusEvent("review", "done")))
	assert.False(t, m.Matches(spec, statusEvent("blocked", "done")))
	assert.False(t, m.Matches(spec, statusEvent("open", "archived")))
}

func TestMatchesTagFilter(t *testing.T) {
	m := newMatcher()

	event := events.DomainEvent{
		ID:      "evt-2",
		Trigger: models.TriggerTagAdded,
		TagID:   "urgent",
	}

	unconstrained := models.TriggerSpec{Type: models.TriggerTagAdded}
	assert.True(t, m.Matches(unconstrained, event))

	matching := models.TriggerSpec{
		Type:   models.TriggerTagAdded,
		Config: &models.TriggerConfig{TagIDs: []string{"urgent", "bug"}},
	}
	assert.True(t, m.Matches(matching, event))

	missing := models.TriggerSpec{
		Type:   models.TriggerTagAdded,
		Config: &models.TriggerConfig{TagIDs: []string{"bug"}},
	}
	assert.False(t, m.Matches(missing, event))

	cleared := models.TriggerSpec{
		Type:   models.TriggerTagAdded,
		Config: &models.TriggerConfig{TagIDs: []string{}},
	}
	assert.False(t, m.Matches(cleared, event))
}
