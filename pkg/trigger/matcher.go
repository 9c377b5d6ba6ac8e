// Package trigger decides whether a domain event matches a rule's trigger.
package trigger

import (
	"log/slog"
	"slices"

	"github.com/taskdeck/taskdeck/pkg/events"
	"github.com/taskdeck/taskdeck/pkg/models"
)

type Matcher struct {
	logger *slog.Logger
}

func NewMatcher(logger *slog.Logger) *Matcher {
	return &Matcher{
		logger: logger.With("module", "trigger_matcher"),
	}
}

// Matches reports whether event satisfies spec. Type equality is checked
// first; only status-change and tag triggers carry further filters.
//
// Filter semantics: a nil set is unconstrained and matches any value. An
// empty non-nil set matches nothing — the builder stores "cleared to empty"
// and "never configured" differently, and that distinction is preserved here.
func (m *Matcher) Matches(spec models.TriggerSpec, event events.DomainEvent) bool {
	if spec.Type != event.Trigger {
		return false
	}

	switch spec.Type {
	case models.TriggerStatusChanged:
		return m.matchStatusChange(spec.Config, event)
	case models.TriggerTagAdded, models.TriggerTagRemoved:
		return m.matchTag(spec.Config, event)
	default:
		return true
	}
}

func (m *Matcher) matchStatusChange(config *models.TriggerConfig, event events.DomainEvent) bool {
	if config == nil {
		return true
	}

	if config.FromStatusIDs != nil && !slices.Contains(config.FromStatusIDs, event.PreviousStatusID) {
		m.logger.Debug("Status change filter rejected event",
			"event_id", event.ID,
			"previous_status", event.PreviousStatusID)

		return false
	}

	if config.ToStatusIDs != nil && !slices.Contains(config.ToStatusIDs, event.NewStatusID) {
		m.logger.Debug("Status change filter rejected event",
			"event_id", event.ID,
			"new_status", event.NewStatusID)

		return false
	}

	return true
}

func (m *Matcher) matchTag(config *models.TriggerConfig, event events.DomainEvent) bool {
	if config == nil || config.TagIDs == nil {
		return true
	}

	return slices.Contains(config.TagIDs, event.TagID)
}
