// Package condition evaluates a rule's ordered condition list against a task
// snapshot.
package condition

import (
	"log/slog"
	"slices"

	"github.com/taskdeck/taskdeck/pkg/models"
)

type Evaluator struct {
	logger *slog.Logger
}

func NewEvaluator(logger *slog.Logger) *Evaluator {
	return &Evaluator{
		logger: logger.With("module", "condition_evaluator"),
	}
}

// Evaluate folds the condition chain left to right. The logic flag on
// condition i combines the accumulated result with condition i+1; there is no
// grouping and no operator precedence — [A AND B OR C] is (A AND B) OR C.
// An empty chain is true: the rule fires on trigger match alone.
func (e *Evaluator) Evaluate(conditions []models.Condition, task *models.TaskSnapshot) bool {
	if len(conditions) == 0 {
		return true
	}

	result := e.evaluateSingle(conditions[0], task)

	for i := 1; i < len(conditions); i++ {
		current := e.evaluateSingle(conditions[i], task)

		if conditions[i-1].Logic == models.LogicOr {
			result = result || current
		} else {
			result = result && current
		}
	}

	return result
}

// evaluateSingle applies one condition. An operator/field pair outside the
// legality table is a configuration error: it evaluates to false and is
// logged, never thrown.
func (e *Evaluator) evaluateSingle(condition models.Condition, task *models.TaskSnapshot) bool {
	if !models.OperatorLegalFor(condition.Field, condition.Operator) {
		e.logger.Warn("Unsupported operator for field, failing closed",
			"field", condition.Field,
			"operator", condition.Operator,
			"condition_id", condition.ID)

		return false
	}

	switch condition.Field {
	case models.FieldPriority:
		return evalScalar(condition, task.Priority)
	case models.FieldTag:
		return evalMembership(condition, task.TagIDs)
	case models.FieldAssignee:
		return evalPresenceOrMembership(condition, task.AssigneeIDs)
	case models.FieldDueDate:
		return evalPresence(condition.Operator, task.DueDate != nil)
	case models.FieldHasSubtasks:
		return evalPresence(condition.Operator, task.HasSubtasks)
	default:
		e.logger.Warn("Unknown condition field, failing closed", "field", condition.Field)

		return false
	}
}

func evalScalar(condition models.Condition, actual string) bool {
	switch condition.Operator {
	case models.OpEquals, models.OpAnyOf:
		return slices.Contains(condition.Value, actual)
	case models.OpNotEquals, models.OpNoneOf:
		return !slices.Contains(condition.Value, actual)
	default:
		return false
	}
}

func evalMembership(condition models.Condition, set []string) bool {
	switch condition.Operator {
	case models.OpContains, models.OpAnyOf:
		return intersects(condition.Value, set)
	case models.OpNotContains, models.OpNoneOf:
		return !intersects(condition.Value, set)
	default:
		return false
	}
}

func evalPresenceOrMembership(condition models.Condition, set []string) bool {
	switch condition.Operator {
	case models.OpIsSet:
		return len(set) > 0
	case models.OpIsNotSet:
		return len(set) == 0
	default:
		return evalMembership(condition, set)
	}
}

func evalPresence(op models.ConditionOperator, present bool) bool {
	if op == models.OpIsNotSet {
		return !present
	}

	return present
}

func intersects(values models.ConditionValue, set []string) bool {
	for _, v := range values {
		if slices.Contains(set, v) {
			return true
		}
	}

	return false
}
