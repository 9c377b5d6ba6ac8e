package models

import (
	"encoding/json"
	"fmt"
)

type ConditionField string

const (
	FieldTag         ConditionField = "tag"
	FieldPriority    ConditionField = "priority"
	FieldAssignee    ConditionField = "assignee"
	FieldDueDate     ConditionField = "due_date"
	FieldHasSubtasks ConditionField = "has_subtasks"
)

type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpContains    ConditionOperator = "contains"
	OpNotContains ConditionOperator = "not_contains"
	OpAnyOf       ConditionOperator = "any_of"
	OpNoneOf      ConditionOperator = "none_of"
	OpIsSet       ConditionOperator = "is_set"
	OpIsNotSet    ConditionOperator = "is_not_set"
)

type ConditionLogic string

const (
	LogicAnd ConditionLogic = "AND"
	LogicOr  ConditionLogic = "OR"
)

// legalOperators is the static field -> operator legality table. Illegal
// combinations are configuration errors, rejected before a rule is saved.
var legalOperators = map[ConditionField]map[ConditionOperator]bool{
	FieldTag: {
		OpContains: true, OpNotContains: true, OpAnyOf: true, OpNoneOf: true,
	},
	FieldPriority: {
		OpEquals: true, OpNotEquals: true, OpAnyOf: true, OpNoneOf: true,
	},
	FieldAssignee: {
		OpIsSet: true, OpIsNotSet: true, OpContains: true, OpNotContains: true,
		OpAnyOf: true, OpNoneOf: true,
	},
	FieldDueDate: {
		OpIsSet: true, OpIsNotSet: true,
	},
	FieldHasSubtasks: {
		OpIsSet: true, OpIsNotSet: true,
	},
}

// OperatorLegalFor reports whether op may be applied to field.
func OperatorLegalFor(field ConditionField, op ConditionOperator) bool {
	return legalOperators[field][op]
}

// Condition is a single boolean predicate over a task snapshot. Logic on
// condition i governs how its result combines with condition i+1 when the
// chain is folded left to right; the value on the last condition is unused.
type Condition struct {
	ID       string            `json:"id"`
	Field    ConditionField    `json:"field" validate:"required"`
	Operator ConditionOperator `json:"operator" validate:"required"`
	Value    ConditionValue    `json:"value,omitempty"`
	Logic    ConditionLogic    `json:"logic,omitempty"`
}

func (c Condition) Validate() error {
	if !OperatorLegalFor(c.Field, c.Operator) {
		return fmt.Errorf("operator %q is not valid for field %q", c.Operator, c.Field)
	}

	if c.Logic != "" && c.Logic != LogicAnd && c.Logic != LogicOr {
		return fmt.Errorf("unknown condition logic %q", c.Logic)
	}

	return nil
}

// ConditionValue accepts both the scalar and the set form from JSON and always
// exposes a slice. The builder stores single-value operators as scalars and
// set operators as arrays.
type ConditionValue []string

func (v *ConditionValue) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = list

		return nil
	}

	var scalar string
	if err := json.Unmarshal(data, &scalar); err != nil {
		return fmt.Errorf("condition value must be a string or string array: %w", err)
	}

	if scalar == "" {
		*v = nil
	} else {
		*v = []string{scalar}
	}

	return nil
}

func (v ConditionValue) MarshalJSON() ([]byte, error) {
	if len(v) == 1 {
		return json.Marshal(v[0])
	}

	return json.Marshal([]string(v))
}
