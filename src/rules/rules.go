package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"finhealth-server/src/models"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Condition is a rule tree: either an and/or group or a field/op/value leaf.
type Condition struct {
	Field string      `json:"field,omitempty"`
	Op    string      `json:"op,omitempty"`
	Value any         `json:"value,omitempty"`
	And   []Condition `json:"and,omitempty"`
	Or    []Condition `json:"or,omitempty"`
}

// Subject is the part of an expense a rule can look at.
type Subject struct {
	Description   string
	PaymentMethod string
	Amount        decimal.Decimal
}

func SubjectOf(e models.Expense) Subject {
	return Subject{Description: e.Description, PaymentMethod: e.PaymentMethod, Amount: e.Amount}
}

var (
	stringFields = map[string]bool{"description": true, "payment_method": true}
	numberFields = map[string]bool{"amount": true}
	stringOps    = map[string]bool{"equals": true, "contains": true, "in": true}
	numberOps    = map[string]bool{"equals": true, "gt": true, "gte": true, "lt": true, "lte": true}
)

var ErrEmptyCondition = errors.New("empty condition")

// Parse decodes a JSON condition tree and checks every leaf.
func Parse(raw json.RawMessage) (Condition, error) {
	var c Condition
	if len(raw) == 0 {
		return c, ErrEmptyCondition
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("decode conditions: %w", err)
	}
	return c, c.validate()
}

func (c Condition) validate() error {
	switch {
	case len(c.And) > 0:
		for _, sub := range c.And {
			if err := sub.validate(); err != nil {
				return err
			}
		}
		return nil
	case len(c.Or) > 0:
		for _, sub := range c.Or {
			if err := sub.validate(); err != nil {
				return err
			}
		}
		return nil
	case c.Field == "" && c.Op == "":
		return ErrEmptyCondition
	}

	switch {
	case stringFields[c.Field]:
		if !stringOps[c.Op] {
			return fmt.Errorf("op %q not supported for field %q", c.Op, c.Field)
		}
		if c.Op == "in" {
			arr, ok := c.Value.([]any)
			if !ok || len(arr) == 0 {
				return fmt.Errorf("op in on %q needs a non-empty list", c.Field)
			}
			return nil
		}
		if _, ok := c.Value.(string); !ok {
			return fmt.Errorf("field %q needs a string value", c.Field)
		}
	case numberFields[c.Field]:
		if !numberOps[c.Op] {
			return fmt.Errorf("op %q not supported for field %q", c.Op, c.Field)
		}
		if _, ok := c.Value.(float64); !ok {
			return fmt.Errorf("field %q needs a numeric value", c.Field)
		}
	default:
		return fmt.Errorf("unknown field %q", c.Field)
	}
	return nil
}

// Match evaluates the tree against s.
func (c Condition) Match(s Subject) bool {
	// Logical AND
	if len(c.And) > 0 {
		for _, sub := range c.And {
			if !sub.Match(s) {
				return false
			}
		}
		return true
	}
	// Logical OR
	if len(c.Or) > 0 {
		for _, sub := range c.Or {
			if sub.Match(s) {
				return true
			}
		}
		return false
	}

	switch c.Field {
	case "description":
		return matchString(c.Op, s.Description, c.Value)
	case "payment_method":
		return matchString(c.Op, s.PaymentMethod, c.Value)
	case "amount":
		return matchAmount(c.Op, s.Amount, c.Value)
	}
	return false
}

func matchString(op, field string, value any) bool {
	switch op {
	case "equals":
		v, ok := value.(string)
		return ok && strings.EqualFold(field, v)
	case "contains":
		v, ok := value.(string)
		return ok && strings.Contains(strings.ToLower(field), strings.ToLower(v))
	case "in":
		arr, ok := value.([]any)
		if !ok {
			return false
		}
		for _, item := range arr {
			if str, ok := item.(string); ok && strings.EqualFold(field, str) {
				return true
			}
		}
	}
	return false
}

func matchAmount(op string, amount decimal.Decimal, value any) bool {
	f, ok := value.(float64)
	if !ok {
		return false
	}
	v := decimal.NewFromFloat(f)
	switch op {
	case "equals":
		return amount.Equal(v)
	case "gt":
		return amount.GreaterThan(v)
	case "gte":
		return amount.GreaterThanOrEqual(v)
	case "lt":
		return amount.LessThan(v)
	case "lte":
		return amount.LessThanOrEqual(v)
	}
	return false
}

// Rule is a parsed CategoryRule ready for evaluation.
type Rule struct {
	ID       int64
	Category string
	Cond     Condition
}

// Compile parses stored rules, keeping their order. Rules that no longer
// parse are skipped.
func Compile(stored []models.CategoryRule) []Rule {
	out := make([]Rule, 0, len(stored))
	for _, r := range stored {
		cond, err := Parse(r.Conditions)
		if err != nil {
			log.Warn().Err(err).Int64("rule_id", r.ID).Msg("skipping invalid category rule")
			continue
		}
		out = append(out, Rule{ID: r.ID, Category: r.Category, Cond: cond})
	}
	return out
}

// FirstMatch returns the category of the first rule matching s.
func FirstMatch(rules []Rule, s Subject) (string, bool) {
	for _, r := range rules {
		if r.Cond.Match(s) {
			return r.Category, true
		}
	}
	return "", false
}
