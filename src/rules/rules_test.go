package rules

import (
	"encoding/json"
	"testing"

	"finhealth-server/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subject(desc, method string, amount int64) Subject {
	return Subject{Description: desc, PaymentMethod: method, Amount: decimal.NewFromInt(amount)}
}

func TestParseRejectsBadTrees(t *testing.T) {
	cases := map[string]string{
		"empty object":    `{}`,
		"unknown field":   `{"field":"merchant","op":"equals","value":"x"}`,
		"string op":       `{"field":"amount","op":"contains","value":3}`,
		"number as text":  `{"field":"amount","op":"gt","value":"3"}`,
		"in without list": `{"field":"description","op":"in","value":"uber"}`,
		"nested bad leaf": `{"and":[{"field":"description","op":"contains","value":"a"},{"field":"x","op":"equals","value":"y"}]}`,
		"not json":        `{"and":`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(json.RawMessage(raw))
			assert.Error(t, err)
		})
	}

	_, err := Parse(nil)
	assert.ErrorIs(t, err, ErrEmptyCondition)
}

func TestMatch(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		s    Subject
		want bool
	}{
		{"contains is case-insensitive", `{"field":"description","op":"contains","value":"UBER"}`, subject("Uber ride home", "Cash", 12), true},
		{"equals on method", `{"field":"payment_method","op":"equals","value":"credit card"}`, subject("x", "Credit Card", 1), true},
		{"in list", `{"field":"payment_method","op":"in","value":["Cash","Debit Card"]}`, subject("x", "debit card", 1), true},
		{"in list miss", `{"field":"payment_method","op":"in","value":["Cash"]}`, subject("x", "Credit Card", 1), false},
		{"gte boundary", `{"field":"amount","op":"gte","value":100}`, subject("x", "Cash", 100), true},
		{"lt boundary", `{"field":"amount","op":"lt","value":100}`, subject("x", "Cash", 100), false},
		{"and needs all", `{"and":[{"field":"description","op":"contains","value":"grocer"},{"field":"amount","op":"gt","value":50}]}`, subject("Groceries", "Cash", 40), false},
		{"or needs one", `{"or":[{"field":"description","op":"contains","value":"netflix"},{"field":"description","op":"contains","value":"cinema"}]}`, subject("Cinema tickets", "Cash", 20), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Parse(json.RawMessage(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, c.Match(tc.s))
		})
	}
}

func TestFirstMatchKeepsOrderAndSkipsInvalid(t *testing.T) {
	stored := []models.CategoryRule{
		{ID: 1, Category: "Broken", Conditions: json.RawMessage(`{"field":"nope"}`)},
		{ID: 2, Category: "Transport", Conditions: json.RawMessage(`{"field":"description","op":"contains","value":"uber"}`)},
		{ID: 3, Category: "Food", Conditions: json.RawMessage(`{"field":"description","op":"contains","value":"uber eats"}`)},
	}
	compiled := Compile(stored)
	require.Len(t, compiled, 2)

	cat, ok := FirstMatch(compiled, subject("Uber Eats dinner", "Cash", 30))
	require.True(t, ok)
	assert.Equal(t, "Transport", cat)

	_, ok = FirstMatch(compiled, subject("Rent", "Bank Transfer", 900))
	assert.False(t, ok)
}
