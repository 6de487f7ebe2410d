package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	snap := parseSnap(t, `
data:
  features:
    auth: true
    beta: false
  database:
    driver: postgres
  empty: ""
  count: 0
`)

	tests := []struct {
		expr string
		want bool
	}{
		{"features.auth", true},
		{"features.beta", false},
		{"!features.beta", true},
		{"!features.auth", false},
		{"missing.key", false},
		{"!missing.key", true},
		{"empty", false},
		{"count", false},
		{`database.driver == "postgres"`, true},
		{`database.driver == 'postgres'`, true},
		{"database.driver == postgres", true},
		{`database.driver == "mysql"`, false},
		{`database.driver != "mysql"`, true},
		{`database.driver != "postgres"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Eval(tt.expr, snap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_Unevaluable(t *testing.T) {
	snap := parseSnap(t, "data:\n  a: 1\n")

	tests := []string{
		"",
		"   ",
		`missing == "x"`, // comparisons against absent keys do not default to false
		`== "x"`,
		"a b",
	}

	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			_, err := Eval(expr, snap)
			assert.ErrorIs(t, err, ErrUnevaluableCondition)
		})
	}
}
