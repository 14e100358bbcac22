package qbapi_test

import (
	"errors"
	"testing"

	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuery() *qbapi.Query {
	return qbapi.NewQueryFromFieldMap("Timesheets", map[string]qbapi.FieldInfo{
		"Status": {ID: 6, Type: "text"},
		"Hours":  {ID: 7, Type: "numeric"},
	})
}

func TestQuery_Expr(t *testing.T) {
	t.Parallel()

	query := testQuery()

	t.Run("equality", func(t *testing.T) {
		t.Parallel()

		expr, err := query.Eq("Status", "X")
		require.NoError(t, err)
		assert.Equal(t, "{6.EX.'X'}", expr)
	})

	t.Run("numeric comparison", func(t *testing.T) {
		t.Parallel()

		expr, err := query.GreaterThan("Hours", 8)
		require.NoError(t, err)
		assert.Equal(t, "{7.GT.8}", expr)
	})

	t.Run("contains", func(t *testing.T) {
		t.Parallel()

		expr, err := query.Contains("Status", "App")
		require.NoError(t, err)
		assert.Equal(t, "{6.CT.'App'}", expr)
	})

	t.Run("unsupported operator", func(t *testing.T) {
		t.Parallel()

		_, err := query.Expr("Status", "NOPE", "X")
		require.ErrorIs(t, err, qbapi.ErrUnsupportedOperator)
	})

	t.Run("unknown field lists available labels", func(t *testing.T) {
		t.Parallel()

		_, err := query.Expr("Salary", "EX", 1)
		require.Error(t, err)

		inputErr := &qbapi.InputError{}
		require.True(t, errors.As(err, &inputErr))
		assert.Equal(t, "field", inputErr.Kind)
		assert.Equal(t, []string{"Hours", "Status"}, inputErr.Available)
	})
}

func TestQuery_Joins(t *testing.T) {
	t.Parallel()

	a := "{6.EX.'A'}"
	b := "{7.GT.8}"

	assert.Equal(t, "{6.EX.'A'}AND{7.GT.8}", qbapi.And(a, b))
	assert.Equal(t, "{6.EX.'A'}OR{7.GT.8}", qbapi.Or(a, b))
	assert.Equal(t, "NOT {6.EX.'A'}", qbapi.Not(a))
	assert.Equal(t, "NOT {6.EX.'A'}NOT {7.GT.8}", qbapi.Not(a, b))
	assert.Empty(t, qbapi.Not())
	assert.Equal(t, a, qbapi.And(a))
}

func TestSupportedOperators(t *testing.T) {
	t.Parallel()

	ops := qbapi.SupportedOperators()
	assert.Len(t, ops, 20)
	assert.Contains(t, ops, "EX")
	assert.Contains(t, ops, "XIR")

	// Sorted for display
	assert.Equal(t, "AF", ops[0])
}
