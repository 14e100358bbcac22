package qbapi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	err := &APIError{
		Message:     "Not Found",
		Description: "Table not found",
		StatusCode:  404,
	}

	assert.Equal(t, "Not Found: Table not found (status: 404)", err.Error())

	bare := &APIError{Message: "Unauthorized", StatusCode: 401}
	assert.Equal(t, "Unauthorized (status: 401)", bare.Error())
}

func TestParseAPIError(t *testing.T) {
	t.Parallel()

	t.Run("json body", func(t *testing.T) {
		t.Parallel()

		err := ParseAPIError([]byte(`{"message":"Bad Request","description":"Invalid where clause"}`), 400)
		assert.Equal(t, "Bad Request", err.Message)
		assert.Equal(t, "Invalid where clause", err.Description)
		assert.Equal(t, 400, err.StatusCode)
	})

	t.Run("non-json body", func(t *testing.T) {
		t.Parallel()

		err := ParseAPIError([]byte("Service Unavailable\n"), 503)
		assert.Equal(t, "Service Unavailable", err.Message)
		assert.Equal(t, 503, err.StatusCode)
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()

		err := ParseAPIError(nil, 500)
		assert.Equal(t, "request failed", err.Message)
	})
}

func TestInputError_Error(t *testing.T) {
	t.Parallel()

	err := &InputError{Kind: "table", Name: "Invoices", Available: []string{"Employees", "Timesheets"}}
	assert.Equal(t, `table "Invoices" not found; available: Employees, Timesheets`, err.Error())
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := &TransportError{Path: "/records/query", Attempts: 5, Err: cause}

	assert.Equal(t, "request to /records/query failed after 5 attempts: connection refused", err.Error())
	require.ErrorIs(t, err, cause)
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	notFound := fmt.Errorf("getting table: %w", &APIError{Message: "nope", StatusCode: 404})
	rateLimited := &APIError{Message: "slow down", StatusCode: 429}
	input := fmt.Errorf("resolving: %w", &InputError{Kind: "app", Name: "HR"})
	transport := fmt.Errorf("fetching: %w", &TransportError{Path: "/tables", Attempts: 5, Err: errors.New("eof")})

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(rateLimited))
	assert.True(t, IsRateLimited(rateLimited))
	assert.True(t, IsInput(input))
	assert.False(t, IsInput(transport))
	assert.True(t, IsTransport(transport))
	assert.False(t, IsTransport(input))
}

func TestPartialWriteError_Error(t *testing.T) {
	t.Parallel()

	err := &PartialWriteError{
		Processed: 10,
		LineErrors: map[string][]string{
			"2": {"bad value"},
			"5": {"bad value"},
		},
	}

	assert.Equal(t, "upsert partially failed: 2 lines rejected of 10 processed", err.Error())
}
