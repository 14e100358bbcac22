package qbapi_test

import (
	"testing"
	"time"

	"github.com/fieldworks-io/qbapi-client/pkg/qbapi"
	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{"string", "Approved", "'Approved'"},
		{"empty string", "", "''"},
		{"int", 42, "42"},
		{"int64", int64(9000000000), "9000000000"},
		{"float", 7.5, "7.5"},
		{"float without trailing zeros", 10.0, "10"},
		{"bool true", true, "'true'"},
		{"bool false", false, "'false'"},
		{"date", qbapi.NewDate(2024, time.March, 5), "'2024-03-05'"},
		{
			"datetime pads single-digit hours",
			time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC),
			"'2024-03-05 02:30PM'",
		},
		{
			"morning datetime",
			time.Date(2024, time.March, 5, 9, 5, 0, 0, time.UTC),
			"'2024-03-05 09:05AM'",
		},
		{
			"noon datetime",
			time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC),
			"'2024-03-05 12:00PM'",
		},
		{
			"list joins quote-stripped elements",
			[]interface{}{"A", "B"},
			"'A; B'",
		},
		{
			"mixed list",
			[]interface{}{"A", 2, true},
			"'A; 2; true'",
		},
		{"nil", nil, "'<nil>'"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, qbapi.FormatValue(testCase.value))
		})
	}
}

func TestDate_String(t *testing.T) {
	t.Parallel()

	date := qbapi.NewDate(2023, time.December, 31)
	assert.Equal(t, "2023-12-31", date.String())
}
