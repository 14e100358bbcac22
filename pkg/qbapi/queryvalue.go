package qbapi

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Formatting patterns for date and datetime query values.
const (
	datePattern     = "2006-01-02"
	datetimePattern = "2006-01-02 03:04PM"
)

// Date is a calendar date without a time component. time.Time values format
// as datetimes; use Date when the field holds a bare date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// String renders the date in wire format.
func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(datePattern)
}

// FormatValue serializes a Go value into a Quickbase-safe query literal.
// Strings, dates, and datetimes are single-quoted; numbers are bare;
// booleans render as the quoted literals 'true'/'false'; slices join their
// quote-stripped elements with "; " and re-wrap once.
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case time.Time:
		return "'" + v.Format(datetimePattern) + "'"
	case Date:
		return "'" + v.String() + "'"
	case bool:
		if v {
			return "'true'"
		}

		return "'false'"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []interface{}:
		elements := make([]string, 0, len(v))
		for _, elem := range v {
			elements = append(elements, stripQuotes(FormatValue(elem)))
		}

		return "'" + strings.Join(elements, "; ") + "'"
	case string:
		return "'" + v + "'"
	default:
		return "'" + fmt.Sprintf("%v", v) + "'"
	}
}

// stripQuotes removes outer single quotes if present.
func stripQuotes(text string) string {
	if strings.HasPrefix(text, "'") && strings.HasSuffix(text, "'") && len(text) >= 2 {
		return text[1 : len(text)-1]
	}

	return text
}
