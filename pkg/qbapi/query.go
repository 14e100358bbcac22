package qbapi

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Supported filter operators. The set is fixed by the platform; Expr rejects
// anything else.
var supportedOperators = map[string]struct{}{
	"CT": {}, "XCT": {}, "HAS": {}, "XHAS": {}, "EX": {}, "XEX": {},
	"TV": {}, "XTV": {}, "SW": {}, "XSW": {},
	"BF": {}, "OBF": {}, "AF": {}, "OAF": {},
	"IR": {}, "XIR": {}, "LT": {}, "LTE": {}, "GT": {}, "GTE": {},
}

// SupportedOperators returns the operator codes accepted by Expr, sorted for
// display.
func SupportedOperators() []string {
	ops := make([]string, 0, len(supportedOperators))
	for op := range supportedOperators {
		ops = append(ops, op)
	}

	sort.Strings(ops)

	return ops
}

// Query builds filter expressions against one table using friendly field
// labels. It is warmed from the metadata layer once at construction; building
// expressions afterwards never touches the network.
type Query struct {
	table    string
	fieldMap map[string]FieldInfo
}

// NewQuery warms a Query for app/table from the resolver.
func NewQuery(ctx context.Context, meta MetadataResolver, app, table string) (*Query, error) {
	fieldMap, err := meta.FieldMap(ctx, app, table)
	if err != nil {
		return nil, fmt.Errorf("warming query builder: %w", err)
	}

	return &Query{table: table, fieldMap: fieldMap}, nil
}

// NewQueryFromFieldMap builds a Query from an already-resolved field map.
func NewQueryFromFieldMap(table string, fieldMap map[string]FieldInfo) *Query {
	return &Query{table: table, fieldMap: fieldMap}
}

// FieldID resolves a label to its platform field ID.
func (q *Query) FieldID(label string) (int, error) {
	info, ok := q.fieldMap[label]
	if !ok {
		available := make([]string, 0, len(q.fieldMap))
		for l := range q.fieldMap {
			available = append(available, l)
		}

		sort.Strings(available)

		return 0, &InputError{Kind: "field", Name: label, Available: available}
	}

	return info.ID, nil
}

// Expr builds one filter term: {<fieldID>.<OP>.<value>}.
func (q *Query) Expr(label, operator string, value interface{}) (string, error) {
	if _, ok := supportedOperators[operator]; !ok {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedOperator, operator, strings.Join(SupportedOperators(), ", "))
	}

	fieldID, err := q.FieldID(label)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("{%d.%s.%s}", fieldID, operator, FormatValue(value)), nil
}

// And joins expressions with the bare AND token. The platform grammar takes
// no separator space here; do not "fix" it.
func And(expressions ...string) string {
	return strings.Join(expressions, "AND")
}

// Or joins expressions with the bare OR token.
func Or(expressions ...string) string {
	return strings.Join(expressions, "OR")
}

// Not negates expressions. Unlike AND/OR the NOT token carries a single
// trailing space on the wire.
func Not(expressions ...string) string {
	if len(expressions) == 0 {
		return ""
	}

	return "NOT " + strings.Join(expressions, "NOT ")
}

// Convenience builders over Expr.

// Eq builds field equals value.
func (q *Query) Eq(label string, value interface{}) (string, error) {
	return q.Expr(label, "EX", value)
}

// Neq builds field not equals value.
func (q *Query) Neq(label string, value interface{}) (string, error) {
	return q.Expr(label, "XEX", value)
}

// Contains builds field contains value.
func (q *Query) Contains(label string, value interface{}) (string, error) {
	return q.Expr(label, "CT", value)
}

// NotContains builds field does not contain value.
func (q *Query) NotContains(label string, value interface{}) (string, error) {
	return q.Expr(label, "XCT", value)
}

// Has builds field has value, for multi-select fields.
func (q *Query) Has(label string, value interface{}) (string, error) {
	return q.Expr(label, "HAS", value)
}

// NotHas builds field does not have value.
func (q *Query) NotHas(label string, value interface{}) (string, error) {
	return q.Expr(label, "XHAS", value)
}

// StartsWith builds field starts with value.
func (q *Query) StartsWith(label string, value interface{}) (string, error) {
	return q.Expr(label, "SW", value)
}

// NotStartsWith builds field does not start with value.
func (q *Query) NotStartsWith(label string, value interface{}) (string, error) {
	return q.Expr(label, "XSW", value)
}

// LessThan builds field less than value.
func (q *Query) LessThan(label string, value interface{}) (string, error) {
	return q.Expr(label, "LT", value)
}

// LessThanOrEqual builds field less than or equal to value.
func (q *Query) LessThanOrEqual(label string, value interface{}) (string, error) {
	return q.Expr(label, "LTE", value)
}

// GreaterThan builds field greater than value.
func (q *Query) GreaterThan(label string, value interface{}) (string, error) {
	return q.Expr(label, "GT", value)
}

// GreaterThanOrEqual builds field greater than or equal to value.
func (q *Query) GreaterThanOrEqual(label string, value interface{}) (string, error) {
	return q.Expr(label, "GTE", value)
}

// Before builds field date is before value.
func (q *Query) Before(label string, value interface{}) (string, error) {
	return q.Expr(label, "BF", value)
}

// OnOrBefore builds field date is on or before value.
func (q *Query) OnOrBefore(label string, value interface{}) (string, error) {
	return q.Expr(label, "OBF", value)
}

// After builds field date is after value.
func (q *Query) After(label string, value interface{}) (string, error) {
	return q.Expr(label, "AF", value)
}

// OnOrAfter builds field date is on or after value.
func (q *Query) OnOrAfter(label string, value interface{}) (string, error) {
	return q.Expr(label, "OAF", value)
}
