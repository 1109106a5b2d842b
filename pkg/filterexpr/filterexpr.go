// Package filterexpr binds AIP-160 style filter expressions and order_by
// strings onto plain query parameter structs. Filters are parsed with CEL,
// restricted to AND-joined comparisons over whitelisted fields, and
// assigned to struct fields by name via reflection.
package filterexpr

import "reflect"

// Source exposes the raw filter and order_by inputs of a list request.
type Source interface {
	GetFilter() string
	GetOrderBy() string
}

// ValueKind describes the kind of literal value a field accepts.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindNumber    ValueKind = "number"
	KindTimestamp ValueKind = "timestamp"
)

// Op represents a supported comparison operation.
type Op string

const (
	OpEQ  Op = "=="
	OpGTE Op = ">="
	OpLTE Op = "<="
	OpSW  Op = "startsWith"
	OpIN  Op = "in"
)

// SetterFunc allows custom assignment of literal values to struct fields.
type SetterFunc func(field reflect.Value, value any) error

// FieldRule describes how one filter field maps to params struct fields
// and which operations it allows. Each allowed Op names the destination
// struct field for that operation.
type FieldRule struct {
	Kind ValueKind
	Ops  map[Op]string
	Set  SetterFunc
}

// OrderField maps a whitelisted order key to a SQL expression.
type OrderField struct {
	Expr  string
	Nulls string
}

// OrderSchema describes ordering defaults and whitelisted keys.
type OrderSchema struct {
	DefaultPrimary     string
	DefaultPrimaryDesc bool
	FallbackKey        string
	FallbackDesc       bool
	Fields             map[string]OrderField
}

// Schema aggregates the filtering and ordering rules for one resource.
type Schema struct {
	Fields map[string]FieldRule
	Order  OrderSchema
}
