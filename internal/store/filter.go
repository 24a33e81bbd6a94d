// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package store

// Filter is a boolean expression over a row's metadata document. The node
// set is closed: leaf comparisons over a single key plus the And/Or/Not
// combinators. Backends translate a tree by exhaustive type switch and
// reject any node outside this set before executing a query.
//
// Filters are immutable; build them once with the constructors below and
// pass them to search or delete calls.
type Filter interface {
	filterNode()
}

// IsEqualTo matches rows whose metadata value under Key equals Value.
type IsEqualTo struct {
	Key   string
	Value any
}

// IsNotEqualTo matches rows whose metadata value under Key differs from Value.
type IsNotEqualTo struct {
	Key   string
	Value any
}

// IsGreaterThan matches rows whose metadata value under Key exceeds Value.
type IsGreaterThan struct {
	Key   string
	Value any
}

// IsGreaterThanOrEqualTo matches rows whose metadata value under Key is at
// least Value.
type IsGreaterThanOrEqualTo struct {
	Key   string
	Value any
}

// IsLessThan matches rows whose metadata value under Key is below Value.
type IsLessThan struct {
	Key   string
	Value any
}

// IsLessThanOrEqualTo matches rows whose metadata value under Key is at
// most Value.
type IsLessThanOrEqualTo struct {
	Key   string
	Value any
}

// IsIn matches rows whose metadata value under Key is one of Values.
type IsIn struct {
	Key    string
	Values []any
}

// IsNotIn matches rows whose metadata value under Key is none of Values.
type IsNotIn struct {
	Key    string
	Values []any
}

// And matches rows satisfying both children.
type And struct {
	Left  Filter
	Right Filter
}

// Or matches rows satisfying either child.
type Or struct {
	Left  Filter
	Right Filter
}

// Not matches rows not satisfying its child expression.
type Not struct {
	Expression Filter
}

func (IsEqualTo) filterNode()              {}
func (IsNotEqualTo) filterNode()           {}
func (IsGreaterThan) filterNode()          {}
func (IsGreaterThanOrEqualTo) filterNode() {}
func (IsLessThan) filterNode()             {}
func (IsLessThanOrEqualTo) filterNode()    {}
func (IsIn) filterNode()                   {}
func (IsNotIn) filterNode()                {}
func (And) filterNode()                    {}
func (Or) filterNode()                     {}
func (Not) filterNode()                    {}

// Eq matches metadata[key] == value.
func Eq(key string, value any) Filter { return IsEqualTo{Key: key, Value: value} }

// Ne matches metadata[key] != value.
func Ne(key string, value any) Filter { return IsNotEqualTo{Key: key, Value: value} }

// Gt matches metadata[key] > value.
func Gt(key string, value any) Filter { return IsGreaterThan{Key: key, Value: value} }

// Gte matches metadata[key] >= value.
func Gte(key string, value any) Filter { return IsGreaterThanOrEqualTo{Key: key, Value: value} }

// Lt matches metadata[key] < value.
func Lt(key string, value any) Filter { return IsLessThan{Key: key, Value: value} }

// Lte matches metadata[key] <= value.
func Lte(key string, value any) Filter { return IsLessThanOrEqualTo{Key: key, Value: value} }

// In matches metadata[key] being any of values.
func In(key string, values ...any) Filter { return IsIn{Key: key, Values: values} }

// NotIn matches metadata[key] being none of values.
func NotIn(key string, values ...any) Filter { return IsNotIn{Key: key, Values: values} }

// AndOf combines two filters conjunctively.
func AndOf(left, right Filter) Filter { return And{Left: left, Right: right} }

// OrOf combines two filters disjunctively.
func OrOf(left, right Filter) Filter { return Or{Left: left, Right: right} }

// NotOf negates a filter.
func NotOf(expression Filter) Filter { return Not{Expression: expression} }
