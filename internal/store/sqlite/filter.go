// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package sqlite

import (
	"strconv"
	"strings"

	"github.com/cairn-dev/cairn/internal/store"
	cairnerr "github.com/cairn-dev/cairn/pkg/errors"
)

// whereClause translates a filter tree into a complete WHERE clause over
// the metadata column.
func whereClause(filter store.Filter) (string, error) {
	predicate, err := translateFilter(filter)
	if err != nil {
		return "", err
	}
	return "WHERE " + predicate, nil
}

// translateFilter maps a filter node onto a SQLite JSON1 predicate. The
// node set is closed; anything else is a translation error raised before
// any query executes.
func translateFilter(filter store.Filter) (string, error) {
	switch node := filter.(type) {
	case store.IsEqualTo:
		return comparison(node.Key, "=", node.Value)
	case store.IsNotEqualTo:
		return comparison(node.Key, "<>", node.Value)
	case store.IsGreaterThan:
		return comparison(node.Key, ">", node.Value)
	case store.IsGreaterThanOrEqualTo:
		return comparison(node.Key, ">=", node.Value)
	case store.IsLessThan:
		return comparison(node.Key, "<", node.Value)
	case store.IsLessThanOrEqualTo:
		return comparison(node.Key, "<=", node.Value)
	case store.IsIn:
		return membership(node.Key, "IN", node.Values)
	case store.IsNotIn:
		return membership(node.Key, "NOT IN", node.Values)
	case store.And:
		left, err := translateFilter(node.Left)
		if err != nil {
			return "", err
		}
		right, err := translateFilter(node.Right)
		if err != nil {
			return "", err
		}
		return left + " AND " + right, nil
	case store.Or:
		left, err := translateFilter(node.Left)
		if err != nil {
			return "", err
		}
		right, err := translateFilter(node.Right)
		if err != nil {
			return "", err
		}
		return "(" + left + " OR " + right + ")", nil
	case store.Not:
		inner, err := translateFilter(node.Expression)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	default:
		return "", cairnerr.Errorf(cairnerr.CodeStoreFilterUnsupported, "unsupported filter type: %T", filter)
	}
}

func comparison(key, op string, value any) (string, error) {
	literal, err := formatValue(value)
	if err != nil {
		return "", err
	}
	return jsonPath(key) + " " + op + " " + literal, nil
}

func membership(key, op string, values []any) (string, error) {
	if len(values) == 0 {
		return "", cairnerr.Errorf(cairnerr.CodeStoreFilterUnsupported, "empty value list for %s on key %q", op, key)
	}
	literals := make([]string, len(values))
	for i, v := range values {
		literal, err := formatValue(v)
		if err != nil {
			return "", err
		}
		literals[i] = literal
	}
	return jsonPath(key) + " " + op + " (" + strings.Join(literals, ",") + ")", nil
}

// jsonPath renders the metadata lookup for a key. The key is embedded in a
// quoted JSON path member so dots and spaces in keys do not split the path.
func jsonPath(key string) string {
	escaped := strings.ReplaceAll(key, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "'", "''")
	return `json_extract(metadata, '$."` + escaped + `"')`
}

// formatValue renders a comparison value as a SQL literal. Strings are
// single-quoted with quote doubling; booleans render as 1/0 to match
// json_extract's representation of JSON booleans.
func formatValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return "", cairnerr.Errorf(cairnerr.CodeStoreFilterUnsupported, "unsupported filter value type: %T", value)
	}
}
