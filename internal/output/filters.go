// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// filterRegex parses a filter expression into key, operator, and target.
// The operator can be negated with a leading !.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~><])(.*)$`)

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a comma-separated filter spec. Malformed entries are
// logged and skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	for _, filterSpec := range strings.Split(spec, ",") {
		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		negate := strings.HasPrefix(parts[2], "!")
		if negate {
			parts[2] = strings.TrimPrefix(parts[2], "!")
		}

		filters = append(filters, Filter{
			Key:     parts[1],
			Negate:  negate,
			Operand: parts[2],
			Target:  parts[3],
		})
	}

	return filters
}

// FilterRows returns the rows matching every filter in spec. Rows are
// evaluated as JSON so filter keys use the same names the json output shows.
func FilterRows(rows []Row, spec string) []Row {
	filters := BuildFilters(spec)
	if len(filters) == 0 {
		return rows
	}

	//nolint:prealloc
	var filtered []Row
	for _, row := range rows {
		raw, err := json.Marshal(row)
		if err != nil {
			continue
		}
		if matchesAll(gjson.ParseBytes(raw), filters) {
			filtered = append(filtered, row)
		}
	}

	return filtered
}

func matchesAll(row gjson.Result, filters []Filter) bool {
	for _, f := range filters {
		value := row.Get(f.Key)
		if !value.Exists() {
			return false
		}

		result := check(value, f)
		if f.Negate {
			result = !result
		}
		if !result {
			return false
		}
	}
	return true
}

func check(value gjson.Result, f Filter) bool {
	switch f.Operand {
	case "=":
		return value.String() == f.Target
	case "^":
		return strings.HasPrefix(value.String(), f.Target)
	case "~":
		return strings.Contains(value.String(), f.Target)
	case ">":
		t := gjson.Parse(f.Target)
		return value.Float() > t.Float()
	case "<":
		t := gjson.Parse(f.Target)
		return value.Float() < t.Float()
	default:
		return false
	}
}
