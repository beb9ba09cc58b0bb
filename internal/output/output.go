// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/urfave/cli/v3"
	yaml "gopkg.in/yaml.v2"
)

// Row is one record of a report.
type Row = map[string]any

// Spit emits rows per the common flags: --output (text/json/yaml), --sort,
// --filter, --titles, --limit. Columns fixes the text column order; json and
// yaml emit the rows as-is.
func Spit(rows []Row, columns []string, cmd *cli.Command, w io.Writer) error {
	rows = FilterRows(rows, cmd.String("filter"))
	SortRows(rows, cmd.String("sort"))

	if limit := int(cmd.Int("limit")); limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	switch cmd.String("output") {
	case "json":
		b, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		fmt.Fprintln(w, string(b))
	case "yaml":
		b, err := yaml.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		fmt.Fprint(w, string(b))
	default:
		spitText(rows, columns, cmd.Bool("titles"), w)
	}

	return nil
}

func spitText(rows []Row, columns []string, titles bool, w io.Writer) {
	var cells [][]string
	for _, row := range rows {
		line := make([]string, 0, len(columns))
		for _, col := range columns {
			line = append(line, stringify(row[col]))
		}
		cells = append(cells, line)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		Rows(cells...)

	if titles {
		t = t.Headers(columns...).BorderHeader(false)
	}

	fmt.Fprintln(w, t)
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', 1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// SortRows sorts in place by a comma-separated list of columns. A leading
// "-" reverses that column. Numeric values compare numerically.
func SortRows(rows []Row, spec string) {
	if spec == "" {
		return
	}

	var keys []string
	for _, k := range strings.Split(spec, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, key := range keys {
			desc := strings.HasPrefix(key, "-")
			k := strings.TrimPrefix(key, "-")

			c := compare(rows[i][k], rows[j][k])
			if c == 0 {
				continue
			}
			if desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compare(a, b any) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(stringify(a), stringify(b))
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
