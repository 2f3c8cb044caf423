package memory

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var transactionRe = regexp.MustCompile(`Registró \$([0-9,.]+) en ([^.]+)\.`)

type categoryGroup struct {
	name    string
	entries []string
	total   float64
}

// Compress folds repeated transaction sentences of the same category into a
// single aggregate sentence. Categories are compared case-insensitively and
// keep the casing of their first occurrence. Summaries without any repeated
// category are returned unchanged; compressing twice is the same as once.
func Compress(summary string) string {
	matches := transactionRe.FindAllStringSubmatchIndex(summary, -1)
	if len(matches) < 2 {
		return summary
	}

	var (
		order  []string
		groups = map[string]*categoryGroup{}
		others []string
		last   int
		repeat bool
	)
	for _, m := range matches {
		if before := strings.TrimSpace(summary[last:m[0]]); before != "" {
			others = append(others, before)
		}
		last = m[1]

		name := strings.TrimSpace(summary[m[4]:m[5]])
		key := strings.ToLower(name)
		g, ok := groups[key]
		if !ok {
			g = &categoryGroup{name: name}
			groups[key] = g
			order = append(order, key)
		}
		g.entries = append(g.entries, summary[m[0]:m[1]])
		g.total += parseAmount(summary[m[2]:m[3]])
		repeat = repeat || len(g.entries) > 1
	}
	if !repeat {
		return summary
	}
	if trailing := strings.TrimSpace(summary[last:]); trailing != "" {
		others = append(others, trailing)
	}

	parts := others
	for _, key := range order {
		g := groups[key]
		if len(g.entries) == 1 {
			parts = append(parts, g.entries[0])
			continue
		}
		parts = append(parts, fmt.Sprintf("Registró %d gastos en %s ($%s total).", len(g.entries), g.name, money(g.total)))
	}
	return strings.Join(parts, " ")
}

// parseAmount reads an amount written with either separator style. Both '.'
// and ',' are treated as thousands separators.
func parseAmount(s string) float64 {
	digits := strings.NewReplacer(".", "", ",", "").Replace(s)
	if digits == "" {
		return 0
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return v
}
