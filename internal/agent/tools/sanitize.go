package tools

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tallyfinance/ai-service/internal/agent/model"
)

var suggestedTopics = map[string]bool{
	"capabilities":    true,
	"how_to":          true,
	"limitations":     true,
	"channels":        true,
	"getting_started": true,
	"about":           true,
	"security":        true,
	"pricing":         true,
	"other":           true,
}

// SanitizeArgs cleans the arguments the model produced for a tool call. It
// never fails: values it cannot fix are passed through for the backend to
// reject. The input map is not modified.
func SanitizeArgs(name string, args map[string]any) map[string]any {
	m := make(map[string]any, len(args))
	for k, v := range args {
		m[k] = v
	}

	switch model.ToolName(name) {
	case model.ToolRegisterTransaction:
		// amount: number (required, always positive)
		if v, ok := m["amount"]; ok {
			if n, ok := toAmount(v); ok {
				m["amount"] = n
			}
		}
		// category: string (required); null is dropped so the slot gets asked for
		setText(m, "category")
		// optional strings: drop when empty or not a string
		for _, key := range []string{"posted_at", "payment_method", "description"} {
			v, ok := m[key]
			if !ok {
				continue
			}
			s, isStr := v.(string)
			s = strings.TrimSpace(s)
			if !isStr || s == "" {
				delete(m, key)
				continue
			}
			m[key] = s
		}

	case model.ToolAskAppInfo:
		setText(m, "userQuestion")
		if v, ok := m["suggestedTopic"]; ok {
			topic := strings.ToLower(toText(v))
			if !suggestedTopics[topic] {
				topic = "other"
			}
			m["suggestedTopic"] = topic
		}

	default:
		for k, v := range m {
			if s, ok := v.(string); ok {
				m[k] = strings.TrimSpace(s)
			}
		}
	}
	return m
}

// setText trims m[key] to text, deleting the key when the model sent null.
func setText(m map[string]any, key string) {
	v, ok := m[key]
	if !ok {
		return
	}
	if v == nil {
		delete(m, key)
		return
	}
	m[key] = toText(v)
}

func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Thousands groups of exactly three digits, as in "15.000" or "1,250,000".
var (
	dotGroupedRe   = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
	commaGroupedRe = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)
)

// toAmount accepts JSON numbers and numeric strings such as "$15.000" or
// "15,000". A separator is only dropped when it groups thousands, so "12.5"
// stays 12.5.
func toAmount(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return math.Abs(n), true
	case int:
		return math.Abs(float64(n)), true
	case string:
		s := strings.NewReplacer("$", "", " ", "").Replace(strings.TrimSpace(n))
		switch {
		case dotGroupedRe.MatchString(s):
			s = strings.ReplaceAll(s, ".", "")
		case commaGroupedRe.MatchString(s):
			s = strings.ReplaceAll(s, ",", "")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return math.Abs(f), true
	}
	return 0, false
}
