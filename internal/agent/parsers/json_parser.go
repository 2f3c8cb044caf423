package parsers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	errx "github.com/tallyfinance/ai-service/internal/core/error"
	logx "github.com/tallyfinance/ai-service/pkg/logger"
)

// basic safety limits to avoid pathological completions
const (
	maxContentLen = 128 * 1024 // 128KB
	maxErrSnippet = 200        // limit error snippet size
)

var (
	ErrNotJSONObject = errors.New("completion is not a JSON object")
	ErrTooLarge      = errors.New("completion exceeds size limit")
)

// DecodeJSONObject decodes a JSON-mode completion. Blank content decodes to an
// empty object. A surrounding Markdown code fence is tolerated since some
// providers add one even in JSON mode.
func DecodeJSONObject(content string) (out map[string]any, err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "json_parser").Msgf("panic recovered: %v", r)
			err = panicError(r)
			out = nil
		}
	}()

	if len(content) > maxContentLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(content))
	}
	content = stripFence(strings.TrimSpace(content))
	if content == "" {
		return map[string]any{}, nil
	}
	if !strings.HasPrefix(content, "{") {
		return nil, fmt.Errorf("%w: %s", ErrNotJSONObject, SafeSnippet(content))
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSONObject, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// panicError reports a recovered decoder panic as an ordinary decode failure,
// so the client retries it like any malformed completion.
func panicError(r any) error {
	return fmt.Errorf("%w: decoder panic: %v", ErrNotJSONObject, r)
}

// stripFence removes a ```lang ... ``` wrapper if the whole content is one.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	// drop the language tag on the opening line
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.Contains(s[:i], "{") {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

// SafeSnippet trims s for inclusion in logs and error messages.
func SafeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return errx.Truncate(s, maxErrSnippet)
}
