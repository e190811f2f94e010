package apidoc

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// rewriteStrategy normalizes the literal from JavaScript to strict JSON with
// ordered textual rewrites, then decodes it. Regex-literal strings are
// protected by placeholders before the quote rewrites run and restored
// verbatim, quotes included, after decoding.
type rewriteStrategy struct{}

var (
	regexToken    = regexp.MustCompile(`"/[^"]*/"`)
	quotedKey     = regexp.MustCompile(`'([^']*)':`)
	quotedValue   = regexp.MustCompile(`: '([^']*)'`)
	undefinedWord = regexp.MustCompile(`\bundefined\b`)
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

func (s *rewriteStrategy) Tier() Tier { return TierRewrite }

func (s *rewriteStrategy) Recover(_ context.Context, literal string) ([]*Node, error) {
	normalized, originals := protectRegexTokens(literal)
	normalized = quotedKey.ReplaceAllString(normalized, `"$1":`)
	normalized = quotedValue.ReplaceAllString(normalized, `: "$1"`)
	normalized = undefinedWord.ReplaceAllString(normalized, "null")
	normalized = trailingComma.ReplaceAllString(normalized, "$1")

	var decoded any
	if err := json.Unmarshal([]byte(normalized), &decoded); err != nil {
		return nil, fmt.Errorf("normalized literal is not valid JSON: %w", err)
	}
	return forestOf(restoreRegexTokens(decoded, originals))
}

// protectRegexTokens swaps every "/.../" token for a quoted placeholder.
// The stored original keeps its surrounding quotes so restoration
// reproduces the token exactly as it appeared in the source.
func protectRegexTokens(s string) (string, map[string]string) {
	originals := make(map[string]string)
	out := regexToken.ReplaceAllStringFunc(s, func(token string) string {
		placeholder := fmt.Sprintf("__REGEX_PATTERN_%d__", len(originals))
		originals[placeholder] = token
		return `"` + placeholder + `"`
	})
	return out, originals
}

func restoreRegexTokens(v any, originals map[string]string) any {
	if len(originals) == 0 {
		return v
	}
	switch t := v.(type) {
	case string:
		if original, ok := originals[t]; ok {
			return original
		}
	case []any:
		for i, item := range t {
			t[i] = restoreRegexTokens(item, originals)
		}
	case map[string]any:
		for k, item := range t {
			t[k] = restoreRegexTokens(item, originals)
		}
	}
	return v
}
