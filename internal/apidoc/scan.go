package apidoc

import (
	"context"
	"regexp"
	"strings"
)

// scanStrategy is the last-resort tier. It never interprets the literal; it
// walks it for "path" keys, brace-counts each enclosing object, and records
// which verbs appear inside. The result is a synthetic single-root forest
// whose leaves carry placeholder descriptions and nothing else, so the
// flattener yields exactly the discovered paths with empty parameter sets.
type scanStrategy struct{}

var (
	pathKey = regexp.MustCompile(`"path"\s*:\s*"([^"]+)"`)
	verbKey = regexp.MustCompile(`"(GET|POST|PUT|DELETE|PATCH)"\s*:\s*\{`)
)

func (s *scanStrategy) Tier() Tier { return TierScan }

func (s *scanStrategy) Recover(_ context.Context, literal string) ([]*Node, error) {
	var leaves []*Node
	for _, loc := range pathKey.FindAllStringSubmatchIndex(literal, -1) {
		path := literal[loc[2]:loc[3]]
		block, ok := enclosingObject(literal, loc[0])
		if !ok {
			continue
		}
		matches := verbKey.FindAllStringSubmatch(block, -1)
		if len(matches) == 0 {
			continue
		}
		info := make(map[string]*Method, len(matches))
		for _, m := range matches {
			info[m[1]] = &Method{Description: m[1] + " " + path}
		}
		leaves = append(leaves, &Node{Path: path, Info: info})
	}
	if len(leaves) == 0 {
		return nil, nil
	}
	return []*Node{{Text: "root", Children: leaves}}, nil
}

// enclosingObject returns the brace-balanced object that starts at the last
// "{" before from.
func enclosingObject(s string, from int) (string, bool) {
	start := strings.LastIndexByte(s[:from], '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
