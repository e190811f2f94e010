package apidoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"
)

// DefaultTimeout bounds a single recovery tier.
const DefaultTimeout = 30 * time.Second

var (
	// ErrNoSchema means the apiSchema assignment was not found in the input.
	ErrNoSchema = errors.New("apidoc: apiSchema assignment not found")
	// ErrUnbalanced means the assignment was found but its array literal
	// never closes.
	ErrUnbalanced = errors.New("apidoc: apiSchema literal is not balanced")
	// ErrInterpreterUnavailable classifies a missing node binary, as opposed
	// to an evaluation that ran and failed.
	ErrInterpreterUnavailable = errors.New("apidoc: node interpreter unavailable")
)

// Tier identifies the recovery strategy that produced a result. Earlier
// tiers preserve more of the source schema; scan recovers only paths and
// verbs.
type Tier string

const (
	TierEval    Tier = "eval"    // in-process ECMAScript evaluation
	TierExec    Tier = "exec"    // delegated evaluation via node
	TierRewrite Tier = "rewrite" // textual normalization to strict JSON
	TierScan    Tier = "scan"    // structural path/verb scan
)

// Strategy is one tier of the recovery chain.
type Strategy interface {
	Tier() Tier
	Recover(ctx context.Context, literal string) ([]*Node, error)
}

// Result is a recovered schema forest together with the tier that produced
// it, so callers can tell full-fidelity output from a degraded scan.
type Result struct {
	Nodes []*Node
	Tier  Tier
}

// Options configure an Extractor. The zero value is usable.
type Options struct {
	// Cache for raw file content; nil allocates a private one.
	Cache *Cache
	// Logger receives debug records for swallowed tier failures; nil discards.
	Logger *slog.Logger
	// Strategies overrides the default recovery chain.
	Strategies []Strategy
	// NodeBinary names the node executable for the exec tier. Default "node".
	NodeBinary string
	// Timeout bounds each evaluation tier. Default DefaultTimeout.
	Timeout time.Duration
	// DisableExec drops the node subprocess tier from the default chain.
	DisableExec bool
}

// Extractor locates the apiSchema literal in viewer files and recovers it
// through an ordered chain of strategies. The first tier to succeed wins;
// failures are logged and swallowed, and only if every tier fails does the
// last error surface.
type Extractor struct {
	cache      *Cache
	logger     *slog.Logger
	strategies []Strategy
}

// NewExtractor builds an Extractor from opts.
func NewExtractor(opts Options) *Extractor {
	cache := opts.Cache
	if cache == nil {
		cache = NewCache(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	strategies := opts.Strategies
	if strategies == nil {
		strategies = defaultStrategies(opts)
	}
	return &Extractor{cache: cache, logger: logger, strategies: strategies}
}

func defaultStrategies(opts Options) []Strategy {
	chain := []Strategy{&evalStrategy{timeout: opts.Timeout}}
	if !opts.DisableExec {
		chain = append(chain, &execStrategy{binary: opts.NodeBinary, timeout: opts.Timeout})
	}
	return append(chain, &rewriteStrategy{}, &scanStrategy{})
}

// ExtractFile reads path through the cache and recovers its schema.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*Result, error) {
	content, err := e.cache.GetOrLoad(path)
	if err != nil {
		return nil, err
	}
	result, err := e.Extract(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

// Extract recovers the schema forest from raw viewer-file content.
func (e *Extractor) Extract(ctx context.Context, content string) (*Result, error) {
	literal, err := Literal(content)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, strategy := range e.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nodes, err := strategy.Recover(ctx, literal)
		if err != nil {
			e.logger.Debug("recovery tier failed", "tier", strategy.Tier(), "error", err)
			lastErr = err
			continue
		}
		e.logger.Debug("schema recovered", "tier", strategy.Tier(), "roots", len(nodes))
		return &Result{Nodes: nodes, Tier: strategy.Tier()}, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no recovery strategies configured")
	}
	return nil, fmt.Errorf("all recovery tiers failed: %w", lastErr)
}

var anchorPattern = regexp.MustCompile(`(?:var|const|let)\s+apiSchema\s*=\s*\[`)

// Literal returns the balanced apiSchema array literal, brackets included.
// Counting is not string-aware; the viewer files do not embed stray brackets
// in strings ahead of the schema's own balance point.
func Literal(content string) (string, error) {
	loc := anchorPattern.FindStringIndex(content)
	if loc == nil {
		return "", ErrNoSchema
	}
	start := loc[1] - 1
	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return content[start : i+1], nil
			}
		}
	}
	return "", ErrUnbalanced
}

// forestOf adapts an evaluated value to a schema forest: arrays decode
// element-wise and a bare object is treated as a single-root forest.
func forestOf(v any) ([]*Node, error) {
	switch t := v.(type) {
	case []any:
		return decodeForest(t), nil
	case map[string]any:
		return decodeForest([]any{t}), nil
	}
	return nil, fmt.Errorf("schema evaluated to %T, want array or object", v)
}
