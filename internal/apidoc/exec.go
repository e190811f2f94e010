package apidoc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// execStrategy delegates evaluation to a node subprocess. It covers syntax
// newer than the in-process interpreter supports, at the cost of requiring
// node on PATH.
type execStrategy struct {
	binary  string
	timeout time.Duration
}

func (s *execStrategy) Tier() Tier { return TierExec }

func (s *execStrategy) Recover(ctx context.Context, literal string) ([]*Node, error) {
	binary := s.binary
	if binary == "" {
		binary = "node"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInterpreterUnavailable, err)
	}

	script, err := os.CreateTemp("", "apischema-*.js")
	if err != nil {
		return nil, fmt.Errorf("create evaluation script: %w", err)
	}
	defer os.Remove(script.Name())
	_, werr := fmt.Fprintf(script, "const apiSchema = %s;\nconsole.log(JSON.stringify(apiSchema, null, 2));\n", literal)
	if cerr := script.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return nil, fmt.Errorf("write evaluation script: %w", werr)
	}

	timeout := s.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, script.Name())
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("node evaluation: %v: %s", err, msg)
		}
		return nil, fmt.Errorf("node evaluation: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(stdout.Bytes(), &decoded); err != nil {
		return nil, fmt.Errorf("decode node output: %w", err)
	}
	return forestOf(decoded)
}
