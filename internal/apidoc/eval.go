package apidoc

import (
	"context"
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// evalStrategy evaluates the literal with goja, a pure-Go ECMAScript
// interpreter. It tolerates everything the language allows inside the
// literal (comments, unquoted keys, single quotes, trailing commas) without
// leaving the process.
type evalStrategy struct {
	timeout time.Duration
}

func (s *evalStrategy) Tier() Tier { return TierEval }

func (s *evalStrategy) Recover(ctx context.Context, literal string) ([]*Node, error) {
	timeout := s.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	vm := goja.New()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	value, err := vm.RunString("(" + literal + ")")
	if err != nil {
		return nil, fmt.Errorf("evaluate schema literal: %w", err)
	}
	return forestOf(value.Export())
}
