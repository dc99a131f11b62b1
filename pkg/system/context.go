// Package system holds process lifecycle helpers.
package system

import (
	"context"
	"fmt"
)

// RunWithContext runs operation on a context of its own and returns its
// result, or gives up once ctx ends. When ctx wins, the operation's context
// is cancelled and the operation is left to finish in the background.
func RunWithContext(ctx context.Context, operation func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	opCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- operation(opCtx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("operation abandoned: %w", ctx.Err())
	}
}
