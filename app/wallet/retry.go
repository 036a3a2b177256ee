package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/joefazee/roundbet/models"
)

const retryBackoff = 5 * time.Millisecond

// Retry runs fn until it returns something other than
// models.ErrConcurrentModification, or attempts run out. The last error is
// returned unchanged.
func Retry(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if !errors.Is(err, models.ErrConcurrentModification) {
			return err
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * retryBackoff):
		}
	}
	return err
}
