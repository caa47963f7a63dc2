// Package retry provides a configurable retry strategy for unreliable collaborators.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Defaults reproduce the fixed 3 x 5s schedule of the vector index client.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 5 * time.Second
	DefaultMultiplier  = 1.0
	DefaultMaxDelay    = time.Minute
)

// Permanent wraps err so that Do stops retrying immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var perm *backoff.PermanentError
	return errors.As(err, &perm)
}

// Policy decides how many times and how far apart an operation is attempted.
// Multiplier 1 gives a fixed delay, anything above grows the delay exponentially.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration

	// OnRetry is called before each wait with the failed attempt number (1-based).
	OnRetry func(attempt int, delay time.Duration, err error)

	observe func(time.Duration)
}

// Default returns the fixed-delay policy: 3 attempts, 5 seconds apart.
func Default() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Multiplier:  DefaultMultiplier,
		MaxDelay:    DefaultMaxDelay,
	}
}

// Instant returns a copy of the policy that hands every scheduled delay to
// observe and retries without waiting.
func (p Policy) Instant(observe func(d time.Duration)) Policy {
	p.observe = observe
	return p
}

// NewBackOff builds the delay schedule described by the policy.
func (p Policy) NewBackOff() backoff.BackOff {
	base := p.BaseDelay
	if p.MaxDelay > 0 && base > p.MaxDelay {
		base = p.MaxDelay
	}
	if p.Multiplier <= 1 {
		return backoff.NewConstantBackOff(base)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	b.MaxInterval = p.MaxDelay
	if b.MaxInterval <= 0 {
		b.MaxInterval = DefaultMaxDelay
	}
	return b
}

// Do runs fn until it succeeds, returns a Permanent error, the context ends,
// or MaxAttempts is reached. The last error is returned wrapped.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var b backoff.BackOff = p.NewBackOff()
	if p.observe != nil {
		b = &observedBackOff{next: b, observe: p.observe}
	}

	attempt := 0
	var permanent error
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := ctx.Err(); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		attempt++
		err := fn(ctx, attempt)
		if IsPermanent(err) {
			permanent = err
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, delay time.Duration) {
			if p.OnRetry != nil {
				p.OnRetry(attempt, delay, err)
			}
		}),
	)

	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("retry aborted after %d attempts: %w", attempt, errors.Join(ctx.Err(), err))
	case permanent != nil:
		return permanent
	default:
		return fmt.Errorf("failed after %d attempts: %w", attempt, err)
	}
}

// observedBackOff reports each delay of next and then asks for no wait.
type observedBackOff struct {
	next    backoff.BackOff
	observe func(time.Duration)
}

func (o *observedBackOff) NextBackOff() time.Duration {
	d := o.next.NextBackOff()
	if d == backoff.Stop {
		return d
	}
	o.observe(d)
	return 0
}

func (o *observedBackOff) Reset() { o.next.Reset() }
