package repositories

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/rohits-web03/insurguide/internal/models"
)

var (
	// ErrServiceUnavailable means the backend could not be reached at all.
	ErrServiceUnavailable = stderrors.New("service unavailable")
	// ErrUpstream means the backend answered with an error.
	ErrUpstream = stderrors.New("upstream failure")
	// ErrInvalidRequest means the call was rejected before reaching the backend.
	ErrInvalidRequest = stderrors.New("invalid gateway request")
)

// Gateway is the narrow interface to an external search or vector backend.
// Implementations never retry.
type Gateway interface {
	Name() string
	Put(ctx context.Context, collection string, records []models.Record) ([]string, error)
	Query(ctx context.Context, collection string, q models.Query) (*models.QueryResult, error)
	// Remove deletes by ids, by criteria, or both. At least one must be given.
	Remove(ctx context.Context, collection string, ids []string, criteria map[string]any) error
	EnsureCollection(ctx context.Context, name string, schema map[string]any) error
	DropCollection(ctx context.Context, name string) error
	Health(ctx context.Context) (map[string]any, error)
}

// unavailable stands in for a gateway whose client could not be built.
type unavailable struct {
	name  string
	cause error
}

// Unavailable returns a gateway that fails every call with ErrServiceUnavailable.
func Unavailable(name string, cause error) Gateway {
	return &unavailable{name: name, cause: cause}
}

func (u *unavailable) err() error {
	return errors.Wrapf(ErrServiceUnavailable, "%s not initialized: %v", u.name, u.cause)
}

func (u *unavailable) Name() string { return u.name }

func (u *unavailable) Put(context.Context, string, []models.Record) ([]string, error) {
	return nil, u.err()
}

func (u *unavailable) Query(context.Context, string, models.Query) (*models.QueryResult, error) {
	return nil, u.err()
}

func (u *unavailable) Remove(context.Context, string, []string, map[string]any) error {
	return u.err()
}

func (u *unavailable) EnsureCollection(context.Context, string, map[string]any) error {
	return u.err()
}

func (u *unavailable) DropCollection(context.Context, string) error { return u.err() }

func (u *unavailable) Health(context.Context) (map[string]any, error) { return nil, u.err() }

// breakerGateway fails fast once a backend keeps being unreachable. Only
// ErrServiceUnavailable counts as a failure; upstream errors such as a missing
// index and the caller's own cancellation leave the breaker closed.
type breakerGateway struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker
}

type BreakerSettings struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	MinRequests uint32
	FailRatio   float64
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		MinRequests: 5,
		FailRatio:   0.5,
	}
}

func WithBreaker(next Gateway, s BreakerSettings, log *logrus.Logger) Gateway {
	st := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= s.MinRequests && failureRatio >= s.FailRatio
		},
		// a caller that gave up says nothing about the backend
		IsSuccessful: func(err error) bool {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			return !errors.Is(err, ErrServiceUnavailable)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnf("CircuitBreaker[%s] state changed from %s to %s", name, from, to)
		},
	}
	return &breakerGateway{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *breakerGateway) execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Wrapf(ErrServiceUnavailable, "%s: %v", b.next.Name(), err)
	}
	return res, err
}

func (b *breakerGateway) Name() string { return b.next.Name() }

func (b *breakerGateway) Put(ctx context.Context, collection string, records []models.Record) ([]string, error) {
	res, err := b.execute(func() (interface{}, error) {
		return b.next.Put(ctx, collection, records)
	})
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}

func (b *breakerGateway) Query(ctx context.Context, collection string, q models.Query) (*models.QueryResult, error) {
	res, err := b.execute(func() (interface{}, error) {
		return b.next.Query(ctx, collection, q)
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.QueryResult), nil
}

func (b *breakerGateway) Remove(ctx context.Context, collection string, ids []string, criteria map[string]any) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.Remove(ctx, collection, ids, criteria)
	})
	return err
}

func (b *breakerGateway) EnsureCollection(ctx context.Context, name string, schema map[string]any) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.EnsureCollection(ctx, name, schema)
	})
	return err
}

func (b *breakerGateway) DropCollection(ctx context.Context, name string) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.DropCollection(ctx, name)
	})
	return err
}

func (b *breakerGateway) Health(ctx context.Context) (map[string]any, error) {
	res, err := b.execute(func() (interface{}, error) {
		return b.next.Health(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.(map[string]any), nil
}
