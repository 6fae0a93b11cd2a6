package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrStorageUnavailable is returned while the breaker is open
var ErrStorageUnavailable = errors.New("object storage unavailable: circuit breaker open")

// BreakerConfig controls when the storage breaker trips
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // requests allowed in half-open state
	Interval         time.Duration // window after which failure counts reset
	Timeout          time.Duration // open state duration before half-open
	FailureThreshold uint32        // consecutive failures that trip the breaker
}

// DefaultBreakerConfig returns the defaults used for photo storage
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "object-storage",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerStateObserver receives breaker state changes, typically for metrics.
// state is 0 closed, 1 half-open, 2 open.
type BreakerStateObserver interface {
	SetCircuitBreakerState(name string, state int, tripped bool)
}

// BreakerStorage guards an ObjectStorage with a circuit breaker so a storage
// outage fails photo uploads fast instead of tying up request goroutines.
type BreakerStorage struct {
	next ObjectStorage
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerStorage wraps next. observer may be nil.
func NewBreakerStorage(next ObjectStorage, cfg BreakerConfig, observer BreakerStateObserver, logger *zap.Logger) *BreakerStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if observer != nil {
				observer.SetCircuitBreakerState(name, int(to), to == gobreaker.StateOpen)
			}
		},
	}
	return &BreakerStorage{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (s *BreakerStorage) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := s.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w (%s)", ErrStorageUnavailable, s.cb.Name())
	}
	return result, err
}

// Upload uploads through the breaker
func (s *BreakerStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.next.Upload(ctx, storageKey, data, contentType)
	})
	return err
}

// GenerateDownloadURL presigns through the breaker
func (s *BreakerStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	type presigned struct {
		url       string
		expiresAt time.Time
	}
	res, err := s.execute(func() (interface{}, error) {
		u, at, err := s.next.GenerateDownloadURL(ctx, storageKey, expiresIn)
		return presigned{u, at}, err
	})
	if err != nil {
		return "", time.Time{}, err
	}
	p := res.(presigned)
	return p.url, p.expiresAt, nil
}

// DeleteObject deletes through the breaker
func (s *BreakerStorage) DeleteObject(ctx context.Context, storageKey string) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.next.DeleteObject(ctx, storageKey)
	})
	return err
}

// State returns the breaker state
func (s *BreakerStorage) State() gobreaker.State {
	return s.cb.State()
}

var _ ObjectStorage = (*BreakerStorage)(nil)
