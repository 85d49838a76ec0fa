package retry

import (
	"context"
	"math"
	"time"

	"deckcounter/logger"
)

const (
	INITIAL_RETRY_DELAY      = 1
	MAX_RETRY_DELAY          = 60
	RETRY_BACKOFF_MULTIPLIER = 2
)

// Manager bounds the number of connection attempts and spaces them with
// exponential backoff. The first attempt never waits.
type Manager struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	currentDelay time.Duration
	attempt      int
	logger       logger.Logger
}

func NewManager(maxAttempts int, logger logger.Logger) *Manager {
	return NewManagerWithDelays(
		maxAttempts,
		time.Duration(INITIAL_RETRY_DELAY)*time.Second,
		time.Duration(MAX_RETRY_DELAY)*time.Second,
		logger,
	)
}

func NewManagerWithDelays(maxAttempts int, initialDelay, maxDelay time.Duration, logger logger.Logger) *Manager {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Manager{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		currentDelay: initialDelay,
		attempt:      0,
		logger:       logger,
	}
}

func (m *Manager) ShouldAttempt() bool {
	if m.attempt >= m.maxAttempts {
		if m.maxAttempts > 1 {
			m.logger.Info("Max connection attempts (%d) reached", m.maxAttempts)
		}
		return false
	}
	return true
}

func (m *Manager) WaitBeforeAttempt(ctx context.Context) error {
	if m.attempt == 0 {
		m.attempt++
		return nil
	}

	m.logger.Warn("Waiting %v before connection attempt %d/%d", m.currentDelay, m.attempt+1, m.maxAttempts)

	timer := time.NewTimer(m.currentDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		m.currentDelay = time.Duration(
			math.Min(
				float64(m.currentDelay)*RETRY_BACKOFF_MULTIPLIER,
				float64(m.maxDelay),
			),
		)
		m.attempt++
		return nil
	}
}

// Do runs fn until it succeeds, the attempts are exhausted or ctx ends.
// The last error from fn is returned.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for m.ShouldAttempt() {
		if err := m.WaitBeforeAttempt(ctx); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			m.Reset()
			return nil
		}

		m.logger.Warn("Connection attempt %d/%d failed: %v", m.attempt, m.maxAttempts, lastErr)
	}
	return lastErr
}

func (m *Manager) Reset() {
	m.attempt = 0
	m.currentDelay = m.initialDelay
}

func (m *Manager) GetAttempt() int {
	return m.attempt
}

func (m *Manager) MaxAttempts() int {
	return m.maxAttempts
}
