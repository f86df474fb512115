package alchemyst

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
)

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   4 * time.Second,
	}
}

func (c *Client) AddContextWithRetry(ctx context.Context, req AddContextRequest) error {
	attempt := 0
	return c.retryOperation(ctx, func() error {
		err := c.AddContext(ctx, req)
		attempt++
		if err != nil && isNameConflict(err) && len(req.Documents) > 0 {
			originalName := req.Documents[0].FileName
			newName := fmt.Sprintf("%s-retry%d-%s.txt",
				strings.TrimSuffix(originalName, ".txt"),
				attempt,
				time.Now().Format("150405"))
			req.Documents[0].FileName = newName

			c.logger.WithFields(logrus.Fields{
				"old_name": originalName,
				"new_name": newName,
			}).Warn("File name conflict, modifying filename")
		}
		return err
	})
}

func (c *Client) SearchContextWithRetry(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var result *SearchResponse
	err := c.retryOperation(ctx, func() error {
		var err error
		result, err = c.SearchContext(ctx, req)
		return err
	})
	return result, err
}

func isNameConflict(err error) bool {
	return strings.Contains(err.Error(), "File name already exists") ||
		strings.Contains(err.Error(), "BAD_REQUEST")
}

func shouldRetry(err error) bool {
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable() || isNameConflict(err)
	}
	return true
}

// retryOperation runs operation until it succeeds, fails with an error shouldRetry
// rejects, or MaxRetries retries have been spent.
func (c *Client) retryOperation(ctx context.Context, operation func() error) error {
	config := c.retry

	err := retry.Do(
		operation,
		retry.Context(ctx),
		retry.Attempts(uint(config.MaxRetries)+1),
		retry.Delay(config.BaseDelay),
		retry.MaxDelay(config.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(shouldRetry),
		retry.OnRetry(func(n uint, err error) {
			c.logger.WithFields(logrus.Fields{
				"attempt": n + 1,
				"error":   err.Error(),
			}).Warn("Retrying similarity store operation")
		}),
	)
	if err != nil && shouldRetry(err) {
		return fmt.Errorf("operation failed after %d retries: %w", config.MaxRetries, err)
	}
	return err
}
