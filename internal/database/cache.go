package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/Ayash-Bera/aidline/pkg/utils"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	EvidenceContextKey = "evidence:context:%s"
	DefaultEvidenceTTL = 10 * time.Minute
)

// EvidenceCache keeps assembled evidence contexts in redis. Entries expire by TTL.
type EvidenceCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *logrus.Logger
}

func NewEvidenceCache(client redis.Cmdable, ttl time.Duration, logger *logrus.Logger) *EvidenceCache {
	if ttl <= 0 {
		ttl = DefaultEvidenceTTL
	}
	return &EvidenceCache{client: client, ttl: ttl, logger: logger}
}

// EvidenceKey is the redis key for a normalized query.
func EvidenceKey(normalizedQuery string) string {
	return fmt.Sprintf(EvidenceContextKey, utils.MD5Hash(normalizedQuery))
}

// GetEvidence returns nil without error on a miss.
func (c *EvidenceCache) GetEvidence(ctx context.Context, normalizedQuery string) (*models.EvidenceContext, error) {
	data, err := c.client.Get(ctx, EvidenceKey(normalizedQuery)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read evidence cache: %w", err)
	}

	var ec models.EvidenceContext
	if err := json.Unmarshal(data, &ec); err != nil {
		return nil, fmt.Errorf("failed to decode cached evidence: %w", err)
	}
	return &ec, nil
}

func (c *EvidenceCache) SetEvidence(ctx context.Context, normalizedQuery string, ec *models.EvidenceContext) error {
	data, err := json.Marshal(ec)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence context: %w", err)
	}

	if err := c.client.Set(ctx, EvidenceKey(normalizedQuery), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write evidence cache: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"condition": ec.Condition,
		"bytes":     len(data),
		"ttl":       c.ttl.String(),
	}).Debug("Cached evidence context")
	return nil
}

// InvalidateEvidence drops the cached context of one query.
func (c *EvidenceCache) InvalidateEvidence(ctx context.Context, normalizedQuery string) error {
	return c.client.Del(ctx, EvidenceKey(normalizedQuery)).Err()
}
