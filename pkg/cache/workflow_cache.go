// Package cache provides a Redis-backed cache for workflow definitions.
// Workflow graphs are read on every resolution and effectively immutable
// between admin edits, so short-TTL caching is safe; a stale entry only
// delays an admin's edit becoming visible.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chrisrneal/task-manager-sub000/pkg/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "taskman:workflow:"

// WorkflowCache caches workflow documents by id. All failures degrade to a
// cache miss: the datastore stays the source of truth.
type WorkflowCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewWorkflowCache creates a cache from a redis URL (redis://host:port/db).
func NewWorkflowCache(redisURL string, ttl time.Duration, logger *slog.Logger) (*WorkflowCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &WorkflowCache{
		client: redis.NewClient(opts),
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Get returns the cached workflow, or (nil, false) on a miss.
func (c *WorkflowCache) Get(ctx context.Context, workflowID string) (*models.Workflow, bool) {
	data, err := c.client.Get(ctx, keyPrefix+workflowID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "workflow cache read failed", "workflow_id", workflowID, "error", err)
		}

		return nil, false
	}

	var workflow models.Workflow

	err = json.Unmarshal(data, &workflow)
	if err != nil {
		c.logger.WarnContext(ctx, "workflow cache entry corrupt", "workflow_id", workflowID, "error", err)

		return nil, false
	}

	return &workflow, true
}

// Set stores the workflow with the configured TTL.
func (c *WorkflowCache) Set(ctx context.Context, workflow *models.Workflow) {
	data, err := json.Marshal(workflow)
	if err != nil {
		c.logger.WarnContext(ctx, "workflow cache marshal failed", "workflow_id", workflow.ID, "error", err)

		return
	}

	err = c.client.Set(ctx, keyPrefix+workflow.ID, data, c.ttl).Err()
	if err != nil {
		c.logger.WarnContext(ctx, "workflow cache write failed", "workflow_id", workflow.ID, "error", err)
	}
}

// Invalidate drops the cached entry for a workflow, if any.
func (c *WorkflowCache) Invalidate(ctx context.Context, workflowID string) {
	err := c.client.Del(ctx, keyPrefix+workflowID).Err()
	if err != nil {
		c.logger.WarnContext(ctx, "workflow cache invalidation failed", "workflow_id", workflowID, "error", err)
	}
}

// Close releases the underlying redis client.
func (c *WorkflowCache) Close() error {
	return c.client.Close()
}
