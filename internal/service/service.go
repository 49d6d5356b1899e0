// Package service implements the found-item operations and the claim
// lifecycle. Every operation consults the access policy before touching
// storage and returns model.AppError values the API maps to statuses.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/najdeno/internal/cache"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
)

// Service runs operations against one database.
type Service struct {
	db    *sql.DB
	cache *cache.Cache

	// Now stamps review and pickup times.
	Now func() time.Time
}

// New returns a Service. The cache may be nil.
func New(db *sql.DB, c *cache.Cache) *Service {
	return &Service{db: db, cache: c, Now: time.Now}
}

func (s *Service) now() time.Time {
	return s.Now().UTC().Truncate(time.Second)
}

// deny records a policy refusal for op.
func deny(op, message string) error {
	metrics.PolicyDenials.WithLabelValues(op).Inc()
	return model.NewForbiddenError(message)
}

func unauthenticated() error {
	return model.NewUnauthenticatedError("authentication required")
}

// storageError passes classified errors through and wraps the rest.
func storageError(err error) error {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return model.NewStorageError(err)
}

// Ping checks the database and the cache.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return s.cache.Ping(ctx)
}
