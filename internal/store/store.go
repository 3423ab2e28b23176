// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/jdelaney/capstone-planner/internal/domain"
)

// Repository defines the interface for persisting planning sessions.
type Repository interface {
	// GetSession retrieves the planning session for a user, or nil if the
	// user has no session yet.
	GetSession(ctx context.Context, userID string) (*domain.PlanningSession, error)

	// UpsertSession creates or updates a planning session.
	UpsertSession(ctx context.Context, session *domain.PlanningSession) error

	// DeleteSession removes a planning session (explicit session reset).
	DeleteSession(ctx context.Context, userID string) error

	// CleanupExpiredSessions removes sessions idle longer than ttl and
	// returns the number removed.
	CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
