// Package domain defines the business logic for the presence service.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrUserRequired is returned when a change or query carries no user id.
var ErrUserRequired = errors.New("user id is required")

// SessionStore captures persistence operations for sessions and reference rows.
type SessionStore interface {
	// RecordTransition atomically closes the user's open session (if any),
	// opens a new one for the change's activity, and refreshes the user row.
	RecordTransition(ctx context.Context, change Change) error
	// RawSessionsByUser returns every session row for the user ordered by
	// activity label ascending, so same-label rows arrive adjacent.
	RawSessionsByUser(ctx context.Context, userID string) ([]Session, error)
	// GetUser returns the user row, or nil when unknown.
	GetUser(ctx context.Context, userID string) (*User, error)
}

// Service orchestrates presence recording and history reads.
type Service struct {
	store SessionStore
}

// NewService constructs a Service.
func NewService(store SessionStore) *Service {
	return &Service{store: store}
}

// RecordChange normalises and persists one presence transition. An empty
// activity label means "no activity" and is stored as ActivityNone.
func (s *Service) RecordChange(ctx context.Context, change Change) error {
	if strings.TrimSpace(change.UserID) == "" {
		return ErrUserRequired
	}
	if strings.TrimSpace(change.Activity) == "" {
		change.Activity = ActivityNone
	}
	if change.ObservedAt.IsZero() {
		change.ObservedAt = time.Now().UTC()
	}
	return s.store.RecordTransition(ctx, change)
}

// HistoryForUser returns the user's reconciled session timeline.
func (s *Service) HistoryForUser(ctx context.Context, userID string) ([]Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserRequired
	}
	raw, err := s.store.RawSessionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Reconcile(raw), nil
}

// GetUser returns the stored user row, or nil when the user was never observed.
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserRequired
	}
	return s.store.GetUser(ctx, userID)
}
