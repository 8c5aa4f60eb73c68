// Package store keeps the per-session dashboard pages and the generated reports waiting to be downloaded.
// Memory is used by a single sam-ui instance; Redis lets several instances share sessions and report tokens.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/multiplica-sam/sam/internal/ui/client"
	"github.com/multiplica-sam/sam/internal/ui/dashboard"
)

var ErrNotFound = errors.New("not found")

// PageStore holds the last page loaded by each browser session
type PageStore interface {
	GetPage(ctx context.Context, sessionID string) (*dashboard.Page, error)
	SavePage(ctx context.Context, sessionID string, page *dashboard.Page) error
}

// ReportStore holds generated reports until they are downloaded once
type ReportStore interface {
	// PutReport stores r and returns the token used to download it
	PutReport(ctx context.Context, r *client.Report) (string, error)
	// TakeReport returns the report and deletes it. Unknown, expired and already taken tokens return ErrNotFound.
	TakeReport(ctx context.Context, token string) (*client.Report, error)
}

type Store interface {
	PageStore
	ReportStore
	Close() error
}

// NewToken returns a random identifier for sessions and reports
func NewToken() string {
	return uuid.NewString()
}

// ValidToken reports whether s looks like a token returned by NewToken
func ValidToken(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
