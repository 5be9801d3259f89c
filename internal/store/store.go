// Package store persists users, posts, and Q&A pairs. Two backends exist:
// a GORM one (SQLite for local dev and tests, PostgreSQL for relational
// deployments) and a MongoDB one, the store the original deployment ran
// on. The backend is chosen by the DATABASE_URL scheme.
package store

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sujalbistaa/askk/internal/apperr"
	"github.com/sujalbistaa/askk/internal/config"
	"github.com/sujalbistaa/askk/internal/models"
)

// Pagination bounds. Page is 1-indexed.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Store is the persistence contract shared by all backends.
type Store interface {
	// EnsureUser resolves an external user id to a User, creating one on
	// first sight. An empty externalID mints a fresh identity.
	EnsureUser(ctx context.Context, externalID string) (models.User, error)

	// UserByExternalID looks a user up without creating one.
	UserByExternalID(ctx context.Context, externalID string) (models.User, error)

	CreatePost(ctx context.Context, title, content, ownerID string) (models.Post, error)

	// ListPosts returns one page of the owner's posts, newest-first, plus
	// the owner's total post count. Page is 1-indexed.
	ListPosts(ctx context.Context, ownerID string, page, pageSize int) ([]models.Post, int64, error)

	PostByID(ctx context.Context, id string) (models.Post, error)

	// DeletePostsByOwner removes all of the owner's posts and their Q&A
	// pairs. The returned count covers posts only.
	DeletePostsByOwner(ctx context.Context, ownerID string) (int64, error)

	CreateQA(ctx context.Context, question, answer, postID string) (models.QAPair, error)

	// ListQA returns every pair for the post, newest-first.
	ListQA(ctx context.Context, postID string) ([]models.QAPair, error)

	Close(ctx context.Context) error
}

// Open connects the backend selected by the DATABASE_URL scheme.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	dbURL := cfg.DatabaseURL

	switch {
	case strings.HasPrefix(dbURL, "mongodb://"), strings.HasPrefix(dbURL, "mongodb+srv://"):
		return openMongo(ctx, dbURL, cfg.MongoDB)
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "sqlite://"):
		return openGorm(dbURL)
	default:
		return nil, apperr.Internal("invalid DATABASE_URL: scheme must be sqlite://, postgres://, mongodb:// or mongodb+srv://", nil)
	}
}

// checkID rejects ids that are not well-formed UUIDs before they reach a
// backend, so malformed input surfaces as a validation failure rather than
// a spurious miss.
func checkID(id, what string) error {
	if uuid.Validate(id) != nil {
		return apperr.Validation("malformed " + what)
	}
	return nil
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
