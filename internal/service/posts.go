// Package service orchestrates the post and Q&A flows between the store,
// the answer generator, and the websocket hub.
package service

import (
	"context"
	"strings"

	"github.com/phuslu/log"

	"github.com/sujalbistaa/askk/internal/apperr"
	"github.com/sujalbistaa/askk/internal/models"
	"github.com/sujalbistaa/askk/internal/store"
	"github.com/sujalbistaa/askk/internal/ws"
)

// Broadcaster pushes live events to connected clients. *ws.Hub satisfies
// it; tests pass nil.
type Broadcaster interface {
	BroadcastEvent(eventType string, data any)
}

// PostPage is one page of a user's posts plus pagination metadata.
type PostPage struct {
	Posts       []models.Post `json:"posts"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
	TotalPosts  int64         `json:"totalPosts"`
}

// PostService handles post creation, retrieval, and bulk deletion.
type PostService struct {
	store store.Store
	hub   Broadcaster
}

func NewPostService(st store.Store, hub Broadcaster) *PostService {
	return &PostService{store: st, hub: hub}
}

// Create stores a new post. An empty externalUserID mints a fresh identity;
// the caller must hand the resolved id back to the client so later requests
// reuse the same owner. generated reports whether that happened.
func (s *PostService) Create(ctx context.Context, title, content, externalUserID string) (models.Post, string, bool, error) {
	if strings.TrimSpace(content) == "" {
		return models.Post{}, "", false, apperr.Validation("content is required")
	}
	if strings.TrimSpace(title) == "" {
		title = models.DefaultTitle
	}

	generated := externalUserID == ""
	user, err := s.store.EnsureUser(ctx, externalUserID)
	if err != nil {
		return models.Post{}, "", false, err
	}

	post, err := s.store.CreatePost(ctx, title, content, user.ID)
	if err != nil {
		return models.Post{}, "", false, err
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(ws.EventNewPost, post)
	}
	log.Info().Str("post_id", post.ID).Bool("owner_generated", generated).Msg("post created")

	return post, user.ExternalUserID, generated, nil
}

// List returns one page of the user's posts, newest-first. Page is
// 1-indexed; pageSize defaults to 10.
func (s *PostService) List(ctx context.Context, externalUserID string, page, pageSize int) (PostPage, error) {
	if externalUserID == "" {
		return PostPage{}, apperr.Validation("userId is required")
	}

	user, err := s.store.UserByExternalID(ctx, externalUserID)
	if err != nil {
		return PostPage{}, err
	}

	// Mirror the store's clamping so totalPages is computed from the
	// page size actually served.
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = store.DefaultPageSize
	}
	if pageSize > store.MaxPageSize {
		pageSize = store.MaxPageSize
	}

	posts, total, err := s.store.ListPosts(ctx, user.ID, page, pageSize)
	if err != nil {
		return PostPage{}, err
	}
	if posts == nil {
		posts = []models.Post{}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return PostPage{
		Posts:       posts,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalPosts:  total,
	}, nil
}

// GetByID resolves a single post.
func (s *PostService) GetByID(ctx context.Context, postID string) (models.Post, error) {
	if postID == "" {
		return models.Post{}, apperr.Validation("postId is required")
	}
	return s.store.PostByID(ctx, postID)
}

// DeleteAll removes every post the user owns, along with their Q&A pairs,
// and returns the number of posts removed.
func (s *PostService) DeleteAll(ctx context.Context, externalUserID string) (int64, error) {
	if externalUserID == "" {
		return 0, apperr.Validation("userId is required")
	}

	user, err := s.store.UserByExternalID(ctx, externalUserID)
	if err != nil {
		return 0, err
	}

	deleted, err := s.store.DeletePostsByOwner(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	log.Info().Str("user_id", user.ID).Int64("deleted", deleted).Msg("posts deleted")
	return deleted, nil
}
