package service

import (
	"context"
	"strings"

	"github.com/phuslu/log"

	"github.com/sujalbistaa/askk/internal/apperr"
	"github.com/sujalbistaa/askk/internal/llm"
	"github.com/sujalbistaa/askk/internal/models"
	"github.com/sujalbistaa/askk/internal/store"
	"github.com/sujalbistaa/askk/internal/ws"
)

// QAService handles the question-answering flow: resolve the post, ask the
// model with the post content as context, persist the pair.
type QAService struct {
	store     store.Store
	generator llm.Generator
	hub       Broadcaster
}

func NewQAService(st store.Store, gen llm.Generator, hub Broadcaster) *QAService {
	return &QAService{store: st, generator: gen, hub: hub}
}

// Ask answers a question about a post and persists the resulting pair.
// The post is resolved before the generator is invoked, so a missing post
// never costs a model call. Generation and persistence are not coupled:
// if the insert fails after a successful completion, the answer is lost
// and the caller gets the error.
func (s *QAService) Ask(ctx context.Context, question, postID string) (models.QAPair, error) {
	if strings.TrimSpace(question) == "" {
		return models.QAPair{}, apperr.Validation("question is required")
	}
	if postID == "" {
		return models.QAPair{}, apperr.Validation("postId is required")
	}

	post, err := s.store.PostByID(ctx, postID)
	if err != nil {
		return models.QAPair{}, err
	}

	answer, err := s.generator.GenerateAnswer(ctx, question, post.Content)
	if err != nil {
		return models.QAPair{}, err
	}

	qa, err := s.store.CreateQA(ctx, question, answer, post.ID)
	if err != nil {
		return models.QAPair{}, err
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(ws.EventNewAnswer, qa)
	}
	log.Info().Str("post_id", post.ID).Str("qa_id", qa.ID).Msg("question answered")

	return qa, nil
}

// ListForPost returns every pair for the post, newest-first.
func (s *QAService) ListForPost(ctx context.Context, postID string) ([]models.QAPair, error) {
	if postID == "" {
		return nil, apperr.Validation("postId is required")
	}
	pairs, err := s.store.ListQA(ctx, postID)
	if err != nil {
		return nil, err
	}
	if pairs == nil {
		pairs = []models.QAPair{}
	}
	return pairs, nil
}
