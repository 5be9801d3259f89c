package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/askk/internal/apperr"
	"github.com/sujalbistaa/askk/internal/config"
	"github.com/sujalbistaa/askk/internal/store"
)

// stubGenerator returns a fixed answer (or error) and counts calls.
type stubGenerator struct {
	answer string
	err    error
	calls  int
}

func (g *stubGenerator) GenerateAnswer(ctx context.Context, question, referenceText string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), config.Config{
		DatabaseURL: "sqlite://" + filepath.Join(t.TempDir(), "askk_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close(context.Background()) })
	return st
}

func TestPostServiceCreate(t *testing.T) {
	st := newTestStore(t)
	posts := NewPostService(st, nil)
	ctx := context.Background()

	t.Run("rejects missing content", func(t *testing.T) {
		_, _, _, err := posts.Create(ctx, "title", "", "")
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("mints an identity and flags it", func(t *testing.T) {
		post, userID, generated, err := posts.Create(ctx, "", "some content", "")
		require.NoError(t, err)

		assert.True(t, generated)
		assert.NoError(t, uuid.Validate(userID))
		assert.Equal(t, "Untitled Post", post.Title)
	})

	t.Run("reuses a known identity", func(t *testing.T) {
		_, userID, _, err := posts.Create(ctx, "first", "content", "")
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond) // keep created_at ordering unambiguous

		post, resolvedID, generated, err := posts.Create(ctx, "second", "more content", userID)
		require.NoError(t, err)

		assert.False(t, generated)
		assert.Equal(t, userID, resolvedID)

		page, err := posts.List(ctx, userID, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.TotalPosts)
		assert.Equal(t, post.ID, page.Posts[0].ID)
	})
}

func TestPostServiceList(t *testing.T) {
	st := newTestStore(t)
	posts := NewPostService(st, nil)
	ctx := context.Background()

	t.Run("requires a userId", func(t *testing.T) {
		_, err := posts.List(ctx, "", 1, 10)
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("misses an unknown user", func(t *testing.T) {
		_, err := posts.List(ctx, uuid.NewString(), 1, 10)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("computes total pages", func(t *testing.T) {
		_, userID, _, err := posts.Create(ctx, "t", "c", "")
		require.NoError(t, err)
		for i := 0; i < 6; i++ {
			_, _, _, err := posts.Create(ctx, "t", "c", userID)
			require.NoError(t, err)
		}

		page, err := posts.List(ctx, userID, 1, 3)
		require.NoError(t, err)
		assert.Equal(t, 1, page.CurrentPage)
		assert.Equal(t, 3, page.TotalPages) // ceil(7/3)
		assert.EqualValues(t, 7, page.TotalPosts)
		assert.Len(t, page.Posts, 3)
	})

	t.Run("clamps an oversized limit before computing pages", func(t *testing.T) {
		_, userID, _, err := posts.Create(ctx, "t", "c", "")
		require.NoError(t, err)
		for i := 0; i < store.MaxPageSize; i++ {
			_, _, _, err := posts.Create(ctx, "t", "c", userID)
			require.NoError(t, err)
		}

		// 101 posts, limit above the clamp: the first page holds
		// MaxPageSize items and the metadata must still reach the rest.
		page, err := posts.List(ctx, userID, 1, 1000)
		require.NoError(t, err)
		assert.Len(t, page.Posts, store.MaxPageSize)
		assert.EqualValues(t, store.MaxPageSize+1, page.TotalPosts)
		assert.Equal(t, 2, page.TotalPages)

		rest, err := posts.List(ctx, userID, 2, 1000)
		require.NoError(t, err)
		assert.Len(t, rest.Posts, 1)
	})
}

func TestPostServiceDeleteAll(t *testing.T) {
	st := newTestStore(t)
	posts := NewPostService(st, nil)
	ctx := context.Background()

	t.Run("misses an unknown user", func(t *testing.T) {
		_, err := posts.DeleteAll(ctx, uuid.NewString())
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("deletes every owned post", func(t *testing.T) {
		_, userID, _, err := posts.Create(ctx, "t", "c", "")
		require.NoError(t, err)
		_, _, _, err = posts.Create(ctx, "t", "c", userID)
		require.NoError(t, err)

		deleted, err := posts.DeleteAll(ctx, userID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, deleted)

		page, err := posts.List(ctx, userID, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 0, page.TotalPosts)
	})
}

func TestQAServiceAsk(t *testing.T) {
	st := newTestStore(t)
	posts := NewPostService(st, nil)
	ctx := context.Background()

	_, userID, _, err := posts.Create(ctx, "Cats", "Cats are mammals.", "")
	require.NoError(t, err)
	page, err := posts.List(ctx, userID, 1, 10)
	require.NoError(t, err)
	postID := page.Posts[0].ID

	t.Run("validates inputs", func(t *testing.T) {
		gen := &stubGenerator{answer: "whatever"}
		qa := NewQAService(st, gen, nil)

		_, err := qa.Ask(ctx, "", postID)
		assert.True(t, apperr.IsValidation(err))
		_, err = qa.Ask(ctx, "What are cats?", "")
		assert.True(t, apperr.IsValidation(err))
		assert.Zero(t, gen.calls)
	})

	t.Run("never calls the generator for a missing post", func(t *testing.T) {
		gen := &stubGenerator{answer: "whatever"}
		qa := NewQAService(st, gen, nil)

		_, err := qa.Ask(ctx, "What are cats?", uuid.NewString())
		assert.True(t, apperr.IsNotFound(err))
		assert.Zero(t, gen.calls)
	})

	t.Run("persists and returns the generated answer", func(t *testing.T) {
		gen := &stubGenerator{answer: "Cats are mammals."}
		qa := NewQAService(st, gen, nil)

		pair, err := qa.Ask(ctx, "What are cats?", postID)
		require.NoError(t, err)

		assert.Equal(t, "What are cats?", pair.Question)
		assert.Equal(t, "Cats are mammals.", pair.Answer)
		assert.Equal(t, postID, pair.PostID)
		assert.Equal(t, 1, gen.calls)

		stored, err := qa.ListForPost(ctx, postID)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, pair.ID, stored[0].ID)
	})

	t.Run("surfaces generation failure and persists nothing", func(t *testing.T) {
		gen := &stubGenerator{err: apperr.Generation("model unavailable", errors.New("boom"))}
		qa := NewQAService(st, gen, nil)

		before, err := qa.ListForPost(ctx, postID)
		require.NoError(t, err)

		_, err = qa.Ask(ctx, "What are cats?", postID)
		assert.True(t, apperr.IsGeneration(err))

		after, err := qa.ListForPost(ctx, postID)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})
}

func TestQAServiceListForPost(t *testing.T) {
	st := newTestStore(t)
	qa := NewQAService(st, &stubGenerator{answer: "a"}, nil)

	_, err := qa.ListForPost(context.Background(), "")
	assert.True(t, apperr.IsValidation(err))
}
