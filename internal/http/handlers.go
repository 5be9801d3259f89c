package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"github.com/sujalbistaa/askk/internal/apperr"
	"github.com/sujalbistaa/askk/internal/service"
	"github.com/sujalbistaa/askk/internal/ws"
)

// --- Structs for request binding ---

type createPostInput struct {
	Title   string `json:"title"`
	Content string `json:"content" binding:"required,max=20000"`
	UserID  string `json:"userId"`
}

type deletePostsInput struct {
	UserID string `json:"userId" binding:"required"`
}

type askInput struct {
	Question string `json:"question" binding:"required"`
	PostID   string `json:"postId" binding:"required"`
}

// --- Handlers ---

// Env holds the handler dependencies.
type Env struct {
	Posts *service.PostService
	QA    *service.QAService
	Hub   *ws.Hub
}

func (e *Env) CreatePost(c *gin.Context) {
	var input createPostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title, content and userId must be valid; content is required"})
		return
	}

	post, userID, generated, err := e.Posts.Create(c.Request.Context(), input.Title, input.Content, input.UserID)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"post":            post,
		"userId":          userID,
		"userIdGenerated": generated,
	})
}

func (e *Env) ListPosts(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "userId is required"})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "page must be a positive integer"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "limit must be a positive integer"})
		return
	}

	pageResult, err := e.Posts.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageResult)
}

func (e *Env) GetPost(c *gin.Context) {
	post, err := e.Posts.GetByID(c.Request.Context(), c.Param("postId"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (e *Env) DeletePosts(c *gin.Context) {
	var input deletePostsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "userId is required"})
		return
	}

	deleted, err := e.Posts.DeleteAll(c.Request.Context(), input.UserID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": deleted})
}

func (e *Env) AskQuestion(c *gin.Context) {
	var input askInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "question and postId are required"})
		return
	}

	qa, err := e.QA.Ask(c.Request.Context(), input.Question, input.PostID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, qa)
}

func (e *Env) ListQA(c *gin.Context) {
	postID := c.Query("postId")
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "postId is required"})
		return
	}

	pairs, err := e.QA.ListForPost(c.Request.Context(), postID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, pairs)
}

func (e *Env) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// renderError converts a service error into the uniform { message } body.
func renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindGeneration:
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"message": apperr.Message(err)})
}
