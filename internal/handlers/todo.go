package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/instatodoist/instant-todos-server/internal/auth"
	"github.com/instatodoist/instant-todos-server/internal/domain"
	"github.com/instatodoist/instant-todos-server/internal/query"
	"github.com/instatodoist/instant-todos-server/internal/services"
	"github.com/instatodoist/instant-todos-server/internal/shared"
)

const defaultPageSize = 50

// TodoService is the service surface the todo handler depends on.
type TodoService interface {
	List(ctx context.Context, userID primitive.ObjectID, opts services.ListOptions) (query.TodoConnection, error)
	Add(ctx context.Context, userID primitive.ObjectID, input services.TodoInput) (services.OpResult, error)
	Update(ctx context.Context, userID, todoID primitive.ObjectID, patch domain.TodoPatch) (services.OpResult, error)
	Delete(ctx context.Context, userID, todoID primitive.ObjectID) (services.OpResult, error)
	AddComment(ctx context.Context, userID, todoID primitive.ObjectID, description string) (services.OpResult, error)
	UpdateComment(ctx context.Context, userID, todoID, commentID primitive.ObjectID, description string) (services.OpResult, error)
}

// CreateTodoRequest is the create payload. Label is a hex object id.
type CreateTodoRequest struct {
	Title        string `json:"title" binding:"required,min=1"`
	Description  string `json:"description"`
	Label        string `json:"label"`
	Priority     string `json:"priority"`
	IsCompleted  bool   `json:"isCompleted"`
	IsInProgress bool   `json:"isInProgress"`
}

// UpdateTodoRequest carries only the fields the caller wants changed.
type UpdateTodoRequest struct {
	Title        *string `json:"title" binding:"omitempty,min=1"`
	Description  *string `json:"description"`
	Label        *string `json:"label"`
	Priority     *string `json:"priority"`
	IsCompleted  *bool   `json:"isCompleted"`
	IsInProgress *bool   `json:"isInProgress"`
}

type CommentRequest struct {
	Description string `json:"description" binding:"required,min=1"`
}

// TodoHandler handles HTTP requests for todo operations.
type TodoHandler struct {
	service TodoService
	logger  *otelzap.Logger
}

func NewTodoHandler(service TodoService, logger *otelzap.Logger) *TodoHandler {
	return &TodoHandler{service: service, logger: logger}
}

func (t *TodoHandler) ListTodos(c *gin.Context) {
	ctx, span := shared.CreateChildSpan(c.Request.Context(), "handler.todo.ListTodos", []attribute.KeyValue{
		attribute.String("handler.operation", "ListTodos"),
		attribute.String("handler.path", c.FullPath()),
	})
	defer span.End()

	userID, ok := auth.CurrentUserID(c)
	if !ok {
		shared.SendUnauthorizedError(c, "Authentication required")
		return
	}

	opts, ok := t.parseListOptions(c)
	if !ok {
		return
	}

	span.SetAttributes(
		attribute.String("user.id", userID.Hex()),
		attribute.Int("todo.first", opts.First),
		attribute.Int("todo.offset", opts.Offset),
	)

	conn, err := t.service.List(ctx, userID, opts)
	if err != nil {
		shared.AddSpanError(span, err)
		t.respondError(c, ctx, "Error getting todos", err)
		return
	}

	c.JSON(http.StatusOK, conn)
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := auth.CurrentUserID(c)
	if !ok {
		shared.SendUnauthorizedError(c, "Authentication required")
		return
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.SendValidationError(c, err)
		return
	}

	label, ok := t.parseOptionalObjectID(c, "label", req.Label)
	if !ok {
		return
	}

	res, err := t.service.Add(ctx, userID, services.TodoInput{
		Title:        req.Title,
		Description:  req.Description,
		Label:        label,
		Priority:     req.Priority,
		IsCompleted:  req.IsCompleted,
		IsInProgress: req.IsInProgress,
	})
	if err != nil {
		t.respondError(c, ctx, "Error creating todo", err)
		return
	}

	shared.SendSuccess(c, http.StatusCreated, res, res.Message)
}

func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := auth.CurrentUserID(c)
	if !ok {
		shared.SendUnauthorizedError(c, "Authentication required")
		return
	}

	todoID, ok := t.parsePathObjectID(c, "id")
	if !ok {
		return
	}

	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.SendValidationError(c, err)
		return
	}

	patch := domain.TodoPatch{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		IsCompleted:  req.IsCompleted,
		IsInProgress: req.IsInProgress,
	}

	if req.Label != nil {
		label, ok := t.parseOptionalObjectID(c, "label", *req.Label)
		if !ok {
			return
		}
		patch.Label = label
	}

	if patch.IsEmpty() {
		shared.SendBadRequestError(c, "body", "No fields to update")
		return
	}

	res, err := t.service.Update(ctx, userID, todoID, patch)
	if err != nil {
		t.respondError(c, ctx, "Error updating todo", err)
		return
	}

	shared.SendSuccess(c, http.StatusOK, res, res.Message)
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := auth.CurrentUserID(c)
	if !ok {
		shared.SendUnauthorizedError(c, "Authentication required")
		return
	}

	todoID, ok := t.parsePathObjectID(c, "id")
	if !ok {
		return
	}

	res, err := t.service.Delete(ctx, userID, todoID)
	if err != nil {
		t.respondError(c, ctx, "Error deleting todo", err)
		return
	}

	shared.SendSuccess(c, http.StatusOK, res, res.Message)
}

func (t *TodoHandler) AddComment(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := auth.CurrentUserID(c)
	if !ok {
		shared.SendUnauthorizedError(c, "Authentication required")
		return
	}

	todoID, ok := t.parsePathObjectID(c, "id")
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.SendValidationError(c, err)
		return
	}

	res, err := t.service.AddComment(ctx, userID, todoID, req.Description)
	if err != nil {
		t.respondError(c, ctx, "Error commenting todo", err)
		return
	}

	shared.SendSuccess(c, http.StatusCreated, res, res.Message)
}

func (t *TodoHandler) UpdateComment(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := auth.CurrentUserID(c)
	if !ok {
		shared.SendUnauthorizedError(c, "Authentication required")
		return
	}

	todoID, ok := t.parsePathObjectID(c, "id")
	if !ok {
		return
	}

	commentID, ok := t.parsePathObjectID(c, "commentId")
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.SendValidationError(c, err)
		return
	}

	res, err := t.service.UpdateComment(ctx, userID, todoID, commentID, req.Description)
	if err != nil {
		t.respondError(c, ctx, "Error updating comment", err)
		return
	}

	shared.SendSuccess(c, http.StatusOK, res, res.Message)
}

// parseListOptions reads the listing knobs off the query string. Absent
// pagination params fall back to the first page of fifty; present but
// malformed ones are rejected.
func (t *TodoHandler) parseListOptions(c *gin.Context) (services.ListOptions, bool) {
	opts := services.ListOptions{First: defaultPageSize, Offset: 1}

	if raw := c.Query("first"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			shared.SendBadRequestError(c, "first", "must be an integer")
			return opts, false
		}
		opts.First = n
	}

	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			shared.SendBadRequestError(c, "offset", "must be an integer")
			return opts, false
		}
		opts.Offset = n
	}

	var filter query.Filter
	hasFilter := false

	if title := c.Query("title"); title != "" {
		filter.TitleContains = &title
		hasFilter = true
	}

	if raw := c.Query("label"); raw != "" {
		labelID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			shared.SendBadRequestError(c, "label", "must be a valid object id")
			return opts, false
		}
		filter.Label = &labelID
		hasFilter = true
	}

	if hasFilter {
		opts.Filter = &filter
	}

	for _, raw := range c.QueryArray("sort") {
		field, dir, found := strings.Cut(raw, ":")
		if !found || field == "" {
			shared.SendBadRequestError(c, "sort", "must look like field:ASC or field:DESC")
			return opts, false
		}

		opts.Sort = append(opts.Sort, query.SortField{
			Field:     field,
			Direction: query.Direction(strings.ToUpper(dir)),
		})
	}

	return opts, true
}

func (t *TodoHandler) parsePathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		shared.SendBadRequestError(c, name, "must be a valid object id")
		return primitive.NilObjectID, false
	}

	return id, true
}

func (t *TodoHandler) parseOptionalObjectID(c *gin.Context, field, raw string) (*primitive.ObjectID, bool) {
	if raw == "" {
		return nil, true
	}

	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		shared.SendBadRequestError(c, field, "must be a valid object id")
		return nil, false
	}

	return &id, true
}

func (t *TodoHandler) respondError(c *gin.Context, ctx context.Context, message string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		shared.SendBadRequestError(c, "query", err.Error())
	case errors.Is(err, domain.ErrNotFoundOrForbidden):
		shared.SendForbiddenError(c, "Todo is not accessible")
	default:
		if t.logger != nil {
			t.logger.Ctx(ctx).Error(message, zap.Error(err))
		}
		shared.SendInternalError(c, message)
	}
}
