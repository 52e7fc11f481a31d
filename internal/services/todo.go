package services

import (
	"context"
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/instatodoist/instant-todos-server/internal/cache"
	"github.com/instatodoist/instant-todos-server/internal/domain"
	"github.com/instatodoist/instant-todos-server/internal/query"
	"github.com/instatodoist/instant-todos-server/internal/shared"
)

// TodoStore is the slice of the document store the todo service needs.
type TodoStore interface {
	List(ctx context.Context, userID primitive.ObjectID, f *query.Filter, sort []query.SortField, page query.Page, asOf query.DateParts) (query.TodoConnection, error)
	Insert(ctx context.Context, todo domain.Todo) error
	Update(ctx context.Context, userID, todoID primitive.ObjectID, patch domain.TodoPatch) error
	SoftDelete(ctx context.Context, userID, todoID primitive.ObjectID) error
	AddComment(ctx context.Context, userID, todoID primitive.ObjectID, description string) error
	UpdateComment(ctx context.Context, userID, todoID, commentID primitive.ObjectID, description string) error
}

// ListCache is the listing cache surface. Satisfied by cache.TodoCache.
type ListCache interface {
	GetList(ctx context.Context, key string) (query.TodoConnection, bool, error)
	SetList(ctx context.Context, key string, conn query.TodoConnection) error
	InvalidateUser(ctx context.Context, userID primitive.ObjectID) error
}

// OpResult is the envelope every mutation returns.
type OpResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// ListOptions carries the caller-controlled listing knobs. First and Offset
// must already be resolved to positive values (transport applies the 50/1
// defaults for absent parameters).
type ListOptions struct {
	Filter *query.Filter
	Sort   []query.SortField
	First  int
	Offset int
}

// TodoInput is the create payload.
type TodoInput struct {
	Title        string `validate:"required,min=1"`
	Description  string
	Label        *primitive.ObjectID
	Priority     string
	IsCompleted  bool
	IsInProgress bool
}

// TodoService orchestrates the listing engine and the conditional writes.
// The cache, metrics and logger are optional; a nil cache disables listing
// reuse.
type TodoService struct {
	store   TodoStore
	clock   query.Clock
	cache   ListCache
	metrics *shared.AppMetrics
	logger  *otelzap.Logger
}

func NewTodoService(store TodoStore, clock query.Clock, c ListCache, metrics *shared.AppMetrics, logger *otelzap.Logger) *TodoService {
	if clock == nil {
		clock = query.SystemClock()
	}

	return &TodoService{store: store, clock: clock, cache: c, metrics: metrics, logger: logger}
}

// List returns the requested page of today's todos plus the total count.
func (s *TodoService) List(ctx context.Context, userID primitive.ObjectID, opts ListOptions) (query.TodoConnection, error) {
	s.recordOp(ctx, "list")

	page, err := query.NewPage(opts.First, opts.Offset)
	if err != nil {
		return query.TodoConnection{}, err
	}

	asOf := query.DatePartsOf(s.clock.Now())

	var key string
	if s.cache != nil {
		key = cache.ListKey(userID, asOf, opts.Filter, opts.Sort, page)

		if conn, ok, err := s.cache.GetList(ctx, key); err != nil {
			s.logWarn(ctx, "todo list cache read failed", err)
		} else if ok {
			if s.metrics != nil {
				s.metrics.RecordCacheHit(ctx, "todos.list")
			}
			return conn, nil
		}

		if s.metrics != nil {
			s.metrics.RecordCacheMiss(ctx, "todos.list")
		}
	}

	conn, err := s.store.List(ctx, userID, opts.Filter, opts.Sort, page, asOf)
	if err != nil {
		return query.TodoConnection{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetList(ctx, key, conn); err != nil {
			s.logWarn(ctx, "todo list cache write failed", err)
		}
	}

	return conn, nil
}

// Add stores a fresh todo owned by userID. New todos are live and
// mutable: soft-delete off, status on.
func (s *TodoService) Add(ctx context.Context, userID primitive.ObjectID, input TodoInput) (OpResult, error) {
	s.recordOp(ctx, "add")

	if err := shared.Validate(input); err != nil {
		return OpResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	now := s.clock.Now()

	isInProgress := input.IsInProgress
	if input.IsCompleted {
		isInProgress = false
	}

	todo := domain.Todo{
		Title:        input.Title,
		Description:  input.Description,
		Label:        input.Label,
		Priority:     input.Priority,
		IsCompleted:  input.IsCompleted,
		IsInProgress: isInProgress,
		Comments:     []domain.Comment{},
		User:         userID,
		IsDeleted:    false,
		Status:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Insert(ctx, todo); err != nil {
		return OpResult{}, err
	}

	s.invalidate(ctx, userID)

	return OpResult{OK: true, Message: "Todo has been successfully added"}, nil
}

// Update patches one todo. Completing a todo always clears its
// in-progress flag; the two states are mutually exclusive.
func (s *TodoService) Update(ctx context.Context, userID, todoID primitive.ObjectID, patch domain.TodoPatch) (OpResult, error) {
	s.recordOp(ctx, "update")

	if patch.IsCompleted != nil && *patch.IsCompleted {
		notInProgress := false
		patch.IsInProgress = &notInProgress
	}

	if err := s.store.Update(ctx, userID, todoID, patch); err != nil {
		return OpResult{}, err
	}

	s.invalidate(ctx, userID)

	return OpResult{OK: true, Message: "Todo has been successfully updated"}, nil
}

// Delete flips the soft-delete flag; the document stays in the store.
func (s *TodoService) Delete(ctx context.Context, userID, todoID primitive.ObjectID) (OpResult, error) {
	s.recordOp(ctx, "delete")

	if err := s.store.SoftDelete(ctx, userID, todoID); err != nil {
		return OpResult{}, err
	}

	s.invalidate(ctx, userID)

	return OpResult{OK: true, Message: "Todo deleted successfully"}, nil
}

func (s *TodoService) AddComment(ctx context.Context, userID, todoID primitive.ObjectID, description string) (OpResult, error) {
	s.recordOp(ctx, "add_comment")

	if err := s.store.AddComment(ctx, userID, todoID, description); err != nil {
		return OpResult{}, err
	}

	s.invalidate(ctx, userID)

	return OpResult{OK: true, Message: "Todo has been successfully commented"}, nil
}

func (s *TodoService) UpdateComment(ctx context.Context, userID, todoID, commentID primitive.ObjectID, description string) (OpResult, error) {
	s.recordOp(ctx, "update_comment")

	if err := s.store.UpdateComment(ctx, userID, todoID, commentID, description); err != nil {
		return OpResult{}, err
	}

	s.invalidate(ctx, userID)

	return OpResult{OK: true, Message: "Todo has been successfully updated"}, nil
}

func (s *TodoService) recordOp(ctx context.Context, operation string) {
	if s.metrics != nil {
		s.metrics.RecordTodoOperation(ctx, operation)
	}
}

func (s *TodoService) invalidate(ctx context.Context, userID primitive.ObjectID) {
	if s.cache == nil {
		return
	}

	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logWarn(ctx, "todo list cache invalidation failed", err)
	}
}

func (s *TodoService) logWarn(ctx context.Context, msg string, err error) {
	if s.logger == nil {
		return
	}

	s.logger.Ctx(ctx).Warn(msg, zap.Error(err))
}
