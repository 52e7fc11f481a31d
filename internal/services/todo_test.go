package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/instatodoist/instant-todos-server/internal/cache"
	"github.com/instatodoist/instant-todos-server/internal/domain"
	"github.com/instatodoist/instant-todos-server/internal/query"
)

var fixedNow = time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

// fakeTodoStore records calls and applies patches to a single held document,
// mimicking the conditional-write behavior of the real collection.
type fakeTodoStore struct {
	doc       *domain.Todo
	listCalls []listCall
	listReply query.TodoConnection
	listErr   error
	inserted  []domain.Todo
}

type listCall struct {
	userID primitive.ObjectID
	filter *query.Filter
	sort   []query.SortField
	page   query.Page
	asOf   query.DateParts
}

func (f *fakeTodoStore) List(_ context.Context, userID primitive.ObjectID, filter *query.Filter, sort []query.SortField, page query.Page, asOf query.DateParts) (query.TodoConnection, error) {
	f.listCalls = append(f.listCalls, listCall{userID: userID, filter: filter, sort: sort, page: page, asOf: asOf})
	return f.listReply, f.listErr
}

func (f *fakeTodoStore) Insert(_ context.Context, todo domain.Todo) error {
	f.inserted = append(f.inserted, todo)
	return nil
}

func (f *fakeTodoStore) matches(userID, todoID primitive.ObjectID, requireStatus bool) bool {
	if f.doc == nil {
		return false
	}
	if f.doc.ID != todoID || f.doc.User != userID || f.doc.IsDeleted {
		return false
	}
	if requireStatus && !f.doc.Status {
		return false
	}
	return true
}

func (f *fakeTodoStore) Update(_ context.Context, userID, todoID primitive.ObjectID, patch domain.TodoPatch) error {
	if !f.matches(userID, todoID, true) {
		return domain.ErrNotFoundOrForbidden
	}

	if patch.Title != nil {
		f.doc.Title = *patch.Title
	}
	if patch.Description != nil {
		f.doc.Description = *patch.Description
	}
	if patch.Label != nil {
		f.doc.Label = patch.Label
	}
	if patch.IsCompleted != nil {
		f.doc.IsCompleted = *patch.IsCompleted
	}
	if patch.IsInProgress != nil {
		f.doc.IsInProgress = *patch.IsInProgress
	}
	if patch.Priority != nil {
		f.doc.Priority = *patch.Priority
	}

	return nil
}

func (f *fakeTodoStore) SoftDelete(_ context.Context, userID, todoID primitive.ObjectID) error {
	if !f.matches(userID, todoID, true) {
		return domain.ErrNotFoundOrForbidden
	}

	f.doc.IsDeleted = true

	return nil
}

func (f *fakeTodoStore) AddComment(_ context.Context, userID, todoID primitive.ObjectID, description string) error {
	if !f.matches(userID, todoID, false) {
		return domain.ErrNotFoundOrForbidden
	}

	f.doc.Comments = append(f.doc.Comments, domain.Comment{ID: primitive.NewObjectID(), Description: description})

	return nil
}

func (f *fakeTodoStore) UpdateComment(_ context.Context, userID, todoID, commentID primitive.ObjectID, description string) error {
	if !f.matches(userID, todoID, false) {
		return domain.ErrNotFoundOrForbidden
	}

	for i := range f.doc.Comments {
		if f.doc.Comments[i].ID == commentID {
			f.doc.Comments[i].Description = description
			return nil
		}
	}

	return domain.ErrNotFoundOrForbidden
}

// fakeListCache is an in-memory stand-in for the Redis listing cache.
type fakeListCache struct {
	entries     map[string]query.TodoConnection
	getErr      error
	invalidated []primitive.ObjectID
}

func newFakeListCache() *fakeListCache {
	return &fakeListCache{entries: map[string]query.TodoConnection{}}
}

func (f *fakeListCache) GetList(_ context.Context, key string) (query.TodoConnection, bool, error) {
	if f.getErr != nil {
		return query.TodoConnection{}, false, f.getErr
	}

	conn, ok := f.entries[key]
	return conn, ok, nil
}

func (f *fakeListCache) SetList(_ context.Context, key string, conn query.TodoConnection) error {
	f.entries[key] = conn
	return nil
}

func (f *fakeListCache) InvalidateUser(_ context.Context, userID primitive.ObjectID) error {
	f.invalidated = append(f.invalidated, userID)

	for key := range f.entries {
		if strings.Contains(key, userID.Hex()) {
			delete(f.entries, key)
		}
	}

	return nil
}

type TodoServiceTestSuite struct {
	suite.Suite
	userID  primitive.ObjectID
	store   *fakeTodoStore
	service *TodoService
}

func (s *TodoServiceTestSuite) SetupTest() {
	s.userID = primitive.NewObjectID()
	s.store = &fakeTodoStore{}
	s.service = NewTodoService(s.store, query.FixedClock{T: fixedNow}, nil, nil, nil)
}

// withCache rebuilds the service around an in-memory listing cache.
func (s *TodoServiceTestSuite) withCache() *fakeListCache {
	c := newFakeListCache()
	s.service = NewTodoService(s.store, query.FixedClock{T: fixedNow}, c, nil, nil)
	return c
}

func (s *TodoServiceTestSuite) defaultListKey() string {
	return cache.ListKey(s.userID, query.DatePartsOf(fixedNow), nil, nil, query.Page{Skip: 0, Limit: 50})
}

func (s *TodoServiceTestSuite) seedDoc() primitive.ObjectID {
	id := primitive.NewObjectID()
	s.store.doc = &domain.Todo{
		ID:       id,
		Title:    "Write report",
		User:     s.userID,
		Status:   true,
		Comments: []domain.Comment{},
	}
	return id
}

func (s *TodoServiceTestSuite) TestListPassesClockDateToStore() {
	s.store.listReply = query.TodoConnection{TotalCount: 2, Data: []query.NormalizedTodo{}}

	conn, err := s.service.List(context.Background(), s.userID, ListOptions{First: 50, Offset: 1})

	s.Require().NoError(err)
	s.Equal(int64(2), conn.TotalCount)
	s.Require().Len(s.store.listCalls, 1)
	s.Equal(query.DateParts{Year: 2024, Month: 3, Day: 5}, s.store.listCalls[0].asOf)
	s.Equal(query.Page{Skip: 0, Limit: 50}, s.store.listCalls[0].page)
	s.Equal(s.userID, s.store.listCalls[0].userID)
}

func (s *TodoServiceTestSuite) TestListRejectsNonPositivePagination() {
	_, err := s.service.List(context.Background(), s.userID, ListOptions{First: 0, Offset: 1})
	s.Require().ErrorIs(err, domain.ErrInvalidArgument)

	_, err = s.service.List(context.Background(), s.userID, ListOptions{First: 10, Offset: -3})
	s.Require().ErrorIs(err, domain.ErrInvalidArgument)

	s.Empty(s.store.listCalls)
}

func (s *TodoServiceTestSuite) TestListCacheHitSkipsStore() {
	c := s.withCache()

	cached := query.TodoConnection{TotalCount: 7, Data: []query.NormalizedTodo{}}
	c.entries[s.defaultListKey()] = cached

	conn, err := s.service.List(context.Background(), s.userID, ListOptions{First: 50, Offset: 1})

	s.Require().NoError(err)
	s.Equal(cached, conn)
	s.Empty(s.store.listCalls)
}

func (s *TodoServiceTestSuite) TestListCacheMissStoresResult() {
	c := s.withCache()
	s.store.listReply = query.TodoConnection{TotalCount: 3, Data: []query.NormalizedTodo{}}

	conn, err := s.service.List(context.Background(), s.userID, ListOptions{First: 50, Offset: 1})

	s.Require().NoError(err)
	s.Equal(s.store.listReply, conn)
	s.Require().Len(s.store.listCalls, 1)
	s.Equal(s.store.listReply, c.entries[s.defaultListKey()])
}

func (s *TodoServiceTestSuite) TestListCacheReadErrorFallsBackToStore() {
	c := s.withCache()
	c.getErr = errors.New("connection refused")
	s.store.listReply = query.TodoConnection{TotalCount: 2, Data: []query.NormalizedTodo{}}

	conn, err := s.service.List(context.Background(), s.userID, ListOptions{First: 50, Offset: 1})

	s.Require().NoError(err)
	s.Equal(s.store.listReply, conn)
	s.Require().Len(s.store.listCalls, 1)
}

func (s *TodoServiceTestSuite) TestWritesInvalidateUserCache() {
	c := s.withCache()
	c.entries[s.defaultListKey()] = query.TodoConnection{TotalCount: 1}

	_, err := s.service.Add(context.Background(), s.userID, TodoInput{Title: "Buy milk"})

	s.Require().NoError(err)
	s.Contains(c.invalidated, s.userID)
	s.Empty(c.entries)
}

func (s *TodoServiceTestSuite) TestAddStoresLiveDocument() {
	res, err := s.service.Add(context.Background(), s.userID, TodoInput{Title: "Buy milk", IsInProgress: true})

	s.Require().NoError(err)
	s.True(res.OK)
	s.Equal("Todo has been successfully added", res.Message)
	s.Require().Len(s.store.inserted, 1)

	todo := s.store.inserted[0]
	s.Equal("Buy milk", todo.Title)
	s.Equal(s.userID, todo.User)
	s.False(todo.IsDeleted)
	s.True(todo.Status)
	s.True(todo.IsInProgress)
	s.NotNil(todo.Comments)
	s.Empty(todo.Comments)
	s.Equal(time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC), todo.CreatedAt)
}

func (s *TodoServiceTestSuite) TestAddCompletedClearsInProgress() {
	_, err := s.service.Add(context.Background(), s.userID, TodoInput{Title: "Done already", IsCompleted: true, IsInProgress: true})

	s.Require().NoError(err)
	s.Require().Len(s.store.inserted, 1)
	s.True(s.store.inserted[0].IsCompleted)
	s.False(s.store.inserted[0].IsInProgress)
}

func (s *TodoServiceTestSuite) TestUpdateCompletionClearsInProgress() {
	id := s.seedDoc()
	s.store.doc.IsInProgress = true

	completed := true
	res, err := s.service.Update(context.Background(), s.userID, id, domain.TodoPatch{IsCompleted: &completed})

	s.Require().NoError(err)
	s.True(res.OK)
	s.True(s.store.doc.IsCompleted)
	s.False(s.store.doc.IsInProgress)
}

func (s *TodoServiceTestSuite) TestAddWithoutTitleIsInvalid() {
	_, err := s.service.Add(context.Background(), s.userID, TodoInput{Description: "no title"})

	s.Require().ErrorIs(err, domain.ErrInvalidArgument)
	s.Empty(s.store.inserted)
}

func (s *TodoServiceTestSuite) TestUpdateTwiceWithSamePatchIsIdempotent() {
	id := s.seedDoc()

	title := "Quarterly report"
	completed := true
	patch := domain.TodoPatch{Title: &title, IsCompleted: &completed}

	_, err := s.service.Update(context.Background(), s.userID, id, patch)
	s.Require().NoError(err)
	afterFirst := *s.store.doc

	_, err = s.service.Update(context.Background(), s.userID, id, patch)
	s.Require().NoError(err)

	s.Equal(afterFirst, *s.store.doc)
}

func (s *TodoServiceTestSuite) TestUpdateForeignTodoFails() {
	id := s.seedDoc()
	s.store.doc.User = primitive.NewObjectID()

	title := "hijack"
	_, err := s.service.Update(context.Background(), s.userID, id, domain.TodoPatch{Title: &title})

	s.Require().ErrorIs(err, domain.ErrNotFoundOrForbidden)
	s.Equal("Write report", s.store.doc.Title)
}

func (s *TodoServiceTestSuite) TestDeleteIsSoft() {
	id := s.seedDoc()

	res, err := s.service.Delete(context.Background(), s.userID, id)

	s.Require().NoError(err)
	s.Equal("Todo deleted successfully", res.Message)
	s.True(s.store.doc.IsDeleted)
}

func (s *TodoServiceTestSuite) TestDeleteTwiceFails() {
	id := s.seedDoc()

	_, err := s.service.Delete(context.Background(), s.userID, id)
	s.Require().NoError(err)

	_, err = s.service.Delete(context.Background(), s.userID, id)
	s.Require().ErrorIs(err, domain.ErrNotFoundOrForbidden)
}

func (s *TodoServiceTestSuite) TestAddCommentAppends() {
	id := s.seedDoc()

	res, err := s.service.AddComment(context.Background(), s.userID, id, "looks good")

	s.Require().NoError(err)
	s.Equal("Todo has been successfully commented", res.Message)
	s.Require().Len(s.store.doc.Comments, 1)
	s.Equal("looks good", s.store.doc.Comments[0].Description)
	s.False(s.store.doc.Comments[0].ID.IsZero())
}

func (s *TodoServiceTestSuite) TestUpdateCommentRewritesOne() {
	id := s.seedDoc()

	_, err := s.service.AddComment(context.Background(), s.userID, id, "first")
	s.Require().NoError(err)
	_, err = s.service.AddComment(context.Background(), s.userID, id, "second")
	s.Require().NoError(err)

	commentID := s.store.doc.Comments[0].ID
	_, err = s.service.UpdateComment(context.Background(), s.userID, id, commentID, "revised")

	s.Require().NoError(err)
	s.Equal("revised", s.store.doc.Comments[0].Description)
	s.Equal("second", s.store.doc.Comments[1].Description)
}

func (s *TodoServiceTestSuite) TestUpdateCommentUnknownIDFails() {
	id := s.seedDoc()

	_, err := s.service.UpdateComment(context.Background(), s.userID, id, primitive.NewObjectID(), "ghost")

	s.Require().ErrorIs(err, domain.ErrNotFoundOrForbidden)
}

func TestTodoServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TodoServiceTestSuite))
}

func TestNewTodoServiceDefaultsClock(t *testing.T) {
	service := NewTodoService(&fakeTodoStore{}, nil, nil, nil, nil)
	assert.NotNil(t, service.clock)
}
