package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/instatodoist/instant-todos-server/internal/auth"
	"github.com/instatodoist/instant-todos-server/internal/domain"
	"github.com/instatodoist/instant-todos-server/internal/services"
)

type stubLabelService struct {
	labels  []domain.Label
	addName string
}

func (s *stubLabelService) List(_ context.Context, _ primitive.ObjectID) ([]domain.Label, error) {
	return s.labels, nil
}

func (s *stubLabelService) Add(_ context.Context, _ primitive.ObjectID, name string) (services.OpResult, error) {
	s.addName = name
	return services.OpResult{OK: true, Message: "Todo label has been successfully added"}, nil
}

type LabelHandlerSuite struct {
	suite.Suite
	service *stubLabelService
	router  *gin.Engine
}

func (s *LabelHandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.service = &stubLabelService{}
	handler := NewLabelHandler(s.service, nil)

	userID := primitive.NewObjectID()
	s.router = gin.New()
	s.router.Use(func(c *gin.Context) {
		c.Set(auth.UserIDKey, userID)
		c.Next()
	})
	s.router.GET("/labels", handler.ListLabels)
	s.router.POST("/labels", handler.CreateLabel)
}

func TestLabelHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(LabelHandlerSuite))
}

func (s *LabelHandlerSuite) TestListLabels() {
	s.service.labels = []domain.Label{{Name: "work"}, {Name: "home"}}

	req := httptest.NewRequest(http.MethodGet, "/labels", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusOK))

	var body map[string]any
	Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
	Expect(body["data"]).To(HaveLen(2))
}

func (s *LabelHandlerSuite) TestCreateLabel() {
	req := httptest.NewRequest(http.MethodPost, "/labels", strings.NewReader(`{"name": "work"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusCreated))
	Expect(s.service.addName).To(Equal("work"))

	var body map[string]any
	Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
	Expect(body["message"]).To(Equal("Todo label has been successfully added"))
}

func (s *LabelHandlerSuite) TestCreateLabelWithoutNameFails() {
	req := httptest.NewRequest(http.MethodPost, "/labels", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusBadRequest))
	Expect(s.service.addName).To(BeEmpty())
}
