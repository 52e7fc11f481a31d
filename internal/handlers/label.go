package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/instatodoist/instant-todos-server/internal/auth"
	"github.com/instatodoist/instant-todos-server/internal/domain"
	"github.com/instatodoist/instant-todos-server/internal/services"
	"github.com/instatodoist/instant-todos-server/internal/shared"
)

// LabelService is the service surface the label handler depends on.
type LabelService interface {
	List(ctx context.Context, userID primitive.ObjectID) ([]domain.Label, error)
	Add(ctx context.Context, userID primitive.ObjectID, name string) (services.OpResult, error)
}

type CreateLabelRequest struct {
	Name string `json:"name" binding:"required,min=1"`
}

type LabelHandler struct {
	service LabelService
	logger  *otelzap.Logger
}

func NewLabelHandler(service LabelService, logger *otelzap.Logger) *LabelHandler {
	return &LabelHandler{service: service, logger: logger}
}

func (l *LabelHandler) ListLabels(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := auth.CurrentUserID(c)
	if !ok {
		shared.SendUnauthorizedError(c, "Authentication required")
		return
	}

	labels, err := l.service.List(ctx, userID)
	if err != nil {
		if l.logger != nil {
			l.logger.Ctx(ctx).Error("Failed to get labels", zap.Error(err))
		}
		shared.SendInternalError(c, "Error getting labels")
		return
	}

	shared.SendSuccess(c, http.StatusOK, labels)
}

func (l *LabelHandler) CreateLabel(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := auth.CurrentUserID(c)
	if !ok {
		shared.SendUnauthorizedError(c, "Authentication required")
		return
	}

	var req CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.SendValidationError(c, err)
		return
	}

	res, err := l.service.Add(ctx, userID, req.Name)
	if err != nil {
		if l.logger != nil {
			l.logger.Ctx(ctx).Error("Failed to create label", zap.Error(err))
		}
		shared.SendInternalError(c, "Error creating label")
		return
	}

	shared.SendSuccess(c, http.StatusCreated, res, res.Message)
}
