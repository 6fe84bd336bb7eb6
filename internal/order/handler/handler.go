package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mnavarro-dev/pedidos-service/internal/apperr"
	"github.com/mnavarro-dev/pedidos-service/internal/model"
	"github.com/mnavarro-dev/pedidos-service/internal/order"
	"github.com/mnavarro-dev/pedidos-service/internal/order/dto"
)

type OrderHandler struct {
	uc     order.UseCase
	logger *zap.Logger
}

func NewOrderHandler(uc order.UseCase, log *zap.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: log}
}

func (h *OrderHandler) Register(r gin.IRouter) {
	r.POST("/orders", h.Create)
	r.GET("/orders", h.List)
	r.GET("/orders/:id", h.GetByID)
	r.GET("/orders/number/:number", h.GetByNumber)
	r.POST("/orders/:id/transition", h.Transition)
}

func (h *OrderHandler) Create(c *gin.Context) {
	var in dto.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.uc.Create(c.Request.Context(), &in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreatedOrder{
		OrderID:     created.ID,
		OrderNumber: created.OrderNumber,
		State:       created.State,
		Total:       created.Total,
	})
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	found, err := h.uc.Get(c.Request.Context(), &dto.GetOrderQuery{ID: id})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *OrderHandler) GetByNumber(c *gin.Context) {
	found, err := h.uc.Get(c.Request.Context(), &dto.GetOrderQuery{OrderNumber: c.Param("number")})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

type transitionRequest struct {
	State   string `json:"state" binding:"required"`
	Comment string `json:"comment"`
}

func (h *OrderHandler) Transition(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.uc.Transition(c.Request.Context(), id, model.OrderState(req.State), req.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// List serves both by-user and by-state listings via query parameters.
func (h *OrderHandler) List(c *gin.Context) {
	if rawUser := c.Query("user_id"); rawUser != "" {
		userID, err := strconv.ParseInt(rawUser, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		list, err := h.uc.ListByUser(c.Request.Context(), userID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
		return
	}

	if state := c.Query("state"); state != "" {
		list, err := h.uc.ListByState(c.Request.Context(), model.OrderState(state))
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "a user_id or state query parameter is required"})
}

func (h *OrderHandler) respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.KindConflict:
		body := gin.H{"error": err.Error()}
		if shortages := apperr.ShortagesOf(err); len(shortages) > 0 {
			body["shortages"] = shortages
		}
		c.JSON(http.StatusConflict, body)
	default:
		h.logger.Error("order request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
