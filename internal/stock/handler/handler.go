package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mnavarro-dev/pedidos-service/internal/apperr"
	"github.com/mnavarro-dev/pedidos-service/internal/stock"
	"github.com/mnavarro-dev/pedidos-service/internal/stock/dto"
)

type StockHandler struct {
	uc     stock.UseCase
	logger *zap.Logger
}

func NewStockHandler(uc stock.UseCase, log *zap.Logger) *StockHandler {
	return &StockHandler{uc: uc, logger: log}
}

func (h *StockHandler) Register(r gin.IRouter) {
	r.GET("/stock/:productID", h.ProductStock)
	r.POST("/stock/verify", h.Verify)
}

func (h *StockHandler) ProductStock(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productID"), 10, 64)
	if err != nil || productID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	total, err := h.uc.ProductStock(c.Request.Context(), productID)
	if err != nil {
		h.logger.Error("product stock lookup failed", zap.Int64("product_id", productID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read stock"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product_id": productID, "quantity": total})
}

type verifyRequest struct {
	Items []dto.Demand `json:"items" binding:"required,min=1,dive"`
}

func (h *StockHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.uc.Verify(c.Request.Context(), req.Items)
	if err != nil {
		if apperr.IsKind(err, apperr.KindValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("stock verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify stock"})
		return
	}

	c.JSON(http.StatusOK, result)
}
