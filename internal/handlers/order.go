package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kipsang/customer-orders-api/internal/models"
	"github.com/kipsang/customer-orders-api/internal/services"
	"github.com/kipsang/customer-orders-api/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderHandler struct {
	db         *gorm.DB
	smsService services.SMSServiceInterface
}

func NewOrderHandler(db *gorm.DB, smsService services.SMSServiceInterface) *OrderHandler {
	return &OrderHandler{
		db:         db,
		smsService: smsService,
	}
}

// PlaceOrder creates an order for an existing customer and then attempts a
// single confirmation SMS. The SMS outcome is reported as sms_status on the
// response; a failed send never rolls back the committed order and never
// changes the status code.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req models.PlaceOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: "Missing order details",
			Code:    http.StatusBadRequest,
		})
		return
	}

	// Existence is checked up front so the API answers 404 instead of a
	// foreign-key constraint error.
	var customer models.Customer
	if err := h.db.First(&customer, req.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "customer not found",
				Message: "Customer not found",
				Code:    http.StatusNotFound,
			})
			return
		}
		logger.Error("failed to verify customer", "error", err, "customer_id", req.CustomerID)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database error",
			Message: "Error placing order",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	order := models.Order{
		CustomerID: req.CustomerID,
		Item:       req.Item,
		Amount:     decimal.NewFromFloat(req.Amount).Round(2),
		Time:       time.Now().UTC(),
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	})
	if err != nil {
		logger.Error("failed to place order", "error", err, "customer_id", req.CustomerID)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database error",
			Message: "Error placing order",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	// Single synchronous attempt after commit, no retry.
	details := fmt.Sprintf("Item: %s, Amount: %s", order.Item, order.Amount.StringFixed(2))
	smsStatus := true
	if err := h.smsService.SendOrderConfirmation(customer.PhoneNumber, customer.Name, details); err != nil {
		logger.Warn("failed to send order confirmation sms",
			"error", err, "customer", customer.Name, "order_id", order.ID)
		smsStatus = false
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Order placed successfully!",
		"id":         order.ID,
		"sms_status": smsStatus,
	})
}

// ViewOrders serves both the full listing and the per-customer listing,
// depending on whether the :customer_id parameter is present. A filtered
// listing with no rows is a 404; the full listing is a 200 even when empty.
func (h *OrderHandler) ViewOrders(c *gin.Context) {
	customerParam := c.Param("customer_id")

	query := h.db.Order("id")
	if customerParam != "" {
		customerID, err := strconv.Atoi(customerParam)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "No orders found for this customer."})
			return
		}
		query = query.Where("customer_id = ?", customerID)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		logger.Error("failed to retrieve orders", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database error",
			Message: "failed to retrieve orders",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	if customerParam != "" && len(orders) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No orders found for this customer."})
		return
	}

	resp := make([]models.OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, models.NewOrderResponse(order))
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateOrder partially updates item and amount. Everything else about an
// order is immutable once placed.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	order, ok := h.findOrder(c)
	if !ok {
		return
	}

	var req models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	if req.Empty() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: "no update data provided",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if req.Amount != nil && *req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: "amount must be positive",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if req.Item != nil {
		order.Item = *req.Item
	}
	if req.Amount != nil {
		order.Amount = decimal.NewFromFloat(*req.Amount).Round(2)
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(order).Error
	})
	if err != nil {
		logger.Error("failed to update order", "error", err, "id", order.ID)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database error",
			Message: "failed to update order",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order updated successfully"})
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	order, ok := h.findOrder(c)
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(order).Error
	})
	if err != nil {
		logger.Error("failed to delete order", "error", err, "id", order.ID)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database error",
			Message: "failed to delete order",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

func (h *OrderHandler) findOrder(c *gin.Context) (*models.Order, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "order not found",
			Message: "Order not found",
			Code:    http.StatusNotFound,
		})
		return nil, false
	}

	var order models.Order
	if err := h.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "order not found",
				Message: "Order not found",
				Code:    http.StatusNotFound,
			})
			return nil, false
		}
		logger.Error("failed to retrieve order", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database error",
			Message: "failed to retrieve order",
			Code:    http.StatusInternalServerError,
		})
		return nil, false
	}
	return &order, true
}
