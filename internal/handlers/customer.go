package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kipsang/customer-orders-api/internal/models"
	"github.com/kipsang/customer-orders-api/pkg/logger"
	"gorm.io/gorm"
)

type CustomerHandler struct {
	db *gorm.DB
}

func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

// RegisterCustomer registers a new customer. Duplicate phone numbers or
// codes are a client error, not a server fault.
func (h *CustomerHandler) RegisterCustomer(c *gin.Context) {
	var req models.RegisterCustomerRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: "name, phone_number and code are required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	customer := models.Customer{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Code:        req.Code,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&customer).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "duplicate customer",
				Message: "Phone number or code already exists",
				Code:    http.StatusBadRequest,
			})
			return
		}
		logger.Error("failed to register customer", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database error",
			Message: "failed to register customer",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Customer registered successfully",
		"customer_id": customer.ID,
	})
}

// ViewCustomers lists every customer in id order. An empty store is a 200
// with an empty list.
func (h *CustomerHandler) ViewCustomers(c *gin.Context) {
	var customers []models.Customer

	if err := h.db.Order("id").Find(&customers).Error; err != nil {
		logger.Error("failed to retrieve customers", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database error",
			Message: "failed to retrieve customers",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	resp := make([]models.CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		resp = append(resp, models.NewCustomerResponse(customer))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomerHandler) ViewCustomer(c *gin.Context) {
	customer, ok := h.findCustomer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.NewCustomerResponse(*customer))
}

// UpdateCustomer applies a partial update; omitted fields keep their prior
// values. A payload with no recognized field at all is rejected.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	customer, ok := h.findCustomer(c)
	if !ok {
		return
	}

	var req models.UpdateCustomerRequest
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

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.PhoneNumber != nil {
		customer.PhoneNumber = *req.PhoneNumber
	}
	if req.Code != nil {
		customer.Code = *req.Code
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(customer).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "duplicate customer",
				Message: "Phone number or code already exists",
				Code:    http.StatusBadRequest,
			})
			return
		}
		logger.Error("failed to update customer", "error", err, "id", customer.ID)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database error",
			Message: "failed to update customer",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer updated successfully"})
}

// DeleteCustomer removes a customer; the FK constraint cascades the delete
// to the customer's orders.
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	customer, ok := h.findCustomer(c)
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(customer).Error
	})
	if err != nil {
		logger.Error("failed to delete customer", "error", err, "id", customer.ID)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database error",
			Message: "failed to delete customer",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

// findCustomer resolves the :id path parameter. A malformed or unknown id is
// a 404, matching the route semantics of the HTTP surface.
func (h *CustomerHandler) findCustomer(c *gin.Context) (*models.Customer, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "customer not found",
			Message: "Customer not found",
			Code:    http.StatusNotFound,
		})
		return nil, false
	}

	var customer models.Customer
	if err := h.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "customer not found",
				Message: "Customer not found",
				Code:    http.StatusNotFound,
			})
			return nil, false
		}
		logger.Error("failed to retrieve customer", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database error",
			Message: "failed to retrieve customer",
			Code:    http.StatusInternalServerError,
		})
		return nil, false
	}
	return &customer, true
}
