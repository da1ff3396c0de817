package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer - a registered customer who can place orders
type Customer struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null"`
	PhoneNumber string  `json:"phone_number" gorm:"uniqueIndex;not null"`
	Code        string  `json:"code" gorm:"uniqueIndex;not null"`
	Orders      []Order `json:"-" gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

// Order - an order placed by a customer. Time is set by the server at
// creation and never taken from the client.
type Order struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	CustomerID uint            `json:"customer_id" gorm:"not null;index"`
	Item       string          `json:"item" gorm:"not null"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Time       time.Time       `json:"time" gorm:"not null"`
}

type RegisterCustomerRequest struct {
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

// UpdateCustomerRequest uses pointers so an omitted field can be told apart
// from an explicit empty value.
type UpdateCustomerRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phone_number"`
	Code        *string `json:"code"`
}

func (r UpdateCustomerRequest) Empty() bool {
	return r.Name == nil && r.PhoneNumber == nil && r.Code == nil
}

type PlaceOrderRequest struct {
	CustomerID uint    `json:"customer_id" binding:"required"`
	Item       string  `json:"item" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
}

type UpdateOrderRequest struct {
	Item   *string  `json:"item"`
	Amount *float64 `json:"amount"`
}

func (r UpdateOrderRequest) Empty() bool {
	return r.Item == nil && r.Amount == nil
}

type CustomerResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

func NewCustomerResponse(c Customer) CustomerResponse {
	return CustomerResponse{
		ID:          c.ID,
		Name:        c.Name,
		PhoneNumber: c.PhoneNumber,
		Code:        c.Code,
	}
}

type OrderResponse struct {
	ID         uint    `json:"id"`
	CustomerID uint    `json:"customer_id"`
	Item       string  `json:"item"`
	Amount     float64 `json:"amount"`
	Time       string  `json:"time"`
}

func NewOrderResponse(o Order) OrderResponse {
	return OrderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Item:       o.Item,
		Amount:     o.Amount.InexactFloat64(),
		Time:       o.Time.Format(time.RFC3339),
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
