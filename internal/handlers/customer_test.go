package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kipsang/customer-orders-api/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("failed to connect to test database")
	}

	if err := db.AutoMigrate(&models.Customer{}, &models.Order{}); err != nil {
		panic("failed to migrate test database")
	}
	return db
}

func jsonRequest(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	c.Request = req
	return w, c
}

func TestRegisterCustomer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	handler := NewCustomerHandler(db)

	tests := []struct {
		name            string
		requestBody     map[string]any
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "valid registration",
			requestBody: map[string]any{
				"name":         "Jane Doe",
				"phone_number": "+25756098388",
				"code":         "DEF456",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "duplicate phone number",
			requestBody: map[string]any{
				"name":         "John Doe",
				"phone_number": "+25756098388",
				"code":         "GHI789",
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Phone number or code already exists",
		},
		{
			name: "duplicate code",
			requestBody: map[string]any{
				"name":         "John Doe",
				"phone_number": "+25756098399",
				"code":         "DEF456",
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Phone number or code already exists",
		},
		{
			name:           "missing required fields",
			requestBody:    map[string]any{"name": "Jane Doe"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty name",
			requestBody:    map[string]any{"name": "", "phone_number": "+111", "code": "X1"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := jsonRequest(t, "POST", "/customers/register", tt.requestBody)

			handler.RegisterCustomer(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusCreated {
				var response map[string]any
				json.Unmarshal(w.Body.Bytes(), &response)
				assert.Equal(t, "Customer registered successfully", response["message"])
				assert.Greater(t, response["customer_id"].(float64), float64(0))
			}
			if tt.expectedMessage != "" {
				var errorResponse models.ErrorResponse
				json.Unmarshal(w.Body.Bytes(), &errorResponse)
				assert.Equal(t, tt.expectedMessage, errorResponse.Message)
			}
		})
	}

	// only the first registration should have been committed
	var count int64
	db.Model(&models.Customer{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestViewCustomers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	handler := NewCustomerHandler(db)

	w, c := jsonRequest(t, "GET", "/customers/view_customers", nil)
	handler.ViewCustomers(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var empty []models.CustomerResponse
	json.Unmarshal(w.Body.Bytes(), &empty)
	assert.Len(t, empty, 0)

	customers := []models.Customer{
		{Name: "Jane Doe", PhoneNumber: "+25756098388", Code: "DEF456"},
		{Name: "John Doe", PhoneNumber: "+25756098399", Code: "GHI789"},
		{Name: "Mary Major", PhoneNumber: "+25756098311", Code: "JKL012"},
	}
	for i := range customers {
		db.Create(&customers[i])
	}

	w, c = jsonRequest(t, "GET", "/customers/view_customers", nil)
	handler.ViewCustomers(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []models.CustomerResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response, 3)
	assert.Equal(t, "Jane Doe", response[0].Name)
	assert.Equal(t, "+25756098388", response[0].PhoneNumber)
	assert.Equal(t, "DEF456", response[0].Code)
	// insertion order
	assert.Equal(t, uint(1), response[0].ID)
	assert.Equal(t, uint(3), response[2].ID)
}

func TestViewCustomer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	handler := NewCustomerHandler(db)

	db.Create(&models.Customer{Name: "Jane Doe", PhoneNumber: "+25756098388", Code: "DEF456"})

	tests := []struct {
		name           string
		customerID     string
		expectedStatus int
	}{
		{"existing customer", "1", http.StatusOK},
		{"non-existent customer", "999", http.StatusNotFound},
		{"malformed id", "abc", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := jsonRequest(t, "GET", "/customers/view_customers/"+tt.customerID, nil)
			c.Params = []gin.Param{{Key: "id", Value: tt.customerID}}

			handler.ViewCustomer(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var response models.CustomerResponse
				json.Unmarshal(w.Body.Bytes(), &response)
				assert.Equal(t, uint(1), response.ID)
				assert.Equal(t, "Jane Doe", response.Name)
				assert.Equal(t, "+25756098388", response.PhoneNumber)
				assert.Equal(t, "DEF456", response.Code)
			}
		})
	}
}

func TestUpdateCustomer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	handler := NewCustomerHandler(db)

	db.Create(&models.Customer{Name: "Jane Doe", PhoneNumber: "+25756098388", Code: "DEF456"})
	db.Create(&models.Customer{Name: "John Doe", PhoneNumber: "+25756098399", Code: "GHI789"})

	t.Run("partial update keeps omitted fields", func(t *testing.T) {
		w, c := jsonRequest(t, "PUT", "/customers/update_customers/1", map[string]any{
			"phone_number": "+25756090000",
		})
		c.Params = []gin.Param{{Key: "id", Value: "1"}}

		handler.UpdateCustomer(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var customer models.Customer
		db.First(&customer, 1)
		assert.Equal(t, "+25756090000", customer.PhoneNumber)
		assert.Equal(t, "Jane Doe", customer.Name)
		assert.Equal(t, "DEF456", customer.Code)
	})

	t.Run("empty payload is rejected and changes nothing", func(t *testing.T) {
		w, c := jsonRequest(t, "PUT", "/customers/update_customers/1", map[string]any{})
		c.Params = []gin.Param{{Key: "id", Value: "1"}}

		handler.UpdateCustomer(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var errorResponse models.ErrorResponse
		json.Unmarshal(w.Body.Bytes(), &errorResponse)
		assert.Equal(t, "no update data provided", errorResponse.Message)

		var customer models.Customer
		db.First(&customer, 1)
		assert.Equal(t, "Jane Doe", customer.Name)
		assert.Equal(t, "+25756090000", customer.PhoneNumber)
	})

	t.Run("duplicate phone number rolls back", func(t *testing.T) {
		w, c := jsonRequest(t, "PUT", "/customers/update_customers/1", map[string]any{
			"phone_number": "+25756098399",
		})
		c.Params = []gin.Param{{Key: "id", Value: "1"}}

		handler.UpdateCustomer(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var errorResponse models.ErrorResponse
		json.Unmarshal(w.Body.Bytes(), &errorResponse)
		assert.Equal(t, "Phone number or code already exists", errorResponse.Message)

		var customer models.Customer
		db.First(&customer, 1)
		assert.Equal(t, "+25756090000", customer.PhoneNumber)
	})

	t.Run("unknown customer", func(t *testing.T) {
		w, c := jsonRequest(t, "PUT", "/customers/update_customers/999", map[string]any{
			"name": "Nobody",
		})
		c.Params = []gin.Param{{Key: "id", Value: "999"}}

		handler.UpdateCustomer(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteCustomerCascadesOrders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	handler := NewCustomerHandler(db)

	customer := models.Customer{Name: "Jane Doe", PhoneNumber: "+25756098388", Code: "DEF456"}
	db.Create(&customer)
	db.Create(&models.Order{CustomerID: customer.ID, Item: "Laptop", Time: now()})
	db.Create(&models.Order{CustomerID: customer.ID, Item: "Phone", Time: now()})

	w, c := jsonRequest(t, "DELETE", "/customers/delete_customers/1", nil)
	c.Params = []gin.Param{{Key: "id", Value: "1"}}

	handler.DeleteCustomer(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var orderCount int64
	db.Model(&models.Order{}).Where("customer_id = ?", customer.ID).Count(&orderCount)
	assert.Equal(t, int64(0), orderCount)

	w, c = jsonRequest(t, "GET", "/customers/view_customers/1", nil)
	c.Params = []gin.Param{{Key: "id", Value: "1"}}
	handler.ViewCustomer(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCustomerNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	handler := NewCustomerHandler(db)

	w, c := jsonRequest(t, "DELETE", "/customers/delete_customers/42", nil)
	c.Params = []gin.Param{{Key: "id", Value: "42"}}

	handler.DeleteCustomer(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
