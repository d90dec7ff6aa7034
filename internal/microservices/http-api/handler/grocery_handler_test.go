package handler_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/handler"
	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/microservices/http-api/repository"
	"cookbook/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func groceryRouter(svc *MockGroceryService) *gin.Engine {
	return setupRouter("/api/grocery-items", handler.NewGroceryHandler(svc), models.RoleUser)
}

func TestGroceryList(t *testing.T) {
	svc := new(MockGroceryService)
	r := groceryRouter(svc)

	yes := true
	qty := 2.5
	svc.On("List", mock.Anything, repository.GroceryFilter{InCart: &yes, Search: "on"}).Return([]models.GroceryItem{
		{ID: 1, Name: "Onion", Quantity: &qty, InCart: true, Unit: &models.Unit{Name: "kilogram", Abbreviation: "kg"}},
	}, nil).Once()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/grocery-items?in_cart=true&search=on", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unit":"kg"`)
	assert.Contains(t, w.Body.String(), `"count":1`)
	svc.AssertExpectations(t)

	t.Run("BadBool", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/grocery-items?is_optional=maybe", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "is_optional")
	})
}

func TestGroceryCreate(t *testing.T) {
	svc := new(MockGroceryService)
	r := groceryRouter(svc)

	svc.On("Create", mock.Anything, mock.MatchedBy(func(in dto.GroceryItemInput) bool {
		return in.Name != nil && *in.Name == "Milk"
	})).Return(&models.GroceryItem{ID: 5, Name: "Milk"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/grocery-items", bytes.NewBufferString(`{"name":"Milk"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestGroceryUpdateUnknownUnit(t *testing.T) {
	svc := new(MockGroceryService)
	r := groceryRouter(svc)

	svc.On("Update", mock.Anything, int64(5), mock.Anything).
		Return(nil, &service.ReferenceError{Entity: "unit", ID: 42, Field: "unit_id"}).Once()

	req := httptest.NewRequest(http.MethodPatch, "/api/grocery-items/5", bytes.NewBufferString(`{"unit_id":42}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unit_id")
}

func TestGroceryCartActions(t *testing.T) {
	svc := new(MockGroceryService)
	r := groceryRouter(svc)

	svc.On("MarkAllInCart", mock.Anything).Return(int64(3), nil).Once()
	svc.On("ClearCart", mock.Anything).Return(int64(4), nil).Once()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/grocery-items/mark-all-in-cart", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"updated":3}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/grocery-items/clear-cart", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":4}`, w.Body.String())

	svc.AssertExpectations(t)
}

func TestGroceryAddFromDish(t *testing.T) {
	svc := new(MockGroceryService)
	r := groceryRouter(svc)

	svc.On("AddFromDish", mock.Anything, int64(7)).Return([]models.GroceryItem{{ID: 1, Name: "Flour"}}, nil).Once()
	svc.On("AddFromDish", mock.Anything, int64(8)).Return(nil, service.ErrNotFound).Once()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/grocery-items/from-dish/7", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Flour")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/grocery-items/from-dish/8", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.AssertExpectations(t)
}
