package handler_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/handler"
	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/microservices/http-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUnitCreateConflict(t *testing.T) {
	svc := new(MockUnitService)
	r := setupRouter("/api/units", handler.NewUnitHandler(svc), models.RoleUser)

	svc.On("Create", mock.Anything, dto.UnitInput{Name: "cups"}).
		Return(nil, &service.ConflictError{Entity: "unit", Field: "name", ID: 1, Name: "cup", Terms: []string{"cup", "cups", "c"}}).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/units", bytes.NewBufferString(`{"name":"cups"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"name"`)
	assert.Contains(t, w.Body.String(), `"name":"cup"`)
	svc.AssertExpectations(t)
}

func TestUnitDeleteInUse(t *testing.T) {
	svc := new(MockUnitService)
	r := setupRouter("/api/units", handler.NewUnitHandler(svc), models.RoleUser)

	svc.On("Delete", mock.Anything, int64(2)).
		Return(&service.ReferenceError{Entity: "unit", ID: 2, InUse: true, Usage: "3 recipe line(s)"}).Once()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/units/2", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "still used by 3 recipe line(s)")
	svc.AssertExpectations(t)
}

func TestUnitList(t *testing.T) {
	svc := new(MockUnitService)
	r := setupRouter("/api/units", handler.NewUnitHandler(svc), "")

	svc.On("List", mock.Anything).Return([]models.Unit{{ID: 1, Name: "gram", Abbreviation: "g"}}, nil).Once()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/units", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[{"id":1,"name":"gram","abbreviation":"g"}],"count":1}`, w.Body.String())
}
