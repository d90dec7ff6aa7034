package handler_test

import (
	"context"

	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/microservices/http-api/repository"
	"cookbook/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

// --- MOCK SERVICES ---

type MockDishService struct {
	mock.Mock
}

func (m *MockDishService) List(ctx context.Context, f repository.DishFilter) ([]models.Dish, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.Dish), args.Error(1)
}

func (m *MockDishService) Get(ctx context.Context, id int64) (*models.Dish, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dish), args.Error(1)
}

func (m *MockDishService) Create(ctx context.Context, in dto.DishInput, uploads *service.DishImages) (*models.Dish, error) {
	args := m.Called(ctx, in, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dish), args.Error(1)
}

func (m *MockDishService) Update(ctx context.Context, id int64, in dto.DishInput, uploads *service.DishImages, full bool) (*models.Dish, error) {
	args := m.Called(ctx, id, in, uploads, full)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dish), args.Error(1)
}

func (m *MockDishService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDishService) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDishService) SetImage(ctx context.Context, id int64, u *service.Upload) (*models.Dish, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dish), args.Error(1)
}

func (m *MockDishService) RemoveImage(ctx context.Context, id int64) (*models.Dish, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dish), args.Error(1)
}

func (m *MockDishService) SetStepImage(ctx context.Context, dishID int64, stepNumber int, u *service.Upload) (*models.CookingStep, error) {
	args := m.Called(ctx, dishID, stepNumber, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CookingStep), args.Error(1)
}

func (m *MockDishService) ImageURL(key string) string {
	if key == "" {
		return ""
	}
	return "/media/" + key
}

type MockGroceryService struct {
	mock.Mock
}

func (m *MockGroceryService) List(ctx context.Context, f repository.GroceryFilter) ([]models.GroceryItem, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.GroceryItem), args.Error(1)
}

func (m *MockGroceryService) Get(ctx context.Context, id int64) (*models.GroceryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GroceryItem), args.Error(1)
}

func (m *MockGroceryService) Create(ctx context.Context, in dto.GroceryItemInput) (*models.GroceryItem, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GroceryItem), args.Error(1)
}

func (m *MockGroceryService) Update(ctx context.Context, id int64, in dto.GroceryItemInput) (*models.GroceryItem, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GroceryItem), args.Error(1)
}

func (m *MockGroceryService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGroceryService) MarkAllInCart(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGroceryService) ClearCart(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGroceryService) AddFromDish(ctx context.Context, dishID int64) ([]models.GroceryItem, error) {
	args := m.Called(ctx, dishID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GroceryItem), args.Error(1)
}

type MockUnitService struct {
	mock.Mock
}

func (m *MockUnitService) List(ctx context.Context) ([]models.Unit, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Unit), args.Error(1)
}

func (m *MockUnitService) Get(ctx context.Context, id int64) (*models.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

func (m *MockUnitService) Create(ctx context.Context, in dto.UnitInput) (*models.Unit, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

func (m *MockUnitService) Update(ctx context.Context, id int64, in dto.UnitInput) (*models.Unit, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

func (m *MockUnitService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*dto.AuthResponse, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthResponse), args.Error(1)
}

func (m *MockAuthService) RefreshAccessToken(ctx context.Context, token string) (*dto.RefreshResponse, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RefreshResponse), args.Error(1)
}

func (m *MockAuthService) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthService) ValidateToken(token string) (*service.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

// --- SETUP ---

func mockAuthMiddleware(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", "test-user-id")
		c.Set("username", "testuser")
		c.Set("role", role)
		c.Next()
	}
}

type routeRegistrar interface {
	RegisterRoutes(public, protected *gin.RouterGroup)
}

// setupRouter mounts h under prefix. An empty role leaves the protected
// group without identity, as if no token had been checked.
func setupRouter(prefix string, h routeRegistrar, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	public := r.Group(prefix)
	protected := r.Group(prefix)
	if role != "" {
		protected.Use(mockAuthMiddleware(role))
	}
	h.RegisterRoutes(public, protected)
	return r
}
