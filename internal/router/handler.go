package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"logikalmart.ca/storefront/api/internal/cart"
	"logikalmart.ca/storefront/api/internal/orders"
	"logikalmart.ca/storefront/api/pkg/ai"
	"logikalmart.ca/storefront/api/pkg/global"
	"logikalmart.ca/storefront/api/pkg/models"
	"logikalmart.ca/storefront/api/pkg/redis"
)

// ProductCatalog is the product persistence surface the handlers need.
type ProductCatalog interface {
	Create(ctx context.Context, products []*models.Product) error
	All(ctx context.Context, category string) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// UserDirectory is the account persistence surface.
type UserDirectory interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// API bundles the services the routes dispatch into.
type API struct {
	Products ProductCatalog
	Users    UserDirectory
	Orders   *orders.Service
	Cart     *cart.Service
	Ping     func(ctx context.Context) error
}

func (api *API) HealthCheck(c *gin.Context) {
	if api.Ping != nil {
		if err := api.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Database connection failed", nil))
			return
		}
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Connected"}))
}

// statusForError maps the domain taxonomy onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidCredential):
		return http.StatusForbidden
	case errors.Is(err, models.ErrEmptyOrder), errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrUsernameTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Products

func (api *API) GetAllProducts(c *gin.Context) {
	products, err := api.Products.All(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get products", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

// GetProductByID retrieves a product with Redis read-through caching.
// Cached availability is only a projection; the ledger invalidates it
// on every reserve/release.
func (api *API) GetProductByID(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if product, err := redis.GetProductFromCache(ctx, id); err == nil {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, global.SuccessResponse(product))
		return
	}

	product, err := api.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", []global.ValidationError{
				{Field: "id", Message: "No product exists with this ID", Code: "not_found"},
			}))
			return
		}
		log.Printf("Error fetching product: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch product", nil))
		return
	}

	if cacheErr := redis.CacheSingleProduct(ctx, product); cacheErr != nil {
		log.Printf("Warning: Failed to cache product in Redis: %v", cacheErr)
	}

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (api *API) CreateNewProducts(c *gin.Context) {
	var req []models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}
	if len(req) == 0 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("No products provided", []global.ValidationError{
			{Field: "products", Message: "At least one product is required", Code: "empty_array"},
		}))
		return
	}

	products := make([]*models.Product, len(req))
	for i, productReq := range req {
		products[i] = productReq.ToProduct()
	}

	if err := api.Products.Create(c.Request.Context(), products); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create products", nil))
		return
	}

	for _, p := range products {
		if cacheErr := redis.CacheSingleProduct(c.Request.Context(), p); cacheErr != nil {
			log.Printf("Warning: Failed to cache product in Redis: %v", cacheErr)
		}
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(map[string]interface{}{
		"products": products,
		"count":    len(products),
	}))
}

// Users

func (api *API) RegisterUser(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	roleTag := req.Role
	if roleTag == "" {
		roleTag = "USER"
	}
	if _, err := models.ParseRole(roleTag); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid role", []global.ValidationError{
			{Field: "role", Message: "Role must be one of USER, SELLER, MANAGER, DELIVERY", Code: "invalid_role"},
		}))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to process password", nil))
		return
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  string(hashedPassword),
		Mobile:    req.Mobile,
		Address:   req.Address,
		Gender:    req.Gender,
		Role:      roleTag,
	}

	if err := api.Users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, models.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, global.ErrorResponse("Username already registered", []global.ValidationError{
				{Field: "username", Message: "This username is already in use", Code: "duplicate_username"},
			}))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create user", nil))
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(user))
}

func (api *API) LoginUser(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	user, err := api.Users.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid username or password", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch user", nil))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid username or password", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(user))
}

// Cart

func (api *API) GetCart(c *gin.Context) {
	userCart, err := api.Cart.Get(c.Request.Context(), c.Param("user"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to load cart", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(userCart))
}

func (api *API) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "product_id", Message: "product_id is required", Code: "required"},
		}))
		return
	}

	ctx := c.Request.Context()
	product, err := api.Products.GetByID(ctx, req.ProductID)
	if err != nil {
		c.JSON(statusForError(err), global.ErrorResponse("Product not found", nil))
		return
	}

	userCart, err := api.Cart.Add(ctx, c.Param("user"), product)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientStock) {
			c.JSON(http.StatusConflict, global.ErrorResponse(fmt.Sprintf("%s is out of stock", product.Name), nil))
			return
		}
		c.JSON(statusForError(err), global.ErrorResponse("Failed to add item to cart", nil))
		return
	}

	api.invalidateProductCache(ctx, req.ProductID)
	c.JSON(http.StatusOK, global.SuccessResponse(userCart))
}

func (api *API) AdjustCartItem(c *gin.Context) {
	var req models.AdjustCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "op", Message: "op must be increment or decrement", Code: "invalid_op"},
		}))
		return
	}

	ctx := c.Request.Context()
	user := c.Param("user")
	productID := c.Param("productId")

	var userCart *models.Cart
	var err error
	switch req.Op {
	case "increment":
		userCart, err = api.Cart.Increment(ctx, user, productID)
	case "decrement":
		userCart, err = api.Cart.Decrement(ctx, user, productID)
	}
	if err != nil {
		if errors.Is(err, models.ErrInsufficientStock) {
			c.JSON(http.StatusConflict, global.ErrorResponse("No more stock available", nil))
			return
		}
		c.JSON(statusForError(err), global.ErrorResponse("Failed to update cart item", nil))
		return
	}

	api.invalidateProductCache(ctx, productID)
	c.JSON(http.StatusOK, global.SuccessResponse(userCart))
}

// ClearCart empties the cart. By default reserved stock flows back to
// the ledger; the checkout flow passes restock=false because order
// placement consumes the reservation.
func (api *API) ClearCart(c *gin.Context) {
	restock := c.DefaultQuery("restock", "true") != "false"
	if err := api.Cart.Clear(c.Request.Context(), c.Param("user"), restock); err != nil {
		c.JSON(statusForError(err), global.ErrorResponse("Failed to clear cart", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{"cleared": true, "restocked": restock}))
}

// RestoreCart replays a client-held snapshot into a fresh server cart.
// Stock was already reserved when the snapshot was taken, so the ledger
// is not touched.
func (api *API) RestoreCart(c *gin.Context) {
	var req models.RestoreCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "items", Message: "items is required", Code: "required"},
		}))
		return
	}

	userCart, err := api.Cart.Restore(c.Request.Context(), c.Param("user"), req.Items)
	if err != nil {
		c.JSON(statusForError(err), global.ErrorResponse("Failed to restore cart", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(userCart))
}

func (api *API) ClaimCart(c *gin.Context) {
	var req models.ClaimCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "guest_key", Message: "guest_key is required", Code: "required"},
		}))
		return
	}

	userCart, err := api.Cart.Claim(c.Request.Context(), req.GuestKey, c.Param("user"))
	if err != nil {
		c.JSON(statusForError(err), global.ErrorResponse("Failed to claim cart", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(userCart))
}

func (api *API) invalidateProductCache(ctx context.Context, productID string) {
	if err := redis.RemoveProductFromCache(ctx, productID); err != nil {
		log.Printf("Warning: Failed to invalidate product cache: %v", err)
	}
}

// Orders. These endpoints keep the flat wire shapes the storefront
// client expects rather than the APIResponse envelope.

func (api *API) PlaceOrder(c *gin.Context) {
	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order data"})
		return
	}

	count, err := api.Orders.PlaceOrder(c.Request.Context(), req.Username, req.Items)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"message": orderErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Orders placed successfully",
		"count":   count,
	})
}

func (api *API) GetUserOrders(c *gin.Context) {
	username := c.Param("username")
	views, err := api.Orders.OrdersForUser(c.Request.Context(), username)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"message": orderErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"username":   username,
		"orderCount": len(views),
		"orders":     views,
	})
}

func (api *API) GetAllOrders(c *gin.Context) {
	views, err := api.Orders.AllOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching all orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"totalOrders": len(views),
		"orders":      views,
	})
}

func (api *API) OverrideOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Status is required"})
		return
	}

	order, err := api.Orders.Override(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"message": orderErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Order #%s updated to %s", order.ID.Hex(), order.Status),
	})
}

func (api *API) AcceptOrder(c *gin.Context) {
	order, err := api.Orders.Accept(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"message": orderErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Order #%s marked as Shipped", order.ID.Hex()),
	})
}

func (api *API) DeliverOrder(c *gin.Context) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "PIN is required"})
		return
	}

	order, err := api.Orders.Deliver(c.Request.Context(), c.Param("id"), req.PIN)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"message": orderErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Order #%s marked as Delivered", order.ID.Hex()),
	})
}

func orderErrorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "Order or user not found"
	case errors.Is(err, models.ErrEmptyOrder):
		return "Invalid order data"
	case errors.Is(err, models.ErrInvalidCredential):
		return "Invalid delivery PIN"
	case errors.Is(err, models.ErrInvalidTransition):
		return "Order cannot change to that status from its current state"
	case errors.Is(err, models.ErrValidation):
		return err.Error()
	default:
		return "Error processing order"
	}
}

// Analytics

func (api *API) GenerateAISalesReport(c *gin.Context) {
	views, err := api.Orders.AllOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch order data", nil))
		return
	}

	report := ai.GenerateSalesReport(c.Request.Context(), views)
	c.JSON(http.StatusOK, global.SuccessResponse(report))
}
