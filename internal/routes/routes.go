package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/storedash/internal/config"
	"github.com/example/storedash/internal/handlers"
	"github.com/example/storedash/internal/middleware"
	"github.com/example/storedash/internal/models"
	"github.com/example/storedash/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	images := services.NewImgbbService(cfg.ImgbbAPIKey)

	authHandler := handlers.NewAuthHandler(db, cfg)
	productHandler := handlers.NewProductHandler(db, images)
	orderHandler := handlers.NewOrderHandler(db)
	customerHandler := handlers.NewCustomerHandler(db)
	storeHandler := handlers.NewStoreHandler(db)
	dashboardHandler := handlers.NewDashboardHandler(db)

	authRequired := middleware.AuthMiddleware(cfg)
	superadminOnly := middleware.AuthMiddleware(cfg, models.RoleSuperadmin)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", authRequired, authHandler.Me)
	auth.Post("/logout", authRequired, authHandler.Logout)
	auth.Get("/users", authRequired, authHandler.ListUsers)
	auth.Post("/add-user", superadminOnly, authHandler.AddUser)
	auth.Patch("/users/:id", superadminOnly, authHandler.EditUser)
	auth.Delete("/users/:id", superadminOnly, authHandler.DeleteUser)

	products := api.Group("/products", authRequired)
	products.Delete("/many", productHandler.DeleteMultipleProducts)
	products.Get("/filter", productHandler.FilterProducts)
	products.Get("/search", productHandler.SearchByProductName)
	products.Get("/paginated", productHandler.GetPaginatedProducts)
	products.Get("/", productHandler.ListProducts)
	products.Post("/", productHandler.CreateProduct)
	products.Get("/:productId", productHandler.GetProduct)
	products.Patch("/:productId", productHandler.UpdateProduct)
	products.Delete("/:productId", productHandler.DeleteProduct)

	orders := api.Group("/orders")
	orders.Get("/by-date", orderHandler.GetOrdersByDateRange)
	orders.Get("/", orderHandler.ListOrders)
	orders.Post("/", authRequired, orderHandler.AddOrder)
	orders.Patch("/with-products/:orderId", authRequired, orderHandler.UpdateOrderWithProducts)
	orders.Get("/:id", orderHandler.GetOrderByID)
	orders.Patch("/:id", authRequired, orderHandler.UpdateOrderStatus)
	orders.Delete("/:id", authRequired, orderHandler.DeleteOrder)

	customers := api.Group("/customers", authRequired)
	customers.Get("/", customerHandler.ListCustomers)
	customers.Get("/:customerId", customerHandler.ListCustomers)
	customers.Post("/", customerHandler.AddCustomer)
	customers.Patch("/:id", customerHandler.UpdateCustomer)
	customers.Delete("/:id", customerHandler.DeleteCustomer)

	store := api.Group("/store", authRequired)
	store.Post("/create", storeHandler.CreateStore)
	store.Patch("/edit/:id", storeHandler.EditStore)
	store.Post("/:storeId/shipping-method", storeHandler.AddShippingMethod)
	store.Get("/:storeId", storeHandler.GetStore)
	store.Patch("/:storeId/shipping-method/:methodId", storeHandler.EditShippingMethod)
	store.Delete("/:storeId/shipping-method/:methodId", storeHandler.DeleteShippingMethod)

	app.Get("/dashboard/summary", authRequired, dashboardHandler.GetSummary)
}
