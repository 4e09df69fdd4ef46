// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/gooddrive/autoparts-backend/internal/interfaces/http/handlers"
	"github.com/gooddrive/autoparts-backend/internal/interfaces/http/middleware"
	"github.com/gooddrive/autoparts-backend/internal/pkg/auth"
)

// Handlers groups everything the router needs
type Handlers struct {
	Catalog      *handlers.CatalogHandler
	Order        *handlers.OrderHandler
	Customer     *handlers.CustomerHandler
	Finance      *handlers.FinanceHandler
	Notification *handlers.NotificationHandler
	Seo          *handlers.SeoHandler
	Auth         *handlers.AuthHandler
}

// Setup registers all API routes. Storefront reads and order creation are
// public; everything that mutates the back office requires an admin token.
func Setup(router *gin.Engine, h *Handlers, jwtManager *auth.JWTManager) {
	api := router.Group("/api/v1")

	// Public storefront surface
	api.GET("/parts", h.Catalog.GetParts)
	api.GET("/parts/available", h.Catalog.GetAvailableParts)
	api.GET("/parts/:id", h.Catalog.GetPart)
	api.GET("/parts/:id/similar", h.Catalog.GetSimilarParts)
	api.GET("/brands", h.Catalog.GetBrands)
	api.GET("/warehouses", h.Catalog.GetWarehouses)

	api.POST("/orders", h.Order.CreateOrder)
	api.GET("/orders/by_phone", h.Order.GetOrdersByPhone)

	api.GET("/seo/pages/:slug", h.Seo.GetPageBySlug)
	api.GET("/seo/settings", h.Seo.GetSettings)

	api.POST("/admin/login", h.Auth.Login)
	api.POST("/admin/verify", h.Auth.Verify)

	// Admin surface
	admin := api.Group("")
	admin.Use(middleware.Auth(jwtManager))
	{
		admin.GET("/parts/low_stock", h.Catalog.GetLowStockParts)
		admin.POST("/parts", h.Catalog.CreatePart)
		admin.PUT("/parts/:id", h.Catalog.UpdatePart)
		admin.DELETE("/parts/:id", h.Catalog.DeletePart)
		admin.POST("/parts/:id/adjust_stock", h.Catalog.AdjustStock)
		admin.POST("/parts/import", h.Catalog.ImportParts)
		admin.POST("/parts/:id/images", h.Catalog.AddPartImage)
		admin.DELETE("/parts/images/:image_id", h.Catalog.DeletePartImage)

		admin.GET("/orders", h.Order.GetOrders)
		admin.GET("/orders/statistics", h.Order.GetStatistics)
		admin.GET("/orders/:id", h.Order.GetOrder)
		admin.GET("/orders/:id/status_history", h.Order.GetStatusHistory)
		admin.POST("/orders/:id/update_status", h.Order.UpdateStatus)
		admin.POST("/orders/:id/cancel", h.Order.CancelOrder)
		admin.DELETE("/orders/:id", h.Order.DeleteOrder)

		admin.GET("/customers", h.Customer.GetCustomers)
		admin.POST("/customers/sync_from_orders", h.Customer.SyncFromOrders)
		admin.GET("/customers/:id", h.Customer.GetCustomer)
		admin.PUT("/customers/:id", h.Customer.UpdateCustomer)
		admin.DELETE("/customers/:id", h.Customer.DeleteCustomer)
		admin.GET("/customers/:id/orders_history", h.Customer.GetOrdersHistory)
		admin.POST("/customers/:id/update_stats", h.Customer.UpdateStats)
		admin.POST("/customers/:id/notes", h.Customer.AddNote)
		admin.DELETE("/customers/notes/:note_id", h.Customer.DeleteNote)

		admin.GET("/expense-categories", h.Finance.GetCategories)
		admin.POST("/expense-categories", h.Finance.CreateCategory)
		admin.GET("/expenses", h.Finance.GetExpenses)
		admin.POST("/expenses", h.Finance.CreateExpense)
		admin.DELETE("/expenses/:id", h.Finance.DeleteExpense)
		admin.GET("/cash-transactions", h.Finance.GetTransactions)
		admin.POST("/cash-transactions", h.Finance.CreateTransaction)
		admin.DELETE("/cash-transactions/:id", h.Finance.DeleteTransaction)
		admin.GET("/cash-transactions/balance", h.Finance.GetBalance)
		admin.GET("/profit-reports", h.Finance.GetProfitReports)
		admin.GET("/profit-reports/summary", h.Finance.GetProfitSummary)
		admin.POST("/profit-reports/refresh", h.Finance.RefreshProfitReport)

		admin.GET("/notifications", h.Notification.List)
		admin.POST("/notifications/mark_all_read", h.Notification.MarkAllRead)
		admin.POST("/notifications/check", h.Notification.RunChecks)
		admin.POST("/notifications/:id/mark_read", h.Notification.MarkRead)

		// Account provisioning is restricted beyond the staff check
		users := admin.Group("/users", middleware.SuperuserOnly())
		users.GET("", h.Auth.GetUsers)
		users.POST("", h.Auth.CreateUser)

		admin.GET("/seo/pages", h.Seo.GetPages)
		admin.POST("/seo/pages", h.Seo.CreatePage)
		admin.PUT("/seo/pages/:id", h.Seo.UpdatePage)
		admin.DELETE("/seo/pages/:id", h.Seo.DeletePage)
		admin.PUT("/seo/settings", h.Seo.UpdateSettings)
	}
}
