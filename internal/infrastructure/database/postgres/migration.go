// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gooddrive/autoparts-backend/internal/domain/catalog"
	"github.com/gooddrive/autoparts-backend/internal/domain/crm"
	"github.com/gooddrive/autoparts-backend/internal/domain/finance"
	"github.com/gooddrive/autoparts-backend/internal/domain/notification"
	"github.com/gooddrive/autoparts-backend/internal/domain/order"
	"github.com/gooddrive/autoparts-backend/internal/domain/seo"
	"github.com/gooddrive/autoparts-backend/internal/domain/user"
)

// Migrate runs auto-migration for all models and creates extra indexes
func Migrate(db *gorm.DB, log *logrus.Logger) error {
	models := []interface{}{
		&user.User{},
		&catalog.Brand{},
		&catalog.Warehouse{},
		&catalog.Part{},
		&catalog.PartImage{},
		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
		&crm.Customer{},
		&crm.CustomerNote{},
		&finance.ExpenseCategory{},
		&finance.Expense{},
		&finance.CashTransaction{},
		&finance.ProfitReport{},
		&notification.Notification{},
		&seo.SeoPage{},
		&seo.SeoSettings{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("index creation failed: %w", err)
	}

	log.Info("database migration completed")
	return nil
}

// createIndexes adds composite indexes AutoMigrate cannot express
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_parts_brand_active ON parts (brand_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_parts_search ON parts (title, label)",
		"CREATE INDEX IF NOT EXISTS idx_orders_phone_status ON orders (customer_phone, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders (status, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications (is_read, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses (date, category_id)",
		"CREATE INDEX IF NOT EXISTS idx_cash_transactions_date_type ON cash_transactions (date, type)",
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// SeedDefaults inserts the baseline rows a fresh installation needs
func SeedDefaults(db *gorm.DB, log *logrus.Logger) error {
	categories := []finance.ExpenseCategory{
		{Name: "Rent", Description: "Office and warehouse rent", IsActive: true},
		{Name: "Salaries", Description: "Staff payroll", IsActive: true},
		{Name: "Logistics", Description: "Shipping and delivery costs", IsActive: true},
		{Name: "Advertising", Description: "Marketing spend", IsActive: true},
		{Name: "Other", Description: "Uncategorized expenses", IsActive: true},
	}

	for _, category := range categories {
		var count int64
		if err := db.Model(&finance.ExpenseCategory{}).Where("name = ?", category.Name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check expense category: %w", err)
		}
		if count == 0 {
			if err := db.Create(&category).Error; err != nil {
				return fmt.Errorf("failed to seed expense category %q: %w", category.Name, err)
			}
		}
	}

	log.Info("database seed completed")
	return nil
}
