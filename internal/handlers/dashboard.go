package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/storedash/internal/models"
)

// DashboardHandler serves aggregate counters.
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// GetSummary returns revenue and volume counters, including activity over
// the trailing 7 days.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	var totalRevenue float64
	if err := h.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	var numberOfOrders int64
	if err := h.db.Model(&models.Order{}).Count(&numberOfOrders).Error; err != nil {
		return err
	}

	averageOrderValue := 0.0
	if numberOfOrders > 0 {
		averageOrderValue = totalRevenue / float64(numberOfOrders)
	}

	last7Days := time.Now().AddDate(0, 0, -7)

	var newOrders int64
	if err := h.db.Model(&models.Order{}).
		Where("created_at >= ?", last7Days).
		Count(&newOrders).Error; err != nil {
		return err
	}

	var newCustomers int64
	if err := h.db.Model(&models.Customer{}).
		Where("created_at >= ?", last7Days).
		Count(&newCustomers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"totalRevenue":      totalRevenue,
		"numberOfOrders":    numberOfOrders,
		"averageOrderValue": averageOrderValue,
		"newOrders":         newOrders,
		"newCustomers":      newCustomers,
	})
}
