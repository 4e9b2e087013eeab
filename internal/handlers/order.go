package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storedash/internal/models"
	"github.com/example/storedash/internal/query"
	"github.com/example/storedash/internal/utils"
)

// orderFilter drives GET /api/orders. Customer name filtering and searching
// go through the joined customers table.
var orderFilter = query.Resource{
	Fields: map[string]query.Field{
		"status":       {Column: "orders.status", Match: query.Exact},
		"orderId":      {Column: "orders.order_id", Match: query.IntLoose},
		"orderDate":    {Column: "orders.order_date", Match: query.Date},
		"customerName": {Column: "customers.customer_name", Match: query.Substring},
		"totalPrice":   {Column: "orders.total_price", Match: query.Number, ErrMsg: "Invalid price format"},
	},
	Ranges: []query.Range{
		{MinParam: "priceMin", MaxParam: "priceMax", Column: "orders.total_price"},
	},
	SearchText: []string{
		"customers.customer_name",
		"orders.status",
		"CAST(orders.order_id AS TEXT)",
	},
	SearchNumeric: []string{"orders.total_price"},
	Sortable: map[string]string{
		"createdAt":  "orders.created_at",
		"orderDate":  "orders.order_date",
		"totalPrice": "orders.total_price",
		"status":     "orders.status",
		"orderId":    "orders.order_id",
	},
	DefaultSort: "orders.created_at desc",
}

// OrderHandler manages order endpoints.
type OrderHandler struct {
	db *gorm.DB
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{db: db}
}

// ListOrders returns one page of orders with filtering and sorting. A page
// past the end returns an empty list with valid metadata.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c, 11)

	base := h.db.Model(&models.Order{}).
		Joins("LEFT JOIN customers ON customers.id = orders.customer_id")

	base, err := orderFilter.Apply(base, c.Query)
	if err != nil {
		return err
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := base.Preload("Customer").
		Preload("User").
		Preload("Products.Product").
		Order(orderFilter.Sort(c.Query)).
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"orders":      orders,
		"currentPage": pg.Page,
		"totalPages":  pg.TotalPages(total),
		"totalOrders": total,
	})
}

type orderProductRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type shippingAddressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode int    `json:"postalCode"`
}

type paymentInfoRequest struct {
	PaymentMethod     string `json:"paymentMethod"`
	TransactionID     int64  `json:"transactionId"`
	BillingPostalCode int    `json:"billingPostalCode"`
	PaymentStatus     string `json:"paymentStatus"`
}

type createOrderRequest struct {
	OrderID         int                     `json:"orderId"`
	OrderDate       string                  `json:"orderDate"`
	Status          string                  `json:"status"`
	Customer        string                  `json:"customer"`
	ShippingAddress *shippingAddressRequest `json:"shippingAddress"`
	PaymentInfo     *paymentInfoRequest     `json:"paymentInfo"`
	Products        []orderProductRequest   `json:"products"`
}

// AddOrder creates an order. The total price is recomputed from the
// referenced products, never taken from the caller.
func (h *OrderHandler) AddOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.OrderID == 0 || req.OrderDate == "" || req.Status == "" || req.Customer == "" ||
		req.ShippingAddress == nil || req.PaymentInfo == nil || len(req.Products) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "All fields are required")
	}

	if !models.ValidOrderStatus(req.Status) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid status")
	}

	orderDate, err := parseDate(req.OrderDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
	}

	var existing models.Order
	if err := h.db.Where("order_id = ?", req.OrderID).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Order ID must be unique")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	customerID, err := uuid.Parse(req.Customer)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Customer not found")
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "Customer not found")
		}
		return err
	}

	var totalPrice float64
	items := make([]models.OrderProduct, 0, len(req.Products))
	for _, item := range req.Products {
		if item.Quantity < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "Quantity must be at least 1")
		}

		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Product with ID %s not found", item.ProductID))
		}

		var product models.Product
		if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("Product with ID %s not found", item.ProductID))
			}
			return err
		}

		items = append(items, models.OrderProduct{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
		totalPrice += product.Price * float64(item.Quantity)
	}

	order := models.Order{
		OrderID:    req.OrderID,
		Status:     req.Status,
		OrderDate:  orderDate,
		TotalPrice: totalPrice,
		CustomerID: customerID,
		ShippingAddress: models.ShippingAddress{
			Street:     req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
		},
		PaymentInfo: models.PaymentInfo{
			PaymentMethod:     req.PaymentInfo.PaymentMethod,
			TransactionID:     req.PaymentInfo.TransactionID,
			BillingPostalCode: req.PaymentInfo.BillingPostalCode,
			PaymentStatus:     req.PaymentInfo.PaymentStatus,
		},
		Products: items,
	}

	if order.PaymentInfo.PaymentStatus == "" {
		order.PaymentInfo.PaymentStatus = "paid"
	} else if !models.ValidPaymentStatus(order.PaymentInfo.PaymentStatus) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payment status")
	}

	if err := h.db.Create(&order).Error; err != nil {
		return err
	}

	var populated models.Order
	if err := h.db.Preload("Customer").
		Preload("Products.Product").
		First(&populated, "id = ?", order.ID).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Order created successfully",
		"newOrder": populated,
	})
}

// UpdateOrderStatus sets the status of an order addressed by its numeric id.
// Any value from the status set is accepted regardless of current state.
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Status == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Status is required")
	}

	if !models.ValidOrderStatus(req.Status) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid status")
	}

	order, err := h.findByOrderID(c.Params("id"))
	if err != nil {
		return err
	}

	order.Status = req.Status
	if err := h.db.Save(order).Error; err != nil {
		return err
	}

	return c.JSON(order)
}

type updateOrderProductsRequest struct {
	Products []orderProductRequest `json:"products"`
}

// UpdateOrderWithProducts merges new line items into an existing order,
// accumulating quantities for products already present, moves the order to
// processing and recomputes the total from live product prices.
func (h *OrderHandler) UpdateOrderWithProducts(c *fiber.Ctx) error {
	order, err := h.findByOrderID(c.Params("orderId"))
	if err != nil {
		return err
	}

	var req updateOrderProductsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.db.Preload("Products").First(order, "id = ?", order.ID).Error; err != nil {
		return err
	}

	for _, incoming := range req.Products {
		productID, err := uuid.Parse(incoming.ProductID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Product with ID %s not found", incoming.ProductID))
		}

		merged := false
		for i := range order.Products {
			if order.Products[i].ProductID == productID {
				order.Products[i].Quantity += incoming.Quantity
				merged = true
				break
			}
		}
		if !merged {
			order.Products = append(order.Products, models.OrderProduct{
				OrderID:   order.ID,
				ProductID: productID,
				Quantity:  incoming.Quantity,
			})
		}
	}

	order.Status = models.OrderStatusProcessing

	// Sequential reads; a concurrent price update can race. Accepted.
	var totalPrice float64
	for _, item := range order.Products {
		var product models.Product
		if err := h.db.First(&product, "id = ?", item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}
		totalPrice += product.Price * float64(item.Quantity)
	}
	order.TotalPrice = totalPrice

	if err := h.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error; err != nil {
		return err
	}

	var populated models.Order
	if err := h.db.Preload("Products.Product").
		First(&populated, "id = ?", order.ID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":      "Order updated successfully",
		"updatedOrder": populated,
	})
}

// DeleteOrder removes an order and its line items. Orders are hard-deleted.
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	order, err := h.findByOrderID(c.Params("id"))
	if err != nil {
		return err
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderProduct{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, "id = ?", order.ID).Error
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Order deleted successfully"})
}

// GetOrderByID returns a single order with customer and products expanded.
func (h *OrderHandler) GetOrderByID(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Order not found")
	}

	var order models.Order
	if err := h.db.Preload("Customer").
		Preload("Products.Product").
		Where("order_id = ?", orderID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		return err
	}

	return c.JSON(order)
}

// GetOrdersByDateRange returns orders whose order date falls inside the
// inclusive start/end range.
func (h *OrderHandler) GetOrdersByDateRange(c *fiber.Ctx) error {
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")

	if startDate == "" || endDate == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Start date and end date are required")
	}

	start, err := parseDate(startDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
	}

	end, err := parseDate(endDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
	}

	var orders []models.Order
	if err := h.db.Preload("Customer").
		Where("order_date >= ? AND order_date <= ?", start, end).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(orders)
}

func (h *OrderHandler) findByOrderID(raw string) (*models.Order, error) {
	orderID, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Order not found")
	}

	var order models.Order
	if err := h.db.Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		return nil, err
	}
	return &order, nil
}

func parseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}
