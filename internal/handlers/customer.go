package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/storedash/internal/models"
	"github.com/example/storedash/internal/query"
	"github.com/example/storedash/internal/utils"
	"github.com/example/storedash/internal/validation"
)

// customerFilter drives GET /api/customers. Non-numeric values for the
// numeric params are ignored rather than rejected, matching the established
// contract for this resource.
var customerFilter = query.Resource{
	Fields: map[string]query.Field{
		"customerName":   {Column: "customer_name", Match: query.Substring},
		"customerEmail":  {Column: "customer_email", Match: query.Substring},
		"total":          {Column: "total", Match: query.NumberLoose},
		"numberOfOrders": {Column: "number_of_orders", Match: query.IntLoose},
		"tag":            {Column: "tags", Match: query.SetContains},
	},
	SearchText: []string{
		"customer_name",
		"customer_email",
		"customer_number",
		"CAST(tags AS TEXT)",
	},
	SearchNumeric: []string{"number_of_orders", "total"},
	DefaultSort:   "customer_name asc",
}

// CustomerHandler manages customer records.
type CustomerHandler struct {
	db *gorm.DB
}

// NewCustomerHandler constructs CustomerHandler.
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

// ListCustomers returns one page of customers with filtering and search.
// Requesting a page past the last one fails with "Page not found"; this
// resource keeps the 404 policy.
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c, 10)

	base := h.db.Model(&models.Customer{})

	if raw := c.Params("customerId"); raw != "" {
		customerID, err := strconv.Atoi(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}
		base = base.Where("customer_id = ?", customerID)
	}

	base, err := customerFilter.Apply(base, c.Query)
	if err != nil {
		return err
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return err
	}

	totalPages := pg.TotalPages(total)
	if pg.Page > totalPages && totalPages != 0 {
		return fiber.NewError(fiber.StatusNotFound, "Page not found")
	}

	var customers []models.Customer
	if err := base.Order(customerFilter.Sort(c.Query)).
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&customers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"customers":      customers,
		"currentPage":    pg.Page,
		"totalPages":     totalPages,
		"totalCustomers": total,
	})
}

type customerRequest struct {
	CustomerID     int      `json:"customerId" validate:"required"`
	CustomerImage  string   `json:"customerImage" validate:"omitempty,url"`
	CustomerName   string   `json:"customerName" validate:"required"`
	CustomerEmail  string   `json:"customerEmail" validate:"required,email"`
	CustomerNumber string   `json:"customerNumber" validate:"required,egphone"`
	NumberOfOrders int      `json:"numberOfOrders" validate:"gte=0"`
	Total          float64  `json:"total" validate:"gte=0"`
	Tags           []string `json:"tags"`
}

// AddCustomer creates a customer record.
func (h *CustomerHandler) AddCustomer(c *fiber.Ctx) error {
	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msgs := validation.Struct(req); msgs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": msgs})
	}

	for _, tag := range req.Tags {
		if !models.ValidCustomerTag(tag) {
			return fiber.NewError(fiber.StatusBadRequest, tag+" is not a valid tag")
		}
	}

	customer := models.Customer{
		CustomerID:     req.CustomerID,
		CustomerImage:  req.CustomerImage,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerNumber: req.CustomerNumber,
		NumberOfOrders: req.NumberOfOrders,
		Total:          req.Total,
		Tags:           req.Tags,
	}

	if err := h.db.Create(&customer).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Customer created successfully",
		"newCustomer": customer,
	})
}

type customerUpdateRequest struct {
	CustomerID     *int     `json:"customerId"`
	CustomerImage  *string  `json:"customerImage" validate:"omitempty,url"`
	CustomerName   *string  `json:"customerName"`
	CustomerEmail  *string  `json:"customerEmail" validate:"omitempty,email"`
	CustomerNumber *string  `json:"customerNumber" validate:"omitempty,egphone"`
	NumberOfOrders *int     `json:"numberOfOrders" validate:"omitempty,gte=0"`
	Total          *float64 `json:"total" validate:"omitempty,gte=0"`
	Tags           []string `json:"tags"`
}

// UpdateCustomer applies targeted field updates, addressed by the numeric
// customer id.
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	customer, err := h.findByCustomerID(c.Params("id"))
	if err != nil {
		return err
	}

	var req customerUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msgs := validation.Struct(req); msgs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": msgs})
	}

	for _, tag := range req.Tags {
		if !models.ValidCustomerTag(tag) {
			return fiber.NewError(fiber.StatusBadRequest, tag+" is not a valid tag")
		}
	}

	if req.CustomerID != nil {
		customer.CustomerID = *req.CustomerID
	}
	if req.CustomerImage != nil {
		customer.CustomerImage = *req.CustomerImage
	}
	if req.CustomerName != nil {
		customer.CustomerName = *req.CustomerName
	}
	if req.CustomerEmail != nil {
		customer.CustomerEmail = *req.CustomerEmail
	}
	if req.CustomerNumber != nil {
		customer.CustomerNumber = *req.CustomerNumber
	}
	if req.NumberOfOrders != nil {
		customer.NumberOfOrders = *req.NumberOfOrders
	}
	if req.Total != nil {
		customer.Total = *req.Total
	}
	if req.Tags != nil {
		customer.Tags = req.Tags
	}

	if err := h.db.Save(customer).Error; err != nil {
		return err
	}

	return c.JSON(customer)
}

// DeleteCustomer removes a customer record. Customers are hard-deleted.
func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	customer, err := h.findByCustomerID(c.Params("id"))
	if err != nil {
		return err
	}

	if err := h.db.Delete(&models.Customer{}, "id = ?", customer.ID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Customer deleted successfully"})
}

func (h *CustomerHandler) findByCustomerID(raw string) (*models.Customer, error) {
	customerID, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Customer not found")
	}

	var customer models.Customer
	if err := h.db.Where("customer_id = ?", customerID).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}
		return nil, err
	}
	return &customer, nil
}
