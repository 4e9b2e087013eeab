package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storedash/internal/models"
	"github.com/example/storedash/internal/query"
	"github.com/example/storedash/internal/validation"
)

// StoreHandler manages store configuration and its shipping-method
// sub-resource.
type StoreHandler struct {
	db *gorm.DB
}

// NewStoreHandler constructs StoreHandler.
func NewStoreHandler(db *gorm.DB) *StoreHandler {
	return &StoreHandler{db: db}
}

type shippingMethodRequest struct {
	MethodName           string  `json:"methodName" validate:"required"`
	Cost                 float64 `json:"cost" validate:"required,gte=0"`
	EstimatedDeliveryMin float64 `json:"estimatedDeliveryMin" validate:"required,gte=0"`
	EstimatedDeliveryMax float64 `json:"estimatedDeliveryMax" validate:"required,lte=600"`
	Active               *bool   `json:"active"`
}

type createStoreRequest struct {
	StoreName       string                  `json:"storeName" validate:"required,min=2,max=50"`
	StoreURL        string                  `json:"storeURL" validate:"required,url,max=200"`
	Currency        string                  `json:"currency" validate:"required"`
	DefaultLanguage string                  `json:"defaultLanguage" validate:"required"`
	ShippingMethods []shippingMethodRequest `json:"shippingMethods" validate:"omitempty,dive"`
}

// CreateStore creates a store configuration.
func (h *StoreHandler) CreateStore(c *fiber.Ctx) error {
	var req createStoreRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msgs := validation.Struct(req); msgs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"errors":  msgs,
		})
	}

	if !models.ValidStoreCurrency(req.Currency) {
		return fiber.NewError(fiber.StatusBadRequest, req.Currency+" is not a supported currency")
	}

	store := models.StoreConfig{
		StoreName:       req.StoreName,
		StoreURL:        req.StoreURL,
		Currency:        req.Currency,
		DefaultLanguage: req.DefaultLanguage,
	}

	for _, method := range req.ShippingMethods {
		if method.EstimatedDeliveryMin > method.EstimatedDeliveryMax {
			return fiber.NewError(fiber.StatusBadRequest,
				"Minimum estimated delivery must be less than or equal to maximum.")
		}
		store.ShippingMethods = append(store.ShippingMethods, buildShippingMethod(method))
	}

	if err := h.db.Create(&store).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Store created successfully",
		"data":    withMethodList(&store),
	})
}

type editStoreRequest struct {
	StoreName       *string `json:"storeName" validate:"omitempty,min=2,max=50"`
	StoreURL        *string `json:"storeURL" validate:"omitempty,url,max=200"`
	Currency        *string `json:"currency"`
	DefaultLanguage *string `json:"defaultLanguage"`
	ShippingMethods []struct {
		ID                   string   `json:"id"`
		MethodName           *string  `json:"methodName"`
		Cost                 *float64 `json:"cost"`
		EstimatedDeliveryMin *float64 `json:"estimatedDeliveryMin"`
		EstimatedDeliveryMax *float64 `json:"estimatedDeliveryMax"`
		Active               *bool    `json:"active"`
	} `json:"shippingMethods"`
}

// EditStore applies targeted updates to a store configuration and any of its
// listed shipping methods.
func (h *StoreHandler) EditStore(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var store models.StoreConfig
	if err := h.db.Preload("ShippingMethods").First(&store, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Store not found")
		}
		return err
	}

	var req editStoreRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msgs := validation.Struct(req); msgs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"errors":  msgs,
		})
	}

	if req.StoreName != nil {
		store.StoreName = *req.StoreName
	}
	if req.StoreURL != nil {
		store.StoreURL = *req.StoreURL
	}
	if req.Currency != nil {
		if !models.ValidStoreCurrency(*req.Currency) {
			return fiber.NewError(fiber.StatusBadRequest, *req.Currency+" is not a supported currency")
		}
		store.Currency = *req.Currency
	}
	if req.DefaultLanguage != nil {
		store.DefaultLanguage = *req.DefaultLanguage
	}

	for _, updated := range req.ShippingMethods {
		methodID, err := uuid.Parse(updated.ID)
		if err != nil {
			continue
		}

		for i := range store.ShippingMethods {
			if store.ShippingMethods[i].ID != methodID {
				continue
			}

			if updated.Cost != nil {
				if *updated.Cost < 0 {
					return fiber.NewError(fiber.StatusBadRequest, "Cost must be at least 0")
				}
				store.ShippingMethods[i].Cost = *updated.Cost
			}
			if updated.EstimatedDeliveryMin != nil {
				if *updated.EstimatedDeliveryMin < 0 {
					return fiber.NewError(fiber.StatusBadRequest,
						"Minimum estimated delivery must be at least 0 hours")
				}
				store.ShippingMethods[i].EstimatedDeliveryMin = *updated.EstimatedDeliveryMin
			}
			if updated.EstimatedDeliveryMax != nil {
				if *updated.EstimatedDeliveryMax > models.MaxDeliveryEstimateHours {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("Maximum estimated delivery must be at most %d hours",
							models.MaxDeliveryEstimateHours))
				}
				store.ShippingMethods[i].EstimatedDeliveryMax = *updated.EstimatedDeliveryMax
			}
			if updated.MethodName != nil {
				store.ShippingMethods[i].MethodName = *updated.MethodName
			}
			if updated.Active != nil {
				store.ShippingMethods[i].Active = *updated.Active
			}
			break
		}
	}

	if err := h.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(&store).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Store updated successfully",
		"data":    withMethodList(&store),
	})
}

// GetStore returns a store configuration with its active (not soft-deleted)
// shipping methods.
func (h *StoreHandler) GetStore(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("storeId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var store models.StoreConfig
	if err := h.db.Preload("ShippingMethods", func(db *gorm.DB) *gorm.DB {
		return db.Scopes(query.NotDeleted)
	}).First(&store, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Store not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Store retrieved successfully",
		"data":    withMethodList(&store),
	})
}

// AddShippingMethod appends a shipping method to a store.
func (h *StoreHandler) AddShippingMethod(c *fiber.Ctx) error {
	storeID, err := uuid.Parse(c.Params("storeId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req shippingMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msgs := validation.Struct(req); msgs != nil {
		return fiber.NewError(fiber.StatusBadRequest,
			"All fields are required: methodName, cost, estimatedDeliveryMin, estimatedDeliveryMax")
	}

	if req.EstimatedDeliveryMin > req.EstimatedDeliveryMax {
		return fiber.NewError(fiber.StatusBadRequest,
			"Minimum estimated delivery must be less than or equal to maximum.")
	}

	var store models.StoreConfig
	if err := h.db.First(&store, "id = ?", storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Store not found")
		}
		return err
	}

	method := buildShippingMethod(req)
	method.StoreConfigID = store.ID

	if err := h.db.Create(&method).Error; err != nil {
		return err
	}

	if err := h.db.Preload("ShippingMethods", func(db *gorm.DB) *gorm.DB {
		return db.Scopes(query.NotDeleted)
	}).First(&store, "id = ?", store.ID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Shipping method added successfully",
		"data":    withMethodList(&store),
	})
}

// EditShippingMethod replaces the fields of one shipping method.
func (h *StoreHandler) EditShippingMethod(c *fiber.Ctx) error {
	storeID, err := uuid.Parse(c.Params("storeId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	methodID, err := uuid.Parse(c.Params("methodId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req shippingMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msgs := validation.Struct(req); msgs != nil {
		return fiber.NewError(fiber.StatusBadRequest,
			"All fields are required: methodName, cost, estimatedDeliveryMin, estimatedDeliveryMax")
	}

	if req.EstimatedDeliveryMin > req.EstimatedDeliveryMax {
		return fiber.NewError(fiber.StatusBadRequest,
			"Minimum estimated delivery must be less than or equal to maximum.")
	}

	if err := h.db.First(&models.StoreConfig{}, "id = ?", storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Store not found")
		}
		return err
	}

	var method models.ShippingMethod
	if err := h.db.Where("id = ? AND store_config_id = ?", methodID, storeID).
		First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Shipping method not found")
		}
		return err
	}

	method.MethodName = req.MethodName
	method.Cost = req.Cost
	method.EstimatedDeliveryMin = req.EstimatedDeliveryMin
	method.EstimatedDeliveryMax = req.EstimatedDeliveryMax
	if req.Active != nil {
		method.Active = *req.Active
	}

	if err := h.db.Save(&method).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Shipping method updated successfully",
		"data":    method,
	})
}

// DeleteShippingMethod soft-deletes a shipping method; it disappears from
// store reads but the row is kept.
func (h *StoreHandler) DeleteShippingMethod(c *fiber.Ctx) error {
	storeID, err := uuid.Parse(c.Params("storeId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	methodID, err := uuid.Parse(c.Params("methodId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var store models.StoreConfig
	if err := h.db.First(&store, "id = ?", storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Store not found")
		}
		return err
	}

	var method models.ShippingMethod
	if err := h.db.Where("id = ? AND store_config_id = ?", methodID, storeID).
		First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Shipping method not found")
		}
		return err
	}

	method.MarkDeleted()
	if err := h.db.Save(&method).Error; err != nil {
		return err
	}

	if err := h.db.Preload("ShippingMethods", func(db *gorm.DB) *gorm.DB {
		return db.Scopes(query.NotDeleted)
	}).First(&store, "id = ?", store.ID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Shipping method soft deleted successfully",
		"data":    withMethodList(&store),
	})
}

// withMethodList keeps the shipping-method list non-nil so responses carry
// an explicit empty list rather than null.
func withMethodList(store *models.StoreConfig) *models.StoreConfig {
	if store.ShippingMethods == nil {
		store.ShippingMethods = []models.ShippingMethod{}
	}
	return store
}

func buildShippingMethod(req shippingMethodRequest) models.ShippingMethod {
	method := models.ShippingMethod{
		MethodName:           req.MethodName,
		Cost:                 req.Cost,
		EstimatedDeliveryMin: req.EstimatedDeliveryMin,
		EstimatedDeliveryMax: req.EstimatedDeliveryMax,
		Active:               true,
	}
	if req.Active != nil {
		method.Active = *req.Active
	}
	return method
}
