package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storedash/internal/middleware"
	"github.com/example/storedash/internal/models"
	"github.com/example/storedash/internal/query"
	"github.com/example/storedash/internal/services"
	"github.com/example/storedash/internal/utils"
	"github.com/example/storedash/internal/validation"
)

// productFilter drives GET /api/products/filter.
var productFilter = query.Resource{
	Fields: map[string]query.Field{
		"productId": {Column: "product_id", Match: query.IntLoose},
		"price":     {Column: "price", Match: query.Number, ErrMsg: "Invalid price format"},
		"category":  {Column: "category", Match: query.Exact},
		"name":      {Column: "name", Match: query.NormalizedName},
	},
	SoftDelete: true,
}

// ProductHandler manages the product catalog.
type ProductHandler struct {
	db     *gorm.DB
	images *services.ImgbbService
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB, images *services.ImgbbService) *ProductHandler {
	return &ProductHandler{db: db, images: images}
}

// ListProducts returns every product that is not soft-deleted.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	var products []models.Product
	if err := h.db.Scopes(query.NotDeleted).Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"products": products})
}

// GetPaginatedProducts returns one page of products. A page past the end
// returns an empty list with valid metadata.
func (h *ProductHandler) GetPaginatedProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c, 11)

	base := h.db.Model(&models.Product{}).Scopes(query.NotDeleted)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := base.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"products":      products,
		"currentPage":   pg.Page,
		"totalPages":    pg.TotalPages(total),
		"totalProducts": total,
	})
}

// FilterProducts applies the product filter table to the query string.
func (h *ProductHandler) FilterProducts(c *fiber.Ctx) error {
	base, err := productFilter.Apply(h.db.Model(&models.Product{}), c.Query)
	if err != nil {
		return err
	}

	var products []models.Product
	if err := base.Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"products": products})
}

// SearchByProductName matches the normalized product name exactly.
func (h *ProductHandler) SearchByProductName(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Product name is required")
	}

	cleaned := strings.ReplaceAll(strings.ToLower(name), " ", "")

	var products []models.Product
	if err := h.db.Scopes(query.NotDeleted).
		Where("REPLACE(LOWER(name), ' ', '') = ?", cleaned).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"products": products})
}

// GetProduct loads one product.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.Scopes(query.NotDeleted).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"product": product})
}

type productRequest struct {
	Name               string               `json:"name" validate:"required,min=3,max=100"`
	Price              float64              `json:"price" validate:"required,gte=0,lte=1000000"`
	Rating             float64              `json:"rating" validate:"gte=0,lte=5"`
	DiscountAmount     float64              `json:"discount_amount" validate:"gte=0"`
	DiscountPercentage float64              `json:"discount_percentage" validate:"gte=0,lte=100"`
	Category           string               `json:"category" validate:"required"`
	Description        string               `json:"description" validate:"required,min=1,max=5000"`
	Quantity           int                  `json:"quantity" validate:"gte=0"`
	Weight             float64              `json:"weight" validate:"gte=0"`
	Dimensions         *models.Dimensions   `json:"dimensions"`
	ShippingInfo       *models.ShippingInfo `json:"shipping_info"`
	ProductImages      []string             `json:"product_images"`
	Images             []string             `json:"images"`
}

// CreateProduct validates the payload, uploads any base64 images and stores
// the product. The 4-image cap is enforced before any upload attempt.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msgs := validation.Struct(req); msgs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": msgs})
	}

	if !models.ValidCategory(req.Category) {
		return fiber.NewError(fiber.StatusBadRequest, req.Category+" is not a valid category")
	}

	if len(req.Images) == 0 && len(req.ProductImages) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No images uploaded")
	}

	if len(req.Images)+len(req.ProductImages) > models.MaxProductImages {
		return fiber.NewError(fiber.StatusBadRequest, "Maximum of 4 images allowed")
	}

	images := append([]string{}, req.ProductImages...)
	if len(req.Images) > 0 {
		uploaded, err := h.images.UploadAll(req.Images)
		if err != nil {
			return err
		}
		images = append(images, uploaded...)
	}

	product := models.Product{
		Name:               req.Name,
		Price:              req.Price,
		Rating:             req.Rating,
		DiscountAmount:     req.DiscountAmount,
		DiscountPercentage: req.DiscountPercentage,
		Category:           req.Category,
		Description:        req.Description,
		Quantity:           req.Quantity,
		Weight:             req.Weight,
		ProductImages:      images,
	}
	if req.Dimensions != nil {
		product.Dimensions = *req.Dimensions
	}
	if req.ShippingInfo != nil {
		product.ShippingInfo = *req.ShippingInfo
	}

	if claims, ok := middleware.GetCurrentUser(c); ok {
		soldBy := claims.UserID
		product.SoldByID = &soldBy
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created",
		"product": product,
	})
}

type productUpdateRequest struct {
	Name               *string              `json:"name" validate:"omitempty,min=3,max=100"`
	Price              *float64             `json:"price" validate:"omitempty,gte=0,lte=1000000"`
	Rating             *float64             `json:"rating" validate:"omitempty,gte=0,lte=5"`
	DiscountAmount     *float64             `json:"discount_amount" validate:"omitempty,gte=0"`
	DiscountPercentage *float64             `json:"discount_percentage" validate:"omitempty,gte=0,lte=100"`
	Category           *string              `json:"category"`
	Description        *string              `json:"description" validate:"omitempty,min=1,max=5000"`
	Quantity           *int                 `json:"quantity" validate:"omitempty,gte=0"`
	Weight             *float64             `json:"weight" validate:"omitempty,gte=0"`
	Dimensions         *models.Dimensions   `json:"dimensions"`
	ShippingInfo       *models.ShippingInfo `json:"shipping_info"`
	// ProductImages lists hosted URLs to keep; images not listed are dropped.
	ProductImages []string `json:"product_images"`
	// Images are new base64 payloads to upload and append.
	Images []string `json:"images"`
}

// UpdateProduct applies targeted field updates and reconciles the image set.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return err
	}

	var req productUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msgs := validation.Struct(req); msgs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": msgs})
	}

	if req.Category != nil && !models.ValidCategory(*req.Category) {
		return fiber.NewError(fiber.StatusBadRequest, *req.Category+" is not a valid category")
	}

	images := append([]string{}, product.ProductImages...)

	if len(req.Images) > 0 {
		if len(images)+len(req.Images) > models.MaxProductImages {
			return fiber.NewError(fiber.StatusBadRequest, "Maximum of 4 images allowed")
		}
		uploaded, err := h.images.UploadAll(req.Images)
		if err != nil {
			return err
		}
		images = appendUnique(images, uploaded)
	}

	if req.ProductImages != nil {
		keep := make(map[string]bool, len(req.ProductImages))
		for _, url := range req.ProductImages {
			keep[url] = true
		}
		kept := images[:0]
		for _, url := range images {
			if keep[url] {
				kept = append(kept, url)
			}
		}
		images = kept
	}

	if len(images) > models.MaxProductImages {
		images = images[:models.MaxProductImages]
	}
	product.ProductImages = images

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Rating != nil {
		product.Rating = *req.Rating
	}
	if req.DiscountAmount != nil {
		product.DiscountAmount = *req.DiscountAmount
	}
	if req.DiscountPercentage != nil {
		product.DiscountPercentage = *req.DiscountPercentage
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if req.Weight != nil {
		product.Weight = *req.Weight
	}
	if req.Dimensions != nil {
		product.Dimensions = *req.Dimensions
	}
	if req.ShippingInfo != nil {
		product.ShippingInfo = *req.ShippingInfo
	}

	if err := h.db.Save(&product).Error; err != nil {
		return err
	}

	product.PriceAfterDiscount = product.DiscountedPrice()

	return c.JSON(fiber.Map{"message": "Product updated", "product": product})
}

// DeleteProduct soft-deletes one product; repeating the call is a no-op.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return err
	}

	product.MarkDeleted()
	if err := h.db.Save(&product).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Product soft deleted"})
}

// DeleteMultipleProducts soft-deletes every product in the id list.
func (h *ProductHandler) DeleteMultipleProducts(c *fiber.Ctx) error {
	var ids []string
	if err := c.BodyParser(&ids); err != nil || len(ids) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No product IDs provided")
	}

	parsed := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid id")
		}
		parsed = append(parsed, id)
	}

	result := h.db.Model(&models.Product{}).
		Where("id IN ?", parsed).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "No products found for soft deletion")
	}

	return c.JSON(fiber.Map{
		"message":      "Products soft deleted",
		"deletedCount": result.RowsAffected,
	})
}

func appendUnique(existing []string, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range extra {
		if !seen[v] {
			existing = append(existing, v)
			seen[v] = true
		}
	}
	return existing
}
