package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MaxProductImages caps how many image references a product may carry.
const MaxProductImages = 4

// ProductCategories is the closed set of catalog labels.
var ProductCategories = []string{
	"Bags",
	"Frames",
	"Accessories",
	"Tablecloth",
	"Clothes",
	"Stocks",
	"Gloves",
}

// ValidCategory reports whether the label belongs to the catalog set.
func ValidCategory(value string) bool {
	for _, c := range ProductCategories {
		if c == value {
			return true
		}
	}
	return false
}

// Dimensions describes the physical size of a product.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ShippingInfo carries per-product shipping defaults.
type ShippingInfo struct {
	ShippingCost      float64 `json:"shipping_cost"`
	EstimatedDelivery float64 `json:"estimated_delivery"`
}

// Product is a catalog entry. ProductID is a sequential display id assigned
// on creation, separate from the primary key.
type Product struct {
	BaseModel
	ProductID          int            `gorm:"uniqueIndex" json:"product_id"`
	Name               string         `json:"name"`
	Price              float64        `json:"price"`
	Rating             float64        `gorm:"default:0" json:"rating"`
	ProductImages      pq.StringArray `gorm:"type:text[]" json:"product_images"`
	ImageNames         pq.StringArray `gorm:"type:text[]" json:"image_names"`
	DiscountAmount     float64        `gorm:"default:0" json:"discount_amount"`
	DiscountPercentage float64        `gorm:"default:0" json:"discount_percentage"`
	Category           string         `json:"category"`
	Description        string         `json:"description"`
	Views              int            `gorm:"default:0" json:"views"`
	Quantity           int            `json:"quantity"`
	InStock            int            `gorm:"default:1" json:"in_stock"`
	Weight             float64        `json:"weight"`
	Dimensions         Dimensions     `gorm:"embedded;embeddedPrefix:dim_" json:"dimensions"`
	ShippingInfo       ShippingInfo   `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_info"`
	SoldByID           *uuid.UUID     `gorm:"type:uuid" json:"sold_by_id"`
	SoldBy             *User          `json:"sold_by,omitempty"`
	PriceAfterDiscount float64        `gorm:"-" json:"price_after_discount"`
	SoftDelete
}

// DiscountedPrice applies the amount and percentage discounts, clamped at zero.
func (p *Product) DiscountedPrice() float64 {
	price := p.Price - p.DiscountAmount - p.Price*(p.DiscountPercentage/100)
	if price < 0 {
		return 0
	}
	return price
}

// BeforeCreate assigns the next display id, starting at 100.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if err := p.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if p.ProductID == 0 {
		var last int
		if err := tx.Model(&Product{}).Select("COALESCE(MAX(product_id), 99)").Scan(&last).Error; err != nil {
			return err
		}
		p.ProductID = last + 1
	}
	return nil
}

// AfterCreate populates computed fields on freshly inserted products.
func (p *Product) AfterCreate(tx *gorm.DB) error {
	p.PriceAfterDiscount = p.DiscountedPrice()
	return nil
}

// AfterFind populates computed fields on loaded products.
func (p *Product) AfterFind(tx *gorm.DB) error {
	p.PriceAfterDiscount = p.DiscountedPrice()
	return nil
}
