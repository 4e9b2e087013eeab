package models

import "github.com/google/uuid"

// StoreCurrencies is the supported currency set.
var StoreCurrencies = []string{"USD", "EUR", "GBP", "JPY", "AUD"}

// ValidStoreCurrency reports whether the code belongs to the supported set.
func ValidStoreCurrency(value string) bool {
	for _, c := range StoreCurrencies {
		if c == value {
			return true
		}
	}
	return false
}

// MaxDeliveryEstimateHours bounds shipping estimates.
const MaxDeliveryEstimateHours = 600

// StoreConfig holds per-store settings.
type StoreConfig struct {
	BaseModel
	StoreName       string           `json:"store_name"`
	StoreURL        string           `json:"store_url"`
	Currency        string           `gorm:"default:USD" json:"currency"`
	DefaultLanguage string           `gorm:"default:English" json:"default_language"`
	// Serialized without omitempty so a store with no methods still carries
	// an explicit empty list.
	ShippingMethods []ShippingMethod `json:"shipping_methods"`
}

// ShippingMethod is a soft-deletable sub-entry of a store configuration.
type ShippingMethod struct {
	BaseModel
	StoreConfigID        uuid.UUID `gorm:"type:uuid;index" json:"store_config_id"`
	MethodName           string    `json:"method_name"`
	Cost                 float64   `json:"cost"`
	EstimatedDeliveryMin float64   `json:"estimated_delivery_min"`
	EstimatedDeliveryMax float64   `json:"estimated_delivery_max"`
	Active               bool      `gorm:"default:true" json:"active"`
	SoftDelete
}
