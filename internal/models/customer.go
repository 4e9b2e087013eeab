package models

import "github.com/lib/pq"

// CustomerTags is the fixed tag vocabulary.
var CustomerTags = []string{"premium", "new customer", "inactive", "frequent buyer"}

// ValidCustomerTag reports whether the tag belongs to the vocabulary.
func ValidCustomerTag(value string) bool {
	for _, t := range CustomerTags {
		if t == value {
			return true
		}
	}
	return false
}

// Customer is a store customer record, addressed externally by its numeric
// CustomerID rather than the primary key.
type Customer struct {
	BaseModel
	CustomerID     int            `gorm:"uniqueIndex" json:"customer_id"`
	CustomerImage  string         `json:"customer_image"`
	CustomerName   string         `json:"customer_name"`
	CustomerEmail  string         `gorm:"uniqueIndex" json:"customer_email"`
	CustomerNumber string         `gorm:"uniqueIndex" json:"customer_number"`
	NumberOfOrders int            `gorm:"default:0" json:"number_of_orders"`
	Total          float64        `gorm:"default:0" json:"total"`
	Tags           pq.StringArray `gorm:"type:text[]" json:"tags"`
}
