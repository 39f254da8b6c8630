package models

import (
	"slices"

	"gorm.io/gorm"
)

// Product represents a catalog item, including the variant attributes
// (flavors, nicotine strengths) a buyer may select from.
type Product struct {
	ID                string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name              string   `json:"name" validate:"required,min=3,max=100"`
	Description       string   `json:"description" validate:"omitempty,max=500"`
	BasePrice         float64  `json:"base_price" validate:"required,gt=0"`
	DiscountedPrice   float64  `json:"discounted_price" validate:"required,gt=0"`
	Stock             int      `json:"stock" validate:"gte=0"`
	Images            []string `json:"images" gorm:"serializer:json"`
	Category          string   `json:"category" validate:"required"`
	BrandName         string   `json:"brand_name" validate:"required"`
	ProductCode       string   `json:"product_code" gorm:"uniqueIndex;type:varchar(64)" validate:"required"`
	Flavors           []string `json:"flavors" gorm:"serializer:json"`
	NicotineStrengths []int    `json:"nicotine_strengths" gorm:"serializer:json"`
	Rating            float64  `json:"rating"`
	gorm.Model                 // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// AllowsFlavor reports whether the flavor is in the product's allowed set.
func (p *Product) AllowsFlavor(flavor string) bool {
	return slices.Contains(p.Flavors, flavor)
}

// AllowsStrength reports whether the nicotine strength is in the product's allowed set.
func (p *Product) AllowsStrength(strength int) bool {
	return slices.Contains(p.NicotineStrengths, strength)
}

// ImageOrDefault returns the selected image if the product actually carries it,
// otherwise the product's first image.
func (p *Product) ImageOrDefault(selected string) string {
	if selected != "" && slices.Contains(p.Images, selected) {
		return selected
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}
