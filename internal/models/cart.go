package models

import "gorm.io/gorm"

// CartItem is one line of an owner's cart. A line is identified by the
// (owner, product, flavor, nicotine strength) tuple; adding the same variant
// again increments the quantity instead of creating a new line.
type CartItem struct {
	ID               string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID          string `json:"owner_id" gorm:"index;type:varchar(64)"`
	ProductID        string `json:"product_id" gorm:"type:varchar(36)"`
	Quantity         int    `json:"quantity"`
	SelectedImage    string `json:"selected_image,omitempty"`
	Flavor           string `json:"flavor"`
	NicotineStrength int    `json:"nicotine_strength"`
	gorm.Model              // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
