package models

import "time"

// Category is a sub-classification under a MainCategory. Its effective type
// and weekly limit are always resolved through the owning MainCategory.
type Category struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"size:50;not null" json:"name"`
	MainCategoryID uint   `gorm:"index;not null" json:"main_category_id"`

	MainCategory MainCategory `json:"main_category"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Type returns the category type resolved through the main category.
// The MainCategory relation must be loaded.
func (c *Category) Type() int {
	return c.MainCategory.CategoryType
}

// MainCategoryName returns the owning main category's name.
func (c *Category) MainCategoryName() string {
	return c.MainCategory.Name
}
