package domain

// Category groups listings by item kind.
type Category struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	SortOrder int    `gorm:"not null;default:0" json:"sortOrder"`
}

func (Category) TableName() string { return "categories" }

// DefaultCategories seeds an empty categories table.
func DefaultCategories() []Category {
	names := []string{
		"Furniture", "Clothing", "DIY Recipes", "Materials",
		"Flowers & Plants", "Villager Items", "Bells & Miles", "Other",
	}
	out := make([]Category, len(names))
	for i, n := range names {
		out[i] = Category{Name: n, SortOrder: i + 1}
	}
	return out
}

// CategoryListResponse wraps the category list.
type CategoryListResponse struct {
	Categories []Category `json:"categories"`
}
