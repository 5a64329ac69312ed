package product

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is the merchandising category of a product.
type Category string

const (
	CategoryElectronics  Category = "electronics"
	CategoryClothing     Category = "clothing"
	CategoryBooks        Category = "books"
	CategoryHomeGarden   Category = "home_garden"
	CategorySports       Category = "sports"
	CategoryBeauty       Category = "beauty"
	CategoryAutomotive   Category = "automotive"
	CategoryToys         Category = "toys"
	CategoryFoodBeverage Category = "food_beverage"
	CategoryHealth       Category = "health"
	CategoryOther        Category = "other"
)

// AllCategories lists every category in display order.
var AllCategories = []Category{
	CategoryElectronics, CategoryClothing, CategoryBooks, CategoryHomeGarden,
	CategorySports, CategoryBeauty, CategoryAutomotive, CategoryToys,
	CategoryFoodBeverage, CategoryHealth, CategoryOther,
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	for _, v := range AllCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Status is the sale status of a product.
type Status string

const (
	StatusActive       Status = "active"
	StatusInactive     Status = "inactive"
	StatusDiscontinued Status = "discontinued"
	StatusOutOfStock   Status = "out_of_stock"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDiscontinued, StatusOutOfStock:
		return true
	}
	return false
}

// StatusAfterStockChange returns the status a product should have once its
// stock is qty. Only active and out_of_stock products flip automatically.
func StatusAfterStockChange(current Status, qty int) Status {
	switch {
	case qty <= 0 && current == StatusActive:
		return StatusOutOfStock
	case qty > 0 && current == StatusOutOfStock:
		return StatusActive
	default:
		return current
	}
}

// Image is a product picture.
type Image struct {
	URL       string  `bson:"url" json:"url" binding:"required,url"`
	AltText   *string `bson:"alt_text,omitempty" json:"alt_text"`
	IsPrimary bool    `bson:"is_primary" json:"is_primary"`
}

// Variant is a purchasable variation with its own stock.
type Variant struct {
	Name          string            `bson:"name" json:"name" binding:"required"`
	SKU           string            `bson:"sku" json:"sku" binding:"required"`
	Price         *float64          `bson:"price,omitempty" json:"price" binding:"omitempty,gt=0"`
	StockQuantity int               `bson:"stock_quantity" json:"stock_quantity" binding:"gte=0"`
	Attributes    map[string]string `bson:"attributes,omitempty" json:"attributes"`
}

// Dimensions are the package dimensions in centimetres.
type Dimensions struct {
	Length float64 `bson:"length" json:"length" binding:"gte=0"`
	Width  float64 `bson:"width" json:"width" binding:"gte=0"`
	Height float64 `bson:"height" json:"height" binding:"gte=0"`
}

// Product is stored in the products collection.
type Product struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Name              string             `bson:"name"`
	Description       string             `bson:"description"`
	SKU               string             `bson:"sku"`
	Category          Category           `bson:"category"`
	Brand             *string            `bson:"brand,omitempty"`
	Price             float64            `bson:"price"`
	ComparePrice      *float64           `bson:"compare_price,omitempty"`
	CostPrice         *float64           `bson:"cost_price,omitempty"`
	Status            Status             `bson:"status"`
	StockQuantity     int                `bson:"stock_quantity"`
	LowStockThreshold int                `bson:"low_stock_threshold"`
	Images            []Image            `bson:"images"`
	Variants          []Variant          `bson:"variants"`
	Specifications    map[string]string  `bson:"specifications,omitempty"`
	Tags              []string           `bson:"tags"`
	Weight            *float64           `bson:"weight,omitempty"`
	Dimensions        *Dimensions        `bson:"dimensions,omitempty"`
	MetaTitle         *string            `bson:"meta_title,omitempty"`
	MetaDescription   *string            `bson:"meta_description,omitempty"`
	IsFeatured        bool               `bson:"is_featured"`
	IsTaxable         bool               `bson:"is_taxable"`
	CreatedBy         string             `bson:"created_by"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

// TotalStock is the product stock plus the stock of every variant.
func (p *Product) TotalStock() int {
	total := p.StockQuantity
	for _, v := range p.Variants {
		total += v.StockQuantity
	}
	return total
}

// IsLowStock reports whether stock is at or below the threshold.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}

// ToResponse converts the document to its API representation.
func (p *Product) ToResponse() *Response {
	return &Response{
		ID:                p.ID.Hex(),
		Name:              p.Name,
		Description:       p.Description,
		SKU:               p.SKU,
		Category:          p.Category,
		Brand:             p.Brand,
		Price:             p.Price,
		ComparePrice:      p.ComparePrice,
		CostPrice:         p.CostPrice,
		Status:            p.Status,
		StockQuantity:     p.StockQuantity,
		LowStockThreshold: p.LowStockThreshold,
		TotalStock:        p.TotalStock(),
		Images:            nonNil(p.Images),
		Variants:          nonNil(p.Variants),
		Specifications:    p.Specifications,
		Tags:              nonNil(p.Tags),
		Weight:            p.Weight,
		Dimensions:        p.Dimensions,
		MetaTitle:         p.MetaTitle,
		MetaDescription:   p.MetaDescription,
		IsFeatured:        p.IsFeatured,
		IsTaxable:         p.IsTaxable,
		CreatedBy:         p.CreatedBy,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
