package product

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// DefaultLowStockThreshold applies when a product is created without one.
const DefaultLowStockThreshold = 10

// CreateRequest represents a product creation request.
type CreateRequest struct {
	Name              string            `json:"name" binding:"required,min=1,max=200"`
	Description       string            `json:"description" binding:"required,max=2000"`
	SKU               string            `json:"sku" binding:"required,min=1,max=50"`
	Category          Category          `json:"category" binding:"required,oneof=electronics clothing books home_garden sports beauty automotive toys food_beverage health other"`
	Brand             *string           `json:"brand" binding:"omitempty,max=100"`
	Price             float64           `json:"price" binding:"required,gt=0"`
	ComparePrice      *float64          `json:"compare_price" binding:"omitempty,gt=0"`
	CostPrice         *float64          `json:"cost_price" binding:"omitempty,gt=0"`
	Status            *Status           `json:"status" binding:"omitempty,oneof=active inactive discontinued out_of_stock"`
	StockQuantity     int               `json:"stock_quantity" binding:"gte=0"`
	LowStockThreshold *int              `json:"low_stock_threshold" binding:"omitempty,gte=0"`
	Images            []Image           `json:"images" binding:"omitempty,dive"`
	Variants          []Variant         `json:"variants" binding:"omitempty,dive"`
	Specifications    map[string]string `json:"specifications"`
	Tags              []string          `json:"tags"`
	Weight            *float64          `json:"weight" binding:"omitempty,gte=0"`
	Dimensions        *Dimensions       `json:"dimensions"`
	MetaTitle         *string           `json:"meta_title" binding:"omitempty,max=60"`
	MetaDescription   *string           `json:"meta_description" binding:"omitempty,max=160"`
	IsFeatured        bool              `json:"is_featured"`
	IsTaxable         *bool             `json:"is_taxable"`
}

// UpdateRequest represents a partial product update. Nil fields are left
// unchanged.
type UpdateRequest struct {
	Name              *string            `json:"name" binding:"omitempty,min=1,max=200"`
	Description       *string            `json:"description" binding:"omitempty,max=2000"`
	Category          *Category          `json:"category" binding:"omitempty,oneof=electronics clothing books home_garden sports beauty automotive toys food_beverage health other"`
	Brand             *string            `json:"brand" binding:"omitempty,max=100"`
	Price             *float64           `json:"price" binding:"omitempty,gt=0"`
	ComparePrice      *float64           `json:"compare_price" binding:"omitempty,gt=0"`
	CostPrice         *float64           `json:"cost_price" binding:"omitempty,gt=0"`
	Status            *Status            `json:"status" binding:"omitempty,oneof=active inactive discontinued out_of_stock"`
	LowStockThreshold *int               `json:"low_stock_threshold" binding:"omitempty,gte=0"`
	Images            *[]Image           `json:"images" binding:"omitempty,dive"`
	Variants          *[]Variant         `json:"variants" binding:"omitempty,dive"`
	Specifications    *map[string]string `json:"specifications"`
	Tags              *[]string          `json:"tags"`
	Weight            *float64           `json:"weight" binding:"omitempty,gte=0"`
	Dimensions        *Dimensions        `json:"dimensions"`
	MetaTitle         *string            `json:"meta_title" binding:"omitempty,max=60"`
	MetaDescription   *string            `json:"meta_description" binding:"omitempty,max=160"`
	IsFeatured        *bool              `json:"is_featured"`
	IsTaxable         *bool              `json:"is_taxable"`
}

// Fields returns the document fields set by the request, keyed by their
// stored names. Stock is changed only through inventory updates.
func (r *UpdateRequest) Fields() bson.M {
	set := bson.M{}
	put := func(key string, isSet bool, v any) {
		if isSet {
			set[key] = v
		}
	}
	put("name", r.Name != nil, deref(r.Name))
	put("description", r.Description != nil, deref(r.Description))
	put("category", r.Category != nil, deref(r.Category))
	put("brand", r.Brand != nil, r.Brand)
	put("price", r.Price != nil, deref(r.Price))
	put("compare_price", r.ComparePrice != nil, r.ComparePrice)
	put("cost_price", r.CostPrice != nil, r.CostPrice)
	put("status", r.Status != nil, deref(r.Status))
	put("low_stock_threshold", r.LowStockThreshold != nil, deref(r.LowStockThreshold))
	put("images", r.Images != nil, deref(r.Images))
	put("variants", r.Variants != nil, deref(r.Variants))
	put("specifications", r.Specifications != nil, deref(r.Specifications))
	put("tags", r.Tags != nil, deref(r.Tags))
	put("weight", r.Weight != nil, r.Weight)
	put("dimensions", r.Dimensions != nil, r.Dimensions)
	put("meta_title", r.MetaTitle != nil, r.MetaTitle)
	put("meta_description", r.MetaDescription != nil, r.MetaDescription)
	put("is_featured", r.IsFeatured != nil, deref(r.IsFeatured))
	put("is_taxable", r.IsTaxable != nil, deref(r.IsTaxable))
	return set
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// ListFilter narrows a product listing.
type ListFilter struct {
	Category   *Category
	Status     *Status
	IsFeatured *bool
}

// SearchRequest represents the product search body.
type SearchRequest struct {
	Query      string    `json:"query"`
	Category   *Category `json:"category" binding:"omitempty,oneof=electronics clothing books home_garden sports beauty automotive toys food_beverage health other"`
	Brand      string    `json:"brand"`
	MinPrice   *float64  `json:"min_price" binding:"omitempty,gte=0"`
	MaxPrice   *float64  `json:"max_price" binding:"omitempty,gte=0"`
	Tags       []string  `json:"tags"`
	Status     *Status   `json:"status" binding:"omitempty,oneof=active inactive discontinued out_of_stock"`
	IsFeatured *bool     `json:"is_featured"`
	InStock    *bool     `json:"in_stock"`
	Page       int       `json:"page" binding:"omitempty,gte=1"`
	Limit      int       `json:"limit" binding:"omitempty,gte=1,lte=100"`
	SortBy     string    `json:"sort_by"`
	SortOrder  string    `json:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// BulkUpdateRequest applies the same update to several products.
type BulkUpdateRequest struct {
	ProductIDs []string      `json:"product_ids" binding:"required,min=1"`
	Updates    UpdateRequest `json:"updates"`
}

// BulkUpdateResponse reports how many products were touched.
type BulkUpdateResponse struct {
	MatchedCount  int64  `json:"matched_count"`
	ModifiedCount int64  `json:"modified_count"`
	Message       string `json:"message"`
}

// Inventory operations.
const (
	InventoryAdd      = "add"
	InventorySubtract = "subtract"
	InventorySet      = "set"
)

// InventoryRequest changes the stock of a product.
type InventoryRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"gte=0"`
	Operation string  `json:"operation" binding:"required,oneof=add subtract set"`
	Notes     *string `json:"notes"`
}

// InventoryResponse reports the result of a stock change.
type InventoryResponse struct {
	ProductID   string `json:"product_id"`
	SKU         string `json:"sku"`
	OldQuantity int    `json:"old_quantity"`
	NewQuantity int    `json:"new_quantity"`
	Operation   string `json:"operation"`
	Status      Status `json:"status"`
	Message     string `json:"message"`
}

// StatusRequest sets the product status from the query string.
type StatusRequest struct {
	Status Status `form:"status" binding:"required,oneof=active inactive discontinued out_of_stock"`
}

// FeatureRequest sets the featured flag from the query string.
type FeatureRequest struct {
	IsFeatured *bool `form:"is_featured" binding:"required"`
}

// Response represents a product in API responses.
type Response struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	SKU               string            `json:"sku"`
	Category          Category          `json:"category"`
	Brand             *string           `json:"brand"`
	Price             float64           `json:"price"`
	ComparePrice      *float64          `json:"compare_price"`
	CostPrice         *float64          `json:"cost_price"`
	Status            Status            `json:"status"`
	StockQuantity     int               `json:"stock_quantity"`
	LowStockThreshold int               `json:"low_stock_threshold"`
	TotalStock        int               `json:"total_stock"`
	Images            []Image           `json:"images"`
	Variants          []Variant         `json:"variants"`
	Specifications    map[string]string `json:"specifications"`
	Tags              []string          `json:"tags"`
	Weight            *float64          `json:"weight"`
	Dimensions        *Dimensions       `json:"dimensions"`
	MetaTitle         *string           `json:"meta_title"`
	MetaDescription   *string           `json:"meta_description"`
	IsFeatured        bool              `json:"is_featured"`
	IsTaxable         bool              `json:"is_taxable"`
	CreatedBy         string            `json:"created_by"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ListResponse is a page of products.
type ListResponse struct {
	Products   []*Response `json:"products"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Size       int         `json:"size"`
	Categories []Category  `json:"categories"`
}

// CountEntry is a grouped count.
type CountEntry struct {
	Value string `json:"value" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// Statistics summarises the catalogue.
type Statistics struct {
	TotalProducts    int64        `json:"total_products"`
	ActiveProducts   int64        `json:"active_products"`
	OutOfStock       int64        `json:"out_of_stock"`
	FeaturedProducts int64        `json:"featured_products"`
	LowStockProducts int64        `json:"low_stock_products"`
	InventoryValue   float64      `json:"inventory_value"`
	AveragePrice     float64      `json:"average_price"`
	ByCategory       []CountEntry `json:"by_category"`
	ByStatus         []CountEntry `json:"by_status"`
}
