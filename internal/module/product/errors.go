package product

import "errors"

// Module errors.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrDuplicateSKU      = errors.New("product with this sku already exists")
	ErrInvalidID         = errors.New("invalid product id")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidSortField  = errors.New("invalid sort field")
	ErrInvalidCategory   = errors.New("invalid product category")
	ErrInvalidStatus     = errors.New("invalid product status")
)
