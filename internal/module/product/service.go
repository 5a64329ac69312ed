package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datalake/server/internal/shared/cache"
	"github.com/datalake/server/internal/shared/money"
	"github.com/datalake/server/internal/shared/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CacheTTL is how long a product read stays cached.
const CacheTTL = 5 * time.Minute

const cacheName = "product"

// MetricsRecorder receives inventory and cache counters.
type MetricsRecorder interface {
	RecordInventoryOperation(operation string)
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

type nopMetrics struct{}

func (nopMetrics) RecordInventoryOperation(string) {}
func (nopMetrics) RecordCacheHit(string)           {}
func (nopMetrics) RecordCacheMiss(string)          {}

// Service implements product operations.
type Service struct {
	repo    Repository
	cache   *cache.JSONCache
	metrics MetricsRecorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a product service. A nil cache disables read caching.
func NewService(repo Repository, c *cache.JSONCache, metrics MetricsRecorder, logger *zap.Logger) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		cache:   c,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// Create stores a new product.
func (s *Service) Create(ctx context.Context, req *CreateRequest, createdBy string) (*Product, error) {
	now := s.now().UTC()
	p := &Product{
		Name:              req.Name,
		Description:       req.Description,
		SKU:               req.SKU,
		Category:          req.Category,
		Brand:             req.Brand,
		Price:             money.Round(req.Price),
		ComparePrice:      req.ComparePrice,
		CostPrice:         req.CostPrice,
		Status:            StatusActive,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: DefaultLowStockThreshold,
		Images:            nonNil(req.Images),
		Variants:          nonNil(req.Variants),
		Specifications:    req.Specifications,
		Tags:              nonNil(req.Tags),
		Weight:            req.Weight,
		Dimensions:        req.Dimensions,
		MetaTitle:         req.MetaTitle,
		MetaDescription:   req.MetaDescription,
		IsFeatured:        req.IsFeatured,
		IsTaxable:         true,
		CreatedBy:         createdBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.LowStockThreshold != nil {
		p.LowStockThreshold = *req.LowStockThreshold
	}
	if req.IsTaxable != nil {
		p.IsTaxable = *req.IsTaxable
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("product created", zap.String("product_id", p.ID.Hex()), zap.String("sku", p.SKU))
	return p, nil
}

// Get returns a product by id, served from cache when possible.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var cached Product
	switch err := s.cache.Get(ctx, oid.Hex(), &cached); {
	case err == nil:
		s.metrics.RecordCacheHit(cacheName)
		return &cached, nil
	case !errors.Is(err, cache.ErrMiss):
		s.logger.Warn("product cache read failed", zap.String("product_id", id), zap.Error(err))
	}
	s.metrics.RecordCacheMiss(cacheName)

	p, err := s.repo.Get(ctx, oid)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, oid.Hex(), p); err != nil {
		s.logger.Warn("product cache write failed", zap.String("product_id", id), zap.Error(err))
	}
	return p, nil
}

// GetBySKU returns a product by sku.
func (s *Service) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	return s.repo.GetBySKU(ctx, sku)
}

func (s *Service) invalidate(ctx context.Context, ids ...primitive.ObjectID) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.Hex()
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.Strings("product_ids", keys), zap.Error(err))
	}
}

func toListResponse(products []*Product, total int64, page, size int) *ListResponse {
	out := make([]*Response, len(products))
	seen := map[Category]bool{}
	categories := []Category{}
	for i, p := range products {
		out[i] = p.ToResponse()
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return &ListResponse{Products: out, Total: total, Page: page, Size: size, Categories: categories}
}

func validateFilter(f *ListFilter) error {
	if f == nil {
		return nil
	}
	if f.Category != nil && !f.Category.IsValid() {
		return ErrInvalidCategory
	}
	if f.Status != nil && !f.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// List returns a page of products, newest first.
func (s *Service) List(ctx context.Context, filter *ListFilter, p *pagination.Pagination) (*ListResponse, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	products, total, err := s.repo.List(ctx, filter, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return toListResponse(products, total, p.Page(), p.Limit), nil
}

// Search runs a filtered, sorted product search.
func (s *Service) Search(ctx context.Context, req *SearchRequest) (*ListResponse, error) {
	sortField := req.SortBy
	if sortField == "" {
		sortField = "created_at"
	}
	if !sortFields[sortField] {
		return nil, ErrInvalidSortField
	}

	p := pagination.FromPage(req.Page, req.Limit, 20, 100)
	q := &SearchQuery{
		SearchRequest: req,
		SortField:     sortField,
		Descending:    req.SortOrder != "asc",
		Skip:          p.Offset(),
		Limit:         p.Limit,
	}
	products, total, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return toListResponse(products, total, p.Page(), p.Limit), nil
}

// Update applies a partial update and returns the stored product.
func (s *Service) Update(ctx context.Context, id string, req *UpdateRequest) (*Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.set(ctx, oid, req.Fields()); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, oid)
}

// set writes fields to one product and evicts it from the cache.
func (s *Service) set(ctx context.Context, oid primitive.ObjectID, fields bson.M) error {
	if len(fields) == 0 {
		_, err := s.repo.Get(ctx, oid)
		return err
	}
	matched, _, err := s.repo.Update(ctx, []primitive.ObjectID{oid}, fields)
	if err != nil {
		return err
	}
	s.invalidate(ctx, oid)
	if matched == 0 {
		return ErrProductNotFound
	}
	return nil
}

// UpdateStatus sets the product status.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Product, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return s.Update(ctx, id, &UpdateRequest{Status: &status})
}

// SetFeatured sets the featured flag.
func (s *Service) SetFeatured(ctx context.Context, id string, featured bool) (*Product, error) {
	return s.Update(ctx, id, &UpdateRequest{IsFeatured: &featured})
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, oid); err != nil {
		return err
	}
	s.invalidate(ctx, oid)
	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

// BulkUpdate applies the same changes to every listed product.
func (s *Service) BulkUpdate(ctx context.Context, req *BulkUpdateRequest) (*BulkUpdateResponse, error) {
	ids := make([]primitive.ObjectID, len(req.ProductIDs))
	for i, id := range req.ProductIDs {
		oid, err := parseID(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
		}
		ids[i] = oid
	}

	matched, modified, err := s.repo.Update(ctx, ids, req.Updates.Fields())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, ids...)

	return &BulkUpdateResponse{
		MatchedCount:  matched,
		ModifiedCount: modified,
		Message:       fmt.Sprintf("Updated %d out of %d products", modified, matched),
	}, nil
}

// UpdateInventory adds to, subtracts from or overwrites the stock of a
// product, moving it in and out of stock as needed.
func (s *Service) UpdateInventory(ctx context.Context, req *InventoryRequest) (*InventoryResponse, error) {
	oid, err := parseID(req.ProductID)
	if err != nil {
		return nil, err
	}

	var before *Product
	var newQty int
	switch req.Operation {
	case InventoryAdd:
		before, err = s.repo.IncrementStock(ctx, oid, req.Quantity)
		if err == nil {
			newQty = before.StockQuantity + req.Quantity
		}
	case InventorySubtract:
		before, err = s.repo.IncrementStock(ctx, oid, -req.Quantity)
		if err == nil {
			newQty = before.StockQuantity - req.Quantity
		}
	case InventorySet:
		before, err = s.repo.SetStock(ctx, oid, req.Quantity)
		newQty = req.Quantity
	default:
		return nil, fmt.Errorf("unknown inventory operation %q", req.Operation)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, oid)

	status := StatusAfterStockChange(before.Status, newQty)
	if status != before.Status {
		if err := s.set(ctx, oid, bson.M{"status": status}); err != nil {
			return nil, err
		}
	}

	s.metrics.RecordInventoryOperation(req.Operation)
	s.logger.Info("inventory updated",
		zap.String("product_id", req.ProductID),
		zap.String("operation", req.Operation),
		zap.Int("old_quantity", before.StockQuantity),
		zap.Int("new_quantity", newQty),
	)

	return &InventoryResponse{
		ProductID:   req.ProductID,
		SKU:         before.SKU,
		OldQuantity: before.StockQuantity,
		NewQuantity: newQty,
		Operation:   req.Operation,
		Status:      status,
		Message:     "Inventory updated successfully",
	}, nil
}

// Featured returns active featured products.
func (s *Service) Featured(ctx context.Context, limit int) ([]*Product, error) {
	featured, active := true, StatusActive
	products, _, err := s.repo.List(ctx, &ListFilter{IsFeatured: &featured, Status: &active}, 0, limit)
	return products, err
}

// ByCategory returns active products of one category.
func (s *Service) ByCategory(ctx context.Context, category Category, limit int) ([]*Product, error) {
	if !category.IsValid() {
		return nil, ErrInvalidCategory
	}
	active := StatusActive
	products, _, err := s.repo.List(ctx, &ListFilter{Category: &category, Status: &active}, 0, limit)
	return products, err
}

// Statistics summarises the catalogue.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	stats.InventoryValue = money.Round(stats.InventoryValue)
	stats.AveragePrice = money.Round(stats.AveragePrice)
	return stats, nil
}

// Brands lists the distinct brands in use.
func (s *Service) Brands(ctx context.Context) ([]string, error) {
	return s.repo.Distinct(ctx, "brand")
}

// Tags lists the distinct tags in use.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	return s.repo.Distinct(ctx, "tags")
}
