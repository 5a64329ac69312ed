package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the products collection.
const CollectionName = "products"

// Repository defines the interface for product data access.
type Repository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, id primitive.ObjectID) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	List(ctx context.Context, filter *ListFilter, skip, limit int) ([]*Product, int64, error)
	Search(ctx context.Context, q *SearchQuery) ([]*Product, int64, error)
	// Update sets fields on every product in ids.
	Update(ctx context.Context, ids []primitive.ObjectID, fields bson.M) (matched, modified int64, err error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// IncrementStock adds delta to stock_quantity and returns the document
	// as it was before the change. A negative delta never takes stock below
	// zero; ErrInsufficientStock is returned instead.
	IncrementStock(ctx context.Context, id primitive.ObjectID, delta int) (*Product, error)
	// SetStock overwrites stock_quantity and returns the previous document.
	SetStock(ctx context.Context, id primitive.ObjectID, qty int) (*Product, error)
	Statistics(ctx context.Context) (*Statistics, error)
	Distinct(ctx context.Context, field string) ([]string, error)
}

// SearchQuery is a validated search with resolved paging and sorting.
type SearchQuery struct {
	*SearchRequest
	SortField  string
	Descending bool
	Skip       int
	Limit      int
}

var sortFields = map[string]bool{
	"name":           true,
	"price":          true,
	"created_at":     true,
	"updated_at":     true,
	"stock_quantity": true,
	"category":       true,
	"brand":          true,
}

type repository struct {
	col *mongo.Collection
	now func() time.Time
}

// NewRepository creates a product repository backed by db.
func NewRepository(db *mongo.Database) Repository {
	return &repository{col: db.Collection(CollectionName), now: time.Now}
}

func (r *repository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "is_featured", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}
	return nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("insert product: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return nil
}

func (r *repository) findOne(ctx context.Context, filter bson.M) (*Product, error) {
	var p Product
	if err := r.col.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func (r *repository) Get(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *repository) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	return r.findOne(ctx, bson.M{"sku": sku})
}

func (r *repository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Product, int64, error) {
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	products := []*Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	return products, total, nil
}

func (r *repository) List(ctx context.Context, filter *ListFilter, skip, limit int) ([]*Product, int64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	return r.find(ctx, listFilter(filter), opts)
}

func (r *repository) Search(ctx context.Context, q *SearchQuery) ([]*Product, int64, error) {
	dir := 1
	if q.Descending {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: q.SortField, Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(int64(q.Skip)).
		SetLimit(int64(q.Limit))
	return r.find(ctx, searchFilter(q.SearchRequest), opts)
}

func (r *repository) Update(ctx context.Context, ids []primitive.ObjectID, fields bson.M) (int64, int64, error) {
	set := bson.M{"updated_at": r.now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	res, err := r.col.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$set": set})
	if err != nil {
		return 0, 0, fmt.Errorf("update products: %w", err)
	}
	return res.MatchedCount, res.ModifiedCount, nil
}

func (r *repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) IncrementStock(ctx context.Context, id primitive.ObjectID, delta int) (*Product, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["stock_quantity"] = bson.M{"$gte": -delta}
	}
	update := bson.M{
		"$inc": bson.M{"stock_quantity": delta},
		"$set": bson.M{"updated_at": r.now().UTC()},
	}

	before, err := r.findOneAndUpdate(ctx, filter, update)
	if errors.Is(err, ErrProductNotFound) && delta < 0 {
		// Distinguish a missing product from one without enough stock.
		if _, getErr := r.Get(ctx, id); getErr == nil {
			return nil, ErrInsufficientStock
		}
	}
	return before, err
}

func (r *repository) SetStock(ctx context.Context, id primitive.ObjectID, qty int) (*Product, error) {
	update := bson.M{"$set": bson.M{"stock_quantity": qty, "updated_at": r.now().UTC()}}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

func (r *repository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var p Product
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update stock: %w", err)
	}
	return &p, nil
}

func (r *repository) Statistics(ctx context.Context) (*Statistics, error) {
	countIf := func(cond bson.M) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{cond, 1, 0}}}
	}
	groupBy := func(field string) bson.A {
		return bson.A{
			bson.M{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
			bson.M{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
		}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"totals": bson.A{bson.M{"$group": bson.M{
				"_id":             nil,
				"total":           bson.M{"$sum": 1},
				"active":          countIf(bson.M{"$eq": bson.A{"$status", StatusActive}}),
				"out_of_stock":    countIf(bson.M{"$eq": bson.A{"$status", StatusOutOfStock}}),
				"featured":        countIf(bson.M{"$eq": bson.A{"$is_featured", true}}),
				"low_stock":       countIf(bson.M{"$lte": bson.A{"$stock_quantity", "$low_stock_threshold"}}),
				"inventory_value": bson.M{"$sum": bson.M{"$multiply": bson.A{"$price", "$stock_quantity"}}},
				"average_price":   bson.M{"$avg": "$price"},
			}}},
			"by_category": groupBy("category"),
			"by_status":   groupBy("status"),
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate product statistics: %w", err)
	}
	var rows []struct {
		Totals []struct {
			Total          int64   `bson:"total"`
			Active         int64   `bson:"active"`
			OutOfStock     int64   `bson:"out_of_stock"`
			Featured       int64   `bson:"featured"`
			LowStock       int64   `bson:"low_stock"`
			InventoryValue float64 `bson:"inventory_value"`
			AveragePrice   float64 `bson:"average_price"`
		} `bson:"totals"`
		ByCategory []CountEntry `bson:"by_category"`
		ByStatus   []CountEntry `bson:"by_status"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode product statistics: %w", err)
	}

	stats := &Statistics{ByCategory: []CountEntry{}, ByStatus: []CountEntry{}}
	if len(rows) == 0 {
		return stats, nil
	}
	if len(rows[0].Totals) > 0 {
		t := rows[0].Totals[0]
		stats.TotalProducts = t.Total
		stats.ActiveProducts = t.Active
		stats.OutOfStock = t.OutOfStock
		stats.FeaturedProducts = t.Featured
		stats.LowStockProducts = t.LowStock
		stats.InventoryValue = t.InventoryValue
		stats.AveragePrice = t.AveragePrice
	}
	if rows[0].ByCategory != nil {
		stats.ByCategory = rows[0].ByCategory
	}
	if rows[0].ByStatus != nil {
		stats.ByStatus = rows[0].ByStatus
	}
	return stats, nil
}

func (r *repository) Distinct(ctx context.Context, field string) ([]string, error) {
	values, err := r.col.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func listFilter(f *ListFilter) bson.M {
	filter := bson.M{}
	if f == nil {
		return filter
	}
	if f.Category != nil {
		filter["category"] = *f.Category
	}
	if f.Status != nil {
		filter["status"] = *f.Status
	}
	if f.IsFeatured != nil {
		filter["is_featured"] = *f.IsFeatured
	}
	return filter
}

// ciRegex matches s literally, ignoring case.
func ciRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// totalStockExpr sums product and variant stock.
var totalStockExpr = bson.M{"$add": bson.A{
	"$stock_quantity",
	bson.M{"$sum": bson.M{"$ifNull": bson.A{"$variants.stock_quantity", bson.A{}}}},
}}

func searchFilter(req *SearchRequest) bson.M {
	filter := bson.M{}
	if req == nil {
		return filter
	}

	if req.Query != "" {
		re := ciRegex(req.Query)
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
			bson.M{"brand": re},
			bson.M{"tags": re},
		}
	}
	if req.Category != nil {
		filter["category"] = *req.Category
	}
	if req.Brand != "" {
		filter["brand"] = ciRegex(req.Brand)
	}
	if req.MinPrice != nil || req.MaxPrice != nil {
		price := bson.M{}
		if req.MinPrice != nil {
			price["$gte"] = *req.MinPrice
		}
		if req.MaxPrice != nil {
			price["$lte"] = *req.MaxPrice
		}
		filter["price"] = price
	}
	if len(req.Tags) > 0 {
		filter["tags"] = bson.M{"$in": req.Tags}
	}
	if req.Status != nil {
		filter["status"] = *req.Status
	}
	if req.IsFeatured != nil {
		filter["is_featured"] = *req.IsFeatured
	}
	if req.InStock != nil {
		op := "$lte"
		if *req.InStock {
			op = "$gt"
		}
		filter["$expr"] = bson.M{op: bson.A{totalStockExpr, 0}}
	}
	return filter
}
