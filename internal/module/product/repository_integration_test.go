//go:build integration

package product

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func startMongo(t *testing.T) *mongo.Database {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return client.Database("datalake_test")
}

func TestRepository_Integration(t *testing.T) {
	db := startMongo(t)
	repo := NewRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.EnsureIndexes(ctx))

	now := time.Now().UTC()
	p := &Product{
		Name: "Lamp", SKU: "LMP-1", Category: CategoryHomeGarden, Price: 20, Status: StatusActive,
		StockQuantity: 5, LowStockThreshold: 10, Tags: []string{"light"}, CreatedAt: now, UpdatedAt: now,
		Variants: []Variant{{Name: "Red", SKU: "LMP-1-R", StockQuantity: 2}},
	}
	require.NoError(t, repo.Create(ctx, p))
	require.False(t, p.ID.IsZero())

	t.Run("duplicate sku", func(t *testing.T) {
		dup := *p
		dup.ID = primitive.NilObjectID
		assert.ErrorIs(t, repo.Create(ctx, &dup), ErrDuplicateSKU)
	})

	t.Run("stock cannot go negative", func(t *testing.T) {
		_, err := repo.IncrementStock(ctx, p.ID, -6)
		assert.ErrorIs(t, err, ErrInsufficientStock)

		before, err := repo.IncrementStock(ctx, p.ID, -5)
		require.NoError(t, err)
		assert.Equal(t, 5, before.StockQuantity)

		got, err := repo.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.StockQuantity)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := repo.IncrementStock(ctx, primitive.NewObjectID(), -1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("in stock counts variants", func(t *testing.T) {
		inStock := true
		products, total, err := repo.Search(ctx, &SearchQuery{
			SearchRequest: &SearchRequest{InStock: &inStock, Query: "lamp"},
			SortField:     "created_at",
			Limit:         10,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, products, 1)
	})

	t.Run("update and statistics", func(t *testing.T) {
		matched, _, err := repo.Update(ctx, []primitive.ObjectID{p.ID}, bson.M{"is_featured": true})
		require.NoError(t, err)
		assert.Equal(t, int64(1), matched)

		stats, err := repo.Statistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.TotalProducts)
		assert.Equal(t, int64(1), stats.FeaturedProducts)
		assert.Equal(t, int64(1), stats.LowStockProducts)
		assert.Equal(t, []CountEntry{{Value: "home_garden", Count: 1}}, stats.ByCategory)
	})

	t.Run("distinct tags", func(t *testing.T) {
		tags, err := repo.Distinct(ctx, "tags")
		require.NoError(t, err)
		assert.Equal(t, []string{"light"}, tags)
	})
}
