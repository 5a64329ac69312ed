package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStatusAfterStockChange(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		qty     int
		want    Status
	}{
		{"active sold out", StatusActive, 0, StatusOutOfStock},
		{"restocked", StatusOutOfStock, 5, StatusActive},
		{"still out", StatusOutOfStock, 0, StatusOutOfStock},
		{"active with stock", StatusActive, 3, StatusActive},
		{"inactive sold out", StatusInactive, 0, StatusInactive},
		{"discontinued restocked", StatusDiscontinued, 9, StatusDiscontinued},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusAfterStockChange(tt.current, tt.qty))
		})
	}
}

func TestProduct_TotalStock(t *testing.T) {
	p := &Product{
		StockQuantity:     4,
		LowStockThreshold: 5,
		Variants:          []Variant{{StockQuantity: 2}, {StockQuantity: 3}},
	}
	assert.Equal(t, 9, p.TotalStock())
	assert.True(t, p.IsLowStock())
}

func TestProduct_ToResponse(t *testing.T) {
	id := primitive.NewObjectID()
	resp := (&Product{ID: id, Name: "Lamp", Category: CategoryHomeGarden, StockQuantity: 1}).ToResponse()

	assert.Equal(t, id.Hex(), resp.ID)
	assert.Equal(t, 1, resp.TotalStock)
	assert.NotNil(t, resp.Images)
	assert.NotNil(t, resp.Tags)
}

func TestCategory_IsValid(t *testing.T) {
	assert.True(t, CategoryFoodBeverage.IsValid())
	assert.False(t, Category("weapons").IsValid())
	assert.Len(t, AllCategories, 11)
}

func TestUpdateRequest_Fields(t *testing.T) {
	name := "Desk Lamp"
	featured := false
	tags := []string{"light"}
	req := &UpdateRequest{Name: &name, IsFeatured: &featured, Tags: &tags}

	fields := req.Fields()

	assert.Len(t, fields, 3)
	assert.Equal(t, "Desk Lamp", fields["name"])
	assert.Equal(t, false, fields["is_featured"])
	assert.Equal(t, []string{"light"}, fields["tags"])
	assert.Empty(t, (&UpdateRequest{}).Fields())
}
