package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wecre8/oto/internal/domain/fulfillment"
	"github.com/wecre8/oto/internal/domain/shared"
	"github.com/wecre8/oto/internal/infrastructure/persistence/models"
)

// GormFulfillmentRepository implements fulfillment.Repository using GORM
type GormFulfillmentRepository struct {
	db *gorm.DB
}

// NewGormFulfillmentRepository creates a new GormFulfillmentRepository
func NewGormFulfillmentRepository(db *gorm.DB) *GormFulfillmentRepository {
	return &GormFulfillmentRepository{db: db}
}

// FindFulfillment loads a fulfillment with the order graph needed to build
// OTO payloads. Order lines are returned in insertion (id) order.
func (r *GormFulfillmentRepository) FindFulfillment(ctx context.Context, id int64) (*fulfillment.Fulfillment, error) {
	var model models.FulfillmentModel
	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.User.DefaultBillingAddress").
		Preload("Order.ShippingAddress").
		Preload("Order.Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_lines.id ASC")
		}).
		Preload("Order.Lines.Variant.Product.Images").
		Preload("Order.Payments").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormFulfillmentRepository implements fulfillment.Repository
var _ fulfillment.Repository = (*GormFulfillmentRepository)(nil)
