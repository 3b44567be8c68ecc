package models

import (
	"github.com/wecre8/oto/internal/domain/fulfillment"
)

// ProductModel is the persistence model for a catalog product
type ProductModel struct {
	ID     int64               `gorm:"primaryKey"`
	Name   string              `gorm:"type:varchar(250);not null"`
	Images []ProductImageModel `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *fulfillment.Product {
	images := make([]fulfillment.ProductImage, len(m.Images))
	for i := range m.Images {
		images[i] = m.Images[i].ToDomain()
	}
	return &fulfillment.Product{
		ID:     m.ID,
		Name:   m.Name,
		Images: images,
	}
}

// ProductImageModel is the persistence model for a product image. Image holds
// the media path relative to the site domain.
type ProductImageModel struct {
	ID        int64  `gorm:"primaryKey"`
	ProductID int64  `gorm:"not null;index"`
	Image     string `gorm:"type:varchar(255);not null"`
	SortOrder int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductImageModel) TableName() string {
	return "product_images"
}

// ToDomain converts the persistence model to a domain ProductImage
func (m *ProductImageModel) ToDomain() fulfillment.ProductImage {
	return fulfillment.ProductImage{
		ID:        m.ID,
		URL:       m.Image,
		SortOrder: m.SortOrder,
	}
}

// ProductVariantModel is the persistence model for a product variant
type ProductVariantModel struct {
	ID        int64         `gorm:"primaryKey"`
	SKU       string        `gorm:"type:varchar(255);uniqueIndex"`
	ProductID int64         `gorm:"not null;index"`
	Product   *ProductModel `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (ProductVariantModel) TableName() string {
	return "product_variants"
}

// ToDomain converts the persistence model to a domain ProductVariant
func (m *ProductVariantModel) ToDomain() *fulfillment.ProductVariant {
	v := &fulfillment.ProductVariant{
		ID:  m.ID,
		SKU: m.SKU,
	}
	if m.Product != nil {
		v.Product = m.Product.ToDomain()
	}
	return v
}
