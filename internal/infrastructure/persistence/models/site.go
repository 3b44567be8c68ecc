package models

// SiteModel is the persistence model for a storefront site
type SiteModel struct {
	ID     int64  `gorm:"primaryKey"`
	Domain string `gorm:"type:varchar(100);not null"`
	Name   string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (SiteModel) TableName() string {
	return "sites"
}

// AllModels returns every model owned by this service, in migration order
func AllModels() []any {
	return []any{
		&SiteModel{},
		&AddressModel{},
		&UserModel{},
		&ProductModel{},
		&ProductImageModel{},
		&ProductVariantModel{},
		&OrderModel{},
		&OrderLineModel{},
		&PaymentModel{},
		&FulfillmentModel{},
	}
}
