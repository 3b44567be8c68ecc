package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wecre8/oto/internal/domain/shared"
	"github.com/wecre8/oto/internal/infrastructure/persistence/models"
)

// GormSiteRepository reads storefront site rows
type GormSiteRepository struct {
	db *gorm.DB
}

// NewGormSiteRepository creates a new GormSiteRepository
func NewGormSiteRepository(db *gorm.DB) *GormSiteRepository {
	return &GormSiteRepository{db: db}
}

// FindDomain returns the domain of the site with the given ID
func (r *GormSiteRepository) FindDomain(ctx context.Context, id int64) (string, error) {
	var model models.SiteModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return model.Domain, nil
}
