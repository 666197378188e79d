package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

// CatalogGormRepository lê o catálogo ativo usado no bootstrap da sessão.
type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

func (r *CatalogGormRepository) ListServices(
	ctx context.Context,
	studioID uint,
) ([]models.Service, error) {

	var services []models.Service
	if err := r.db.WithContext(ctx).
		Where("studio_id = ? AND active = ?", studioID, true).
		Order("category ASC, name ASC").
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *CatalogGormRepository) ListActivePaymentMethods(
	ctx context.Context,
	studioID uint,
) ([]models.PaymentMethod, error) {

	var methods []models.PaymentMethod
	if err := r.db.WithContext(ctx).
		Where("studio_id = ? AND active = ?", studioID, true).
		Order("id ASC").
		Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}
