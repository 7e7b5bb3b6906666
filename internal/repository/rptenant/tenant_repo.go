package rptenant

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/tenant"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/entity"
)

// TenantRepository looks up supermarkets.
type TenantRepository interface {
	Get(ctx context.Context, tenantID string) (tenant.Tenant, error)
}

// TenantRepositoryImpl is the MySQL TenantRepository.
type TenantRepositoryImpl struct {
	db *gorm.DB
}

// NewTenantRepository creates a TenantRepository on db.
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &TenantRepositoryImpl{db: db}
}

// Get returns the tenant or tenant.ErrTenantNotFound.
func (r *TenantRepositoryImpl) Get(ctx context.Context, tenantID string) (tenant.Tenant, error) {
	var po entity.Supermarket
	err := r.db.WithContext(ctx).Where("id = ?", tenantID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tenant.Tenant{}, fmt.Errorf("%w: %s", tenant.ErrTenantNotFound, tenantID)
		}
		return tenant.Tenant{}, fmt.Errorf("get tenant %s: %w", tenantID, err)
	}
	return toDomainModel(&po), nil
}

func toDomainModel(po *entity.Supermarket) tenant.Tenant {
	return tenant.Tenant{
		ID:                po.ID,
		Name:              po.Name,
		NotificationToken: po.WhatsappToken,
	}
}
