package repository

import (
	"context"

	"github.com/itsystem/posapi-bridge/internal/domain/entity"
)

// PosSettingsRepository configuración de cabecera por contribuyente.
type PosSettingsRepository interface {
	GetLatest(ctx context.Context) (*entity.PosSettings, error)
	GetByMerchantTin(ctx context.Context, merchantTin string) (*entity.PosSettings, error)
	Upsert(ctx context.Context, s *entity.PosSettings) error
	Delete(ctx context.Context, merchantTin string) error
}
