package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/itsystem/posapi-bridge/internal/domain"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	"github.com/itsystem/posapi-bridge/internal/domain/repository"
)

var _ repository.PosSettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo configuración POS por contribuyente en pos_api_settings.
type SettingsRepo struct {
	q Querier
}

// NewSettingsRepository construye el adaptador.
func NewSettingsRepository(q Querier) *SettingsRepo {
	return &SettingsRepo{q: q}
}

const settingsColumns = `merchant_tin, pos_no, district_code, branch_no, bill_id_suffix, updated_at`

func (r *SettingsRepo) GetLatest(ctx context.Context) (*entity.PosSettings, error) {
	return r.one(ctx, `SELECT `+settingsColumns+` FROM pos_api_settings ORDER BY updated_at DESC LIMIT 1`)
}

func (r *SettingsRepo) GetByMerchantTin(ctx context.Context, merchantTin string) (*entity.PosSettings, error) {
	return r.one(ctx, `SELECT `+settingsColumns+` FROM pos_api_settings WHERE merchant_tin = $1`, merchantTin)
}

func (r *SettingsRepo) Upsert(ctx context.Context, s *entity.PosSettings) error {
	query := `
		INSERT INTO pos_api_settings (merchant_tin, pos_no, district_code, branch_no, bill_id_suffix, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (merchant_tin) DO UPDATE SET
			pos_no         = EXCLUDED.pos_no,
			district_code  = EXCLUDED.district_code,
			branch_no      = EXCLUDED.branch_no,
			bill_id_suffix = EXCLUDED.bill_id_suffix,
			updated_at     = now()
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query, s.MerchantTin, s.PosNo, s.DistrictCode, s.BranchNo, s.BillIDSuffix).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert pos settings: %w", err)
	}
	return nil
}

func (r *SettingsRepo) Delete(ctx context.Context, merchantTin string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM pos_api_settings WHERE merchant_tin = $1`, merchantTin)
	if err != nil {
		return fmt.Errorf("delete pos settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SettingsRepo) one(ctx context.Context, query string, args ...any) (*entity.PosSettings, error) {
	var s entity.PosSettings
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&s.MerchantTin, &s.PosNo, &s.DistrictCode, &s.BranchNo, &s.BillIDSuffix, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pos settings: %w", err)
	}
	return &s, nil
}
