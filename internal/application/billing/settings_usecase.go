package billing

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/itsystem/posapi-bridge/internal/application/dto"
	"github.com/itsystem/posapi-bridge/internal/domain"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	"github.com/itsystem/posapi-bridge/internal/domain/repository"
	pkgebarimt "github.com/itsystem/posapi-bridge/pkg/ebarimt"
)

// SettingsUseCase CRUD de la configuración POS por contribuyente.
type SettingsUseCase struct {
	repo     repository.PosSettingsRepository
	validate *validator.Validate
}

// NewSettingsUseCase construye el caso de uso.
func NewSettingsUseCase(repo repository.PosSettingsRepository) *SettingsUseCase {
	return &SettingsUseCase{repo: repo, validate: NewValidator()}
}

// Get devuelve la configuración del contribuyente o la más reciente si merchantTin está vacío.
func (uc *SettingsUseCase) Get(ctx context.Context, merchantTin string) (*dto.PosSettingsResponse, error) {
	var (
		s   *entity.PosSettings
		err error
	)
	if merchantTin == "" {
		s, err = uc.repo.GetLatest(ctx)
	} else {
		s, err = uc.repo.GetByMerchantTin(ctx, merchantTin)
	}
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return toSettingsResponse(s), nil
}

// Save crea o actualiza la configuración; billIdSuffix por defecto "01".
func (uc *SettingsUseCase) Save(ctx context.Context, req dto.PosSettingsRequest) (*dto.PosSettingsResponse, error) {
	req.MerchantTin = strings.TrimSpace(req.MerchantTin)
	req.PosNo = strings.TrimSpace(req.PosNo)
	if err := ValidateStruct(uc.validate, req); err != nil {
		return nil, err
	}
	s := &entity.PosSettings{
		MerchantTin:  req.MerchantTin,
		PosNo:        req.PosNo,
		DistrictCode: req.DistrictCode,
		BranchNo:     req.BranchNo,
		BillIDSuffix: req.BillIDSuffix,
	}
	if s.BillIDSuffix == "" {
		s.BillIDSuffix = pkgebarimt.DefaultBillIDSuffix
	}
	if err := uc.repo.Upsert(ctx, s); err != nil {
		return nil, err
	}
	return toSettingsResponse(s), nil
}

// Delete elimina la configuración del contribuyente.
func (uc *SettingsUseCase) Delete(ctx context.Context, merchantTin string) error {
	if merchantTin == "" {
		return domain.NewValidationError("merchantTin is required")
	}
	return uc.repo.Delete(ctx, merchantTin)
}

func toSettingsResponse(s *entity.PosSettings) *dto.PosSettingsResponse {
	return &dto.PosSettingsResponse{
		MerchantTin:  s.MerchantTin,
		PosNo:        s.PosNo,
		DistrictCode: s.DistrictCode,
		BranchNo:     s.BranchNo,
		BillIDSuffix: s.BillIDSuffix,
		UpdatedAt:    s.UpdatedAt,
	}
}
