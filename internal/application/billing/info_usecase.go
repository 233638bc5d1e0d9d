package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/itsystem/posapi-bridge/internal/domain"
)

// InfoUseCase proxy de consultas públicas de ebarimt con caché.
type InfoUseCase struct {
	dir   TaxpayerDirectory
	cache InfoCache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewInfoUseCase construye el caso de uso; cache nil desactiva la caché.
func NewInfoUseCase(dir TaxpayerDirectory, cache InfoCache, ttl time.Duration, log zerolog.Logger) *InfoUseCase {
	if cache == nil {
		cache = NoopInfoCache{}
	}
	return &InfoUseCase{dir: dir, cache: cache, ttl: ttl, log: log}
}

// TinByRegNo TIN a partir del número de registro (persona o empresa).
func (uc *InfoUseCase) TinByRegNo(ctx context.Context, regNo string) (json.RawMessage, error) {
	regNo = strings.TrimSpace(regNo)
	if regNo == "" {
		return nil, domain.NewValidationError("regNo is required")
	}
	return uc.cached(ctx, "tin-by-reg:"+regNo, func(ctx context.Context) (json.RawMessage, error) {
		return uc.dir.TinByRegNo(ctx, regNo)
	})
}

// TinInfo nombre y estado de IVA del contribuyente.
func (uc *InfoUseCase) TinInfo(ctx context.Context, tin string) (json.RawMessage, error) {
	tin = strings.TrimSpace(tin)
	if tin == "" {
		return nil, domain.NewValidationError("tin is required")
	}
	return uc.cached(ctx, "tin:"+tin, func(ctx context.Context) (json.RawMessage, error) {
		return uc.dir.TinInfo(ctx, tin)
	})
}

// Branches catálogo de distritos/sucursales (districtCode).
func (uc *InfoUseCase) Branches(ctx context.Context) (json.RawMessage, error) {
	return uc.cached(ctx, "branches", uc.dir.Branches)
}

// ProductTaxCodes catálogo de códigos de producto exentos (taxProductCode).
func (uc *InfoUseCase) ProductTaxCodes(ctx context.Context) (json.RawMessage, error) {
	return uc.cached(ctx, "product-tax-codes", uc.dir.ProductTaxCodes)
}

func (uc *InfoUseCase) cached(ctx context.Context, key string, load func(context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	key = "ebarimt:info:" + key
	if v, ok, err := uc.cache.Get(ctx, key); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("leer caché de info")
	} else if ok {
		return v, nil
	}

	v, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFiscalUnavailable, err)
	}
	if err := uc.cache.Set(ctx, key, v, uc.ttl); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("escribir caché de info")
	}
	return v, nil
}
