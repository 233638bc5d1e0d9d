package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/itsystem/posapi-bridge/internal/application/dto"
	"github.com/itsystem/posapi-bridge/internal/domain"
)

// PosAPIUseCase operaciones de mantenimiento del POS API: envío de pendientes e información.
// Lo usan el handler HTTP y la tarea periódica del worker.
type PosAPIUseCase struct {
	client FiscalClient
	log    zerolog.Logger
}

// NewPosAPIUseCase construye el caso de uso.
func NewPosAPIUseCase(client FiscalClient, log zerolog.Logger) *PosAPIUseCase {
	return &PosAPIUseCase{client: client, log: log}
}

// SendBills envía al servidor central los documentos que el POS API tiene pendientes.
func (uc *PosAPIUseCase) SendBills(ctx context.Context) (*dto.SendDataResponse, error) {
	res, err := uc.client.SendData(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFiscalUnavailable, err)
	}
	if !res.Success {
		uc.log.Warn().Str("message", res.Message).Msg("sendData rechazado")
		return nil, fmt.Errorf("%w: %s", domain.ErrFiscalRejected, res.Message)
	}
	uc.log.Info().Msg("documentos pendientes enviados")
	out := &dto.SendDataResponse{Message: res.Message}
	if len(res.Raw) > 0 {
		out.Data = res.Raw
	}
	return out, nil
}

// Info información del POS API local (operador, último envío, pendientes).
func (uc *PosAPIUseCase) Info(ctx context.Context) (json.RawMessage, error) {
	raw, err := uc.client.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFiscalUnavailable, err)
	}
	return raw, nil
}
