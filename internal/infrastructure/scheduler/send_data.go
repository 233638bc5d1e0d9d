// Package scheduler tareas periódicas del worker sobre asynq.
package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/itsystem/posapi-bridge/internal/application/dto"
)

// TypeSendData envío periódico de documentos pendientes al servidor central.
const TypeSendData = "posapi:send_data"

// DataSender lo implementa billing.PosAPIUseCase.
type DataSender interface {
	SendBills(ctx context.Context) (*dto.SendDataResponse, error)
}

// TaskRecorder lo implementa metrics.Metrics.
type TaskRecorder interface {
	TaskRun(task, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) TaskRun(string, string) {}

// NewSendDataHandler handler asynq que dispara sendData en el POS API.
func NewSendDataHandler(sender DataSender, rec TaskRecorder, log zerolog.Logger) asynq.HandlerFunc {
	if rec == nil {
		rec = noopRecorder{}
	}
	return func(ctx context.Context, _ *asynq.Task) error {
		res, err := sender.SendBills(ctx)
		if err != nil {
			rec.TaskRun(TypeSendData, "error")
			log.Error().Err(err).Str("task", TypeSendData).Msg("envío de pendientes falló")
			return fmt.Errorf("send data: %w", err)
		}
		rec.TaskRun(TypeSendData, "success")
		log.Info().Str("task", TypeSendData).Str("message", res.Message).Msg("pendientes enviados")
		return nil
	}
}

// NewMux registra los handlers del worker.
func NewMux(sender DataSender, rec TaskRecorder, log zerolog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeSendData, NewSendDataHandler(sender, rec, log))
	return mux
}

// RegisterPeriodic programa sendData con una expresión cron o "@every <duración>".
// Un spec vacío desactiva la tarea.
func RegisterPeriodic(s *asynq.Scheduler, spec string) (string, error) {
	if spec == "" {
		return "", nil
	}
	id, err := s.Register(spec, asynq.NewTask(TypeSendData, nil), asynq.MaxRetry(0))
	if err != nil {
		return "", fmt.Errorf("registrar %s (%q): %w", TypeSendData, spec, err)
	}
	return id, nil
}
