package scheduler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsystem/posapi-bridge/internal/application/dto"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/scheduler"
)

type fakeSender struct {
	calls int
	err   error
}

func (f *fakeSender) SendBills(context.Context) (*dto.SendDataResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &dto.SendDataResponse{Message: "ok"}, nil
}

type recorder struct{ runs []string }

func (r *recorder) TaskRun(task, outcome string) { r.runs = append(r.runs, task+"="+outcome) }

func TestSendDataHandler(t *testing.T) {
	sender := &fakeSender{}
	rec := &recorder{}
	h := scheduler.NewSendDataHandler(sender, rec, zerolog.Nop())

	require.NoError(t, h(context.Background(), asynq.NewTask(scheduler.TypeSendData, nil)))
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, []string{"posapi:send_data=success"}, rec.runs)

	sender.err = errors.New("sin conexión")
	err := h(context.Background(), asynq.NewTask(scheduler.TypeSendData, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, sender.err)
	assert.Equal(t, "posapi:send_data=error", rec.runs[1])
}

func TestNewMux_Enruta(t *testing.T) {
	sender := &fakeSender{}
	mux := scheduler.NewMux(sender, nil, zerolog.Nop())

	require.NoError(t, mux.ProcessTask(context.Background(), asynq.NewTask(scheduler.TypeSendData, nil)))
	assert.Equal(t, 1, sender.calls)

	assert.Error(t, mux.ProcessTask(context.Background(), asynq.NewTask("otro", nil)))
}
