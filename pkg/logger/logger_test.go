package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsystem/posapi-bridge/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("verbose"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
}

func TestComponentJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "info", Service: "posapi-bridge", Out: &buf})

	l.Debug().Msg("oculto")
	comp := l.Component("billing")
	comp.Info().Str("order_id", "ORD-1").Msg("recibo emitido")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "posapi-bridge", line["service"])
	assert.Equal(t, "billing", line["component"])
	assert.Equal(t, "ORD-1", line["order_id"])
	assert.Equal(t, "recibo emitido", line["message"])
}
