package logger_test

import (
	"bytes"
	"testing"

	"github.com/jrsteele09/credibuy-console/internal/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, logger.ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, logger.ParseLevel(" warning "))
	require.Equal(t, zerolog.InfoLevel, logger.ParseLevel("nonsense"))
}

func TestInit_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(logger.Options{Level: "debug", Output: &buf})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log.Debug().Str("component", "test").Msg("hello")
	require.Contains(t, buf.String(), `"component":"test"`)
	require.Contains(t, buf.String(), `"message":"hello"`)
}
