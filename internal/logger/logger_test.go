package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sai-review-api/internal/config"
)

func TestBuildWritesToConsoleAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.log")
	var console bytes.Buffer

	log, closer := build(config.Config{
		AppName:      "SAI Review API",
		AppEnv:       "test",
		LogLevel:     "debug",
		LogFile:      path,
		LogMaxSizeMB: 1,
	}, &console)

	log.Debug().Str("submission_id", "sub-1").Msg("submission transitioned")
	require.NoError(t, closer.Close())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(console.Bytes(), &entry))
	require.Equal(t, "submission transitioned", entry["message"])
	require.Equal(t, "sub-1", entry["submission_id"])
	require.Equal(t, "test", entry["env"])

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "submission transitioned")
}

func TestBuildFallsBackToInfo(t *testing.T) {
	var console bytes.Buffer
	log, closer := build(config.Config{LogLevel: "loud"}, &console)
	defer closer.Close()

	log.Debug().Msg("hidden")
	require.Zero(t, console.Len())

	log.Info().Msg("shown")
	require.Contains(t, console.String(), "shown")
}
