package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/config"
	"github.com/daniil11ru/qrtrack/cli/tracker/source"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogging(t *testing.T) {
	t.Cleanup(func() {
		log.StandardLogger().ReplaceHooks(make(log.LevelHooks))
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})
}

func TestLogFileCreationAndContent(t *testing.T) {
	resetLogging(t)

	logPath := filepath.Join(t.TempDir(), "nested", "logs", "tracker.log")
	configureLogging(config.Settings{LogLevel: "DEBUG", LogFilePath: logPath, LogMaxAgeDays: 7})
	log.SetOutput(io.Discard)

	assert.Equal(t, log.DebugLevel, log.GetLevel())

	message := "UNIQUE_TEST_MESSAGE_" + time.Now().Format(time.RFC3339Nano)
	log.Info(message)

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), message)
}

func TestFileHookRotationSettings(t *testing.T) {
	hook := newFileHook(config.Settings{LogFilePath: filepath.Join(t.TempDir(), "tracker.log"), LogMaxAgeDays: 30})
	assert.ElementsMatch(t, log.AllLevels, hook.Levels())
}

func TestGetConfig(t *testing.T) {
	_, err := getConfig("")
	assert.Error(t, err)

	_, err = getConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMemorySource(t *testing.T) {
	primary, err := newPrimarySource(config.Settings{Source: config.SourceMemory})
	require.NoError(t, err)
	assert.IsType(t, &source.Memory{}, primary)
	assert.NoError(t, primary.Close())
}
