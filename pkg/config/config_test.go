package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		t.Setenv("TEST_MAILSCOPE_KEY", "sk-secret")
		configContent := `
server:
  listen: ":9090"
  timeout: 45s

llm:
  endpoint: https://api.example.com/v1
  api_key: ${TEST_MAILSCOPE_KEY}
  model: big-model
  vision_model: vision-model
  breaker:
    max_failures: 3

enrichment:
  routes:
    "Custom Letter": cochrane_detailed

senders:
  - tag: Bloomberg
    patterns: ["bloomberg.com", "bloomberg.net"]
  - tag: Folha
    patterns: ["folha"]
    active: false

detection_rules:
  - tag: Itau_FOMC
    sender: itau
    subject_contains: ["fomc"]

sources:
  feeds:
    - url: https://johnhcochrane.substack.com/feed
      sender: John Cochrane <johnhcochrane@substack.com>
`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
		assert.Equal(t, "sk-secret", cfg.LLM.APIKey)
		assert.Equal(t, "vision-model", cfg.LLM.VisionModel)
		assert.Equal(t, 3, cfg.LLM.Breaker.MaxFailures)
		assert.Equal(t, "cochrane_detailed", cfg.Enrichment.Routes["Custom Letter"])

		require.Len(t, cfg.Senders, 2)
		assert.True(t, cfg.Senders[0].IsActive())
		assert.False(t, cfg.Senders[1].IsActive())

		require.Len(t, cfg.DetectionRules, 1)
		assert.Equal(t, "AND", cfg.DetectionRules[0].Logic)

		require.Len(t, cfg.Sources.Feeds, 1)
		assert.Equal(t, "John Cochrane <johnhcochrane@substack.com>", cfg.Sources.Feeds[0].Sender)
	})

	t.Run("defaults", func(t *testing.T) {
		configContent := `
llm:
  endpoint: https://api.example.com/v1
  api_key: key
  model: m1
`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Listen)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
		assert.Equal(t, "m1", cfg.LLM.VisionModel)
		assert.Equal(t, 100, cfg.Enrichment.MinContentLength)
		assert.InDelta(t, 5.0, cfg.Enrichment.ErrorScore, 0.001)
		assert.Equal(t, "gold_standard_enhanced", cfg.Enrichment.DefaultHandler)
		assert.Equal(t, "General", cfg.Enrichment.DefaultTag)
		assert.InDelta(t, 0.25, cfg.Digest.Threshold, 0.001)
		assert.Equal(t, 15, cfg.Digest.MinLinkText)
		assert.Equal(t, 3, cfg.Digest.MinLinkTextPT)
		assert.Equal(t, []string{"Estadão", "Folha", "O Globo"}, cfg.Digest.PortugueseTags)
		assert.Equal(t, 10*time.Second, cfg.Images.Timeout)
		assert.Equal(t, 1568, cfg.Images.MaxSize)
		assert.Equal(t, 5, cfg.Store.RetryAttempts)
		assert.Equal(t, time.Second, cfg.Store.RetryDelay)
		assert.Equal(t, "me", cfg.Sources.Gmail.User)
		assert.Equal(t, 30*time.Minute, cfg.Schedule.Interval)
	})

	t.Run("missing api key", func(t *testing.T) {
		configContent := `
llm:
  endpoint: https://api.example.com/v1
  api_key: ${TEST_MAILSCOPE_UNSET_KEY}
  model: m1
`
		cfg, err := Load(writeConfig(t, configContent))
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "llm.api_key is required")
	})

	t.Run("bad detection rule logic", func(t *testing.T) {
		configContent := `
llm: {endpoint: "http://x", api_key: k, model: m}
detection_rules:
  - tag: X
    sender: y
    logic: XOR
`
		_, err := Load(writeConfig(t, configContent))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logic must be AND or OR")
	})

	t.Run("gmail without credentials", func(t *testing.T) {
		configContent := `
llm: {endpoint: "http://x", api_key: k, model: m}
sources:
  gmail:
    enabled: true
`
		_, err := Load(writeConfig(t, configContent))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "credentials_file and token_file")
	})

	t.Run("file not found", func(t *testing.T) {
		cfg, err := Load("/non/existent/file.yml")
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configContent := `
invalid yaml content
  with bad indentation
    and no structure
`
		cfg, err := Load(writeConfig(t, configContent))
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestConfig_IsPortuguese(t *testing.T) {
	cfg := &Config{}
	cfg.Digest.PortugueseTags = []string{"Folha", "Estadão"}
	assert.True(t, cfg.IsPortuguese("Folha"))
	assert.True(t, cfg.IsPortuguese("Estadão"))
	assert.False(t, cfg.IsPortuguese("folha"))
	assert.False(t, cfg.IsPortuguese("WSJ"))
}

func TestConfig_GetServerConfig(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Listen = ":9090"
	cfg.Server.Timeout = 45 * time.Second

	listen, timeout := cfg.GetServerConfig()
	assert.Equal(t, ":9090", listen)
	assert.Equal(t, 45*time.Second, timeout)
}
