package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the package reads so the host
// environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"WMVIEW_CONFIG", "WMVIEW_DATASET", "WMVIEW_DB", "WMVIEW_HISTORY",
		"WMVIEW_LOG_FILE", "WMVIEW_LOG_LEVEL", "WMVIEW_EVAL_CONCURRENCY",
		"WMVIEW_LLM_PROVIDER", "WMVIEW_ANTHROPIC_API_KEY", "WMVIEW_ANTHROPIC_MODEL",
		"WMVIEW_OPENAI_API_KEY", "WMVIEW_OPENAI_MODEL", "WMVIEW_OPENAI_BASE_URL",
		"WMVIEW_GEMINI_API_KEY", "WMVIEW_GEMINI_MODEL",
		"WMVIEW_OPENROUTER_API_KEY", "WMVIEW_OPENROUTER_MODEL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "data/samples.jsonl", cfg.Dataset)
	assert.True(t, cfg.History)
	assert.Equal(t, 4, cfg.Eval.Concurrency)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataset: https://example.com/samples.jsonl
history: false
log:
  level: debug
llm:
  provider: openai
  model: gpt-4.1-mini
eval:
  concurrency: 2
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/samples.jsonl", cfg.Dataset)
	assert.False(t, cfg.History)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 2, cfg.Eval.Concurrency)

	t.Setenv("WMVIEW_DATASET", "local.jsonl")
	t.Setenv("WMVIEW_HISTORY", "true")
	t.Setenv("WMVIEW_EVAL_CONCURRENCY", "8")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "local.jsonl", cfg.Dataset)
	assert.True(t, cfg.History)
	assert.Equal(t, 8, cfg.Eval.Concurrency)
}

func TestLoad_DefaultPathFromEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db: /tmp/x.db\n"), 0o644))
	t.Setenv("WMVIEW_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DB)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset: [unclosed\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.LLM.Provider = "gemini"
	cfg.LLM.APIKey = "k"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Eval.Concurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LLM.Timeout = "soon"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Dataset = " "
	assert.Error(t, cfg.Validate())
}

func TestLLMConfig_Layering(t *testing.T) {
	clearEnv(t)

	cfg := DefaultConfig()
	cfg.LLM = LLMConfig{Provider: "openai", Model: "gpt-4.1", APIKey: "file-key", BaseURL: "http://local", Timeout: "5s"}

	lc := cfg.LLMConfig()
	assert.Equal(t, "openai", lc.Provider)
	assert.Equal(t, "gpt-4.1", lc.OpenAI.Model)
	assert.Equal(t, "file-key", lc.OpenAI.APIKey)
	assert.Equal(t, "http://local", lc.OpenAI.BaseURL)
	assert.Equal(t, 5*time.Second, lc.Timeout)

	t.Setenv("WMVIEW_OPENAI_API_KEY", "env-key")
	lc = cfg.LLMConfig()
	assert.Equal(t, "env-key", lc.OpenAI.APIKey)
}

func TestLLMConfig_Discovery(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g")

	lc := DefaultConfig().LLMConfig()
	assert.Equal(t, "gemini", lc.Provider)
	assert.Equal(t, "g", lc.Gemini.APIKey)
	assert.NoError(t, lc.Validate())
}
