package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audioai/internal/normalize"
	"audioai/pkg/log"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  mode: debug
  port: "8000"
model:
  endpoint: http://sidecar:9000
  timeout: 15s
normalize:
  score_unit: percent
  score_precision: 0
audio:
  check_url_extension: true
  allowed_extensions: [wav]
`)
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "http://sidecar:9000", cfg.Model.Endpoint)
	assert.Equal(t, 15*time.Second, cfg.Model.Timeout)
	assert.Equal(t, "cuda:0", cfg.Model.Device)

	opts, err := cfg.NormalizeOptions()
	require.NoError(t, err)
	assert.Equal(t, normalize.UnitPercent, opts.Unit)
	assert.Equal(t, 0, opts.Precision)

	policy := cfg.AudioPolicy()
	assert.True(t, policy.CheckURLExtension)
	assert.Equal(t, []string{"wav"}, policy.AllowedExtensions)
}

func TestLoadRequiresPort(t *testing.T) {
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	_, err := Load("")
	assert.ErrorContains(t, err, "port is not set")

	t.Setenv("PORT", "eighty")
	_, err = Load("")
	assert.ErrorContains(t, err, "invalid server port")

	t.Setenv("PORT", "8080")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestValidateRejectsBadNormalizeOptions(t *testing.T) {
	t.Setenv("PORT", "8080")

	path := writeConfig(t, "normalize:\n  tag_table: mixed\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "normalize.tag_table")

	path = writeConfig(t, "normalize:\n  score_unit: permille\n")
	_, err = Load(path)
	assert.ErrorContains(t, err, "normalize.score_unit")

	path = writeConfig(t, "normalize:\n  prob_table: any\n")
	_, err = Load(path)
	assert.ErrorContains(t, err, "normalize.prob_table")
}

func TestValidateScorePrecisionRange(t *testing.T) {
	for _, tt := range []struct {
		precision int
		ok        bool
	}{
		{precision: -2},
		{precision: -1, ok: true},
		{precision: 0, ok: true},
		{precision: 15, ok: true},
		{precision: 16},
		{precision: 400},
	} {
		cfg := Default()
		cfg.Server.Port = "8080"
		cfg.Normalize.ScorePrecision = tt.precision
		err := cfg.Validate()
		if tt.ok {
			assert.NoError(t, err, "precision %d", tt.precision)
		} else {
			assert.ErrorContains(t, err, "normalize.score_precision", "precision %d", tt.precision)
		}
	}
}

func TestNormalizeOptionsITNTerminator(t *testing.T) {
	cfg := Default()
	cfg.Inference.UseITN = true
	opts, err := cfg.NormalizeOptions()
	require.NoError(t, err)
	assert.Equal(t, normalize.TerminatorITN, opts.Terminator)

	inf := cfg.InferenceOptions()
	assert.True(t, inf.UseITN)
	assert.Equal(t, "auto", inf.Language)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("AUDIOAI_TEST_DOTENV=yes\n"), 0o600))
	t.Setenv("AUDIOAI_TEST_DOTENV", "")
	os.Unsetenv("AUDIOAI_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(envPath, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "yes", os.Getenv("AUDIOAI_TEST_DOTENV"))
}

func TestManagerReloadsOnWrite(t *testing.T) {
	t.Setenv("PORT", "8080")
	path := writeConfig(t, "normalize:\n  score_unit: fraction\n")

	m, err := NewManager(path, log.Nop())
	require.NoError(t, err)
	assert.Equal(t, "fraction", m.Get().Normalize.ScoreUnit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("normalize:\n  score_unit: percent\n"), 0o600))
	assert.Eventually(t, func() bool {
		return m.Get().Normalize.ScoreUnit == "percent"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestManagerKeepsPreviousOnBadReload(t *testing.T) {
	t.Setenv("PORT", "8080")
	path := writeConfig(t, "normalize:\n  score_unit: percent\n")

	m, err := NewManager(path, log.Nop())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("normalize:\n  score_unit: nope\n"), 0o600))
	assert.Error(t, m.Reload())
	assert.Equal(t, "percent", m.Get().Normalize.ScoreUnit)
}
