package reveal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.35, cfg.Hero.Threshold)
	assert.Equal(t, 0.3, cfg.Skills.Threshold)
	assert.Equal(t, 1200*time.Millisecond, cfg.Skills.Duration)
	assert.Equal(t, 80*time.Millisecond, cfg.Skills.Stagger)
	assert.Equal(t, 260*time.Millisecond, cfg.Certificates.Stagger)
	assert.Equal(t, 800*time.Millisecond, cfg.Education.CardDelay)
	assert.Equal(t, 60*time.Millisecond, cfg.Hero.TypingInterval)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sequence.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("overrides keep other defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfig(writeConfig(t, "education:\n  card_delay: 200ms\nskills:\n  stagger: 100ms\n"))
		require.NoError(t, err)
		assert.Equal(t, 200*time.Millisecond, cfg.Education.CardDelay)
		assert.Equal(t, 100*time.Millisecond, cfg.Skills.Stagger)
		assert.Equal(t, 1200*time.Millisecond, cfg.Skills.Duration)
		assert.Equal(t, "education", cfg.Education.ID)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("invalid threshold", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(writeConfig(t, "hero:\n  threshold: 1.5\n"))
		require.ErrorIs(t, err, ErrInvalidThreshold)
	})

	t.Run("negative delay", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(writeConfig(t, "certificates:\n  stagger: -1s\n"))
		require.ErrorIs(t, err, ErrInvalidDelay)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(writeConfig(t, "hero: [\n"))
		require.Error(t, err)
	})
}

func TestManifest(t *testing.T) {
	t.Parallel()

	m := DefaultConfig().Manifest()
	require.Len(t, m, 4)
	assert.Equal(t, "skills", m[1].ID)
	assert.Equal(t, int64(80), m[1].DelaysMs["stagger"])
	assert.Equal(t, int64(800), m[3].DelaysMs["card"])
}

func TestConfigYAMLDurations(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Education.CardDelay = CompactEducationCardDelay

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "card_delay: 200ms")
	assert.Contains(t, string(out), "frame_interval: 16ms")

	path := filepath.Join(t.TempDir(), "sequence.yaml")
	require.NoError(t, os.WriteFile(path, out, 0o600))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
