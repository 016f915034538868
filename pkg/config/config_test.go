package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/KohlJary/project-cass-sub004/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cass", cfg.InstanceID)
	assert.Equal(t, "data/self_model.json", cfg.SnapshotPath)
	assert.InDelta(t, 0.35, cfg.SimilarityThreshold, 1e-9)
	assert.Equal(t, 3, cfg.FrictionMinAttempts)
	assert.InDelta(t, 0.5, cfg.FrictionMaxSuccessRate, 1e-9)
	assert.Equal(t, 15*time.Second, cfg.EmbeddingTimeout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SELFMODEL_INSTANCE_ID", "other")
	t.Setenv("SIMILARITY_THRESHOLD", "0.5")
	t.Setenv("FRICTION_MIN_ATTEMPTS", "5")
	t.Setenv("EMBEDDING_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "other", cfg.InstanceID)
	assert.InDelta(t, 0.5, cfg.SimilarityThreshold, 1e-9)
	assert.Equal(t, 5, cfg.FrictionMinAttempts)
	assert.Equal(t, 30*time.Second, cfg.EmbeddingTimeout)
}

func TestLoad_YAMLFileWithEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "instance_id: from_file\nsimilarity_threshold: 0.4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("SELFMODEL_CONFIG", path)
	t.Setenv("SELFMODEL_INSTANCE_ID", "from_env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.InstanceID, "environment wins over file")
	assert.InDelta(t, 0.4, cfg.SimilarityThreshold, 1e-9)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	t.Setenv("SIMILARITY_THRESHOLD", "2.0")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	require.NoError(t, cfg.Validate())

	cfg.InstanceID = ""
	err := cfg.Validate()
	require.Error(t, err)
	var invalid *apperrors.ErrConfigInvalid
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "instance_id", invalid.Field)

	cfg = defaults()
	cfg.FrictionMaxSuccessRate = 1.5
	err = cfg.Validate()
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "friction_max_success_rate", invalid.Field)
}
