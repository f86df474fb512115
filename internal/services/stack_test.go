package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Ayash-Bera/aidline/internal/config"
	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chromaConfig(t *testing.T, extra string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "docindex:\n  provider: chroma\n  base_url: http://127.0.0.1:1\n  timeout: 50ms\n" +
		"vectorstore:\n  timeout: 50ms\n" +
		"literature:\n  base_url: http://127.0.0.1:1\n  timeout: 50ms\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	return cfg
}

func TestBuildStack_DegradesWithUnreachableBackends(t *testing.T) {
	t.Setenv("ALCHEMYST_API_KEY", "")
	t.Setenv("ALCHEMYST_BASE_URL", "")
	stack, err := BuildStack(chromaConfig(t, ""), nil, quietLogger())
	require.NoError(t, err)
	assert.False(t, stack.Vector.Configured())

	ec, stats := stack.Service.Build(context.Background(), "dog bite")
	assert.Equal(t, models.ConditionDogBite, ec.Condition)
	assert.Len(t, stats.Failed, 3)
	require.NotNil(t, ec.Guide)
	assert.Equal(t, models.GuideSourceCurated, ec.Guide.Source)
}

func TestBuildStack_PostgresNeedsDB(t *testing.T) {
	cfg := chromaConfig(t, "")
	cfg.DocIndex.Provider = "postgres"
	_, err := BuildStack(cfg, nil, quietLogger())
	assert.Error(t, err)
}

func TestBuildStack_TemplateOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`templates:
  - condition: nosebleed
    steps:
      - instruction: Sit up and lean forward
        important: true
      - instruction: Pinch the soft part of the nose
    do_not_do:
      - Do not tilt the head back
`), 0o600))

	cfg := chromaConfig(t, "guide:\n  templates_path: "+path+"\n")
	stack, err := BuildStack(cfg, nil, quietLogger())
	require.NoError(t, err)

	ec := stack.Service.BuildEvidenceContext(context.Background(), "nose bleeding")
	require.NotNil(t, ec.Guide)
	assert.Equal(t, models.GuideSourceCurated, ec.Guide.Source)
	assert.Equal(t, "Sit up and lean forward", ec.Guide.Steps[0].Instruction)
}
