package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/e33config/internal/cfgerr"
)

func TestDirectPlacement_StageIsTarget(t *testing.T) {
	target := filepath.Join(t.TempDir(), "Engine.ini")
	p := DirectPlacement{target: target}

	staged, err := p.Stage()
	require.NoError(t, err)
	assert.Equal(t, target, staged)
	assert.NoError(t, p.Commit())
}

func TestStagedPlacement_CommitRelocates(t *testing.T) {
	target := filepath.Join(t.TempDir(), "Engine.ini")
	require.NoError(t, os.WriteFile(target, []byte("[Old]\n"), 0o644))
	p := StagedPlacement{target: target, dir: filepath.Join(t.TempDir(), "gamepass")}

	staged, err := p.Stage()
	require.NoError(t, err)
	assert.NotEqual(t, target, staged)
	require.NoError(t, os.WriteFile(staged, []byte("[New]\nA=1\n"), 0o644))

	// Target is untouched until commit.
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "[Old]\n", string(got))

	require.NoError(t, p.Commit())
	got, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "[New]\nA=1\n", string(got))
	assert.NoFileExists(t, staged)
}

func TestStagedPlacement_CommitWithoutStage(t *testing.T) {
	p := StagedPlacement{target: filepath.Join(t.TempDir(), "Engine.ini"), dir: t.TempDir()}
	err := p.Commit()
	assert.ErrorIs(t, err, cfgerr.ErrSourceNotFound)
}
