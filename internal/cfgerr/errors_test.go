package cfgerr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MessageCarriesOpPathAndHint(t *testing.T) {
	err := New(ErrReadOnlyViolation, "custom", "/tmp/Engine.ini", "use --force to override", nil)

	assert.Equal(t, "custom: /tmp/Engine.ini: settings file is read-only (use --force to override)", err.Error())
}

func TestError_IsMatchesKindAndCause(t *testing.T) {
	err := New(ErrSourceNotFound, "show", "/x/Engine.ini", "", fs.ErrNotExist)
	wrapped := fmt.Errorf("show steam: %w", err)

	assert.True(t, errors.Is(wrapped, ErrSourceNotFound))
	assert.True(t, errors.Is(wrapped, fs.ErrNotExist))
	assert.False(t, errors.Is(wrapped, ErrBackupIntegrity))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rich error", New(ErrUnknownPreset, "create", "", "", nil), ErrUnknownPreset},
		{"wrapped sentinel", fmt.Errorf("x: %w", ErrInvalidSetting), ErrInvalidSetting},
		{"plain error", errors.New("boom"), nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestCode(t *testing.T) {
	assert.Equal(t, "ok", Code(nil))
	assert.Equal(t, "internal", Code(errors.New("boom")))
	assert.Equal(t, "read_only_violation", Code(New(ErrReadOnlyViolation, "custom", "", "", nil)))
	assert.Equal(t, "backup_integrity", Code(fmt.Errorf("restore: %w", ErrBackupIntegrity)))
	for _, k := range kinds {
		assert.NotEmpty(t, codes[k], k.Error())
	}
}
