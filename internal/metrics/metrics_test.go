// SPDX-License-Identifier: MIT

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/e33config/internal/cfgerr"
)

func TestObserveOperation_LabelsByOutcome(t *testing.T) {
	r := NewRecorder()
	start := time.Now()

	r.ObserveOperation("create", start, nil)
	r.ObserveOperation("create", start, nil)
	r.ObserveOperation("custom", start, cfgerr.New(cfgerr.ErrReadOnlyViolation, "custom", "", "", nil))
	r.ObserveOperation("show", start, errors.New("disk on fire"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.operations.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("custom", "read_only_violation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("show", "internal")))
	assert.Equal(t, 3, testutil.CollectAndCount(r.duration))
}

func TestBackupAndReadOnly(t *testing.T) {
	r := NewRecorder()
	r.BackupCreated("steam")
	r.BackupCreated("steam")
	r.SetReadOnly("gamepass", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.backupsCreated.WithLabelValues("steam")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.readOnly.WithLabelValues("gamepass")))

	r.SetReadOnly("gamepass", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.readOnly.WithLabelValues("gamepass")))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveOperation("create", time.Now(), nil)
		r.BackupCreated("steam")
		r.SetReadOnly("steam", true)
		require.NoError(t, r.WriteTextfile("/nonexistent/x.prom"))
	})
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.BackupCreated("steam")

	path := filepath.Join(t.TempDir(), "collector", "e33config.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `e33config_backups_created_total{distribution="steam"} 1`), string(data))

	require.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(`
# HELP e33config_backups_created_total Backups written per distribution
# TYPE e33config_backups_created_total counter
e33config_backups_created_total{distribution="steam"} 1
`), "e33config_backups_created_total"))
}
