package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shell(t *testing.T) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("exporter scripts require a POSIX shell")
	}

	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}

	return "/bin/sh"
}

func TestRunSuccess(t *testing.T) {
	sh := shell(t)
	log, hook := test.NewNullLogger()
	r := Runner{Log: log}

	ok, err := r.Run(context.Background(), []string{sh, "-c", "echo exported; echo warning >&2"})
	require.NoError(t, err)
	assert.True(t, ok)

	var info, errs []string
	for _, e := range hook.AllEntries() {
		switch e.Level {
		case logrus.InfoLevel:
			info = append(info, e.Message)
		case logrus.ErrorLevel:
			errs = append(errs, e.Message)
		}
	}

	assert.Equal(t, []string{"exported"}, info)
	assert.Equal(t, []string{"warning"}, errs)
}

func TestRunNonZeroExit(t *testing.T) {
	sh := shell(t)
	log, _ := test.NewNullLogger()
	r := Runner{Log: log}

	ok, err := r.Run(context.Background(), []string{sh, "-c", "exit 1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunIgnoresOutputContent(t *testing.T) {
	sh := shell(t)
	log, _ := test.NewNullLogger()
	r := Runner{Log: log}

	ok, err := r.Run(context.Background(), []string{sh, "-c", "echo ERROR >&2; echo failed"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunScript(t *testing.T) {
	shell(t)

	script := filepath.Join(t.TempDir(), "dis_exporter")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n[ \"$1\" = \"--table_id\" ] && exit 0\nexit 2\n"), 0700))

	log, _ := test.NewNullLogger()
	r := Runner{Log: log}

	ok, err := r.Run(context.Background(), []string{script, "--table_id", "T1"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Run(context.Background(), []string{script, "--sheet_id", "0"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunMissingExecutable(t *testing.T) {
	log, _ := test.NewNullLogger()
	r := Runner{Log: log}

	ok, err := r.Run(context.Background(), []string{filepath.Join(t.TempDir(), "missing_exporter")})
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRunEmptyCommand(t *testing.T) {
	r := Runner{}

	ok, err := r.Run(context.Background(), nil)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRunCancelled(t *testing.T) {
	sh := shell(t)
	log, _ := test.NewNullLogger()
	r := Runner{Log: log}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	ok, err := r.Run(ctx, []string{sh, "-c", "exec sleep 5"})
	assert.Error(t, err)
	assert.False(t, ok)
}
