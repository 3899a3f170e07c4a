// Package runner launches an exporter as a child process and reports its exit status.
//
// Success is decided only by a zero exit status. The child's standard output and
// standard error are captured separately and logged once the child exits, output at
// info and the error stream at error. They are never parsed.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/execabs"
)

// waitDelay bounds how long output is drained after a cancelled child is killed.
const waitDelay = 2 * time.Second

type Runner struct {
	Log logrus.FieldLogger
}

// Run executes argv to completion. It returns false with a nil error for a non-zero
// exit status, and an error if the process could not be started or was cancelled.
func (r *Runner) Run(ctx context.Context, argv []string) (bool, error) {
	if len(argv) == 0 {
		return false, fmt.Errorf("empty exporter command")
	}

	log := r.logger().WithField("program", argv[0])

	var stdout bytes.Buffer
	var stderr bytes.Buffer

	cmd := execabs.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	log.Debugf("launching exporter with %v arguments", len(argv)-1)

	err := cmd.Run()

	if s := strings.TrimSpace(stdout.String()); s != "" {
		log.WithField("stream", "stdout").Info(s)
	}

	if s := strings.TrimSpace(stderr.String()); s != "" {
		log.WithField("stream", "stderr").Error(s)
	}

	if err == nil {
		return true, nil
	}

	if ctx.Err() != nil {
		return false, fmt.Errorf("exporter %v interrupted (%w)", argv[0], ctx.Err())
	}

	var exit *execabs.ExitError
	if errors.As(err, &exit) {
		log.Warnf("exporter exited with status %v", exit.ExitCode())
		return false, nil
	}

	return false, fmt.Errorf("unable to launch exporter %v (%w)", argv[0], err)
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}

	return r.Log
}
