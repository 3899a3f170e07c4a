package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/moevm/grade-export-sheets/config"
)

// New creates the logger shared by a single invocation. Output goes to stdout unless
// a log file is configured, in which case the file is rotated by size and age.
func New(options config.LogOptions, debug bool) *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	log.SetOutput(output(options))

	level, err := logrus.ParseLevel(options.Level)
	if err != nil {
		level = logrus.InfoLevel
	}

	if debug {
		level = logrus.DebugLevel
	}

	log.SetLevel(level)

	if err != nil && options.Level != "" {
		log.Warnf("invalid log level '%v', using '%v'", options.Level, level)
	}

	return log
}

func output(options config.LogOptions) io.Writer {
	if options.File == "" {
		return os.Stdout
	}

	return &lumberjack.Logger{
		Filename:   options.File,
		MaxSize:    options.MaxSize,
		MaxBackups: options.MaxBackups,
		MaxAge:     options.MaxAge,
	}
}
