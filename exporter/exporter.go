package exporter

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/moevm/grade-export-sheets/control"
	"github.com/moevm/grade-export-sheets/credentials"
)

type System string

const (
	Moodle System = "moodle"
	DIS    System = "dis"
	Stepik System = "stepik"
)

// Runtime selects how an exporter is launched.
type Runtime string

const (
	Process Runtime = "process"
	Docker  Runtime = "docker"
)

const (
	DEFAULT_MOODLE_URL = "https://e.moevm.info"
	DEFAULT_STEPIK_URL = "https://stepik.org:443/api"

	containerCredentials = "/app/conf.json"
	containerBundle      = "conf.json"
)

var (
	ErrNoCredentials = errors.New("no credentials for system")
	ErrUnknownSystem = errors.New("unknown system")
)

// Skeleton is the fixed invocation layout of one exporter.
type Skeleton struct {
	Program string
	Image   string
	Flags   func(b *Builder, job control.ExportJob, creds *credentials.Registry) ([]string, error)
}

var skeletons = map[System]Skeleton{
	Moodle: {
		Program: "moodle_exporter",
		Image:   "moodle_export_parser:latest",
		Flags: func(b *Builder, job control.ExportJob, creds *credentials.Registry) ([]string, error) {
			token, err := creds.Token(string(Moodle))
			if err != nil {
				return nil, err
			}

			return []string{
				"--moodle_token", token,
				"--url", b.moodleURL(),
				"--csv_path", "grades",
				"--course_id", job.MainInfo,
				"--options", "github",
			}, nil
		},
	},

	Stepik: {
		Program: "stepik_exporter",
		Image:   "stepik_export_parser:latest",
		Flags: func(b *Builder, job control.ExportJob, creds *credentials.Registry) ([]string, error) {
			id, err := creds.Field(string(Stepik), "client_id")
			if err != nil {
				return nil, err
			}

			secret, err := creds.Field(string(Stepik), "client_secret")
			if err != nil {
				return nil, err
			}

			flags := []string{
				"--client_id", id,
				"--client_secret", secret,
				"--url", b.stepikURL(),
				"--csv_path", "grades",
				"--course_id", job.MainInfo,
			}

			if job.AdditionalInfo != "" {
				flags = append(flags, "--class_id", job.AdditionalInfo)
			}

			return flags, nil
		},
	},

	DIS: {
		Program: "dis_exporter",
		Image:   "checker_export_parser:latest",
		Flags: func(b *Builder, job control.ExportJob, creds *credentials.Registry) ([]string, error) {
			token, err := creds.Token(string(DIS))
			if err != nil {
				return nil, err
			}

			return []string{
				"--checker_filter", job.MainInfo,
				"--checker_token", token,
			}, nil
		},
	},
}

// Systems returns the identifiers of all supported exporters.
func Systems() []string {
	return []string{string(Moodle), string(DIS), string(Stepik)}
}

// Lookup returns the system for an identifier from the control table.
func Lookup(name string) (System, bool) {
	s := System(name)
	if _, ok := skeletons[s]; !ok {
		return "", false
	}

	return s, true
}

// Builder produces the argument vector that launches the exporter for a job.
type Builder struct {
	Runtime     Runtime
	ExporterDir string
	Docker      string
	GoogleCred  string
	MoodleURL   string
	StepikURL   string
}

// Build returns the full argument vector for a job. A job whose system has no
// credentials is rejected before any system specific flags are produced.
func (b *Builder) Build(job control.ExportJob, creds *credentials.Registry) ([]string, error) {
	if !creds.Has(job.System) {
		return nil, fmt.Errorf("%w '%v'", ErrNoCredentials, job.System)
	}

	system, ok := Lookup(job.System)
	if !ok {
		return nil, fmt.Errorf("%w '%v'", ErrUnknownSystem, job.System)
	}

	skeleton := skeletons[system]

	flags, err := skeleton.Flags(b, job, creds)
	if err != nil {
		return nil, err
	}

	var argv []string
	var bundle string

	switch b.Runtime {
	case Docker:
		argv = []string{
			b.docker(), "run", "--rm",
			"-v", fmt.Sprintf("%v:%v", absolute(b.GoogleCred), containerCredentials),
			"--name", fmt.Sprintf("%v_exporter", system),
			skeleton.Image,
		}
		bundle = containerBundle

	case Process, "":
		argv = []string{filepath.Join(b.ExporterDir, skeleton.Program)}
		bundle = b.GoogleCred

	default:
		return nil, fmt.Errorf("unsupported exporter runtime '%v'", b.Runtime)
	}

	argv = append(argv, flags...)
	argv = append(argv,
		"--table_id", job.TableID,
		"--sheet_id", job.SheetID,
		"--google_token", bundle)

	return argv, nil
}

func (b *Builder) docker() string {
	if b.Docker == "" {
		return "docker"
	}

	return b.Docker
}

func (b *Builder) moodleURL() string {
	if b.MoodleURL == "" {
		return DEFAULT_MOODLE_URL
	}

	return b.MoodleURL
}

func (b *Builder) stepikURL() string {
	if b.StepikURL == "" {
		return DEFAULT_STEPIK_URL
	}

	return b.StepikURL
}

func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}

	return path
}
