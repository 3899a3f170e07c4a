package batch

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/moevm/grade-export-sheets/control"
	"github.com/moevm/grade-export-sheets/report"
)

var formats = map[string]bool{
	"csv":  true,
	"tsv":  true,
	"pdf":  true,
	"xlsx": true,
	"ods":  true,
}

// Disk is the file store that receives duplicated sheets.
type Disk interface {
	MkdirAll(ctx context.Context, dir string) error
	Upload(ctx context.Context, local, remote string, overwrite bool) error
	Publish(ctx context.Context, remote string) (string, error)
}

// Duplicator exports the worksheets listed in a control sheet, uploads them to a file
// store and reports their public links.
type Duplicator struct {
	Store Store
	Disk  Disk
	Log   logrus.FieldLogger

	// Dir is the destination directory in the file store.
	Dir string

	// WorkDir holds the exported files while they are uploaded. Defaults to the
	// system temporary directory.
	WorkDir string

	Prefix string
}

// Run duplicates every row of the control sheet and writes the report of public links.
func (x *Duplicator) Run(ctx context.Context, tableID, sheetID string) (bool, error) {
	log := newRun(x.Log, tableID, sheetID)

	list, err := control.ReadDuplicates(ctx, x.Store, tableID, sheetID)
	if err != nil {
		log.Errorf("error retrieving duplication list (%v)", err)
		return false, err
	}

	if x.WorkDir != "" {
		if err := os.MkdirAll(x.WorkDir, 0770); err != nil {
			return false, err
		}
	}

	workdir, err := os.MkdirTemp(x.WorkDir, "duplicate-")
	if err != nil {
		return false, err
	}

	defer os.RemoveAll(workdir)

	log.Infof("retrieved %v sheets to duplicate to %v", len(list), x.Dir)

	rpt := report.New("filename", "public_link")

	for _, d := range list {
		l := log.WithFields(logrus.Fields{
			"subject": d.Subject,
			"file":    d.Filename(),
		})

		outcome := guard(l, func() Outcome {
			return x.process(ctx, workdir, d)
		})

		outcome.record(rpt, d.Name)
	}

	return flush(ctx, log, rpt, x.Store, tableID, sheetID, x.Prefix)
}

func (x *Duplicator) process(ctx context.Context, workdir string, d control.Duplicate) Outcome {
	format := strings.ToLower(d.Format)
	if !formats[format] {
		return failure(fmt.Errorf("unsupported export format '%v'", d.Format))
	}

	name := filepath.FromSlash(d.Name)
	if d.Name == "" || !filepath.IsLocal(name) {
		return failure(fmt.Errorf("invalid export name '%v'", d.Name))
	}

	content, err := x.Store.Export(ctx, d.TableID, d.SheetID, format)
	if err != nil {
		return failure(fmt.Errorf("error exporting sheet (%w)", err))
	} else if len(content) == 0 {
		return failure(fmt.Errorf("sheet %v/%v exported no content", d.TableID, d.SheetID))
	}

	file := fmt.Sprintf("%v.%v", name, format)
	local := filepath.Join(workdir, file)

	if err := os.MkdirAll(filepath.Dir(local), 0770); err != nil {
		return failure(err)
	}

	if err := os.WriteFile(local, content, 0600); err != nil {
		return failure(err)
	}

	defer os.Remove(local)

	remote := path.Join(x.Dir, filepath.ToSlash(file))
	if dir := path.Dir(filepath.ToSlash(file)); dir != "." {
		if err := x.Disk.MkdirAll(ctx, path.Join(x.Dir, dir)); err != nil {
			return failure(fmt.Errorf("error creating directory for %v (%w)", remote, err))
		}
	}
	if err := x.Disk.Upload(ctx, local, remote, true); err != nil {
		return failure(fmt.Errorf("error uploading %v (%w)", remote, err))
	}

	link, err := x.Disk.Publish(ctx, remote)
	if err != nil {
		return failure(fmt.Errorf("error publishing %v (%w)", remote, err))
	}

	return success(link)
}
