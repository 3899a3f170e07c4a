package rating

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

//go:embed templates
var templates embed.FS

var whitespace = regexp.MustCompile(`\s+`)

// Reader fetches the formatted cell values of a worksheet.
type Reader interface {
	Values(ctx context.Context, tableID, worksheet string) ([][]string, error)
}

// Exporter publishes a static HTML rating page for every student listed in a worksheet.
type Exporter struct {
	Store     Reader
	Log       logrus.FieldLogger
	Salt      string
	IndexPage string
	Now       func() time.Time
}

type Student struct {
	Name  string
	Login string
	Group string
	Hash  string
}

type Score struct {
	Component string
	Value     string
}

type page struct {
	Title     string
	Generated time.Time
	Subject   string
	Student   Student
	Scores    []Score
	Files     []file
	Students  []Student
}

type file struct {
	File    string
	Subject string
}

// Run exports each table in turn. A table that cannot be read or rendered is logged and
// skipped, and Run returns false if any table failed.
func (x *Exporter) Run(ctx context.Context, tables []Table) (bool, error) {
	if len(tables) == 0 {
		return false, fmt.Errorf("no tables to export")
	}

	ok := true
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		students, err := x.export(ctx, table)
		if err != nil {
			x.Log.Errorf("rating export for '%v' failed (%v)", table.Subject, err)
			ok = false
			continue
		}

		x.Log.Infof("exported %v student pages for '%v'", len(students), table.Subject)
	}

	return ok, nil
}

func (x *Exporter) export(ctx context.Context, table Table) ([]Student, error) {
	subject := strings.TrimSpace(table.Subject)
	if subject == "" || !filepath.IsLocal(subject) || filepath.Base(subject) != subject {
		return nil, fmt.Errorf("invalid subject '%v'", table.Subject)
	}

	if strings.TrimSpace(table.OutDir) == "" {
		return nil, fmt.Errorf("missing output directory")
	}

	if table.HeaderRow < 0 {
		return nil, fmt.Errorf("invalid header row %v", table.HeaderRow)
	}

	x.Log.Infof("exporting '%v' from table %v, worksheet '%v'", subject, table.SpreadsheetKey, table.WorksheetName)

	data, err := x.Store.Values(ctx, table.SpreadsheetKey, table.WorksheetName)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(table.OutDir, 0755); err != nil {
		return nil, err
	}

	headers := []string{}
	if table.HeaderRow < len(data) {
		headers = data[table.HeaderRow]
	}

	common := map[string]int{}
	for _, k := range []string{"name", "login", "group"} {
		column, ok := table.CommonColumns[k]
		if !ok {
			return nil, fmt.Errorf("missing '%v' column", k)
		}

		index, err := resolve(column, headers)
		if err != nil {
			return nil, err
		}

		common[k] = index
	}

	columns, err := published(table.PublishedColumns, headers)
	if err != nil {
		return nil, err
	}

	students := []Student{}
	generated := x.now()

	for _, row := range rows(data, table.HeaderRow) {
		name := cell(row, common["name"])
		login := cell(row, common["login"])
		group := cell(row, common["group"])

		if name == "" || login == "" || group == "" {
			continue
		}

		student := Student{
			Name:  shortName(name),
			Login: login,
			Group: group,
			Hash:  Hash(login, x.salt()),
		}

		scores := make([]Score, 0, len(columns))
		for _, i := range columns {
			scores = append(scores, Score{
				Component: cell(headers, i),
				Value:     clean(cell(row, i)),
			})
		}

		dir := filepath.Join(table.OutDir, student.Hash)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}

		p := page{
			Title:     fmt.Sprintf("%v - %v", student.Name, subject),
			Generated: generated,
			Subject:   subject,
			Student:   student,
			Scores:    scores,
		}

		if err := render("student.html", p, filepath.Join(dir, subject+".html")); err != nil {
			return nil, err
		}

		x.Log.Debugf("student page for %v  group:%v  login:%v  ID:%v", student.Name, student.Group, student.Login, student.Hash)

		students = append(students, student)
	}

	for _, student := range students {
		if err := x.studentIndex(student, filepath.Join(table.OutDir, student.Hash), generated); err != nil {
			return nil, err
		}
	}

	if err := x.index(students, table.OutDir, generated); err != nil {
		return nil, err
	}

	return students, nil
}

// studentIndex lists every rating page in the student's directory, including the pages
// written by earlier runs for other subjects.
func (x *Exporter) studentIndex(student Student, dir string, generated time.Time) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	files := []file{}
	for _, entry := range entries {
		if entry.Type().IsRegular() && entry.Name() != "index.html" && !strings.HasPrefix(entry.Name(), ".") {
			files = append(files, file{
				File:    entry.Name(),
				Subject: strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].File < files[j].File })

	p := page{
		Title:     fmt.Sprintf("Рейтинги - %v", student.Name),
		Generated: generated,
		Student:   student,
		Files:     files,
	}

	return render("student_index.html", p, filepath.Join(dir, "index.html"))
}

func (x *Exporter) index(students []Student, dir string, generated time.Time) error {
	sorted := make([]Student, len(students))
	copy(sorted, students)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Group != sorted[j].Group {
			return sorted[i].Group < sorted[j].Group
		}

		return sorted[i].Name < sorted[j].Name
	})

	p := page{
		Title:     "Список студентов",
		Generated: generated,
		Students:  sorted,
	}

	file := filepath.Join(dir, x.indexPage())
	if err := render("index.html", p, file); err != nil {
		return err
	}

	x.Log.Infof("created index page %v", file)

	return nil
}

func (x *Exporter) now() time.Time {
	if x.Now != nil {
		return x.Now()
	}

	return time.Now()
}

func (x *Exporter) salt() string {
	if x.Salt == "" {
		return DEFAULT_SALT
	}

	return x.Salt
}

func (x *Exporter) indexPage() string {
	if x.IndexPage == "" {
		return DEFAULT_INDEX_PAGE
	}

	return x.IndexPage
}

// Hash returns the first 10 hex digits of sha256("<login>:<salt>").
func Hash(login, salt string) string {
	sum := sha256.Sum256([]byte(login + ":" + salt))

	return hex.EncodeToString(sum[:])[:10]
}

// shortName keeps the surname and first name of a full name.
func shortName(name string) string {
	fields := strings.Fields(name)
	if len(fields) > 2 {
		fields = fields[:2]
	}

	return strings.Join(fields, " ")
}

func clean(v string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(v, " "))
}

func cell(row []string, index int) string {
	if index >= 0 && index < len(row) {
		return strings.TrimSpace(row[index])
	}

	return ""
}

func rows(data [][]string, header int) [][]string {
	if header+1 >= len(data) {
		return nil
	}

	return data[header+1:]
}

func render(name string, p page, path string) error {
	t, err := template.New("layout.html").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(templates, "templates/layout.html", "templates/"+name)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".rating-*.html")
	if err != nil {
		return err
	}

	defer func() {
		f.Close()
		os.Remove(f.Name())
	}()

	if err := t.Execute(f, p); err != nil {
		return fmt.Errorf("error rendering %v (%w)", name, err)
	}

	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Chmod(f.Name(), 0644); err != nil {
		return err
	}

	return os.Rename(f.Name(), path)
}
