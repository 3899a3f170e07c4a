package control

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type store struct {
	content []byte
	err     error
	format  string
}

func (s *store) Export(ctx context.Context, tableID, sheetID, format string) ([]byte, error) {
	s.format = format
	return s.content, s.err
}

func TestDecodeJobs(t *testing.T) {
	expected := []ExportJob{
		{Subject: "Algorithms", TableID: "T1", SheetID: "0", System: "moodle", MainInfo: "C101", AdditionalInfo: ""},
		{Subject: "Networks", TableID: "T2", SheetID: "17", System: "stepik", MainInfo: "58852", AdditionalInfo: "40012"},
		{Subject: "Slides", TableID: "T3", SheetID: "3", System: "dis", MainInfo: "group=3341", AdditionalInfo: ""},
	}

	csv := `Algorithms,T1,0,moodle,C101,
Networks,T2,17,stepik,58852,40012
Slides,T3,3,dis,group=3341
`

	jobs, err := DecodeJobs(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Unexpected error returned from DecodeJobs (%v)", err)
	}

	if !reflect.DeepEqual(jobs, expected) {
		t.Errorf("Incorrect jobs\n   expected: %v\n   got:      %v\n", expected, jobs)
	}
}

func TestDecodeJobsWithShortAndLongRows(t *testing.T) {
	expected := []ExportJob{
		{Subject: "Physics", TableID: "T9"},
		{Subject: "Maths", TableID: "T1", SheetID: "0", System: "dis", MainInfo: "x", AdditionalInfo: "y"},
	}

	csv := "Physics,T9\n\nMaths,T1,0,dis,x,y,ignored,also-ignored\n"

	jobs, err := DecodeJobs(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Unexpected error returned from DecodeJobs (%v)", err)
	}

	if !reflect.DeepEqual(jobs, expected) {
		t.Errorf("Incorrect jobs\n   expected: %v\n   got:      %v\n", expected, jobs)
	}
}

func TestDecodeJobsWithEmptyTable(t *testing.T) {
	jobs, err := DecodeJobs(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Unexpected error returned from DecodeJobs (%v)", err)
	}

	if len(jobs) != 0 {
		t.Errorf("Expected no jobs, got %v", jobs)
	}
}

func TestDecodeJobsWithQuotedFields(t *testing.T) {
	csv := `"Programming, part 1",T1,0,dis,"filter=a,b",` + "\n"

	jobs, err := DecodeJobs(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Unexpected error returned from DecodeJobs (%v)", err)
	}

	if len(jobs) != 1 || jobs[0].Subject != "Programming, part 1" || jobs[0].MainInfo != "filter=a,b" {
		t.Errorf("Incorrect quoted field decoding: %v", jobs)
	}
}

func TestReadJobs(t *testing.T) {
	s := store{content: []byte("Algorithms,T1,0,moodle,C101,\n")}

	jobs, err := ReadJobs(context.Background(), &s, "control", "0")
	if err != nil {
		t.Fatalf("Unexpected error returned from ReadJobs (%v)", err)
	}

	if s.format != "csv" {
		t.Errorf("Expected control sheet to be exported as CSV, got '%v'", s.format)
	}

	if len(jobs) != 1 || jobs[0].Subject != "Algorithms" {
		t.Errorf("Incorrect jobs: %v", jobs)
	}
}

func TestReadJobsWithNoContent(t *testing.T) {
	for _, content := range [][]byte{nil, []byte("")} {
		s := store{content: content}

		if _, err := ReadJobs(context.Background(), &s, "control", "0"); !errors.Is(err, ErrNoData) {
			t.Errorf("Expected ErrNoData for content %q, got %v", content, err)
		}
	}
}

func TestReadJobsWithBlankTable(t *testing.T) {
	s := store{content: []byte("\n,,,,,\n\n")}

	jobs, err := ReadJobs(context.Background(), &s, "control", "0")
	if err != nil {
		t.Fatalf("Unexpected error returned from ReadJobs (%v)", err)
	}

	if len(jobs) != 0 {
		t.Errorf("Expected no jobs, got %v", jobs)
	}
}

func TestReadJobsWithStoreError(t *testing.T) {
	s := store{err: errors.New("unreachable")}

	_, err := ReadJobs(context.Background(), &s, "control", "0")
	if err == nil || errors.Is(err, ErrNoData) {
		t.Errorf("Expected store error, got %v", err)
	}
}

func TestReadDuplicates(t *testing.T) {
	expected := []Duplicate{
		{Subject: "Algorithms", TableID: "T1", SheetID: "0", Format: "pdf", Name: "algorithms-2025"},
		{Subject: "Networks", TableID: "T2", SheetID: "5", Format: "xlsx", Name: "networks"},
	}

	s := store{content: []byte("Algorithms,T1,0,pdf,algorithms-2025\nNetworks,T2,5,xlsx,networks\n")}

	list, err := ReadDuplicates(context.Background(), &s, "control", "0")
	if err != nil {
		t.Fatalf("Unexpected error returned from ReadDuplicates (%v)", err)
	}

	if !reflect.DeepEqual(list, expected) {
		t.Errorf("Incorrect duplicates\n   expected: %v\n   got:      %v\n", expected, list)
	}

	if list[0].Filename() != "algorithms-2025.pdf" {
		t.Errorf("Incorrect filename - expected:%v, got:%v", "algorithms-2025.pdf", list[0].Filename())
	}
}
