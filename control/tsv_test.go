package control

import (
	"strings"
	"testing"
)

func TestWriteTSV(t *testing.T) {
	expected := "subject\ttable_id\tsheet_id\tsystem\tmain_info\tadditional_info\n" +
		"Algorithms\tT1\t0\tmoodle\tC101\t\n" +
		"Networks\tT2\t17\tstepik\t58852\t40012\n"

	jobs := []ExportJob{
		{Subject: "Algorithms", TableID: "T1", SheetID: "0", System: "moodle", MainInfo: "C101"},
		{Subject: "Networks", TableID: "T2", SheetID: "17", System: "stepik", MainInfo: "58852", AdditionalInfo: "40012"},
	}

	var f strings.Builder
	if err := WriteTSV(&f, jobs); err != nil {
		t.Fatalf("Unexpected error returned from WriteTSV (%v)", err)
	}

	if f.String() != expected {
		t.Errorf("Incorrect TSV\n   expected: %s\n   got:      %s\n", expected, f.String())
	}
}

func TestWriteTSVWithEmptyTable(t *testing.T) {
	var f strings.Builder

	if err := WriteTSV(&f, nil); err == nil {
		t.Fatalf("Expected error return for empty control sheet, got %v", err)
	}
}
