package mwtab

import "testing"

func TestResultsFile_String(t *testing.T) {
	rf := &ResultsFile{
		Filename: "ST000001_AN000001_Results.txt",
		Units:    "Peak area",
		HasRT:    "Yes",
	}
	want := "ST000001_AN000001_Results.txt UNITS:Peak area Has RT:Yes"
	if got := rf.String(" "); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	want = "ST000001_AN000001_Results.txt\tUNITS:Peak area\tHas RT:Yes"
	if got := rf.String("\t"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestResultsFile_Empty(t *testing.T) {
	var rf *ResultsFile
	if !rf.Empty() {
		t.Fatalf("expected nil to be empty")
	}
	if !(&ResultsFile{}).Empty() {
		t.Fatalf("expected zero value to be empty")
	}
	if (&ResultsFile{Units: "Peak area"}).Empty() {
		t.Fatalf("expected populated composite to not be empty")
	}
}

func TestItemSection_Files(t *testing.T) {
	s := NewItemSection()
	s.Fields.Add("INSTRUMENT_NAME", "Agilent 6550 QTOF")
	s.SetFile("MS_RESULTS_FILE", &ResultsFile{Filename: "results.txt"})

	if got := s.FileKey(); got != "MS_RESULTS_FILE" {
		t.Fatalf("expected MS_RESULTS_FILE, got %q", got)
	}
	if s.File("MS_RESULTS_FILE") == nil {
		t.Fatalf("expected stored composite")
	}
	// The key keeps its place among the ordered fields.
	keys := s.Fields.Keys()
	if len(keys) != 2 || keys[1] != "MS_RESULTS_FILE" {
		t.Fatalf("expected results file key appended to fields, got %v", keys)
	}
}

func TestDocument_DeleteSection(t *testing.T) {
	doc := NewDocument("in-memory")
	doc.SetSection("PROJECT", NewItemSection())
	doc.SetSection("STUDY", NewItemSection())
	doc.DeleteSection("PROJECT")

	names := doc.SectionNames()
	if len(names) != 1 || names[0] != "STUDY" {
		t.Fatalf("expected only STUDY, got %v", names)
	}
	if doc.Section("PROJECT") != nil {
		t.Fatalf("expected PROJECT to be gone")
	}
	doc.DeleteSection("PROJECT") // no-op
}

func TestDocument_HeaderLine(t *testing.T) {
	doc, err := parseFixture(passingMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "#METABOLOMICS WORKBENCH STUDY_ID:ST000001 ANALYSIS_ID:AN000001"
	if got := doc.HeaderLine(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCanonicalize_UnknownSectionsKeepRelativeOrder(t *testing.T) {
	doc := NewDocument("in-memory")
	doc.SetSection("ZEBRA", NewItemSection())
	doc.SetSection("PROJECT", NewItemSection())
	doc.SetSection("APPLE", NewItemSection())
	doc.SetSection("METABOLOMICS WORKBENCH", NewItemSection())
	doc.Canonicalize()

	want := []string{"METABOLOMICS WORKBENCH", "PROJECT", "ZEBRA", "APPLE"}
	names := doc.SectionNames()
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}
