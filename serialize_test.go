package mwtab

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteString_MwTabByteFidelity(t *testing.T) {
	doc, err := parseFixture(passingMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := doc.WriteString(FormatMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(passingMwTab, out); diff != "" {
		t.Fatalf("output differs from input (-want +got):\n%s", diff)
	}
}

func TestWriteString_BinnedByteFidelity(t *testing.T) {
	doc, err := parseFixture(binnedMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := doc.WriteString(FormatMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(binnedMwTab, out); diff != "" {
		t.Fatalf("output differs from input (-want +got):\n%s", diff)
	}
}

// messyMwTab carries no column padding and lists its sections out of
// order.
var messyMwTab = strings.Join([]string{
	"#METABOLOMICS WORKBENCH STUDY_ID:ST000001 ANALYSIS_ID:AN000001",
	"CREATED_ON\t2024-01-15",
	"VERSION\t1",
	"#ANALYSIS",
	"AN:ANALYSIS_TYPE\tMS",
	"#PROJECT",
	"PR:PROJECT_TITLE\tQuantitative profiling",
	"#SUBJECT_SAMPLE_FACTORS:\tSUBJECT(optional)[tab]SAMPLE[tab]FACTORS[tab]Additional sample data",
	"SUBJECT_SAMPLE_FACTORS\t-\tS-1\tGender:Male\t",
	"#MS_METABOLITE_DATA",
	"MS_METABOLITE_DATA:UNITS\tpeak area",
	"MS_METABOLITE_DATA_START",
	"Samples\tS-1",
	"Glucose\t183724",
	"MS_METABOLITE_DATA_END",
	"#END",
}, "\n") + "\n"

func TestWriteString_Idempotent(t *testing.T) {
	doc, err := parseFixture(messyMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out1, err := doc.WriteString(FormatMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc2, err := parseFixture(out1)
	if err != nil {
		t.Fatalf("reparse failed: %v\n%s", err, out1)
	}
	out2, err := doc2.WriteString(FormatMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(out1, out2); diff != "" {
		t.Fatalf("second write differs from first (-first +second):\n%s", diff)
	}
}

func TestWriteString_CanonicalSectionOrder(t *testing.T) {
	doc, err := parseFixture(messyMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := doc.WriteString(FormatMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	project := strings.Index(out, "#PROJECT")
	analysis := strings.Index(out, "#ANALYSIS")
	if project < 0 || analysis < 0 || project > analysis {
		t.Fatalf("expected #PROJECT before #ANALYSIS:\n%s", out)
	}
	if !strings.Contains(out, "Factors\tGender:Male\n") {
		t.Fatalf("expected Factors line rebuilt from SUBJECT_SAMPLE_FACTORS:\n%s", out)
	}
	if !strings.HasSuffix(out, "#END\n") {
		t.Fatalf("expected trailing #END banner:\n%s", out)
	}
}

func TestWriteString_LongValueWraps(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 30))
	text := "#METABOLOMICS WORKBENCH STUDY_ID:ST000001\n" +
		"VERSION\t1\n" +
		"#PROJECT\n" +
		"PR:PROJECT_SUMMARY\t" + long + "\n" +
		"#END\n"
	doc, err := parseFixture(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := doc.WriteString(FormatMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Count(out, "PR:PROJECT_SUMMARY"); got != 2 {
		t.Fatalf("expected value wrapped onto 2 key lines, got %d:\n%s", got, out)
	}

	doc2, err := parseFixture(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if got := doc2.Item("PROJECT").Fields.Value("PROJECT_SUMMARY"); got != long {
		t.Fatalf("expected wrapped value to survive a round trip, got %q", got)
	}
}

func TestWriteString_FilenameNeverWraps(t *testing.T) {
	name := strings.Repeat("x", 90) + ".pdf"
	text := "#METABOLOMICS WORKBENCH STUDY_ID:ST000001\n" +
		"VERSION\t1\n" +
		"#COLLECTION\n" +
		"CO:COLLECTION_PROTOCOL_FILENAME\t" + name + "\n" +
		"#END\n"
	doc, err := parseFixture(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := doc.WriteString(FormatMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Count(out, "CO:COLLECTION_PROTOCOL_FILENAME"); got != 1 {
		t.Fatalf("expected filename on a single line, got %d occurrences:\n%s", got, out)
	}
}

func TestWriteString_EmptyDataBlock(t *testing.T) {
	doc, err := parseFixture(emptyBlockMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := doc.WriteString(FormatMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(emptyBlockMwTab, out); diff != "" {
		t.Fatalf("output differs from input (-want +got):\n%s", diff)
	}
}

func TestWriteString_StrayItemKeepsPosition(t *testing.T) {
	text := strings.Join([]string{
		"#METABOLOMICS WORKBENCH STUDY_ID:ST000001 ANALYSIS_ID:AN000001",
		"VERSION\t1",
		"#MS_METABOLITE_DATA",
		"MS_METABOLITE_DATA:UNITS\tpeak area",
		"MS_METABOLITE_DATA_START",
		"Samples\tS-1",
		"Glucose\t183724",
		"MS_METABOLITE_DATA_END",
		"MS_METABOLITE_DATA_COMMENTS\tre-run of batch 2",
		"#METABOLITES",
		"METABOLITES_START",
		"metabolite_name\tmoverz_quant",
		"Glucose\t181.07",
		"METABOLITES_END",
		"#END",
	}, "\n") + "\n"
	doc, err := parseFixture(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out1, err := doc.WriteString(FormatMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	comments := strings.Index(out1, "MS_METABOLITE_DATA_COMMENTS")
	metabolites := strings.Index(out1, "#METABOLITES")
	if comments < 0 || metabolites < 0 || comments > metabolites {
		t.Fatalf("expected the stray item between the data and metabolites blocks:\n%s", out1)
	}

	doc2, err := parseFixture(out1)
	if err != nil {
		t.Fatalf("reparse failed: %v\n%s", err, out1)
	}
	out2, err := doc2.WriteString(FormatMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(out1, out2); diff != "" {
		t.Fatalf("second write differs from first (-first +second):\n%s", diff)
	}
}

func TestWriteString_UnknownFormat(t *testing.T) {
	doc := NewDocument("in-memory")
	if _, err := doc.WriteString("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestWrite_MatchesWriteString(t *testing.T) {
	doc, err := parseFixture(passingMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := doc.WriteString(FormatMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var b strings.Builder
	if err := doc.Write(&b, FormatMwTab); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Fatalf("Write and WriteString disagree (-want +got):\n%s", diff)
	}
}

func TestWriteString_ResultsFileLine(t *testing.T) {
	text := strings.Replace(passingMwTab,
		"MS:ION_MODE"+sp(22)+"\tPositive",
		"MS:ION_MODE"+sp(22)+"\tPositive\n"+
			"MS:MS_RESULTS_FILE"+sp(15)+"\tST000001_AN000001_Results.txt\tUNITS:Peak area",
		1)
	doc, err := parseFixture(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := doc.WriteString(FormatMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(text, out); diff != "" {
		t.Fatalf("output differs from input (-want +got):\n%s", diff)
	}
}
