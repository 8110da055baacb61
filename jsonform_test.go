package mwtab

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteString_JSONRoundTrip(t *testing.T) {
	doc, err := parseFixture(passingMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jsonOut, err := doc.WriteString(FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc2, err := Parse("ST000001_AN000001.json", []byte(jsonOut))
	if err != nil {
		t.Fatalf("parsing structured form failed: %v\n%s", err, jsonOut)
	}
	if got := doc2.InputFormat(); got != FormatJSON {
		t.Fatalf("expected json input format, got %q", got)
	}
	mwOut, err := doc2.WriteString(FormatMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(passingMwTab, mwOut); diff != "" {
		t.Fatalf("mwtab->json->mwtab changed the document (-want +got):\n%s", diff)
	}
}

func TestWriteString_JSONIdempotent(t *testing.T) {
	doc, err := parseFixture(passingMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out1, err := doc.WriteString(FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc2, err := Parse("ST000001_AN000001.json", []byte(out1))
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	out2, err := doc2.WriteString(FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(out1, out2); diff != "" {
		t.Fatalf("second write differs from first (-first +second):\n%s", diff)
	}
}

func TestWriteString_JSONShape(t *testing.T) {
	doc, err := parseFixture(passingMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := doc.WriteString(FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		`    "PROJECT": {`,
		`        "PROJECT_TITLE": "Quantitative profiling of plasma metabolites"`,
		`    "SUBJECT_SAMPLE_FACTORS": [`,
		`            "Subject ID": "-"`,
		`            "Sample ID": "S-1"`,
		`        "Units": "peak area"`,
		`        "Data": [`,
		`        "Metabolites": [`,
		`                "Metabolite": "Glucose"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestWriteString_BinnedJSON(t *testing.T) {
	doc, err := parseFixture(binnedMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jsonOut, err := doc.WriteString(FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(jsonOut, `"Bin range(ppm)": "0.52-0.56"`) {
		t.Fatalf("expected bin label under the binned key:\n%s", jsonOut)
	}
	if strings.Contains(jsonOut, `"Metabolite": "0.52-0.56"`) {
		t.Fatalf("expected no Metabolite mirror in structured output:\n%s", jsonOut)
	}

	doc2, err := Parse("ST000002_AN000002.json", []byte(jsonOut))
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	mwOut, err := doc2.WriteString(FormatMwTab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(binnedMwTab, mwOut); diff != "" {
		t.Fatalf("binned mwtab->json->mwtab changed the document (-want +got):\n%s", diff)
	}
}

func TestParse_JSONSectionOrderPreserved(t *testing.T) {
	data := []byte(`{
    "STUDY": {
        "STUDY_TITLE": "Plasma metabolite changes"
    },
    "METABOLOMICS WORKBENCH": {
        "STUDY_ID": "ST000001",
        "VERSION": "1"
    }
}`)
	doc, err := Parse("reordered.json", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := doc.SectionNames()
	if len(names) != 2 || names[0] != "STUDY" || names[1] != "METABOLOMICS WORKBENCH" {
		t.Fatalf("expected input order preserved, got %v", names)
	}
	if got := doc.StudyID(); got != "ST000001" {
		t.Fatalf("expected ST000001, got %q", got)
	}
}

func TestParse_JSONScalarCoercion(t *testing.T) {
	data := []byte(`{
    "METABOLOMICS WORKBENCH": {
        "STUDY_ID": "ST000001",
        "VERSION": 1,
        "DATATRACK_ID": 2051
    }
}`)
	doc, err := Parse("numbers.json", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields := doc.Item("METABOLOMICS WORKBENCH").Fields
	if got := fields.Value("VERSION"); got != "1" {
		t.Fatalf("expected number coerced to string, got %q", got)
	}
	if got := fields.Value("DATATRACK_ID"); got != "2051" {
		t.Fatalf("expected number coerced to string, got %q", got)
	}
}

func TestParse_JSONBadSectionShape(t *testing.T) {
	_, err := Parse("bad.json", []byte(`{"PROJECT": []}`))
	if err == nil || !strings.Contains(err.Error(), "not an object") {
		t.Fatalf("expected section shape error, got %v", err)
	}
}

func TestParse_JSONTrailingContent(t *testing.T) {
	_, err := Parse("trailing.json", []byte(`{"PROJECT": {}} trailing`))
	if err == nil {
		t.Fatalf("expected an error for trailing content")
	}
}

func TestParse_JSONResultsFileFlattened(t *testing.T) {
	data := []byte(`{
    "METABOLOMICS WORKBENCH": {
        "STUDY_ID": "ST000001"
    },
    "MS": {
        "MS_TYPE": "ESI",
        "MS_RESULTS_FILE": "ST000001_AN000001_Results.txt UNITS:Peak area"
    }
}`)
	doc, err := Parse("results.json", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rf := doc.Item("MS").File("MS_RESULTS_FILE")
	if rf == nil {
		t.Fatalf("expected parsed results file composite")
	}
	if rf.Filename != "ST000001_AN000001_Results.txt" || rf.Units != "Peak area" {
		t.Fatalf("unexpected composite: %+v", rf)
	}

	out, err := doc.WriteString(FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"MS_RESULTS_FILE": "ST000001_AN000001_Results.txt UNITS:Peak area"`) {
		t.Fatalf("expected flattened composite in structured output:\n%s", out)
	}
}
