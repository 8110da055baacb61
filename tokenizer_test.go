package mwtab

import (
	"errors"
	"testing"
)

func readTokens(t *testing.T, text string) []Token {
	t.Helper()
	tz := NewTokenizer(text)
	var out []Token
	for {
		tok, err := tz.Next()
		if err != nil {
			t.Fatalf("unexpected tokenize error: %v", err)
		}
		out = append(out, tok)
		if tok.Type == TokEndOfFile {
			return out
		}
	}
}

func TestTokenizer_WorkbenchBanner(t *testing.T) {
	tokens := readTokens(t, "#METABOLOMICS WORKBENCH STUDY_ID:ST000001 ANALYSIS_ID:AN000001")

	if tokens[0].Type != TokSectionHeader || tokens[0].Key != "METABOLOMICS WORKBENCH" {
		t.Fatalf("expected workbench section header, got %+v", tokens[0])
	}
	if tokens[1].Type != TokKeyValue || tokens[1].Key != "STUDY_ID" || tokens[1].Value != "ST000001" {
		t.Fatalf("expected STUDY_ID key value, got %+v", tokens[1])
	}
	if tokens[2].Key != "ANALYSIS_ID" || tokens[2].Value != "AN000001" {
		t.Fatalf("expected ANALYSIS_ID key value, got %+v", tokens[2])
	}
}

func TestTokenizer_ItemLines(t *testing.T) {
	text := "#METABOLOMICS WORKBENCH STUDY_ID:ST000001\n" +
		"VERSION   \t 1 \n" +
		"#PROJECT\n" +
		"PR:PROJECT_TITLE      \tPlasma profiling\n" +
		"MS_METABOLITE_DATA:UNITS\tpeak area"
	tokens := readTokens(t, text)

	var kvs []Token
	for _, tok := range tokens {
		if tok.Type == TokKeyValue {
			kvs = append(kvs, tok)
		}
	}
	// STUDY_ID from the banner, then the three item lines.
	if len(kvs) != 4 {
		t.Fatalf("expected 4 key-value tokens, got %d: %+v", len(kvs), kvs)
	}
	if kvs[1].Key != "VERSION" || kvs[1].Value != "1" {
		t.Fatalf("expected bare key and value to be trimmed, got %+v", kvs[1])
	}
	if kvs[2].Key != "PROJECT_TITLE" || kvs[2].Value != "Plasma profiling" {
		t.Fatalf("expected prefixed key stripped to PROJECT_TITLE, got %+v", kvs[2])
	}
	if kvs[3].Key != "Units" || kvs[3].Value != "peak area" {
		t.Fatalf("expected :UNITS spelling to map to Units, got %+v", kvs[3])
	}
}

func TestTokenizer_ItemLineMissingTab(t *testing.T) {
	tz := NewTokenizer("#PROJECT\nPR:PROJECT_TITLE only spaces here")
	if _, err := tz.Next(); err != nil { // EndOfSection for #PROJECT
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tz.Next(); err != nil { // section header
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := tz.Next()
	var terr *TokenizeError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TokenizeError, got %v", err)
	}
	if terr.Line != 2 {
		t.Fatalf("expected error on line 2, got %d", terr.Line)
	}
}

func TestTokenizer_SampleFactorRow(t *testing.T) {
	text := "SUBJECT_SAMPLE_FACTORS           \tSubject1\tS-1\tGender:Male | Time:0 min\tAge=34; BMI=22.5"
	tokens := readTokens(t, text)

	tok := tokens[0]
	if tok.Type != TokSampleFactor {
		t.Fatalf("expected sample factor token, got %+v", tok)
	}
	row := tok.Row
	if row.SubjectID != "Subject1" || row.SampleID != "S-1" {
		t.Fatalf("unexpected ids: %+v", row)
	}
	if got := row.Factors.Value("Gender"); got != "Male" {
		t.Fatalf("expected Gender Male, got %q", got)
	}
	if got := row.Factors.Value("Time"); got != "0 min" {
		t.Fatalf("expected Time 0 min, got %q", got)
	}
	if row.Additional == nil {
		t.Fatalf("expected additional data")
	}
	if got := row.Additional.Value("BMI"); got != "22.5" {
		t.Fatalf("expected BMI 22.5, got %q", got)
	}
}

func TestTokenizer_SampleFactorRowNoAdditional(t *testing.T) {
	tokens := readTokens(t, "SUBJECT_SAMPLE_FACTORS\t-\tS-1\tGender:Male\t")
	row := tokens[0].Row
	if row.Additional != nil {
		t.Fatalf("expected no additional data for trailing empty field, got %+v", row.Additional)
	}
}

func TestTokenizer_SampleFactorRowTooShort(t *testing.T) {
	tz := NewTokenizer("SUBJECT_SAMPLE_FACTORS\t-\tS-1")
	_, err := tz.Next()
	var terr *TokenizeError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TokenizeError, got %v", err)
	}
}

func TestTokenizer_Block(t *testing.T) {
	text := "MS_METABOLITE_DATA_START\n" +
		"Samples\tS-1\tS-2\n" +
		"\"Glucose \"\t1.0\t2.0\n" +
		"MS_METABOLITE_DATA_END"
	tokens := readTokens(t, text)

	if tokens[0].Type != TokBlockStart || tokens[0].Key != "MS_METABOLITE_DATA_START" {
		t.Fatalf("expected block start, got %+v", tokens[0])
	}
	if tokens[1].Type != TokTableRow || tokens[1].Key != "Samples" {
		t.Fatalf("expected header row, got %+v", tokens[1])
	}
	if tokens[2].Cells[0] != "Glucose" {
		t.Fatalf("expected quotes and spaces trimmed, got %q", tokens[2].Cells[0])
	}
	if tokens[3].Type != TokBlockEnd || tokens[3].Key != "MS_METABOLITE_DATA_END" {
		t.Fatalf("expected block end, got %+v", tokens[3])
	}
}

func TestTokenizer_UnterminatedBlock(t *testing.T) {
	tz := NewTokenizer("MS_METABOLITE_DATA_START\nGlucose\t1.0")
	var err error
	for err == nil {
		var tok Token
		tok, err = tz.Next()
		if err == nil && tok.Type == TokEndOfFile {
			t.Fatalf("expected an error before end of file")
		}
	}
	var terr *TokenizeError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TokenizeError, got %v", err)
	}
}

func TestTokenizer_ResultsFileMarkers(t *testing.T) {
	text := "MS:MS_RESULTS_FILE\tST000001_AN000001_Results.txt\tUNITS:Peak area\tHas m/z:Yes\tHas RT:Yes\tRT units:Minutes"
	tokens := readTokens(t, text)

	tok := tokens[0]
	if tok.Type != TokResultsFile || tok.Key != "MS_RESULTS_FILE" {
		t.Fatalf("expected results file token, got %+v", tok)
	}
	rf := tok.File
	if rf.Filename != "ST000001_AN000001_Results.txt" {
		t.Fatalf("expected filename, got %q", rf.Filename)
	}
	if rf.Units != "Peak area" || rf.HasMZ != "Yes" || rf.HasRT != "Yes" || rf.RTUnits != "Minutes" {
		t.Fatalf("unexpected marker values: %+v", rf)
	}
}

func TestTokenizer_ResultsFileFilenameOnly(t *testing.T) {
	tokens := readTokens(t, "NM:NMR_RESULTS_FILE\tST000002_AN000002.zip")
	rf := tokens[0].File
	if rf.Filename != "ST000002_AN000002.zip" {
		t.Fatalf("expected bare filename, got %q", rf.Filename)
	}
	if rf.Units != "" || rf.HasMZ != "" {
		t.Fatalf("expected no marker values, got %+v", rf)
	}
}

func TestTokenizer_StreamTail(t *testing.T) {
	tz := NewTokenizer("#PROJECT\nPR:INSTITUTE\tUK")
	var last Token
	for {
		tok, err := tz.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.Type == TokEndOfFile {
			last = tok
			break
		}
		last = tok
	}
	if last.Type != TokEndOfFile {
		t.Fatalf("expected end of file, got %+v", last)
	}
	// Further calls keep returning the terminal token.
	tok, err := tz.Next()
	if err != nil || tok.Type != TokEndOfFile {
		t.Fatalf("expected repeated end of file, got %+v, %v", tok, err)
	}
}

func TestTokenizer_DOSLineEndings(t *testing.T) {
	tokens := readTokens(t, "#PROJECT\r\nPR:INSTITUTE\tUK\r\n")
	var kv *Token
	for i := range tokens {
		if tokens[i].Type == TokKeyValue {
			kv = &tokens[i]
		}
	}
	if kv == nil || kv.Key != "INSTITUTE" || kv.Value != "UK" {
		t.Fatalf("expected INSTITUTE key value, got %+v", kv)
	}
}
