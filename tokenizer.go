package mwtab

import (
	"fmt"
	"strings"
)

// TokenType identifies tokenizer token kinds.
type TokenType int

const (
	TokSectionHeader TokenType = iota // "#SECTION" line, Key holds the bare name
	TokEndOfSection                   // synthesized before each new section and at end of input
	TokKeyValue                       // "KEY<tab>value" item line
	TokSampleFactor                   // SUBJECT_SAMPLE_FACTORS row
	TokBlockStart                     // "*_START" line
	TokTableRow                       // tab-split row inside a *_START block
	TokBlockEnd                       // "*_END" line
	TokResultsFile                    // "*_RESULTS_FILE" composite item line
	TokEndOfFile                      // terminal token, always emitted last
)

// Token is one lexical unit of an mwTab document.
type Token struct {
	Type  TokenType
	Key   string
	Value string
	Cells []string             // table row cells, TokTableRow only
	Row   *SubjectSampleFactor // TokSampleFactor only
	File  *ResultsFile         // TokResultsFile only
	Line  int                  // 1-indexed source line
}

// TokenizeError reports a line the tokenizer could not interpret.
type TokenizeError struct {
	Message string
	Line    int
	Text    string
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("mwtab: tokenize error at line %d: %s\n\t%s", e.Line, e.Message, e.Text)
}

// Tokenizer scans mwTab text line by line. Tokens are pulled with Next;
// the stream always terminates with TokEndOfSection followed by
// TokEndOfFile, even when the trailing "#END" banner is missing.
type Tokenizer struct {
	lines   []string
	pos     int
	inBlock bool
	done    bool
	tailed  bool // EndOfSection tail emitted
	queue   []Token
}

// NewTokenizer returns a Tokenizer over text. Carriage returns are
// normalized away so DOS line endings tokenize identically.
func NewTokenizer(text string) *Tokenizer {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &Tokenizer{lines: strings.Split(text, "\n")}
}

// Next returns the next token. After TokEndOfFile every further call
// returns TokEndOfFile again.
func (t *Tokenizer) Next() (Token, error) {
	if len(t.queue) > 0 {
		tok := t.queue[0]
		t.queue = t.queue[1:]
		return tok, nil
	}
	if t.done {
		return Token{Type: TokEndOfFile, Line: t.pos}, nil
	}

	for t.pos < len(t.lines) {
		line := t.lines[t.pos]
		t.pos++
		lineNo := t.pos

		if t.inBlock {
			return t.scanBlockLine(line, lineNo)
		}
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "#METABOLOMICS WORKBENCH"):
			return t.scanWorkbenchHeader(line, lineNo)

		case strings.HasPrefix(line, "#SUBJECT_SAMPLE_FACTORS:"):
			t.queue = append(t.queue, Token{Type: TokSectionHeader, Key: "SUBJECT_SAMPLE_FACTORS", Line: lineNo})
			return Token{Type: TokEndOfSection, Line: lineNo}, nil

		case strings.HasPrefix(line, "#"):
			name := strings.TrimPrefix(strings.TrimSpace(line), "#")
			t.queue = append(t.queue, Token{Type: TokSectionHeader, Key: name, Line: lineNo})
			return Token{Type: TokEndOfSection, Line: lineNo}, nil

		case strings.HasPrefix(line, "SUBJECT_SAMPLE_FACTORS"):
			return t.scanSampleFactorLine(line, lineNo)

		case strings.HasSuffix(line, "_START"):
			t.inBlock = true
			return Token{Type: TokBlockStart, Key: line, Line: lineNo}, nil

		default:
			return t.scanItemLine(line, lineNo)
		}
	}

	if t.inBlock {
		t.done = true
		last := ""
		if len(t.lines) > 0 {
			last = t.lines[len(t.lines)-1]
		}
		return Token{}, &TokenizeError{Message: "data block not terminated by *_END", Line: len(t.lines), Text: last}
	}

	// End of input: close the open section, then terminate.
	if !t.tailed {
		t.tailed = true
		t.queue = append(t.queue, Token{Type: TokEndOfFile, Line: t.pos})
		t.done = true
		return Token{Type: TokEndOfSection, Line: t.pos}, nil
	}
	t.done = true
	return Token{Type: TokEndOfFile, Line: t.pos}, nil
}

// scanWorkbenchHeader splits the "#METABOLOMICS WORKBENCH ..." banner into
// the section header token plus one key-value token per "KEY:value" field.
func (t *Tokenizer) scanWorkbenchHeader(line string, lineNo int) (Token, error) {
	for _, field := range strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == '\t' }) {
		if colon := strings.IndexByte(field, ':'); colon >= 0 {
			t.queue = append(t.queue, Token{
				Type:  TokKeyValue,
				Key:   field[:colon],
				Value: field[colon+1:],
				Line:  lineNo,
			})
		}
	}
	return Token{Type: TokSectionHeader, Key: "METABOLOMICS WORKBENCH", Line: lineNo}, nil
}

func (t *Tokenizer) scanSampleFactorLine(line string, lineNo int) (Token, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 4 {
		return Token{}, &TokenizeError{Message: "SUBJECT_SAMPLE_FACTORS row has fewer than 4 tab-separated fields", Line: lineNo, Text: line}
	}

	row := &SubjectSampleFactor{
		SubjectID: fields[1],
		SampleID:  fields[2],
		Factors:   NewMultimap(),
	}
	for _, pair := range strings.Split(fields[3], " | ") {
		colon := strings.IndexByte(pair, ':')
		if colon < 0 {
			return Token{}, &TokenizeError{Message: "expected ':' in factor pair " + quote(pair), Line: lineNo, Text: line}
		}
		row.Factors.Add(strings.TrimSpace(pair[:colon]), strings.TrimSpace(pair[colon+1:]))
	}
	if len(fields) > 4 && fields[4] != "" {
		row.Additional = NewMultimap()
		for _, item := range strings.Split(fields[4], "; ") {
			eq := strings.IndexByte(item, '=')
			if eq < 0 {
				return Token{}, &TokenizeError{Message: "expected '=' in additional data pair " + quote(item), Line: lineNo, Text: line}
			}
			row.Additional.Add(strings.TrimSpace(item[:eq]), strings.TrimSpace(item[eq+1:]))
		}
	}
	return Token{Type: TokSampleFactor, Key: strings.TrimSpace(fields[0]), Row: row, Line: lineNo}, nil
}

// scanBlockLine handles rows between *_START and *_END. Cell values are
// stripped of surrounding double quotes and spaces.
func (t *Tokenizer) scanBlockLine(line string, lineNo int) (Token, error) {
	if strings.HasSuffix(line, "_END") {
		t.inBlock = false
		return Token{Type: TokBlockEnd, Key: strings.TrimSpace(line), Line: lineNo}, nil
	}
	cells := strings.Split(line, "\t")
	for i, c := range cells {
		cells[i] = strings.Trim(c, `" `)
	}
	return Token{Type: TokTableRow, Key: cells[0], Cells: cells, Line: lineNo}, nil
}

func (t *Tokenizer) scanItemLine(line string, lineNo int) (Token, error) {
	if strings.Contains(line, "_RESULTS_FILE") {
		fields := strings.Split(line, "\t")
		key := strings.TrimSpace(fields[0])
		if len(key) > 3 {
			key = key[3:] // drop the two-letter section prefix and colon
		}
		rf := parseResultsFileValue(strings.Join(fields[1:], "\t"))
		return Token{Type: TokResultsFile, Key: key, File: rf, Line: lineNo}, nil
	}

	tab := strings.IndexByte(line, '\t')
	if tab < 0 {
		return Token{}, &TokenizeError{Message: "expected a tab separating key and value", Line: lineNo, Text: line}
	}
	key, value := line[:tab], line[tab+1:]
	if strings.Contains(key, ":") {
		if strings.Contains(key, ":UNITS") {
			return Token{Type: TokKeyValue, Key: "Units", Value: value, Line: lineNo}, nil
		}
		key = strings.TrimSpace(key)
		if len(key) > 3 {
			key = key[3:]
		}
		return Token{Type: TokKeyValue, Key: key, Value: value, Line: lineNo}, nil
	}
	return Token{Type: TokKeyValue, Key: strings.TrimSpace(key), Value: strings.TrimSpace(value), Line: lineNo}, nil
}

// Markers recognized inside a *_RESULTS_FILE value. The filename is the
// whitespace-delimited word immediately before the first marker (or the
// last word when no marker is present); each marker's value runs until the
// next marker or end of line.
var resultsFileMarkers = []string{"UNITS", "Has m/z", "Has RT", "RT units"}

func parseResultsFileValue(s string) *ResultsFile {
	rf := &ResultsFile{}

	head := s
	if idx := firstMarkerIndex(s, 0, resultsFileMarkers); idx >= 0 {
		head = s[:idx]
	}
	if words := strings.Fields(head); len(words) > 0 {
		rf.Filename = words[len(words)-1]
	}

	rf.Units = markerValue(s, "UNITS")
	rf.HasMZ = markerValue(s, "Has m/z")
	rf.HasRT = markerValue(s, "Has RT")
	rf.RTUnits = markerValue(s, "RT units")
	return rf
}

// markerValue extracts the text after the last "marker:" occurrence, cut at
// the next different marker.
func markerValue(s, marker string) string {
	idx := strings.LastIndex(s, marker+":")
	if idx < 0 {
		return ""
	}
	rest := s[idx+len(marker)+1:]
	others := make([]string, 0, len(resultsFileMarkers)-1)
	for _, m := range resultsFileMarkers {
		if m != marker {
			others = append(others, m)
		}
	}
	if next := firstMarkerIndex(rest, 0, others); next >= 0 {
		rest = rest[:next]
	}
	return strings.TrimSpace(rest)
}

// firstMarkerIndex returns the lowest index at or after from where one of
// the markers appears preceded by whitespace, or -1.
func firstMarkerIndex(s string, from int, markers []string) int {
	best := -1
	for _, m := range markers {
		for idx := from; ; {
			i := strings.Index(s[idx:], m)
			if i < 0 {
				break
			}
			abs := idx + i
			if abs > 0 && (s[abs-1] == ' ' || s[abs-1] == '\t') {
				if best < 0 || abs < best {
					best = abs
				}
				break
			}
			idx = abs + len(m)
		}
	}
	return best
}

func quote(s string) string {
	return `"` + s + `"`
}
