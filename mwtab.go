// Package mwtab parses, serializes, and validates Metabolomics Workbench
// mwTab documents. A document is an ordered collection of named sections:
// plain key-value sections (PROJECT, STUDY, MS, ...), the
// SUBJECT_SAMPLE_FACTORS row list, and a single data section
// (MS_METABOLITE_DATA, NMR_METABOLITE_DATA, or NMR_BINNED_DATA) carrying
// tabular blocks. Parsing preserves enough structure that a canonicalized
// document serializes back to the same bytes.
package mwtab

import (
	"errors"
	"strings"
)

// Sentinel errors.
var (
	ErrBlankInput           = errors.New("blank input")
	ErrUnknownFormat        = errors.New("unknown file format")
	ErrMissingHeaderSection = errors.New("missing #METABOLOMICS WORKBENCH header section")
	ErrOrphanMetabolites    = errors.New("METABOLITES section without a preceding data section")
)

// Version is reported in validation logs.
const Version = "1.0.0"

// Input and output format names accepted by Parse and WriteString.
const (
	FormatMwTab = "mwtab"
	FormatJSON  = "json"
)

// Section line prefixes used when writing item keys back out.
var prefixes = map[string]string{
	"METABOLOMICS WORKBENCH": "",
	"PROJECT":                "PR:",
	"STUDY":                  "ST:",
	"SUBJECT":                "SU:",
	"SUBJECT_SAMPLE_FACTORS": "",
	"COLLECTION":             "CO:",
	"TREATMENT":              "TR:",
	"SAMPLEPREP":             "SP:",
	"CHROMATOGRAPHY":         "CH:",
	"ANALYSIS":               "AN:",
	"MS":                     "MS:",
	"NMR":                    "NM:",
	"NM":                     "NM:",
}

// The three recognized data section names.
var dataSectionNames = map[string]bool{
	"MS_METABOLITE_DATA":  true,
	"NMR_METABOLITE_DATA": true,
	"NMR_BINNED_DATA":     true,
}

// SectionKind discriminates Section variants.
type SectionKind int

const (
	KindItem SectionKind = iota
	KindList
	KindData
)

// Section is one named block of a Document.
type Section interface {
	Kind() SectionKind
}

// ResultsFile is the structured form of a *_RESULTS_FILE line.
type ResultsFile struct {
	Filename string
	Units    string
	HasMZ    string
	HasRT    string
	RTUnits  string
}

// String joins the populated parts with sep, filename first, in the fixed
// UNITS / Has m/z / Has RT / RT units order.
func (rf *ResultsFile) String(sep string) string {
	parts := make([]string, 0, 5)
	if rf.Filename != "" {
		parts = append(parts, rf.Filename)
	}
	if rf.Units != "" {
		parts = append(parts, "UNITS:"+rf.Units)
	}
	if rf.HasMZ != "" {
		parts = append(parts, "Has m/z:"+rf.HasMZ)
	}
	if rf.HasRT != "" {
		parts = append(parts, "Has RT:"+rf.HasRT)
	}
	if rf.RTUnits != "" {
		parts = append(parts, "RT units:"+rf.RTUnits)
	}
	return strings.Join(parts, sep)
}

// Empty reports whether no part of the composite is populated.
func (rf *ResultsFile) Empty() bool {
	return rf == nil || (rf.Filename == "" && rf.Units == "" && rf.HasMZ == "" && rf.HasRT == "" && rf.RTUnits == "")
}

// ItemSection holds key-value pairs of a metadata section. Results-file
// composites keep their position in Fields (with an empty placeholder
// value); the structured value lives in Files.
type ItemSection struct {
	Fields *Multimap
	Files  map[string]*ResultsFile
}

// NewItemSection returns an empty ItemSection.
func NewItemSection() *ItemSection {
	return &ItemSection{Fields: NewMultimap()}
}

func (s *ItemSection) Kind() SectionKind { return KindItem }

// SetFile stores a results-file composite under key, keeping key ordering
// in Fields.
func (s *ItemSection) SetFile(key string, rf *ResultsFile) {
	if s.Files == nil {
		s.Files = make(map[string]*ResultsFile)
	}
	if !s.Fields.Has(key) {
		s.Fields.Add(key, "")
	}
	s.Files[key] = rf
}

// File returns the results-file composite stored under key.
func (s *ItemSection) File(key string) *ResultsFile {
	return s.Files[key]
}

// FileKey returns the first key holding a results-file composite, or "".
func (s *ItemSection) FileKey() string {
	for _, key := range s.Fields.Keys() {
		if _, ok := s.Files[key]; ok {
			return key
		}
	}
	return ""
}

// SubjectSampleFactor is one row of the SUBJECT_SAMPLE_FACTORS section.
type SubjectSampleFactor struct {
	SubjectID  string
	SampleID   string
	Factors    *Multimap
	Additional *Multimap // nil when the row has no additional data
}

// ListSection holds the SUBJECT_SAMPLE_FACTORS rows.
type ListSection struct {
	Rows []*SubjectSampleFactor
}

func (s *ListSection) Kind() SectionKind { return KindList }

// SampleIDs returns the Sample ID of every row, in order.
func (s *ListSection) SampleIDs() []string {
	out := make([]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		out = append(out, row.SampleID)
	}
	return out
}

// DataSection holds the tabular *_START/*_END blocks of a data section.
// A nil table slice means the block was absent from the input; an empty
// non-nil slice means the block was present but had no data rows.
type DataSection struct {
	Units       string
	HasUnits    bool
	Data        []*Multimap
	Metabolites []*Multimap
	Extended    []*Multimap
	Extra       *Multimap               // stray item keys found inside the section
	Files       map[string]*ResultsFile // misplaced results-file lines, pre-relocation

	// Member insertion order as read from the input: "Units", table names,
	// and stray item keys. Empty for documents built programmatically.
	order []string
}

// NewDataSection returns an empty DataSection.
func NewDataSection() *DataSection {
	return &DataSection{Extra: NewMultimap()}
}

func (s *DataSection) Kind() SectionKind { return KindData }

// Table returns the named table ("Data", "Metabolites", or "Extended").
func (s *DataSection) Table(name string) []*Multimap {
	switch name {
	case "Data":
		return s.Data
	case "Metabolites":
		return s.Metabolites
	case "Extended":
		return s.Extended
	}
	return nil
}

// Document is a parsed mwTab file.
type Document struct {
	Source string

	names    []string
	sections map[string]Section

	// Side channels captured while building, used to reproduce the input
	// exactly on write and consulted by the validator.
	samples           []string
	rawSamples        []string
	factors           map[string]*Multimap // sample -> parsed Factors line pairs
	metaboliteHeader  []string
	rawMetabolHeader  []string
	extendedHeader    []string
	rawExtendedHeader []string
	binnedHeader      []string
	rawBinnedHeader   []string
	shortHeaders      map[string]bool
	duplicateSubSects map[string]*Multimap
	inputFormat       string
}

// NewDocument returns an empty Document for source.
func NewDocument(source string) *Document {
	return &Document{
		Source:            source,
		sections:          make(map[string]Section),
		shortHeaders:      make(map[string]bool),
		duplicateSubSects: make(map[string]*Multimap),
		inputFormat:       FormatJSON,
	}
}

// SectionNames returns the section names in document order.
func (d *Document) SectionNames() []string {
	return append([]string(nil), d.names...)
}

// Section returns the named section, or nil.
func (d *Document) Section(name string) Section {
	return d.sections[name]
}

// SetSection stores a section, appending the name when new.
func (d *Document) SetSection(name string, s Section) {
	if _, ok := d.sections[name]; !ok {
		d.names = append(d.names, name)
	}
	d.sections[name] = s
}

// DeleteSection removes the named section.
func (d *Document) DeleteSection(name string) {
	if _, ok := d.sections[name]; !ok {
		return
	}
	delete(d.sections, name)
	for i, n := range d.names {
		if n == name {
			d.names = append(d.names[:i], d.names[i+1:]...)
			break
		}
	}
}

// Item returns the named section as an ItemSection, or nil.
func (d *Document) Item(name string) *ItemSection {
	s, _ := d.sections[name].(*ItemSection)
	return s
}

// SampleFactors returns the SUBJECT_SAMPLE_FACTORS section, or nil.
func (d *Document) SampleFactors() *ListSection {
	s, _ := d.sections["SUBJECT_SAMPLE_FACTORS"].(*ListSection)
	return s
}

// DataSectionKey returns the name of the data section present in the
// document ("MS_METABOLITE_DATA", "NMR_METABOLITE_DATA", or
// "NMR_BINNED_DATA"), or "" when none exists.
func (d *Document) DataSectionKey() string {
	for _, name := range d.names {
		if dataSectionNames[name] {
			return name
		}
	}
	return ""
}

// DataSection returns the document's data section, or nil.
func (d *Document) DataSection() *DataSection {
	key := d.DataSectionKey()
	if key == "" {
		return nil
	}
	s, _ := d.sections[key].(*DataSection)
	return s
}

// StudyID returns the STUDY_ID field of the header section, or "".
func (d *Document) StudyID() string {
	if s := d.Item("METABOLOMICS WORKBENCH"); s != nil {
		return s.Fields.Value("STUDY_ID")
	}
	return ""
}

// AnalysisID returns the ANALYSIS_ID field of the header section, or "".
func (d *Document) AnalysisID() string {
	if s := d.Item("METABOLOMICS WORKBENCH"); s != nil {
		return s.Fields.Value("ANALYSIS_ID")
	}
	return ""
}

// HeaderLine rebuilds the "#METABOLOMICS WORKBENCH ..." banner from the
// header section, excluding VERSION and CREATED_ON.
func (d *Document) HeaderLine() string {
	s := d.Item("METABOLOMICS WORKBENCH")
	if s == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("#METABOLOMICS WORKBENCH")
	for _, p := range s.Fields.Pairs() {
		if p.Key == "VERSION" || p.Key == "CREATED_ON" {
			continue
		}
		b.WriteString(" ")
		b.WriteString(p.Key)
		b.WriteString(":")
		b.WriteString(p.Value)
	}
	return b.String()
}

// InputFormat reports the format the document was read from, "mwtab" or
// "json".
func (d *Document) InputFormat() string {
	return d.inputFormat
}

// Samples returns the sample column names of the Data table (without the
// leading label column).
func (d *Document) Samples() []string {
	return append([]string(nil), d.samples...)
}

// Canonical section order for serialization. Unknown sections keep their
// relative order after these.
var sectionOrder = []string{
	"METABOLOMICS WORKBENCH",
	"PROJECT",
	"STUDY",
	"SUBJECT",
	"SUBJECT_SAMPLE_FACTORS",
	"COLLECTION",
	"TREATMENT",
	"SAMPLEPREP",
	"CHROMATOGRAPHY",
	"ANALYSIS",
	"MS",
	"NM",
	"MS_METABOLITE_DATA",
	"NMR_METABOLITE_DATA",
	"NMR_BINNED_DATA",
}

// Canonicalize reorders sections, SUBJECT_SAMPLE_FACTORS row keys, and
// table row keys into the fixed serialization order. Both serializers call
// it, so writing is stable regardless of input arrangement.
func (d *Document) Canonicalize() {
	rank := make(map[string]int, len(sectionOrder))
	for i, name := range sectionOrder {
		rank[name] = i
	}
	ordered := make([]string, 0, len(d.names))
	for _, name := range sectionOrder {
		if _, ok := d.sections[name]; ok {
			ordered = append(ordered, name)
		}
	}
	for _, name := range d.names {
		if _, known := rank[name]; !known {
			ordered = append(ordered, name)
		}
	}
	d.names = ordered

	if ds := d.DataSection(); ds != nil {
		for _, table := range [][]*Multimap{ds.Data, ds.Metabolites, ds.Extended} {
			for _, row := range table {
				row.Reorder([]string{"Metabolite", "Bin range(ppm)"})
			}
		}
	}
}

// Parse reads an mwTab document from data, sniffing the input format.
// Native text is recognized by its "#METABOLOMICS WORKBENCH" first line;
// anything else is tried as the structured JSON form.
func Parse(source string, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, ErrBlankInput
	}
	text := string(data)

	if mwtabText, ok := sniffMwTab(text); ok {
		doc := NewDocument(source)
		doc.inputFormat = FormatMwTab
		if err := doc.build(NewTokenizer(mwtabText)); err != nil {
			return nil, err
		}
		return doc, nil
	}

	// Not native text: try the structured form. Anything that is not
	// syntactically JSON is an unknown format; structurally invalid JSON
	// reports its own error.
	tree, err := decodeOrderedJSON(data)
	if err != nil {
		return nil, ErrUnknownFormat
	}
	return documentFromJSON(source, tree)
}

// sniffMwTab reports whether text is native mwTab, returning the text with
// carriage returns normalized and blank lines removed.
func sniffMwTab(text string) (string, bool) {
	lines := strings.Split(strings.ReplaceAll(text, "\r", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line != "" {
			kept = append(kept, line)
		}
	}
	if len(kept) == 0 || !strings.HasPrefix(kept[0], "#METABOLOMICS WORKBENCH") {
		return "", false
	}
	return strings.Join(kept, "\n"), true
}
