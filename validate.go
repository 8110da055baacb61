package mwtab

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Finding is one validation issue. Messages starting with "Warning"
// are advisory; everything else is an error.
type Finding struct {
	Message    string
	Section    string
	SubSection string
	ID         string
	Name       string
	Tags       []string
}

// IsWarning reports whether the finding is advisory.
func (f Finding) IsWarning() bool {
	return strings.HasPrefix(f.Message, "Warning")
}

// Report is the outcome of validating a document.
type Report struct {
	Source      string
	StudyID     string
	AnalysisID  string
	FileFormat  string
	GeneratedAt time.Time
	Findings    []Finding
}

// Passing reports whether validation produced no findings.
func (r *Report) Passing() bool {
	return len(r.Findings) == 0
}

func (r *Report) tagCount(tag string) int {
	n := 0
	for _, f := range r.Findings {
		for _, t := range f.Tags {
			if t == tag {
				n++
			}
		}
	}
	return n
}

// String renders the validation log.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Validation Log\n%s\nmwtab Library Version: %s\n",
		r.GeneratedAt.Format("2006-01-02 15:04:05.000000"), Version)
	fmt.Fprintf(&b, "Source:        %s\n", r.Source)
	fmt.Fprintf(&b, "Study ID:      %s\n", r.StudyID)
	fmt.Fprintf(&b, "Analysis ID:   %s\n", r.AnalysisID)
	fmt.Fprintf(&b, "File format:   %s\n", r.FileFormat)

	if r.Passing() {
		b.WriteString("Status: Passing\n")
		return b.String()
	}

	warnings := 0
	messages := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		if f.IsWarning() {
			warnings++
		}
		messages = append(messages, f.Message)
	}
	b.WriteString("Status: Contains Validation Errors\n")
	fmt.Fprintf(&b, "Number of Issues: %d\n\n", len(r.Findings))
	fmt.Fprintf(&b, "Number of Warnings: %d\n\n", warnings)
	fmt.Fprintf(&b, "Number of Value Errors: %d\n\n", r.tagCount("value"))
	fmt.Fprintf(&b, "Number of Consistency Errors: %d\n\n", r.tagCount("consistency"))
	fmt.Fprintf(&b, "Number of Format Errors: %d\n\n", r.tagCount("format"))
	b.WriteString("Issue Log:\n")
	b.WriteString(strings.Join(messages, "\n"))
	b.WriteString("\n")
	return b.String()
}

// Validate runs every validation stage over the document and returns the
// collected findings as a Report. The analysis kind is chosen from the
// sections present: an NM section selects the NMR schema, otherwise the
// mass spec schema is used.
func Validate(doc *Document) *Report {
	r := &Report{
		Source:      doc.Source,
		StudyID:     doc.StudyID(),
		AnalysisID:  doc.AnalysisID(),
		FileFormat:  fileFormat(doc),
		GeneratedAt: time.Now(),
	}
	v := &validator{doc: doc, mw: doc.InputFormat() == FormatMwTab}

	spec := msDocumentSpec
	if doc.Section("NM") != nil {
		spec = nmrDocumentSpec
	} else if doc.Section("MS") == nil {
		r.Findings = append(r.Findings, Finding{
			Message: `Error: No "MS" or "NM" section was found, ` +
				`so analysis type could not be determined. ` +
				`Mass spec will be assumed.`,
			Tags: []string{"format"}, ID: "32", Name: "No MS or NM Section",
		})
	}
	r.Findings = append(r.Findings, v.validateSchema(spec)...)

	r.Findings = append(r.Findings, v.validateSubjectSampleFactors()...)
	r.Findings = append(r.Findings, v.validateFactors()...)

	if key := doc.DataSectionKey(); key != "" {
		section := doc.DataSection()
		r.Findings = append(r.Findings, v.validateData(key, section)...)

		if key == "MS_METABOLITE_DATA" || key == "NMR_METABOLITE_DATA" {
			if section.Metabolites != nil {
				r.Findings = append(r.Findings, v.validateMetabolites(key, section)...)
			} else {
				location := "METABOLITES"
				if !v.mw {
					location = fmt.Sprintf("[%q][\"Metabolites\"]", key)
				}
				r.Findings = append(r.Findings, Finding{
					Message: fmt.Sprintf("Warning: Missing %s section.", location),
					Section: key,
					Tags:    []string{"format"}, ID: "33", Name: "Missing METABOLITES Section",
				})
			}
		}
		if section.Extended != nil {
			r.Findings = append(r.Findings, v.validateExtended(key, section)...)
		}
		r.Findings = append(r.Findings, v.validateMetaboliteNames(key, section)...)
		r.Findings = append(r.Findings, v.validateTableValues(key, section)...)
		r.Findings = append(r.Findings, v.validatePolarity(key, section)...)
	}

	r.Findings = append(r.Findings, v.validateHeaderLengths()...)
	r.Findings = append(r.Findings, v.validateSubSectionUniqueness()...)
	return r
}

// fileFormat derives the log's "File format" line from the source name.
func fileFormat(doc *Document) string {
	if strings.Contains(doc.Source, "https://www.metabolomicsworkbench.org/") {
		parts := strings.Split(doc.Source, "/")
		return parts[len(parts)-1]
	}
	if parts := strings.Split(doc.Source, "."); len(parts) > 1 {
		return parts[1]
	}
	return doc.InputFormat()
}

type validator struct {
	doc *Document
	mw  bool // document was read from mwtab text rather than JSON
}

// ----------------------------------------------------------------------
// Tables.

// dataTable is a tabular view over a block's rows. Columns come from the
// first row's keys, preserving duplicate names.
type dataTable struct {
	columns []string
	rows    []*Multimap
}

func newDataTable(rows []*Multimap) *dataTable {
	t := &dataTable{rows: rows}
	if len(rows) > 0 {
		for _, p := range rows[0].Pairs() {
			t.columns = append(t.columns, p.Key)
		}
	}
	return t
}

func (t *dataTable) empty() bool { return len(t.rows) == 0 }

func (t *dataTable) hasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// columnIndex returns the first position of name, or -1.
func (t *dataTable) columnIndex(name string) int {
	for i, c := range t.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// columnValuesAt returns the values of the column at index i, resolving
// duplicate names to the matching occurrence within each row.
func (t *dataTable) columnValuesAt(i int) []string {
	name := t.columns[i]
	occurrence := 0
	for _, c := range t.columns[:i] {
		if c == name {
			occurrence++
		}
	}
	out := make([]string, len(t.rows))
	for r, row := range t.rows {
		vals := row.Values(name)
		if occurrence < len(vals) {
			out[r] = vals[occurrence]
		}
	}
	return out
}

func (t *dataTable) columnValues(name string) []string {
	i := t.columnIndex(name)
	if i < 0 {
		return nil
	}
	return t.columnValuesAt(i)
}

func strippedColumn(t *dataTable, name string) []string {
	vals := t.columnValues(name)
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

var ordinalSuffixes = map[int]string{1: "st", 2: "nd", 3: "rd"}

func ordinal(n int) string {
	suffix := "th"
	if n%100 < 10 || n%100 > 20 {
		if s, ok := ordinalSuffixes[n%10]; ok {
			suffix = s
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// formatColumnName describes a column for an issue message. Duplicated
// names get an ordinal so the reader can tell which occurrence is meant.
func (t *dataTable) formatColumnName(index int) string {
	name := t.columns[index]
	total, nth := 0, 0
	for i, c := range t.columns {
		if c == name {
			total++
			if i < index {
				nth++
			}
		}
	}
	if total > 1 {
		return fmt.Sprintf("The %s %q column at position %d", ordinal(nth+1), name, index+1)
	}
	return fmt.Sprintf("The %q column at position %d", name, index+1)
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, "\n\t")
}

// ----------------------------------------------------------------------
// Schema validation.

func (v *validator) validateSchema(spec *documentSpec) []Finding {
	var out []Finding

	for _, name := range v.doc.SectionNames() {
		if !spec.knownSection(name) {
			out = append(out, Finding{
				Message: fmt.Sprintf("Error: Unknown or invalid section, %q.", name),
				Section: name,
				Tags:    []string{"format"}, ID: "24", Name: "JSON Schema Error: additionalProperties",
			})
		}
	}
	for _, name := range spec.required {
		if v.doc.Section(name) == nil {
			out = append(out, Finding{
				Message: fmt.Sprintf("Error: The required property, %q,  is missing.", name),
				Tags:    []string{"format"}, ID: "24", Name: "JSON Schema Error: required",
			})
		}
	}

	// A results file must stand in when no data section is present.
	hasData := false
	for name := range spec.dataSections {
		if v.doc.Section(name) != nil {
			hasData = true
		}
	}
	if !hasData {
		if analysis := v.doc.Item(spec.analysisSection); analysis != nil {
			if rf := analysis.File(spec.resultsFileKey); rf == nil || rf.Empty() {
				out = append(out, Finding{
					Message: spec.resultsFileMessage,
					Section: spec.analysisSection, SubSection: spec.resultsFileKey,
					Tags: []string{"format"}, ID: "24", Name: "JSON Schema Error: required",
				})
			}
		}
	}

	for _, name := range v.doc.SectionNames() {
		if name == "SUBJECT_SAMPLE_FACTORS" {
			out = append(out, v.validateSampleFactorsSchema()...)
			continue
		}
		if secSpec, ok := spec.sections[name]; ok {
			if item := v.doc.Item(name); item != nil {
				out = append(out, v.validateItemSchema(name, item, secSpec)...)
			}
			continue
		}
		if tableSpec, ok := spec.dataSections[name]; ok {
			if section, _ := v.doc.Section(name).(*DataSection); section != nil {
				out = append(out, v.validateDataSchema(name, section, tableSpec)...)
			}
		}
	}
	return out
}

// sectionPath describes a section in a message, mirroring the input
// format the document came from.
func (v *validator) sectionPath(section string) string {
	if v.mw {
		return fmt.Sprintf("in the %q section ", section)
	}
	return fmt.Sprintf("in [%q]", section)
}

func (v *validator) subsectionPath(section, key string) string {
	if !v.mw {
		return fmt.Sprintf("in [%q][%q]", section, key)
	}
	if section == "METABOLOMICS WORKBENCH" {
		return fmt.Sprintf("for %q in the file header", key)
	}
	return fmt.Sprintf("for the subsection, %q, in the %q section", key, section)
}

func (v *validator) requiredFinding(section, key string) Finding {
	return Finding{
		Message: fmt.Sprintf("Error: The required property, %q, %s is missing.",
			key, v.sectionPath(section)),
		Section: section,
		Tags:    []string{"format"}, ID: "24", Name: "JSON Schema Error: required",
	}
}

func (v *validator) unknownKeyFinding(section, key string) Finding {
	return Finding{
		Message: fmt.Sprintf("Error: Unknown or invalid subsection, %q, %s.",
			key, v.sectionPath(section)),
		Section: section, SubSection: key,
		Tags: []string{"format"}, ID: "24", Name: "JSON Schema Error: additionalProperties",
	}
}

func (v *validator) naFinding(section, key, path string, required bool) Finding {
	noun := "key"
	if v.mw {
		noun = "subsection"
	}
	msg := fmt.Sprintf("Error: An empty value or a null value was detected %s.", path)
	if required {
		msg += fmt.Sprintf(" A legitimate value should be provided for this required %s.", noun)
	} else {
		msg += fmt.Sprintf(" Either a legitimate value should be provided for this %s, or it should be removed altogether.", noun)
	}
	return Finding{
		Message: msg, Section: section, SubSection: key,
		Tags: []string{"value"}, ID: "24", Name: "JSON Schema Error: not",
	}
}

// valueFinding wraps a constraint message around the offending value.
// Long values are elided from the message.
func (v *validator) valueFinding(section, key, path, value, custom, kind string) Finding {
	var msg string
	if len(value) < 50 {
		msg = fmt.Sprintf("Error: The value, %q, %s%s", value, path, custom)
	} else {
		msg = fmt.Sprintf("Error: The value %s%s", path, custom)
	}
	return Finding{
		Message: msg, Section: section, SubSection: key,
		Tags: []string{"value"}, ID: "24", Name: "JSON Schema Error: " + kind,
	}
}

func reprList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func (v *validator) validateItemSchema(section string, item *ItemSection, spec *sectionSpec) []Finding {
	var out []Finding
	for _, req := range spec.required {
		if !item.Fields.Has(req) {
			out = append(out, v.requiredFinding(section, req))
		}
	}
	for _, key := range item.Fields.Keys() {
		fs, known := spec.fields[key]
		if !known {
			out = append(out, v.unknownKeyFinding(section, key))
			continue
		}
		if fs.file {
			if rf := item.File(key); rf != nil {
				out = append(out, v.validateResultsFile(section, key, rf)...)
			}
			continue
		}
		value := item.Fields.Value(key)
		path := v.subsectionPath(section, key)

		if fs.notNA && isNA(value) {
			out = append(out, v.naFinding(section, key, path, spec.isRequired(key)))
			continue
		}
		if fs.forbidden != nil {
			if isNA(value) {
				out = append(out, v.valueFinding(section, key, path, value,
					" is not one of "+reprList(naValues)+".", "enum"))
			} else if fs.forbidden.MatchString(value) {
				out = append(out, v.valueFinding(section, key, path, value,
					fs.forbiddenMessage, "pattern"))
			}
			continue
		}
		if len(fs.enum) > 0 {
			found := false
			for _, e := range fs.enum {
				if value == e {
					found = true
				}
			}
			if !found {
				out = append(out, v.valueFinding(section, key, path, value,
					" is not one of "+reprList(fs.enum)+".", "enum"))
			}
			continue
		}
		if fs.email && !strings.Contains(value, "@") {
			out = append(out, v.valueFinding(section, key, path, value,
				" is not a valid email.", "format"))
			continue
		}
		if fs.pattern != nil && !fs.pattern.MatchString(value) {
			out = append(out, v.valueFinding(section, key, path, value,
				fs.patternMessage, "pattern"))
		}
	}
	return out
}

func (v *validator) validateResultsFile(section, key string, rf *ResultsFile) []Finding {
	var out []Finding
	attrPath := func(attr string) string {
		if v.mw {
			return fmt.Sprintf("for the subsection, %q, in the %q section, for the %q attribute",
				key, section, attr)
		}
		return fmt.Sprintf("in [%q][%q][%q]", section, key, attr)
	}
	fields := []struct {
		name  string
		value string
	}{
		{"filename", rf.Filename},
		{"UNITS", rf.Units},
		{"Has m/z", rf.HasMZ},
		{"Has RT", rf.HasRT},
		{"RT units", rf.RTUnits},
	}
	for _, f := range fields {
		required := resultsFileSpec.isRequired(f.name)
		if f.value == "" {
			if required {
				out = append(out, Finding{
					Message: fmt.Sprintf("Error: The required property, %q, %s is missing.",
						f.name, v.subsectionPath(section, key)),
					Section: section, SubSection: key,
					Tags: []string{"format"}, ID: "24", Name: "JSON Schema Error: required",
				})
			}
			continue
		}
		if isNA(f.value) {
			out = append(out, v.naFinding(section, key, attrPath(f.name), required))
		}
	}
	return out
}

func (v *validator) ssfEntryPath(index int, key string) string {
	if v.mw {
		return fmt.Sprintf("for the %q in entry %d of the \"SUBJECT_SAMPLE_FACTORS\" section",
			key, index+1)
	}
	return fmt.Sprintf("in [\"SUBJECT_SAMPLE_FACTORS\"][%d][%q]", index, key)
}

func (v *validator) ssfValuePath(index int, group, key string) string {
	if v.mw {
		return fmt.Sprintf("for the %q in %q in entry %d of the \"SUBJECT_SAMPLE_FACTORS\" section",
			key, group, index+1)
	}
	return fmt.Sprintf("in [\"SUBJECT_SAMPLE_FACTORS\"][%d][%q][%q]", index, group, key)
}

func (v *validator) validateSampleFactorsSchema() []Finding {
	ssf := v.doc.SampleFactors()
	if ssf == nil {
		return nil
	}
	var out []Finding
	for i, row := range ssf.Rows {
		if isNA(row.SampleID) {
			out = append(out, v.naFinding("SUBJECT_SAMPLE_FACTORS", "Sample ID",
				v.ssfEntryPath(i, "Sample ID"), true))
		}
		if row.Factors != nil {
			out = append(out, v.validateSSFGroup(i, "Factors", row.Factors)...)
		}
		if row.Additional != nil {
			out = append(out, v.validateSSFGroup(i, "Additional sample data", row.Additional)...)
		}
	}
	return out
}

// validateSSFGroup flags empty values in a Factors or Additional sample
// data group.
func (v *validator) validateSSFGroup(index int, group string, pairs *Multimap) []Finding {
	var out []Finding
	for _, p := range pairs.Pairs() {
		if p.Value != "" {
			continue
		}
		out = append(out, Finding{
			Message: fmt.Sprintf("Warning: The value, %q, %s is missing a value.",
				p.Value, v.ssfValuePath(index, group, p.Key)),
			Section: "SUBJECT_SAMPLE_FACTORS", SubSection: group,
			Tags: []string{"value"}, ID: "24", Name: "JSON Schema Error: minLength",
		})
	}
	return out
}

func (v *validator) validateDataSchema(section string, s *DataSection, spec *dataTableSpec) []Finding {
	var out []Finding
	allowed := make(map[string]bool, len(spec.subsections))
	for _, name := range spec.subsections {
		allowed[name] = true
	}

	present := map[string]bool{
		"Units":       s.HasUnits,
		"Data":        s.Data != nil,
		"Metabolites": s.Metabolites != nil,
		"Extended":    s.Extended != nil,
	}
	for _, name := range []string{"Units", "Data", "Metabolites", "Extended"} {
		if present[name] && !allowed[name] {
			out = append(out, v.unknownKeyFinding(section, name))
		}
	}
	for _, key := range s.Extra.Keys() {
		out = append(out, v.unknownKeyFinding(section, key))
	}

	for _, req := range spec.required {
		if !present[req] {
			out = append(out, v.requiredFinding(section, req))
		}
	}
	if s.HasUnits && isNA(s.Units) {
		out = append(out, v.naFinding(section, "Units",
			v.subsectionPath(section, "Units"), true))
	}
	return out
}

// ----------------------------------------------------------------------
// SUBJECT_SAMPLE_FACTORS consistency.

func (v *validator) validateSubjectSampleFactors() []Finding {
	ssf := v.doc.SampleFactors()
	if ssf == nil {
		return nil
	}
	location := func(i int) string {
		if v.mw {
			return fmt.Sprintf("SUBJECT_SAMPLE_FACTORS entry #%d", i+1)
		}
		return fmt.Sprintf("The SSF at [\"SUBJECT_SAMPLE_FACTORS\"][%d]", i)
	}

	var out []Finding
	seen := make(map[string]bool)
	for i, row := range ssf.Rows {
		if row.SampleID != "" {
			if seen[row.SampleID] {
				out = append(out, Finding{
					Message: fmt.Sprintf("Warning: %s has a duplicate Sample ID.", location(i)),
					Section: "SUBJECT_SAMPLE_FACTORS",
					Tags:    []string{"value"}, ID: "4", Name: "Duplicate Sample ID in SSF",
				})
			}
			seen[row.SampleID] = true
		}
		if dups := duplicateKeys(row.Factors); len(dups) > 0 {
			out = append(out, Finding{
				Message: fmt.Sprintf("Warning: %s has the following duplicate keys in its Factors:\n\t%s",
					location(i), quoteList(dups)),
				Section: "SUBJECT_SAMPLE_FACTORS",
				Tags:    []string{"value"}, ID: "5", Name: "Duplicate Factors in SSF",
			})
		}
		if dups := duplicateKeys(row.Additional); len(dups) > 0 {
			out = append(out, Finding{
				Message: fmt.Sprintf("Warning: %s has the following duplicate keys in its Additional sample data:\n\t%s",
					location(i), quoteList(dups)),
				Section: "SUBJECT_SAMPLE_FACTORS",
				Tags:    []string{"value"}, ID: "6", Name: "Duplicate Additional Data",
			})
		}
	}
	return out
}

func duplicateKeys(m *Multimap) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, key := range m.Keys() {
		for i := 1; i < m.Count(key); i++ {
			out = append(out, key)
		}
	}
	return out
}

// validateFactors cross-checks the captured Factors row of the data
// block against SUBJECT_SAMPLE_FACTORS.
func (v *validator) validateFactors() []Finding {
	if len(v.doc.factors) == 0 {
		return nil
	}
	ssf := v.doc.SampleFactors()
	if ssf == nil {
		return nil
	}
	bySample := make(map[string]*Multimap)
	for _, row := range ssf.Rows {
		if _, ok := v.doc.factors[row.SampleID]; ok {
			bySample[row.SampleID] = row.Factors
		}
	}
	match := len(bySample) == len(v.doc.factors)
	if match {
		for sample, captured := range v.doc.factors {
			if !factorsEqual(captured, bySample[sample]) {
				match = false
				break
			}
		}
	}
	if match {
		return nil
	}
	return []Finding{{
		Message: "Error: The factors in the METABOLITE_DATA section " +
			"and SUBJECT_SAMPLE_FACTORS section do not match.",
		Section: "SUBJECT_SAMPLE_FACTORS",
		Tags:    []string{"consistency"}, ID: "3", Name: "Factor Mismatch",
	}}
}

// factorsEqual compares factor pair groups without regard to key order.
func factorsEqual(a, b *Multimap) bool {
	if a == nil || b == nil {
		return a == b
	}
	keysA, keysB := a.Keys(), b.Keys()
	if len(keysA) != len(keysB) {
		return false
	}
	for _, key := range keysA {
		va, vb := a.Values(key), b.Values(key)
		if len(va) != len(vb) {
			return false
		}
		for i := range va {
			if va[i] != vb[i] {
				return false
			}
		}
	}
	return true
}

// ----------------------------------------------------------------------
// Data section checks.

func (v *validator) dataLocation(key string) string {
	if v.mw {
		return key
	}
	return fmt.Sprintf("[%q][\"Data\"]", key)
}

func (v *validator) metabolitesLocation(key string) string {
	if v.mw {
		return "METABOLITES"
	}
	return fmt.Sprintf("[%q][\"Metabolites\"]", key)
}

func (v *validator) ssfSampleIDs() map[string]bool {
	ids := make(map[string]bool)
	if ssf := v.doc.SampleFactors(); ssf != nil {
		for _, row := range ssf.Rows {
			ids[row.SampleID] = true
		}
	}
	return ids
}

func (v *validator) validateData(key string, s *DataSection) []Finding {
	var out []Finding
	ssfIDs := v.ssfSampleIDs()

	var dataIDs []string
	switch {
	case len(v.doc.samples) > 0:
		dataIDs = v.doc.samples
	case len(s.Data) > 0:
		keys := s.Data[0].Keys()
		if len(keys) > 1 {
			dataIDs = keys[1:]
		}
	}
	location := v.dataLocation(key)

	var missing []string
	seenMissing := make(map[string]bool)
	for _, id := range dataIDs {
		if !ssfIDs[id] && !seenMissing[id] {
			missing = append(missing, id)
			seenMissing[id] = true
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		out = append(out, Finding{
			Message: fmt.Sprintf("Error: SUBJECT_SAMPLE_FACTORS section missing sample ID(s). "+
				"The following IDs were found in the %s section but not in the SUBJECT_SAMPLE_FACTORS:\n\t%s",
				location, quoteList(missing)),
			Section: "SUBJECT_SAMPLE_FACTORS",
			Tags:    []string{"consistency"}, ID: "7", Name: "Missing Sample ID(s) in SSF",
		})
	}

	if hasDuplicates(v.doc.samples) {
		out = append(out, Finding{
			Message: fmt.Sprintf("Warning: There are duplicate samples in the %s section.", location),
			Section: key, SubSection: "Data",
			Tags: []string{"value"}, ID: "8", Name: "Duplicate Samples in DATA",
		})
	}

	dataTbl := newDataTable(s.Data)
	metTbl := newDataTable(s.Metabolites)
	bothHave, inData, inMet := metaboliteColumns(dataTbl, metTbl)

	metLocation := v.metabolitesLocation(key)
	if bothHave && !strings.Contains(key, "BINNED") {
		metSet := make(map[string]bool, len(inMet))
		for _, m := range inMet {
			metSet[m] = true
		}
		var notInMet []string
		for _, m := range inData {
			if !metSet[m] {
				notInMet = append(notInMet, m)
			}
		}
		if len(notInMet) > 0 {
			out = append(out, Finding{
				Message: fmt.Sprintf("Error: The following metabolites in the, %s table "+
					"were not found in the %s table:\n\t%s",
					location, metLocation, quoteList(notInMet)),
				Section: key, SubSection: "Data",
				Tags: []string{"consistency"}, ID: "9", Name: "Metabolite(s) in DATA not METABOLITES",
			})
		}
	}

	if anyNA(inData, isMetaboliteNA) {
		out = append(out, Finding{
			Message: fmt.Sprintf("Error: A metabolite without a name was found in the %s table.", location),
			Section: key, SubSection: "Data",
			Tags: []string{"value"}, ID: "10", Name: "Blank Metabolite(s) in DATA",
		})
	}
	if dups := duplicatedValues(inData); len(dups) > 0 {
		out = append(out, Finding{
			Message: fmt.Sprintf("Warning: The following metabolites in the %s table "+
				"appear more than once in the table:\n\t%s", location, quoteList(dups)),
			Section: key, SubSection: "Data",
			Tags: []string{"value"}, ID: "11", Name: "Duplicate Metabolite(s) in DATA",
		})
	}
	return out
}

// metaboliteColumns pulls the stripped Metabolite columns of the Data
// and Metabolites tables. bothHave is false when a non-empty table lacks
// the column; the cross-checks are skipped then since the missing header
// is reported separately.
func metaboliteColumns(dataTbl, metTbl *dataTable) (bothHave bool, inData, inMet []string) {
	bothHave = true
	if !dataTbl.empty() {
		if dataTbl.hasColumn("Metabolite") {
			inData = strippedColumn(dataTbl, "Metabolite")
		} else {
			bothHave = false
		}
	}
	if !metTbl.empty() {
		if metTbl.hasColumn("Metabolite") {
			inMet = strippedColumn(metTbl, "Metabolite")
		} else {
			bothHave = false
		}
	}
	return bothHave, inData, inMet
}

func hasDuplicates(values []string) bool {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return true
		}
		seen[v] = true
	}
	return false
}

func duplicatedValues(values []string) []string {
	seen := make(map[string]bool, len(values))
	var dups []string
	for _, v := range values {
		if seen[v] {
			dups = append(dups, v)
		}
		seen[v] = true
	}
	return dups
}

func anyNA(values []string, na func(string) bool) bool {
	for _, v := range values {
		if na(v) {
			return true
		}
	}
	return false
}

//nolint:gocyclo
func (v *validator) validateMetabolites(key string, s *DataSection) []Finding {
	var out []Finding
	location := v.dataLocation(key)
	metLocation := v.metabolitesLocation(key)

	dataTbl := newDataTable(s.Data)
	metTbl := newDataTable(s.Metabolites)
	bothHave, inData, inMet := metaboliteColumns(dataTbl, metTbl)

	if bothHave {
		dataSet := make(map[string]bool, len(inData))
		for _, m := range inData {
			dataSet[m] = true
		}
		var notInData []string
		for _, m := range inMet {
			if !dataSet[m] {
				notInData = append(notInData, m)
			}
		}
		if len(notInData) > 0 {
			out = append(out, Finding{
				Message: fmt.Sprintf("Error: The following metabolites in the %s table "+
					"were not found in the %s table:\n\t%s",
					metLocation, location, quoteList(notInData)),
				Section: key, SubSection: "Metabolites",
				Tags: []string{"consistency"}, ID: "12", Name: "Metabolite(s) in METABOLITES not DATA",
			})
		}
	}
	if anyNA(inMet, isMetaboliteNA) {
		out = append(out, Finding{
			Message: fmt.Sprintf("Error: A metabolite without a name was found in the %s table.", metLocation),
			Section: key, SubSection: "Metabolites",
			Tags: []string{"value"}, ID: "13", Name: "Blank Metabolite(s) in METABOLITES",
		})
	}
	if dups := duplicatedValues(inMet); len(dups) > 0 {
		out = append(out, Finding{
			Message: fmt.Sprintf("Warning: The following metabolites in the %s table "+
				"appear more than once in the table:\n\t%s", metLocation, quoteList(dups)),
			Section: key, SubSection: "Metabolites",
			Tags: []string{"value"}, ID: "14", Name: "Duplicate Metabolite(s) in METABOLITES",
		})
	}

	// Match columns against the standard column finders and flag
	// recognizable variants of standard names.
	foundColumns := make(map[string][]string)
	var foundOrder []string
	columnsToStandard := make(map[string][]string)
	var columnOrder []string

	for _, finder := range columnFinders {
		matches := finder.Name.Match(metTbl.columns)
		if len(matches) == 0 {
			continue
		}
		name := finder.StandardName
		foundColumns[name] = matches
		foundOrder = append(foundOrder, name)

		if !metTbl.hasColumn(name) {
			for _, columnName := range matches {
				if strings.ToLower(columnName) == name {
					continue
				}
				out = append(out, Finding{
					Message: fmt.Sprintf("Warning: %s in the %s table, matches a standard column name, %q. "+
						"If this match was not in error, the column should be renamed to "+
						"the standard name or a name that doesn't resemble the standard name.",
						metTbl.formatColumnName(metTbl.columnIndex(columnName)), metLocation, name),
					Section: key, SubSection: "Metabolites",
					Tags: []string{"value"}, ID: "15", Name: "Standard Column Name Match",
				})
			}
		}
		for _, columnName := range matches {
			if _, ok := columnsToStandard[columnName]; !ok {
				columnOrder = append(columnOrder, columnName)
			}
			columnsToStandard[columnName] = append(columnsToStandard[columnName], name)

			values := metTbl.columnValues(columnName)
			mask := finder.Value.Match(values)
			var bad []string
			for i, ok := range mask {
				if !ok {
					bad = append(bad, fmt.Sprintf("%d    %s", i, values[i]))
				}
			}
			if len(bad) > 0 {
				out = append(out, Finding{
					Message: fmt.Sprintf("Warning: %s in the %s table, matches a standard column name, %q, "+
						"and some of the values in the column do not match the expected type or format for that column. "+
						"The non-matching values are:\n%s",
						metTbl.formatColumnName(metTbl.columnIndex(columnName)), metLocation, name,
						strings.Join(bad, "\n")),
					Section: key, SubSection: "Metabolites",
					Tags: []string{"value"}, ID: "16", Name: "METABOLITES Bad Standard Values",
				})
			}
		}
	}

	// Certain columns imply a companion column, and the pair should fill
	// the same rows.
	for _, name := range foundOrder {
		implied, ok := impliedPairs[name]
		if !ok {
			continue
		}
		matches := foundColumns[name]
		for _, column := range implied {
			childMatches, found := foundColumns[column]
			if !found {
				out = append(out, Finding{
					Message: fmt.Sprintf("Warning: The column %q was found in the %s table, "+
						"but this column implies that another column, %q, "+
						"should also exist, and that column was not found.",
						matches[0], metLocation, column),
					Section: key, SubSection: "Metabolites",
					ID:      "17", Name: "Missing Implied Column",
				})
				continue
			}
			parent := metTbl.columnValues(matches[0])
			child := metTbl.columnValues(childMatches[0])
			mismatch := false
			for i := range parent {
				if i < len(child) && isColumnNA(parent[i]) != isColumnNA(child[i]) {
					mismatch = true
					break
				}
			}
			if mismatch {
				out = append(out, Finding{
					Message: fmt.Sprintf("Warning: The column pair, %q and %q, "+
						"in the METABOLITES table should have data in the "+
						"same rows, but at least one row has data in one "+
						"column and nothing in the other.",
						matches[0], childMatches[0]),
					Section: key, SubSection: "Metabolites",
					ID:      "18", Name: "Paired Columns Value Mismatch",
				})
			}
		}
	}

	if matches, ok := foundColumns["other_id"]; ok {
		out = append(out, Finding{
			Message: fmt.Sprintf("Warning: The standard column, \"other_id\", was "+
				"found in the METABOLITES table as %q. "+
				"If this column contains database IDs for standard databases such "+
				"as KEGG, PubChem, HMDB, etc., it is recommended to make individual "+
				"columns for these and not lump them together into a less descriptive "+
				"\"other_id\" column.", matches[0]),
			Section: key, SubSection: "Metabolites",
			ID:      "19", Name: `"other_id" Column`,
		})
	}

	for _, columnName := range columnOrder {
		standards := columnsToStandard[columnName]
		if len(standards) > 1 {
			out = append(out, Finding{
				Message: fmt.Sprintf("Warning: The column, %q, in the %s table "+
					"was matched to multiple standard names, %s. This is a good indication "+
					"that the values in that column should be split into the appropriate "+
					"individual columns.", columnName, metLocation, reprList(standards)),
				Section: key, SubSection: "Metabolites",
				ID:      "20", Name: "Multiple Standard Name Match",
			})
		}
	}
	return out
}

func (v *validator) validateExtended(key string, s *DataSection) []Finding {
	var out []Finding
	ssfIDs := v.ssfSampleIDs()

	location := "EXTENDED_METABOLITE_DATA"
	ssfString := "in the SUBJECT_SAMPLE_FACTORS section"
	if !v.mw {
		location = fmt.Sprintf("table at [%q][\"Extended\"]", key)
		ssfString = `in ["SUBJECT_SAMPLE_FACTORS"]`
	}

	tbl := newDataTable(s.Extended)
	if !tbl.hasColumn("sample_id") {
		out = append(out, Finding{
			Message: fmt.Sprintf("Error: The %s table does not have a column for \"sample_id\".", location),
			Section: key, SubSection: "Extended",
			Tags: []string{"format"}, ID: "21", Name: `Missing "sample_id" in EXTENDED`,
		})
	} else {
		ids := tbl.columnValues("sample_id")
		var notInSSF []string
		seen := make(map[string]bool)
		for _, id := range ids {
			if !ssfIDs[id] && !seen[id] {
				notInSSF = append(notInSSF, id)
				seen[id] = true
			}
		}
		if len(notInSSF) > 0 {
			out = append(out, Finding{
				Message: fmt.Sprintf("Error: The %s table has Sample IDs that were not found "+
					"%s. Those IDs are:\n\t%s", location, ssfString, quoteList(notInSSF)),
				Section: key, SubSection: "Extended",
				Tags: []string{"consistency"}, ID: "22", Name: "Missing Sample ID(s) in EXTENDED",
			})
		}
		if anyNA(ids, isNA) {
			out = append(out, Finding{
				Message: fmt.Sprintf("Error: A Sample ID without a name was found in the %s table.", location),
				Section: key, SubSection: "Extended",
				Tags: []string{"value"}, ID: "35", Name: "Blank Sample ID(s) in EXTENDED",
			})
		}
	}
	if tbl.hasColumn("Metabolite") && anyNA(tbl.columnValues("Metabolite"), isMetaboliteNA) {
		out = append(out, Finding{
			Message: fmt.Sprintf("Error: A metabolite without a name was found in the %s table.", location),
			Section: key, SubSection: "Extended",
			Tags: []string{"value"}, ID: "36", Name: "Blank Metabolite(s) in EXTENDED",
		})
	}
	return out
}

// validateMetaboliteNames flags metabolite names that look like stray
// header rows from a badly constructed tab file.
func (v *validator) validateMetaboliteNames(key string, s *DataSection) []Finding {
	listHeaders := map[string]bool{
		"samples": true, "factors": true, "bin range(ppm)": true,
		"metabolite_name": true, "metabolite name": true,
	}
	badNames := func(rows []*Multimap) []string {
		var bad []string
		for _, row := range rows {
			if name, ok := row.Get("Metabolite"); ok && listHeaders[strings.ToLower(name)] {
				bad = append(bad, name)
			}
		}
		return bad
	}

	metString := "METABOLITES"
	dataString := "METABOLITE_DATA"
	if strings.Contains(key, "BINNED") {
		dataString = "BINNED_DATA"
	}
	extendedString := "EXTENDED_METABOLITE_DATA"
	descTemplate := "in the %s table"
	if !v.mw {
		descTemplate = fmt.Sprintf("in the table at [%q]%%s", key)
		metString = `["Metabolites"]`
		dataString = `["Data"]`
		extendedString = `["Extended"]`
	}

	var out []Finding
	emit := func(names []string, tableString, subSection string) {
		for _, name := range names {
			out = append(out, Finding{
				Message: fmt.Sprintf("Warning: There is a metabolite name, %q, "+descTemplate+
					" that is probably wrong. "+
					"It is close to a header name and is likely due to a badly constructed Tab file.",
					name, tableString),
				Section: key, SubSection: subSection,
				Tags: []string{"value"}, ID: "23", Name: "Bad Metabolite Name",
			})
		}
	}
	emit(badNames(s.Metabolites), metString, "Metabolites")
	emit(badNames(s.Data), dataString, "Data")
	emit(badNames(s.Extended), extendedString, "Extended")
	return out
}

//nolint:gocyclo
func (v *validator) validateTableValues(key string, s *DataSection) []Finding {
	binned := strings.Contains(key, "BINNED")

	headerNames := map[string]string{
		"Data":        "Samples",
		"Metabolites": "metabolite_name",
		"Extended":    "metabolite_name",
	}
	messageStrings := map[string]string{
		"Data":        key,
		"Metabolites": "METABOLITES",
		"Extended":    "EXTENDED_METABOLITE_DATA",
	}
	if !v.mw {
		headerNames = map[string]string{
			"Data":        "Metabolite",
			"Metabolites": "Metabolite",
			"Extended":    "Metabolite",
		}
		messageStrings = map[string]string{
			"Data":        fmt.Sprintf("[%q][\"Data\"]", key),
			"Metabolites": fmt.Sprintf("[%q][\"Metabolites\"]", key),
			"Extended":    fmt.Sprintf("[%q][\"Extended\"]", key),
		}
	}
	if binned {
		headerNames["Data"] = "Bin range(ppm)"
	}
	rawHeaders := map[string][]string{
		"Data":        v.doc.rawSamples,
		"Metabolites": v.doc.rawMetabolHeader,
		"Extended":    v.doc.rawExtendedHeader,
	}
	if binned {
		rawHeaders["Data"] = v.doc.rawBinnedHeader
	}

	var out []Finding
	for _, tableName := range []string{"Data", "Metabolites", "Extended"} {
		rows := s.Table(tableName)
		if rows == nil {
			continue
		}
		msgString := messageStrings[tableName]

		if header := rawHeaders[tableName]; len(header) > 0 && !containsString(header, headerNames[tableName]) {
			out = append(out, Finding{
				Message: fmt.Sprintf("Error: The %s table does not have a column for %q. "+
					"It is likely misspelled or using a common incorrect substitute.",
					msgString, headerNames[tableName]),
				Section: key, SubSection: tableName,
				Tags: []string{"format"}, ID: "34", Name: "Missing Header",
			})
		}

		tbl := newDataTable(rows)
		if len(rows) > 0 && !consistentColumns(rows) {
			out = append(out, Finding{
				Message: fmt.Sprintf("Error: The %s table does not have the same columns for every row.", msgString),
				Section: key, SubSection: tableName,
				Tags: []string{"consistency"}, ID: "25", Name: "Inconsistent Columns",
			})
		}
		if containsString(tbl.columns, "") {
			out = append(out, Finding{
				Message: fmt.Sprintf("Error: Column(s) with no name were found in the %s table.", msgString),
				Section: key, SubSection: tableName,
				Tags: []string{"value"}, ID: "26", Name: "Column With No Name",
			})
		}

		for i := range tbl.columns {
			values := tbl.columnValuesAt(i)
			allNull := len(values) > 0
			for _, val := range values {
				if !isColumnNA(val) {
					allNull = false
					break
				}
			}
			if allNull {
				out = append(out, Finding{
					Message: fmt.Sprintf("Warning: %s in the %s table has all null values.",
						tbl.formatColumnName(i), msgString),
					Section: key, SubSection: tableName,
					Tags: []string{"value"}, ID: "27", Name: "Null Column",
				})
			}
		}

		// Columns dominated by a single value are usually copy mistakes.
		for i, column := range tbl.columns {
			if column == "Metabolite" {
				continue
			}
			values := tbl.columnValuesAt(i)
			counts := make(map[string]int)
			for _, val := range values {
				counts[val]++
			}
			if len(counts) <= 1 {
				continue
			}
			for _, n := range counts {
				if float64(n)/float64(len(values)) > 0.9 {
					out = append(out, Finding{
						Message: fmt.Sprintf("Warning: %s in the %s table may have incorrect values. "+
							"90%% or more of the values are the same, but 10%% or less are different.",
							tbl.formatColumnName(i), msgString),
						Section: key, SubSection: tableName,
						Tags: []string{"value"}, ID: "28", Name: "Possible Bad Column Values",
					})
					break
				}
			}
		}

		if duplicateRows(rows) {
			out = append(out, Finding{
				Message: fmt.Sprintf("Warning: There are duplicate rows in the %s table.", msgString),
				Section: key, SubSection: tableName,
				Tags: []string{"value"}, ID: "29", Name: "Duplicate Rows",
			})
		}

		// Duplicate sample columns in Data have their own check.
		if tableName != "Data" && hasDuplicates(tbl.columns) {
			out = append(out, Finding{
				Message: fmt.Sprintf("Warning: There are duplicate column names in the %s table.", msgString),
				Section: key, SubSection: tableName,
				Tags: []string{"value"}, ID: "30", Name: "Duplicate Column Names",
			})
		}
	}
	return out
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func consistentColumns(rows []*Multimap) bool {
	first := rowColumns(rows[0])
	for _, row := range rows[1:] {
		cols := rowColumns(row)
		if len(cols) != len(first) {
			return false
		}
		for i := range cols {
			if cols[i] != first[i] {
				return false
			}
		}
	}
	return true
}

func rowColumns(row *Multimap) []string {
	pairs := row.Pairs()
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.Key
	}
	return out
}

func duplicateRows(rows []*Multimap) bool {
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		var b strings.Builder
		for _, p := range row.Pairs() {
			b.WriteString(p.Key)
			b.WriteByte('\x00')
			b.WriteString(p.Value)
			b.WriteByte('\x01')
		}
		if seen[b.String()] {
			return true
		}
		seen[b.String()] = true
	}
	return false
}

// validatePolarity flags a polarity column mixing positive and negative
// runs; a single file is restricted to a single analysis.
func (v *validator) validatePolarity(key string, s *DataSection) []Finding {
	finder, ok := finderByName["polarity"]
	if !ok {
		return nil
	}
	location := v.metabolitesLocation(key)
	tbl := newDataTable(s.Metabolites)
	for _, columnName := range finder.Name.Match(tbl.columns) {
		pos, neg := false, false
		for _, val := range tbl.columnValues(columnName) {
			switch strings.ToLower(strings.TrimSpace(val)) {
			case "pos", "positive":
				pos = true
			case "neg", "negative":
				neg = true
			case "+":
				pos = true
				neg = true
			}
		}
		if pos && neg {
			return []Finding{{
				Message: fmt.Sprintf("Error: The %q column in the %s table "+
					"indicates multiple polarities in a single analysis, and "+
					"this should not be. A single mwTab file is supposed to be "+
					"restricted to a single analysis. This means multiple MS "+
					"runs under different settings should each be in their own file.",
					columnName, location),
				Section: key, SubSection: "Metabolites",
				Tags: []string{"format"}, ID: "31", Name: "Multiple Polarities",
			}}
		}
	}
	return nil
}

// ----------------------------------------------------------------------
// Structural leftovers recorded while parsing.

func (v *validator) validateHeaderLengths() []Finding {
	if len(v.doc.shortHeaders) == 0 {
		return nil
	}
	sections := make([]string, 0, len(v.doc.shortHeaders))
	for section := range v.doc.shortHeaders {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	out := make([]Finding, 0, len(sections))
	for _, section := range sections {
		out = append(out, Finding{
			Message: "Error: The section, " + section + ", has a mismatch between the " +
				"number of headers and the number of elements in each " +
				"line. Either a line(s) has more values than headers or " +
				"there are too few headers.",
			Section: section,
			Tags:    []string{"consistency"}, ID: "2", Name: "Bad Headers",
		})
	}
	return out
}

func (v *validator) validateSubSectionUniqueness() []Finding {
	if len(v.doc.duplicateSubSects) == 0 {
		return nil
	}
	var out []Finding
	emit := func(section string, subSections *Multimap) {
		for _, name := range subSections.Keys() {
			out = append(out, Finding{
				Message: "Error: The section, " + section + ", has a sub-section, " +
					name + ", that is duplicated.",
				Section: section, SubSection: name,
				Tags: []string{"consistency"}, ID: "1", Name: "Duplicate Sub-section",
			})
		}
	}
	seen := make(map[string]bool)
	for _, section := range v.doc.SectionNames() {
		if subs, ok := v.doc.duplicateSubSects[section]; ok {
			emit(section, subs)
			seen[section] = true
		}
	}
	var rest []string
	for section := range v.doc.duplicateSubSects {
		if !seen[section] {
			rest = append(rest, section)
		}
	}
	sort.Strings(rest)
	for _, section := range rest {
		emit(section, v.doc.duplicateSubSects[section])
	}
	return out
}
