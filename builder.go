package mwtab

import (
	"fmt"
	"strings"
)

// BuildError reports a token stream the builder could not assemble into a
// document.
type BuildError struct {
	Section string
	Message string
	Line    int
}

func (e *BuildError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("mwtab: build error in section %s at line %d: %s", e.Section, e.Line, e.Message)
	}
	return fmt.Sprintf("mwtab: build error at line %d: %s", e.Line, e.Message)
}

// blockResult accumulates one section's tokens before the section variant
// is decided.
type blockResult struct {
	rows   []*SubjectSampleFactor
	fields *Multimap
	files  map[string]*ResultsFile
	tables map[string][]*Multimap
	order  []string // member insertion order: field keys and table names
}

// Build consumes a token stream into doc sections. It is the native-text
// half of Parse; structured input goes through parseJSONDocument.
func Build(source string, tz *Tokenizer) (*Document, error) {
	doc := NewDocument(source)
	doc.inputFormat = FormatMwTab
	if err := doc.build(tz); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) build(tz *Tokenizer) error {
	tok, err := tz.Next()
	if err != nil {
		return err
	}
	for tok.Type != TokEndOfFile {
		if tok.Type == TokSectionHeader {
			name := tok.Key
			block, berr := d.buildBlock(name, tz)
			if berr != nil {
				return berr
			}
			if perr := d.placeBlock(name, block, tok.Line); perr != nil {
				return perr
			}
		}
		if tok, err = tz.Next(); err != nil {
			return err
		}
	}

	if d.Item("METABOLOMICS WORKBENCH") == nil {
		return ErrMissingHeaderSection
	}
	d.relocateResultsFiles()
	return nil
}

// placeBlock stores a finished block under its section name. METABOLITES
// blocks merge into the already-built data section, NMR is stored under
// NM, and the END banner is discarded.
func (d *Document) placeBlock(name string, block *blockResult, line int) error {
	switch {
	case name == "METABOLITES":
		ds := d.DataSection()
		if ds == nil {
			return &BuildError{Section: name, Message: ErrOrphanMetabolites.Error(), Line: line}
		}
		d.mergeIntoData(ds, block)
		return nil
	case name == "NMR":
		name = "NM"
	case name == "END":
		return nil
	}

	if len(block.rows) > 0 || name == "SUBJECT_SAMPLE_FACTORS" {
		d.SetSection(name, &ListSection{Rows: block.rows})
		return nil
	}
	if len(block.tables) > 0 || dataSectionNames[name] {
		d.SetSection(name, block.toDataSection())
		return nil
	}
	d.SetSection(name, &ItemSection{Fields: block.fields, Files: block.files})
	return nil
}

func (b *blockResult) toDataSection() *DataSection {
	ds := NewDataSection()
	if units, ok := b.fields.Get("Units"); ok {
		ds.Units = units
		ds.HasUnits = true
		b.fields.Delete("Units")
	}
	ds.Data = b.tables["Data"]
	ds.Metabolites = b.tables["Metabolites"]
	ds.Extended = b.tables["Extended"]
	ds.Extra = b.fields
	ds.Files = b.files
	ds.order = b.order
	return ds
}

func (d *Document) mergeIntoData(ds *DataSection, block *blockResult) {
	if rows, ok := block.tables["Metabolites"]; ok {
		ds.Metabolites = rows
	}
	if rows, ok := block.tables["Extended"]; ok {
		ds.Extended = rows
	}
	if rows, ok := block.tables["Data"]; ok {
		ds.Data = rows
	}
	for _, p := range block.fields.Pairs() {
		ds.Extra.Add(p.Key, p.Value)
	}
	for key, rf := range block.files {
		if ds.Files == nil {
			ds.Files = make(map[string]*ResultsFile)
		}
		ds.Files[key] = rf
	}
	for _, member := range block.order {
		if !containsString(ds.order, member) {
			ds.order = append(ds.order, member)
		}
	}
}

// buildBlock consumes tokens up to the section terminator.
func (d *Document) buildBlock(name string, tz *Tokenizer) (*blockResult, error) {
	block := &blockResult{fields: NewMultimap()}

	var ssfSamples []string
	if ssf := d.SampleFactors(); ssf != nil {
		ssfSamples = ssf.SampleIDs()
	}

	tok, err := tz.Next()
	if err != nil {
		return nil, err
	}
	for tok.Type != TokEndOfSection {
		switch tok.Type {
		case TokSampleFactor:
			block.rows = append(block.rows, tok.Row)

		case TokBlockStart:
			tableName, rows, terr := d.buildTable(tok, tz, ssfSamples)
			if terr != nil {
				return nil, terr
			}
			if block.tables == nil {
				block.tables = make(map[string][]*Multimap)
			}
			if _, seen := block.tables[tableName]; !seen {
				block.order = append(block.order, tableName)
			}
			block.tables[tableName] = rows

		case TokResultsFile:
			if block.files == nil {
				block.files = make(map[string]*ResultsFile)
			}
			if !block.fields.Has(tok.Key) {
				block.fields.Add(tok.Key, "")
				block.order = append(block.order, tok.Key)
			}
			block.files[tok.Key] = tok.File

		case TokKeyValue:
			if !block.fields.Has(tok.Key) {
				block.order = append(block.order, tok.Key)
			}
			d.addField(name, block.fields, tok.Key, tok.Value)
		}

		if tok, err = tz.Next(); err != nil {
			return nil, err
		}
	}
	return block, nil
}

// addField stores one item pair, applying the repeated-key policy: the
// header section keeps the last value, every other section concatenates
// with a single space. A repeat carrying the identical value is recorded
// as a duplicate sub-section for the validator.
func (d *Document) addField(section string, fields *Multimap, key, value string) {
	cur, exists := fields.Get(key)
	if !exists {
		fields.Add(key, value)
		return
	}
	if cur == value {
		dup := d.duplicateSubSects[section]
		if dup == nil {
			dup = NewMultimap()
			d.duplicateSubSects[section] = dup
		}
		dup.Set(key, value)
	}
	if strings.HasSuffix(section, "WORKBENCH") {
		fields.Set(key, value)
	} else {
		fields.Append(key, value)
	}
}

// Reserved first-cell spellings that mark a block row as a header rather
// than data. Compared case-insensitively.
func isLabelHeaderCell(cell string) bool {
	switch strings.ToLower(cell) {
	case "samples", "metabolite name", "metabolite_name":
		return true
	}
	return false
}

// buildTable consumes one *_START/*_END block into normalized rows.
//
//nolint:gocyclo
func (d *Document) buildTable(start Token, tz *Tokenizer, ssfSamples []string) (string, []*Multimap, error) {
	sectionName := strings.TrimSuffix(start.Key, "_START")
	binned := strings.Contains(sectionName, "BINNED_DATA") && !strings.Contains(sectionName, "EXTENDED")
	metaboliteData := strings.Contains(sectionName, "METABOLITE_DATA") && !strings.Contains(sectionName, "EXTENDED")
	metabolites := strings.Contains(sectionName, "METABOLITES")
	extended := strings.Contains(sectionName, "EXTENDED")

	tok, err := tz.Next()
	if err != nil {
		return "", nil, err
	}

	// The first row is the captured header; trailing tabs leave empty
	// cells that are not part of it. A block whose terminator follows the
	// start line directly builds as an empty table.
	var header, rowHeader []string
	if tok.Type == TokTableRow {
		header = trimTrailingEmpty(tok.Cells)
		rowHeader = append([]string{"Metabolite"}, header[1:]...)
	}

	rows := []*Multimap{}
	loopCount := 0
	for tok.Type == TokTableRow {
		cells := trimTrailingEmpty(tok.Cells)
		isHeader := false

		switch {
		case binned && loopCount < 2:
			if loopCount < 1 {
				d.rawBinnedHeader = cells
				d.rawSamples = cells
			}
			if strings.EqualFold(tok.Key, "Bin range(ppm)") {
				isHeader = true
			}
		case strings.Contains(sectionName, "METABOLITE_DATA") && strings.EqualFold(tok.Key, "Factors") && loopCount < 2:
			// A Factors row shows up in odd places in deposited files;
			// only the one near the top of the data block counts.
			if ferr := d.captureFactors(header, cells); ferr != nil {
				return "", nil, &BuildError{Section: sectionName, Message: ferr.Error(), Line: tok.Line}
			}
			isHeader = true
		case metaboliteData && loopCount < 2:
			if loopCount < 1 {
				d.rawSamples = cells
			}
			if anyIn(cells[1:], ssfSamples) ||
				(len(cells) == 1 && isLabelHeaderCell(cells[0])) ||
				(len(ssfSamples) == 0 && isLabelHeaderCell(cells[0])) {
				isHeader = true
			}
		case metabolites && !extended && loopCount < 2:
			if loopCount < 1 {
				d.rawMetabolHeader = cells
			}
			if strings.EqualFold(tok.Key, "metabolite_name") {
				isHeader = true
			}
		case extended && loopCount < 2:
			if loopCount < 1 {
				d.rawExtendedHeader = cells
			}
			if strings.EqualFold(tok.Key, "metabolite_name") {
				isHeader = true
			}
		}

		if !isHeader {
			row := NewMultimap()
			n := len(rowHeader)
			if len(cells) > n {
				n = len(cells)
				d.shortHeaders[sectionName] = true
			}
			for i := 0; i < n; i++ {
				key, value := "", ""
				if i < len(rowHeader) {
					key = rowHeader[i]
				}
				if i < len(cells) {
					value = cells[i]
				}
				row.Add(key, value)
			}
			rows = append(rows, row)
		}

		if tok, err = tz.Next(); err != nil {
			return "", nil, err
		}
		loopCount++
	}
	if tok.Type != TokBlockEnd {
		return "", nil, &BuildError{Section: sectionName, Message: "data block not terminated", Line: tok.Line}
	}

	rows, minHeader := normalizeRows(rows)

	switch {
	case strings.HasPrefix(tok.Key, "METABOLITES"):
		d.metaboliteHeader = minHeader
		return "Metabolites", rows, nil
	case strings.HasPrefix(tok.Key, "EXTENDED_"):
		d.extendedHeader = minHeader
		return "Extended", rows, nil
	default:
		d.samples = minHeader
		if binned {
			d.binnedHeader = minHeader
		}
		return "Data", rows, nil
	}
}

// captureFactors parses the per-sample factor strings from a Factors
// header row, keyed by the sample name in the same column of the block
// header.
func (d *Document) captureFactors(header, cells []string) error {
	d.factors = make(map[string]*Multimap)
	for i, factorString := range cells[1:] {
		if i+1 >= len(header) {
			break
		}
		pairs := NewMultimap()
		for _, pair := range strings.Split(factorString, "| ") {
			colon := strings.IndexByte(pair, ':')
			if colon < 0 {
				return fmt.Errorf("expected ':' in factor pair %q", pair)
			}
			pairs.Add(strings.TrimSpace(pair[:colon]), strings.TrimSpace(pair[colon+1:]))
		}
		d.factors[header[i+1]] = pairs
	}
	return nil
}

// normalizeRows pads every row to the union of columns, in first-seen
// order, so all rows expose the same keys. Returns the rebuilt rows and
// the column names without the leading label column.
func normalizeRows(rows []*Multimap) ([]*Multimap, []string) {
	if len(rows) == 0 {
		return rows, nil
	}
	var columns []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, key := range row.Keys() {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}
	out := make([]*Multimap, 0, len(rows))
	for _, row := range rows {
		rebuilt := NewMultimap()
		for _, col := range columns {
			values := row.Values(col)
			if len(values) == 0 {
				rebuilt.Add(col, "")
				continue
			}
			for _, v := range values {
				rebuilt.Add(col, v)
			}
		}
		out = append(out, rebuilt)
	}
	var minHeader []string
	if len(columns) > 1 {
		minHeader = columns[1:]
	}
	return out, minHeader
}

// relocateResultsFiles moves *_RESULTS_FILE lines deposited inside the
// data section into the MS or NM section where they belong.
func (d *Document) relocateResultsFiles() {
	ds := d.DataSection()
	if ds == nil || len(ds.Files) == 0 {
		return
	}
	var target *ItemSection
	if s := d.Item("MS"); s != nil {
		target = s
	} else if s := d.Item("NM"); s != nil {
		target = s
	}
	if target == nil {
		return
	}
	for _, key := range ds.Extra.Keys() {
		if rf, ok := ds.Files[key]; ok {
			target.SetFile(key, rf)
			delete(ds.Files, key)
			ds.Extra.Delete(key)
		}
	}
}

func trimTrailingEmpty(cells []string) []string {
	out := append([]string(nil), cells...)
	for len(out) > 1 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func anyIn(values, set []string) bool {
	if len(set) == 0 {
		return false
	}
	lookup := make(map[string]bool, len(set))
	for _, s := range set {
		lookup[s] = true
	}
	for _, v := range values {
		if lookup[v] {
			return true
		}
	}
	return false
}
