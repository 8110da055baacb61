package mwtab

import (
	"io"
	"strings"
)

// WriteString renders the document as a string in the given format,
// "mwtab" or "json". The document is canonicalized first, so writing is
// stable and idempotent.
func (d *Document) WriteString(format string) (string, error) {
	switch format {
	case FormatMwTab:
		d.Canonicalize()
		var b strings.Builder
		d.writeMwTab(&b)
		return b.String(), nil
	case FormatJSON:
		d.Canonicalize()
		var b strings.Builder
		d.writeJSON(&b)
		return b.String(), nil
	}
	return "", ErrUnknownFormat
}

// Write renders the document into w in the given format.
func (d *Document) Write(w io.Writer, format string) error {
	s, err := d.WriteString(format)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

func (d *Document) writeMwTab(b *strings.Builder) {
	for _, name := range d.names {
		section := d.sections[name]
		switch s := section.(type) {
		case *ListSection:
			b.WriteString("#SUBJECT_SAMPLE_FACTORS:         \tSUBJECT(optional)[tab]SAMPLE[tab]FACTORS(NAME:VALUE pairs separated by |)[tab]Additional sample data\n")
			d.writeSampleFactors(b, name, s)
		case *ItemSection:
			switch name {
			case "METABOLOMICS WORKBENCH":
				b.WriteString(d.HeaderLine())
				b.WriteString("\n")
			case "NM":
				b.WriteString("#NMR\n")
			default:
				b.WriteString("#")
				b.WriteString(name)
				b.WriteString("\n")
			}
			d.writeItemBlock(b, name, s)
		case *DataSection:
			b.WriteString("#")
			b.WriteString(name)
			b.WriteString("\n")
			d.writeDataBlock(b, name, s)
		}
	}
	b.WriteString("#END\n")
}

func (d *Document) writeSampleFactors(b *strings.Builder, name string, s *ListSection) {
	for _, row := range s.Rows {
		items := []string{row.SubjectID, row.SampleID, joinPairs(row.Factors, ":", " | ")}
		if row.Additional != nil {
			items = append(items, joinPairs(row.Additional, "=", "; "))
		}
		b.WriteString(name)
		b.WriteString(strings.Repeat(" ", 11))
		b.WriteString("\t")
		b.WriteString(strings.Join(items, "\t"))
		if len(items) < 4 {
			b.WriteString("\t")
		}
		b.WriteString("\n")
	}
}

func joinPairs(m *Multimap, kvSep, pairSep string) string {
	if m == nil {
		return ""
	}
	pairs := m.Pairs()
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.Key+kvSep+p.Value)
	}
	return strings.Join(parts, pairSep)
}

// columnWidth returns the pad between an item key and its tab. VERSION and
// CREATED_ON use the narrow header column; Units aligns against the
// "SECTION:UNITS" spelling.
func columnWidth(section, key string) int {
	switch {
	case key == "VERSION" || key == "CREATED_ON":
		return 20 - len(key)
	case key == "Units":
		return 33 - len(section+":UNITS")
	}
	return 30 - len(key)
}

func pad(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

func (d *Document) writeItemBlock(b *strings.Builder, name string, s *ItemSection) {
	prefix := prefixes[name]
	for _, p := range s.Fields.Pairs() {
		if name == "METABOLOMICS WORKBENCH" && p.Key != "VERSION" && p.Key != "CREATED_ON" {
			continue
		}
		cw := columnWidth(name, p.Key)
		if rf, ok := s.Files[p.Key]; ok {
			b.WriteString(prefix)
			b.WriteString(p.Key)
			b.WriteString(pad(cw))
			b.WriteString("\t")
			b.WriteString(rf.String("\t"))
			b.WriteString("\n")
			continue
		}
		writeItemLine(b, prefix, p.Key, cw, p.Value)
	}
}

// writeItemLine prints one key line, word-wrapping values past 80 columns
// onto repeated key lines. Filename values never wrap.
func writeItemLine(b *strings.Builder, prefix, key string, cw int, value string) {
	if len(value) <= 80 || strings.HasSuffix(key, "_FILENAME") {
		b.WriteString(prefix)
		b.WriteString(key)
		b.WriteString(pad(cw))
		b.WriteString("\t")
		b.WriteString(value)
		b.WriteString("\n")
		return
	}
	words := strings.Split(value, " ")
	length := 0
	var line []string
	emit := func() {
		b.WriteString(prefix)
		b.WriteString(key)
		b.WriteString(pad(cw))
		b.WriteString("\t")
		b.WriteString(strings.Join(line, " "))
		b.WriteString("\n")
	}
	for _, word := range words {
		if length+len(word)+len(line)-1 < 80 {
			line = append(line, word)
			length += len(word)
		} else {
			if len(line) > 0 {
				emit()
			}
			line = []string{word}
			length = len(word)
		}
	}
	emit()
}

// memberOrder lists the section's members in the order they appeared in
// the input. Members added after building (or on documents assembled
// programmatically) follow in canonical order.
func (s *DataSection) memberOrder() []string {
	out := append([]string(nil), s.order...)
	seen := make(map[string]bool, len(out))
	for _, m := range out {
		seen[m] = true
	}
	for _, m := range []string{"Units", "Data", "Metabolites", "Extended"} {
		if !seen[m] {
			out = append(out, m)
			seen[m] = true
		}
	}
	for _, key := range s.Extra.Keys() {
		if !seen[key] {
			out = append(out, key)
		}
	}
	return out
}

// writeDataBlock renders the section's members one by one in input order,
// so a stray item recorded between two blocks stays between them.
func (d *Document) writeDataBlock(b *strings.Builder, name string, s *DataSection) {
	for _, member := range s.memberOrder() {
		switch member {
		case "Units":
			if !s.HasUnits {
				continue
			}
			b.WriteString(name)
			b.WriteString(":UNITS")
			b.WriteString(pad(columnWidth(name, "Units")))
			b.WriteString("\t")
			b.WriteString(s.Units)
			b.WriteString("\n")
		case "Data":
			if s.Data != nil {
				d.writeDataTable(b, name, s)
			}
		case "Metabolites":
			if s.Metabolites != nil {
				d.writeMetabolitesTable(b, s)
			}
		case "Extended":
			if s.Extended != nil {
				d.writeExtendedTable(b, name, s)
			}
		default:
			if !s.Extra.Has(member) {
				continue
			}
			if rf, ok := s.Files[member]; ok {
				b.WriteString(member)
				b.WriteString(pad(columnWidth(name, member)))
				b.WriteString("\t")
				b.WriteString(rf.String("\t"))
				b.WriteString("\n")
				continue
			}
			writeItemLine(b, "", member, columnWidth(name, member), s.Extra.Value(member))
		}
	}
}

func (d *Document) writeDataTable(b *strings.Builder, name string, s *DataSection) {
	b.WriteString(name)
	b.WriteString("_START\n")

	if strings.Contains(name, "BINNED") {
		binnedHeader := d.binnedHeader
		if binnedHeader == nil && len(s.Data) > 0 {
			binnedHeader = tailKeys(s.Data[0])
		}
		if len(s.Data) > 0 || len(binnedHeader) > 0 {
			b.WriteString(strings.Join(append([]string{"Bin range(ppm)"}, binnedHeader...), "\t"))
			b.WriteString("\n")
		}
		for _, row := range s.Data {
			b.WriteString(strings.Join(rowValues(row, true), "\t"))
			b.WriteString("\n")
		}
	} else {
		sampleNames := d.samples
		if sampleNames == nil && len(s.Data) > 0 {
			sampleNames = tailKeys(s.Data[0])
		}
		if len(s.Data) > 0 || len(sampleNames) > 0 {
			b.WriteString(strings.Join(append([]string{"Samples"}, sampleNames...), "\t"))
			b.WriteString("\n")
			if len(sampleNames) > 0 {
				if factorsLine, ok := d.factorsLine(sampleNames); ok {
					b.WriteString(factorsLine)
					b.WriteString("\n")
				}
			}
		}
		for _, row := range s.Data {
			b.WriteString(strings.Join(rowValues(row, false), "\t"))
			b.WriteString("\n")
		}
	}

	b.WriteString(name)
	b.WriteString("_END\n")
}

func (d *Document) writeMetabolitesTable(b *strings.Builder, s *DataSection) {
	b.WriteString("#METABOLITES\nMETABOLITES_START\n")
	header := d.metaboliteHeader
	if header == nil && len(s.Metabolites) > 0 {
		header = tailKeys(s.Metabolites[0])
	}
	if len(s.Metabolites) > 0 || len(header) > 0 {
		b.WriteString(strings.Join(append([]string{"metabolite_name"}, header...), "\t"))
		b.WriteString("\n")
	}
	for _, row := range s.Metabolites {
		b.WriteString(strings.Join(rowValues(row, false), "\t"))
		b.WriteString("\n")
	}
	b.WriteString("METABOLITES_END\n")
}

func (d *Document) writeExtendedTable(b *strings.Builder, name string, s *DataSection) {
	b.WriteString("EXTENDED_")
	b.WriteString(name)
	b.WriteString("_START\n")
	header := d.extendedHeader
	if header == nil && len(s.Extended) > 0 {
		header = tailKeys(s.Extended[0])
	}
	if len(s.Extended) > 0 || len(header) > 0 {
		b.WriteString(strings.Join(append([]string{"metabolite_name"}, header...), "\t"))
		b.WriteString("\n")
	}
	for _, row := range s.Extended {
		b.WriteString(strings.Join(rowValues(row, false), "\t"))
		b.WriteString("\n")
	}
	b.WriteString("EXTENDED_")
	b.WriteString(name)
	b.WriteString("_END\n")
}

// factorsLine rebuilds the "Factors" header row for the data block, from
// the captured Factors row when the input had one, otherwise from the
// SUBJECT_SAMPLE_FACTORS rows. The line is omitted when any sample has no
// factors, so it never misaligns with the Samples line.
func (d *Document) factorsLine(sampleNames []string) (string, bool) {
	bySample := make(map[string]string)
	if d.factors != nil {
		for sample, pairs := range d.factors {
			bySample[sample] = joinPairs(pairs, ":", " | ")
		}
	} else if ssf := d.SampleFactors(); ssf != nil {
		for _, row := range ssf.Rows {
			bySample[row.SampleID] = joinPairs(row.Factors, ":", " | ")
		}
	}
	cells := []string{"Factors"}
	for _, sample := range sampleNames {
		joined, ok := bySample[sample]
		if !ok {
			return "", false
		}
		cells = append(cells, joined)
	}
	return strings.Join(cells, "\t"), true
}

// rowValues returns a row's cell values in pair order. For binned rows the
// "Metabolite" mirror of "Bin range(ppm)" is dropped so the bin label is
// not printed twice.
func rowValues(row *Multimap, binned bool) []string {
	dropMirror := binned && row.Has("Bin range(ppm)") && row.Has("Metabolite")
	pairs := row.Pairs()
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if dropMirror && p.Key == "Metabolite" {
			continue
		}
		out = append(out, p.Value)
	}
	return out
}

// tailKeys returns a row's keys without the leading label column.
func tailKeys(row *Multimap) []string {
	keys := row.Keys()
	if len(keys) <= 1 {
		return nil
	}
	return keys[1:]
}
