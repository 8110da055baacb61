package mwtab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// The structured form mirrors the native document: an object of sections,
// SUBJECT_SAMPLE_FACTORS as an array of row objects, and the data section
// carrying its tables as arrays of row objects. Results-file composites
// flatten to a single space-joined string. encoding/json's map types
// cannot hold ordered or repeated keys, so both directions work on an
// ordered pair tree: decoding walks json.Decoder tokens, encoding writes
// the tree by hand.

type jsonPair struct {
	key   string
	value jsonValue
}

// jsonValue is one of: string, json.Number, bool, nil, *jsonObject,
// []jsonValue.
type jsonValue interface{}

type jsonObject struct {
	pairs []jsonPair
}

func (o *jsonObject) get(key string) (jsonValue, bool) {
	for _, p := range o.pairs {
		if p.key == key {
			return p.value, true
		}
	}
	return nil, false
}

// decodeOrderedJSON parses data into an ordered value tree, keeping
// duplicate object keys as separate pairs.
func decodeOrderedJSON(data []byte) (jsonValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	value, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("mwtab: trailing content after JSON document")
	}
	return value, nil
}

func decodeValue(dec *json.Decoder) (jsonValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("mwtab: unexpected delimiter %q", t)
	default:
		return tok, nil
	}
}

func decodeObject(dec *json.Decoder) (*jsonObject, error) {
	obj := &jsonObject{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("mwtab: object key is not a string")
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.pairs = append(obj.pairs, jsonPair{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil { // closing }
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) ([]jsonValue, error) {
	var out []jsonValue
	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	if _, err := dec.Token(); err != nil { // closing ]
		return nil, err
	}
	return out, nil
}

func scalarString(v jsonValue) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return ""
	}
	return ""
}

// documentFromJSON rebuilds a Document from a decoded structured form.
func documentFromJSON(source string, tree jsonValue) (*Document, error) {
	root, ok := tree.(*jsonObject)
	if !ok {
		return nil, fmt.Errorf("mwtab: top-level JSON value is not an object")
	}

	doc := NewDocument(source)
	doc.inputFormat = FormatJSON

	for _, sp := range root.pairs {
		name := sp.key
		switch {
		case name == "SUBJECT_SAMPLE_FACTORS":
			rows, rerr := sampleFactorsFromJSON(sp.value)
			if rerr != nil {
				return nil, rerr
			}
			doc.SetSection(name, &ListSection{Rows: rows})

		case strings.Contains(name, "METABOLITE_DATA") || strings.Contains(name, "BINNED_DATA"):
			ds, derr := dataSectionFromJSON(name, sp.value)
			if derr != nil {
				return nil, derr
			}
			doc.SetSection(name, ds)

		default:
			obj, isObj := sp.value.(*jsonObject)
			if !isObj {
				return nil, fmt.Errorf("mwtab: section %q is not an object", name)
			}
			doc.SetSection(name, itemSectionFromJSON(obj))
		}
	}

	doc.captureJSONHeaders()
	return doc, nil
}

func itemSectionFromJSON(obj *jsonObject) *ItemSection {
	s := NewItemSection()
	for _, p := range obj.pairs {
		if strings.HasSuffix(p.key, "_RESULTS_FILE") {
			s.SetFile(p.key, parseResultsFileValue(scalarString(p.value)))
			continue
		}
		s.Fields.Add(p.key, scalarString(p.value))
	}
	return s
}

func sampleFactorsFromJSON(v jsonValue) ([]*SubjectSampleFactor, error) {
	arr, ok := v.([]jsonValue)
	if !ok {
		return nil, fmt.Errorf("mwtab: SUBJECT_SAMPLE_FACTORS is not an array")
	}
	rows := make([]*SubjectSampleFactor, 0, len(arr))
	for _, el := range arr {
		obj, isObj := el.(*jsonObject)
		if !isObj {
			return nil, fmt.Errorf("mwtab: SUBJECT_SAMPLE_FACTORS row is not an object")
		}
		row := &SubjectSampleFactor{Factors: NewMultimap()}
		for _, p := range obj.pairs {
			switch p.key {
			case "Subject ID":
				row.SubjectID = scalarString(p.value)
			case "Sample ID":
				row.SampleID = scalarString(p.value)
			case "Factors":
				row.Factors = multimapFromJSON(p.value)
			case "Additional sample data":
				row.Additional = multimapFromJSON(p.value)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func multimapFromJSON(v jsonValue) *Multimap {
	m := NewMultimap()
	if obj, ok := v.(*jsonObject); ok {
		for _, p := range obj.pairs {
			m.Add(p.key, scalarString(p.value))
		}
	}
	return m
}

func dataSectionFromJSON(name string, v jsonValue) (*DataSection, error) {
	obj, ok := v.(*jsonObject)
	if !ok {
		return nil, fmt.Errorf("mwtab: section %q is not an object", name)
	}
	ds := NewDataSection()
	for _, p := range obj.pairs {
		if !containsString(ds.order, p.key) {
			ds.order = append(ds.order, p.key)
		}
		switch {
		case p.key == "Units":
			ds.Units = scalarString(p.value)
			ds.HasUnits = true
		case p.key == "Data" || p.key == "Metabolites" || p.key == "Extended":
			rows, rerr := tableFromJSON(name, p.key, p.value)
			if rerr != nil {
				return nil, rerr
			}
			switch p.key {
			case "Data":
				ds.Data = rows
			case "Metabolites":
				ds.Metabolites = rows
			case "Extended":
				ds.Extended = rows
			}
		case strings.HasSuffix(p.key, "_RESULTS_FILE"):
			if ds.Files == nil {
				ds.Files = make(map[string]*ResultsFile)
			}
			ds.Extra.Add(p.key, "")
			ds.Files[p.key] = parseResultsFileValue(scalarString(p.value))
		default:
			ds.Extra.Add(p.key, scalarString(p.value))
		}
	}
	return ds, nil
}

func tableFromJSON(section, table string, v jsonValue) ([]*Multimap, error) {
	arr, ok := v.([]jsonValue)
	if !ok {
		return nil, fmt.Errorf("mwtab: [%q][%q] is not an array", section, table)
	}
	rows := make([]*Multimap, 0, len(arr))
	for _, el := range arr {
		obj, isObj := el.(*jsonObject)
		if !isObj {
			return nil, fmt.Errorf("mwtab: [%q][%q] contains a non-object row", section, table)
		}
		rows = append(rows, multimapFromJSON(obj))
	}
	return rows, nil
}

// captureJSONHeaders derives the side-channel headers from the table rows,
// and mirrors the binned-data "Bin range(ppm)" label under "Metabolite" so
// both analysis kinds expose the same leading key.
func (d *Document) captureJSONHeaders() {
	ds := d.DataSection()
	if ds == nil {
		return
	}
	if cols := unionColumns(ds.Metabolites); len(cols) > 0 {
		d.rawMetabolHeader = cols
		if len(cols) > 1 {
			d.metaboliteHeader = cols[1:]
		}
	}
	if cols := unionColumns(ds.Extended); len(cols) > 0 {
		d.rawExtendedHeader = cols
		if len(cols) > 1 {
			d.extendedHeader = cols[1:]
		}
	}
	if cols := unionColumns(ds.Data); len(cols) > 0 {
		d.rawSamples = cols
		if len(cols) > 1 {
			d.samples = cols[1:]
		}
	}
	if strings.Contains(d.DataSectionKey(), "BINNED") {
		d.binnedHeader = d.samples
		d.rawBinnedHeader = d.rawSamples
		for _, row := range ds.Data {
			if bin, ok := row.Get("Bin range(ppm)"); ok && !row.Has("Metabolite") {
				row.Add("Metabolite", bin)
			}
		}
	}
}

// unionColumns returns every key appearing in rows, in first-appearance
// order.
func unionColumns(rows []*Multimap) []string {
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
	return columns
}

// jsonWriter emits the ordered tree with 4-space indentation, matching the
// structured form as deposited at the Metabolomics Workbench.
type jsonWriter struct {
	b     *strings.Builder
	depth int
}

func (w *jsonWriter) indent() {
	for i := 0; i < w.depth; i++ {
		w.b.WriteString("    ")
	}
}

func (w *jsonWriter) writeString(s string) {
	encoded, _ := json.Marshal(s)
	w.b.Write(encoded)
}

func (w *jsonWriter) writeObject(pairs []jsonPair) {
	if len(pairs) == 0 {
		w.b.WriteString("{}")
		return
	}
	w.b.WriteString("{\n")
	w.depth++
	for i, p := range pairs {
		w.indent()
		w.writeString(p.key)
		w.b.WriteString(": ")
		w.writeValue(p.value)
		if i < len(pairs)-1 {
			w.b.WriteString(",")
		}
		w.b.WriteString("\n")
	}
	w.depth--
	w.indent()
	w.b.WriteString("}")
}

func (w *jsonWriter) writeArray(values []jsonValue) {
	if len(values) == 0 {
		w.b.WriteString("[]")
		return
	}
	w.b.WriteString("[\n")
	w.depth++
	for i, v := range values {
		w.indent()
		w.writeValue(v)
		if i < len(values)-1 {
			w.b.WriteString(",")
		}
		w.b.WriteString("\n")
	}
	w.depth--
	w.indent()
	w.b.WriteString("]")
}

func (w *jsonWriter) writeValue(v jsonValue) {
	switch t := v.(type) {
	case string:
		w.writeString(t)
	case *jsonObject:
		w.writeObject(t.pairs)
	case []jsonValue:
		w.writeArray(t)
	case nil:
		w.b.WriteString("null")
	default:
		w.b.WriteString(fmt.Sprint(t))
	}
}

func (d *Document) writeJSON(b *strings.Builder) {
	root := &jsonObject{}
	for _, name := range d.names {
		switch s := d.sections[name].(type) {
		case *ItemSection:
			root.pairs = append(root.pairs, jsonPair{key: name, value: itemSectionToJSON(s)})
		case *ListSection:
			root.pairs = append(root.pairs, jsonPair{key: name, value: sampleFactorsToJSON(s)})
		case *DataSection:
			root.pairs = append(root.pairs, jsonPair{key: name, value: dataSectionToJSON(name, s)})
		}
	}
	w := &jsonWriter{b: b}
	w.writeObject(root.pairs)
}

func itemSectionToJSON(s *ItemSection) *jsonObject {
	obj := &jsonObject{}
	for _, p := range s.Fields.Pairs() {
		if rf, ok := s.Files[p.Key]; ok {
			obj.pairs = append(obj.pairs, jsonPair{key: p.Key, value: rf.String(" ")})
			continue
		}
		obj.pairs = append(obj.pairs, jsonPair{key: p.Key, value: p.Value})
	}
	return obj
}

func multimapToJSON(m *Multimap) *jsonObject {
	obj := &jsonObject{}
	if m != nil {
		for _, p := range m.Pairs() {
			obj.pairs = append(obj.pairs, jsonPair{key: p.Key, value: p.Value})
		}
	}
	return obj
}

func sampleFactorsToJSON(s *ListSection) []jsonValue {
	out := make([]jsonValue, 0, len(s.Rows))
	for _, row := range s.Rows {
		obj := &jsonObject{pairs: []jsonPair{
			{key: "Subject ID", value: row.SubjectID},
			{key: "Sample ID", value: row.SampleID},
			{key: "Factors", value: multimapToJSON(row.Factors)},
		}}
		if row.Additional != nil {
			obj.pairs = append(obj.pairs, jsonPair{key: "Additional sample data", value: multimapToJSON(row.Additional)})
		}
		out = append(out, obj)
	}
	return out
}

func dataSectionToJSON(name string, s *DataSection) *jsonObject {
	binned := strings.Contains(name, "BINNED")
	obj := &jsonObject{}
	if s.HasUnits {
		obj.pairs = append(obj.pairs, jsonPair{key: "Units", value: s.Units})
	}
	if s.Data != nil {
		obj.pairs = append(obj.pairs, jsonPair{key: "Data", value: tableToJSON(s.Data, binned)})
	}
	if s.Metabolites != nil {
		obj.pairs = append(obj.pairs, jsonPair{key: "Metabolites", value: tableToJSON(s.Metabolites, false)})
	}
	if s.Extended != nil {
		obj.pairs = append(obj.pairs, jsonPair{key: "Extended", value: tableToJSON(s.Extended, false)})
	}
	for _, p := range s.Extra.Pairs() {
		if rf, ok := s.Files[p.Key]; ok {
			obj.pairs = append(obj.pairs, jsonPair{key: p.Key, value: rf.String(" ")})
			continue
		}
		obj.pairs = append(obj.pairs, jsonPair{key: p.Key, value: p.Value})
	}
	return obj
}

// tableToJSON converts rows to objects. Binned rows write their label
// under "Bin range(ppm)" only, matching the deposited structured form.
func tableToJSON(rows []*Multimap, binned bool) []jsonValue {
	out := make([]jsonValue, 0, len(rows))
	for _, row := range rows {
		obj := &jsonObject{}
		hasBin := binned && row.Has("Bin range(ppm)")
		for _, p := range row.Pairs() {
			key := p.Key
			if binned && key == "Metabolite" {
				if hasBin {
					continue
				}
				key = "Bin range(ppm)"
			}
			obj.pairs = append(obj.pairs, jsonPair{key: key, value: p.Value})
		}
		out = append(out, obj)
	}
	return out
}
