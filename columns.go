package mwtab

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed columns.yaml
var columnsYAML []byte

// columnNAValues is the wider set of placeholders seen in METABOLITES
// table cells. Note the slightly different hyphen character, it is not a
// duplicate.
var columnNAValues = []string{
	"", "-", "−", "--", "---", ".", ",",
	"NA", "na", "n.a.", "N.A.", "n/a", "N/A", "<NA>", "#N/A", "NaN", "nan", "N",
	"null", "Null", "NULL", "NF",
	"No result", "NOT Found in Database", "No ID", "no data", "unknown",
	"undefined", "No record", "NIDB",
	"Not available", "TBC", "Internal Standard", "Intstd", "internal standard",
	"Internal standard",
	"Spiked Stable Isotope Labeled Internal Standards", "Int Std",
}

func isColumnNA(s string) bool {
	for _, v := range columnNAValues {
		if s == v {
			return true
		}
	}
	return false
}

// wrapPat keeps short match strings from firing inside longer words:
// "rt" matches "med rt" but not "quartile".
const wrapPat = `[^a-zA-Z0-9]`

func wrapExpr(s string) *regexp.Regexp {
	return regexp.MustCompile(`(` + wrapPat + `|^)` + s + `(` + wrapPat + `|$)`)
}

// NameMatcher filters column names by regex, substring, and exact
// criteria. The positive criteria are ORed together; a match on any
// "not" criterion removes the name regardless of the others.
type NameMatcher struct {
	regexes      []*regexp.Regexp
	notRegexes   []*regexp.Regexp
	regexSets    [][]*regexp.Regexp
	contains     []string
	notContains  []string
	containsSets [][]string
	exact        []string
}

// Match returns the names whose lowercased, trimmed form satisfies the
// matcher, preserving input order.
func (m *NameMatcher) Match(names []string) []string {
	var out []string
	for _, name := range names {
		if m.matches(strings.TrimSpace(strings.ToLower(name))) {
			out = append(out, name)
		}
	}
	return out
}

func (m *NameMatcher) matches(name string) bool {
	for _, re := range m.notRegexes {
		if re.MatchString(name) {
			return false
		}
	}
	for _, s := range m.notContains {
		if strings.Contains(name, s) {
			return false
		}
	}

	for _, re := range m.regexes {
		if re.MatchString(name) {
			return true
		}
	}
	for _, set := range m.regexSets {
		if allRegexMatch(set, name) {
			return true
		}
	}
	for _, s := range m.contains {
		if strings.Contains(name, s) {
			return true
		}
	}
	for _, set := range m.containsSets {
		if allContain(set, name) {
			return true
		}
	}
	for _, s := range m.exact {
		if name == s {
			return true
		}
	}
	return false
}

func allRegexMatch(set []*regexp.Regexp, name string) bool {
	for _, re := range set {
		if !re.MatchString(name) {
			return false
		}
	}
	return len(set) > 0
}

func allContain(set []string, name string) bool {
	for _, s := range set {
		if !strings.Contains(name, s) {
			return false
		}
	}
	return len(set) > 0
}

// ValueMatcher checks column values by type and full-string pattern.
// pattern and inverse are mutually exclusive; pattern wins when both are
// set. NA placeholders always count as a match.
type ValueMatcher struct {
	valuesType string // "integer", "numeric", "non-numeric", or ""
	pattern    *regexp.Regexp
	inverse    *regexp.Regexp
}

// Match returns one bool per value.
func (m *ValueMatcher) Match(values []string) []bool {
	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = m.matchValue(v)
	}
	return out
}

func (m *ValueMatcher) matchValue(v string) bool {
	v = strings.Trim(strings.TrimSpace(v), "‎")
	na := isColumnNA(v)

	regexMatch := true
	if m.pattern != nil {
		regexMatch = m.pattern.MatchString(v)
	} else if m.inverse != nil {
		regexMatch = !m.inverse.MatchString(v)
	}
	regexMatch = regexMatch || na

	_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	numeric := err == nil
	newNA := !numeric != na

	typeMatch := true
	switch m.valuesType {
	case "integer":
		typeMatch = !strings.Contains(v, ".") && !newNA
	case "numeric":
		typeMatch = !newNA
	case "non-numeric":
		typeMatch = newNA || na
	}
	return regexMatch && typeMatch
}

// ColumnFinder ties a standard column name to its name and value
// matchers.
type ColumnFinder struct {
	StandardName string
	Name         *NameMatcher
	Value        *ValueMatcher
}

// Regex fragments composed into the value pattern table. Ported from the
// column survey of Metabolomics Workbench datasets, so several of them
// deliberately accept common misspellings and format mistakes.
var (
	positiveInts       = `\d+`
	positiveNums       = strings.ReplaceAll(numsPat, "-?", "")
	positiveFloats     = `\d*.\d+`
	positiveScientific = `\d*\.\d*E(-|\+)?\d+`
	positiveFloatRange = positiveFloats + `\s*(_|-)\s*` + positiveFloats

	listOfNums           = listPattern(numsPat, ",", false)
	listOfNumsUnderscore = listPattern(numsPat, "_", false)
	listOfPosInts        = listPattern(positiveInts, ",", false)
	listOfPosIntsOr      = listPattern(positiveInts, "or", false)
	listOfPosIntsBar     = listPattern(positiveInts, `\|`, false)
	listOfPosIntsSlash   = listPattern(positiveInts, "/", false)
	listOfPosIntsSemi    = listPattern(positiveInts, ";", false)
	listOfPosIntsSpace   = listPattern(positiveInts, " ", false)
	listOfPosFloatsUnder = listPattern(positiveFloats, "_", false)

	elementSymbol = `([BCFHIKNOPSUVWY]|[ISZ][nr]|[ACELP][ru]|A[cglmst]|B[aehikr]|` +
		`C[adeflos]|D[bsy]|Es|F[elmr]|G[ade]|H[efgos]|Kr|L[aiv]|M[cdgnot]|` +
		`N[abdehiop]|O[gs]|P[abdmot]|R[abe-hnu]|S[bcegim]|T[abcehilms]|Xe|Yb)`
	elementCount   = `([1-9]\d*)*`
	formulaPat     = `(` + elementSymbol + elementCount + `)+`
	organicFormula = `(([CHNOPS])` + elementCount + `){4,}`

	inchiKeyPat       = `(InChIKey=)?[a-zA-Z]{14}-[a-zA-Z]{10}-[a-zA-Z]?`
	inchiKeyOrNull    = `(` + inchiKeyPat + `|null|No record)`
	listOfInchiKeys   = `(` + inchiKeyPat + `\s*,\s*)+(` + inchiKeyPat + `\s*|\s*)`
	listOfInchiSlash  = strings.ReplaceAll(listOfInchiKeys, ",", "/")

	keggPat = `((cpd:)?[CDMGKRZU]0?\d{5}\?{0,2}|(DG|ko)\d{5}|(CA|CE|UP|C)\d{4}|(NA|n/a))`
	hmdbPat = `((HMDB|HDMB|YMDB|HMBD)\d+(\*|\?)?|n/a)`
	hmdbInt = `\d{0,5}`

	lipidMapsPat = `(LM(PK|ST|GL|FA|SP|GP|PR|SL)[0-9A-Z]{8,10}\*?` +
		`|(ST|FA|PR|GP|PK|GL|SP)\d{4,6}-` + formulaPat + `)`

	// A CAS number mangled by spreadsheet date coercion still counts.
	datePat = `\d{1,2}/\d{1,2}/(\d{4}|\d{2})`
	casPat  = `(CAS: ?)?\d+-\d\d-0?\d` + `|` + datePat
)

// valuePatterns is the table the "pattern" and "inverse" keys in
// columns.yaml resolve against.
var valuePatterns = map[string]string{
	"moverz": `(` + numsPat +
		`|` + listOfNums +
		`|` + listOfNumsUnderscore +
		`|` + numsPat + `\s*/\s*` + numsPat +
		`|(` + numsPat + `\s*\(` + numsPat + `\)\s*;\s*)+(` + numsPat + `\s*\(` + numsPat + `\)\s*|\s*)` +
		`|` + numsPat + `(\s*>\s*|\s*<\s*)` + numsPat +
		`|(` + numsPat + `\s*)+` +
		`|` + numsPat + `\s*\(\s*` + numsPat + `\s*\)` +
		`|` + numsPat + `\s*-\s*` + numsPat + `)`,

	"mass": `(` + numsPat +
		`|` + listOfNums +
		`|` + numsPat + `\s*/\s*` + numsPat + `(\s*Da)?` +
		`|` + numsPat + `\s*-\s*` + numsPat + `)`,

	"inchi_key": `(` + inchiKeyPat + `(\*?|\?*)` +
		`|` + inchiKeyOrNull + `(\s*or\s*|\s*;\s*|\s*_\s*|\s*&\s*)` + inchiKeyOrNull +
		`|Sum\s*\(\s*` + inchiKeyPat + `(\s*\+\s*)` + inchiKeyPat + `\s*\)` +
		`|` + listOfInchiSlash + `)`,

	"organic_formula": `(` + organicFormula + `)`,

	"pubchem_id": `(` + positiveInts + `[&?]?` +
		`|` + listOfPosInts +
		`|` + listOfPosIntsOr +
		`|` + listOfPosIntsSlash +
		`|` + listOfPosIntsSpace +
		`|` + listOfPosIntsSemi +
		`|Sum \(\d+ \+ \d+\)` +
		`|CID` + positiveInts + `)`,

	"kegg_id": `(` + keggPat +
		`|` + listPattern(keggPat, ",", false) +
		`|` + listPattern(keggPat, ";", false) +
		`|` + listPattern(keggPat, "/", false) +
		`|` + listPattern(keggPat, "//", false) +
		`|` + listPattern(keggPat, "_", false) +
		`|` + listPattern(keggPat, "-", false) +
		`|` + listPattern(keggPat, "(/|,)", false) +
		`|` + listPattern(keggPat, " ", false) +
		`|` + listPattern(keggPat, `(\|)`, false) +
		`|` + keggPat + `-` + formulaPat +
		`|` + keggPat + `;\d+` + `)`,

	"hmdb_id": `(` + hmdbPat +
		`|` + hmdbInt +
		`|` + listPattern(hmdbPat, ",", false) +
		`|` + listPattern(hmdbPat, "/", false) +
		`|` + listPattern(hmdbInt, ",", false) +
		`|` + listPattern(hmdbInt, "/", false) +
		`|Sum \(HMDB\d+ \+ HMDB\d+\)` +
		`|` + listPattern(hmdbPat, "&", false) +
		`|` + listPattern(hmdbPat, ";", false) +
		`|` + listPattern(hmdbPat, " ", false) +
		`|METPA\d+` +
		`|` + listPattern(hmdbPat, "_", false) + `)`,

	"lm_id": `(` + lipidMapsPat +
		`|` + listPattern(lipidMapsPat, "_", false) +
		`|` + listPattern(lipidMapsPat, ",", false) +
		`|` + listPattern(lipidMapsPat, "/", false) +
		`|` + positiveInts + `)`,

	"chemspider_id": `(` + positiveInts + `[&?]?` +
		`|` + listOfPosInts +
		`|` + listOfPosIntsOr +
		`|` + listOfPosIntsSlash +
		`|` + listOfPosIntsSpace +
		`|` + listOfPosIntsSemi +
		`|Sum \(\d+ \+ \d+\)` +
		`|CID` + positiveInts +
		`|CSID` + positiveInts +
		`|[CD]\d{5}` +
		`|` + listOfPosIntsBar + `)`,

	"cas_number": `(` + casPat + `|` + listPattern(casPat, ",", false) +
		`|` + listPattern(casPat, ";", false) + `)`,

	"float_or_scientific": `(` + floatPat + `|` + scientificPat + `)`,

	"comment_values": `(` + floatPat + `|` + scientificPat + `|\d{2,})`,

	"retention": `(` + positiveFloats +
		`|\d` +
		`|` + positiveScientific +
		`|` + positiveFloatRange +
		`|` + listOfPosFloatsUnder + `)`,

	"positive_ints": `(` + positiveInts + `)`,

	"positive_nums": `(` + positiveNums + `)`,

	"polarity": `(?i)((neg|pos|1|-1|\+|positive|negative)` +
		`|\[M\+H\]\+|\[M-H\]-|5MM\+|5MM-)`,

	"esi_mode": `(neg|pos|1|-1|(ESI )?\(\+\)( ESI)?|(ESI )?\(-\)( ESI| ES\))?|positive|negative)`,

	"ionization_mode": `(?i)((neg|pos|1|-1|(ES)?\+|(ES)?-|positive|negative|TOF|Splitless|Split30))`,
}

type finderConfig struct {
	Name  string `yaml:"name"`
	Match struct {
		Regex        []string   `yaml:"regex"`
		NotRegex     []string   `yaml:"not_regex"`
		RegexSets    [][]string `yaml:"regex_sets"`
		Contains     []string   `yaml:"contains"`
		NotContains  []string   `yaml:"not_contains"`
		ContainsSets [][]string `yaml:"contains_sets"`
		Exact        []string   `yaml:"exact"`
	} `yaml:"match"`
	Values struct {
		Type    string `yaml:"type"`
		Pattern string `yaml:"pattern"`
		Inverse string `yaml:"inverse"`
	} `yaml:"values"`
}

type columnsConfig struct {
	Finders []finderConfig      `yaml:"finders"`
	Implied map[string][]string `yaml:"implied"`
}

var (
	columnFinders []*ColumnFinder
	finderByName  map[string]*ColumnFinder
	impliedPairs  map[string][]string
)

func init() {
	var cfg columnsConfig
	if err := yaml.Unmarshal(columnsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("mwtab: bad columns.yaml: %v", err))
	}
	finderByName = make(map[string]*ColumnFinder, len(cfg.Finders))
	for _, fc := range cfg.Finders {
		finder, err := buildFinder(fc)
		if err != nil {
			panic(fmt.Sprintf("mwtab: bad columns.yaml: %v", err))
		}
		columnFinders = append(columnFinders, finder)
		finderByName[finder.StandardName] = finder
	}
	impliedPairs = cfg.Implied
}

func buildFinder(fc finderConfig) (*ColumnFinder, error) {
	nm := &NameMatcher{
		contains:     fc.Match.Contains,
		notContains:  fc.Match.NotContains,
		containsSets: fc.Match.ContainsSets,
		exact:        fc.Match.Exact,
	}
	for _, s := range fc.Match.Regex {
		nm.regexes = append(nm.regexes, wrapExpr(s))
	}
	for _, s := range fc.Match.NotRegex {
		nm.notRegexes = append(nm.notRegexes, wrapExpr(s))
	}
	for _, set := range fc.Match.RegexSets {
		wrapped := make([]*regexp.Regexp, 0, len(set))
		for _, s := range set {
			wrapped = append(wrapped, wrapExpr(s))
		}
		nm.regexSets = append(nm.regexSets, wrapped)
	}

	vm := &ValueMatcher{valuesType: fc.Values.Type}
	if fc.Values.Pattern != "" {
		expr, ok := valuePatterns[fc.Values.Pattern]
		if !ok {
			return nil, fmt.Errorf("finder %s: unknown value pattern %q", fc.Name, fc.Values.Pattern)
		}
		vm.pattern = regexp.MustCompile(`^(?:` + expr + `)$`)
	}
	if fc.Values.Inverse != "" {
		expr, ok := valuePatterns[fc.Values.Inverse]
		if !ok {
			return nil, fmt.Errorf("finder %s: unknown inverse pattern %q", fc.Name, fc.Values.Inverse)
		}
		vm.inverse = regexp.MustCompile(`^(?:` + expr + `)$`)
	}
	return &ColumnFinder{StandardName: fc.Name, Name: nm, Value: vm}, nil
}
