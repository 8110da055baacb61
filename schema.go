package mwtab

import (
	"regexp"
	"strings"
)

// naValues are the placeholder strings treated as "no value" throughout
// the format.
var naValues = []string{
	"", "-", "−", "--", "---",
	"NA", "na", "n.a.", "N.A.", "n/a", "N/A", "#N/A", "NaN", "nan",
	"null", "Null", "NULL", "none", "None",
	"unspecified", "Unspecified",
}

// "NA" is a legitimate metabolite name that very rarely shows up.
var metaboliteNAValues = func() []string {
	vals := make([]string, 0, len(naValues)-1)
	for _, v := range naValues {
		if v != "NA" {
			vals = append(vals, v)
		}
	}
	return vals
}()

func isNA(s string) bool {
	for _, v := range naValues {
		if s == v {
			return true
		}
	}
	return false
}

func isMetaboliteNA(s string) bool {
	for _, v := range metaboliteNAValues {
		if s == v {
			return true
		}
	}
	return false
}

// Numeric building blocks shared by the unit patterns below and the
// metabolite column matchers.
const (
	integerPat    = `-?\d+`
	floatPat      = `-?\d*\.\d+`
	scientificPat = `-?\d*\.\d+E(-|\+)?\d+`
	numsPat       = "(" + floatPat + "|" + scientificPat + "|" + integerPat + ")"
	numRangePat   = numsPat + `(-|\sto\s|−)` + numsPat
)

// listPattern matches a delimited list of element. When emptyOK is true
// the pattern also matches a single element and the empty string.
func listPattern(element, delimiter string, emptyOK bool) string {
	repeat := "+"
	if emptyOK {
		repeat = "*"
	}
	return `((` + element + `\s*` + delimiter + `\s*)` + repeat + `(` + element + `\s*|\s*))`
}

// fieldSpec describes the value constraints on one item-section key.
type fieldSpec struct {
	notNA            bool
	pattern          *regexp.Regexp
	patternMessage   string
	enum             []string
	forbidden        *regexp.Regexp
	forbiddenMessage string
	email            bool
	file             bool // value is a results-file subsection
}

func notNA() *fieldSpec {
	return &fieldSpec{notNA: true}
}

func patternField(expr, message string) *fieldSpec {
	return &fieldSpec{pattern: regexp.MustCompile(expr), patternMessage: message}
}

func enumField(values ...string) *fieldSpec {
	return &fieldSpec{enum: values}
}

const (
	numericFieldMsg   = ` must be a positive integer. Ex. "1" or "2051".`
	ignoreComplicated = " Ignore this when more complicated descriptions are required."
)

func idField(abbrev string) *fieldSpec {
	return patternField(`^`+abbrev+`\d{6}$`,
		` must be the letters "`+abbrev+`" followed by 6 numbers. Ex. "`+abbrev+`001405".`)
}

func quoteUnits(units []string) string {
	quoted := make([]string, len(units))
	for i, u := range units {
		quoted[i] = "'" + u + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func unitMessage(canRange bool, units []string) string {
	rangeString := " "
	if canRange {
		rangeString = ` or range (ex. "5-6") `
	}
	return " should be a number" + rangeString +
		`followed by a space with a unit (ex. "5 V") from the following list: ` +
		quoteUnits(units) + "." + ignoreComplicated
}

// unitField requires a number followed by a space and one of the units,
// e.g. "5 V". With canRange, "5-7 V", "5−7 V" and "5 to 7 V" also match.
func unitField(canRange bool, units ...string) *fieldSpec {
	alt := "(" + strings.Join(units, "|") + ")"
	var expr string
	if canRange {
		expr = "^(" + numRangePat + "|" + numsPat + ") " + alt + "$"
	} else {
		expr = "^" + numsPat + " " + alt + "$"
	}
	return patternField(expr, unitMessage(canRange, units))
}

func numField() *fieldSpec {
	return patternField(`^((\d+)|(\d*\.\d+))$`,
		" should be a unitless number."+ignoreComplicated)
}

func intField() *fieldSpec {
	return patternField(`^\d+$`,
		" should be a unitless integer."+ignoreComplicated)
}

// sectionSpec is the schema for one item section.
type sectionSpec struct {
	fields   map[string]*fieldSpec
	required []string
}

func (s *sectionSpec) isRequired(key string) bool {
	for _, r := range s.required {
		if r == key {
			return true
		}
	}
	return false
}

var workbenchSpec = &sectionSpec{
	fields: map[string]*fieldSpec{
		"STUDY_ID":     idField("ST"),
		"ANALYSIS_ID":  idField("AN"),
		"VERSION":      patternField(`^\d+$`, numericFieldMsg),
		"CREATED_ON":   notNA(),
		"PROJECT_ID":   idField("PR"),
		"HEADER":       notNA(),
		"DATATRACK_ID": patternField(`^\d+$`, numericFieldMsg),
		"filename":     {},
	},
	required: []string{"VERSION", "CREATED_ON"},
}

var projectSpec = &sectionSpec{
	fields: map[string]*fieldSpec{
		"PROJECT_TITLE":    notNA(),
		"PROJECT_TYPE":     notNA(),
		"PROJECT_SUMMARY":  notNA(),
		"INSTITUTE":        notNA(),
		"DEPARTMENT":       notNA(),
		"LABORATORY":       notNA(),
		"LAST_NAME":        notNA(),
		"FIRST_NAME":       notNA(),
		"ADDRESS":          notNA(),
		"EMAIL":            {email: true},
		"PHONE":            notNA(),
		"FUNDING_SOURCE":   notNA(),
		"PROJECT_COMMENTS": notNA(),
		"PUBLICATIONS":     notNA(),
		"CONTRIBUTORS":     notNA(),
		"DOI": patternField(`10\.\d{4,9}/[-._;()/:a-z0-9A-Z]+`,
			" does not appear to be a valid DOI."),
	},
	required: []string{
		"PROJECT_TITLE", "PROJECT_SUMMARY", "INSTITUTE",
		"LAST_NAME", "FIRST_NAME", "ADDRESS", "EMAIL", "PHONE",
	},
}

var studySpec = &sectionSpec{
	fields: map[string]*fieldSpec{
		"STUDY_TITLE":    notNA(),
		"STUDY_TYPE":     notNA(),
		"STUDY_SUMMARY":  notNA(),
		"INSTITUTE":      notNA(),
		"DEPARTMENT":     notNA(),
		"LABORATORY":     notNA(),
		"LAST_NAME":      notNA(),
		"FIRST_NAME":     notNA(),
		"ADDRESS":        notNA(),
		"EMAIL":          {email: true},
		"PHONE":          notNA(),
		"SUBMIT_DATE":    notNA(),
		"NUM_GROUPS":     notNA(),
		"TOTAL_SUBJECTS": notNA(),
		"NUM_MALES":      notNA(),
		"NUM_FEMALES":    notNA(),
		"STUDY_COMMENTS": notNA(),
		"PUBLICATIONS":   notNA(),
	},
	required: []string{
		"STUDY_TITLE", "STUDY_SUMMARY", "INSTITUTE",
		"LAST_NAME", "FIRST_NAME", "ADDRESS", "EMAIL", "PHONE",
	},
}

var subjectSpec = &sectionSpec{
	fields: map[string]*fieldSpec{
		"SUBJECT_TYPE":    notNA(),
		"SUBJECT_SPECIES": notNA(),
		"TAXONOMY_ID": {
			notNA:          true,
			pattern:        regexp.MustCompile(listPattern(`\d+`, `(,|;|\||/)`, true)),
			patternMessage: " must be a number or list of numbers.",
		},
		"GENOTYPE_STRAIN":         notNA(),
		"AGE_OR_AGE_RANGE":        unitField(true, "weeks", "days", "months", "years"),
		"WEIGHT_OR_WEIGHT_RANGE":  unitField(true, "g", "mg", "kg", "lbs"),
		"HEIGHT_OR_HEIGHT_RANGE":  unitField(true, "cm", "in"),
		"GENDER": patternField(`^((?i:male)|(?i:female)|(?i:male, female)|(?i:hermaphrodite)|N/A)$`,
			` should be one of "Male", "Female", "Male, Female", "Hermaphrodite", or "N/A".`+ignoreComplicated),
		"HUMAN_RACE":                 notNA(),
		"HUMAN_ETHNICITY":            notNA(),
		"HUMAN_TRIAL_TYPE":           notNA(),
		"HUMAN_LIFESTYLE_FACTORS":    notNA(),
		"HUMAN_MEDICATIONS":          notNA(),
		"HUMAN_PRESCRIPTION_OTC":     notNA(),
		"HUMAN_SMOKING_STATUS":       notNA(),
		"HUMAN_ALCOHOL_DRUG_USE":     notNA(),
		"HUMAN_NUTRITION":            notNA(),
		"HUMAN_INCLUSION_CRITERIA":   notNA(),
		"HUMAN_EXCLUSION_CRITERIA":   notNA(),
		"ANIMAL_ANIMAL_SUPPLIER":     notNA(),
		"ANIMAL_HOUSING":             notNA(),
		"ANIMAL_LIGHT_CYCLE":         notNA(),
		"ANIMAL_FEED":                notNA(),
		"ANIMAL_WATER":               notNA(),
		"ANIMAL_INCLUSION_CRITERIA":  notNA(),
		"CELL_BIOSOURCE_OR_SUPPLIER": notNA(),
		"CELL_STRAIN_DETAILS":        notNA(),
		"SUBJECT_COMMENTS":           notNA(),
		"CELL_PRIMARY_IMMORTALIZED":  notNA(),
		"CELL_PASSAGE_NUMBER":        notNA(),
		"CELL_COUNTS":                notNA(),
		"SPECIES_GROUP":              notNA(),
	},
	required: []string{"SUBJECT_TYPE", "SUBJECT_SPECIES"},
}

var collectionSpec = &sectionSpec{
	fields: map[string]*fieldSpec{
		"COLLECTION_SUMMARY":           notNA(),
		"COLLECTION_PROTOCOL_ID":       notNA(),
		"COLLECTION_PROTOCOL_FILENAME": notNA(),
		"COLLECTION_PROTOCOL_COMMENTS": notNA(),
		"SAMPLE_TYPE":                  notNA(),
		"COLLECTION_METHOD":            notNA(),
		"COLLECTION_LOCATION":          notNA(),
		"COLLECTION_FREQUENCY":         notNA(),
		"COLLECTION_DURATION":          notNA(),
		"COLLECTION_TIME":              notNA(),
		"VOLUMEORAMOUNT_COLLECTED":     notNA(),
		"STORAGE_CONDITIONS":           notNA(),
		"COLLECTION_VIALS":             notNA(),
		"STORAGE_VIALS":                notNA(),
		"COLLECTION_TUBE_TEMP":         notNA(),
		"ADDITIVES":                    notNA(),
		"BLOOD_SERUM_OR_PLASMA": patternField(`(?i)^(blood|plasma|serum)$`,
			` should be one of "Blood", "Plasma", or "Serum".`+ignoreComplicated),
		"TISSUE_CELL_IDENTIFICATION": notNA(),
		"TISSUE_CELL_QUANTITY_TAKEN": notNA(),
	},
	required: []string{"COLLECTION_SUMMARY"},
}

var treatmentSpec = &sectionSpec{
	fields: map[string]*fieldSpec{
		"TREATMENT_SUMMARY":              notNA(),
		"TREATMENT_PROTOCOL_ID":          notNA(),
		"TREATMENT_PROTOCOL_FILENAME":    notNA(),
		"TREATMENT_PROTOCOL_COMMENTS":    notNA(),
		"TREATMENT":                      notNA(),
		"TREATMENT_COMPOUND":             notNA(),
		"TREATMENT_ROUTE":                notNA(),
		"TREATMENT_DOSE":                 notNA(),
		"TREATMENT_DOSEVOLUME":           notNA(),
		"TREATMENT_DOSEDURATION":         unitField(true, "h", "weeks", "days"),
		"TREATMENT_VEHICLE":              notNA(),
		"ANIMAL_VET_TREATMENTS":          notNA(),
		"ANIMAL_ANESTHESIA":              notNA(),
		"ANIMAL_ACCLIMATION_DURATION":    notNA(),
		"ANIMAL_FASTING":                 notNA(),
		"ANIMAL_ENDP_EUTHANASIA":         notNA(),
		"ANIMAL_ENDP_TISSUE_COLL_LIST":   notNA(),
		"ANIMAL_ENDP_TISSUE_PROC_METHOD": notNA(),
		"ANIMAL_ENDP_CLINICAL_SIGNS":     notNA(),
		"HUMAN_FASTING":                  notNA(),
		"HUMAN_ENDP_CLINICAL_SIGNS":      notNA(),
		"CELL_STORAGE":                   notNA(),
		"CELL_GROWTH_CONTAINER":          notNA(),
		"CELL_GROWTH_CONFIG":             notNA(),
		"CELL_GROWTH_RATE":               notNA(),
		"CELL_INOC_PROC":                 notNA(),
		"CELL_MEDIA":                     notNA(),
		"CELL_ENVIR_COND":                notNA(),
		"CELL_HARVESTING":                notNA(),
		"PLANT_GROWTH_SUPPORT":           notNA(),
		"PLANT_GROWTH_LOCATION":          notNA(),
		"PLANT_PLOT_DESIGN":              notNA(),
		"PLANT_LIGHT_PERIOD":             notNA(),
		"PLANT_HUMIDITY":                 notNA(),
		"PLANT_TEMP":                     unitField(true, "°C", "C"),
		"PLANT_WATERING_REGIME":          notNA(),
		"PLANT_NUTRITIONAL_REGIME":       notNA(),
		"PLANT_ESTAB_DATE":               notNA(),
		"PLANT_HARVEST_DATE":             notNA(),
		"PLANT_GROWTH_STAGE":             notNA(),
		"PLANT_METAB_QUENCH_METHOD":      notNA(),
		"PLANT_HARVEST_METHOD":           notNA(),
		"PLANT_STORAGE":                  notNA(),
		"CELL_PCT_CONFLUENCE":            notNA(),
		"CELL_MEDIA_LASTCHANGED":         notNA(),
	},
	required: []string{"TREATMENT_SUMMARY"},
}

var samplePrepSpec = &sectionSpec{
	fields: map[string]*fieldSpec{
		"SAMPLEPREP_SUMMARY":             notNA(),
		"SAMPLEPREP_PROTOCOL_ID":         notNA(),
		"SAMPLEPREP_PROTOCOL_FILENAME":   notNA(),
		"SAMPLEPREP_PROTOCOL_COMMENTS":   notNA(),
		"PROCESSING_METHOD":              notNA(),
		"PROCESSING_STORAGE_CONDITIONS":  notNA(),
		"EXTRACTION_METHOD":              notNA(),
		"EXTRACT_CONCENTRATION_DILUTION": notNA(),
		"EXTRACT_ENRICHMENT":             notNA(),
		"EXTRACT_CLEANUP":                notNA(),
		"EXTRACT_STORAGE":                notNA(),
		"SAMPLE_RESUSPENSION":            notNA(),
		"SAMPLE_DERIVATIZATION":          notNA(),
		"SAMPLE_SPIKING":                 notNA(),
		"ORGAN":                          notNA(),
		"ORGAN_SPECIFICATION":            notNA(),
		"CELL_TYPE":                      notNA(),
		"SUBCELLULAR_LOCATION":           notNA(),
	},
	required: []string{"SAMPLEPREP_SUMMARY"},
}

var chromatographySpec = &sectionSpec{
	fields: map[string]*fieldSpec{
		"CHROMATOGRAPHY_SUMMARY": notNA(),
		"CHROMATOGRAPHY_TYPE":    notNA(),
		"INSTRUMENT_NAME":        notNA(),
		"COLUMN_NAME":            notNA(),
		"FLOW_GRADIENT":          notNA(),
		"FLOW_RATE":              unitField(true, "mL/min", "uL/min", "μL/min"),
		"COLUMN_TEMPERATURE":     unitField(true, "°C", "C"),
		"METHODS_FILENAME":       notNA(),
		"SAMPLE_INJECTION":       unitField(false, "μL", "uL"),
		"SOLVENT_A":              notNA(),
		"SOLVENT_B":              notNA(),
		"METHODS_ID":             notNA(),
		"COLUMN_PRESSURE":        unitField(true, "psi", "bar"),
		"INJECTION_TEMPERATURE":  injectionTemperatureSpec(),
		"INTERNAL_STANDARD":      notNA(),
		"INTERNAL_STANDARD_MT":   notNA(),
		"RETENTION_INDEX":        notNA(),
		"RETENTION_TIME":         notNA(),
		"SAMPLING_CONE":          notNA(),
		"ANALYTICAL_TIME":        unitField(true, "min"),
		"CAPILLARY_VOLTAGE":      unitField(false, "V", "kV"),
		"MIGRATION_TIME":         notNA(),
		"OVEN_TEMPERATURE":       notNA(),
		"PRECONDITIONING":        notNA(),
		"RUNNING_BUFFER":         notNA(),
		"RUNNING_VOLTAGE":        unitField(false, "V", "kV"),
		"SHEATH_LIQUID":          notNA(),
		"TIME_PROGRAM":           notNA(),
		"TRANSFERLINE_TEMPERATURE": unitField(false, "°C", "C"),
		"WASHING_BUFFER":           notNA(),
		"WEAK_WASH_SOLVENT_NAME":   notNA(),
		"WEAK_WASH_VOLUME":         unitField(false, "μL", "uL"),
		"STRONG_WASH_SOLVENT_NAME": notNA(),
		"STRONG_WASH_VOLUME":       unitField(false, "μL", "uL"),
		"TARGET_SAMPLE_TEMPERATURE": unitField(false, "°C", "C"),
		"SAMPLE_LOOP_SIZE":          unitField(false, "μL", "uL"),
		"SAMPLE_SYRINGE_SIZE":       unitField(false, "μL", "uL"),
		"RANDOMIZATION_ORDER":       notNA(),
		"CHROMATOGRAPHY_COMMENTS":   notNA(),
	},
	required: []string{
		"CHROMATOGRAPHY_TYPE", "INSTRUMENT_NAME", "COLUMN_NAME", "FLOW_GRADIENT",
		"FLOW_RATE", "COLUMN_TEMPERATURE", "SOLVENT_A", "SOLVENT_B",
	},
}

// injectionTemperatureSpec is the column temperature unit field widened to
// accept the literal "room temperature".
func injectionTemperatureSpec() *fieldSpec {
	base := unitField(true, "°C", "C")
	expr := base.pattern.String()
	expr = "^(" + expr[1:len(expr)-1] + ")|(?i:room temperature)$"
	return patternField(expr,
		` should be a number or range (ex. "5-6") followed by a space with a unit `+
			`(ex. "5 V") from the following list: ['°C', 'C'] or "room temperature".`+
			ignoreComplicated)
}

var analysisSpec = &sectionSpec{
	fields: map[string]*fieldSpec{
		"ANALYSIS_TYPE":               enumField("MS", "NMR"),
		"LABORATORY_NAME":             notNA(),
		"ACQUISITION_DATE":            notNA(),
		"SOFTWARE_VERSION":            notNA(),
		"OPERATOR_NAME":               notNA(),
		"DETECTOR_TYPE":               notNA(),
		"ANALYSIS_PROTOCOL_FILE":      notNA(),
		"ACQUISITION_PARAMETERS_FILE": notNA(),
		"PROCESSING_PARAMETERS_FILE":  notNA(),
		"DATA_FORMAT":                 notNA(),
		"ACQUISITION_ID":              notNA(),
		"ACQUISITION_TIME":            notNA(),
		"ANALYSIS_COMMENTS":           notNA(),
		"ANALYSIS_DISPLAY":            notNA(),
		"INSTRUMENT_NAME":             notNA(),
		"INSTRUMENT_PARAMETERS_FILE":  notNA(),
		"NUM_FACTORS":                 notNA(),
		"NUM_METABOLITES":             notNA(),
		"PROCESSED_FILE":              notNA(),
		"RANDOMIZATION_ORDER":         notNA(),
		"RAW_FILE":                    notNA(),
	},
	required: []string{"ANALYSIS_TYPE"},
}

// resultsFileSpec validates the nested *_RESULTS_FILE subsection.
var resultsFileSpec = &sectionSpec{
	fields: map[string]*fieldSpec{
		"filename": notNA(),
		"UNITS":    notNA(),
		"Has m/z":  notNA(),
		"Has RT":   notNA(),
		"RT units": notNA(),
	},
	required: []string{"filename", "UNITS"},
}

var msSpec = &sectionSpec{
	fields: map[string]*fieldSpec{
		"INSTRUMENT_NAME": notNA(),
		"INSTRUMENT_TYPE": notNA(),
		"MS_TYPE":         notNA(),
		"ION_MODE": patternField(`(?i)^(positive|negative|positive, negative|unspecified)$`,
			` should be one of "Positive", "Negative", "Positive, Negative", or "Unspecified".`+ignoreComplicated),
		"CAPILLARY_TEMPERATURE": unitField(true, "°C", "C"),
		"CAPILLARY_VOLTAGE":     unitField(false, "V", "kV"),
		"COLLISION_ENERGY":      notNA(),
		"COLLISION_GAS": patternField(`(?i)^(nitrogen|argon)$`,
			` should be one of "Nitrogen" or "Argon".`+ignoreComplicated),
		"DRY_GAS_FLOW":           unitField(false, "L/hr", "L/min"),
		"DRY_GAS_TEMP":           unitField(false, "°C", "C"),
		"FRAGMENT_VOLTAGE":       unitField(false, "V"),
		"FRAGMENTATION_METHOD":   notNA(),
		"GAS_PRESSURE":           unitField(false, "psi", "psig", "bar", "kPa"),
		"HELIUM_FLOW":            unitField(false, "mL/min"),
		"ION_SOURCE_TEMPERATURE": unitField(false, "°C", "C"),
		"ION_SPRAY_VOLTAGE":      unitField(false, "V", "kV"),
		"IONIZATION": {
			notNA:     true,
			forbidden: regexp.MustCompile(`(?i)^(pos|neg|positive|negative|postive|both)$`),
			forbiddenMessage: ` should not be "positive" or "negative". ` +
				`"ION_MODE" is where that should be indicated.`,
		},
		"IONIZATION_ENERGY":    unitField(false, "eV"),
		"IONIZATION_POTENTIAL": notNA(),
		"MASS_ACCURACY":        notNA(),
		"PRECURSOR_TYPE":       notNA(),
		"REAGENT_GAS":          notNA(),
		"SOURCE_TEMPERATURE":   unitField(false, "°C", "C"),
		"SPRAY_VOLTAGE":        unitField(false, "kV"),
		"ACTIVATION_PARAMETER": notNA(),
		"ACTIVATION_TIME":      unitField(false, "ms"),
		"ATOM_GUN_CURRENT":     notNA(),
		"AUTOMATIC_GAIN_CONTROL": notNA(),
		"BOMBARDMENT":            notNA(),
		"CDL_SIDE_OCTOPOLES_BIAS_VOLTAGE": notNA(),
		"CDL_TEMPERATURE":                 notNA(),
		"DATAFORMAT":                      notNA(),
		"DESOLVATION_GAS_FLOW":            unitField(false, "L/hr", "L/min"),
		"DESOLVATION_TEMPERATURE":         unitField(false, "°C", "C"),
		"INTERFACE_VOLTAGE":               notNA(),
		"IT_SIDE_OCTOPOLES_BIAS_VOLTAGE":  notNA(),
		"LASER":                           notNA(),
		"MATRIX":                          notNA(),
		"NEBULIZER":                       notNA(),
		"OCTPOLE_VOLTAGE":                 unitField(false, "V"),
		"PROBE_TIP":                       notNA(),
		"RESOLUTION_SETTING":              notNA(),
		"SAMPLE_DRIPPING":                 notNA(),
		"SCAN_RANGE_MOVERZ":               notNA(),
		"SCANNING":                        notNA(),
		"SCANNING_CYCLE":                  notNA(),
		"SCANNING_RANGE":                  notNA(),
		"SKIMMER_VOLTAGE":                 unitField(false, "V"),
		"TUBE_LENS_VOLTAGE":               notNA(),
		"MS_COMMENTS":                     notNA(),
		"MS_RESULTS_FILE":                 {file: true},
	},
	required: []string{"INSTRUMENT_NAME", "INSTRUMENT_TYPE", "MS_TYPE", "ION_MODE"},
}

var nmrSpec = &sectionSpec{
	fields: map[string]*fieldSpec{
		"INSTRUMENT_NAME":           notNA(),
		"INSTRUMENT_TYPE":           notNA(),
		"NMR_EXPERIMENT_TYPE":       notNA(),
		"NMR_COMMENTS":              notNA(),
		"FIELD_FREQUENCY_LOCK":      notNA(),
		"STANDARD_CONCENTRATION":    unitField(false, "mM"),
		"SPECTROMETER_FREQUENCY":    unitField(false, "MHz"),
		"NMR_PROBE":                 notNA(),
		"NMR_SOLVENT":               notNA(),
		"NMR_TUBE_SIZE":             notNA(),
		"SHIMMING_METHOD":           notNA(),
		"PULSE_SEQUENCE":            notNA(),
		"WATER_SUPPRESSION":         notNA(),
		"PULSE_WIDTH":               notNA(),
		"POWER_LEVEL":               unitField(false, "W", "dB"),
		"RECEIVER_GAIN":             numField(),
		"OFFSET_FREQUENCY":          unitField(false, "ppm", "Hz"),
		"PRESATURATION_POWER_LEVEL": unitField(false, "W", "dB"),
		"CHEMICAL_SHIFT_REF_CPD":    notNA(),
		"TEMPERATURE":               unitField(false, "°C", "C", "K"),
		"NUMBER_OF_SCANS":           intField(),
		"DUMMY_SCANS":               notNA(),
		"ACQUISITION_TIME":          unitField(false, "s"),
		"RELAXATION_DELAY":          unitField(false, "s", "ms", "us", "μs"),
		"SPECTRAL_WIDTH":            unitField(false, "ppm", "Hz"),
		"NUM_DATA_POINTS_ACQUIRED":  intField(),
		"REAL_DATA_POINTS":          notNA(),
		"LINE_BROADENING":           unitField(false, "Hz"),
		"ZERO_FILLING":              notNA(),
		"APODIZATION":               notNA(),
		"BASELINE_CORRECTION_METHOD": notNA(),
		"CHEMICAL_SHIFT_REF_STD":     notNA(),
		"BINNED_INCREMENT":           unitField(false, "ppm"),
		"BINNED_DATA_NORMALIZATION_METHOD":  notNA(),
		"BINNED_DATA_PROTOCOL_FILE":         notNA(),
		"BINNED_DATA_CHEMICAL_SHIFT_RANGE":  notNA(),
		"BINNED_DATA_EXCLUDED_RANGE":        notNA(),
		"NMR_RESULTS_FILE":                  {file: true},
	},
	required: []string{
		"INSTRUMENT_NAME", "INSTRUMENT_TYPE",
		"NMR_EXPERIMENT_TYPE", "SPECTROMETER_FREQUENCY",
	},
}

// dataTableSpec is the schema for one tabular data section: which named
// blocks it may carry and which are required.
type dataTableSpec struct {
	subsections []string
	required    []string
}

var metaboliteDataSpec = &dataTableSpec{
	subsections: []string{"Units", "Data", "Metabolites", "Extended"},
	required:    []string{"Units", "Data"},
}

var binnedDataSpec = &dataTableSpec{
	subsections: []string{"Units", "Data"},
	required:    []string{"Units", "Data"},
}

// documentSpec is the whole-file schema for one analysis kind.
type documentSpec struct {
	sections     map[string]*sectionSpec
	dataSections map[string]*dataTableSpec
	required     []string

	// Either a data section or a results-file subsection of the analysis
	// section must be present.
	analysisSection    string
	resultsFileKey     string
	resultsFileMessage string
}

func (s *documentSpec) knownSection(name string) bool {
	if name == "SUBJECT_SAMPLE_FACTORS" {
		return true
	}
	if _, ok := s.sections[name]; ok {
		return true
	}
	_, ok := s.dataSections[name]
	return ok
}

var baseSections = map[string]*sectionSpec{
	"METABOLOMICS WORKBENCH": workbenchSpec,
	"PROJECT":                projectSpec,
	"STUDY":                  studySpec,
	"SUBJECT":                subjectSpec,
	"COLLECTION":             collectionSpec,
	"TREATMENT":              treatmentSpec,
	"SAMPLEPREP":             samplePrepSpec,
	"ANALYSIS":               analysisSpec,
}

var baseRequired = []string{
	"METABOLOMICS WORKBENCH", "PROJECT", "STUDY", "SUBJECT",
	"SUBJECT_SAMPLE_FACTORS", "COLLECTION", "TREATMENT", "SAMPLEPREP", "ANALYSIS",
}

func mergeSections(extra map[string]*sectionSpec) map[string]*sectionSpec {
	merged := make(map[string]*sectionSpec, len(baseSections)+len(extra))
	for name, spec := range baseSections {
		merged[name] = spec
	}
	for name, spec := range extra {
		merged[name] = spec
	}
	return merged
}

// msDocumentSpec validates mass spectrometry files.
var msDocumentSpec = &documentSpec{
	sections: mergeSections(map[string]*sectionSpec{
		"MS":             msSpec,
		"CHROMATOGRAPHY": chromatographySpec,
	}),
	dataSections: map[string]*dataTableSpec{
		"MS_METABOLITE_DATA": metaboliteDataSpec,
	},
	required:        append(append([]string(nil), baseRequired...), "MS"),
	analysisSection: "MS",
	resultsFileKey:  "MS_RESULTS_FILE",
	resultsFileMessage: `Error: There must be either a "MS_METABOLITE_DATA" ` +
		`section or a "MS_RESULTS_FILE" subsection in the ` +
		`"MS" section. Neither were found.`,
}

// nmrDocumentSpec validates NMR files.
var nmrDocumentSpec = &documentSpec{
	sections: mergeSections(map[string]*sectionSpec{
		"NM": nmrSpec,
	}),
	dataSections: map[string]*dataTableSpec{
		"NMR_METABOLITE_DATA": metaboliteDataSpec,
		"NMR_BINNED_DATA":     binnedDataSpec,
	},
	required:        append(append([]string(nil), baseRequired...), "NM"),
	analysisSection: "NM",
	resultsFileKey:  "NMR_RESULTS_FILE",
	resultsFileMessage: `Error: There must be either a "NMR_METABOLITE_DATA" ` +
		`section, a "NMR_BINNED_DATA" section or a ` +
		`"NMR_RESULTS_FILE" subsection in the ` +
		`"NM" section. Neither were found.`,
}
