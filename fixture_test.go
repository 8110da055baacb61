package mwtab

import "strings"

func sp(n int) string { return strings.Repeat(" ", n) }

// passingMwTab is a complete MS study in canonical serialized form: the
// sections are in write order and every item key carries the exact
// column padding the serializer produces, so parsing and re-writing it
// must reproduce the same bytes.
var passingMwTab = strings.Join([]string{
	"#METABOLOMICS WORKBENCH STUDY_ID:ST000001 ANALYSIS_ID:AN000001",
	"VERSION" + sp(13) + "\t1",
	"CREATED_ON" + sp(10) + "\t2024-01-15",
	"#PROJECT",
	"PR:PROJECT_TITLE" + sp(17) + "\tQuantitative profiling of plasma metabolites",
	"PR:PROJECT_SUMMARY" + sp(15) + "\tTargeted LC-MS profiling of plasma from healthy volunteers",
	"PR:INSTITUTE" + sp(21) + "\tUniversity of Kentucky",
	"PR:LAST_NAME" + sp(21) + "\tSmith",
	"PR:FIRST_NAME" + sp(20) + "\tPat",
	"PR:ADDRESS" + sp(23) + "\t789 S Limestone St",
	"PR:EMAIL" + sp(25) + "\tpsmith@uky.edu",
	"PR:PHONE" + sp(25) + "\t859-555-0100",
	"#STUDY",
	"ST:STUDY_TITLE" + sp(19) + "\tPlasma metabolite changes after exercise",
	"ST:STUDY_SUMMARY" + sp(17) + "\tPlasma was collected before and after a treadmill protocol",
	"ST:INSTITUTE" + sp(21) + "\tUniversity of Kentucky",
	"ST:LAST_NAME" + sp(21) + "\tSmith",
	"ST:FIRST_NAME" + sp(20) + "\tPat",
	"ST:ADDRESS" + sp(23) + "\t789 S Limestone St",
	"ST:EMAIL" + sp(25) + "\tpsmith@uky.edu",
	"ST:PHONE" + sp(25) + "\t859-555-0100",
	"#SUBJECT",
	"SU:SUBJECT_TYPE" + sp(18) + "\tHuman",
	"SU:SUBJECT_SPECIES" + sp(15) + "\tHomo sapiens",
	"SU:TAXONOMY_ID" + sp(19) + "\t9606",
	"#SUBJECT_SAMPLE_FACTORS:" + sp(9) + "\tSUBJECT(optional)[tab]SAMPLE[tab]FACTORS(NAME:VALUE pairs separated by |)[tab]Additional sample data",
	"SUBJECT_SAMPLE_FACTORS" + sp(11) + "\t-\tS-1\tGender:Male\t",
	"SUBJECT_SAMPLE_FACTORS" + sp(11) + "\t-\tS-2\tGender:Female\t",
	"#COLLECTION",
	"CO:COLLECTION_SUMMARY" + sp(12) + "\tBlood was drawn into EDTA tubes and spun within 30 minutes",
	"#TREATMENT",
	"TR:TREATMENT_SUMMARY" + sp(13) + "\tSubjects completed a 45 minute treadmill protocol",
	"#SAMPLEPREP",
	"SP:SAMPLEPREP_SUMMARY" + sp(12) + "\tProtein was precipitated with cold methanol",
	"#CHROMATOGRAPHY",
	"CH:CHROMATOGRAPHY_TYPE" + sp(11) + "\tReversed phase",
	"CH:INSTRUMENT_NAME" + sp(15) + "\tAgilent 1290 Infinity II",
	"CH:COLUMN_NAME" + sp(19) + "\tWaters Acquity BEH C18 (150 x 2.1mm,1.7um)",
	"CH:FLOW_GRADIENT" + sp(17) + "\t95% A to 5% A over 20 minutes",
	"CH:FLOW_RATE" + sp(21) + "\t0.3 mL/min",
	"CH:COLUMN_TEMPERATURE" + sp(12) + "\t40 C",
	"CH:SOLVENT_A" + sp(21) + "\t100% water; 0.1% formic acid",
	"CH:SOLVENT_B" + sp(21) + "\t100% acetonitrile; 0.1% formic acid",
	"#ANALYSIS",
	"AN:ANALYSIS_TYPE" + sp(17) + "\tMS",
	"#MS",
	"MS:INSTRUMENT_NAME" + sp(15) + "\tAgilent 6550 QTOF",
	"MS:INSTRUMENT_TYPE" + sp(15) + "\tQTOF",
	"MS:MS_TYPE" + sp(23) + "\tESI",
	"MS:ION_MODE" + sp(22) + "\tPositive",
	"#MS_METABOLITE_DATA",
	"MS_METABOLITE_DATA:UNITS" + sp(9) + "\tpeak area",
	"MS_METABOLITE_DATA_START",
	"Samples\tS-1\tS-2",
	"Factors\tGender:Male\tGender:Female",
	"Glucose\t183724\t206489",
	"Alanine\t92014\t87562",
	"MS_METABOLITE_DATA_END",
	"#METABOLITES",
	"METABOLITES_START",
	"metabolite_name\tmoverz_quant\tpubchem_id",
	"Glucose\t181.07\t5793",
	"Alanine\t90.05\t5950",
	"METABOLITES_END",
	"#END",
}, "\n") + "\n"

// binnedMwTab is a minimal NMR binned study in canonical serialized form.
var binnedMwTab = strings.Join([]string{
	"#METABOLOMICS WORKBENCH STUDY_ID:ST000002 ANALYSIS_ID:AN000002",
	"VERSION" + sp(13) + "\t1",
	"CREATED_ON" + sp(10) + "\t2024-02-01",
	"#NMR",
	"NM:INSTRUMENT_NAME" + sp(15) + "\tBruker Avance III 600",
	"#NMR_BINNED_DATA",
	"NMR_BINNED_DATA:UNITS" + sp(12) + "\tintensity",
	"NMR_BINNED_DATA_START",
	"Bin range(ppm)\tS-1\tS-2",
	"0.52-0.56\t1.173\t1.461",
	"0.56-0.60\t0.918\t1.228",
	"NMR_BINNED_DATA_END",
	"#END",
}, "\n") + "\n"

// emptyBlockMwTab carries a data block with no rows at all, in canonical
// serialized form.
var emptyBlockMwTab = strings.Join([]string{
	"#METABOLOMICS WORKBENCH STUDY_ID:ST000001 ANALYSIS_ID:AN000001",
	"VERSION" + sp(13) + "\t1",
	"#MS_METABOLITE_DATA",
	"MS_METABOLITE_DATA:UNITS" + sp(9) + "\tpeak area",
	"MS_METABOLITE_DATA_START",
	"MS_METABOLITE_DATA_END",
	"#END",
}, "\n") + "\n"

func parseFixture(text string) (*Document, error) {
	return Parse("ST000001_AN000001.txt", []byte(text))
}
