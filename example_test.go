package mwtab_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/maurice/mwtab"
)

func ExampleParse() {
	text := "#METABOLOMICS WORKBENCH STUDY_ID:ST000001 ANALYSIS_ID:AN000001\n" +
		"VERSION\t1\n" +
		"CREATED_ON\t2024-01-15\n" +
		"#PROJECT\n" +
		"PR:PROJECT_TITLE\tQuantitative profiling of plasma metabolites\n" +
		"#END\n"

	doc, err := mwtab.Parse("ST000001_AN000001.txt", []byte(text))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(doc.StudyID(), doc.AnalysisID())
	fmt.Println(doc.SectionNames())
	// Output:
	// ST000001 AN000001
	// [METABOLOMICS WORKBENCH PROJECT]
}

func ExampleDocument_WriteString() {
	text := "#METABOLOMICS WORKBENCH STUDY_ID:ST000001 ANALYSIS_ID:AN000001\n" +
		"VERSION\t1\n" +
		"#PROJECT\n" +
		"PR:PROJECT_TITLE\tQuantitative profiling of plasma metabolites\n" +
		"#END\n"

	doc, err := mwtab.Parse("ST000001_AN000001.txt", []byte(text))
	if err != nil {
		log.Fatal(err)
	}
	out, err := doc.WriteString(mwtab.FormatMwTab)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(strings.SplitN(out, "\n", 2)[0])
	// Output:
	// #METABOLOMICS WORKBENCH STUDY_ID:ST000001 ANALYSIS_ID:AN000001
}

func ExampleValidate() {
	text := "#METABOLOMICS WORKBENCH STUDY_ID:ST000001 ANALYSIS_ID:AN000001\n" +
		"VERSION\t1\n" +
		"#PROJECT\n" +
		"PR:PROJECT_TITLE\tQuantitative profiling of plasma metabolites\n" +
		"#END\n"

	doc, err := mwtab.Parse("ST000001_AN000001.txt", []byte(text))
	if err != nil {
		log.Fatal(err)
	}
	report := mwtab.Validate(doc)
	fmt.Println(report.Passing())
	// Output:
	// false
}
