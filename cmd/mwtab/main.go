// Command mwtab validates and converts Metabolomics Workbench files.
//
// Reading from "-" uses stdin; writing to "-" uses stdout, so the tool
// composes in pipelines:
//
//	mwtab convert --to json ST000122_AN000204.txt - | jq .
//	mwtab validate study.json
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/maurice/mwtab"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	app := &cli.App{
		Name:  "mwtab",
		Usage: "work with mwTab formatted files",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log progress to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				log.SetLevel(logrus.DebugLevel)
			} else {
				log.SetLevel(logrus.WarnLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "validate a mwTab or JSON file and print a validation log",
				ArgsUsage: "<input>",
				Action: func(c *cli.Context) error {
					return runValidate(c, log)
				},
			},
			{
				Name:      "convert",
				Usage:     "convert between the mwTab and JSON renditions",
				ArgsUsage: "<input> <output>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "to",
						Usage: "output format: mwtab or json (default: the other rendition)",
					},
				},
				Action: func(c *cli.Context) error {
					return runConvert(c, log)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func runValidate(c *cli.Context, log *logrus.Logger) error {
	if c.NArg() != 1 {
		return cli.Exit("validate takes exactly one input file", 2)
	}
	doc, err := readDocument(c.Args().Get(0), log)
	if err != nil {
		return err
	}
	report := mwtab.Validate(doc)
	log.WithFields(logrus.Fields{
		"study":    report.StudyID,
		"analysis": report.AnalysisID,
		"findings": len(report.Findings),
	}).Debug("validated")
	fmt.Print(report.String())
	if !report.Passing() {
		return cli.Exit("", 1)
	}
	return nil
}

func runConvert(c *cli.Context, log *logrus.Logger) error {
	if c.NArg() != 2 {
		return cli.Exit("convert takes an input and an output file", 2)
	}
	doc, err := readDocument(c.Args().Get(0), log)
	if err != nil {
		return err
	}

	format := strings.ToLower(c.String("to"))
	switch format {
	case "":
		if doc.InputFormat() == mwtab.FormatMwTab {
			format = mwtab.FormatJSON
		} else {
			format = mwtab.FormatMwTab
		}
	case mwtab.FormatMwTab, mwtab.FormatJSON:
	default:
		return cli.Exit(fmt.Sprintf("unknown output format %q", format), 2)
	}
	log.WithFields(logrus.Fields{
		"from": doc.InputFormat(),
		"to":   format,
	}).Debug("converting")

	out, err := openOutput(c.Args().Get(1))
	if err != nil {
		return err
	}
	defer out.Close()
	return doc.Write(out, format)
}

func readDocument(name string, log *logrus.Logger) (*mwtab.Document, error) {
	var data []byte
	var err error
	source := name
	if name == "-" {
		source = "stdin"
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"source": source,
		"bytes":  len(data),
	}).Debug("read input")
	return mwtab.Parse(source, data)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openOutput(name string) (io.WriteCloser, error) {
	if name == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(name)
}
