// glossaryctl offline tooling
// Generates and validates the terminology resource outside the serving path
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/anubhavsingh2004/lt-audio-translator/pkg/glossary"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "generate":
		err = runGenerate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "glossaryctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: glossaryctl generate -corpus corpus.json -out glossary.json")
	fmt.Fprintln(os.Stderr, "       glossaryctl validate -resource glossary.json -langs hi[,fr]")
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	corpusPath := fs.String("corpus", "", "tiered term corpus (JSON)")
	outPath := fs.String("out", "resources/defense_glossary.json", "output resource path")
	fs.Parse(args)

	if *corpusPath == "" {
		return fmt.Errorf("generate: -corpus is required")
	}

	raw, err := os.ReadFile(*corpusPath)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	var corpus glossary.Corpus
	if err := json.Unmarshal(raw, &corpus); err != nil {
		return fmt.Errorf("generate: invalid corpus JSON: %w", err)
	}

	res := glossary.Generate(&corpus)

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	out = append(out, '\n')
	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	fmt.Printf("wrote %d entries to %s\n", len(res.Entries), *outPath)
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	resourcePath := fs.String("resource", "resources/defense_glossary.json", "resource to check")
	langs := fs.String("langs", "hi", "comma-separated target language codes the deployment serves")
	fs.Parse(args)

	res, err := glossary.ReadResource(*resourcePath)
	if err != nil {
		return err
	}

	languages := strings.Split(*langs, ",")
	rep := glossary.Validate(res, languages)

	for _, e := range rep.Errors {
		fmt.Printf("ERROR   %s\n", e)
	}
	for _, w := range rep.Warnings {
		fmt.Printf("WARNING %s\n", w)
	}

	codes := make([]string, 0, len(rep.Coverage))
	for code := range rep.Coverage {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Printf("coverage %s: %d/%d entries\n", code, rep.Coverage[code], rep.Entries)
	}

	if !rep.OK() {
		return fmt.Errorf("validate: %d errors in %s", len(rep.Errors), *resourcePath)
	}
	fmt.Printf("%s: %d entries, ok\n", *resourcePath, rep.Entries)
	return nil
}
