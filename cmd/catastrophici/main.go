// Command catastrophici interprets a catastrophic source file directly
// from its analysed HIR, skipping the optimiser entirely (§4.5, §4.7).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/samuelsleight/catastrophic-go/internal/analyser"
	"github.com/samuelsleight/catastrophic-go/internal/ast"
	"github.com/samuelsleight/catastrophic-go/internal/config"
	"github.com/samuelsleight/catastrophic-go/internal/diag"
	"github.com/samuelsleight/catastrophic-go/internal/hir"
	"github.com/samuelsleight/catastrophic-go/internal/interp"
	"github.com/samuelsleight/catastrophic-go/internal/lexer"
	"github.com/samuelsleight/catastrophic-go/internal/parser"
	"github.com/samuelsleight/catastrophic-go/internal/pipeline"
	"github.com/samuelsleight/catastrophic-go/internal/span"
	"github.com/samuelsleight/catastrophic-go/internal/token"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("catastrophici", flag.ContinueOnError)

	var opts config.Options
	fs.BoolVar(&opts.Profile, "profile", false, "log per-stage timing")

	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: catastrophici <input.cat> [--profile]")
		return 2
	}
	opts.Input = fs.Arg(0)
	opts.EnvOverrides()

	log := logrus.New()
	if !opts.Profile {
		log.SetLevel(logrus.WarnLevel)
	}

	return interpret(opts, log)
}

func interpret(opts config.Options, log *logrus.Logger) int {
	source, err := os.ReadFile(opts.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catastrophici: %v\n", err)
		return 1
	}

	reporter := diag.NewReporter(opts.Input, source, os.Stderr)

	lexStage := pipeline.Stage[[]byte, []span.Span[token.Token]]{
		Name: "Lex",
		Run: func(src []byte) ([]span.Span[token.Token], error) {
			return lexer.New(src).Tokenize()
		},
	}
	toks, err := pipeline.Run(lexStage, source, log)
	if err != nil {
		reporter.ReportAll([]error{err})
		return 1
	}

	parseStage := pipeline.Stage[[]span.Span[token.Token], *ast.Block]{
		Name: "Parse",
		Run: func(in []span.Span[token.Token]) (*ast.Block, error) {
			top, errs := parser.Parse(in, false)
			return top, diag.Wrap("Unable to parse input", errs)
		},
	}
	top, err := pipeline.Run(parseStage, toks, log)
	if err != nil {
		return reportStage(reporter, err)
	}

	analyseStage := pipeline.Stage[*ast.Block, []*hir.Block]{
		Name: "Analyse",
		Run: func(in *ast.Block) ([]*hir.Block, error) {
			blocks, errs := analyser.Analyse(in)
			return blocks, diag.Wrap("Unable to analyse input", errs)
		},
	}
	hirBlocks, err := pipeline.Run(analyseStage, top, log)
	if err != nil {
		return reportStage(reporter, err)
	}

	runStage := pipeline.Stage[[]*hir.Block, struct{}]{
		Name: "Runtime",
		Run: func(in []*hir.Block) (struct{}, error) {
			return struct{}{}, interp.Run(in, interp.IO{Stdin: os.Stdin, Stdout: os.Stdout})
		},
	}
	if _, err := pipeline.Run(runStage, hirBlocks, log); err != nil {
		reporter.ReportAll([]error{err})
		return 1
	}

	return 0
}

func reportStage(reporter *diag.Reporter, err error) int {
	if se, ok := err.(*diag.StageError); ok {
		reporter.ReportAll(se.Errors)
	} else {
		reporter.ReportAll([]error{err})
	}
	return 1
}
