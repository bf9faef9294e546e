// Command catastrophicc compiles a catastrophic source file down to the
// backend's object container, by way of lex -> parse -> analyse ->
// optimise -> emit. Flags follow the §skx-math-compiler convention of
// a small, stdlib `flag`-based surface rather than the teacher's own
// hand-rolled multi-command argument matcher, which this two-binary
// toolchain has no need for.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/samuelsleight/catastrophic-go/internal/analyser"
	"github.com/samuelsleight/catastrophic-go/internal/ast"
	"github.com/samuelsleight/catastrophic-go/internal/backend"
	"github.com/samuelsleight/catastrophic-go/internal/config"
	"github.com/samuelsleight/catastrophic-go/internal/diag"
	"github.com/samuelsleight/catastrophic-go/internal/hir"
	"github.com/samuelsleight/catastrophic-go/internal/lexer"
	"github.com/samuelsleight/catastrophic-go/internal/mir"
	"github.com/samuelsleight/catastrophic-go/internal/optimiser"
	"github.com/samuelsleight/catastrophic-go/internal/parser"
	"github.com/samuelsleight/catastrophic-go/internal/pipeline"
	"github.com/samuelsleight/catastrophic-go/internal/pretty"
	"github.com/samuelsleight/catastrophic-go/internal/span"
	"github.com/samuelsleight/catastrophic-go/internal/token"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("catastrophicc", flag.ContinueOnError)

	var opts config.Options
	var debugFlag, output, optFlag, skipPass string
	fs.StringVar(&debugFlag, "debug", "", "dump `ast|hir|mir` and stop")
	fs.BoolVar(&opts.Pretty, "pretty", false, "pretty-print the --debug dump")
	fs.StringVar(&optFlag, "opt", "all", "optimiser level: `none|all`")
	fs.StringVar(&skipPass, "skip-pass", "", "comma-separated optimiser pass names to skip")
	fs.BoolVar(&opts.Profile, "profile", false, "log per-stage timing")
	fs.BoolVar(&opts.ListPass, "list", false, "with `passes`, list optimiser pass names and exit")
	fs.StringVar(&output, "o", "", "output object path (default: input with .cato extension)")

	if err := fs.Parse(argv); err != nil {
		return 2
	}

	if opts.ListPass && fs.Arg(0) == "passes" {
		for _, p := range optimiser.Passes {
			fmt.Println(p)
		}
		return 0
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: catastrophicc <input.cat> [flags]")
		return 2
	}
	opts.Input = fs.Arg(0)
	opts.Debug = config.DebugTarget(strings.ToLower(debugFlag))
	opts.OptNone = optFlag == "none"
	opts.SkipPass = map[string]bool{}
	for _, name := range strings.Split(skipPass, ",") {
		if name != "" {
			opts.SkipPass[name] = true
		}
	}
	if output != "" {
		opts.Output = output
	} else {
		opts.Output = strings.TrimSuffix(opts.Input, ".cat") + ".cato"
	}
	opts.EnvOverrides()

	log := logrus.New()
	if !opts.Profile {
		log.SetLevel(logrus.WarnLevel)
	}

	return compile(opts, log)
}

// dump prints v either via its pretty-printer or, without --pretty, as
// Go's own verbose struct dump -- the same "raw vs formatted" toggle
// --pretty offers each --debug target.
func dump[T any](pretty_ bool, v T, render func(T) string) {
	if pretty_ {
		fmt.Print(render(v))
		return
	}
	fmt.Printf("%+v\n", v)
}

func cancelIf(hit bool) pipeline.Signal {
	if hit {
		return pipeline.Cancel
	}
	return pipeline.Continue
}

func compile(opts config.Options, log *logrus.Logger) int {
	source, err := os.ReadFile(opts.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catastrophicc: %v\n", err)
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
		Debug: func(top *ast.Block) pipeline.Signal {
			if opts.Debug == config.DebugAST {
				dump(opts.Pretty, top, pretty.AST)
			}
			return cancelIf(opts.Debug == config.DebugAST)
		},
	}
	top, err := pipeline.Run(parseStage, toks, log)
	if err != nil {
		return reportOrCancel(reporter, err)
	}

	analyseStage := pipeline.Stage[*ast.Block, []*hir.Block]{
		Name: "Analyse",
		Run: func(in *ast.Block) ([]*hir.Block, error) {
			blocks, errs := analyser.Analyse(in)
			return blocks, diag.Wrap("Unable to analyse input", errs)
		},
		Debug: func(blocks []*hir.Block) pipeline.Signal {
			if opts.Debug == config.DebugHIR {
				dump(opts.Pretty, blocks, pretty.HIR)
			}
			return cancelIf(opts.Debug == config.DebugHIR)
		},
	}
	hirBlocks, err := pipeline.Run(analyseStage, top, log)
	if err != nil {
		return reportOrCancel(reporter, err)
	}

	optOpts := optimiser.Default()
	if opts.OptNone {
		optOpts.Level = optimiser.LevelNone
	}
	for name := range opts.SkipPass {
		optOpts.Skip[optimiser.PassName(name)] = true
	}

	optimiseStage := pipeline.Stage[[]*hir.Block, []*mir.Block]{
		Name: "Optimise",
		Run: func(in []*hir.Block) ([]*mir.Block, error) {
			return optimiser.Optimise(in, optOpts), nil
		},
		Debug: func(blocks []*mir.Block) pipeline.Signal {
			if opts.Debug == config.DebugMIR {
				dump(opts.Pretty, blocks, pretty.MIR)
			}
			return cancelIf(opts.Debug == config.DebugMIR)
		},
	}
	mirBlocks, err := pipeline.Run(optimiseStage, hirBlocks, log)
	if err != nil {
		return reportOrCancel(reporter, err)
	}

	out, err := os.Create(opts.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catastrophicc: %v\n", err)
		return 1
	}
	defer out.Close()

	emitStage := pipeline.Stage[[]*mir.Block, struct{}]{
		Name: "Emit",
		Run: func(in []*mir.Block) (struct{}, error) {
			return struct{}{}, backend.Emit(in, out, log)
		},
	}
	if _, err := pipeline.Run(emitStage, mirBlocks, log); err != nil {
		fmt.Fprintf(os.Stderr, "catastrophicc: %v\n", err)
		return 1
	}

	return 0
}

// reportOrCancel distinguishes a clean debug-probe Cancel (exit 0, per
// §4.7) from a real stage error (reported and exit 1).
func reportOrCancel(reporter *diag.Reporter, err error) int {
	if _, ok := err.(*pipeline.Cancelled); ok {
		return 0
	}
	if se, ok := err.(*diag.StageError); ok {
		reporter.ReportAll(se.Errors)
	} else {
		reporter.ReportAll([]error{err})
	}
	return 1
}
