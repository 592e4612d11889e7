package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/rubiojr/dtspp/config"
	"github.com/rubiojr/dtspp/include"
	"github.com/rubiojr/dtspp/preprocess"
	"github.com/rubiojr/dtspp/translate"
)

// Execute runs the dtspp CLI with the given version string.
func Execute(version string) {
	cmd := &cli.Command{
		Name:    "dtspp",
		Usage:   "Scan and evaluate preprocessor directives in device-tree sources",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "tokens",
				Usage:     "Print the merged token stream",
				ArgsUsage: "<file.dts>",
				Flags:     commonFlags(),
				Action:    unitAction(func(w io.Writer, tr *translate.Translation) { printTokens(w, tr) }),
			},
			{
				Name:      "directives",
				Usage:     "Print parsed directives and whether they were evaluated",
				ArgsUsage: "<file.dts>",
				Flags:     commonFlags(),
				Action:    unitAction(func(w io.Writer, tr *translate.Translation) { printDirectives(w, tr.Root()) }),
			},
			{
				Name:      "regions",
				Usage:     "Print active and suppressed regions",
				ArgsUsage: "<file.dts>",
				Flags:     commonFlags(),
				Action:    unitAction(func(w io.Writer, tr *translate.Translation) { printRegions(w, tr.Root()) }),
			},
			{
				Name:      "macros",
				Usage:     "Print the macro table at the end of the translation",
				ArgsUsage: "<file.dts>",
				Flags:     commonFlags(),
				Action:    unitAction(func(w io.Writer, tr *translate.Translation) { printMacros(w, tr.ResolvedIncludes()) }),
			},
			{
				Name:      "includes",
				Usage:     "Print the include graph",
				ArgsUsage: "<file.dts>",
				Flags:     commonFlags(),
				Action:    unitAction(func(w io.Writer, tr *translate.Translation) { printIncludes(w, tr.ResolvedIncludes()) }),
			},
			{
				Name:      "check",
				Usage:     "Report diagnostics; exits non-zero when any error is found",
				ArgsUsage: "<file.dts> [file.dts...]",
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:    "jobs",
						Aliases: []string{"j"},
						Usage:   "Files translated in parallel",
						Value:   1,
					},
				),
				Action: checkAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "include-dir",
			Aliases: []string{"I"},
			Usage:   "Add a directory to the quoted include search path",
		},
		&cli.StringSliceFlag{
			Name:  "isystem",
			Usage: "Add a directory to the system include search path",
		},
		&cli.StringSliceFlag{
			Name:    "define",
			Aliases: []string{"D"},
			Usage:   "Predefine NAME or NAME=VALUE",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Warn when a macro is redefined with a different value",
		},
		&cli.BoolFlag{
			Name:  "first-wins",
			Usage: "Keep the first definition of a redefined macro",
		},
		&cli.IntFlag{
			Name:  "max-include-depth",
			Usage: "Maximum #include nesting",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default: nearest " + config.FileName + ")",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log pipeline events to stderr",
		},
		&cli.BoolFlag{
			Name:    "no-color",
			Aliases: []string{"C"},
			Usage:   "Disable ANSI color output",
		},
	}
}

// newTranslator merges the config file with command-line flags. Flags
// add to list settings and override scalar ones.
func newTranslator(cmd *cli.Command) (*translate.Translator, error) {
	cfg := &config.Config{}
	path := cmd.String("config")
	if path == "" {
		path, _ = config.Find(".")
	}
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	quote := append(append([]string{}, cfg.IncludeDirs...), cmd.StringSlice("include-dir")...)
	system := append(append([]string{}, cfg.SystemDirs...), cmd.StringSlice("isystem")...)
	provider, err := include.NewOSProvider(quote, system)
	if err != nil {
		return nil, err
	}

	tr := &translate.Translator{
		Provider:        provider,
		Strict:          cfg.Strict || cmd.Bool("strict"),
		MaxIncludeDepth: cfg.MaxIncludeDepth,
	}
	if cfg.Redefinition == "first" || cmd.Bool("first-wins") {
		tr.Redefinition = preprocess.FirstWriteWins
	}
	if cmd.IsSet("max-include-depth") {
		tr.MaxIncludeDepth = cmd.Int("max-include-depth")
	}
	for _, s := range append(append([]string{}, cfg.Defines...), cmd.StringSlice("define")...) {
		d, err := translate.ParseDefine(s)
		if err != nil {
			return nil, err
		}
		tr.Defines = append(tr.Defines, d)
	}
	if cmd.Bool("verbose") {
		tr.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return tr, nil
}

// useColor honors --no-color and NO_COLOR, and disables color when f, the
// stream diagnostics are written to, is not a terminal.
func useColor(noColor bool, f *os.File) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func translateFile(ctx context.Context, tr *translate.Translator, file string) (*translate.Translation, error) {
	id, err := include.OSSourceID(file)
	if err != nil {
		return nil, err
	}
	return tr.TranslateFile(ctx, id)
}

// unitAction builds the action for the single-file inspection commands.
// Diagnostics go to stderr after the command's own output.
func unitAction(print func(w io.Writer, tr *translate.Translation)) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if cmd.NArg() != 1 {
			return fmt.Errorf("usage: dtspp %s <file.dts>", cmd.Name)
		}
		translator, err := newTranslator(cmd)
		if err != nil {
			return err
		}
		tr, err := translateFile(ctx, translator, cmd.Args().First())
		if err != nil {
			return err
		}
		print(os.Stdout, tr)
		printDiagnostics(os.Stderr, tr, useColor(cmd.Bool("no-color"), os.Stderr))
		return nil
	}
}

func checkAction(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("usage: dtspp check <file.dts> [file.dts...]")
	}
	translator, err := newTranslator(cmd)
	if err != nil {
		return err
	}
	jobs := cmd.Int("jobs")
	if jobs < 1 {
		jobs = 1
	}

	type fileResult struct {
		tr  *translate.Translation
		err error
	}
	results := make([]fileResult, len(files))

	// Translations are independent; each one is still a single sequential
	// pass. Results are printed in argument order.
	work := make(chan int, len(files))
	for i := range files {
		work <- i
	}
	close(work)
	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				results[i].tr, results[i].err = translateFile(ctx, translator, files[i])
			}
		}()
	}
	wg.Wait()

	color := useColor(cmd.Bool("no-color"), os.Stdout)
	errorsFound, warnings := 0, 0
	for i, r := range results {
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", files[i], r.err)
			errorsFound++
			continue
		}
		printDiagnostics(os.Stdout, r.tr, color)
		e, w := countSeverities(r.tr)
		errorsFound += e
		warnings += w
	}
	fmt.Fprintf(os.Stderr, "%d files, %d errors, %d warnings\n", len(files), errorsFound, warnings)
	if errorsFound > 0 {
		return fmt.Errorf("%d errors", errorsFound)
	}
	return nil
}
