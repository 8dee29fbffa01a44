// Command htmlq is the CLI entrypoint of spec.md §6: it parses flags with
// cobra/pflag, resolves the query source and input file list, and delegates
// everything else to internal/cli.Runner. No query-language or HTML-parsing
// logic lives here, matching the teacher's own thin main.go that does
// nothing but build a Handler and call ListenAndServe.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dpotapov/htmlq/internal/cli"
	"github.com/dpotapov/htmlq/internal/config"
	"github.com/dpotapov/htmlq/internal/extern"
	"github.com/dpotapov/htmlq/reliq"
)

func init() {
	reliq.DecodeEntities = extern.DecodeEntities
	reliq.JoinURL = extern.JoinURL
}

func main() {
	var (
		queryFile   string
		queryExpr   string
		outputFile  string
		errorFile   string
		recursive   bool
		followLinks bool
		listMode    bool
		refURL      string
		verbose     bool
		libraryPath string
	)

	root := &cobra.Command{
		Use:           "htmlq [query] [file...]",
		Short:         "Search and extract data from HTML documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				cmd.Println(cmd.Root().Version)
				return nil
			}

			cfg := config.Default()
			cfg.QueryFile = queryFile
			cfg.QueryExpr = queryExpr
			cfg.OutputFile = outputFile
			cfg.ErrorFile = errorFile
			cfg.Recursive = recursive || followLinks
			cfg.FollowLinks = followLinks
			cfg.ListMode = listMode
			cfg.URL = refURL
			cfg.Verbose = verbose
			cfg.LibraryPath = libraryPath
			if outputMode, _ := cmd.Flags().GetBool("structured"); outputMode {
				cfg.Mode = config.OutputStructured
			}

			positionals := args
			if cfg.QueryFile == "" && cfg.QueryExpr == "" && !cfg.ListMode && len(positionals) > 0 {
				cfg.QueryExpr = positionals[0]
				positionals = positionals[1:]
			}
			cfg.InputFiles = positionals

			if cfg.LibraryPath != "" {
				var err error
				cfg, err = config.LoadFile(cfg, "htmlq.yaml")
				if err != nil {
					return err
				}
			}

			errStream := os.Stderr
			if cfg.ErrorFile != "" {
				f, err := os.Create(cfg.ErrorFile)
				if err != nil {
					return err
				}
				defer f.Close()
				errStream = f
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(errStream, &slog.HandlerOptions{Level: level}))

			runner := cli.NewRunner(logger)
			runner.Stderr = errStream

			code := runner.Run(cfg)
			if code != cli.ExitOK {
				os.Exit(code)
			}
			return nil
		},
	}

	flags := root.Flags()
	flags.StringVarP(&queryFile, "file", "f", "", "read query expression from FILE")
	flags.StringVarP(&queryExpr, "expr", "e", "", "query expression given on the command line")
	flags.StringVarP(&outputFile, "output", "o", "", "write output to FILE instead of stdout")
	flags.StringVarP(&errorFile, "error", "E", "", "write error messages to FILE instead of stderr")
	flags.BoolVarP(&recursive, "recursive", "r", false, "recurse into directories given as input")
	flags.BoolVarP(&followLinks, "recursive-follow", "R", false, "recurse into directories, following symlinks")
	flags.BoolVarP(&listMode, "list", "l", false, "list every matched node with its tag, offset, level and size")
	flags.StringVarP(&refURL, "url", "u", "", "reference URL used to resolve relative links")
	flags.BoolVar(&verbose, "verbose", false, "enable debug logging")
	flags.StringVar(&libraryPath, "library", "", "XML file of named query snippets for #include")
	flags.Bool("structured", false, "emit structured (JSON-like) output instead of raw")

	root.Version = "0.1.0"
	root.Flags().BoolP("version", "v", false, "print version and exit")

	if err := root.Execute(); err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error(err.Error())
		os.Exit(cli.ExitScriptError)
	}
}
