package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gubarz/mslg/internal/config"
	"github.com/gubarz/mslg/internal/lg"
	"github.com/gubarz/mslg/internal/loader"
	"github.com/gubarz/mslg/internal/logging"
	"github.com/gubarz/mslg/internal/output"
	"github.com/gubarz/mslg/internal/pipeline"
	"github.com/gubarz/mslg/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "mslg [folder]",
	Short: "Parse and collate Language Generation (.lg) files",
	Long: `Parses every .lg file under a folder, follows the files they link to,
and collates all templates and entities into a single .lg file.

Parsing stops at the first malformed construct and reports its error code.
Run "mslg codes" for the list of codes.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCollate,
}

var checkCmd = &cobra.Command{
	Use:   "check [folder]",
	Short: "Validate .lg files without writing output",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

var browseCmd = &cobra.Command{
	Use:   "browse [folder]",
	Short: "Browse the collated templates and entities interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrowse,
}

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List parse and collation error codes",
	Args:  cobra.NoArgs,
	RunE:  runCodes,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(checkCmd, browseCmd, codesCmd)

	pf := rootCmd.PersistentFlags()
	pf.Bool("strict", false, "Reject lines that fit no LG construct")
	pf.String("vocabulary", "", "YAML file with reserved words, callbacks and entity types")
	pf.Int("workers", 0, "Number of files parsed in parallel")
	pf.Bool("keep-going", false, "Skip files that fail to parse instead of stopping")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text or json")

	rootCmd.Flags().StringP("out", "o", "", "Output folder")
	rootCmd.Flags().StringP("name", "n", "", "Output file base name")
	rootCmd.Flags().String("output", "", "Output mode: file, print, copy")
	rootCmd.Flags().Bool("print", false, "Print the collated file (shorthand for --output print)")
	rootCmd.Flags().Bool("copy", false, "Copy the collated file (shorthand for --output copy)")

	browseCmd.Flags().StringP("query", "q", "", "Initial search query")

	viper.BindPFlag("strict", pf.Lookup("strict"))
	viper.BindPFlag("vocabulary", pf.Lookup("vocabulary"))
	viper.BindPFlag("workers", pf.Lookup("workers"))
	viper.BindPFlag("keep_going", pf.Lookup("keep-going"))
	viper.BindPFlag("log_level", pf.Lookup("log-level"))
	viper.BindPFlag("log_format", pf.Lookup("log-format"))
	viper.BindPFlag("output_folder", rootCmd.Flags().Lookup("out"))
	viper.BindPFlag("output_name", rootCmd.Flags().Lookup("name"))
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

func newLogger() *slog.Logger {
	return logging.New(config.GetLogLevel(), config.GetLogFormat(), os.Stderr)
}

// pipelineOptions builds pipeline options from config and the optional
// folder argument
func pipelineOptions(args []string) (pipeline.Options, error) {
	if len(args) > 0 {
		config.SetInput(args[0])
	}
	absInput, err := filepath.Abs(config.GetInput())
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("error resolving path: %w", err)
	}
	info, err := os.Stat(absInput)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("path error: %w", err)
	}
	if !info.IsDir() {
		return pipeline.Options{}, fmt.Errorf("%s is not a folder", absInput)
	}

	var vocab *lg.Vocabulary
	if path := config.GetVocabulary(); path != "" {
		if vocab, err = lg.LoadVocabulary(path); err != nil {
			return pipeline.Options{}, err
		}
	}

	mode, err := output.ParseMode(config.GetOutput())
	if err != nil {
		return pipeline.Options{}, err
	}

	return pipeline.Options{
		InputFolder:    absInput,
		Strict:         config.GetStrict(),
		OutputFolder:   config.GetOutputFolder(),
		OutputBaseName: config.GetOutputName(),
		Mode:           mode,
		Workers:        config.GetWorkers(),
		KeepGoing:      config.GetKeepGoing(),
		Vocabulary:     vocab,
		Logger:         newLogger(),
	}, nil
}

func runCollate(cmd *cobra.Command, args []string) error {
	opts, err := pipelineOptions(args)
	if err != nil {
		return err
	}
	opts.Stdout = cmd.OutOrStdout()

	// Handle output mode shorthands
	if p, _ := cmd.Flags().GetBool("print"); p {
		opts.Mode = output.ModePrint
	} else if c, _ := cmd.Flags().GetBool("copy"); c {
		opts.Mode = output.ModeCopy
	}

	res, err := pipeline.ParseCollateAndWriteOut(cmd.Context(), opts)
	if err != nil {
		return err
	}

	reportFailures(cmd, res.Files)
	if res.OutputPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s (%s)\n",
			ui.Styles().OK.Render("Wrote"), res.OutputPath, res.Document.Summary())
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := pipelineOptions(args)
	if err != nil {
		return err
	}
	opts.KeepGoing = true

	res, err := pipeline.Load(cmd.Context(), opts)
	if err != nil {
		return err
	}

	styles := ui.Styles()
	out := cmd.OutOrStdout()
	for _, f := range res.Files {
		if f.Err == nil {
			fmt.Fprintf(out, "%s %s\n", styles.OK.Render("ok  "), f.Path)
		}
	}
	failed := reportFailures(cmd, res.Files)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(res.Files))
	}
	fmt.Fprintf(out, "%s\n", styles.Dim.Render(res.Document.Summary()))
	return nil
}

// reportFailures prints files skipped by --keep-going and returns their count
func reportFailures(cmd *cobra.Command, files []loader.File) int {
	styles := ui.Styles()
	failed := loader.Failures(files)
	for _, f := range failed {
		code := "ERROR"
		if c, ok := lg.CodeOf(f.Err); ok {
			code = string(c)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s %s\n",
			styles.Error.Render("fail"), styles.Code.Render(code), f.Err)
	}
	return len(failed)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	opts, err := pipelineOptions(args)
	if err != nil {
		return err
	}

	res, err := pipeline.Load(cmd.Context(), opts)
	if err != nil {
		return err
	}

	query, _ := cmd.Flags().GetString("query")
	return ui.Run(res.Document, query)
}

func runCodes(cmd *cobra.Command, args []string) error {
	styles := ui.Styles()
	for _, c := range lg.Codes() {
		fmt.Fprintf(cmd.OutOrStdout(), "%-34s %d  %s\n", styles.Code.Render(string(c)), exitCodeFor(c), c.Describe())
	}
	return nil
}

// exitCode maps an error to the process exit status
func exitCode(err error) int {
	if code, ok := lg.CodeOf(err); ok {
		return exitCodeFor(code)
	}
	return 1
}

func exitCodeFor(code lg.ErrCode) int {
	switch code {
	case lg.CodeInvalidTemplate, lg.CodeInvalidSpaceInTemplate, lg.CodeInvalidVariation,
		lg.CodeInvalidEntityDefinition, lg.CodeInvalidCondition:
		return 2
	case lg.CodeEntityWithReservedWord, lg.CodeNestedEntityReference, lg.CodeNestedTemplateReference,
		lg.CodeInvalidCallbackDef, lg.CodeInvalidCallbackName:
		return 3
	case lg.CodeDuplicateIncompatibleDef:
		return 4
	}
	return 1
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		var lgErr *lg.Error
		if errors.As(err, &lgErr) {
			fmt.Fprintf(os.Stderr, "%s %s\n", ui.Styles().Error.Render("Error:"), ui.Styles().Code.Render(string(lgErr.Code)))
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(exitCode(err))
	}
}
