package main

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/dischargeprep/internal/config"
	"github.com/gyeh/dischargeprep/internal/exitcode"
	"github.com/gyeh/dischargeprep/internal/logging"
	"github.com/gyeh/dischargeprep/internal/pipeline"
)

var (
	cfg     config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "dischargeprep",
	Short:         "Discharge spreadsheet cleaner",
	Long:          "Converts discharge spreadsheets to CSV, merges and deduplicates them, splits the result by referral destination and writes a summary report.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.RulesPath, "rules", "", "YAML file overriding discharge types, facility prefixes and referral aliases")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log every dropped row and skipped sheet")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log := logging.Setup(cfg.LogFormat, verbose)
		log.Error().Err(err).Msg("invalid invocation")
		os.Exit(exitcode.UsageError)
	}
}

// setup builds the logger and loads the rules file. Exits on a bad rules file.
func setup() zerolog.Logger {
	log := logging.Setup(cfg.LogFormat, verbose)
	if err := cfg.LoadRules(); err != nil {
		log.Error().Err(err).Str("rules", cfg.RulesPath).Msg("could not load rules")
		os.Exit(exitcode.UsageError)
	}
	return log
}

// exitForPipeline maps a pipeline failure to its exit code.
func exitForPipeline(log zerolog.Logger, err error, msg string) {
	var pe *pipeline.PipelineError
	if errors.As(err, &pe) {
		log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg(msg)
	} else {
		log.Error().Err(err).Msg(msg)
	}

	switch {
	case errors.Is(err, pipeline.ErrNoInput):
		os.Exit(exitcode.NoInput)
	case pe != nil && pe.Phase == "preflight":
		os.Exit(exitcode.ValidationError)
	case pe != nil && pe.Phase == "copy":
		os.Exit(exitcode.CopyError)
	default:
		os.Exit(exitcode.PipelineError)
	}
}

// addDirFlags registers the directory flags shared by run, convert and plan.
func addDirFlags(cmd *cobra.Command, output bool) {
	f := cmd.Flags()
	f.StringVarP(&cfg.InputDir, "input-dir", "i", "", "Directory with the source spreadsheets (default <exe dir>/Arquivos)")
	f.StringVarP(&cfg.TempDir, "temp-dir", "t", "", "Directory for converted sheet CSVs (default <output>/temp_csvs)")
	if output {
		f.StringVarP(&cfg.OutputDir, "output-dir", "o", "", "Directory for merged tables, partitions and report (default <exe dir>/output)")
	}
}

// resolveDirs applies directory defaults and validates the input directory.
func resolveDirs(log zerolog.Logger) {
	if err := cfg.ApplyDefaults(config.ExecutableDir()); err != nil {
		log.Error().Err(err).Msg("could not resolve directories")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
}
