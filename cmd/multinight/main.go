// Command multinight calibrates several nights of astrophotography data
// separately, merges them into one sequence, and stacks them with siril-cli.
// It layers config (defaults, TOML file, MULTINIGHT_* env, flags), then
// either runs diagnostics (--check) or the multi-night pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/backmassage/multinight/internal/check"
	"github.com/backmassage/multinight/internal/config"
	"github.com/backmassage/multinight/internal/display"
	"github.com/backmassage/multinight/internal/engine"
	"github.com/backmassage/multinight/internal/logging"
	"github.com/backmassage/multinight/internal/pipeline"
)

var exampleUsage = strings.TrimSpace(`
  multinight -s ~/astro/m31/2024-10-01 -s ~/astro/m31/2024-10-03 \
    --calibrate-script calibrate.ssf --stack-script stack.ssf -o ~/astro/m31/merged
  multinight --config ~/astro/m31/multinight.toml --dry-run
  multinight --check --engine /opt/siril/bin/siril-cli`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := config.DefaultConfig()
	var flags config.Flags

	root := &cobra.Command{
		Use:     "multinight [session-dir...]",
		Short:   "Calibrate, merge and stack multiple nights of data with Siril",
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &cfg, &flags, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.BindFlags(root.Flags(), &cfg, &flags)

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "multinight: %v\n", err)
		}
		os.Exit(1)
	}
}

// errReported marks failures already written to the log.
var errReported = errors.New("run failed")

func run(cmd *cobra.Command, cfg *config.Config, flags *config.Flags, args []string) error {
	// 1. Layer configuration: flags were parsed into cfg; file and env fill
	// whatever the command line left unset.
	config.ApplyFlags(cfg, flags, args)
	changed := config.ChangedFlags(cmd.Flags())
	if len(args) > 0 {
		changed["session"] = true
	}

	cfgFile := flags.ConfigPath
	if cfgFile == "" {
		cfgFile = config.DefaultConfigPath()
	} else if !config.FileExists(cfgFile) {
		return fmt.Errorf("config file %s not found", cfgFile)
	}
	if cfgFile != "" && config.FileExists(cfgFile) {
		fc, err := config.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := config.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}
	if err := config.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	if err := cfg.ExpandPaths(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 2. Logger and banner.
	log, err := logging.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()
	display.PrintBanner(os.Stdout)

	// 3. Diagnostics only.
	if cfg.CheckOnly {
		if !check.RunCheck(cfg, log) {
			return errReported
		}
		return nil
	}

	// 4. Fail fast on a missing engine or script, then run.
	if err := check.CheckDeps(cfg); err != nil {
		log.Error("%v", err)
		return errReported
	}
	if cfg.DryRun {
		log.Warn("DRY RUN")
		if cfg.LogFile != "" {
			log.Warn("Log file %s is not written in a dry run", cfg.LogFile)
		}
	}

	runner, err := engine.NewRunner(cfg)
	if err != nil {
		return err
	}
	if _, err := pipeline.Run(context.Background(), cfg, log, runner); err != nil {
		var se *pipeline.StageError
		if errors.As(err, &se) {
			log.Error("Stage %q failed", se.Stage)
		}
		log.Error("%v", err)
		return errReported
	}
	return nil
}
