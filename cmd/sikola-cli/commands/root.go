package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"sikola-tools/cmd/sikola-cli/globals"
	"sikola-tools/internal/components/chrono"
	"sikola-tools/internal/components/telemetry"
	"sikola-tools/pkg/configutil"
	"sikola-tools/pkg/restyutil"
	"sikola-tools/pkg/serviceutil"

	"github.com/spf13/cobra"
)

const defaultConfigName = "sikola.json5"

var rootCmd = &cobra.Command{
	Use:               "sikola-cli",
	Short:             "sikola-cli finds course sessions on the Sikola portal.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		err := globals.Get(cmd.Context()).Telemetry.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug logs.")
	rootCmd.PersistentFlags().String("config", "", "Path to the config file, by default sikola.json5 is searched for upward from the cwd.")
	rootCmd.PersistentFlags().String("dump-http", "", "Write every HTTP exchange into a new timestamped directory under this one.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		serviceutil.Fatal("command failed", err)
	}
}

func readConfig(path string) (globals.Config, error) {
	var cfg globals.Config
	var err error
	if path != "" {
		cfg, err = configutil.ReadConfig[globals.Config](path)
	} else {
		cfg, err = configutil.ReadRecursively[globals.Config](defaultConfigName)
	}
	if errors.Is(err, os.ErrNotExist) {
		if path != "" {
			return cfg, fmt.Errorf("config %s does not exist", path)
		}
		slog.Debug("no config found, using defaults", "name", defaultConfigName)
		return globals.Config{}, nil
	}
	return cfg, err
}

func setup(cmd *cobra.Command, args []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	dumpDir, err := cmd.Flags().GetString("dump-http")
	if err != nil {
		return err
	}

	telemetry.InitSlog(verbose)

	cfg, err := readConfig(configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if cfg.IndexDb == "" {
		cfg.IndexDb = ".sikola/courses.db"
	}

	tel, err := telemetry.SetupFromEnv(cmd.Context(), "sikola-cli")
	if err != nil {
		slog.Warn("failed to setup telemetry, continuing without it", "err", err)
	}
	if tel.Enabled() {
		telemetry.InstrumentPerfStats(cmd.Context(), time.Second*15)
	}

	value := &globals.Value{
		Config:    cfg,
		Tel:       telemetry.SlogAPI{},
		Clock:     chrono.NewStandardImpl(),
		Telemetry: tel,
	}
	if dumpDir != "" {
		out, err := restyutil.NewFilesystemOutput(dumpDir, value.Clock.Now())
		if err != nil {
			return err
		}
		slog.Info("dumping http exchanges", "dir", out.Directory())
		value.HttpDump = out
	}

	cmd.SetContext(globals.Set(cmd.Context(), value))
	return nil
}
