// Package main provides the intact-bridges command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".intact-bridges"

var errUsage = errors.New("usage error")

func main() {
	os.Exit(run())
}

func run() int {
	cobra.OnInitialize(initConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "intact-bridges",
		Short: "Retrieve UniProt proteins, isoforms and feature chains",
		Long: `intact-bridges resolves UniProtKB accessions into proteins with their
splice variants, feature chains and cross-references.

Entries come from the UniProt REST API, or from a directory of UniProtKB JSON
documents when uniprot.offline_dir is set. Config is stored in ~/.intact-bridges.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				viper.Set("log.level", "debug")
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newRetrieveCmd())
	cmd.AddCommand(newTranscriptsCmd())
	cmd.AddCommand(newBatchCmd())
	cmd.AddCommand(newBlastConfigCmd())
	cmd.AddCommand(newOntologyCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "intact-bridges version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig loads .env, the config file and INTACT_* environment variables.
func initConfig() {
	_ = godotenv.Load()

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("INTACT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: could not read config: %v\n", err)
		}
	}
}

func setDefaults() {
	viper.SetDefault("uniprot.base_url", "https://rest.uniprot.org")
	viper.SetDefault("uniprot.timeout", "30s")
	viper.SetDefault("uniprot.rate_limit", 10)
	viper.SetDefault("uniprot.page_size", 25)
	viper.SetDefault("uniprot.offline_dir", "")
	viper.SetDefault("uniprot.varsplic_fasta", "")
	viper.SetDefault("resolve.max_depth", 8)
	viper.SetDefault("xref.databases", []string{})
	viper.SetDefault("batch.workers", 1)
	viper.SetDefault("store.path", "")
	viper.SetDefault("log.level", "warn")
}

// configFile returns the config file in use, or the default location.
func configFile() (string, error) {
	if f := viper.ConfigFileUsed(); f != "" {
		return f, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

// newLogger builds a stderr logger at the configured level.
func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
