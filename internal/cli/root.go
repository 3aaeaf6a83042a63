// Package cli implements healthguardctl, the operator command line for the
// HealthGuard service.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/healthguard/healthguard/pkg/observability"
)

// Setting keys shared by flags, the HEALTHGUARD_* environment and the config file.
const (
	keyModel       = "model"
	keyPolicy      = "policy"
	keyOutput      = "output"
	keyServer      = "server"
	keyTLSCA       = "tls-ca"
	keyTLSInsecure = "tls-insecure"
	keyDatabaseURL = "database-url"
	keyMigrations  = "migrations-dir"
	keyVerbose     = "verbose"
	envPrefix      = "HEALTHGUARD"
	defaultCfgName = ".healthguard"
	outputJSON     = "json"
	outputYAML     = "yaml"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	out     io.Writer
	errOut  io.Writer
}

// NewRootCommand builds the healthguardctl command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "healthguardctl",
		Short: "Operate the HealthGuard cardiovascular risk service",
		Long: `healthguardctl scores patients, recommends and simulates interventions,
inspects model artifacts and clinical policies, and manages the database schema.

Assessment commands run against the built-in engine unless --server points at a
running healthguardd gRPC endpoint.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.healthguard.yaml)")
	flags.BoolP(keyVerbose, "v", false, "verbose output")
	flags.StringP(keyOutput, "o", outputJSON, "output format: json or yaml")
	flags.String(keyModel, "", "model artifact path (built-in model when empty)")
	flags.String(keyPolicy, "", "clinical policy YAML path (built-in policy when empty)")
	for _, key := range []string{keyVerbose, keyOutput, keyModel, keyPolicy} {
		_ = a.v.BindPFlag(key, flags.Lookup(key))
	}

	root.AddCommand(
		a.newPredictCommand(),
		a.newRecommendCommand(),
		a.newSimulateCommand(),
		a.newModelCommand(),
		a.newPolicyCommand(),
		a.newMigrateCommand(),
		a.newCertsCommand(),
	)
	return root
}

// Execute runs healthguardctl with the process arguments.
func Execute() error {
	return NewRootCommand(os.Stdout, os.Stderr).Execute()
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.AddConfigPath(".")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(defaultCfgName)
	}

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	} else if a.v.GetBool(keyVerbose) {
		fmt.Fprintf(a.errOut, "Using config file: %s\n", a.v.ConfigFileUsed())
	}

	switch a.v.GetString(keyOutput) {
	case outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want json or yaml)", a.v.GetString(keyOutput))
	}
}

// logger reports loader progress on stderr in verbose mode.
func (a *app) logger() *slog.Logger {
	if !a.v.GetBool(keyVerbose) {
		return observability.DiscardLogger()
	}
	return slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (a *app) bind(cmd *cobra.Command, keys ...string) {
	for _, key := range keys {
		_ = a.v.BindPFlag(key, cmd.Flags().Lookup(key))
	}
}
