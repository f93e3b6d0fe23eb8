package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/storealloc/pkg/infrastructure/config"
	"github.com/vsinha/storealloc/pkg/infrastructure/logging"
	"github.com/vsinha/storealloc/pkg/interfaces/cli/commands"
)

var (
	cmdConfig commands.Config
	logger    *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storealloc",
	Short: "Distribute warehouse stock across retail stores",
	Long: `storealloc apportions consolidated warehouse stock across stores by their
participation share, applies the curve and policy rules, plans the transfers
needed to realise the allocation and reconciles the result unit by unit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(cmdConfig.ConfigFile)
		if err != nil {
			return err
		}
		logger, err = logging.New(logging.Options{
			Level:       settings.Log.Level,
			Development: settings.Log.Development,
			Verbose:     cmdConfig.Verbose,
		})
		if err != nil {
			return err
		}
		cmdConfig.Logger = logger
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// runCmd distributes the stock
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the distribution and write the result",
	Long: `Loads stock, participation and the optional priority file, runs the rule
passes and transfer planning, and writes the result in the chosen format.

Examples:
  storealloc run --scenario examples/basic
  storealloc run --stock stock.xlsx --participation participacion.csv --format xlsx --output out/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.NewRunCommand(cmdConfig).Execute(cmd.Context())
	},
}

// validateCmd checks the inputs without distributing
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse the inputs and report what was read",
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.NewValidateCommand(cmdConfig).Execute(cmd.Context())
	},
}

// configCmd prints the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.NewConfigCommand(cmdConfig).Execute()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cmdConfig.ConfigFile, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&cmdConfig.Verbose, "verbose", "v", false, "Enable debug logging")

	for _, cmd := range []*cobra.Command{runCmd, validateCmd} {
		cmd.Flags().StringVar(&cmdConfig.ScenarioDir, "scenario", "", "Scenario directory with stock, participation and priority files")
		cmd.Flags().StringVar(&cmdConfig.StockFile, "stock", "", "Stock file (CSV or XLSX)")
		cmd.Flags().StringVar(&cmdConfig.ParticipationFile, "participation", "", "Store participation file (CSV or XLSX)")
		cmd.Flags().StringVar(&cmdConfig.PriorityFile, "priority", "", "Category priority file (optional)")
	}

	runCmd.Flags().StringVarP(&cmdConfig.Format, "format", "f", "", "Output format: text, json, yaml, csv, xlsx")
	runCmd.Flags().StringVarP(&cmdConfig.OutputDir, "output", "o", "", "Output directory for results")
	runCmd.Flags().StringVar(&cmdConfig.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	runCmd.Flags().BoolVar(&cmdConfig.Strict, "strict", false, "Fail when the checksum does not reconcile")

	rootCmd.AddCommand(runCmd, validateCmd, configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
