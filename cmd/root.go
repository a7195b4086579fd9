// =============================================================================
// Invoice Combiner - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that the 'combine', 'query', and 'version' commands are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (invoice-combiner)
//   ├── combineCmd (invoice-combiner combine)
//   ├── queryCmd   (invoice-combiner query)
//   └── versionCmd (invoice-combiner version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables verbose logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "invoice-combiner",
	Short: "Combine heterogeneous EV-charging invoice exports into one canonical table",

	Long: `Invoice Combiner reconciles CSV and XLSX invoice exports from different
billing systems into a single table with four canonical columns: EVSE ID,
session ID, currency, and net unit price.

The tool locates the real header row inside each sheet, classifies the raw
columns by name and content heuristics, and distinguishes net prices from
VAT-inclusive amounts and VAT-rate percentages. Files it cannot interpret
unambiguously are reported, never guessed at.

Example Usage:
  invoice-combiner combine                     # Combine all files in the input directory
  invoice-combiner combine --config ./my.yaml  # Use a custom configuration file
  invoice-combiner query --evse DE*123         # Inspect the invoice archive`,

	Run: func(cmd *cobra.Command, args []string) {
		// No subcommand: print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the persistent flags shared by all subcommands.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (default is config.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
