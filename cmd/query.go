// =============================================================================
// Invoice Combiner - Query Command
// =============================================================================
//
// This file defines the 'query' command, which inspects the SQLite invoice
// archive that combine runs append to.
//
// COMMAND USAGE:
//   invoice-combiner query [flags]
//
// FLAGS:
//   --db     : Path to the archive database (default from config)
//   --evse   : Filter by EVSE ID
//   --since  : Only rows processed on or after this date (YYYY-MM-DD)
//   --until  : Only rows processed on or before this date (YYYY-MM-DD)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-combiner/internal/config"
	"github.com/ginjaninja78/invoice-combiner/internal/store"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var queryDB string
var queryEVSE string
var querySince string
var queryUntil string

// =============================================================================
// QUERY COMMAND DEFINITION
// =============================================================================

// queryCmd represents the 'query' command.
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the invoice archive database",
	Long: `The query command lists rows from the SQLite archive that combine runs
append to. Results can be filtered by EVSE ID or by processing date range.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery()
	},
}

// init registers the query command and its flags.
func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryDB, "db", "", "Path to the archive database (overrides database_path)")
	queryCmd.Flags().StringVar(&queryEVSE, "evse", "", "Filter by EVSE ID")
	queryCmd.Flags().StringVar(&querySince, "since", "", "Only rows processed on or after this date (YYYY-MM-DD)")
	queryCmd.Flags().StringVar(&queryUntil, "until", "", "Only rows processed on or before this date (YYYY-MM-DD)")
}

// =============================================================================
// QUERY EXECUTION
// =============================================================================

// runQuery opens the archive and prints the filtered rows as a table.
func runQuery() error {
	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	dbPath := mainConfig.DatabasePath
	if queryDB != "" {
		dbPath = queryDB
	}
	if dbPath == "" {
		return fmt.Errorf("no archive database configured; set database_path or pass --db")
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	invoices, err := fetchInvoices(db)
	if err != nil {
		return err
	}

	if len(invoices) == 0 {
		fmt.Println("No matching invoices.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEVSE\tSESSION\tCURRENCY\tPRICE\tFILE\tPROCESSED")
	for _, inv := range invoices {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%g\t%s\t%s\n",
			inv.ID, inv.EquipmentID, inv.SessionID, inv.Currency, inv.Price,
			inv.FileName, inv.ProcessedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()

	fmt.Printf("\n%d row(s)\n", len(invoices))
	return nil
}

// fetchInvoices applies the flag filters. Date filters take precedence over
// the EVSE filter when both are given.
func fetchInvoices(db *store.Store) ([]store.Invoice, error) {
	if querySince != "" || queryUntil != "" {
		since := time.Time{}
		until := time.Now()

		if querySince != "" {
			t, err := time.Parse("2006-01-02", querySince)
			if err != nil {
				return nil, fmt.Errorf("invalid --since date: %w", err)
			}
			since = t
		}
		if queryUntil != "" {
			t, err := time.Parse("2006-01-02", queryUntil)
			if err != nil {
				return nil, fmt.Errorf("invalid --until date: %w", err)
			}
			// Inclusive end of day.
			until = t.Add(24*time.Hour - time.Nanosecond)
		}

		return db.ByDateRange(since, until)
	}

	if queryEVSE != "" {
		return db.ByEquipment(queryEVSE)
	}

	return db.All()
}
