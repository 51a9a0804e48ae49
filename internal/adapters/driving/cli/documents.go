package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents <tenant-id>",
	Short: "List registered documents for a tenant",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocuments,
}

func init() {
	rootCmd.AddCommand(documentsCmd)
}

func runDocuments(cmd *cobra.Command, args []string) error {
	a, err := getApp(cmd.Context())
	if err != nil {
		return err
	}

	records, err := a.docs.ListByTenant(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	if len(records) == 0 {
		cmd.Println("No documents registered")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DOCUMENT ID\tNAME\tLAST MODIFIED\tSYNCED")
	for _, rec := range records {
		synced := "no"
		if rec.Synced() {
			synced = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			rec.DocumentID, rec.DisplayName, rec.LastModified, synced)
	}
	return w.Flush()
}
