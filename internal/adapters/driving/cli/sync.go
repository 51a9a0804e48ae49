package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harborist/contextd/internal/core/ports/driving"
)

var syncCmd = &cobra.Command{
	Use:   "sync <tenant-id> <document-id>",
	Short: "Synchronise one registered document",
	Long: `Fetches the document's live content, compares it to the stored
fingerprint, and forwards changed content to the memory backend. The
registry is only updated after the backend confirms indexing.`,
	Args: cobra.ExactArgs(2),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := getApp(cmd.Context())
	if err != nil {
		return err
	}

	tenantID, documentID := args[0], args[1]
	cmd.Printf("Synchronising document %s...\n", documentID)

	result, err := a.sync.Sync(cmd.Context(), documentID, tenantID)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	switch result.Outcome {
	case driving.OutcomeUnchanged:
		cmd.Printf("%s is unchanged, nothing to do\n", result.DisplayName)
	case driving.OutcomeSynced:
		cmd.Printf("%s synchronised (fingerprint %s)\n", result.DisplayName, result.Fingerprint)
	}
	return nil
}
