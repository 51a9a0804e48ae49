package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harborist/contextd/internal/core/domain"
)

var registerCmd = &cobra.Command{
	Use:   "register <tenant-id> <drive-url-or-id>",
	Short: "Register a Drive document for monitoring",
	Long: `Registers a Google Drive document so sync and polling can track it.
Accepts a share URL or a bare file id. Registration only checks the
document is reachable; content is fetched on the first sync.`,
	Args: cobra.ExactArgs(2),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := getApp(cmd.Context())
	if err != nil {
		return err
	}

	tenantID := args[0]
	documentID := args[1]
	if strings.Contains(documentID, "http") {
		documentID = domain.ExtractFileID(documentID)
		if documentID == "" {
			return fmt.Errorf("could not extract a file id from %q", args[1])
		}
	}

	if err := a.registration.Register(cmd.Context(), documentID, tenantID); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			cmd.Printf("Document %s is already registered\n", documentID)
			return nil
		}
		return fmt.Errorf("register document: %w", err)
	}

	cmd.Printf("Registered document %s for monitoring\n", documentID)
	return nil
}
