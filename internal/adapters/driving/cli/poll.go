package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var flagPollInterval time.Duration

var pollCmd = &cobra.Command{
	Use:   "poll <tenant-id>",
	Short: "Poll all registered documents until interrupted",
	Long: `Starts a polling loop over every document registered for the tenant.
Each cycle syncs documents sequentially; failures on one document are
logged and the rest of the cycle continues. Runs until Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runPoll,
}

func init() {
	pollCmd.Flags().DurationVar(&flagPollInterval, "interval", 5*time.Minute,
		"time between poll cycles")
	rootCmd.AddCommand(pollCmd)
}

func runPoll(cmd *cobra.Command, args []string) error {
	a, err := getApp(cmd.Context())
	if err != nil {
		return err
	}
	tenantID := args[0]

	records, err := a.docs.ListByTenant(cmd.Context(), tenantID)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no documents registered for tenant %s", tenantID)
	}

	documentIDs := make([]string, len(records))
	for i, rec := range records {
		documentIDs[i] = rec.DocumentID
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Polling %d documents every %s (Ctrl-C to stop)\n",
		len(documentIDs), flagPollInterval)
	a.poller.Start(ctx, tenantID, documentIDs, flagPollInterval)

	<-ctx.Done()
	a.poller.Stop()
	cmd.Println("Polling stopped")
	return nil
}
