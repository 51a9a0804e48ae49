package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var tenantAddCmd = &cobra.Command{
	Use:   "add <tenant-id> <api-key>",
	Short: "Onboard a tenant with a memory backend API key",
	Long: `Onboards a new tenant: provisions an assistant on the memory backend
and stores the API key encrypted. The key is never written in plaintext.`,
	Args: cobra.ExactArgs(2),
	RunE: runTenantAdd,
}

func init() {
	tenantCmd.AddCommand(tenantAddCmd)
	rootCmd.AddCommand(tenantCmd)
}

func runTenantAdd(cmd *cobra.Command, args []string) error {
	a, err := getApp(cmd.Context())
	if err != nil {
		return err
	}

	tenant, err := a.tenants.Onboard(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("onboard tenant: %w", err)
	}

	cmd.Printf("Tenant %s onboarded with assistant %s\n", tenant.TenantID, tenant.AssistantID)
	return nil
}
