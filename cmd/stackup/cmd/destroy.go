package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fotogram/stackup/internal/orchestrator"
	"github.com/fotogram/stackup/internal/output"
)

var destroyYes bool

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Tear down the application and network stacks",
	Long: `Delete the two fotogram CloudFormation stacks in reverse dependency
order: the application stack first, then the network stack.

The application's asset bucket is emptied (all objects, versions, and
delete markers) before its stack is deleted, because CloudFormation
refuses to delete a stack that owns a non-empty bucket.

Deletion asks for confirmation unless --yes is given. Declining, or
having no stacks to delete, is a successful no-op.`,
	RunE: destroyRun,
}

func init() {
	rootCmd.AddCommand(destroyCmd)
	destroyCmd.Flags().BoolVar(&destroyYes, "yes", false, "Skip the confirmation prompt")
}

func destroyRun(cmd *cobra.Command, _ []string) error {
	cfg, err := getConfigFromContext(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}

	reportCallerIdentity(ctx, awsCfg)

	confirm := orchestrator.Confirmer(output.Confirm)
	if destroyYes {
		confirm = func(string) bool { return true }
	}

	return newOrchestrator(cfg, awsCfg, confirm).Destroy(ctx)
}
