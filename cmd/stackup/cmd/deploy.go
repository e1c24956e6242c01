package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fotogram/stackup/internal/output"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Create the network and application stacks and publish the landing page",
	Long: `Create the two fotogram CloudFormation stacks in dependency order.

The network stack comes up first; the application stack depends on its
exports and follows. After both reach CREATE_COMPLETE the static landing
page is uploaded into the bucket the application stack exports.

Templates and parameter files are read from the paths in the
configuration file (stackup.yaml by default).`,
	RunE: deployRun,
}

func init() {
	rootCmd.AddCommand(deployCmd)
}

func deployRun(cmd *cobra.Command, _ []string) error {
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

	return newOrchestrator(cfg, awsCfg, output.Confirm).Deploy(ctx)
}
