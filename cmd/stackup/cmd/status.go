package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fotogram/stackup/internal/orchestrator"
	"github.com/fotogram/stackup/internal/output"
)

var statusOutputFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current state of both stacks",
	RunE:  statusRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusOutputFormat, "output", "o", "text",
		"Output format: text, json, or yaml")
}

func statusRun(cmd *cobra.Command, _ []string) error {
	cfg, err := getConfigFromContext(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}

	reports, err := newOrchestrator(cfg, awsCfg, output.Confirm).Status(ctx)
	if err != nil {
		return err
	}

	return renderStatus(reports, statusOutputFormat)
}

func renderStatus(reports []orchestrator.StackReport, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return err
		}
		output.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(reports)
		if err != nil {
			return err
		}
		output.Printf("%s", data)
	case "text", "":
		for _, report := range reports {
			output.Subheader(report.Name)
			output.KeyValue("Status", output.StatusBadge(report.Status))
			if report.Reason != "" {
				output.KeyValue("Reason", report.Reason)
			}
			for _, out := range report.Outputs {
				output.KeyValue(out.Key, out.Value)
			}
		}
	default:
		return fmt.Errorf("unknown output format: %s (use text, json, or yaml)", format)
	}
	return nil
}
