package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/setanarut/logoprep/internal/workflow"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a YAML workflow of masking steps and favicon generation",
	RunE:  runWorkflow,
}

func init() {
	runCmd.Flags().StringP("config", "c", "logoprep.yaml", "Workflow file")
	runCmd.Flags().Bool("watch", false, "Re-run whenever a source image changes")
	runCmd.Flags().Duration("debounce", workflow.DefaultDebounce, "Quiet period before a watched change triggers a run")
	rootCmd.AddCommand(runCmd)
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	watch, _ := cmd.Flags().GetBool("watch")
	debounce, _ := cmd.Flags().GetDuration("debounce")

	cfg, err := workflow.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if watch {
		return workflow.Watch(ctx, cfg, debounce)
	}
	return workflow.Run(ctx, cfg)
}
