package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/findoc-analyzer/internal/config"
	"github.com/jonathan/findoc-analyzer/internal/observability"
	"github.com/jonathan/findoc-analyzer/internal/store"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and manage recorded analysis jobs",
}

var jobsConfigPath string

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all jobs, newest first",
	RunE: func(_ *cobra.Command, _ []string) error {
		jobs, _, err := openJobs()
		if err != nil {
			return err
		}
		defer jobs.Close()

		all, err := jobs.ListJobs(context.Background())
		if err != nil {
			return err
		}
		observability.NewPrinter(os.Stdout).PrintJobList(all)
		return nil
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job_id>",
	Short: "Show one job record",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		jobs, outputs, err := openJobs()
		if err != nil {
			return err
		}
		defer jobs.Close()

		job, err := jobs.GetJob(context.Background(), args[0])
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("job %s not found", args[0])
			}
			return err
		}

		printer := observability.NewPrinter(os.Stdout)
		printer.PrintJob(job)

		if job.Status == store.StatusDone {
			text, err := outputs.Read(job.ID)
			if err == nil {
				fmt.Println(text)
			}
		}
		return nil
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job_id>",
	Short: "Delete a job record (keeps the output artifact)",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		jobs, _, err := openJobs()
		if err != nil {
			return err
		}
		defer jobs.Close()

		if err := jobs.DeleteJob(context.Background(), args[0]); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("job %s not found", args[0])
			}
			return err
		}
		fmt.Printf("Job %s deleted.\n", args[0])
		return nil
	},
}

func init() {
	jobsCmd.PersistentFlags().StringVar(&jobsConfigPath, "config", "", "Path to config.json file")
	jobsCmd.AddCommand(jobsListCmd, jobsShowCmd, jobsDeleteCmd)
	rootCmd.AddCommand(jobsCmd)
}

// openJobs opens the job store and output store without the LLM stack, for
// subcommands that only touch the ledger.
func openJobs() (store.Store, *store.OutputStore, error) {
	cfg, err := config.Load(jobsConfigPath)
	if err != nil {
		return nil, nil, err
	}

	jobs, err := store.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	outputs, err := store.NewOutputStore(cfg.OutputDir)
	if err != nil {
		_ = jobs.Close()
		return nil, nil, err
	}
	return jobs, outputs, nil
}
