package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [job-id]",
	Short: "List or inspect analysis jobs on the server",
	Long: `List all analysis jobs on the server or inspect a specific job by ID.

Examples:
  paginas jobs           # List all jobs
  paginas jobs abc123    # Show details for job abc123`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobs,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if len(args) == 1 {
		return showJob(ctx, args[0])
	}
	return listJobs(ctx)
}

func listJobs(ctx context.Context) error {
	jobs, err := newClient().ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("%-10s %-12s %-10s %s\n", "ID", "STATUS", "PROGRESS", "STARTED")
	fmt.Println("----------------------------------------------------")

	for _, job := range jobs {
		progress := ""
		if job.Total > 0 {
			progress = fmt.Sprintf("%d/%d", job.Progress, job.Total)
		}
		started := job.StartedAt.Format("15:04:05")
		fmt.Printf("%-10s %-12s %-10s %s\n", job.ID, job.Status, progress, started)
	}

	return nil
}

func showJob(ctx context.Context, id string) error {
	job, err := newClient().GetJob(ctx, id)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	fmt.Printf("Job: %s\n", job.ID)
	fmt.Printf("  Status: %s\n", job.Status)
	fmt.Printf("  Threshold: %g\n", job.Threshold)
	fmt.Printf("  Min keywords: %d\n", job.MinKeywords)
	if job.Total > 0 {
		fmt.Printf("  Progress: %d/%d\n", job.Progress, job.Total)
	}
	fmt.Printf("  Started: %s\n", job.StartedAt.Format(time.RFC3339))
	if job.CompletedAt != nil {
		fmt.Printf("  Completed: %s\n", job.CompletedAt.Format(time.RFC3339))
		duration := job.CompletedAt.Sub(job.StartedAt)
		fmt.Printf("  Duration: %s\n", duration.Round(time.Millisecond))
	}

	if job.Error != "" {
		fmt.Printf("  Error: %s\n", job.Error)
	}

	if r := job.Result; r != nil {
		fmt.Println("\nResult:")
		fmt.Printf("  Rows kept: %d of %d\n", r.RowsKept, r.RowsRead)
		fmt.Printf("  Pages: %d\n", r.Pages)
		fmt.Printf("  Queries: %d\n", r.Keywords)
		fmt.Printf("  Groups: %d\n", len(r.Groups))
		for _, g := range r.Groups {
			fmt.Printf("    %s keeps %d pages' traffic (%d clicks)\n",
				g.Representative, len(g.Members)+1, g.Clicks)
		}
	}

	return nil
}
