package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lucasvnasc/paginas-semelhantes/internal/client"
	"github.com/lucasvnasc/paginas-semelhantes/internal/service"
)

var (
	submitThreshold   float64
	submitMinKeywords int
	submitOutput      string
)

var submitCmd = &cobra.Command{
	Use:   "submit <export.csv>",
	Short: "Upload an export to a running server and watch the analysis",
	Long: `Submit uploads a Search Console export to a paginas server, streams the
job's progress, and downloads the resulting CSV when it completes.

Examples:
  paginas submit export.csv
  paginas submit export.csv --threshold 0.7 -o resultados_seo.csv
  paginas submit export.csv --server http://seo-box:8090`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().Float64VarP(&submitThreshold, "threshold", "t", 0, "shared-keyword ratio in [0,1] (server default if unset)")
	submitCmd.Flags().IntVarP(&submitMinKeywords, "min-keywords", "m", 0, "minimum query count for a page to seed a group (server default if unset)")
	submitCmd.Flags().StringVarP(&submitOutput, "output", "o", "resultados_seo.csv", "path for the downloaded results CSV")

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	var opts client.SubmitOptions
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = &submitThreshold
	}
	if cmd.Flags().Changed("min-keywords") {
		opts.MinKeywords = &submitMinKeywords
	}

	c := newClient()
	job, err := c.Submit(ctx, filepath.Base(args[0]), f, opts)
	if err != nil {
		return fmt.Errorf("submit export: %w", err)
	}
	fmt.Printf("Submitted as job %s\n", job.ID)

	if term.IsTerminal(int(os.Stdout.Fd())) {
		if err := RunJobProgress(ctx, c, *job); err != nil {
			return err
		}
	} else if err := pollJob(ctx, c, job.ID); err != nil {
		return err
	}

	// The watch can be abandoned with Ctrl+C, so re-check before downloading.
	final, err := c.GetJob(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if final.Status != service.JobStatusCompleted {
		fmt.Printf("Job %s is %s; run 'paginas jobs %s' later to check on it.\n",
			final.ID, final.Status, final.ID)
		return nil
	}

	out, err := os.Create(submitOutput)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	if err := c.DownloadCSV(ctx, job.ID, out); err != nil {
		return fmt.Errorf("download results: %w", err)
	}

	fmt.Printf("Wrote %d groups to %s\n", len(final.Result.Groups), submitOutput)
	return nil
}

// pollJob follows a job without a terminal, printing one line per status
// change until the job finishes.
func pollJob(ctx context.Context, c *client.Client, id string) error {
	var last service.JobStatus
	for {
		job, err := c.GetJob(ctx, id)
		if err != nil {
			return fmt.Errorf("get job: %w", err)
		}
		if job.Status != last {
			fmt.Printf("Job %s: %s\n", id, job.Status)
			last = job.Status
		}
		if job.Status.Terminal() {
			if job.Status == service.JobStatusFailed {
				return fmt.Errorf("analysis failed: %s", job.Error)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}
