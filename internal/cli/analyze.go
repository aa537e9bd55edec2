package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lucasvnasc/paginas-semelhantes/internal/report"
	"github.com/lucasvnasc/paginas-semelhantes/internal/service"
)

var (
	analyzeThreshold   float64
	analyzeMinKeywords int
	analyzeConcurrency int
	analyzeOutput      string
	analyzeJSON        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <export.csv>",
	Short: "Analyze a Search Console export locally",
	Long: `Analyze runs the full pipeline in-process over a Search Console
performance export (Landing Page, Query, Url Clicks).

Examples:
  paginas analyze export.csv
  paginas analyze export.csv --threshold 0.7 -o resultados_seo.csv
  paginas analyze export.csv --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Float64VarP(&analyzeThreshold, "threshold", "t", 0, "shared-keyword ratio in [0,1] (default from config)")
	analyzeCmd.Flags().IntVarP(&analyzeMinKeywords, "min-keywords", "m", 0, "minimum query count for a page to seed a group (default from config)")
	analyzeCmd.Flags().IntVarP(&analyzeConcurrency, "concurrency", "c", 0, "parallel matching workers (default from config)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write results as CSV to this path")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full result as JSON")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	opts := service.Options{
		Threshold:   cfg.Threshold,
		MinKeywords: cfg.MinKeywords,
		Concurrency: cfg.Concurrency,
	}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = analyzeThreshold
	}
	if cmd.Flags().Changed("min-keywords") {
		opts.MinKeywords = analyzeMinKeywords
	}
	if cmd.Flags().Changed("concurrency") {
		opts.Concurrency = analyzeConcurrency
	}

	// Inline progress on stderr, but only when someone is watching.
	if term.IsTerminal(int(os.Stderr.Fd())) && !analyzeJSON {
		opts.Progress = func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rComparing pages... %d/%d", done, total)
			if done == total {
				fmt.Fprint(os.Stderr, "\n")
			}
		}
	}

	svc := service.NewAnalysisService(nil)
	result, err := svc.Run(context.Background(), f, opts)
	if err != nil {
		return err
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if analyzeOutput != "" {
		out, err := os.Create(analyzeOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()
		if err := report.WriteCSV(out, result.Groups); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Wrote %d groups to %s\n", len(result.Groups), analyzeOutput)
		return nil
	}

	printResult(result)
	return nil
}

// printResult renders a human-readable summary of an analysis run.
func printResult(r *service.Result) {
	fmt.Printf("Rows: %d read, %d kept. Pages: %d. Queries: %d. Took %s.\n\n",
		r.RowsRead, r.RowsKept, r.Pages, r.Keywords, r.Duration.Round(time.Millisecond))

	if len(r.Groups) == 0 {
		fmt.Println("No overlapping page groups found.")
		return
	}

	fmt.Printf("Found %d groups of overlapping pages:\n\n", len(r.Groups))
	for i, g := range r.Groups {
		fmt.Printf("%d. Keep %s (%d clicks)\n", i+1, g.Representative, g.Clicks)
		for _, m := range g.Members {
			fmt.Printf("   - %s (%d shared queries)\n", m.URL, m.SharedCount)
		}
		if g.SharedCount > 0 {
			fmt.Printf("   Shared by all: %s\n", previewTerms(g.SharedTerms, 5))
		}
		fmt.Println()
	}
}

// previewTerms joins up to n terms, eliding the rest.
func previewTerms(terms []string, n int) string {
	if len(terms) <= n {
		return strings.Join(terms, ", ")
	}
	return fmt.Sprintf("%s, ... (%d more)", strings.Join(terms[:n], ", "), len(terms)-n)
}
