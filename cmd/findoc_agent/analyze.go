package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/findoc-analyzer/internal/config"
	"github.com/jonathan/findoc-analyzer/internal/observability"
	"github.com/jonathan/findoc-analyzer/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.pdf>",
	Short: "Analyze a financial PDF and print the result",
	Long: `Runs the analysis pipeline synchronously on a single PDF and prints the
final stage's output. The stages that run depend on the query: verification
always runs; analysis, investment advice, and risk assessment are added when
the query asks for them.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeConfigPath string
	analyzeQuery      string
	analyzeOutput     string
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to config.json file")
	analyzeCmd.Flags().StringVarP(&analyzeQuery, "query", "q", "", "Natural-language query (empty runs verification only)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Write the result to a file instead of stdout")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(analyzeConfigPath)
	if err != nil {
		return err
	}
	cfg.Verbose = cfg.Verbose || rootVerbose

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.close()

	filePath := args[0]
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("input file: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	if cfg.Verbose {
		printer.PrintSelection(analyzeQuery, pipeline.Select(analyzeQuery))
	}

	res, err := rt.runner.Run(ctx, analyzeQuery, filePath)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		printer.PrintRunResult(res)
	}

	if analyzeOutput != "" {
		if err := os.WriteFile(analyzeOutput, []byte(res.Final), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Result written to %s\n", analyzeOutput)
		return nil
	}

	fmt.Println(res.Final)
	return nil
}
