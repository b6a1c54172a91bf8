package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jordan/content-optimizer/internal/config"
	"github.com/jordan/content-optimizer/internal/ingest"
	"github.com/jordan/content-optimizer/internal/observability"
	"github.com/jordan/content-optimizer/internal/oracle"
	"github.com/jordan/content-optimizer/internal/suggest"
	"github.com/jordan/content-optimizer/internal/types"
	"github.com/jordan/content-optimizer/internal/workflow"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Analyze and score a draft in one shot",
	Long: `Runs a full optimization pass without a server: ingest the draft, run a
SERP analysis for the primary keyword, score the draft against the resulting
benchmarks, and optionally apply the AI-authored fixes to a new output file.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runOptimize,
}

var (
	optConfigPath   string
	optDraft        string
	optDraftURL     string
	optKeyword      string
	optSecondary    []string
	optLocation     string
	optLanguage     string
	optOracleURL    string
	optOracleAPIKey string
	optSiteID       string
	optGeminiKey    string
	optGeminiModel  string
	optApply        bool
	optOutput       string
	optUseBrowser   bool
	optVerbose      bool
)

func init() {
	optimizeCmd.Flags().StringVar(&optConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	optimizeCmd.Flags().StringVarP(&optDraft, "draft", "d", "", "Path to draft HTML file (mutually exclusive with --draft-url)")
	optimizeCmd.Flags().StringVar(&optDraftURL, "draft-url", "", "URL to fetch the draft from (mutually exclusive with --draft)")
	optimizeCmd.Flags().StringVarP(&optKeyword, "keyword", "k", "", "Primary keyword to optimize for")
	optimizeCmd.Flags().StringSliceVar(&optSecondary, "secondary", nil, "Secondary keywords (comma-separated)")
	optimizeCmd.Flags().StringVar(&optLocation, "location", "", "SERP location (defaults to config or \"United States\")")
	optimizeCmd.Flags().StringVar(&optLanguage, "language", "", "SERP language code (defaults to config or \"en\")")
	optimizeCmd.Flags().StringVar(&optOracleURL, "oracle-url", "", "Base URL of the scoring service (optional, defaults to ORACLE_URL env var)")
	optimizeCmd.Flags().StringVar(&optOracleAPIKey, "oracle-api-key", "", "Bearer token for the scoring service (optional, defaults to ORACLE_API_KEY env var)")
	optimizeCmd.Flags().StringVar(&optSiteID, "site-id", "", "Site context forwarded with scoring calls")
	optimizeCmd.Flags().StringVar(&optGeminiKey, "gemini-api-key", "", "Gemini API key for locally generated suggestions (optional, defaults to GEMINI_API_KEY env var)")
	optimizeCmd.Flags().StringVar(&optGeminiModel, "gemini-model", "", "Gemini model override for suggestion generation")
	optimizeCmd.Flags().BoolVar(&optApply, "apply", false, "Request suggestions and apply them to the draft")
	optimizeCmd.Flags().StringVarP(&optOutput, "output", "o", "", "Path to write the optimized draft (required with --apply)")
	optimizeCmd.Flags().BoolVar(&optUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	optimizeCmd.Flags().BoolVarP(&optVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := mergedConfig(cmd)
	if err != nil {
		return err
	}

	if optDraft == "" && optDraftURL == "" {
		return fmt.Errorf("either --draft or --draft-url is required")
	}
	if optDraft != "" && optDraftURL != "" {
		return fmt.Errorf("--draft and --draft-url are mutually exclusive")
	}
	if optKeyword == "" {
		return fmt.Errorf("--keyword is required")
	}
	if cfg.OracleURL == "" {
		return fmt.Errorf("oracle URL is required (config 'oracle_url', --oracle-url, or ORACLE_URL environment variable)")
	}
	if optApply && optOutput == "" {
		return fmt.Errorf("--output is required with --apply")
	}

	client, err := buildOracle(ctx, cfg)
	if err != nil {
		return err
	}

	// Draft ingestion and SERP analysis are independent; run them in
	// parallel.
	var (
		doc     *types.DocumentState
		session *types.AnalysisSession
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		doc, err = loadDraft(gctx, cfg)
		return err
	})
	g.Go(func() error {
		var err error
		session, err = client.RunAnalysis(gctx, oracle.AnalysisRequest{
			Keyword:           optKeyword,
			Location:          cfg.Location,
			Language:          cfg.Language,
			SecondaryKeywords: optSecondary,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	doc.PrimaryKeyword = optKeyword
	doc.SecondaryKeywords = optSecondary

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintSession(session)

	breakdown, err := client.ScoreContent(ctx, oracle.ScoreRequest{
		AnalysisID: session.ID,
		Document:   *doc,
	})
	if err != nil {
		return err
	}
	printer.PrintBreakdown(breakdown)

	if !optApply {
		return nil
	}

	bundle, err := client.RequestSuggestions(ctx, oracle.SuggestionRequest{
		AnalysisID:   session.ID,
		Document:     *doc,
		MissingTerms: breakdown.MissingTerms,
	})
	if err != nil {
		return err
	}
	printer.PrintBundle(bundle)

	extracted := make([]string, 0, len(session.NLPTerms.TopTerms))
	for _, term := range session.NLPTerms.TopTerms {
		extracted = append(extracted, term.Term)
	}
	updated, _, changed := workflow.ApplyBundle(*doc, *bundle, extracted)
	if !changed {
		fmt.Println("No applicable suggestions; draft left unchanged.")
		return nil
	}

	if err := os.WriteFile(optOutput, []byte(updated.ContentHTML), 0o644); err != nil {
		return fmt.Errorf("failed to write optimized draft: %w", err)
	}
	fmt.Printf("Optimized draft written to %s\n", optOutput)
	// The meta rewrites are not part of the body HTML; surface them here.
	printer.PrintDocumentMeta(updated)

	// Score the revised draft so the run ends with the new total.
	rescored, err := client.ScoreContent(ctx, oracle.ScoreRequest{
		AnalysisID: session.ID,
		Document:   updated,
	})
	if err != nil {
		return err
	}
	printer.PrintBreakdown(rescored)
	return nil
}

// mergedConfig layers config file values under explicit flags and
// environment fallbacks, mirroring the server's precedence.
func mergedConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if optConfigPath != "" {
		loaded, err := config.LoadConfig(optConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
		if optVerbose {
			fmt.Printf("Loaded config from: %s\n", optConfigPath)
		}
	}

	if cmd.Flags().Changed("oracle-url") {
		cfg.OracleURL = optOracleURL
	}
	if cmd.Flags().Changed("oracle-api-key") {
		cfg.OracleAPIKey = optOracleAPIKey
	}
	if cmd.Flags().Changed("site-id") {
		cfg.SiteID = optSiteID
	}
	if cmd.Flags().Changed("location") {
		cfg.Location = optLocation
	}
	if cmd.Flags().Changed("language") {
		cfg.Language = optLanguage
	}
	if cmd.Flags().Changed("gemini-api-key") {
		cfg.GeminiAPIKey = optGeminiKey
	}
	if cmd.Flags().Changed("gemini-model") {
		cfg.GeminiModel = optGeminiModel
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = optUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = optVerbose
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		OracleURL:    os.Getenv("ORACLE_URL"),
		OracleAPIKey: os.Getenv("ORACLE_API_KEY"),
		SiteID:       os.Getenv("SITE_ID"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	})
	return cfg, nil
}

// buildOracle wires the remote client, layering the Gemini suggestion
// backend on top when a key is configured.
func buildOracle(ctx context.Context, cfg config.Config) (oracle.Client, error) {
	remote, err := oracle.NewRemote(oracle.RemoteConfig{
		BaseURL: cfg.OracleURL,
		APIKey:  cfg.OracleAPIKey,
		SiteID:  cfg.SiteID,
	})
	if err != nil {
		return nil, err
	}
	if cfg.GeminiAPIKey == "" {
		return remote, nil
	}
	gen, err := suggest.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create suggestion generator: %w", err)
	}
	return suggest.WithGenerator(remote, gen), nil
}

func loadDraft(ctx context.Context, cfg config.Config) (*types.DocumentState, error) {
	if optDraft != "" {
		return ingest.FromFile(optDraft)
	}
	return ingest.FromURL(ctx, optDraftURL, &ingest.Options{
		Timeout:    30 * time.Second,
		UseBrowser: cfg.UseBrowser,
		Verbose:    cfg.Verbose,
	})
}
