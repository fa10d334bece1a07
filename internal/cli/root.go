package cli

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/archivecast/podcaster/internal/catalog"
	"github.com/archivecast/podcaster/internal/config"
	"github.com/archivecast/podcaster/internal/ingestion"
	"github.com/archivecast/podcaster/internal/keyvalidator"
	"github.com/archivecast/podcaster/internal/sources"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "speechcastctl",
	Short: "Admin CLI for the speechcast archive",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("speechcastctl %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(validateKeysCmd)
	rootCmd.AddCommand(modelsCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

// openStore opens the Catalog Store at the configured path, for
// subcommands that need it without running the full HTTP server.
func openStore() (*catalog.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	store, err := catalog.Open(catalog.Config{Path: cfg.DatabasePath})
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog store: %w", err)
	}
	return store, cfg, nil
}

func defaultRegistry(cfg *config.Config) *sources.Registry {
	return sources.NewRegistry(
		sources.NewArchiveSource(),
		sources.NewCSpanSource(cfg.SpeechSubject),
		sources.NewWhiteHouseSource(),
		sources.NewYouTubeSource(cfg.YouTubeAPIKey, nil),
	)
}

var flagIngestForce bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run an ingestion pass against all configured source adapters",
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&flagIngestForce, "force", false, "ignore the ingest threshold and always refresh")
}

func runIngest(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	registry := defaultRegistry(cfg)
	threshold := cfg.IngestThreshold
	if flagIngestForce {
		threshold = math.MaxInt
	}
	engine := ingestion.New(registry, store, threshold, nil)

	result, err := engine.PopulateArchive(context.Background())
	if err != nil {
		return fmt.Errorf("populate archive: %w", err)
	}

	fmt.Printf("existing=%d inserted=%d total=%d\n", result.Existing, result.Inserted, result.Total)
	if len(result.Errors) > 0 {
		fmt.Fprintln(os.Stderr, "errors:")
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
	}
	return nil
}

var validateKeysCmd = &cobra.Command{
	Use:   "validate-keys <key> [key...]",
	Short: "Validate one or more OpenRouter API keys against the live provider",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidateKeys,
}

func runValidateKeys(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	validator := keyvalidator.New(store)
	for _, key := range args {
		verdict, err := validator.Validate(context.Background(), key)
		if err != nil {
			fmt.Printf("%s... error: %v\n", prefixOf(key), err)
			continue
		}
		if verdict.Valid {
			fmt.Printf("%s... valid (models=%d)\n", prefixOf(key), verdict.ModelCount)
		} else {
			fmt.Printf("%s... invalid (%s)\n", prefixOf(key), verdict.ErrorCode)
		}
	}
	return nil
}

func prefixOf(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8]
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List curated LLM models by category",
	RunE:  runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	for _, category := range []catalog.ModelCategory{
		catalog.CategoryTopOverall, catalog.CategoryTopFree,
		catalog.CategoryDiscovered, catalog.CategoryFallback,
	} {
		models, err := store.CuratedModelsBy(context.Background(), category)
		if err != nil {
			return fmt.Errorf("list models for %s: %w", category, err)
		}
		if len(models) == 0 {
			continue
		}
		fmt.Printf("%s:\n", category)
		for _, m := range models {
			fmt.Printf("  %-40s score=%.2f usage=%d\n", m.ID, m.PerformanceScore, m.UsageCount)
		}
	}
	return nil
}
