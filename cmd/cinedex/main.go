// Copyright 2025 Reelworthy
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/reelworthy/cinedex"
	"github.com/reelworthy/cinedex/ai"
	"github.com/reelworthy/cinedex/ai/openai"
	"github.com/reelworthy/cinedex/ingestion"
	"github.com/reelworthy/cinedex/search"
	"github.com/reelworthy/cinedex/storage"
	"github.com/reelworthy/cinedex/storage/badger"
	"github.com/reelworthy/cinedex/storage/mongo"
)

func main() {
	app := &cli.App{
		Name:  "cinedex",
		Usage: "Vector-indexed film catalog: ingest from TMDB, search semantically",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Crawl the catalog and index it into the vector store",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "mongo-uri",
						Usage:    "MongoDB connection string",
						EnvVars:  []string{"CINEDEX_MONGO_URI"},
						Required: true,
					},
					&cli.StringFlag{
						Name:  "mongo-db",
						Usage: "MongoDB database name",
						Value: "cinedex",
					},
					&cli.StringFlag{
						Name:  "collection",
						Usage: "MongoDB collection name",
						Value: "documents",
					},
					&cli.StringFlag{
						Name:     "checkpoint",
						Aliases:  []string{"c"},
						Usage:    "Path to the checkpoint database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "api-key",
						Usage:    "Catalog API key",
						EnvVars:  []string{"CINEDEX_API_KEY"},
						Required: true,
					},
					&cli.StringFlag{
						Name:     "years",
						Usage:    "Release years to ingest, e.g. \"2019-2021\" or \"2018,2020\"",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "dimension",
						Usage: "Embedding vector dimension",
						Value: 768,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents per bulk write",
						Value: 100,
					},
					&cli.Float64Flag{
						Name:  "min-rating",
						Usage: "Skip items rated below this floor",
					},
					&cli.StringFlag{
						Name:  "region",
						Usage: "Watch-provider region (ISO 3166-1 code)",
						Value: "US",
					},
					&cli.IntFlag{
						Name:  "max-pages",
						Usage: "Maximum catalog pages per release year",
						Value: 500,
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of items processed concurrently (0 = auto)",
					},
					&cli.DurationFlag{
						Name:  "rate-limit-delay",
						Usage: "Minimum spacing between calls to one external service",
						Value: 250 * time.Millisecond,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 500 * time.Millisecond,
					},
					&cli.BoolFlag{
						Name:  "continue-on-error",
						Usage: "Keep ingesting past failed items and partitions",
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Discard the checkpoint and start from scratch",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the indexed catalog",
				Action:    searchCommand,
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "mongo-uri",
						Usage:    "MongoDB connection string",
						EnvVars:  []string{"CINEDEX_MONGO_URI"},
						Required: true,
					},
					&cli.StringFlag{
						Name:  "mongo-db",
						Usage: "MongoDB database name",
						Value: "cinedex",
					},
					&cli.StringFlag{
						Name:  "collection",
						Usage: "MongoDB collection name",
						Value: "documents",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "dimension",
						Usage: "Embedding vector dimension",
						Value: 768,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
					&cli.IntFlag{
						Name:  "year",
						Usage: "Only return films released this year",
					},
					&cli.Float64Flag{
						Name:  "min-rating",
						Usage: "Only return films rated at or above this floor",
					},
				},
			},
			{
				Name:  "checkpoint",
				Usage: "Inspect or reset the local ingestion checkpoint",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the persisted crawl position",
						Action: checkpointShowCommand,
						Flags:  []cli.Flag{checkpointFlag()},
					},
					{
						Name:   "reset",
						Usage:  "Discard the persisted crawl position",
						Action: checkpointResetCommand,
						Flags:  []cli.Flag{checkpointFlag()},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func checkpointFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "checkpoint",
		Aliases:  []string{"c"},
		Usage:    "Path to the checkpoint database directory",
		Required: true,
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	years, err := parseYears(c.String("years"))
	if err != nil {
		return err
	}

	mongoConfig := mongo.DefaultConfig()
	mongoConfig.URI = c.String("mongo-uri")
	mongoConfig.Database = c.String("mongo-db")
	mongoConfig.Collection = c.String("collection")

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithDimension(c.Int("dimension")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid embedding configuration: %w", err)
	}

	config := cinedex.Config{
		CatalogAPIKey:  c.String("api-key"),
		CheckpointPath: c.String("checkpoint"),
		Mongo:          mongoConfig,
		AI:             aiConfig,
		Ingestion: ingestion.Config{
			Years:                years,
			RetryLimit:           c.Int("max-retries"),
			BaseDelay:            c.Duration("retry-delay"),
			ConcurrencyLimit:     c.Int("concurrency"),
			RateLimitDelay:       c.Duration("rate-limit-delay"),
			MaxPagesPerPartition: c.Int("max-pages"),
			MinRating:            c.Float64("min-rating"),
			BatchSize:            c.Int("batch-size"),
			Region:               c.String("region"),
			ContinueOnError:      c.Bool("continue-on-error"),
		},
	}

	index, err := cinedex.New(ctx, config, cinedex.WithProgress(os.Stderr))
	if err != nil {
		return fmt.Errorf("failed to assemble index: %w", err)
	}
	defer index.Close(ctx)

	if c.Bool("reset") {
		if err := index.ResetCheckpoint(ctx); err != nil {
			return fmt.Errorf("failed to reset checkpoint: %w", err)
		}
	}

	summary, err := index.Ingest(ctx)
	if summary != nil {
		fmt.Fprintf(os.Stderr, "Inserted:  %d\n", summary.Inserted)
		fmt.Fprintf(os.Stderr, "Skipped:   %d\n", summary.Skipped)
		fmt.Fprintf(os.Stderr, "Filtered:  %d\n", summary.Filtered)
		fmt.Fprintf(os.Stderr, "Failed:    %d\n", summary.Failed)
		fmt.Fprintf(os.Stderr, "Pages:     %d\n", summary.Pages)
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	mongoConfig := mongo.DefaultConfig()
	mongoConfig.URI = c.String("mongo-uri")
	mongoConfig.Database = c.String("mongo-db")
	mongoConfig.Collection = c.String("collection")

	store, err := mongo.NewStore(ctx, mongoConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer store.Close(ctx)

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithDimension(c.Int("dimension")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid embedding configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	searcher, err := search.NewSearcher(store, embedder)
	if err != nil {
		return err
	}

	var opts *storage.SearchOptions
	if c.Int("year") != 0 || c.Float64("min-rating") != 0 {
		opts = &storage.SearchOptions{
			Year:      c.Int("year"),
			MinRating: c.Float64("min-rating"),
		}
	}

	matches, err := searcher.Find(ctx, query, c.Int("limit"), opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for i, match := range matches {
		doc := match.Document
		fmt.Printf("%2d. %s (%s)  rating %.1f  score %.3f\n",
			i+1, doc.Title, doc.ReleaseDate, doc.Rating, match.Score)
		if len(doc.Providers) > 0 {
			fmt.Printf("    watch on: %s\n", strings.Join(doc.Providers, ", "))
		}
		if doc.SourceURL != "" {
			fmt.Printf("    %s\n", doc.SourceURL)
		}
	}
	return nil
}

func checkpointShowCommand(c *cli.Context) error {
	ctx := context.Background()

	repo, err := badger.NewCheckpointRepository(c.String("checkpoint"))
	if err != nil {
		return fmt.Errorf("failed to open checkpoint database: %w", err)
	}
	defer repo.Close()

	checkpoint, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if checkpoint == nil {
		fmt.Println("No checkpoint recorded.")
		return nil
	}

	fmt.Printf("Updated: %s\n", checkpoint.UpdatedAt.Format(time.RFC3339))
	for _, year := range checkpoint.CompletedPartitions {
		fmt.Printf("  %d: complete\n", year)
	}
	for year, page := range checkpoint.LastCompletedPage {
		fmt.Printf("  %d: through page %d\n", year, page)
	}
	return nil
}

func checkpointResetCommand(c *cli.Context) error {
	ctx := context.Background()

	repo, err := badger.NewCheckpointRepository(c.String("checkpoint"))
	if err != nil {
		return fmt.Errorf("failed to open checkpoint database: %w", err)
	}
	defer repo.Close()

	if err := repo.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset checkpoint: %w", err)
	}
	fmt.Println("Checkpoint cleared.")
	return nil
}

// parseYears parses "2019-2021" ranges and "2018,2020" lists, in any
// combination.
func parseYears(s string) ([]int, error) {
	var years []int
	seen := make(map[int]bool)

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if from, to, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(from))
			if err != nil {
				return nil, fmt.Errorf("invalid year range %q", part)
			}
			end, err := strconv.Atoi(strings.TrimSpace(to))
			if err != nil {
				return nil, fmt.Errorf("invalid year range %q", part)
			}
			if end < start {
				return nil, fmt.Errorf("invalid year range %q: end before start", part)
			}
			for y := start; y <= end; y++ {
				if !seen[y] {
					seen[y] = true
					years = append(years, y)
				}
			}
			continue
		}

		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}

	if len(years) == 0 {
		return nil, fmt.Errorf("no years specified")
	}
	return years, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
