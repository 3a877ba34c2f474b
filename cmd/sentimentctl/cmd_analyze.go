package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/pscheid92/socialsent/internal/adapter/redis"
	"github.com/pscheid92/socialsent/internal/app"
	"github.com/pscheid92/socialsent/internal/classifier"
	"github.com/pscheid92/socialsent/internal/domain"
	"github.com/pscheid92/socialsent/internal/platform/config"
	"github.com/pscheid92/socialsent/internal/sentiment"
)

type analyzeOptions struct {
	file        string
	pretty      bool
	backend     string
	lexicon     string
	concurrency int
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Predict the sentiment of texts",
		Long: "Predict the sentiment of each argument, or of each line of --file " +
			"(use - for stdin). Results are written as JSON, one per line unless --pretty is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read texts from a file, one per line (- for stdin)")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "write an indented JSON array")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "override CLASSIFIER_BACKEND (vader, http)")
	cmd.Flags().StringVar(&opts.lexicon, "lexicon", "", "override LEXICON_FILE")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "override BATCH_CONCURRENCY")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, args []string) error {
	texts, err := collectTexts(cmd.InOrStdin(), opts.file, args)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return errors.New("no texts given: pass arguments or --file")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.backend != "" {
		cfg.ClassifierBackend = opts.backend
	}
	if opts.lexicon != "" {
		cfg.LexiconFile = opts.lexicon
	}
	if opts.concurrency > 0 {
		cfg.BatchConcurrency = opts.concurrency
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	results, err := svc.AnalyzeBatch(cmd.Context(), texts)
	if err != nil {
		return err
	}
	return writeResults(cmd.OutOrStdout(), results, opts.pretty)
}

// newService wires the analysis pipeline with an in-memory cache, so
// duplicate lines are classified once.
func newService(cfg *config.Config) (*app.Service, error) {
	factory, model, err := classifier.NewFactory(cfg, nil)
	if err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()
	cache := redis.NewClassificationCache(nil, cfg.CacheTTL, cfg.MemoryCacheTTL, nil, clock)
	provider := classifier.NewProvider(classifier.WithCache(factory, cache, model))

	lexicon := sentiment.DefaultLexicon()
	if cfg.LexiconFile != "" {
		lexicon, err = sentiment.LoadLexicon(cfg.LexiconFile)
		if err != nil {
			return nil, err
		}
	}
	scorer, err := sentiment.NewScorer(lexicon)
	if err != nil {
		return nil, err
	}

	// No batch limit: the input size is the user's choice.
	return app.NewService(sentiment.NewAnalyzer(provider, scorer), nil, app.Options{
		BatchConcurrency: cfg.BatchConcurrency,
	}, clock), nil
}

func collectTexts(stdin io.Reader, file string, args []string) ([]string, error) {
	texts := append([]string(nil), args...)
	if file == "" {
		return texts, nil
	}

	var r io.Reader = stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		texts = append(texts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return texts, nil
}

func writeResults(w io.Writer, results []domain.SentimentResult, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if pretty {
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
