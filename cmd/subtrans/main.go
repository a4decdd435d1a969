// Command subtrans translates newline-separated subtitle lines using the
// translation dispatch engine.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/subtrans"
	"github.com/ZaguanLabs/subtrans/cache"
	"github.com/ZaguanLabs/subtrans/provider"
)

// envSettings are read from the environment (and an optional .env file).
type envSettings struct {
	OpenAIKey   string `envconfig:"OPENAI_API_KEY"`
	AzureKey    string `envconfig:"AZURE_TRANSLATOR_KEY"`
	AzureRegion string `envconfig:"AZURE_TRANSLATOR_REGION" default:"global"`
	RedisURL    string `envconfig:"REDIS_URL"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("subtrans", flag.ContinueOnError)
	fs.SetOutput(stderr)

	targetLang := fs.String("lang", "", "Target language code (e.g., zh, en); auto-detected if empty")
	service := fs.String("service", "microsoft", "Translation service: microsoft, openai, libre, local")
	output := fs.String("o", "", "Output file (default: stdout)")
	workers := fs.Int("workers", subtrans.DefaultMaxParallelWorkers, "Maximum parallel provider calls")
	rps := fs.Float64("rps", subtrans.DefaultRequestsPerSecond, "Maximum provider requests per second")
	batchSize := fs.Int("batch-size", subtrans.DefaultMaxBatchSize, "Maximum texts per provider call")
	retries := fs.Int("retries", subtrans.DefaultRetryAttempts, "Retry attempts for transient failures")
	cacheFile := fs.String("cache-file", "", "JSON cache snapshot to load before and save after the run")
	noCache := fs.Bool("no-cache", false, "Disable the fingerprint cache")
	showStats := fs.Bool("stats", false, "Print usage statistics to stderr when done")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	showVersion := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", subtrans.Name, subtrans.FullVersion())
		return nil
	}

	// .env is optional; missing files are fine.
	_ = godotenv.Load()

	var env envSettings
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	logLevel := zerolog.WarnLevel
	if *verbose {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(logLevel).With().Timestamp().Logger()

	lines, err := readLines(fs.Args())
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	lang := *targetLang
	if lang == "" {
		lang = subtrans.NewLanguageDetector().DetectTargetLanguage(lines)
		logger.Info().Str("lang", lang).Msg("auto-detected target language")
	}

	p, err := buildProvider(*service, env)
	if err != nil {
		return err
	}

	store, err := buildCache(env, *cacheFile, logger)
	if err != nil {
		return err
	}

	opts := []subtrans.EngineOption{
		subtrans.WithCache(store),
		subtrans.WithMaxParallelWorkers(*workers),
		subtrans.WithRequestsPerSecond(*rps),
		subtrans.WithMaxBatchSize(*batchSize),
		subtrans.WithRetryAttempts(*retries),
		subtrans.WithLogger(logger),
	}
	if *noCache {
		opts = append(opts, subtrans.WithCacheDisabled())
	}

	engine, err := subtrans.NewEngine(p, opts...)
	if err != nil {
		return err
	}

	var onProgress subtrans.ProgressSink
	if !*quiet {
		onProgress = func(ev subtrans.ProgressEvent) {
			fmt.Fprintf(stderr, "\rtranslating %d/%d (%.1f%%)", ev.Completed, ev.Total, ev.Percentage)
			if ev.Completed == ev.Total {
				fmt.Fprintln(stderr)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	translated := engine.TranslateMany(ctx, lines, lang, onProgress)

	out := stdout
	if *output != "" {
		f, err := os.Create(*output) // #nosec G304 - CLI tool writes user-specified files
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	for _, line := range translated {
		fmt.Fprintln(out, line)
	}

	if *cacheFile != "" {
		if mem, ok := store.(*cache.MemoryCache); ok {
			if err := cache.NewExporter(mem).ExportToFile(*cacheFile, map[string]string{"lang": lang}); err != nil {
				logger.Warn().Err(err).Msg("saving cache snapshot failed")
			}
		}
	}

	if *showStats {
		stats := engine.Stats()
		fmt.Fprintf(stderr, "api calls: %d, characters: %d, cache hit rate: %.1f%%\n",
			stats.APICalls, stats.CharactersTranslated, stats.CacheHitRate*100)
	}

	return nil
}

// readLines reads newline-separated texts from the given file or stdin.
func readLines(args []string) ([]string, error) {
	var r io.Reader
	if len(args) == 0 {
		r = os.Stdin
	} else {
		f, err := os.Open(args[0]) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// buildProvider selects the translation back-end. The "local" service
// returns nil so every line resolves through the engine's fallback.
func buildProvider(service string, env envSettings) (subtrans.Provider, error) {
	switch strings.ToLower(service) {
	case "microsoft":
		if env.AzureKey == "" {
			return nil, fmt.Errorf("AZURE_TRANSLATOR_KEY required for the microsoft service")
		}
		return provider.NewMicrosoftProvider(provider.MicrosoftConfig{
			APIKey: env.AzureKey,
			Region: env.AzureRegion,
		}), nil
	case "openai":
		if env.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY required for the openai service")
		}
		return provider.NewOpenAIProvider(provider.OpenAIConfig{APIKey: env.OpenAIKey}), nil
	case "libre":
		return provider.NewLibreProvider(provider.LibreConfig{}), nil
	case "local":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown service %q", service)
	}
}

// buildCache prefers a shared Redis cache when REDIS_URL is set, otherwise
// an in-memory cache, optionally warmed from a snapshot file.
func buildCache(env envSettings, cacheFile string, logger zerolog.Logger) (cache.TranslationCache, error) {
	if env.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{URL: env.RedisURL})
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return redisCache, nil
	}

	mem := cache.NewMemoryCache()
	if cacheFile != "" {
		if _, err := os.Stat(cacheFile); err == nil {
			result, err := cache.NewImporter(mem).ImportFromFile(cacheFile)
			if err != nil {
				logger.Warn().Err(err).Msg("loading cache snapshot failed")
			} else {
				logger.Info().Int("entries", result.Imported).Msg("loaded cache snapshot")
			}
		}
	}
	return mem, nil
}
