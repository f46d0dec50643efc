package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	gositemapbuilder "github.com/kotylevskiy/go-sitemap-builder"
	"github.com/spf13/cobra"
)

type config struct {
	input     string
	output    string
	gzip      bool
	merge     string
	robots    string
	userAgent string
	stampNow  bool
	timeout   time.Duration
	logLevel  string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfg config

	cmd := &cobra.Command{
		Use:          "go-sitemap-builder [flags]",
		Short:        "Build a sitemap.xml from a list of URLs",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := resolveLogLevel(cfg.logLevel)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return run(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.input, "input", "-", "URL list: YAML or one URL per line (- for stdin)")
	flags.StringVar(&cfg.output, "output", "-", "Output file (- for stdout)")
	flags.BoolVar(&cfg.gzip, "gzip", false, "Gzip the output")
	flags.StringVar(&cfg.merge, "merge", "", "Existing sitemap file or http(s) URL to merge first")
	flags.StringVar(&cfg.robots, "robots", "", "robots.txt file; disallowed URLs are left out")
	flags.StringVar(&cfg.userAgent, "user-agent", "", "User-Agent for robots.txt rules and HTTP requests")
	flags.BoolVar(&cfg.stampNow, "stamp-now", false, "Set lastmod to today for URLs without one")
	flags.DurationVar(&cfg.timeout, "timeout", 0, "Per-request timeout when merging from a URL (e.g. 5s)")
	flags.StringVar(&cfg.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	return cmd
}

func run(ctx context.Context, cfg config, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	set := gositemapbuilder.New(gositemapbuilder.Options{Logger: logger})

	if cfg.merge != "" {
		added, err := mergeExisting(ctx, set, cfg, logger)
		if err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("merged %d URLs from %s", added, cfg.merge))
	}

	data, err := readInput(cfg.input, stdin)
	if err != nil {
		return err
	}
	inputs, err := gositemapbuilder.DecodeURLInputs(data)
	if err != nil {
		return err
	}

	if cfg.robots != "" {
		robotsData, err := os.ReadFile(cfg.robots)
		if err != nil {
			return fmt.Errorf("read robots.txt: %w", err)
		}
		policy, err := gositemapbuilder.NewRobotsPolicy(robotsData, cfg.userAgent)
		if err != nil {
			return fmt.Errorf("parse robots.txt: %w", err)
		}
		var dropped []gositemapbuilder.URLInput
		inputs, dropped = policy.Filter(inputs)
		for _, input := range dropped {
			logger.Debug(fmt.Sprintf("robots.txt disallows %s", input.Loc))
		}
	}

	if cfg.stampNow {
		err = addStamped(set, inputs)
	} else {
		_, err = set.AddURLs(inputs)
	}
	if err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("sitemap holds %d URLs", set.Count()))

	return writeOutput(set, cfg, stdout)
}

func addStamped(set *gositemapbuilder.URLSet, inputs []gositemapbuilder.URLInput) error {
	for i, input := range inputs {
		if strings.TrimSpace(input.Loc) == "" {
			return fmt.Errorf("element %d: missing loc", i)
		}
		if strings.TrimSpace(input.LastMod) != "" {
			if err := set.AddURL(input.Loc, input.Options()...); err != nil {
				return err
			}
			continue
		}
		if err := set.AddURLWithNow(input.Loc, input.Options()...); err != nil {
			return err
		}
	}
	return nil
}

func mergeExisting(ctx context.Context, set *gositemapbuilder.URLSet, cfg config, logger *slog.Logger) (int, error) {
	if strings.HasPrefix(cfg.merge, "http://") || strings.HasPrefix(cfg.merge, "https://") {
		loc, err := url.Parse(cfg.merge)
		if err != nil {
			return 0, fmt.Errorf("invalid URL %q: %w", cfg.merge, err)
		}
		body, err := gositemapbuilder.FetchSitemap(ctx, loc, gositemapbuilder.FetchOptions{
			UserAgent:         cfg.userAgent,
			PerRequestTimeout: cfg.timeout,
			Logger:            logger,
		})
		if err != nil {
			return 0, err
		}
		defer body.Close()
		return set.Load(ctx, body, loc)
	}

	file, err := os.Open(cfg.merge)
	if err != nil {
		return 0, fmt.Errorf("open sitemap: %w", err)
	}
	defer file.Close()
	return set.Load(ctx, file, nil)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// writeOutput leaves an existing output file untouched unless the new sitemap is
// written completely; it goes to a temp file first and is renamed into place.
func writeOutput(set *gositemapbuilder.URLSet, cfg config, stdout io.Writer) (err error) {
	if set.IsEmpty() {
		return &gositemapbuilder.ErrEmptyCollection{}
	}
	if cfg.output == "" || cfg.output == "-" {
		return encodeTo(set, cfg.gzip, stdout)
	}

	file, err := os.CreateTemp(filepath.Dir(cfg.output), "."+filepath.Base(cfg.output)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	tmpName := file.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err = encodeTo(set, cfg.gzip, file); err != nil {
		_ = file.Close()
		return err
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err = os.Rename(tmpName, cfg.output); err != nil {
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}

func encodeTo(set *gositemapbuilder.URLSet, gzipped bool, out io.Writer) error {
	if gzipped {
		return set.WriteGzip(out)
	}
	_, err := set.WriteTo(out)
	return err
}

func resolveLogLevel(flagValue string) (slog.Level, error) {
	value := strings.TrimSpace(flagValue)
	if value == "" {
		value = strings.TrimSpace(os.Getenv("GO_SITEMAP_BUILDER_LOG_LEVEL"))
	}
	if value == "" {
		return slog.LevelError, nil
	}
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (use debug, info, warn, error)", value)
	}
}
