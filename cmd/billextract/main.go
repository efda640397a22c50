// Command billextract extracts bill line items from OCR text files.
//
//	billextract [flags] FILE...
//
// Without FILE arguments, or with FILE "-", standard input is read. With a single input the result goes
// to --out or standard output; with several inputs --out names a directory and
// one file per input is written there.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/rs/zerolog"

	"billextract/internal/config"
	"billextract/internal/domain"
	"billextract/internal/export"
	"billextract/internal/extraction"
	"billextract/internal/logger"
	"billextract/internal/service"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, ff.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

type options struct {
	format      string
	out         string
	dedup       string
	policy      string
	concurrency int
	logLevel    string
	inputs      []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := ff.NewFlagSet("billextract")
	var (
		format      = fs.StringLong("format", formatJSON, "output format: json, csv or xlsx")
		out         = fs.StringLong("out", "", "output file (single input) or directory (several inputs)")
		dedup       = fs.StringLong("dedup", "", "duplicate detection: exact or fuzzy (default from config)")
		policy      = fs.StringLong("policy", "", "reconcile policy: prefer_detected or prefer_summed (default from config)")
		concurrency = fs.IntLong("concurrency", 4, "number of inputs extracted in parallel")
		logLevel    = fs.StringLong("log-level", "warn", "log level: debug, info, warn or error")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("BILLEXTRACT_CLI")); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		return nil, err
	}

	opts := &options{
		format:      *format,
		out:         *out,
		dedup:       *dedup,
		policy:      *policy,
		concurrency: *concurrency,
		logLevel:    *logLevel,
		inputs:      fs.GetArgs(),
	}
	switch opts.format {
	case formatJSON, formatCSV, formatXLSX:
	default:
		return nil, fmt.Errorf("unsupported --format %q", opts.format)
	}
	if opts.dedup != "" && !domain.ValidDedupModes[domain.DedupMode(opts.dedup)] {
		return nil, fmt.Errorf("unsupported --dedup %q", opts.dedup)
	}
	if opts.policy != "" && !domain.ValidReconcilePolicies[domain.ReconcilePolicy(opts.policy)] {
		return nil, fmt.Errorf("unsupported --policy %q", opts.policy)
	}
	if len(opts.inputs) == 0 {
		opts.inputs = []string{"-"}
	}
	if len(opts.inputs) > 1 && opts.format != formatJSON && opts.out == "" {
		return nil, fmt.Errorf("--out directory is required for %s output with several inputs", opts.format)
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.dedup != "" {
		cfg.Extraction.DedupMode = opts.dedup
	}
	if opts.policy != "" {
		cfg.Extraction.ReconcilePolicy = opts.policy
	}
	log := logger.NewWithWriter(config.LogConfig{Level: opts.logLevel, Format: "console"}, stderr)

	inputs, err := readInputs(opts.inputs, stdin)
	if err != nil {
		return err
	}

	engine := extraction.NewEngine(cfg.Extraction.Heuristics(), log)
	svc := service.NewExtractionService(nil, nil, engine, service.NewStatsService(), cfg.Extraction.StrictSchema, log)
	runner := service.NewBatchRunner(svc, service.BatchConfig{Concurrency: opts.concurrency}, log)

	results, err := runner.Run(ctx, inputs)
	if err != nil {
		return err
	}
	return writeResults(opts, results, stdout, log)
}

func readInputs(paths []string, stdin io.Reader) ([]service.BatchInput, error) {
	inputs := make([]service.BatchInput, 0, len(paths))
	for _, p := range paths {
		var (
			data []byte
			err  error
		)
		if p == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(p)
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		inputs = append(inputs, service.BatchInput{Name: p, Text: string(data)})
	}
	return inputs, nil
}

func writeResults(opts *options, results []service.BatchResult, stdout io.Writer, log zerolog.Logger) error {
	if len(results) == 1 {
		if opts.out == "" {
			return writeOne(opts.format, results[0].Response, stdout)
		}
		return writeFile(opts.format, opts.out, results[0].Response)
	}

	if opts.out == "" {
		// Several JSON results on stdout: one object per line.
		enc := json.NewEncoder(stdout)
		for _, r := range results {
			if err := enc.Encode(struct {
				File   string                         `json:"file"`
				Result *domain.BillExtractionResponse `json:"result"`
			}{r.Name, r.Response}); err != nil {
				return err
			}
		}
		return nil
	}

	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", opts.out, err)
	}
	for _, r := range results {
		path := filepath.Join(opts.out, export.BuildFilename(r.Name, opts.format))
		if err := writeFile(opts.format, path, r.Response); err != nil {
			return err
		}
		log.Info().Str("input", r.Name).Str("output", path).Msg("written")
	}
	return nil
}

func writeFile(format, path string, resp *domain.BillExtractionResponse) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return writeOne(format, resp, f)
}

func writeOne(format string, resp *domain.BillExtractionResponse, w io.Writer) error {
	switch format {
	case formatCSV:
		return export.WriteCSV(w, resp)
	case formatXLSX:
		return export.NewXLSXWriter().Write(w, resp)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
}
