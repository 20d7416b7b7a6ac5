package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gestao-report/internal/config"
	"gestao-report/internal/gestao"
	"gestao-report/internal/reconcile"
	"gestao-report/internal/sheets"

	"go.uber.org/zap"
)

// ErrNoPayments halts the run before reconciliation: without the payment
// collection there is nothing to reconcile against.
var ErrNoPayments = errors.New("no payments loaded, check API access and date window")

type Runner struct {
	options  Options
	logger   *zap.Logger
	loader   *gestao.Loader
	engine   *reconcile.Engine
	exporter *sheets.Exporter
}

func NewRunner(cfg config.Config, logger *zap.Logger, loader *gestao.Loader, engine *reconcile.Engine, exporter *sheets.Exporter) *Runner {
	opts := Options{
		SpreadsheetID: cfg.SpreadsheetID,
		SheetName:     cfg.SheetName,
		WindowStart:   cfg.WindowStart,
		OutputDir:     cfg.OutputDir,
	}

	return &Runner{
		options:  opts,
		logger:   logger.Named("cli"),
		loader:   loader,
		engine:   engine,
		exporter: exporter,
	}
}

func (r *Runner) Execute() error {
	opts := r.options

	fs := flag.NewFlagSet("gestao-report", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", fs.Name())
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.SpreadsheetID, "spreadsheet", opts.SpreadsheetID, "Google spreadsheet ID (SPREADSHEET_ID)")
	fs.StringVar(&opts.SheetName, "sheet", opts.SheetName, "Target sheet name (SHEET_NAME)")
	fs.StringVar(&opts.WindowStart, "from", opts.WindowStart, "Start date of the fetch window (YYYY-MM-DD)")
	fs.StringVar(&opts.OutputDir, "out", opts.OutputDir, "Directory for the local JSON dump (OUTPUT_DIR)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	return r.run(ctx, &opts)
}

func (r *Runner) run(ctx context.Context, opts *Options) error {
	window := gestao.WindowUntilToday(opts.WindowStart)
	r.logger.Info("starting run",
		zap.String("window_start", window.Start),
		zap.String("window_end", window.End),
	)

	stores := r.loader.Stores(ctx)
	payments := r.loader.Payments(ctx, window)
	if len(payments) == 0 {
		return ErrNoPayments
	}

	serviceOrders := r.loader.ServiceOrders(ctx, window, stores)
	sales := r.loader.Sales(ctx, window, stores)
	products := r.loader.Products(ctx)
	groups := r.loader.ProductGroups(ctx)
	users := r.loader.Users(ctx)

	rows, headers := r.engine.Reconcile(reconcile.Input{
		Payments:      payments,
		Sales:         sales,
		ServiceOrders: serviceOrders,
		Users:         users,
		Groups:        groups,
		Products:      products,
	})

	records := make([]map[string]any, len(rows))
	for i, row := range rows {
		records[i] = row.Record()
	}

	if opts.OutputDir != "" {
		if err := writeDump(opts.OutputDir, "report.json", records); err != nil {
			r.logger.Warn("writing local dump failed", zap.Error(err))
		} else {
			r.logger.Info("local dump written",
				zap.String("path", filepath.Join(opts.OutputDir, "report.json")),
			)
		}
	}

	if opts.SpreadsheetID != "" {
		if err := r.exporter.Export(ctx, records, opts.SpreadsheetID, opts.SheetName, headers); err != nil {
			return fmt.Errorf("exporting report: %w", err)
		}
	}

	printSummary(reconcile.Summarize(payments), len(rows))
	return nil
}

func writeDump(dir, name string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding dump: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
		return fmt.Errorf("writing dump: %w", err)
	}
	return nil
}

func printSummary(s reconcile.Summary, rows int) {
	fmt.Fprintln(os.Stdout, "===== Processing Report =====")
	fmt.Fprintf(os.Stdout, "Total payments processed: %d\n", s.Total)
	fmt.Fprintf(os.Stdout, "Payments related to sales: %d (%.2f%%)\n", s.Sales, s.Percent(s.Sales))
	fmt.Fprintf(os.Stdout, "Payments related to service orders: %d (%.2f%%)\n", s.ServiceOrders, s.Percent(s.ServiceOrders))
	fmt.Fprintf(os.Stdout, "Payments with custom description: %d (%.2f%%)\n", s.Other, s.Percent(s.Other))
	fmt.Fprintf(os.Stdout, "Report rows emitted: %d\n", rows)
	fmt.Fprintln(os.Stdout, "=============================")
}
