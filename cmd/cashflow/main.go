package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rumor-ml/commons.systems/cashflow/internal/columns"
	"github.com/rumor-ml/commons.systems/cashflow/internal/ingest"
	"github.com/rumor-ml/commons.systems/cashflow/internal/logger"
	"github.com/rumor-ml/commons.systems/cashflow/internal/parser"
	"github.com/rumor-ml/commons.systems/cashflow/internal/registry"
	"github.com/rumor-ml/commons.systems/cashflow/internal/rules"
	"github.com/rumor-ml/commons.systems/cashflow/internal/scanner"
	"github.com/rumor-ml/commons.systems/cashflow/internal/store/sqlite"
	"github.com/rumor-ml/commons.systems/cashflow/internal/transform"
	"github.com/rumor-ml/commons.systems/cashflow/internal/ui"
)

const (
	version = "0.1.0"
)

var (
	// Global flags
	versionFlag = flag.Bool("version", false, "Show version")

	// Core CLI flags
	inputPath  = flag.String("input", "", "Statement file or directory of statements (required)")
	sourceFlag = flag.String("source", "", "Source label for imported rows (default: derived from directory)")
	dbPath     = flag.String("db", "cashflow.db", "SQLite database path")
	dryRun     = flag.Bool("dry-run", false, "Parse and deduplicate without writing")
	verbose    = flag.Bool("verbose", false, "Show detailed ingestion logs")

	// Customization flags
	rulesFile   = flag.String("rules", "", "Category rules file (default: embedded rules)")
	aliasesFile = flag.String("aliases", "", "Column alias overrides file")
	strictMode  = flag.Bool("strict", false, "Keep repeated identical rows within one statement")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `cashflow - Bank statement ingestion and deduplication

Usage:
  cashflow [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, `
Examples:
  # Ingest a directory of statements
  cashflow -input ~/statements -db cashflow.db

  # Ingest one file under an explicit source label
  cashflow -input statement.csv -source checking

  # Preview without writing
  cashflow -input ~/statements -dry-run -verbose

`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("cashflow version %s\n", version)
		os.Exit(0)
	}

	if *inputPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -input flag is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log := logger.New(*verbose)
	ctx := logger.WithContext(context.Background(), log)

	if !*verbose {
		ui.Header("Ingesting Bank Statements")
		ui.Step(1, 4, "Collecting statement files")
	}

	table, err := loadColumnTable()
	if err != nil {
		return err
	}

	files, err := collectFiles(*inputPath)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no statement files found in %s\n\nPlease check:\n  - Path is correct\n  - Files have supported extensions (.csv, .xlsx, .pdf, .ofx, .qfx)\n  - You have read permissions on the directory and files\n\nRun with -verbose to see file discovery details", *inputPath)
	}

	if *verbose {
		log.Info().Int("files", len(files)).Str("input", *inputPath).Msg("collected statement files")
		for _, f := range files {
			log.Debug().Str("path", f.Path).Str("source", f.Metadata.SourceLabel()).Msg("found statement")
		}
	} else {
		ui.Success("Found %d statement files", len(files))
	}

	reg := registry.New(table)
	if *verbose {
		log.Debug().Strs("readers", reg.ListReaders()).Msg("registered readers")
	}

	if *dryRun {
		fmt.Printf("Dry run complete. Would process %d files.\n", len(files))
		return nil
	}

	if !*verbose {
		ui.Step(2, 4, "Loading category rules")
	}
	engine, err := loadRules()
	if err != nil {
		return err
	}
	if *verbose {
		log.Debug().Int("rules", len(engine.GetRules())).Msg("loaded category rules")
	}

	if !*verbose {
		ui.Step(3, 4, "Opening database")
	}
	store, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var opts []ingest.Option
	if *strictMode {
		opts = append(opts, ingest.WithStrictFingerprints())
	}
	orch := ingest.New(store, engine, opts...)

	if !*verbose {
		ui.Step(4, 4, "Parsing and ingesting statements")
	}

	importID := transform.GenerateImportID(time.Now())
	log.Debug().Str("import_id", importID).Msg("starting ingestion run")

	var totals ingest.Stats
	for i, file := range files {
		stats, err := ingestFile(ctx, reg, orch, file)
		totals.Add(stats)
		if err != nil {
			// Keep going: one unreadable statement must not block the rest,
			// but the failure still lands in the totals and the log.
			log.Error().Err(err).Str("path", file.Path).Msg("failed to ingest statement")
			if !*verbose {
				ui.Warning("Skipped %s: %v", filepath.Base(file.Path), err)
			}
			continue
		}
		if *verbose {
			log.Info().
				Str("path", file.Path).
				Int("inserted", stats.Inserted).
				Int("duplicates", stats.Duplicates).
				Msg("ingested statement")
		} else {
			fmt.Fprintf(os.Stderr, "\r  Progress: %d/%d files...", i+1, len(files))
		}
	}
	if !*verbose {
		fmt.Fprintf(os.Stderr, "\r  Progress: %d/%d files - Complete!\n", len(files), len(files))
	}

	total, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to read final transaction count: %w", err)
	}

	if *verbose {
		log.Info().
			Int("inserted", totals.Inserted).
			Int("duplicates", totals.Duplicates).
			Int("errors", totals.Errors).
			Int("total", total).
			Msg("ingestion complete")
	} else {
		fmt.Fprintf(os.Stderr, "\n")
		ui.Success("Inserted %d new transactions", totals.Inserted)
		ui.Info("Skipped %d duplicates", totals.Duplicates)
		if totals.Errors > 0 {
			ui.Warning("%d rows failed to ingest", totals.Errors)
		}
		ui.Info("Database now holds %d transactions", total)
	}

	if totals.Errors > 0 {
		return fmt.Errorf("%d rows failed to ingest", totals.Errors)
	}
	return nil
}

// loadColumnTable builds the header alias table, applying user overrides when
// provided.
func loadColumnTable() (*columns.Table, error) {
	if *aliasesFile == "" {
		return columns.Default(), nil
	}
	table, err := columns.LoadOverrides(*aliasesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load column aliases: %w", err)
	}
	return table, nil
}

func loadRules() (*rules.Engine, error) {
	if *rulesFile != "" {
		engine, err := rules.LoadFromFile(*rulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules file: %w", err)
		}
		return engine, nil
	}
	engine, err := rules.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded rules: %w", err)
	}
	return engine, nil
}

// collectFiles resolves the input path into scan results: a directory is
// walked, a single file becomes one result.
func collectFiles(input string) ([]scanner.ScanResult, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input %s: %w", input, err)
	}

	if info.IsDir() {
		return scanner.New(input).Scan()
	}

	meta, err := parser.NewMetadata(input, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata for %s: %w", input, err)
	}
	return []scanner.ScanResult{{Path: input, Metadata: meta}}, nil
}

// sourceFor picks the source label for a file: explicit flag first, then the
// label the scanner derived from the directory layout, then the input's own
// directory name.
func sourceFor(file scanner.ScanResult) string {
	if *sourceFlag != "" {
		return *sourceFlag
	}
	if label := file.Metadata.SourceLabel(); label != "" {
		return label
	}
	if slug, err := transform.SlugifySource(filepath.Base(filepath.Dir(file.Path))); err == nil {
		return slug
	}
	return "unlabeled"
}

func ingestFile(ctx context.Context, reg *registry.Registry, orch *ingest.Orchestrator, file scanner.ScanResult) (ingest.Stats, error) {
	reader, err := reg.FindReader(file.Path)
	if err != nil {
		return ingest.Stats{Errors: 1}, err
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return ingest.Stats{Errors: 1}, fmt.Errorf("failed to open %s: %w", file.Path, err)
	}

	rows, err := reader.Read(ctx, f, file.Metadata)

	// Close immediately instead of deferring to avoid descriptor accumulation
	// across a large scan.
	if closeErr := f.Close(); closeErr != nil {
		errStr := closeErr.Error()
		if strings.Contains(errStr, "permission") || strings.Contains(errStr, "no space") {
			return ingest.Stats{Errors: 1}, fmt.Errorf("failed to close file %s: %w", file.Path, closeErr)
		}
		fmt.Fprintf(os.Stderr, "\nWARNING: Failed to close %s: %v\n", file.Path, closeErr)
	}

	if err != nil {
		return ingest.Stats{Errors: 1}, fmt.Errorf("failed to read %s with %s reader: %w", file.Path, reader.Name(), err)
	}

	return orch.Ingest(ctx, rows, sourceFor(file))
}
