// Package pipeline orchestrates one ingestion pass: period discovery, archive
// download, table parsing, observation merging, and persistence. One run owns
// one explicit Pipeline value; there is no process-wide state.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"insurstat/internal/config"
	"insurstat/internal/fetch"
	"insurstat/internal/registry"
	"insurstat/internal/resolve"
	"insurstat/internal/store"
	"insurstat/internal/tabular"
	"insurstat/pkg/contracts/domain"
)

// Pipeline wires the resolution-and-normalization engine to its collaborators
// for one run.
type Pipeline struct {
	cfg      *config.Config
	store    *store.Store
	registry *registry.Registry
	resolver *resolve.Resolver
	dict     tabular.Dictionary
	logger   *slog.Logger
	limiter  *rate.Limiter
	runID    string

	mu      sync.Mutex
	reports map[int]string // year -> annual-report PDF URL, cache-only
}

// New builds a pipeline for a single ingestion run. The rate limiter is
// shared by all period workers so concurrent downloads stay polite to the
// regulator's site.
func New(cfg *config.Config, st *store.Store, reg *registry.Registry, dict tabular.Dictionary, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		registry: reg,
		resolver: resolve.New(reg),
		dict:     dict,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Limit(cfg.Ingestion.RequestsPerSec), 1),
		runID:    uuid.NewString(),
		reports:  make(map[int]string),
	}
}

// RunID identifies this ingestion run in logs and the unresolved-name log.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Periods decides which (year, archive URL) pairs this run ingests: link
// discovery from the listing pages when enabled, overlaid on the pinned
// archive map from configuration. Discovered links win for years present in
// both.
func (p *Pipeline) Periods(ctx context.Context) map[int]string {
	periods := make(map[int]string, len(p.cfg.Source.Archives))
	for year, url := range p.cfg.Source.Archives {
		if year >= p.cfg.Ingestion.MinYear {
			periods[year] = url
		}
	}
	if p.cfg.Source.Discover {
		client := fetch.NewClient(p.cfg.Ingestion.HTTPTimeout, p.limiter)
		discovered := fetch.DiscoverArchiveLinks(ctx, client, p.cfg.Source.ListingPages, p.cfg.Ingestion.MinYear, p.logger)
		for year, url := range discovered {
			periods[year] = url
		}
		p.mu.Lock()
		p.reports = fetch.DiscoverReportLinks(ctx, client, p.cfg.Source.ListingPages, p.cfg.Ingestion.MinYear, p.logger)
		p.mu.Unlock()
	}
	return periods
}

// Run executes the ingestion pass over the given periods. Period failures are
// contained in the report; Run itself fails only when nothing could even
// start (bulk-load mode, unresolved-log write).
func (p *Pipeline) Run(ctx context.Context, periods map[int]string) (*RunReport, error) {
	report := &RunReport{RunID: p.runID}
	if len(periods) == 0 {
		return report, nil
	}

	if err := p.store.BeginBulkLoad(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := p.store.EndBulkLoad(context.Background()); err != nil {
			p.logger.Warn("restoring store durability failed", slog.String("error", err.Error()))
		}
	}()

	years := make([]int, 0, len(periods))
	for year := range periods {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	var (
		mu      sync.Mutex
		results []PeriodResult
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.cfg.Ingestion.Workers)
	for _, year := range years {
		year, url := year, periods[year]
		group.Go(func() error {
			result := p.processPeriod(groupCtx, year, url)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	for _, res := range results {
		report.RowsWritten += res.RowsWritten
	}
	report.Periods = results

	unresolved := p.resolver.Unresolved()
	report.UnresolvedCount = len(unresolved)
	path, err := writeUnresolvedLog(p.cfg.Paths.LogsDir, p.runID, unresolved)
	if err != nil {
		return report, err
	}
	report.UnresolvedLogPath = path
	return report, nil
}

// processPeriod ingests one year's archive end to end. Every failure tier
// below period-fatal is contained here: a bad table costs that table, a bad
// member costs that member, and only an unobtainable or implausibly small
// archive abandons the period.
func (p *Pipeline) processPeriod(ctx context.Context, year int, url string) PeriodResult {
	result := PeriodResult{Year: year, URL: url}
	logger := p.logger.With(slog.String("run_id", p.runID), slog.Int("year", year))
	logger.Info("processing period", slog.String("url", url))

	client := fetch.NewClient(p.cfg.Ingestion.HTTPTimeout, p.limiter)
	dest := filepath.Join(p.cfg.Paths.RawDir, strconv.Itoa(year), fmt.Sprintf("handbook_%d.zip", year))
	if err := client.DownloadCached(ctx, url, dest, p.cfg.Ingestion.MinArchiveBytes); err != nil {
		result.Err = fmt.Errorf("obtain archive: %w", err)
		logger.Error("period abandoned", slog.String("error", result.Err.Error()))
		return result
	}

	// Annual-report PDFs are cached alongside the archive for manual
	// reference; they are never parsed, and a failure costs nothing.
	p.mu.Lock()
	reportURL := p.reports[year]
	p.mu.Unlock()
	if reportURL != "" {
		pdfDest := filepath.Join(p.cfg.Paths.RawDir, strconv.Itoa(year), fmt.Sprintf("annual_report_%d.pdf", year))
		if err := client.DownloadCached(ctx, reportURL, pdfDest, p.cfg.Ingestion.MinReportBytes); err != nil {
			logger.Warn("annual report not cached", slog.String("error", err.Error()))
		}
	}

	fail := func(f TableFailure) {
		result.TableFailures = append(result.TableFailures, f)
		logger.Warn("table failed",
			slog.String("member", f.Member),
			slog.String("sheet", f.Sheet),
			slog.String("reason", f.Reason))
	}
	sheets, err := walkArchive(dest, p.cfg.Ingestion.MinMemberBytes, fail)
	if err != nil {
		result.Err = err
		logger.Error("period abandoned", slog.String("error", err.Error()))
		return result
	}

	var observations []domain.Observation
	for _, sh := range sheets {
		table, ok := tabular.FromRows(sh.Rows, p.dict.NameCandidates)
		if !ok {
			result.TablesSkipped++
			logger.Debug("no insurer-name column, sheet skipped",
				slog.String("member", sh.Member), slog.String("sheet", sh.Name))
			continue
		}
		parsed := tabular.ParseTable(table, p.dict, p.resolver, year, p.cfg.Ingestion.SourceTag)
		result.TablesParsed++
		if parsed.Empty() {
			continue
		}
		observations = append(observations, parsed.Observations...)
		logger.Debug("sheet parsed",
			slog.String("member", sh.Member),
			slog.String("sheet", sh.Name),
			slog.Int("observations", len(parsed.Observations)),
			slog.Int("unresolved_rows", parsed.UnresolvedRows),
			slog.Any("metrics", observationCount(parsed.Observations)))
	}

	records := Merge(observations)
	written, err := p.store.UpsertAll(ctx, records)
	result.RowsWritten = written
	if err != nil {
		result.Err = fmt.Errorf("persist records: %w", err)
		logger.Error("period abandoned", slog.String("error", result.Err.Error()))
		return result
	}
	logger.Info("period complete",
		slog.Int("rows_written", written),
		slog.Int("tables_parsed", result.TablesParsed))
	return result
}
