package manager

import (
	"context"
	"time"

	"auctionscan/auction/metrics"
	"auctionscan/auction/model"
	"auctionscan/auction/report"
	"auctionscan/internal/shared/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DomainScraper 是 Manager 对单个域名查询的依赖。
type DomainScraper interface {
	Scrape(ctx context.Context, domain string) model.DomainResult
}

// Manager 是一次扫描运行的总控制器: 并发查询所有域名, 然后分区并写出报告。
type Manager struct {
	ID            string
	threads       int
	skipThreshold int64
	scraper       DomainScraper
	writer        *report.Writer
	metrics       *metrics.Metrics
	metricsFile   string
}

// Options 配置 Manager。
type Options struct {
	Threads       int
	SkipThreshold int64
	MetricsFile   string
}

// NewManager 创建管理器。writer 为 nil 时 Execute 只返回结果不写文件。
func NewManager(opts Options, s DomainScraper, w *report.Writer, m *metrics.Metrics) *Manager {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	return &Manager{
		ID:            uuid.NewString(),
		threads:       opts.Threads,
		skipThreshold: opts.SkipThreshold,
		scraper:       s,
		writer:        w,
		metrics:       m,
		metricsFile:   opts.MetricsFile,
	}
}

// Run 用有界的 worker 池查询所有域名。结果按输入顺序返回, 每个域名一个。
func (m *Manager) Run(ctx context.Context, domains []string) []model.DomainResult {
	l := logger.WithComponent("Scan/Manager").With().Str("run_id", m.ID).Logger()
	l.Info().Int("domains", len(domains)).Int("threads", m.threads).Msg("Scan starting...")

	results := make([]model.DomainResult, len(domains))
	var g errgroup.Group
	g.SetLimit(m.threads)

	for i, domain := range domains {
		g.Go(func() error {
			results[i] = m.scraper.Scrape(ctx, domain)
			return nil
		})
	}
	// 任务从不返回错误
	_ = g.Wait()

	l.Info().Int("domains", len(results)).Msg("Scan finished.")
	return results
}

// Execute runs the scan, writes the report files and the metrics textfile.
// Only output errors are returned; per-domain failures end up as degraded rows.
func (m *Manager) Execute(ctx context.Context, domains []string) (report.Report, []string, error) {
	l := logger.WithComponent("Scan/Manager").With().Str("run_id", m.ID).Logger()

	start := time.Now()
	results := m.Run(ctx, domains)
	rep := report.Partition(results, m.skipThreshold)
	m.metrics.SetRunDuration(time.Since(start))

	degraded := 0
	for i := range results {
		if results[i].Degraded {
			degraded++
		}
	}
	l.Info().
		Int("remove", len(rep.Remove)).
		Int("skip", len(rep.Skip)).
		Int("degraded", degraded).
		Dur("elapsed", time.Since(start)).
		Msg("Results partitioned.")

	var written []string
	if m.writer != nil {
		var err error
		written, err = m.writer.Write(rep)
		if err != nil {
			return rep, written, err
		}
	}

	if err := m.metrics.WriteTextfile(m.metricsFile); err != nil {
		l.Error().Err(err).Str("path", m.metricsFile).Msg("Failed to write metrics file.")
	}
	return rep, written, nil
}
