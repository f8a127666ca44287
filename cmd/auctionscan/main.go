package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	manager "auctionscan/auction"
	"auctionscan/auction/input"
	"auctionscan/auction/metrics"
	"auctionscan/auction/report"
	"auctionscan/auction/scraper"
	"auctionscan/auction/validator"
	"auctionscan/auction/verifier"
	"auctionscan/internal/shared/config"
	"auctionscan/internal/shared/logger"

	"golang.org/x/time/rate"
)

func main() {
	iniPath := flag.String("config", "configs/auctionscan.ini", "Path to the ini config file")
	envFile := flag.String("env", ".env", "Optional .env file with AUCTIONSCAN_* overrides")
	domainsFile := flag.String("domains", "", "Domain list file (overrides domains_file)")
	proxiesFile := flag.String("proxies", "", "Proxy list file (overrides proxies_file)")
	outputDir := flag.String("out", "", "Output directory (overrides output_dir)")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*iniPath, *envFile)
	if err != nil {
		// Use standard fmt before logger is initialized.
		fmt.Fprintf(os.Stderr, "Fatal: Failed to load config file '%s': %v\n", *iniPath, err)
		os.Exit(1)
	}
	if *domainsFile != "" {
		cfg.DomainsFile = *domainsFile
	}
	if *proxiesFile != "" {
		cfg.ProxiesFile = *proxiesFile
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	// 1.1 初始化日志系统
	if err := logger.Init(cfg.LogConf); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Debug().
		Str("config", *iniPath).
		Int("threads", cfg.Threads).
		Int("max_retries", cfg.MaxRetries).
		Str("listing_url", cfg.ListingURL).
		Msg("Config loaded.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. 读取域名和代理列表
	domains, err := input.LoadDomains(cfg.DomainsFile)
	if err != nil {
		logger.Fatal().Err(err).Msgf("Failed to load domains file '%s'", cfg.DomainsFile)
	}
	proxies, err := input.LoadProxies(cfg.ProxiesFile)
	if err != nil {
		logger.Fatal().Err(err).Msgf("Failed to load proxies file '%s'", cfg.ProxiesFile)
	}

	if cfg.ProxyConf.Check && len(proxies) > 0 {
		v := validator.NewValidator(cfg.CheckTarget, cfg.CheckTimeout, cfg.CheckConcurrency)
		if alive := v.Filter(ctx, proxies); len(alive) > 0 {
			proxies = alive
		} else {
			logger.Warn().Int("count", len(proxies)).Msg("No proxy passed the check, keeping the full list.")
		}
	}

	// 3. 组装组件
	m := metrics.New()
	delayMin, delayMax := cfg.Delay()

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	var checker verifier.BannerChecker = verifier.Noop{}
	if cfg.BannerGate() {
		browser := verifier.NewBrowser(verifier.Options{
			PageTimeout: cfg.PageTimeout,
			Settle:      cfg.Settle,
			DelayMin:    delayMin,
			DelayMax:    delayMax,
			UserAgents:  scraper.UserAgents(),
			NoSandbox:   cfg.NoSandbox,
			ExecPath:    cfg.ChromePath,
		})
		defer browser.Close()
		checker = browser
	}

	s := scraper.New(scraper.Options{
		ListingURL:     cfg.ListingURL,
		APIURL:         cfg.APIURL,
		DelayMin:       delayMin,
		DelayMax:       delayMax,
		RequestTimeout: cfg.RequestTimeout,
		Proxies:        proxies,
		Limiter:        limiter,
		BannerGate:     cfg.BannerGate(),
		SkipThreshold:  cfg.SkipThreshold,
	}, scraper.NewRetryTracker(cfg.MaxRetries), checker, m)

	w := report.NewWriter(report.WriterOptions{
		Dir:        cfg.OutputDir,
		FullReport: cfg.FullReport,
		Format:     cfg.FullReportFormat,
		SkipFile:   cfg.SkipFile,
	})

	mgr := manager.NewManager(manager.Options{
		Threads:       cfg.Threads,
		SkipThreshold: cfg.SkipThreshold,
		MetricsFile:   cfg.MetricsFile,
	}, s, w, m)

	// 4. 运行
	_, written, err := mgr.Execute(ctx, domains)
	if err != nil {
		logger.Fatal().Err(err).Str("run_id", mgr.ID).Msg("Failed to write reports.")
	}
	for _, path := range written {
		logger.Info().Str("path", path).Msg("Report written.")
	}
}
