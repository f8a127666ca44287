package types

import (
	"fmt"
	"strings"
	"time"
)

// CommonConf 包含文件路径相关的配置
type CommonConf struct {
	DomainsFile string `ini:"domains_file"`
	ProxiesFile string `ini:"proxies_file"`
	OutputDir   string `ini:"output_dir"`
	MetricsFile string `ini:"metrics_file"` // 为空时不写入指标文件
}

// ScanConf 控制抓取行为
type ScanConf struct {
	Threads           int           `ini:"threads"`
	DelayMin          float64       `ini:"delay_min"` // 秒
	DelayMax          float64       `ini:"delay_max"` // 秒
	MaxRetries        int           `ini:"max_retries"`
	RequestTimeout    time.Duration `ini:"request_timeout"`
	RequestsPerSecond float64       `ini:"requests_per_second"` // 0 = 不限速
	ListingURL        string        `ini:"listing_url"`         // 包含一个 %s, 替换为域名
	APIURL            string        `ini:"api_url"`             // 包含一个 %s, 替换为 listing ID
}

// ReportConf 控制输出文件
type ReportConf struct {
	FullReport       bool   `ini:"full_report"`
	FullReportFormat string `ini:"full_report_format"` // "csv" or "xlsx"
	SkipFile         bool   `ini:"skip_file"`
	SkipThreshold    int64  `ini:"skip_threshold"`
}

// BannerConf 控制浏览器二次验证
type BannerConf struct {
	Enabled     bool          `ini:"banner_check"`
	PageTimeout time.Duration `ini:"banner_page_timeout"`
	Settle      time.Duration `ini:"banner_settle"`
	NoSandbox   bool          `ini:"chrome_no_sandbox"`
	ChromePath  string        `ini:"chrome_path"` // 为空时自动查找
}

// ProxyConf 控制运行前的代理检查
type ProxyConf struct {
	Check            bool          `ini:"proxy_check"`
	CheckTarget      string        `ini:"proxy_check_target"`
	CheckTimeout     time.Duration `ini:"proxy_check_timeout"`
	CheckConcurrency int           `ini:"proxy_check_concurrency"`
}

// LogConf contains logging specific configuration
type LogConf struct {
	Level  string `ini:"level"`
	Format string `ini:"format"` // console or json
	File   string `ini:"file"`   // 可选, 以 JSON 追加写入
}

// Config 是统一配置结构体, 由 auctionscan.ini 映射而来。
type Config struct {
	CommonConf `ini:"common"`
	ScanConf   `ini:"scan"`
	ReportConf `ini:"report"`
	BannerConf `ini:"banner"`
	ProxyConf  `ini:"proxy"`
	LogConf    `ini:"log"`
}

const (
	DefaultListingURL = "https://auctions.godaddy.com/trpItemListing.aspx?domain=%s"
	DefaultAPIURL     = "https://www.godaddy.com/domain-auctions/api/listing/%s/"
)

// DefaultConfig returns the values used for every key missing from the ini file.
func DefaultConfig() *Config {
	return &Config{
		CommonConf: CommonConf{
			DomainsFile: "domains.txt",
			ProxiesFile: "proxies.txt",
			OutputDir:   ".",
		},
		ScanConf: ScanConf{
			Threads:        5,
			DelayMin:       1,
			DelayMax:       3,
			MaxRetries:     3,
			RequestTimeout: 30 * time.Second,
			ListingURL:     DefaultListingURL,
			APIURL:         DefaultAPIURL,
		},
		ReportConf: ReportConf{
			FullReport:       true,
			FullReportFormat: "csv",
			SkipFile:         true,
			SkipThreshold:    100,
		},
		BannerConf: BannerConf{
			Enabled:     true,
			PageTimeout: 5 * time.Second,
			Settle:      5 * time.Second,
		},
		ProxyConf: ProxyConf{
			CheckTarget:      "auctions.godaddy.com:443",
			CheckTimeout:     10 * time.Second,
			CheckConcurrency: 10,
		},
		LogConf: LogConf{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate rejects values the scanner cannot run with.
func (c *Config) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("threads must be >= 1, got %d", c.Threads)
	}
	if c.DelayMin < 0 {
		return fmt.Errorf("delay_min must be >= 0, got %v", c.DelayMin)
	}
	if c.DelayMax < c.DelayMin {
		return fmt.Errorf("delay_max (%v) must be >= delay_min (%v)", c.DelayMax, c.DelayMin)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be >= 1, got %d", c.MaxRetries)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be >= 0, got %v", c.RequestsPerSecond)
	}
	if strings.Count(c.ListingURL, "%s") != 1 {
		return fmt.Errorf("listing_url must contain exactly one %%s: %q", c.ListingURL)
	}
	if strings.Count(c.APIURL, "%s") != 1 {
		return fmt.Errorf("api_url must contain exactly one %%s: %q", c.APIURL)
	}
	switch c.FullReportFormat {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("unknown full_report_format %q (want csv or xlsx)", c.FullReportFormat)
	}
	if c.CheckConcurrency < 1 {
		return fmt.Errorf("proxy_check_concurrency must be >= 1, got %d", c.CheckConcurrency)
	}
	return nil
}

// BannerGate reports whether the browser check may run at all.
func (c *Config) BannerGate() bool {
	return c.SkipFile && c.BannerConf.Enabled
}

// Delay returns the configured delay range as durations.
func (c *Config) Delay() (time.Duration, time.Duration) {
	return time.Duration(c.DelayMin * float64(time.Second)), time.Duration(c.DelayMax * float64(time.Second))
}
