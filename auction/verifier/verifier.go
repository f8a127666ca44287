package verifier

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"auctionscan/internal/shared/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// bannerText 出现在域名停放页 div#domainInfo 中时, 说明拍卖仍在推广。
const bannerText = "godaddy auctions"

// BannerChecker 检查域名自己的网站上是否还挂着拍卖横幅。
// 任何失败都返回 false, 不向调用方传播错误。
type BannerChecker interface {
	CheckLiveAuctionBanner(ctx context.Context, domain string) bool
}

// Noop never finds a banner.
type Noop struct{}

func (Noop) CheckLiveAuctionBanner(context.Context, string) bool { return false }

// Options 配置 Browser。
type Options struct {
	PageTimeout time.Duration // 页面加载超时
	Settle      time.Duration // 加载后固定等待, 让脚本渲染横幅
	DelayMin    time.Duration
	DelayMax    time.Duration
	UserAgents  []string
	NoSandbox   bool
	ExecPath    string // Chrome 可执行文件, 为空时由 chromedp 自动查找
}

// Browser 是基于 chromedp 的 BannerChecker。整个运行共享一个 allocator,
// 每次检查打开一个新的浏览器上下文。
type Browser struct {
	opts        Options
	allocCtx    context.Context
	allocCancel context.CancelFunc
	once        sync.Once
}

// NewBrowser creates the checker. Chrome is not started until the first check.
func NewBrowser(opts Options) *Browser {
	return &Browser{opts: opts}
}

func (b *Browser) allocator() context.Context {
	b.once.Do(func() {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("incognito", true),
			chromedp.Flag("ignore-certificate-errors", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-extensions", true),
			chromedp.Flag("no-first-run", true),
		)
		if b.opts.NoSandbox {
			opts = append(opts, chromedp.Flag("no-sandbox", true))
		}
		if b.opts.ExecPath != "" {
			opts = append(opts, chromedp.ExecPath(b.opts.ExecPath))
		}
		b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	})
	return b.allocCtx
}

// CheckLiveAuctionBanner loads http://<domain> and looks for the banner.
func (b *Browser) CheckLiveAuctionBanner(ctx context.Context, domain string) bool {
	l := logger.WithComponent("Scan/Verifier")

	if err := sleep(ctx, randomDuration(b.opts.DelayMin, b.opts.DelayMax)); err != nil {
		return false
	}

	browserCtx, cancel := chromedp.NewContext(b.allocator())
	defer cancel()
	// 外部取消时关闭该标签页
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	width := int64(1200 + rand.IntN(201) - 100)
	height := int64(800 + rand.IntN(201) - 100)

	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(width, height),
		chromedp.ActionFunc(func(c context.Context) error {
			if ua := b.userAgent(); ua != "" {
				return emulation.SetUserAgentOverride(ua).Do(c)
			}
			return nil
		}),
	)
	if err != nil {
		l.Debug().Err(err).Str("domain", domain).Msg("Failed to start browser context.")
		return false
	}

	navCtx, navCancel := context.WithTimeout(browserCtx, b.opts.PageTimeout)
	err = chromedp.Run(navCtx, chromedp.Navigate("http://"+domain))
	navCancel()
	if err != nil {
		l.Debug().Err(err).Str("domain", domain).Msg("Navigation failed or timed out.")
		return false
	}

	err = chromedp.Run(browserCtx,
		chromedp.Sleep(b.opts.Settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		l.Debug().Err(err).Str("domain", domain).Msg("Failed to read page source.")
		return false
	}

	active := HasAuctionBanner(html)
	l.Debug().Str("domain", domain).Bool("active_auction", active).Msg("Banner check finished.")
	return active
}

// Close stops Chrome if it was started.
func (b *Browser) Close() {
	if b.allocCancel != nil {
		b.allocCancel()
	}
}

func (b *Browser) userAgent() string {
	if len(b.opts.UserAgents) == 0 {
		return ""
	}
	return b.opts.UserAgents[rand.IntN(len(b.opts.UserAgents))]
}

// HasAuctionBanner reports whether the page's div#domainInfo mentions the
// marketplace's auctions.
func HasAuctionBanner(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	info := doc.Find("div#domainInfo").First()
	if info.Length() == 0 {
		return false
	}
	return strings.Contains(strings.ToLower(info.Text()), bannerText)
}

func randomDuration(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int64N(int64(hi-lo)))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
