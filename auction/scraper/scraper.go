package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"time"

	"auctionscan/auction/metrics"
	"auctionscan/auction/model"
	"auctionscan/auction/verifier"
	"auctionscan/internal/shared/logger"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

// Options 是 Scraper 的只读配置, 运行开始后不再修改。
type Options struct {
	ListingURL     string // 包含一个 %s, 替换为域名
	APIURL         string // 包含一个 %s, 替换为 listing ID
	DelayMin       time.Duration
	DelayMax       time.Duration
	RequestTimeout time.Duration
	Proxies        []string      // 为空时直连
	Headers        []http.Header // 为空时使用 HeaderProfiles
	Limiter        *rate.Limiter // nil 表示不限速

	// BannerGate 为 true 时, 出价低于 SkipThreshold 的拍卖会交给 BannerChecker 检查。
	BannerGate    bool
	SkipThreshold int64
}

// Scraper 查询单个域名的拍卖信息。并发安全: 所有任务只共享 retries 和只读的 Options。
type Scraper struct {
	opts    Options
	retries *RetryTracker
	checker verifier.BannerChecker
	metrics *metrics.Metrics
}

// New creates a Scraper. checker may be nil when the banner check is off.
func New(opts Options, retries *RetryTracker, checker verifier.BannerChecker, m *metrics.Metrics) *Scraper {
	if len(opts.Headers) == 0 {
		opts.Headers = HeaderProfiles
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if checker == nil {
		checker = verifier.Noop{}
	}
	return &Scraper{
		opts:    opts,
		retries: retries,
		checker: checker,
		metrics: m,
	}
}

// Scrape 返回 domain 的结果。请求失败会计入重试预算并在同一任务内重试,
// 预算耗尽 (或 ctx 已取消) 时返回降级结果。不会返回错误。
func (s *Scraper) Scrape(ctx context.Context, domain string) model.DomainResult {
	l := logger.WithComponent("Scan/Scraper")

	for {
		if ctx.Err() != nil {
			l.Warn().Str("domain", domain).Msg("Run cancelled, returning degraded result.")
			s.metrics.ObserveDegraded()
			return model.Degrade(domain)
		}

		attempt, ok := s.retries.Acquire(domain)
		if !ok {
			l.Warn().Str("domain", domain).Int("attempts", attempt).Msg("Max no of retries reached, returning degraded result.")
			s.metrics.ObserveDegraded()
			return model.Degrade(domain)
		}
		if attempt > 1 {
			s.metrics.ObserveRetry()
		}

		result, err := s.scrapeOnce(ctx, domain, attempt)
		if err != nil {
			l.Warn().Err(err).Str("domain", domain).Int("attempt", attempt).Int("max_retries", s.retries.Max()).Msg("Listing request failed.")
			continue
		}

		s.verify(ctx, &result)
		s.metrics.ObserveDomain(result.Class.String())
		l.Info().
			Str("domain", domain).
			Str("class", result.Class.String()).
			Str("source", result.Source()).
			Str("bidders", result.Bidders).
			Str("current_bid", result.CurrentBid).
			Int64("current_bid_int", result.CurrentBidInt).
			Bool("active_auction", result.ActiveAuction).
			Str("inventory_type", result.InventoryType).
			Str("reserve_met", result.IsReserveMet.String()).
			Msg("Domain scanned.")
		return result
	}
}

// scrapeOnce 执行一次完整的尝试: 选择代理/请求头, 随机等待, 请求列表页并分类。
func (s *Scraper) scrapeOnce(ctx context.Context, domain string, attempt int) (model.DomainResult, error) {
	l := logger.WithComponent("Scan/Scraper")

	proxyURL := s.pickProxy()
	sess, err := s.newSession(proxyURL, s.pickHeaders())
	if err != nil {
		return model.DomainResult{}, err
	}

	delay := randomDelay(s.opts.DelayMin, s.opts.DelayMax)
	l.Debug().Str("domain", domain).Int("attempt", attempt).Str("proxy", redactProxy(proxyURL)).Dur("delay", delay).Msg("Waiting before request.")
	if err := sleepCtx(ctx, delay); err != nil {
		return model.DomainResult{}, err
	}

	listing, err := s.get(ctx, sess, fmt.Sprintf(s.opts.ListingURL, url.QueryEscape(domain)), "listing")
	if err != nil {
		return model.DomainResult{}, err
	}

	page, err := ParsePage(listing.Body)
	if err != nil {
		return model.DomainResult{}, err
	}

	result := model.DomainResult{Domain: domain, Class: page.Class}
	switch page.Class {
	case model.RarePremium:
		result.Bidders = page.Bidders
		result.SetBid(page.CurrentBid)
	case model.StandardAuction:
		s.fillFromAPI(ctx, sess, listing.URL, &result)
	}
	return result, nil
}

// fillFromAPI 请求 listing API 补全出价信息。这里的任何失败都只记录 debug 日志,
// 受影响的字段保持为空。
func (s *Scraper) fillFromAPI(ctx context.Context, sess *session, listingURL string, r *model.DomainResult) {
	l := logger.WithComponent("Scan/Scraper")

	id, ok := ListingID(listingURL)
	if !ok {
		l.Debug().Str("domain", r.Domain).Str("url", listingURL).Msg("No listing ID in response URL.")
		return
	}

	resp, err := s.get(ctx, sess, fmt.Sprintf(s.opts.APIURL, id), "api")
	if err != nil {
		l.Debug().Err(err).Str("domain", r.Domain).Str("listing_id", id).Msg("Listing API request failed.")
		return
	}

	api := ParseListingAPI(resp.Body)
	r.Bidders = api.Bidders
	r.SetBid(api.CurrentBid)
	r.InventoryType = api.InventoryType
	r.IsReserveMet = api.IsReserveMet
}

func (s *Scraper) verify(ctx context.Context, r *model.DomainResult) {
	if !s.opts.BannerGate || r.Source() != "G" || r.CurrentBidInt >= s.opts.SkipThreshold {
		return
	}
	r.ActiveAuction = s.checker.CheckLiveAuctionBanner(ctx, r.Domain)
	s.metrics.ObserveBannerCheck(r.ActiveAuction)
}

func (s *Scraper) get(ctx context.Context, sess *session, target, endpoint string) (*fetched, error) {
	if s.opts.Limiter != nil {
		if err := s.opts.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	resp, err := sess.get(target)
	s.metrics.ObserveRequest(endpoint, err)
	return resp, err
}

func (s *Scraper) pickProxy() string {
	if len(s.opts.Proxies) == 0 {
		return ""
	}
	return s.opts.Proxies[rand.IntN(len(s.opts.Proxies))]
}

func (s *Scraper) pickHeaders() http.Header {
	return s.opts.Headers[rand.IntN(len(s.opts.Headers))].Clone()
}

// session 是一次尝试使用的 colly collector, 列表页和 API 共用同一代理和请求头。
type session struct {
	collector *colly.Collector
	headers   http.Header
	last      *colly.Response
}

type fetched struct {
	URL  string // 重定向之后的最终地址
	Body []byte
}

func (s *Scraper) newSession(proxyURL string, headers http.Header) (*session, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   s.opts.RequestTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   s.opts.RequestTimeout / 2,
		IdleConnTimeout:       s.opts.RequestTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}

	c := colly.NewCollector(colly.AllowURLRevisit())
	c.WithTransport(transport)
	c.SetRequestTimeout(s.opts.RequestTimeout)

	sess := &session{collector: c, headers: headers}
	c.OnResponse(func(r *colly.Response) {
		sess.last = r
	})
	return sess, nil
}

// get 同步请求 target。非 2xx 状态码由 colly 作为错误返回。
func (sess *session) get(target string) (*fetched, error) {
	sess.last = nil
	if err := sess.collector.Request(http.MethodGet, target, nil, colly.NewContext(), sess.headers.Clone()); err != nil {
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	if sess.last == nil {
		return nil, errors.New("GET " + target + ": no response")
	}
	return &fetched{URL: sess.last.Request.URL.String(), Body: sess.last.Body}, nil
}

func randomDelay(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int64N(int64(hi-lo)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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

// redactProxy 去掉代理地址中的密码, 用于日志。
func redactProxy(proxyURL string) string {
	if proxyURL == "" {
		return "direct"
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		return "invalid"
	}
	return u.Redacted()
}
