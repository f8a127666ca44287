package validator

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"auctionscan/internal/shared/logger"

	"golang.org/x/net/proxy"
)

// Validator 在运行前检查代理是否可用。
type Validator struct {
	target      string // host:port, 需要 TLS
	timeout     time.Duration
	concurrency int
}

func NewValidator(target string, timeout time.Duration, concurrency int) *Validator {
	if concurrency <= 0 {
		concurrency = 5
	}
	return &Validator{
		target:      target,
		timeout:     timeout,
		concurrency: concurrency,
	}
}

// Filter 返回通过检查的代理, 保持输入顺序。
func (v *Validator) Filter(ctx context.Context, proxies []string) []string {
	l := logger.WithComponent("Scan/Validator")
	if len(proxies) == 0 {
		return proxies
	}

	l.Info().Int("count", len(proxies)).Int("concurrency", v.concurrency).Msg("Starting proxy check...")

	alive := make([]bool, len(proxies))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, v.concurrency)

	for i, p := range proxies {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(idx int, proxyURI string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			start := time.Now()
			if err := v.Check(ctx, proxyURI); err != nil {
				l.Warn().Err(err).Str("proxy", redact(proxyURI)).Msg("Proxy check failed.")
				return
			}
			alive[idx] = true
			l.Debug().Str("proxy", redact(proxyURI)).Dur("latency", time.Since(start)).Msg("Proxy check passed.")
		}(i, p)
	}
	wg.Wait()

	passed := make([]string, 0, len(proxies))
	for i, ok := range alive {
		if ok {
			passed = append(passed, proxies[i])
		}
	}

	l.Info().Int("passed", len(passed)).Int("failed", len(proxies)-len(passed)).Msg("Proxy check finished.")
	return passed
}

// Check validates one proxy URI according to its scheme.
func (v *Validator) Check(ctx context.Context, proxyURI string) error {
	u, err := url.Parse(proxyURI)
	if err != nil {
		return fmt.Errorf("invalid proxy URI: %w", err)
	}
	switch u.Scheme {
	case "socks5", "socks5h":
		return v.checkSocks5Connect(ctx, u)
	default:
		return v.checkHttpConnect(ctx, u)
	}
}

// checkHttpConnect 通过代理向目标发送 HEAD 请求 (目标为 https, 因此需要 CONNECT)。
func (v *Validator) checkHttpConnect(ctx context.Context, proxyURL *url.URL) error {
	dialer := &net.Dialer{
		Timeout:   v.timeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyURL(proxyURL),
		DialContext:           dialer.DialContext,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: true},
		IdleConnTimeout:       v.timeout,
		TLSHandshakeTimeout:   v.timeout / 2,
		ExpectContinueTimeout: 1 * time.Second,
		DisableKeepAlives:     true,
	}
	client := &http.Client{
		Transport: transport,
		Timeout:   v.timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, "https://"+v.target, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return fmt.Errorf("received non-successful status code: %d", resp.StatusCode)
	}
	return nil
}

// checkSocks5Connect 通过 SOCKS5 代理连接目标。
func (v *Validator) checkSocks5Connect(ctx context.Context, proxyURL *url.URL) error {
	var auth *proxy.Auth
	if proxyURL.User != nil {
		pass, _ := proxyURL.User.Password()
		auth = &proxy.Auth{User: proxyURL.User.Username(), Password: pass}
	}

	dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, &net.Dialer{Timeout: v.timeout})
	if err != nil {
		return fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	conn, err := dialer.(proxy.ContextDialer).DialContext(ctx, "tcp", v.target)
	if err != nil {
		return err
	}
	conn.Close()
	return nil
}

func redact(proxyURI string) string {
	u, err := url.Parse(proxyURI)
	if err != nil {
		return "invalid"
	}
	return u.Redacted()
}
