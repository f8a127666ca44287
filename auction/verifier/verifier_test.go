package verifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestHasAuctionBanner(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"banner present", `<div id="domainInfo"><p>This domain is listed on GoDaddy Auctions.</p></div>`, true},
		{"different text", `<div id="domainInfo"><p>Make an offer</p></div>`, false},
		{"text outside domainInfo", `<div id="other">GoDaddy Auctions</div>`, false},
		{"empty page", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasAuctionBanner(tt.html); got != tt.want {
				t.Errorf("HasAuctionBanner() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNoop(t *testing.T) {
	var c BannerChecker = Noop{}
	if c.CheckLiveAuctionBanner(context.Background(), "a.com") {
		t.Error("Noop should never report a banner")
	}
}

func TestRandomDuration(t *testing.T) {
	lo, hi := 100*time.Millisecond, 200*time.Millisecond
	for i := 0; i < 100; i++ {
		d := randomDuration(lo, hi)
		if d < lo || d >= hi {
			t.Fatalf("randomDuration() = %v, outside [%v, %v)", d, lo, hi)
		}
	}
	if d := randomDuration(hi, lo); d != hi {
		t.Errorf("Expected lo when range is empty, got %v", d)
	}
}

func TestSleepHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := sleep(ctx, time.Minute); err == nil {
		t.Error("Expected context error")
	}
	if time.Since(start) > time.Second {
		t.Error("sleep did not return on cancel")
	}
}

func TestBrowser_MissingChromeIsInactive(t *testing.T) {
	b := NewBrowser(Options{
		PageTimeout: time.Second,
		ExecPath:    filepath.Join(t.TempDir(), "no-such-chrome"),
	})
	defer b.Close()

	start := time.Now()
	if b.CheckLiveAuctionBanner(context.Background(), "127.0.0.1:1") {
		t.Error("Expected false when Chrome cannot be started")
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("Check took %v, expected an immediate failure", time.Since(start))
	}
}

func findChrome() string {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func TestBrowser_HangingPageTimesOut(t *testing.T) {
	chrome := findChrome()
	if chrome == "" {
		t.Skip("Chrome not installed")
	}

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	b := NewBrowser(Options{
		PageTimeout: 2 * time.Second,
		ExecPath:    chrome,
		NoSandbox:   true,
	})
	defer b.Close()

	start := time.Now()
	if b.CheckLiveAuctionBanner(context.Background(), srv.Listener.Addr().String()) {
		t.Error("Expected false for a page that never loads")
	}
	// 启动浏览器本身也需要时间
	if elapsed := time.Since(start); elapsed > 2*time.Second+20*time.Second {
		t.Errorf("Check took %v, expected it to stop near the page timeout", elapsed)
	}
}

func TestBrowser_CancelledContextIsInactive(t *testing.T) {
	b := NewBrowser(Options{DelayMin: time.Minute, DelayMax: 2 * time.Minute})
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if b.CheckLiveAuctionBanner(ctx, "a.com") {
		t.Error("Expected false for a cancelled context")
	}
}
