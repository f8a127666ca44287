package scraper

import "sync"

// RetryTracker 记录本次运行中每个域名的尝试次数。只存在于内存, 不持久化。
type RetryTracker struct {
	mu     sync.Mutex
	counts map[string]int
	max    int
}

// NewRetryTracker creates a tracker allowing max attempts per domain.
func NewRetryTracker(max int) *RetryTracker {
	return &RetryTracker{
		counts: make(map[string]int),
		max:    max,
	}
}

// Acquire 在预算未耗尽时把计数加一并返回本次的尝试序号 (从 1 开始)。
// 预算已耗尽时返回 ok=false, 计数不变。
func (t *RetryTracker) Acquire(domain string) (attempt int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.counts[domain] >= t.max {
		return t.counts[domain], false
	}
	t.counts[domain]++
	return t.counts[domain], true
}

// Attempts returns how many attempts were made for domain so far.
func (t *RetryTracker) Attempts(domain string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[domain]
}

// Max is the per-domain attempt budget.
func (t *RetryTracker) Max() int {
	return t.max
}
