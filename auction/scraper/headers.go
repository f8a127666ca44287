package scraper

import "net/http"

// HeaderProfiles 是轮换使用的浏览器请求头。每次请求前随机选一个, 使用前必须 Clone。
var HeaderProfiles = []http.Header{
	newHeader(
		"User-Agent", "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:86.0) Gecko/20100101 Firefox/86.0",
		"Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language", "en-US,en;q=0.5",
		"Connection", "keep-alive",
		"Upgrade-Insecure-Requests", "1",
		"Cache-Control", "max-age=0",
	),
	newHeader(
		"Sec-Ch-Ua", `"Google Chrome";v="89", "Chromium";v="89", ";Not A Brand";v="99"`,
		"Sec-Ch-Ua-Mobile", "?0",
		"Upgrade-Insecure-Requests", "1",
		"User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.82 Safari/537.36",
		"Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.9",
		"Sec-Fetch-Site", "none",
		"Sec-Fetch-Mode", "navigate",
		"Sec-Fetch-User", "?1",
		"Sec-Fetch-Dest", "document",
		"Accept-Language", "en-US,en;q=0.9",
	),
	// Accept-Encoding is left to the transport so gzip bodies are decoded.
	newHeader(
		"User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/75.0.3770.142 Safari/537.36",
		"Accept", "*/*",
		"Connection", "keep-alive",
	),
}

// UserAgents returns the User-Agent of every header profile.
func UserAgents() []string {
	agents := make([]string, 0, len(HeaderProfiles))
	for _, h := range HeaderProfiles {
		agents = append(agents, h.Get("User-Agent"))
	}
	return agents
}

func newHeader(kv ...string) http.Header {
	h := make(http.Header, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}
