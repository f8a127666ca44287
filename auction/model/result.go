package model

import (
	"strconv"
	"strings"
)

// Classification 是列表页面的分类结果。
type Classification int

const (
	// NoAuction: 没有拍卖, 或者是一口价 (buy it now) 页面
	NoAuction Classification = iota
	// RarePremium: 高价值域名的专用页面模板
	RarePremium
	// StandardAuction: 普通拍卖页面, 详情来自 JSON API
	StandardAuction
)

func (c Classification) String() string {
	switch c {
	case NoAuction:
		return "no_auction"
	case RarePremium:
		return "rare_premium"
	case StandardAuction:
		return "standard_auction"
	default:
		return "unknown"
	}
}

// Source 返回报告里使用的来源标记: "0" 表示没有拍卖, "G" 表示在该市场找到拍卖。
func (c Classification) Source() string {
	if c == NoAuction {
		return "0"
	}
	return "G"
}

// Reserve 是 isReserveMet 的三态值, API 没有返回时为 ReserveUnknown。
type Reserve int

const (
	ReserveUnknown Reserve = iota
	ReserveMet
	ReserveNotMet
)

// ReserveFromBool converts the API boolean.
func ReserveFromBool(met bool) Reserve {
	if met {
		return ReserveMet
	}
	return ReserveNotMet
}

// String renders the value the way the full report prints it.
func (r Reserve) String() string {
	switch r {
	case ReserveMet:
		return "true"
	case ReserveNotMet:
		return "false"
	default:
		return ""
	}
}

// MemberListings 是会员提交的 listing 的 inventoryType。
const MemberListings = "MEMBER_LISTINGS"

// DomainResult 是单个域名的查询结果。
// 抓取阶段生成后即固定, 浏览器验证只会设置 ActiveAuction。
type DomainResult struct {
	Domain        string         `json:"domain"`
	Class         Classification `json:"class"`
	Bidders       string         `json:"bidders"`
	CurrentBid    string         `json:"current_bid"`
	CurrentBidInt int64          `json:"current_bid_int"`
	Notes         string         `json:"notes"`
	ActiveAuction bool           `json:"active_auction"`
	InventoryType string         `json:"inventory_type"`
	IsReserveMet  Reserve        `json:"is_reserve_met"`

	// Degraded 表示重试次数耗尽, 结果没有经过任何请求。
	Degraded bool `json:"degraded"`
}

// Source is the "0"/"G" tag of the result's classification.
func (r *DomainResult) Source() string {
	return r.Class.Source()
}

// SetBid stores the displayed price and keeps CurrentBidInt in sync with it.
func (r *DomainResult) SetBid(bid string) {
	r.CurrentBid = bid
	r.CurrentBidInt = ParseBid(bid)
}

// Degrade returns the fully zeroed result for a domain whose budget is spent.
func Degrade(domain string) DomainResult {
	return DomainResult{Domain: domain, Class: NoAuction, Degraded: true}
}

// ParseBid 把 "$1,234" 这样的价格字符串转为整数, 无法解析时返回 0。
func ParseBid(bid string) int64 {
	s := strings.TrimSpace(bid)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
