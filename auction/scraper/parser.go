package scraper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"auctionscan/auction/model"

	"github.com/PuerkitoBio/goquery"
)

// noAuctionTitle 是没有拍卖时通用列表页的 <title>。
const noAuctionTitle = "Domain Auction | Buy & Sell Distinctive Domains - GoDaddy"

const (
	minPriceDigits = 7
	maxPriceDigits = 16
	// API 价格的单位是百万分之一美元
	priceScaleDigits = 6
)

var listingIDRe = regexp.MustCompile(`([0-9]+)$`)

// Page 是列表页本身能给出的信息。StandardAuction 的出价数据需要再请求 API。
type Page struct {
	Class      model.Classification
	Bidders    string
	CurrentBid string
}

// ParsePage classifies a listing page.
func ParsePage(body []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse listing HTML: %w", err)
	}

	if strings.TrimSpace(doc.Find("span#spanDomainName").First().Text()) != "" {
		return parseRarePage(doc), nil
	}

	if strings.TrimSpace(doc.Find("title").First().Text()) == noAuctionTitle {
		return Page{Class: model.NoAuction}, nil
	}
	return Page{Class: model.StandardAuction}, nil
}

// parseRarePage 处理高价值域名模板: 有一口价区块则视为没有拍卖。
func parseRarePage(doc *goquery.Document) Page {
	if strings.TrimSpace(doc.Find("div#divBuyNowSection").First().Text()) != "" {
		return Page{Class: model.NoAuction}
	}

	p := Page{Class: model.RarePremium}
	doc.Find("div#auction-listing-details").Each(func(_ int, sel *goquery.Selection) {
		first := sel.Find("div").First()
		if first.Length() > 0 {
			p.Bidders = strings.TrimSpace(strings.ReplaceAll(first.Text(), "Bids/Offers: ", ""))
		}
	})

	if value, ok := doc.Find("input.form-control.pull-right").First().Attr("value"); ok {
		bid := strings.ReplaceAll(value, " or more", "")
		bid = strings.ReplaceAll(bid, "Bid ", "")
		p.CurrentBid = strings.TrimSpace(bid)
	}
	return p
}

// ListingID extracts the trailing numeric listing ID from a listing URL.
func ListingID(rawURL string) (string, bool) {
	m := listingIDRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// APIListing 是 listing API 中我们关心的字段, 缺失的字段保持零值。
type APIListing struct {
	Bidders       string
	CurrentBid    string
	InventoryType string
	IsReserveMet  model.Reserve
}

type apiPrice struct {
	Cost json.Number `json:"cost"`
}

// ParseListingAPI decodes the listing API body field by field, so one bad
// field never hides the others. A body that is not a JSON object yields the
// zero APIListing.
func ParseListingAPI(body []byte) APIListing {
	var out APIListing
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return out
	}

	if raw, ok := fields["biddersCount"]; ok {
		out.Bidders = rawScalar(raw)
	}

	if raw, ok := fields["currentPrice"]; ok {
		var prices []apiPrice
		if err := json.Unmarshal(raw, &prices); err == nil && len(prices) > 0 {
			if bid, err := FormatAPIPrice(prices[0].Cost.String()); err == nil {
				out.CurrentBid = bid
			}
		}
	}

	if raw, ok := fields["inventoryType"]; ok {
		var inv string
		if err := json.Unmarshal(raw, &inv); err == nil {
			out.InventoryType = inv
		}
	}

	if raw, ok := fields["isReserveMet"]; ok {
		var met bool
		if err := json.Unmarshal(raw, &met); err == nil {
			out.IsReserveMet = model.ReserveFromBool(met)
		}
	}
	return out
}

// rawScalar 把 JSON 数字或字符串转为字符串, 其他类型 (含 null) 返回空串。
func rawScalar(raw json.RawMessage) string {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// FormatAPIPrice converts the API cost (an integer in millionths of a dollar)
// into the displayed "$<dollars>" string. A cost of N digits shows its first
// N-6 digits; only 7 to 16 digit costs are accepted.
func FormatAPIPrice(cost string) (string, error) {
	if cost == "" {
		return "", fmt.Errorf("empty price")
	}
	for _, ch := range cost {
		if ch < '0' || ch > '9' {
			return "", fmt.Errorf("price %q is not a non-negative integer", cost)
		}
	}
	n := len(cost)
	if n < minPriceDigits || n > maxPriceDigits {
		return "", fmt.Errorf("price %q has %d digits, want %d to %d", cost, n, minPriceDigits, maxPriceDigits)
	}
	dollars, err := strconv.ParseInt(cost[:n-priceScaleDigits], 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid price %q: %w", cost, err)
	}
	return "$" + strconv.FormatInt(dollars, 10), nil
}
