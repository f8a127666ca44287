package scraper

import (
	"strings"
	"testing"

	"auctionscan/auction/model"
)

const noAuctionPage = `<html><head><title>Domain Auction | Buy &amp; Sell Distinctive Domains - GoDaddy</title></head><body></body></html>`

const rarePage = `<html><head><title>example.com</title></head><body>
<span id="spanDomainName"> example.com </span>
<div id="auction-listing-details"><div>Bids/Offers: 12</div><div>Time left: 2d</div></div>
<input type="text" class="form-control pull-right" value="Bid $1,250 or more">
</body></html>`

const rareBuyNowPage = `<html><body>
<span id="spanDomainName">example.com</span>
<div id="divBuyNowSection"> Buy Now $5,000 </div>
</body></html>`

const standardPage = `<html><head><title>example.com | GoDaddy Auctions</title></head><body></body></html>`

func TestParsePage_Branches(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		class   model.Classification
		bidders string
		bid     string
	}{
		{"no auction title", noAuctionPage, model.NoAuction, "", ""},
		{"rare page with bid", rarePage, model.RarePremium, "12", "$1,250"},
		{"rare page with buy now", rareBuyNowPage, model.NoAuction, "", ""},
		{"standard auction", standardPage, model.StandardAuction, "", ""},
		{"empty span falls through to title", `<html><head><title>x</title></head><body><span id="spanDomainName">  </span></body></html>`, model.StandardAuction, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := ParsePage([]byte(tt.body))
			if err != nil {
				t.Fatalf("ParsePage() returned an error: %v", err)
			}
			if page.Class != tt.class {
				t.Errorf("Expected class %v, got %v", tt.class, page.Class)
			}
			if page.Bidders != tt.bidders {
				t.Errorf("Expected bidders %q, got %q", tt.bidders, page.Bidders)
			}
			if page.CurrentBid != tt.bid {
				t.Errorf("Expected bid %q, got %q", tt.bid, page.CurrentBid)
			}
		})
	}
}

func TestParsePage_RareBidIntMatchesBid(t *testing.T) {
	page, err := ParsePage([]byte(rarePage))
	if err != nil {
		t.Fatalf("ParsePage() returned an error: %v", err)
	}
	var r model.DomainResult
	r.SetBid(page.CurrentBid)
	if r.CurrentBidInt != 1250 {
		t.Errorf("Expected CurrentBidInt 1250, got %d", r.CurrentBidInt)
	}
}

func TestListingID(t *testing.T) {
	tests := []struct {
		url  string
		id   string
		want bool
	}{
		{"https://auctions.godaddy.com/trpItemListing.aspx?miid=418236925", "418236925", true},
		{"https://www.godaddy.com/domain-auctions/example-com-418236925", "418236925", true},
		{"https://auctions.godaddy.com/trpItemListing.aspx?domain=example.com", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		id, ok := ListingID(tt.url)
		if ok != tt.want || id != tt.id {
			t.Errorf("ListingID(%q) = (%q, %v), want (%q, %v)", tt.url, id, ok, tt.id, tt.want)
		}
	}
}

func TestFormatAPIPrice_DigitTable(t *testing.T) {
	// N 位的价格显示前 N-6 位
	for n := 7; n <= 16; n++ {
		cost := "1" + strings.Repeat("2", n-1)
		want := "$" + cost[:n-6]
		got, err := FormatAPIPrice(cost)
		if err != nil {
			t.Fatalf("FormatAPIPrice(%q) returned an error: %v", cost, err)
		}
		if got != want {
			t.Errorf("FormatAPIPrice(%q) = %q, want %q", cost, got, want)
		}
	}
}

func TestFormatAPIPrice_Examples(t *testing.T) {
	tests := map[string]string{
		"1000000":    "$1",
		"12000000":   "$12",
		"123450000":  "$123",
		"1230000000": "$1230",
	}
	for cost, want := range tests {
		got, err := FormatAPIPrice(cost)
		if err != nil || got != want {
			t.Errorf("FormatAPIPrice(%q) = (%q, %v), want %q", cost, got, err, want)
		}
	}
}

func TestFormatAPIPrice_Rejects(t *testing.T) {
	for _, cost := range []string{"", "999999", "12345678901234567", "-1000000", "1000000.5", "1e9"} {
		if got, err := FormatAPIPrice(cost); err == nil {
			t.Errorf("FormatAPIPrice(%q) = %q, expected an error", cost, got)
		}
	}
}

func TestParseListingAPI(t *testing.T) {
	body := `{"biddersCount": 7, "currentPrice": [{"cost": 125000000}], "inventoryType": "MEMBER_LISTINGS", "isReserveMet": false}`
	api := ParseListingAPI([]byte(body))

	if api.Bidders != "7" {
		t.Errorf("Expected bidders '7', got %q", api.Bidders)
	}
	if api.CurrentBid != "$125" {
		t.Errorf("Expected bid '$125', got %q", api.CurrentBid)
	}
	if api.InventoryType != model.MemberListings {
		t.Errorf("Expected inventory type %q, got %q", model.MemberListings, api.InventoryType)
	}
	if api.IsReserveMet != model.ReserveNotMet {
		t.Errorf("Expected reserve not met, got %v", api.IsReserveMet)
	}
}

func TestParseListingAPI_FieldsAreIndependent(t *testing.T) {
	// currentPrice 格式错误不影响其他字段
	body := `{"biddersCount": "3", "currentPrice": "n/a", "isReserveMet": true}`
	api := ParseListingAPI([]byte(body))

	if api.Bidders != "3" {
		t.Errorf("Expected bidders '3', got %q", api.Bidders)
	}
	if api.CurrentBid != "" {
		t.Errorf("Expected empty bid, got %q", api.CurrentBid)
	}
	if api.InventoryType != "" {
		t.Errorf("Expected empty inventory type, got %q", api.InventoryType)
	}
	if api.IsReserveMet != model.ReserveMet {
		t.Errorf("Expected reserve met, got %v", api.IsReserveMet)
	}
}

func TestParseListingAPI_NotJSON(t *testing.T) {
	api := ParseListingAPI([]byte("<html>blocked</html>"))
	if api != (APIListing{}) {
		t.Errorf("Expected zero APIListing, got %+v", api)
	}
}
