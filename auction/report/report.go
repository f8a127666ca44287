package report

import (
	"auctionscan/auction/model"
)

// activeMarker 追加在 skip 列表中仍有拍卖横幅的域名后面。
const activeMarker = " *"

// Report 是一次运行的三个输出分区, 顺序与输入域名顺序一致。
type Report struct {
	Remove []string
	Skip   []string
	Full   []model.DomainResult
}

// Partition splits results into the remove, skip and full partitions.
func Partition(results []model.DomainResult, skipThreshold int64) Report {
	rep := Report{
		Remove: make([]string, 0),
		Skip:   make([]string, 0),
		Full:   results,
	}
	for i := range results {
		r := &results[i]
		if InRemove(r) {
			rep.Remove = append(rep.Remove, r.Domain)
		}
		if InSkip(r, skipThreshold) {
			rep.Skip = append(rep.Skip, SkipLabel(r))
		}
	}
	return rep
}

// InRemove: 没有拍卖, 或者明确未达到保留价。
func InRemove(r *model.DomainResult) bool {
	return r.Source() == "0" || r.IsReserveMet == model.ReserveNotMet
}

// InSkip: 横幅仍在, 出价达到阈值, 或者是会员 listing。
func InSkip(r *model.DomainResult, skipThreshold int64) bool {
	return r.ActiveAuction || r.CurrentBidInt >= skipThreshold || r.InventoryType == model.MemberListings
}

// SkipLabel is the skip-list line for r.
func SkipLabel(r *model.DomainResult) string {
	if r.ActiveAuction {
		return r.Domain + activeMarker
	}
	return r.Domain
}
