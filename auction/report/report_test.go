package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"auctionscan/auction/model"

	"github.com/xuri/excelize/v2"
)

func sampleResults() []model.DomainResult {
	return []model.DomainResult{
		{Domain: "a.com", Class: model.NoAuction},
		{Domain: "b.com", Class: model.StandardAuction, Bidders: "2", CurrentBid: "$45", CurrentBidInt: 45, IsReserveMet: model.ReserveNotMet},
		{Domain: "c.com", Class: model.StandardAuction, Bidders: "9", CurrentBid: "$250", CurrentBidInt: 250, IsReserveMet: model.ReserveMet},
		{Domain: "d.com", Class: model.StandardAuction, CurrentBid: "$10", CurrentBidInt: 10, ActiveAuction: true},
		{Domain: "e.com", Class: model.StandardAuction, CurrentBid: "$5", CurrentBidInt: 5, InventoryType: model.MemberListings},
		{Domain: "f.com", Class: model.RarePremium, Bidders: "1", CurrentBid: "$50", CurrentBidInt: 50},
		model.Degrade("g.com"),
	}
}

func TestPartition(t *testing.T) {
	rep := Partition(sampleResults(), 100)

	wantRemove := []string{"a.com", "b.com", "g.com"}
	if !reflect.DeepEqual(rep.Remove, wantRemove) {
		t.Errorf("Remove = %v, want %v", rep.Remove, wantRemove)
	}
	wantSkip := []string{"c.com", "d.com *", "e.com"}
	if !reflect.DeepEqual(rep.Skip, wantSkip) {
		t.Errorf("Skip = %v, want %v", rep.Skip, wantSkip)
	}
	if len(rep.Full) != 7 {
		t.Errorf("Expected 7 rows in full report, got %d", len(rep.Full))
	}
}

func TestPartition_MembershipRules(t *testing.T) {
	results := sampleResults()
	rep := Partition(results, 100)

	inRemove := make(map[string]bool)
	for _, d := range rep.Remove {
		inRemove[d] = true
	}
	for i := range results {
		r := &results[i]
		want := r.Source() == "0" || r.IsReserveMet == model.ReserveNotMet
		if inRemove[r.Domain] != want {
			t.Errorf("%s: in remove = %v, want %v", r.Domain, inRemove[r.Domain], want)
		}
		// skip 中的每一项至少满足一个条件
		if InSkip(r, 100) && !(r.ActiveAuction || r.CurrentBidInt >= 100 || r.InventoryType == model.MemberListings) {
			t.Errorf("%s: unexpected skip membership", r.Domain)
		}
	}
}

func TestPartition_Empty(t *testing.T) {
	rep := Partition(nil, 100)
	if rep.Remove == nil || rep.Skip == nil {
		t.Error("Expected non-nil empty partitions")
	}
	if len(rep.Remove) != 0 || len(rep.Skip) != 0 || len(rep.Full) != 0 {
		t.Errorf("Expected empty report, got %+v", rep)
	}
}

func fixedWriter(t *testing.T, opts WriterOptions) *Writer {
	t.Helper()
	if opts.Dir == "" {
		opts.Dir = t.TempDir()
	}
	w := NewWriter(opts)
	w.now = func() time.Time { return time.Date(2024, time.March, 7, 9, 5, 1, 0, time.UTC) }
	return w
}

func TestWriter_RemoveOnly(t *testing.T) {
	w := fixedWriter(t, WriterOptions{})
	written, err := w.Write(Partition(sampleResults(), 100))
	if err != nil {
		t.Fatalf("Write() returned an error: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("Expected 1 file, got %v", written)
	}
	// 年-日-月 格式
	if filepath.Base(written[0]) != "remove_20240703_090501.txt" {
		t.Errorf("Unexpected file name %s", filepath.Base(written[0]))
	}
	data, err := os.ReadFile(written[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a.com\nb.com\ng.com\n" {
		t.Errorf("Unexpected remove file content %q", data)
	}
}

func TestWriter_FullCSVAndSkip(t *testing.T) {
	w := fixedWriter(t, WriterOptions{FullReport: true, SkipFile: true})
	written, err := w.Write(Partition(sampleResults(), 100))
	if err != nil {
		t.Fatalf("Write() returned an error: %v", err)
	}
	if len(written) != 3 {
		t.Fatalf("Expected 3 files, got %v", written)
	}
	if filepath.Base(written[1]) != "full_report_20240703_090501.csv" {
		t.Errorf("Unexpected full report name %s", filepath.Base(written[1]))
	}

	file, err := os.Open(written[1])
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if len(rows) != 8 {
		t.Fatalf("Expected header plus 7 rows, got %d", len(rows))
	}
	if !reflect.DeepEqual(rows[0], Columns) {
		t.Errorf("Unexpected header %v", rows[0])
	}
	wantB := []string{"b.com", "G", "2", "$45", "", "false", "45", "", "false"}
	if !reflect.DeepEqual(rows[2], wantB) {
		t.Errorf("Row for b.com = %v, want %v", rows[2], wantB)
	}
	wantG := []string{"g.com", "0", "", "", "", "false", "0", "", ""}
	if !reflect.DeepEqual(rows[7], wantG) {
		t.Errorf("Row for g.com = %v, want %v", rows[7], wantG)
	}

	skip, err := os.ReadFile(written[2])
	if err != nil {
		t.Fatal(err)
	}
	if string(skip) != "c.com\nd.com *\ne.com\n" {
		t.Errorf("Unexpected skip file content %q", skip)
	}
}

func TestWriter_FullXLSX(t *testing.T) {
	w := fixedWriter(t, WriterOptions{FullReport: true, Format: "xlsx"})
	written, err := w.Write(Partition(sampleResults(), 100))
	if err != nil {
		t.Fatalf("Write() returned an error: %v", err)
	}
	if len(written) != 2 || filepath.Ext(written[1]) != ".xlsx" {
		t.Fatalf("Expected an xlsx report, got %v", written)
	}

	f, err := excelize.OpenFile(written[1])
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 8 {
		t.Fatalf("Expected 8 rows, got %d", len(rows))
	}
	if rows[0][0] != "Domain" || rows[3][0] != "c.com" || rows[3][3] != "$250" {
		t.Errorf("Unexpected workbook content: %v", rows[:4])
	}
}
