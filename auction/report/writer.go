package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"auctionscan/auction/model"
	"auctionscan/internal/shared/logger"

	"github.com/xuri/excelize/v2"
)

// timestampLayout 是 年-日-月_时分秒, 与历史输出文件名保持一致。
const timestampLayout = "20060201_150405"

const sheetName = "Sheet1"

// Columns 是完整报告的列顺序。
var Columns = []string{
	"Domain", "Source", "Bidders", "Current_Bid", "Notes",
	"Active_Auction", "Current_Bid_Int", "Inventory_Type", "Is_Reserve_Met",
}

// WriterOptions 控制写出哪些文件。
type WriterOptions struct {
	Dir        string
	FullReport bool
	Format     string // "csv" or "xlsx"
	SkipFile   bool
}

// Writer writes the partitions of a Report to timestamped files.
type Writer struct {
	opts WriterOptions
	now  func() time.Time
}

func NewWriter(opts WriterOptions) *Writer {
	if opts.Format == "" {
		opts.Format = "csv"
	}
	return &Writer{opts: opts, now: time.Now}
}

// Write 写出 remove 文件, 以及按配置写出完整报告和 skip 文件。返回写出的文件路径。
func (w *Writer) Write(rep Report) ([]string, error) {
	l := logger.WithComponent("Scan/Report")

	if err := os.MkdirAll(w.opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", w.opts.Dir, err)
	}
	ts := w.now().Format(timestampLayout)
	var written []string

	removePath := filepath.Join(w.opts.Dir, fmt.Sprintf("remove_%s.txt", ts))
	if err := writeLines(removePath, rep.Remove); err != nil {
		return written, err
	}
	written = append(written, removePath)
	l.Info().Str("path", removePath).Int("count", len(rep.Remove)).Msg("Wrote remove list.")

	if w.opts.FullReport {
		fullPath := filepath.Join(w.opts.Dir, fmt.Sprintf("full_report_%s.%s", ts, w.opts.Format))
		var err error
		if w.opts.Format == "xlsx" {
			err = writeXLSX(fullPath, rep.Full)
		} else {
			err = writeCSV(fullPath, rep.Full)
		}
		if err != nil {
			return written, err
		}
		written = append(written, fullPath)
		l.Info().Str("path", fullPath).Int("count", len(rep.Full)).Msg("Wrote full report.")
	}

	if w.opts.SkipFile {
		skipPath := filepath.Join(w.opts.Dir, fmt.Sprintf("skip_report_%s.txt", ts))
		if err := writeLines(skipPath, rep.Skip); err != nil {
			return written, err
		}
		written = append(written, skipPath)
		l.Info().Str("path", skipPath).Int("count", len(rep.Skip)).Msg("Wrote skip list.")
	}

	return written, nil
}

// Row renders one result in Columns order.
func Row(r *model.DomainResult) []string {
	return []string{
		r.Domain,
		r.Source(),
		r.Bidders,
		r.CurrentBid,
		r.Notes,
		strconv.FormatBool(r.ActiveAuction),
		strconv.FormatInt(r.CurrentBidInt, 10),
		r.InventoryType,
		r.IsReserveMet.String(),
	}
}

func writeLines(path string, lines []string) error {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeCSV(path string, results []model.DomainResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for i := range results {
		if err := cw.Write(Row(&results[i])); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

func writeXLSX(path string, results []model.DomainResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := setRow(f, 1, Columns); err != nil {
		return err
	}
	for i := range results {
		if err := setRow(f, i+2, Row(&results[i])); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheetName, cell, &cells)
}
