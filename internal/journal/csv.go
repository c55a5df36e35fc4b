package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"tradejournal/internal/domain"
)

// csvHeader is the column layout for trade interchange files.
var csvHeader = []string{
	"symbol", "direction", "quantity", "entry_price", "exit_price",
	"entry_time", "exit_time", "status", "net_pnl", "commission",
	"strategy", "market", "max_adverse_price", "max_favorable_price",
	"max_drawdown", "notes",
}

// ExportCSV writes all journaled trades to w in the interchange layout.
// Optional fields are left blank for open trades.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	trades, err := s.trades.FindAllTrades(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load trades for export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, t := range trades {
		record := []string{
			t.Symbol,
			string(t.Direction),
			formatFloat(t.Quantity),
			formatFloat(t.EntryPrice),
			closedFloat(t.ExitPrice, t.IsClosed()),
			t.EntryTime.Format(time.RFC3339),
			formatTime(t.ExitTime),
			string(t.Status),
			closedFloat(t.NetPnL, t.IsClosed()),
			formatFloat(t.Commission),
			t.Strategy,
			t.Market,
			optionalFloat(t.MaxAdversePrice),
			optionalFloat(t.MaxFavorablePrice),
			optionalFloat(t.MaxDrawdown),
			t.Notes,
		}
		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("failed to write trade %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return len(trades), nil
}

// ImportResult summarizes a CSV import run.
type ImportResult struct {
	ImportID string // Correlation id echoed in the import's log entries
	Imported int
	Skipped  int
}

// ImportCSV reads trades from r and stores them. Malformed rows are skipped
// with a warning rather than aborting the import, since exports from other
// tools are often partially populated.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	result := ImportResult{ImportID: uuid.NewString()}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // Validate per row, tolerate ragged input

	header, err := cr.Read()
	if err != nil {
		return result, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) < len(csvHeader) {
		return result, fmt.Errorf("unexpected CSV header with %d columns, want %d", len(header), len(csvHeader))
	}

	s.logger.Info(ctx, "CSV import started", map[string]interface{}{"importID": result.ImportID})

	line := 1
	for {
		line++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.logger.Warn(ctx, "Skipping unreadable CSV row", map[string]interface{}{
				"importID": result.ImportID, "line": line, "reason": err.Error(),
			})
			result.Skipped++
			continue
		}

		trade, err := parseTradeRecord(record)
		if err != nil {
			s.logger.Warn(ctx, "Skipping malformed CSV row", map[string]interface{}{
				"importID": result.ImportID, "line": line, "reason": err.Error(),
			})
			result.Skipped++
			continue
		}

		if _, err := s.trades.CreateTrade(ctx, trade); err != nil {
			return result, fmt.Errorf("failed to store imported trade (line %d): %w", line, err)
		}
		result.Imported++
	}

	s.logger.Info(ctx, "CSV import finished", map[string]interface{}{
		"importID": result.ImportID, "imported": result.Imported, "skipped": result.Skipped,
	})
	return result, nil
}

// parseTradeRecord converts one CSV row into a trade, in csvHeader order.
func parseTradeRecord(record []string) (*domain.Trade, error) {
	if len(record) < len(csvHeader) {
		return nil, fmt.Errorf("row has %d columns, want %d", len(record), len(csvHeader))
	}

	direction := domain.Direction(record[1])
	if !direction.IsValid() {
		return nil, fmt.Errorf("invalid direction '%s'", record[1])
	}

	quantity, err := strconv.ParseFloat(record[2], 64)
	if err != nil || quantity <= 0 {
		return nil, fmt.Errorf("invalid quantity '%s'", record[2])
	}
	entryPrice, err := strconv.ParseFloat(record[3], 64)
	if err != nil || entryPrice <= 0 {
		return nil, fmt.Errorf("invalid entry price '%s'", record[3])
	}
	entryTime, err := time.Parse(time.RFC3339, record[5])
	if err != nil {
		return nil, fmt.Errorf("invalid entry time '%s'", record[5])
	}
	if record[0] == "" {
		return nil, fmt.Errorf("missing symbol")
	}

	trade := &domain.Trade{
		Symbol:     record[0],
		Direction:  direction,
		Quantity:   quantity,
		EntryPrice: entryPrice,
		EntryTime:  entryTime,
		Status:     domain.StatusOpen,
		Strategy:   record[10],
		Market:     record[11],
		Notes:      record[15],
	}

	// A row is closed only when an exit price, exit time and P&L all parse;
	// anything less stays an open entry.
	if domain.TradeStatus(record[7]) == domain.StatusClosed {
		exitPrice, errPrice := strconv.ParseFloat(record[4], 64)
		exitTime, errTime := time.Parse(time.RFC3339, record[6])
		netPnl, errPnl := strconv.ParseFloat(record[8], 64)
		if errPrice != nil || errTime != nil || errPnl != nil {
			return nil, fmt.Errorf("closed row missing exit data")
		}
		trade.Status = domain.StatusClosed
		trade.ExitPrice = exitPrice
		trade.ExitTime = exitTime
		trade.NetPnL = netPnl
	}

	if commission, err := strconv.ParseFloat(record[9], 64); err == nil {
		trade.Commission = commission
	}
	trade.MaxAdversePrice = parseOptionalFloat(record[12])
	trade.MaxFavorablePrice = parseOptionalFloat(record[13])
	trade.MaxDrawdown = parseOptionalFloat(record[14])

	return trade, nil
}

func parseOptionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func closedFloat(v float64, closed bool) string {
	if !closed {
		return ""
	}
	return formatFloat(v)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
