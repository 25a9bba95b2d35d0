package xslsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/stock_analyser/internal/model"
	"github.com/KotFed0t/stock_analyser/utils"
	"github.com/xuri/excelize/v2"
)

const (
	positionsSheet = "Positions"
	watchlistSheet = "Watchlist"
)

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

func (g *XSLSXGenerator) Generate(ctx context.Context, report model.ValuationReport) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillPositionsSheet(f, report); err != nil {
		slog.Error("got error while filling positions sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := g.fillWatchlistSheet(f, report); err != nil {
		slog.Error("got error while filling watchlist sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
}

func (g *XSLSXGenerator) fillPositionsSheet(f *excelize.File, report model.ValuationReport) error {
	if _, err := f.NewSheet(positionsSheet); err != nil {
		return err
	}

	if err := f.MergeCell(positionsSheet, "A1", "F1"); err != nil {
		return err
	}

	f.SetCellValue(positionsSheet, "A1", fmt.Sprintf("Portfolio of %s, generated %s", report.Username, report.GeneratedAt.Format("2006-01-02")))

	styleID, err := g.headerStyle(f, "#cfe2f3")
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(positionsSheet, "A1", "A1", styleID); err != nil {
		return fmt.Errorf("can't apply style: %w", err)
	}

	_ = f.SetCellStr(positionsSheet, "A2", "symbol")
	_ = f.SetCellStr(positionsSheet, "B2", "quantity")
	_ = f.SetCellStr(positionsSheet, "C2", "buy price")
	_ = f.SetCellStr(positionsSheet, "D2", "invested")
	_ = f.SetCellStr(positionsSheet, "E2", "current value")
	_ = f.SetCellStr(positionsSheet, "F2", "profit/loss")

	for i, position := range report.Valuation.Positions {
		row := i + 3
		_ = f.SetCellStr(positionsSheet, fmt.Sprintf("A%d", row), position.Symbol)
		_ = f.SetCellValue(positionsSheet, fmt.Sprintf("B%d", row), position.Quantity.InexactFloat64())
		_ = f.SetCellValue(positionsSheet, fmt.Sprintf("C%d", row), position.BuyPrice.InexactFloat64())
		_ = f.SetCellValue(positionsSheet, fmt.Sprintf("D%d", row), position.Invested.InexactFloat64())
		_ = f.SetCellValue(positionsSheet, fmt.Sprintf("E%d", row), position.CurrentValue.InexactFloat64())
		_ = f.SetCellValue(positionsSheet, fmt.Sprintf("F%d", row), position.ProfitLoss.InexactFloat64())
	}

	totalsRow := len(report.Valuation.Positions) + 3
	_ = f.SetCellStr(positionsSheet, fmt.Sprintf("A%d", totalsRow), "total")
	_ = f.SetCellValue(positionsSheet, fmt.Sprintf("D%d", totalsRow), report.Valuation.TotalInvested.InexactFloat64())
	_ = f.SetCellValue(positionsSheet, fmt.Sprintf("E%d", totalsRow), report.Valuation.TotalCurrent.InexactFloat64())
	_ = f.SetCellValue(positionsSheet, fmt.Sprintf("F%d", totalsRow), report.Valuation.TotalProfitLoss.InexactFloat64())

	if len(report.Valuation.Skipped) > 0 {
		row := totalsRow + 2
		_ = f.SetCellStr(positionsSheet, fmt.Sprintf("A%d", row), "no market price, excluded from totals:")
		for i, symbol := range report.Valuation.Skipped {
			_ = f.SetCellStr(positionsSheet, fmt.Sprintf("A%d", row+i+1), symbol)
		}
	}

	return nil
}

func (g *XSLSXGenerator) fillWatchlistSheet(f *excelize.File, report model.ValuationReport) error {
	if _, err := f.NewSheet(watchlistSheet); err != nil {
		return err
	}

	if err := f.MergeCell(watchlistSheet, "A1", "B1"); err != nil {
		return err
	}

	f.SetCellValue(watchlistSheet, "A1", "Watchlist")

	styleID, err := g.headerStyle(f, "#d9ead3")
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(watchlistSheet, "A1", "A1", styleID); err != nil {
		return fmt.Errorf("can't apply style: %w", err)
	}

	_ = f.SetCellStr(watchlistSheet, "A2", "symbol")
	_ = f.SetCellStr(watchlistSheet, "B2", "latest close")

	for i, item := range report.Watchlist {
		row := i + 3
		_ = f.SetCellStr(watchlistSheet, fmt.Sprintf("A%d", row), item.Symbol)
		if item.LatestClose != nil {
			_ = f.SetCellValue(watchlistSheet, fmt.Sprintf("B%d", row), item.LatestClose.InexactFloat64())
		} else {
			_ = f.SetCellStr(watchlistSheet, fmt.Sprintf("B%d", row), "n/a")
		}
	}

	return nil
}
