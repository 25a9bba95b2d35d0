package postgres

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/stock_analyser/internal/converter/dbConverter"
	"github.com/KotFed0t/stock_analyser/internal/model"
	"github.com/KotFed0t/stock_analyser/internal/model/dbModel"
	"github.com/KotFed0t/stock_analyser/utils"
	"github.com/shopspring/decimal"
)

func (r *Postgres) InsertPortfolioLine(ctx context.Context, username, symbol string, quantity, buyPrice decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertPortfolioLine"
	query := `INSERT INTO portfolio(username, stock, quantity, buy_price) VALUES($1, $2, $3, $4)`

	slog.Debug("InsertPortfolioLine start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		if err != nil {
			slog.Error("InsertPortfolioLine failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertPortfolioLine completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, username, symbol, quantity, buyPrice)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) GetPortfolioLines(ctx context.Context, username string) (lines []model.PortfolioLine, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPortfolioLines"
	query := `
		SELECT username, stock, quantity, buy_price
		FROM portfolio
		WHERE username = $1
		ORDER BY id
		`

	slog.Debug("GetPortfolioLines start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolioLines failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolioLines completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, username)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var line dbModel.PortfolioLine
		err = rows.StructScan(&line)
		if err != nil {
			return nil, err
		}
		lines = append(lines, dbConverter.ConvertPortfolioLine(line))
	}

	return lines, nil
}

// GetTrackedSymbols returns every distinct symbol present in any watchlist or
// portfolio, used by the cache warming job.
func (r *Postgres) GetTrackedSymbols(ctx context.Context) (symbols []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetTrackedSymbols"
	query := `
		SELECT stock FROM watchlist
		UNION
		SELECT stock FROM portfolio
		`

	slog.Debug("GetTrackedSymbols start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		if err != nil {
			slog.Error("GetTrackedSymbols failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTrackedSymbols completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).SelectContext(ctx, &symbols, query)
	if err != nil {
		return nil, err
	}

	return symbols, nil
}
