package postgres

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/stock_analyser/utils"
)

func (r *Postgres) InsertWatchlistEntry(ctx context.Context, username, symbol string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertWatchlistEntry"
	query := `INSERT INTO watchlist(username, stock) VALUES($1, $2)`

	slog.Debug("InsertWatchlistEntry start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		if err != nil {
			slog.Error("InsertWatchlistEntry failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertWatchlistEntry completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, username, symbol)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) WatchlistContains(ctx context.Context, username, symbol string) (exists bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.WatchlistContains"
	query := `SELECT EXISTS(SELECT 1 FROM watchlist WHERE username = $1 AND stock = $2)`

	slog.Debug("WatchlistContains start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		if err != nil {
			slog.Error("WatchlistContains failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("WatchlistContains completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, username, symbol).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *Postgres) DeleteWatchlistEntry(ctx context.Context, username, symbol string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeleteWatchlistEntry"
	query := `DELETE FROM watchlist WHERE username = $1 AND stock = $2`

	slog.Debug("DeleteWatchlistEntry start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		if err != nil {
			slog.Error("DeleteWatchlistEntry failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteWatchlistEntry completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, username, symbol)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) GetWatchlist(ctx context.Context, username string) (symbols []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetWatchlist"
	query := `SELECT stock FROM watchlist WHERE username = $1 ORDER BY id`

	slog.Debug("GetWatchlist start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		if err != nil {
			slog.Error("GetWatchlist failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetWatchlist completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).SelectContext(ctx, &symbols, query, username)
	if err != nil {
		return nil, err
	}

	return symbols, nil
}
