package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/KotFed0t/stock_analyser/data/repository"
	"github.com/KotFed0t/stock_analyser/internal/model/dbModel"
	"github.com/KotFed0t/stock_analyser/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *Postgres) CreateUser(ctx context.Context, username, passwordHash string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.CreateUser"
	query := `INSERT INTO users(username, password) VALUES($1, $2)`

	slog.Debug("CreateUser start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		if err != nil {
			slog.Error("CreateUser failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreateUser completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, username, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return repository.ErrAlreadyExists
			}
		}
		return err
	}

	return nil
}

func (r *Postgres) GetUser(ctx context.Context, username string) (user dbModel.User, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetUser"
	query := `SELECT username, password FROM users WHERE username = $1`

	slog.Debug("GetUser start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		if err != nil {
			slog.Error("GetUser failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetUser completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, username).StructScan(&user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbModel.User{}, repository.ErrNotFound
		}
		return dbModel.User{}, err
	}

	return user, nil
}
