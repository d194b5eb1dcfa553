package pgdb

import (
	"errors"
	"strings"

	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// mapError переводит ошибки pgx в доменные. notFound подставляется вместо pgx.ErrNoRows.
func mapError(err error, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return e.ErrCategoryNotFound
		case pgUniqueViolation:
			return e.ErrAlreadyExists
		}
	}

	return err
}

func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern строит шаблон ILIKE для поиска подстроки, экранируя спецсимволы.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
