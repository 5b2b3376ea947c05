package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/typeshape/typeshape/internal/errs"
)

// mapError translates go-sql-driver native errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		kind := errs.ErrKindQueryFailed
		switch myErr.Number {
		case 1044, 1045, 1142: // access denied
			kind = errs.ErrKindPermissionDenied
		case 1040, 1053, 2002, 2003, 2006: // server gone / cannot connect
			kind = errs.ErrKindConnectionFailed
		}
		return errs.Wrap(kind, fmt.Sprintf("%s: %s", msg, myErr.Message), err)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
