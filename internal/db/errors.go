package db

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/vbonduro/homeclean/internal/domain"
)

var (
	ErrUnknownCollection = errors.New("db: unknown collection")
	ErrUnknownIndex      = errors.New("db: unknown index")
	ErrOutOfScope        = errors.New("db: collection not in transaction scope")
	ErrReadOnly          = errors.New("db: write in read-only transaction")
	ErrInvalidKey        = errors.New("db: invalid key")
	ErrInvalidRecord     = errors.New("db: invalid record")
)

// translateError turns a SQLite constraint failure into a
// *domain.ConstraintError and returns any other error unchanged.
func translateError(collection string, err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) || se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return err
	}
	return &domain.ConstraintError{
		Collection: collection,
		Detail:     constraintDetail(se.Error()),
		Err:        err,
	}
}

// constraintDetail extracts "areaTypes.name" from messages such as
// "constraint failed: UNIQUE constraint failed: areaTypes.name (2067)".
func constraintDetail(msg string) string {
	const marker = "constraint failed: "
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	detail := msg[i+len(marker):]
	if j := strings.LastIndex(detail, " ("); j >= 0 {
		detail = detail[:j]
	}
	return strings.TrimSpace(detail)
}
