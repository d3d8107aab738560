package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPgErrorClassification(t *testing.T) {
	t.Parallel()

	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgUniqueViolation})
	badUUID := &pgconn.PgError{Code: pgInvalidTextForUUID}
	plain := errors.New("connection reset")

	if !isUniqueViolation(unique) || isUniqueViolation(badUUID) || isUniqueViolation(plain) {
		t.Fatalf("unique violation misclassified")
	}
	if !isInvalidUUID(badUUID) || isInvalidUUID(unique) || isInvalidUUID(plain) {
		t.Fatalf("invalid uuid misclassified")
	}
}
