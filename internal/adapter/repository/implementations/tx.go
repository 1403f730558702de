package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// execRequiredRows runs a mutation inside a transaction and treats zero
// affected rows as a posting failure, which rolls the transaction back.
func execRequiredRows(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("execute transaction statement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected: %w", err)
	}
	if rows == 0 {
		return 0, errors.New("ledger posting failed: record not found or insufficient balance")
	}
	return rows, nil
}
