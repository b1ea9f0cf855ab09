package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/apsx/clinic-api/internal/constants"
	"github.com/apsx/clinic-api/internal/database"
	"github.com/apsx/clinic-api/internal/models"
	"github.com/apsx/clinic-api/internal/utils"
)

// LoginLogRepository records and reads the authentication audit trail. The
// trail lives in the logging database, separate from the main cluster.
type LoginLogRepository interface {
	Insert(ctx context.Context, entry *models.LoginLog) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*models.LoginLog, error)
}

// MySQLLoginLogRepository is a MySQL implementation of LoginLogRepository.
type MySQLLoginLogRepository struct {
	write *database.Pool
	read  *database.Pool
}

// NewLoginLogRepository creates a new LoginLogRepository over the logging
// pool and its read replica.
func NewLoginLogRepository(write, read *database.Pool) LoginLogRepository {
	return &MySQLLoginLogRepository{
		write: write,
		read:  read,
	}
}

// Insert records one authentication event.
func (r *MySQLLoginLogRepository) Insert(ctx context.Context, entry *models.LoginLog) error {
	startTime := time.Now()

	entry.CreatedAt = time.Now()

	query := `
        INSERT INTO ` + constants.TableLoginLogs + ` (user_id, user_email, event, success, reason, remote_addr, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `

	result, err := r.write.ExecContext(
		ctx,
		query,
		entry.UserID,
		entry.Email,
		entry.Event,
		entry.Success,
		entry.Reason,
		entry.RemoteAddr,
		entry.CreatedAt,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{entry.UserID, entry.Email, entry.Event, entry.Success, entry.Reason, entry.RemoteAddr},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to insert login log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted login log ID: %w", err)
	}
	entry.ID = id

	return nil
}

// ListByUser retrieves the most recent authentication events of one user.
func (r *MySQLLoginLogRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.LoginLog, error) {
	startTime := time.Now()

	query := `
        SELECT id, user_id, user_email, event, success, reason, remote_addr, created_at
        FROM ` + constants.TableLoginLogs + `
        WHERE user_id = ?
        ORDER BY created_at DESC
        LIMIT ?
    `

	rows, err := r.read.QueryContext(ctx, query, userID, limit)

	utils.LogDBQuery(
		query,
		[]interface{}{userID, limit},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to list login logs: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.LoginLog, 0, limit)
	for rows.Next() {
		var e models.LoginLog
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Email,
			&e.Event,
			&e.Success,
			&e.Reason,
			&e.RemoteAddr,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan login log row: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate login log rows: %w", err)
	}

	return entries, nil
}
