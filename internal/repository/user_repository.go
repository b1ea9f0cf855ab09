// Package repository provides data access to the clinic databases.
//
// Each repository borrows one of the four pools: reads go to the replica,
// writes to the main, and the login audit trail to the logging pair.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/apsx/clinic-api/internal/constants"
	"github.com/apsx/clinic-api/internal/database"
	"github.com/apsx/clinic-api/internal/models"
	"github.com/apsx/clinic-api/internal/utils"
)

// UserRepository defines methods for interacting with user data.
type UserRepository interface {
	GetForLogin(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListByShop(ctx context.Context, shopID int64, p utils.PaginationParams) ([]*models.SanitizedUser, int64, error)
	Update(ctx context.Context, user *models.User) error
	ChangePassword(ctx context.Context, id int64, digest string) error
	UpdateOTPURL(ctx context.Context, id int64, otpURL *string) error
	GetMemberships(ctx context.Context, userID int64) ([]*models.Membership, error)
}

// MySQLUserRepository is a MySQL implementation of UserRepository.
type MySQLUserRepository struct {
	write *database.Pool
	read  *database.Pool
}

// NewUserRepository creates a new UserRepository over the main pool and its
// read replica.
func NewUserRepository(write, read *database.Pool) UserRepository {
	return &MySQLUserRepository{
		write: write,
		read:  read,
	}
}

// GetForLogin retrieves a user by email for the login flow. Deactivated
// accounts are returned too; the caller checks the active flag only after a
// successful credential match so both failures share one response.
func (r *MySQLUserRepository) GetForLogin(ctx context.Context, email string) (*models.User, error) {
	startTime := time.Now()

	query := `
        SELECT id, user_email, user_password, user_fname, user_lname, user_tel,
               user_is_active, user_otp_url, password_version, created_at, updated_at
        FROM ` + constants.TableUsers + `
        WHERE user_email = ?
    `

	user := &models.User{}
	err := r.read.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.FirstName,
		&user.LastName,
		&user.Tel,
		&user.IsActive,
		&user.OTPURL,
		&user.PasswordVersion,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{email},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", email)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID from the read replica.
func (r *MySQLUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	startTime := time.Now()

	query := `
        SELECT id, user_email, user_password, user_fname, user_lname, user_tel,
               user_is_active, user_otp_url, password_version, created_at, updated_at
        FROM ` + constants.TableUsers + `
        WHERE id = ?
    `

	user := &models.User{}
	err := r.read.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.FirstName,
		&user.LastName,
		&user.Tel,
		&user.IsActive,
		&user.OTPURL,
		&user.PasswordVersion,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{id},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// ListByShop retrieves the users with an accepted membership in a shop,
// newest first, along with the total count.
func (r *MySQLUserRepository) ListByShop(ctx context.Context, shopID int64, p utils.PaginationParams) ([]*models.SanitizedUser, int64, error) {
	startTime := time.Now()

	countQuery := `
        SELECT COUNT(*)
        FROM ` + constants.TableUsers + ` u
        JOIN ` + constants.TableUserShops + ` us ON us.user_id = u.id
        WHERE us.shop_id = ? AND us.us_invite = ?
    `

	var total int64
	err := r.read.QueryRowContext(ctx, countQuery, shopID, models.InviteStateAccepted).Scan(&total)

	utils.LogDBQuery(
		countQuery,
		[]interface{}{shopID, models.InviteStateAccepted},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users in shop: %w", err)
	}

	startTime = time.Now()

	query := `
        SELECT u.id, u.user_email, u.user_fname, u.user_lname, u.user_tel,
               u.user_is_active, u.user_otp_url, u.created_at, u.updated_at
        FROM ` + constants.TableUsers + ` u
        JOIN ` + constants.TableUserShops + ` us ON us.user_id = u.id
        WHERE us.shop_id = ? AND us.us_invite = ?
        ORDER BY u.created_at DESC
        LIMIT ? OFFSET ?
    `

	rows, err := r.read.QueryContext(ctx, query, shopID, models.InviteStateAccepted, p.PageSize, p.Offset())

	utils.LogDBQuery(
		query,
		[]interface{}{shopID, models.InviteStateAccepted, p.PageSize, p.Offset()},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users in shop: %w", err)
	}
	defer rows.Close()

	users := make([]*models.SanitizedUser, 0, p.PageSize)
	for rows.Next() {
		var u models.SanitizedUser
		var otpURL *string
		if err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.FirstName,
			&u.LastName,
			&u.Tel,
			&u.IsActive,
			&otpURL,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user row: %w", err)
		}
		u.HasOTP = otpURL != nil && *otpURL != ""
		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, total, nil
}

// Update persists the mutable profile fields of a user.
func (r *MySQLUserRepository) Update(ctx context.Context, user *models.User) error {
	startTime := time.Now()

	user.UpdatedAt = time.Now()

	query := `
        UPDATE ` + constants.TableUsers + `
        SET user_fname = ?, user_lname = ?, user_tel = ?, updated_at = ?
        WHERE id = ?
    `

	result, err := r.write.ExecContext(
		ctx,
		query,
		user.FirstName,
		user.LastName,
		user.Tel,
		user.UpdatedAt,
		user.ID,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{user.FirstName, user.LastName, user.Tel, user.UpdatedAt, user.ID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == constants.MySQLErrDuplicateEntry {
			return utils.NewDuplicateError("User", "user_email", user.Email)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return utils.NewNotFoundError("User", user.ID)
	}

	return nil
}

// ChangePassword stores a new password digest and bumps password_version so
// that previously issued refresh tokens stop renewing.
func (r *MySQLUserRepository) ChangePassword(ctx context.Context, id int64, digest string) error {
	startTime := time.Now()

	query := `
        UPDATE ` + constants.TableUsers + `
        SET user_password = ?, password_version = password_version + 1, updated_at = ?
        WHERE id = ?
    `

	result, err := r.write.ExecContext(ctx, query, digest, time.Now(), id)

	utils.LogDBQuery(
		query,
		[]interface{}{constants.LogRedactedValue, time.Now(), id},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return utils.NewNotFoundError("User", id)
	}

	log.Info().
		Int64("user_id", id).
		Msg("User password changed")

	return nil
}

// UpdateOTPURL stores or clears a user's OTP enrollment URL.
func (r *MySQLUserRepository) UpdateOTPURL(ctx context.Context, id int64, otpURL *string) error {
	startTime := time.Now()

	query := `
        UPDATE ` + constants.TableUsers + `
        SET user_otp_url = ?, updated_at = ?
        WHERE id = ?
    `

	result, err := r.write.ExecContext(ctx, query, otpURL, time.Now(), id)

	utils.LogDBQuery(
		query,
		[]interface{}{constants.LogRedactedValue, time.Now(), id},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to update OTP URL: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return utils.NewNotFoundError("User", id)
	}

	return nil
}

// GetMemberships retrieves the shops a user has accepted an invite for,
// joined with the role and discount of each membership.
func (r *MySQLUserRepository) GetMemberships(ctx context.Context, userID int64) ([]*models.Membership, error) {
	startTime := time.Now()

	query := `
        SELECT s.id, s.shop_mother_id, s.shop_name, us.role_id,
               sr.id, sr.sr_name, sr.sr_discount_type_id, sr.sr_discount
        FROM ` + constants.TableUserShops + ` us
        JOIN ` + constants.TableShops + ` s ON s.id = us.shop_id
        JOIN ` + constants.TableShopRoles + ` sr ON sr.id = us.shop_role_id
        WHERE us.user_id = ? AND us.us_invite = ? AND s.shop_is_active = 1
        ORDER BY s.id
    `

	rows, err := r.read.QueryContext(ctx, query, userID, models.InviteStateAccepted)

	utils.LogDBQuery(
		query,
		[]interface{}{userID, models.InviteStateAccepted},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get user memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(
			&m.ShopID,
			&m.ShopMotherID,
			&m.ShopName,
			&m.RoleID,
			&m.ShopRoleID,
			&m.ShopRoleName,
			&m.DiscountTypeID,
			&m.Discount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		memberships = append(memberships, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate membership rows: %w", err)
	}

	return memberships, nil
}
