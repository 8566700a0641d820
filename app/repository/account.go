package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-accounts/app/entity"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicateEmail is returned by Create when the unique constraint on the
// email column is violated.
var ErrDuplicateEmail = errors.New("email already registered")

const mysqlDuplicateEntry = 1062

const selectAccount = `
	SELECT id, email, display_name, password_hash, is_active, is_verified,
	       verification_token, reset_token, reset_token_expires_at, created_at, updated_at
	FROM accounts`

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	query := `
		INSERT INTO accounts (email, display_name, password_hash, is_active, is_verified, verification_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		account.Email,
		account.DisplayName,
		account.PasswordHash,
		account.IsActive,
		account.IsVerified,
		account.VerificationToken,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return ErrDuplicateEmail
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	account.ID = uint64(id)
	return nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.findOne(ctx, selectAccount+` WHERE email = ?`, email)
}

func (r *AccountRepository) FindByVerificationToken(ctx context.Context, token string) (*entity.Account, error) {
	return r.findOne(ctx, selectAccount+` WHERE verification_token = ?`, token)
}

func (r *AccountRepository) FindByResetToken(ctx context.Context, token string) (*entity.Account, error) {
	return r.findOne(ctx, selectAccount+` WHERE reset_token = ?`, token)
}

func (r *AccountRepository) findOne(ctx context.Context, query string, arg any) (*entity.Account, error) {
	account := &entity.Account{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID,
		&account.Email,
		&account.DisplayName,
		&account.PasswordHash,
		&account.IsActive,
		&account.IsVerified,
		&account.VerificationToken,
		&account.ResetToken,
		&account.ResetTokenExpiresAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) Update(ctx context.Context, account *entity.Account) error {
	query := `
		UPDATE accounts SET
			email = ?,
			display_name = ?,
			password_hash = ?,
			is_active = ?,
			is_verified = ?,
			verification_token = ?,
			reset_token = ?,
			reset_token_expires_at = ?,
			updated_at = ?
		WHERE id = ?
	`
	account.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		account.Email,
		account.DisplayName,
		account.PasswordHash,
		account.IsActive,
		account.IsVerified,
		account.VerificationToken,
		account.ResetToken,
		account.ResetTokenExpiresAt,
		account.UpdatedAt,
		account.ID,
	)
	return err
}

// ConsumeVerificationToken marks the account verified and clears its
// verification token, but only while the stored token still equals the one
// presented. Returns false when another request consumed it first.
func (r *AccountRepository) ConsumeVerificationToken(ctx context.Context, accountID uint64, verificationToken string) (bool, error) {
	query := `
		UPDATE accounts SET
			is_verified = 1,
			verification_token = NULL,
			updated_at = ?
		WHERE id = ? AND verification_token = ? AND is_verified = 0
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), accountID, verificationToken)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ConsumeResetToken replaces the password hash and clears the reset token and
// its expiry, guarded by the stored token still matching. Returns false when
// another request consumed the token first.
func (r *AccountRepository) ConsumeResetToken(ctx context.Context, accountID uint64, resetToken, passwordHash string) (bool, error) {
	query := `
		UPDATE accounts SET
			password_hash = ?,
			reset_token = NULL,
			reset_token_expires_at = NULL,
			updated_at = ?
		WHERE id = ? AND reset_token = ?
	`
	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now(), accountID, resetToken)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
