package repository

import (
	"context"
	"fmt"
	"strings"

	"facture-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type AccountCreateInput struct {
	Email        string
	PasswordHash string
	FullName     string
	BusinessName *string
	TaxID        *string
}

type AccountProfileInput struct {
	FullName        *string
	BusinessName    *string
	BusinessAddress *string
	BusinessPhone   *string
	TaxID           *string
}

const accountColumns = `
	id,
	email,
	password_hash,
	full_name,
	business_name,
	business_address,
	business_phone,
	tax_id,
	created_at,
	updated_at
`

func scanAccountRow(row pgx.Row) (domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.FullName,
		&account.BusinessName,
		&account.BusinessAddress,
		&account.BusinessPhone,
		&account.TaxID,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (r *Repository) CreateAccount(ctx context.Context, input AccountCreateInput) (domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (email, password_hash, full_name, business_name, tax_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+accountColumns,
		strings.ToLower(strings.TrimSpace(input.Email)),
		input.PasswordHash,
		strings.TrimSpace(input.FullName),
		input.BusinessName,
		input.TaxID,
	)
	account, err := scanAccountRow(row)
	if err != nil {
		return domain.Account{}, fmt.Errorf("create account: %w", mapConflict(err))
	}
	return account, nil
}

func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE email = $1",
		strings.ToLower(strings.TrimSpace(email)),
	)
	account, err := scanAccountRow(row)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &account, nil
}

func (r *Repository) GetAccountByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
	account, err := scanAccountRow(row)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	return &account, nil
}

func (r *Repository) UpdateAccountProfile(ctx context.Context, id int64, input AccountProfileInput) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET
			full_name = COALESCE($2, full_name),
			business_name = COALESCE($3, business_name),
			business_address = COALESCE($4, business_address),
			business_phone = COALESCE($5, business_phone),
			tax_id = COALESCE($6, tax_id),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+accountColumns,
		id,
		input.FullName,
		input.BusinessName,
		input.BusinessAddress,
		input.BusinessPhone,
		input.TaxID,
	)
	account, err := scanAccountRow(row)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update account %d profile: %w", id, err)
	}
	return &account, nil
}
