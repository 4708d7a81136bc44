package repository

import (
	"context"
	"fmt"
	"strings"

	"facture-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type ClientInput struct {
	Name       string
	Email      *string
	Phone      *string
	Address    *string
	City       *string
	PostalCode *string
	Country    string
	TaxID      *string
	Notes      *string
}

type ClientListFilter struct {
	Search string
	Limit  int
	Offset int
}

const clientColumns = `
	id,
	account_id,
	name,
	email,
	phone,
	address,
	city,
	postal_code,
	country,
	tax_id,
	notes,
	created_at,
	updated_at
`

func scanClientRow(row pgx.Row) (domain.Client, error) {
	var client domain.Client
	if err := row.Scan(
		&client.ID,
		&client.AccountID,
		&client.Name,
		&client.Email,
		&client.Phone,
		&client.Address,
		&client.City,
		&client.PostalCode,
		&client.Country,
		&client.TaxID,
		&client.Notes,
		&client.CreatedAt,
		&client.UpdatedAt,
	); err != nil {
		return domain.Client{}, err
	}
	return client, nil
}

func (r *Repository) CreateClient(ctx context.Context, accountID int64, input ClientInput) (domain.Client, error) {
	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = "France"
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clients (account_id, name, email, phone, address, city, postal_code, country, tax_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+clientColumns,
		accountID,
		strings.TrimSpace(input.Name),
		input.Email,
		input.Phone,
		input.Address,
		input.City,
		input.PostalCode,
		country,
		input.TaxID,
		input.Notes,
	)
	client, err := scanClientRow(row)
	if err != nil {
		return domain.Client{}, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

func (r *Repository) GetClient(ctx context.Context, accountID, clientID int64) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = $1 AND account_id = $2",
		clientID, accountID,
	)
	client, err := scanClientRow(row)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client %d: %w", clientID, err)
	}
	return &client, nil
}

func (r *Repository) ListClients(ctx context.Context, accountID int64, filter ClientListFilter) ([]domain.Client, error) {
	limit := normalizeLimit(filter.Limit)
	offset := normalizeOffset(filter.Offset)
	search := strings.TrimSpace(filter.Search)

	rows, err := r.pool.Query(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE account_id = $1
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR COALESCE(email, '') ILIKE '%' || $2 || '%')
		ORDER BY name ASC
		LIMIT $3 OFFSET $4
	`, accountID, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]domain.Client, 0, limit)
	for rows.Next() {
		client, err := scanClientRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return clients, nil
}

func (r *Repository) UpdateClient(ctx context.Context, accountID, clientID int64, input ClientInput) (*domain.Client, error) {
	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = "France"
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE clients
		SET
			name = $3,
			email = $4,
			phone = $5,
			address = $6,
			city = $7,
			postal_code = $8,
			country = $9,
			tax_id = $10,
			notes = $11,
			updated_at = NOW()
		WHERE id = $1 AND account_id = $2
		RETURNING `+clientColumns,
		clientID,
		accountID,
		strings.TrimSpace(input.Name),
		input.Email,
		input.Phone,
		input.Address,
		input.City,
		input.PostalCode,
		country,
		input.TaxID,
		input.Notes,
	)
	client, err := scanClientRow(row)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update client %d: %w", clientID, err)
	}
	return &client, nil
}

func (r *Repository) DeleteClient(ctx context.Context, accountID, clientID int64) error {
	cmd, err := r.pool.Exec(ctx,
		"DELETE FROM clients WHERE id = $1 AND account_id = $2",
		clientID, accountID,
	)
	if err != nil {
		return fmt.Errorf("delete client %d: %w", clientID, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
