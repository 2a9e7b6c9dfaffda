package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"atelierhq.io/internal/portal"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

func (s *Store) CreateOrganization(ctx context.Context, org *portal.Organization) error {
	_, err := s.db.ExecContext(ctx, `
		insert into organizations (id, name, created_at)
		values ($1, $2, $3)
	`, org.ID, org.Name, org.CreatedAt)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
		return portal.ErrConflict
	}
	return err
}

func (s *Store) GetOrganization(ctx context.Context, id string) (portal.Organization, error) {
	var org portal.Organization
	err := s.db.QueryRowContext(ctx, `
		select id, name, created_at from organizations where id = $1
	`, id).Scan(&org.ID, &org.Name, &org.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return portal.Organization{}, portal.ErrNotFound
	}
	if err != nil {
		return portal.Organization{}, err
	}
	return org, nil
}

func (s *Store) ListOrganizations(ctx context.Context) ([]portal.Organization, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, created_at from organizations order by name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []portal.Organization
	for rows.Next() {
		var org portal.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, org)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteOrganization removes the tenant and everything owned by it. The
// audit_log table is deliberately left alone; its organization_id values
// become dangling soft references.
func (s *Store) DeleteOrganization(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`delete from invoices where organization_id = $1`,
		`delete from orders where organization_id = $1`,
		`delete from users where organization_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `delete from organizations where id = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return portal.ErrNotFound
	}
	return tx.Commit()
}

func (s *Store) CreateOrder(ctx context.Context, order *portal.Order) error {
	_, err := s.db.ExecContext(ctx, `
		insert into orders (id, organization_id, reference, costume, stage, notes, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, order.ID, order.OrganizationID, order.Reference, order.Costume,
		string(order.Stage), order.Notes, order.CreatedAt, order.UpdatedAt)
	if pgErr, ok := maybePgError(err); ok {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return portal.ErrConflict
		case pgErrForeignKeyViolation:
			return portal.ErrNotFound
		}
	}
	return err
}

func (s *Store) GetOrder(ctx context.Context, id string) (portal.Order, error) {
	var order portal.Order
	err := s.db.QueryRowContext(ctx, `
		select id, organization_id, reference, costume, stage, notes, created_at, updated_at
		from orders where id = $1
	`, id).Scan(&order.ID, &order.OrganizationID, &order.Reference, &order.Costume,
		&order.Stage, &order.Notes, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return portal.Order{}, portal.ErrNotFound
	}
	if err != nil {
		return portal.Order{}, err
	}
	return order, nil
}

func (s *Store) ListOrdersByOrganization(ctx context.Context, orgID string) ([]portal.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, organization_id, reference, costume, stage, notes, created_at, updated_at
		from orders
		where organization_id = $1
		order by created_at desc
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []portal.Order
	for rows.Next() {
		var order portal.Order
		if err := rows.Scan(&order.ID, &order.OrganizationID, &order.Reference,
			&order.Costume, &order.Stage, &order.Notes, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) UpdateOrderStage(ctx context.Context, id string, stage portal.Stage) (portal.Order, error) {
	var order portal.Order
	err := s.db.QueryRowContext(ctx, `
		update orders set stage = $2, updated_at = now()
		where id = $1
		returning id, organization_id, reference, costume, stage, notes, created_at, updated_at
	`, id, string(stage)).Scan(&order.ID, &order.OrganizationID, &order.Reference,
		&order.Costume, &order.Stage, &order.Notes, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return portal.Order{}, portal.ErrNotFound
	}
	if err != nil {
		return portal.Order{}, err
	}
	return order, nil
}

func (s *Store) ListInvoicesByOrganization(ctx context.Context, orgID string) ([]portal.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, organization_id, order_id, amount_cents, currency, issued_at
		from invoices
		where organization_id = $1
		order by issued_at desc
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []portal.Invoice
	for rows.Next() {
		var inv portal.Invoice
		if err := rows.Scan(&inv.ID, &inv.OrganizationID, &inv.OrderID,
			&inv.AmountCents, &inv.Currency, &inv.IssuedAt); err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateUser(ctx context.Context, user *portal.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users (id, organization_id, email, role, password_hash, created_at)
		values ($1, nullif($2,''), $3, $4, $5, $6)
	`, user.ID, user.OrganizationID, user.Email, user.Role, user.PasswordHash, user.CreatedAt)
	if pgErr, ok := maybePgError(err); ok {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return portal.ErrConflict
		case pgErrForeignKeyViolation:
			return portal.ErrNotFound
		}
	}
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (portal.User, error) {
	var user portal.User
	err := s.db.QueryRowContext(ctx, `
		select id, coalesce(organization_id,''), email, role, password_hash, created_at
		from users where email = $1
	`, email).Scan(&user.ID, &user.OrganizationID, &user.Email, &user.Role,
		&user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return portal.User{}, portal.ErrNotFound
	}
	if err != nil {
		return portal.User{}, err
	}
	return user, nil
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
