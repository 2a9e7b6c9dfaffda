package pg

import (
	"context"
	"fmt"
	"strings"

	"atelierhq.io/internal/audit"
)

// Append writes one audit row. Rows are insert-only; nothing in the service
// updates or deletes them, and organization_id is a soft reference with no
// foreign key.
func (s *Store) Append(ctx context.Context, rec *audit.Record) error {
	_, err := s.db.ExecContext(ctx, `
		insert into audit_log (id, user_id, role, resource, organization_id,
			access_granted, ip_address, user_agent, details, session_id, ts)
		values ($1, $2, $3, $4, nullif($5,''), $6, $7, $8, $9, nullif($10,''), $11)
	`, rec.ID, rec.UserID, rec.Role, rec.Resource, rec.OrganizationID,
		rec.AccessGranted, rec.IPAddress, rec.UserAgent, rec.Details,
		rec.SessionID, rec.Timestamp)
	return err
}

// Search returns matching audit rows, newest first.
func (s *Store) Search(ctx context.Context, f audit.Filter) ([]audit.Record, error) {
	var (
		where []string
		args  []any
		idx   = 1
	)
	if f.UserID != "" {
		where = append(where, fmt.Sprintf("user_id = $%d", idx))
		args = append(args, f.UserID)
		idx++
	}
	if f.OrganizationID != "" {
		where = append(where, fmt.Sprintf("organization_id = $%d", idx))
		args = append(args, f.OrganizationID)
		idx++
	}
	if !f.From.IsZero() {
		where = append(where, fmt.Sprintf("ts >= $%d", idx))
		args = append(args, f.From)
		idx++
	}
	if !f.To.IsZero() {
		where = append(where, fmt.Sprintf("ts <= $%d", idx))
		args = append(args, f.To)
		idx++
	}
	if f.Granted != nil {
		where = append(where, fmt.Sprintf("access_granted = $%d", idx))
		args = append(args, *f.Granted)
		idx++
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	args = append(args, limit)

	query := `
		select id, user_id, role, resource, coalesce(organization_id,''),
			access_granted, ip_address, user_agent, details, coalesce(session_id,''), ts
		from audit_log`
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	query += fmt.Sprintf(" order by ts desc limit $%d", idx)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []audit.Record
	for rows.Next() {
		var rec audit.Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Role, &rec.Resource,
			&rec.OrganizationID, &rec.AccessGranted, &rec.IPAddress,
			&rec.UserAgent, &rec.Details, &rec.SessionID, &rec.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
