package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"atelierhq.io/internal/audit"
	"atelierhq.io/internal/portal"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func TestAuditAppend(t *testing.T) {
	store, mock := newMockStore(t)

	rec := audit.Record{
		ID:            "rec-1",
		UserID:        "user-7",
		Role:          "Director",
		Resource:      "GET /v1/organizations/org-1/orders",
		AccessGranted: true,
		IPAddress:     "203.0.113.9",
		UserAgent:     "smoke/1.0",
		Details:       "orders.read GRANTED_ORG_MATCH",
		Timestamp:     time.Now().UTC(),
	}
	mock.ExpectExec("insert into audit_log").
		WithArgs(rec.ID, rec.UserID, rec.Role, rec.Resource, "", true,
			rec.IPAddress, rec.UserAgent, rec.Details, "", rec.Timestamp).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.Append(context.Background(), &rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditSearchBuildsFilters(t *testing.T) {
	store, mock := newMockStore(t)

	granted := false
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "role", "resource", "organization_id",
		"access_granted", "ip_address", "user_agent", "details", "session_id", "ts",
	}).AddRow("rec-2", "user-7", "Finance", "GET /v1/organizations/org-9/invoices",
		"org-9", false, "", "", "invoices.read ORG_MISMATCH", "", from)

	mock.ExpectQuery(`from audit_log where user_id = \$1 and organization_id = \$2 and ts >= \$3 and access_granted = \$4 order by ts desc limit \$5`).
		WithArgs("user-7", "org-9", from, false, 100).
		WillReturnRows(rows)

	got, err := store.Search(context.Background(), audit.Filter{
		UserID:         "user-7",
		OrganizationID: "org-9",
		From:           from,
		Granted:        &granted,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "rec-2" || got[0].OrganizationID != "org-9" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditSearchNoFilters(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`from audit_log order by ts desc limit \$1`).
		WithArgs(25).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "role", "resource", "organization_id",
			"access_granted", "ip_address", "user_agent", "details", "session_id", "ts",
		}))

	got, err := store.Search(context.Background(), audit.Filter{Limit: 25})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteOrganizationLeavesAuditLog(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("delete from invoices where organization_id").
		WithArgs("org-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("delete from orders where organization_id").
		WithArgs("org-1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("delete from users where organization_id").
		WithArgs("org-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("delete from organizations where id").
		WithArgs("org-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.DeleteOrganization(context.Background(), "org-1"); err != nil {
		t.Fatalf("DeleteOrganization: %v", err)
	}
	// No statement against audit_log was expected; a cascade there would
	// have tripped ExpectationsWereMet.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteOrganizationNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("delete from invoices").WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("delete from orders").WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("delete from users").WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("delete from organizations").WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := store.DeleteOrganization(context.Background(), "ghost"); !errors.Is(err, portal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateOrderStage(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery("update orders set stage").
		WithArgs("order-1", "sewing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "organization_id", "reference", "costume", "stage", "notes", "created_at", "updated_at",
		}).AddRow("order-1", "org-1", "REF-1", "Cape, act III", "sewing", "", now, now))

	order, err := store.UpdateOrderStage(context.Background(), "order-1", portal.StageSewing)
	if err != nil {
		t.Fatalf("UpdateOrderStage: %v", err)
	}
	if order.Stage != portal.StageSewing {
		t.Fatalf("stage = %s, want sewing", order.Stage)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
