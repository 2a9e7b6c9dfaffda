package portal

import (
	"context"
	"errors"
	"testing"
)

func newTestService(t *testing.T) (*Service, *InMemory) {
	t.Helper()
	store := NewInMemory()
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func TestCreateOrganizationValidation(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.CreateOrganization(context.Background(), "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	org, err := svc.CreateOrganization(context.Background(), "  Teatro Lirico  ")
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	if org.Name != "Teatro Lirico" {
		t.Fatalf("expected trimmed name, got %q", org.Name)
	}
	if org.ID == "" {
		t.Fatal("expected generated id")
	}

	if _, err := svc.CreateOrganization(context.Background(), "Teatro Lirico"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestOrderLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	org, err := svc.CreateOrganization(ctx, "Opera House")
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}

	if _, err := svc.CreateOrder(ctx, "missing-org", "REF-1", "Doublet", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown org, got %v", err)
	}
	if _, err := svc.CreateOrder(ctx, org.ID, "", "Doublet", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty reference, got %v", err)
	}

	order, err := svc.CreateOrder(ctx, org.ID, "REF-1", "Velvet doublet, act II", "rush job")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Stage != StageMeasuring {
		t.Fatalf("new order stage = %s, want %s", order.Stage, StageMeasuring)
	}

	want := []Stage{StageCutting, StageSewing, StageFitting, StageFinished}
	for _, stage := range want {
		order, err = svc.AdvanceOrderStage(ctx, order.ID)
		if err != nil {
			t.Fatalf("AdvanceOrderStage to %s: %v", stage, err)
		}
		if order.Stage != stage {
			t.Fatalf("stage = %s, want %s", order.Stage, stage)
		}
	}

	if _, err := svc.AdvanceOrderStage(ctx, order.ID); !errors.Is(err, ErrFinalStage) {
		t.Fatalf("expected ErrFinalStage, got %v", err)
	}

	orders, err := svc.ListOrdersByOrganization(ctx, org.ID)
	if err != nil {
		t.Fatalf("ListOrdersByOrganization: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected one order, got %d", len(orders))
	}
}

func TestDeleteOrganizationRemovesOrders(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	org, _ := svc.CreateOrganization(ctx, "Ballet West")
	order, err := svc.CreateOrder(ctx, org.ID, "REF-9", "Tutu, swan corps", "")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if err := svc.DeleteOrganization(ctx, org.ID); err != nil {
		t.Fatalf("DeleteOrganization: %v", err)
	}
	if _, err := store.GetOrder(ctx, order.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected order removed with tenant, got %v", err)
	}
	if err := svc.DeleteOrganization(ctx, org.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestNextStageUnknown(t *testing.T) {
	if _, err := NextStage(Stage("ironing")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !ValidStage(StageSewing) || ValidStage(Stage("ironing")) {
		t.Fatal("ValidStage misclassified")
	}
}
