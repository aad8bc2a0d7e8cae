package legalcase

import (
	"context"
	"testing"
	"time"

	"lawoffice/internal/adapters/storage"
	clientstore "lawoffice/internal/adapters/storage/client"
	"lawoffice/internal/adapters/storage/storagetest"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/client"
	"lawoffice/internal/domain/dal"
	domain "lawoffice/internal/domain/legalcase"
)

var now = time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*SQLStore, storage.SQLDB) {
	t.Helper()
	db := storagetest.Open(t)
	clients := clientstore.NewSQLStore(db)
	for _, c := range []client.Client{
		{ID: "cl1", FirstName: "Ana", LastName: "Ruiz", Email: "ana@example.com", ClientType: client.TypeIndividual, Active: true, CreatedAt: now, UpdatedAt: now},
		{ID: "cl2", FirstName: "Grupo", Email: "grupo@example.com", ClientType: client.TypeBusiness, CompanyName: "Grupo SA", Active: true, CreatedAt: now, UpdatedAt: now},
	} {
		if err := clients.Insert(context.Background(), c); err != nil {
			t.Fatalf("insert client: %v", err)
		}
	}
	return NewSQLStore(db), db
}

func sample(id, clientID, status string, age time.Duration) domain.Case {
	return domain.Case{
		ID:          id,
		CaseNumber:  "CASE-2024-0" + id[len(id)-1:] + "00",
		ClientID:    clientID,
		Title:       "Caso " + id,
		Description: "Descripción",
		CaseType:    "civil",
		Status:      status,
		Priority:    domain.PriorityMedium,
		StartDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt:   now.Add(-age),
		UpdatedAt:   now.Add(-age),
	}
}

func TestSQLStore_InsertJoinsClientName(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	c := sample("k1", "cl1", domain.StatusActive, 0)
	c.NextHearing = time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	c.BillingRate = 120.5
	if err := store.Insert(ctx, c); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := store.GetByID(ctx, "k1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ClientName != "Ana Ruiz" {
		t.Errorf("ClientName = %q", got.ClientName)
	}
	if !got.StartDate.Equal(c.StartDate) || !got.NextHearing.Equal(c.NextHearing) || !got.EndDate.IsZero() {
		t.Errorf("dates = %v %v %v", got.StartDate, got.NextHearing, got.EndDate)
	}
	if got.BillingRate != 120.5 || got.TotalHours != 0 {
		t.Errorf("billing = %v hours = %v", got.BillingRate, got.TotalHours)
	}
}

func TestSQLStore_ClientNameWithoutLastName(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()
	if err := store.Insert(ctx, sample("k1", "cl2", domain.StatusActive, 0)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, _ := store.GetByID(ctx, "k1")
	if got.ClientName != "Grupo" {
		t.Errorf("ClientName = %q, want Grupo", got.ClientName)
	}
}

func TestSQLStore_ListByClientAndStatus(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()
	for _, c := range []domain.Case{
		sample("k1", "cl1", domain.StatusActive, 3*time.Hour),
		sample("k2", "cl1", domain.StatusClosed, 2*time.Hour),
		sample("k3", "cl2", domain.StatusActive, time.Hour),
	} {
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	byClient, err := store.List(ctx, dal.Query{}.Where(dal.Eq("client_id", "cl1")).Newest("created_at"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byClient) != 2 || byClient[0].ID != "k2" {
		t.Errorf("byClient = %+v", byClient)
	}

	active, err := store.Count(ctx, dal.Query{}.Where(dal.Eq("status", domain.StatusActive)))
	if err != nil || active != 2 {
		t.Errorf("Count active = %d, %v", active, err)
	}
}

func TestSQLStore_StatusPatch(t *testing.T) {
	store, _ := setup(t)
	later := now.Add(time.Hour)
	store.now = func() time.Time { return later }
	ctx := context.Background()

	if err := store.Insert(ctx, sample("k1", "cl1", domain.StatusActive, 0)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Update(ctx, "k1", dal.Patch{"status": domain.StatusOnHold}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := store.GetByID(ctx, "k1")
	if got.Status != domain.StatusOnHold || !got.UpdatedAt.Equal(later) {
		t.Errorf("got status=%q updated=%v", got.Status, got.UpdatedAt)
	}
}

func TestSQLStore_ClientWithCasesCannotBeDeleted(t *testing.T) {
	store, db := setup(t)
	ctx := context.Background()
	if err := store.Insert(ctx, sample("k1", "cl1", domain.StatusActive, 0)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := clientstore.NewSQLStore(db).Delete(ctx, "cl1"); err == nil {
		t.Fatal("expected restrict violation")
	}

	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete case: %v", err)
	}
	if err := clientstore.NewSQLStore(db).Delete(ctx, "cl1"); err != nil {
		t.Errorf("Delete client after cases removed: %v", err)
	}
	if _, err := store.GetByID(ctx, "k1"); !apperror.IsNotFound(err) {
		t.Errorf("GetByID deleted = %v", err)
	}
}

func TestSQLStore_UnknownClientRejected(t *testing.T) {
	store, _ := setup(t)
	err := store.Insert(context.Background(), sample("k1", "nobody", domain.StatusActive, 0))
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
	if apperror.IsConflict(err) {
		t.Errorf("foreign key violation is not a conflict: %v", err)
	}
}

func TestSQLStore_DuplicateCaseNumberIsConflict(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()
	if err := store.Insert(ctx, sample("k1", "cl1", domain.StatusActive, 0)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	dup := sample("x1", "cl2", domain.StatusPending, 0)
	if err := store.Insert(ctx, dup); !apperror.IsConflict(err) {
		t.Errorf("duplicate case number err = %v, want conflict", err)
	}
}
