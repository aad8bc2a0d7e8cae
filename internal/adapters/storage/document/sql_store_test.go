package document

import (
	"context"
	"testing"
	"time"

	clientstore "lawoffice/internal/adapters/storage/client"
	casestore "lawoffice/internal/adapters/storage/legalcase"
	"lawoffice/internal/adapters/storage/storagetest"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/client"
	"lawoffice/internal/domain/dal"
	domain "lawoffice/internal/domain/document"
	"lawoffice/internal/domain/legalcase"
)

var now = time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*SQLStore, *casestore.SQLStore) {
	t.Helper()
	db := storagetest.Open(t)
	ctx := context.Background()
	if err := clientstore.NewSQLStore(db).Insert(ctx, client.Client{
		ID: "cl1", FirstName: "Marta", LastName: "Gil", Email: "marta@example.com",
		ClientType: client.TypeIndividual, Active: true, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("insert client: %v", err)
	}
	cases := casestore.NewSQLStore(db)
	if err := cases.Insert(ctx, legalcase.Case{
		ID: "k1", CaseNumber: "CASE-2024-0001", ClientID: "cl1", Title: "Herencia Gil",
		Description: "d", Status: legalcase.StatusActive, Priority: legalcase.PriorityLow,
		StartDate: now, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("insert case: %v", err)
	}
	return NewSQLStore(db), cases
}

func doc(id, caseID, mime string) domain.Document {
	return domain.Document{
		ID:         id,
		CaseID:     caseID,
		Filename:   id + ".pdf",
		FilePath:   "documents/" + id,
		FileSize:   2048,
		MimeType:   mime,
		Category:   domain.CategoryEvidence,
		UploadedAt: now,
	}
}

func TestSQLStore_ListCarriesContext(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	if err := store.Insert(ctx, doc("d1", "k1", "application/pdf")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	loose := doc("d2", "", "image/png")
	loose.ClientID = "cl1"
	if err := store.Insert(ctx, loose); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := store.List(ctx, dal.Query{OrderBy: "id"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].CaseTitle != "Herencia Gil" || got[0].ClientName != "Marta Gil" {
		t.Errorf("d1 context = %q / %q", got[0].CaseTitle, got[0].ClientName)
	}
	if got[1].CaseTitle != "" || got[1].ClientName != "Marta Gil" || got[1].CaseID != "" {
		t.Errorf("d2 context = %+v", got[1])
	}

	byCase, err := store.Count(ctx, dal.Query{}.Where(dal.Eq("case_id", "k1")))
	if err != nil || byCase != 1 {
		t.Errorf("Count by case = %d, %v", byCase, err)
	}
}

func TestSQLStore_DetachCase(t *testing.T) {
	store, cases := setup(t)
	ctx := context.Background()
	for _, id := range []string{"d1", "d2"} {
		if err := store.Insert(ctx, doc(id, "k1", "application/pdf")); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	n, err := store.DetachCase(ctx, "k1")
	if err != nil || n != 2 {
		t.Fatalf("DetachCase = %d, %v", n, err)
	}
	if err := cases.Delete(ctx, "k1"); err != nil {
		t.Fatalf("delete case: %v", err)
	}
	orphans, err := store.List(ctx, dal.Query{}.Where(dal.Eq("case_id", nil)))
	if err != nil || len(orphans) != 2 {
		t.Errorf("detached documents = %d, %v", len(orphans), err)
	}
}

func TestSQLStore_UpdateAndDelete(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()
	if err := store.Insert(ctx, doc("d1", "k1", "application/pdf")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Update(ctx, "d1", dal.Patch{"is_client_accessible": true, "category": domain.CategoryContract}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := store.GetByID(ctx, "d1")
	if !got.IsClientAccessible || got.Category != domain.CategoryContract {
		t.Errorf("got %+v", got)
	}
	if err := store.Update(ctx, "d1", dal.Patch{"file_path": "elsewhere"}); err == nil {
		t.Error("file_path should not be updatable")
	}
	if err := store.Delete(ctx, "d1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByID(ctx, "d1"); !apperror.IsNotFound(err) {
		t.Errorf("GetByID after delete = %v", err)
	}
}
