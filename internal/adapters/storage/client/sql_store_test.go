package client

import (
	"context"
	"testing"
	"time"

	"lawoffice/internal/adapters/storage/storagetest"
	"lawoffice/internal/domain/apperror"
	domain "lawoffice/internal/domain/client"
	"lawoffice/internal/domain/dal"
)

var created = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func sample(id string, active bool) domain.Client {
	return domain.Client{
		ID:          id,
		FirstName:   "Lucía",
		LastName:    "Pérez",
		Email:       id + "@example.com",
		ClientType:  domain.TypeIndividual,
		Country:     domain.DefaultCountry,
		DateOfBirth: time.Date(1985, 7, 9, 0, 0, 0, 0, time.UTC),
		Active:      active,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestSQLStore_RoundTrip(t *testing.T) {
	store := NewSQLStore(storagetest.Open(t))
	ctx := context.Background()

	c := sample("c1", true)
	c.CompanyName = ""
	c.Notes = "Preferencia por email"
	if err := store.Insert(ctx, c); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := store.GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FullName() != "Lucía Pérez" || got.Notes != c.Notes || !got.Active {
		t.Errorf("got %+v", got)
	}
	if !got.DateOfBirth.Equal(c.DateOfBirth) {
		t.Errorf("DateOfBirth = %v, want %v", got.DateOfBirth, c.DateOfBirth)
	}
	if got.CompanyName != "" || got.Phone != "" {
		t.Errorf("optional fields should round-trip empty: %+v", got)
	}
}

func TestSQLStore_ToggleAndCount(t *testing.T) {
	store := NewSQLStore(storagetest.Open(t))
	ctx := context.Background()

	for _, c := range []domain.Client{sample("c1", true), sample("c2", true), sample("c3", false)} {
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if err := store.Update(ctx, "c1", dal.Patch{"active": false}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	active, err := store.List(ctx, dal.Query{}.Where(dal.Eq("active", true)))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(active) != 1 || active[0].ID != "c2" {
		t.Errorf("active = %+v", active)
	}
	total, err := store.Count(ctx, dal.Query{})
	if err != nil || total != 3 {
		t.Errorf("Count = %d, %v", total, err)
	}
}

func TestSQLStore_SaveAndDelete(t *testing.T) {
	store := NewSQLStore(storagetest.Open(t))
	ctx := context.Background()

	c := sample("c1", true)
	if err := store.Insert(ctx, c); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	c.ClientType = domain.TypeBusiness
	c.CompanyName = "Pérez SL"
	c.DateOfBirth = time.Time{}
	c.UpdatedAt = created.Add(time.Hour)
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ := store.GetByID(ctx, "c1")
	if !got.IsBusiness() || got.CompanyName != "Pérez SL" || !got.DateOfBirth.IsZero() {
		t.Errorf("after save: %+v", got)
	}

	if err := store.Delete(ctx, "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "c1"); !apperror.IsNotFound(err) {
		t.Errorf("second Delete = %v", err)
	}
}
