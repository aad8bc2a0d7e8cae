package orchestrators

import (
	"context"
	"errors"
	"testing"

	"lawoffice/internal/adapters/events"
	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/client"
	"lawoffice/internal/domain/document"
	"lawoffice/internal/domain/legalcase"
)

func newCaseDeps(cases *mockCaseStore, docs *mockDocumentStore, pub *mockPublisher) CaseDeps {
	clients := newMockClientStore(
		client.Client{ID: "active-1", Active: true},
		client.Client{ID: "inactive-1", Active: false},
	)
	return CaseDeps{
		CaseStore:     cases,
		ClientStore:   clients,
		DocumentStore: docs,
		Events:        pub,
		GenerateID:    fixedID,
		Now:           fixedNow,
	}
}

func validCaseDraft(clientID string) legalcase.Draft {
	d := legalcase.NewDraft(fixedTime, func(int) int { return 42 })
	d.ClientID = clientID
	d.Title = "Herencia"
	d.Description = "Reparto de bienes"
	return d
}

func TestExecuteSaveCase_Create(t *testing.T) {
	cases := newMockCaseStore()
	c, err := ExecuteSaveCase(context.Background(), SaveCaseInput{Draft: validCaseDraft("active-1")}, newCaseDeps(cases, newMockDocumentStore(), &mockPublisher{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.CaseNumber != "CASE-2026-0042" || c.Status != legalcase.StatusPending {
		t.Errorf("case = %+v", c)
	}
}

func TestExecuteSaveCase_InactiveClientRejected(t *testing.T) {
	cases := newMockCaseStore()
	_, err := ExecuteSaveCase(context.Background(), SaveCaseInput{Draft: validCaseDraft("inactive-1")}, newCaseDeps(cases, newMockDocumentStore(), nil))
	if _, ok := apperror.FieldErrors(err)["client_id"]; !ok {
		t.Errorf("err = %v", err)
	}
	if len(cases.cases) != 0 {
		t.Error("case stored")
	}
}

func TestExecuteSaveCase_EditKeepsDeactivatedOwner(t *testing.T) {
	existing := legalcase.Case{ID: "k1", CaseNumber: "CASE-2025-0001", ClientID: "inactive-1", Status: legalcase.StatusActive}
	cases := newMockCaseStore(existing)
	draft := validCaseDraft("inactive-1")
	draft.CaseNumber = existing.CaseNumber
	if _, err := ExecuteSaveCase(context.Background(), SaveCaseInput{ID: "k1", Draft: draft}, newCaseDeps(cases, newMockDocumentStore(), nil)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExecuteSaveCase_DuplicateNumber(t *testing.T) {
	cases := newMockCaseStore(legalcase.Case{ID: "k1", CaseNumber: "CASE-2026-0042"})
	_, err := ExecuteSaveCase(context.Background(), SaveCaseInput{Draft: validCaseDraft("active-1")}, newCaseDeps(cases, newMockDocumentStore(), nil))
	if _, ok := apperror.FieldErrors(err)["case_number"]; !ok {
		t.Errorf("err = %v", err)
	}
}

// TestExecuteUpdateCaseFields_AnyTransition checks closed can go back to
// active and that closing publishes an event once.
func TestExecuteUpdateCaseFields_AnyTransition(t *testing.T) {
	cases := newMockCaseStore(legalcase.Case{ID: "k1", CaseNumber: "CASE-1", Status: legalcase.StatusActive, Priority: legalcase.PriorityLow})
	pub := &mockPublisher{}
	deps := newCaseDeps(cases, newMockDocumentStore(), pub)
	ctx := context.Background()

	steps := []string{legalcase.StatusClosed, legalcase.StatusActive, legalcase.StatusOnHold, legalcase.StatusClosed}
	for _, s := range steps {
		if err := ExecuteUpdateCaseFields(ctx, UpdateCaseFieldsInput{ID: "k1", Status: s}, deps); err != nil {
			t.Fatalf("to %s: %v", s, err)
		}
		if got := cases.cases["k1"].Status; got != s {
			t.Fatalf("status = %s, want %s", got, s)
		}
	}
	if len(pub.published) != 2 || pub.published[0].Name != events.CaseClosed {
		t.Errorf("published = %+v", pub.published)
	}

	if err := ExecuteUpdateCaseFields(ctx, UpdateCaseFieldsInput{ID: "k1", Priority: legalcase.PriorityUrgent}, deps); err != nil {
		t.Fatal(err)
	}
	if cases.cases["k1"].Priority != legalcase.PriorityUrgent {
		t.Error("priority not updated")
	}
}

func TestExecuteUpdateCaseFields_InvalidValues(t *testing.T) {
	cases := newMockCaseStore(legalcase.Case{ID: "k1", Status: legalcase.StatusActive})
	err := ExecuteUpdateCaseFields(context.Background(), UpdateCaseFieldsInput{ID: "k1", Status: "archived", Priority: "whenever"}, newCaseDeps(cases, newMockDocumentStore(), nil))
	fields := apperror.FieldErrors(err)
	if fields["status"] == "" || fields["priority"] == "" {
		t.Errorf("fields = %v", fields)
	}
	if cases.cases["k1"].Status != legalcase.StatusActive {
		t.Error("status changed")
	}
}

func TestExecuteDeleteCase_DetachesDocuments(t *testing.T) {
	cases := newMockCaseStore(legalcase.Case{ID: "k1"})
	docs := newMockDocumentStore(
		document.Document{ID: "d1", CaseID: "k1"},
		document.Document{ID: "d2", CaseID: "k2"},
	)
	deps := newCaseDeps(cases, docs, nil)

	if err := ExecuteDeleteCase(context.Background(), DeleteInput{ID: "k1"}, deps); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("err = %v", err)
	}
	if docs.calls != 0 || cases.calls != 0 {
		t.Fatal("store called without confirmation")
	}

	if err := ExecuteDeleteCase(context.Background(), DeleteInput{ID: "k1", Confirmed: true}, deps); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := cases.cases["k1"]; ok {
		t.Error("case not deleted")
	}
	if d, ok := docs.docs["d1"]; !ok || d.CaseID != "" {
		t.Errorf("d1 = %+v, exists=%v", d, ok)
	}
	if docs.docs["d2"].CaseID != "k2" {
		t.Error("unrelated document detached")
	}
}
