package orchestrators

import (
	"context"
	"errors"
	"testing"

	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/client"
	"lawoffice/internal/domain/legalcase"
)

func newClientDeps(clients *mockClientStore, cases *mockCaseStore) ClientDeps {
	return ClientDeps{ClientStore: clients, CaseStore: cases, GenerateID: fixedID, Now: fixedNow}
}

func TestExecuteSaveClient_Create(t *testing.T) {
	clients := newMockClientStore()
	draft := client.NewDraft()
	draft.FirstName = "Lucía"
	draft.Email = "lucia@example.com"

	c, err := ExecuteSaveClient(context.Background(), SaveClientInput{Draft: draft}, newClientDeps(clients, newMockCaseStore()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID != "test-id-001" || !c.Active || !c.CreatedAt.Equal(fixedTime) {
		t.Errorf("client = %+v", c)
	}
	if _, ok := clients.clients[c.ID]; !ok {
		t.Error("client not stored")
	}
}

func TestExecuteSaveClient_BusinessNeedsCompany(t *testing.T) {
	clients := newMockClientStore()
	draft := client.NewDraft()
	draft.FirstName = "Grupo"
	draft.Email = "grupo@example.com"
	draft.ClientType = client.TypeBusiness

	_, err := ExecuteSaveClient(context.Background(), SaveClientInput{Draft: draft}, newClientDeps(clients, newMockCaseStore()))
	if _, ok := apperror.FieldErrors(err)["company_name"]; !ok {
		t.Errorf("err = %v", err)
	}
	if clients.calls != 0 {
		t.Errorf("store called %d times", clients.calls)
	}
}

func TestExecuteToggleClientActive(t *testing.T) {
	clients := newMockClientStore(client.Client{ID: "c1", Active: true})
	c, err := ExecuteToggleClientActive(context.Background(), "c1", newClientDeps(clients, newMockCaseStore()))
	if err != nil {
		t.Fatal(err)
	}
	if c.Active || clients.clients["c1"].Active {
		t.Error("client still active")
	}
}

func TestExecuteDeleteClient(t *testing.T) {
	tests := []struct {
		name       string
		confirmed  bool
		cases      []legalcase.Case
		wantErr    func(error) bool
		wantExists bool
	}{
		{
			name:       "unconfirmed",
			wantErr:    func(err error) bool { return errors.Is(err, ErrConfirmationRequired) },
			wantExists: true,
		},
		{
			name:       "has cases",
			confirmed:  true,
			cases:      []legalcase.Case{{ID: "k1", ClientID: "c1"}},
			wantErr:    func(err error) bool { return apperror.FieldErrors(err)[""] == ErrClientHasCases },
			wantExists: true,
		},
		{
			name:      "no cases",
			confirmed: true,
			cases:     []legalcase.Case{{ID: "k2", ClientID: "other"}},
			wantErr:   func(err error) bool { return err == nil },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clients := newMockClientStore(client.Client{ID: "c1"})
			cases := newMockCaseStore(tt.cases...)
			err := ExecuteDeleteClient(context.Background(), DeleteInput{ID: "c1", Confirmed: tt.confirmed}, newClientDeps(clients, cases))
			if !tt.wantErr(err) {
				t.Errorf("unexpected err: %v", err)
			}
			if _, ok := clients.clients["c1"]; ok != tt.wantExists {
				t.Errorf("client exists = %v, want %v", ok, tt.wantExists)
			}
			if !tt.confirmed && (clients.calls != 0 || cases.calls != 0) {
				t.Error("store called without confirmation")
			}
		})
	}
}
