package legalcase_test

import (
	"regexp"
	"testing"
	"time"

	"lawoffice/internal/domain/apperror"
	"lawoffice/internal/domain/legalcase"
)

var caseNumberShape = regexp.MustCompile(`^CASE-\d{4}-\d{4}$`)

func TestGenerateCaseNumber(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		draw int
		want string
	}{
		{7, "CASE-2024-0007"},
		{0, "CASE-2024-0000"},
		{42, "CASE-2024-0042"},
		{9999, "CASE-2024-9999"},
	}
	for _, tt := range tests {
		got := legalcase.GenerateCaseNumber(now, func(int) int { return tt.draw })
		if got != tt.want {
			t.Errorf("draw %d: got %q, want %q", tt.draw, got, tt.want)
		}
		if !caseNumberShape.MatchString(got) {
			t.Errorf("%q does not match CASE-dddd-dddd", got)
		}
	}
}

func TestGenerateCaseNumber_Bound(t *testing.T) {
	var gotN int
	legalcase.GenerateCaseNumber(time.Now(), func(n int) int { gotN = n; return 0 })
	if gotN != 10000 {
		t.Errorf("expected draw bound 10000, got %d", gotN)
	}
}

func TestDraft_Validate(t *testing.T) {
	active := map[string]bool{"client-1": true}
	valid := func() legalcase.Draft {
		return legalcase.Draft{
			CaseNumber:  "CASE-2024-0001",
			ClientID:    "client-1",
			Title:       "Divorcio",
			Description: "Mutuo acuerdo",
			Status:      legalcase.StatusActive,
			Priority:    legalcase.PriorityHigh,
			StartDate:   "2024-02-01",
		}
	}
	tests := []struct {
		name      string
		mutate    func(d *legalcase.Draft)
		wantField string
	}{
		{"valid", func(d *legalcase.Draft) {}, ""},
		{"optional dates blank", func(d *legalcase.Draft) { d.EndDate = ""; d.NextHearing = "" }, ""},
		{"missing title", func(d *legalcase.Draft) { d.Title = " " }, "title"},
		{"missing case number", func(d *legalcase.Draft) { d.CaseNumber = "" }, "case_number"},
		{"missing description", func(d *legalcase.Draft) { d.Description = "" }, "description"},
		{"missing start date", func(d *legalcase.Draft) { d.StartDate = "" }, "start_date"},
		{"missing client", func(d *legalcase.Draft) { d.ClientID = "" }, "client_id"},
		{"inactive client", func(d *legalcase.Draft) { d.ClientID = "client-2" }, "client_id"},
		{"bad hearing date", func(d *legalcase.Draft) { d.NextHearing = "mañana" }, "next_hearing"},
		{"unknown status", func(d *legalcase.Draft) { d.Status = "archived" }, "status"},
		{"negative rate", func(d *legalcase.Draft) { d.BillingRate = "-3" }, "billing_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(&d)
			err := d.Validate(active)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if _, ok := apperror.FieldErrors(err)[tt.wantField]; !ok {
				t.Errorf("expected %s violation, got %v", tt.wantField, err)
			}
		})
	}
}

// Status changes are unrestricted: closed back to active is accepted.
func TestDraft_AnyStatusTransition(t *testing.T) {
	active := map[string]bool{"c": true}
	base := legalcase.Case{ID: "k1", Status: legalcase.StatusClosed}
	for _, to := range legalcase.ValidStatuses {
		d := legalcase.DraftFrom(base)
		d.CaseNumber, d.ClientID, d.Title, d.Description, d.StartDate = "CASE-2024-0001", "c", "t", "d", "2024-01-01"
		d.Priority = legalcase.PriorityLow
		d.Status = to
		got, err := d.Build(base, active, time.Now())
		if err != nil {
			t.Fatalf("closed -> %s rejected: %v", to, err)
		}
		if got.Status != to {
			t.Errorf("status = %s, want %s", got.Status, to)
		}
	}
}

func TestFilter(t *testing.T) {
	cases := []legalcase.WithClient{
		{Case: legalcase.Case{ID: "1", Title: "Despido improcedente", CaseNumber: "CASE-2024-0001", Status: "active", Priority: "high"}, ClientName: "Ana García"},
		{Case: legalcase.Case{ID: "2", Title: "Herencia", CaseNumber: "CASE-2024-0002", Status: "closed", Priority: "low"}, ClientName: "Luis Pérez"},
	}
	if got := legalcase.Filter(cases, "garcía", "", ""); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("client name search: %v", got)
	}
	if got := legalcase.Filter(cases, "", "closed", "all"); len(got) != 1 || got[0].ID != "2" {
		t.Errorf("status filter: %v", got)
	}
	if got := legalcase.Filter(cases, "0002", "all", "high"); len(got) != 0 {
		t.Errorf("combined filter: %v", got)
	}
}
