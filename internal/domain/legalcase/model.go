// Package legalcase models the practice's legal cases ("casos").
package legalcase

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"lawoffice/internal/domain/apperror"
)

// Status constants. Any status may be set to any other status.
const (
	StatusActive  = "active"
	StatusPending = "pending"
	StatusClosed  = "closed"
	StatusOnHold  = "on_hold"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusPending, StatusActive, StatusOnHold, StatusClosed}

// Priority constants
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ValidPriorities contains all valid priority values.
var ValidPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Types offered by the editor.
var Types = []string{"civil", "criminal", "family", "labor", "commercial"}

const dateLayout = "2006-01-02"

// Case is the persisted case row.
type Case struct {
	ID          string
	CaseNumber  string
	ClientID    string
	Title       string
	Description string
	CaseType    string
	Status      string
	Priority    string
	StartDate   time.Time
	EndDate     time.Time
	NextHearing time.Time
	BillingRate float64
	TotalHours  float64
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WithClient is a case joined with the owning client's display name.
type WithClient struct {
	Case
	ClientName string
}

// GenerateCaseNumber returns CASE-{year}-{NNNN} with a zero-padded random
// suffix. It is an editor default, not a uniqueness guarantee.
// PRE: intn returns a value in [0, n)
func GenerateCaseNumber(now time.Time, intn func(n int) int) string {
	return fmt.Sprintf("CASE-%04d-%04d", now.Year(), intn(10000))
}

// Draft is the editor form state for a case.
type Draft struct {
	CaseNumber  string
	ClientID    string
	Title       string
	Description string
	CaseType    string
	Status      string
	Priority    string
	StartDate   string
	EndDate     string
	NextHearing string
	BillingRate string
	TotalHours  string
	Notes       string
}

// NewDraft returns the defaults of an empty editor.
func NewDraft(now time.Time, intn func(n int) int) Draft {
	return Draft{
		CaseNumber: GenerateCaseNumber(now, intn),
		CaseType:   "civil",
		Status:     StatusPending,
		Priority:   PriorityMedium,
		StartDate:  now.Format(dateLayout),
	}
}

// DraftFrom copies a case into an editable draft.
func DraftFrom(c Case) Draft {
	d := Draft{
		CaseNumber:  c.CaseNumber,
		ClientID:    c.ClientID,
		Title:       c.Title,
		Description: c.Description,
		CaseType:    c.CaseType,
		Status:      c.Status,
		Priority:    c.Priority,
		StartDate:   formatDate(c.StartDate),
		EndDate:     formatDate(c.EndDate),
		NextHearing: formatDate(c.NextHearing),
		Notes:       c.Notes,
	}
	if c.BillingRate != 0 {
		d.BillingRate = strconv.FormatFloat(c.BillingRate, 'f', -1, 64)
	}
	if c.TotalHours != 0 {
		d.TotalHours = strconv.FormatFloat(c.TotalHours, 'f', -1, 64)
	}
	return d
}

// Validate reports field-scoped violations. activeClients is the set of
// client IDs offered by the editor; the chosen client must be in it.
// POST: returns *apperror.ValidationError or nil
func (d *Draft) Validate(activeClients map[string]bool) error {
	v := apperror.Violations{}
	v.Required("title", d.Title, "El título es requerido")
	v.Required("case_number", d.CaseNumber, "El número de caso es requerido")
	v.Required("description", d.Description, "La descripción es requerida")
	if strings.TrimSpace(d.ClientID) == "" {
		v.Add("client_id", "Debe seleccionar un cliente")
	} else if !activeClients[d.ClientID] {
		v.Add("client_id", "El cliente seleccionado no está activo")
	}
	if strings.TrimSpace(d.StartDate) == "" {
		v.Add("start_date", "La fecha de inicio es requerida")
	} else if _, err := time.Parse(dateLayout, d.StartDate); err != nil {
		v.Add("start_date", "Fecha no válida")
	}
	checkOptionalDate(v, "end_date", d.EndDate)
	checkOptionalDate(v, "next_hearing", d.NextHearing)
	if !IsValidStatus(d.Status) {
		v.Add("status", "Estado no válido")
	}
	if !IsValidPriority(d.Priority) {
		v.Add("priority", "Prioridad no válida")
	}
	checkOptionalNumber(v, "billing_rate", d.BillingRate)
	checkOptionalNumber(v, "total_hours", d.TotalHours)
	return v.Err()
}

// Build validates the draft and produces the row to persist on top of
// base (zero Case when creating).
func (d Draft) Build(base Case, activeClients map[string]bool, now time.Time) (Case, error) {
	if err := d.Validate(activeClients); err != nil {
		return Case{}, err
	}
	c := base
	c.CaseNumber = strings.TrimSpace(d.CaseNumber)
	c.ClientID = d.ClientID
	c.Title = strings.TrimSpace(d.Title)
	c.Description = strings.TrimSpace(d.Description)
	c.CaseType = d.CaseType
	c.Status = d.Status
	c.Priority = d.Priority
	c.StartDate, _ = time.Parse(dateLayout, d.StartDate)
	c.EndDate = parseOptionalDate(d.EndDate)
	c.NextHearing = parseOptionalDate(d.NextHearing)
	c.BillingRate = parseOptionalNumber(d.BillingRate)
	c.TotalHours = parseOptionalNumber(d.TotalHours)
	c.Notes = d.Notes
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	return c, nil
}

// Matches applies the list predicate: substring search over title, case
// number and client name, plus optional status and priority equality.
func Matches(c WithClient, search, status, priority string) bool {
	if status != "" && status != "all" && c.Status != status {
		return false
	}
	if priority != "" && priority != "all" && c.Priority != priority {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Title), q) ||
		strings.Contains(strings.ToLower(c.CaseNumber), q) ||
		strings.Contains(strings.ToLower(c.ClientName), q)
}

// Filter returns the cases matching the list predicate, keeping order.
func Filter(cases []WithClient, search, status, priority string) []WithClient {
	out := make([]WithClient, 0, len(cases))
	for _, c := range cases {
		if Matches(c, search, status, priority) {
			out = append(out, c)
		}
	}
	return out
}

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidPriority reports whether p is a known priority.
func IsValidPriority(p string) bool {
	for _, v := range ValidPriorities {
		if v == p {
			return true
		}
	}
	return false
}

// Activity kinds shown on the case detail feed.
const (
	ActivityCreated     = "case_created"
	ActivityUpdated     = "case_updated"
	ActivityDocument    = "document_uploaded"
	ActivityAppointment = "appointment"
)

// Activity is one entry of the case activity feed.
type Activity struct {
	Kind        string
	Title       string
	Description string
	At          time.Time
}

// SortActivities orders the feed newest first.
func SortActivities(items []Activity) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].At.After(items[j].At)
	})
}

func checkOptionalDate(v apperror.Violations, field, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		v.Add(field, "Fecha no válida")
	}
}

func checkOptionalNumber(v apperror.Violations, field, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if n, err := strconv.ParseFloat(value, 64); err != nil || n < 0 {
		v.Add(field, "Debe ser un número positivo")
	}
}

func parseOptionalDate(s string) time.Time {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseOptionalNumber(s string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return n
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
