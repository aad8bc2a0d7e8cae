package client

import (
	"strings"
	"time"

	"lawoffice/internal/domain/apperror"
)

// Client types
const (
	TypeIndividual = "individual"
	TypeBusiness   = "business"
)

// ValidTypes contains all valid client types.
var ValidTypes = []string{TypeIndividual, TypeBusiness}

// DefaultCountry prefills new client drafts.
const DefaultCountry = "España"

// Client is the persisted client row.
type Client struct {
	ID                   string
	UserID               string // linked account, optional
	FirstName            string
	LastName             string
	Email                string
	Phone                string
	ClientType           string
	CompanyName          string
	Position             string
	IdentificationType   string
	IdentificationNumber string
	DateOfBirth          time.Time
	Address              string
	City                 string
	State                string
	PostalCode           string
	Country              string
	Active               bool
	Notes                string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// FullName joins first and last name.
func (c Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// IsBusiness reports a business client.
func (c Client) IsBusiness() bool {
	return c.ClientType == TypeBusiness
}

// Draft is the editor form state for a client.
type Draft struct {
	FirstName            string
	LastName             string
	Email                string
	Phone                string
	ClientType           string
	CompanyName          string
	Position             string
	IdentificationType   string
	IdentificationNumber string
	DateOfBirth          string // YYYY-MM-DD, optional
	Address              string
	City                 string
	State                string
	PostalCode           string
	Country              string
	Active               bool
	Notes                string
}

// NewDraft returns the defaults of an empty editor.
func NewDraft() Draft {
	return Draft{ClientType: TypeIndividual, Country: DefaultCountry, Active: true}
}

// DraftFrom copies a client into an editable draft.
func DraftFrom(c Client) Draft {
	d := Draft{
		FirstName:            c.FirstName,
		LastName:             c.LastName,
		Email:                c.Email,
		Phone:                c.Phone,
		ClientType:           c.ClientType,
		CompanyName:          c.CompanyName,
		Position:             c.Position,
		IdentificationType:   c.IdentificationType,
		IdentificationNumber: c.IdentificationNumber,
		Address:              c.Address,
		City:                 c.City,
		State:                c.State,
		PostalCode:           c.PostalCode,
		Country:              c.Country,
		Active:               c.Active,
		Notes:                c.Notes,
	}
	if !c.DateOfBirth.IsZero() {
		d.DateOfBirth = c.DateOfBirth.Format("2006-01-02")
	}
	return d
}

// Validate reports field-scoped violations. Every rule is checked so the
// editor can flag all offending fields at once.
// POST: returns *apperror.ValidationError or nil
func (d *Draft) Validate() error {
	v := apperror.Violations{}
	v.Required("first_name", d.FirstName, "El nombre es requerido")
	email := strings.TrimSpace(d.Email)
	if email == "" {
		v.Add("email", "El email es requerido")
	} else if !apperror.IsValidEmail(email) {
		v.Add("email", "El email no es válido")
	}
	if !isValidType(d.ClientType) {
		v.Add("client_type", "Tipo de cliente no válido")
	}
	if d.ClientType == TypeBusiness {
		v.Required("company_name", d.CompanyName, "El nombre de la empresa es requerido para clientes empresariales")
	}
	if d.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", d.DateOfBirth); err != nil {
			v.Add("date_of_birth", "Fecha no válida")
		}
	}
	return v.Err()
}

// Build validates the draft and produces the row to persist on top of
// base (zero Client when creating).
func (d Draft) Build(base Client, now time.Time) (Client, error) {
	if err := d.Validate(); err != nil {
		return Client{}, err
	}
	c := base
	c.FirstName = strings.TrimSpace(d.FirstName)
	c.LastName = strings.TrimSpace(d.LastName)
	c.Email = strings.TrimSpace(d.Email)
	c.Phone = strings.TrimSpace(d.Phone)
	c.ClientType = d.ClientType
	c.CompanyName = strings.TrimSpace(d.CompanyName)
	if c.ClientType != TypeBusiness {
		c.CompanyName = ""
	}
	c.Position = strings.TrimSpace(d.Position)
	c.IdentificationType = d.IdentificationType
	c.IdentificationNumber = strings.TrimSpace(d.IdentificationNumber)
	c.DateOfBirth = time.Time{}
	if d.DateOfBirth != "" {
		c.DateOfBirth, _ = time.Parse("2006-01-02", d.DateOfBirth)
	}
	c.Address = strings.TrimSpace(d.Address)
	c.City = strings.TrimSpace(d.City)
	c.State = strings.TrimSpace(d.State)
	c.PostalCode = strings.TrimSpace(d.PostalCode)
	c.Country = strings.TrimSpace(d.Country)
	c.Active = d.Active
	c.Notes = d.Notes
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	return c, nil
}

// Matches applies the list predicate: substring search over first name,
// last name, email and company, plus an optional active filter
// ("active", "inactive" or empty for all).
func Matches(c Client, search, active string) bool {
	switch active {
	case "active":
		if !c.Active {
			return false
		}
	case "inactive":
		if c.Active {
			return false
		}
	}
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	for _, f := range []string{c.FirstName, c.LastName, c.Email, c.CompanyName} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(c.FullName()), q)
}

// Filter returns the clients matching search and active, keeping order.
func Filter(clients []Client, search, active string) []Client {
	out := make([]Client, 0, len(clients))
	for _, c := range clients {
		if Matches(c, search, active) {
			out = append(out, c)
		}
	}
	return out
}

func isValidType(t string) bool {
	for _, v := range ValidTypes {
		if v == t {
			return true
		}
	}
	return false
}
