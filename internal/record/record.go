// Package record defines the canonical record types served by the admin
// backend (property managers and the associations they manage) and the
// normalization layer that converts raw backend payloads into them.
package record

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind tags the two record types handled by the staging layer.
type Kind string

const (
	KindManager     Kind = "manager"
	KindAssociation Kind = "association"
)

// Field identifies an editable field on a record. Each Kind accepts only
// its own fields; Get/Set switch exhaustively and reject the rest.
type Field string

// Manager fields.
const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldTitles   Field = "titles"
	FieldInitials Field = "initials"
)

// Association fields.
const (
	FieldLegalName  Field = "legalName"
	FieldFilterName Field = "filterName"
	FieldLocation   Field = "location"
	FieldManagerID  Field = "managerId"
)

// ManagerFields lists the editable manager fields in display order.
func ManagerFields() []Field {
	return []Field{FieldName, FieldEmail, FieldTitles, FieldInitials}
}

// AssociationFields lists the editable association fields in display order.
func AssociationFields() []Field {
	return []Field{FieldLegalName, FieldFilterName, FieldLocation, FieldManagerID}
}

// Fields returns the editable fields for a kind.
func Fields(kind Kind) []Field {
	if kind == KindManager {
		return ManagerFields()
	}
	return AssociationFields()
}

// Manager is a property manager record. ID is backend-assigned for
// persisted rows and a temporary token (see NewTempID) for staged rows.
type Manager struct {
	ID       string
	Name     string
	Email    string
	Titles   string
	Initials string

	// Staging annotations, never sent to the backend.
	IsNew   bool
	Deleted bool
}

// Get returns the value of an editable field.
func (m Manager) Get(f Field) (string, error) {
	switch f {
	case FieldName:
		return m.Name, nil
	case FieldEmail:
		return m.Email, nil
	case FieldTitles:
		return m.Titles, nil
	case FieldInitials:
		return m.Initials, nil
	}
	return "", fmt.Errorf("manager has no field %q", f)
}

// Set writes the value of an editable field.
func (m *Manager) Set(f Field, v string) error {
	switch f {
	case FieldName:
		m.Name = v
	case FieldEmail:
		m.Email = v
	case FieldTitles:
		m.Titles = v
	case FieldInitials:
		m.Initials = v
	default:
		return fmt.Errorf("manager has no field %q", f)
	}
	return nil
}

// Association is a condominium association record. ManagerID references a
// Manager; ManagerName is display-only denormalization and never persisted.
type Association struct {
	ID         string
	LegalName  string
	FilterName string
	Location   string
	ManagerID  string

	// ManagerName is either embedded by the backend or resolved from the
	// current manager set at normalization/render time.
	ManagerName string

	IsNew   bool
	Deleted bool
}

// Get returns the value of an editable field.
func (a Association) Get(f Field) (string, error) {
	switch f {
	case FieldLegalName:
		return a.LegalName, nil
	case FieldFilterName:
		return a.FilterName, nil
	case FieldLocation:
		return a.Location, nil
	case FieldManagerID:
		return a.ManagerID, nil
	}
	return "", fmt.Errorf("association has no field %q", f)
}

// Set writes the value of an editable field.
func (a *Association) Set(f Field, v string) error {
	switch f {
	case FieldLegalName:
		a.LegalName = v
	case FieldFilterName:
		a.FilterName = v
	case FieldLocation:
		a.Location = v
	case FieldManagerID:
		a.ManagerID = v
	default:
		return fmt.Errorf("association has no field %q", f)
	}
	return nil
}

// DisplayManagerName resolves the manager name shown for an association:
// embedded name first, then a lookup against the supplied manager set,
// then "Unassigned".
func (a Association) DisplayManagerName(byID map[string]Manager) string {
	if a.ManagerName != "" {
		return a.ManagerName
	}
	if m, ok := byID[a.ManagerID]; ok && m.Name != "" {
		return m.Name
	}
	return "Unassigned"
}

// Temporary identifier scheme. Staged rows carry locally generated IDs
// with a reserved prefix so they can never be mistaken for backend keys.
const (
	tempPrefix            = "NEW-"
	tempManagerPrefix     = "NEW-M-"
	tempAssociationPrefix = "NEW-A-"
)

// NewTempID generates a temporary identifier for a staged row of the
// given kind.
func NewTempID(kind Kind) string {
	if kind == KindManager {
		return tempManagerPrefix + uuid.NewString()
	}
	return tempAssociationPrefix + uuid.NewString()
}

// IsTempID reports whether an identifier is locally generated and must be
// remapped before it may be sent to the backend.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempPrefix)
}

// Slugify derives a filter-name slug from a legal name: lowercase,
// non-alphanumeric runs collapsed to underscores, capped at 64 bytes.
func Slugify(s string) string {
	var b strings.Builder
	lastUnderscore := true // suppress a leading underscore
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "_")
	if len(out) > 64 {
		out = out[:64]
	}
	return out
}
