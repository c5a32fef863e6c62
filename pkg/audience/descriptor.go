package audience

import "fmt"

// Type tags the audience descriptor variant.
type Type string

const (
	// TypeAll targets every eligible recipient, optionally filtered.
	TypeAll Type = "all"
	// TypeRole targets recipients holding any of a set of named roles.
	TypeRole Type = "role"
	// TypeCustom targets an arbitrary criteria combination.
	TypeCustom Type = "custom"
)

// Descriptor declaratively selects which recipients receive a dispatch.
// Criteria combine with AND semantics across dimensions and OR within a
// dimension's list.
type Descriptor struct {
	Type Type `json:"type"`

	// IDs is an explicit recipient-id allowlist (custom only).
	IDs []string `json:"ids,omitempty"`
	// Roles is matched ANY-of against a recipient's held roles.
	Roles []string `json:"roles,omitempty"`
	// Locales restricts to recipients whose locale is in the list.
	Locales []string `json:"locales,omitempty"`
	// Regions restricts to recipients whose ward/region is in the list.
	Regions []string `json:"regions,omitempty"`
	// HasEmail and HasPhone require the corresponding contact method.
	HasEmail bool `json:"has_email,omitempty"`
	HasPhone bool `json:"has_phone,omitempty"`
}

// All returns a descriptor covering every eligible recipient.
func All() Descriptor { return Descriptor{Type: TypeAll} }

// Role returns a descriptor targeting holders of any of the given roles.
func Role(roles ...string) Descriptor { return Descriptor{Type: TypeRole, Roles: roles} }

// Validate structurally checks the descriptor shape. It never touches the
// directory, so it is safe to call on untrusted input before any query.
func (d Descriptor) Validate() error {
	switch d.Type {
	case TypeAll, TypeCustom:
	case TypeRole:
		if len(d.Roles) == 0 {
			return fmt.Errorf("%w: role audience requires at least one role", ErrInvalidDescriptor)
		}
	case "":
		return fmt.Errorf("%w: missing audience type", ErrInvalidDescriptor)
	default:
		return fmt.Errorf("%w: unknown audience type %q", ErrInvalidDescriptor, d.Type)
	}
	for _, id := range d.IDs {
		if id == "" {
			return fmt.Errorf("%w: empty recipient id in allowlist", ErrInvalidDescriptor)
		}
	}
	return nil
}

// filter translates the descriptor into a single directory query.
func (d Descriptor) filter() Filter {
	return Filter{
		IDs:      d.IDs,
		Roles:    d.Roles,
		Locales:  d.Locales,
		Regions:  d.Regions,
		HasEmail: d.HasEmail,
		HasPhone: d.HasPhone,
	}
}
