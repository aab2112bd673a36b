package message

import "fmt"

// Type identifies a message's domain, category, and schema version. Type
// constants live with the payloads that define them; this package only
// provides the shape.
//
//	var ProfessionalClaim = message.Type{
//	    Domain:   "claims",
//	    Category: "professional",
//	    Version:  "v1",
//	}
type Type struct {
	// Domain identifies the business domain, e.g. "claims".
	Domain string

	// Category identifies the message type within the domain, e.g.
	// "professional".
	Category string

	// Version identifies the schema version, "v1", "v2" and so on.
	Version string
}

// Key returns the dotted notation "domain.category.version", used for
// routing subjects and payload registration.
func (t Type) Key() string {
	return fmt.Sprintf("%s.%s.%s", t.Domain, t.Category, t.Version)
}

// String returns the same as Key.
func (t Type) String() string {
	return t.Key()
}

// IsValid checks that every field is populated.
func (t Type) IsValid() bool {
	return t.Domain != "" && t.Category != "" && t.Version != ""
}

// Equal compares two types field by field.
func (t Type) Equal(other Type) bool {
	return t == other
}
