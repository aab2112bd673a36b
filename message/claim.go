package message

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/c360/edistreams/assembler"
	"github.com/c360/edistreams/errors"
	"github.com/c360/edistreams/x12"
)

// ProfessionalClaim is the message type for assembled professional claims.
var ProfessionalClaim = Type{
	Domain:   "claims",
	Category: "professional",
	Version:  "v1",
}

func init() {
	RegisterPayload(ProfessionalClaim, func() Payload { return &ClaimDocument{} })
}

// LoopNode is the wire representation of one assembled loop: its member
// segments as field slices plus its nested children.
type LoopNode struct {
	ID       string     `json:"id"`
	Segments [][]string `json:"segments,omitempty"`
	Children []LoopNode `json:"children,omitempty"`
}

// ClaimDocument is the payload published for each assembled, validated
// transaction: the full loop tree along with the version identifiers and
// claim rollups consumers key on.
type ClaimDocument struct {
	// VersionKey is the transmission version lookup key, for example
	// "00501-HC-005010X222A1-837".
	VersionKey string `json:"version_key"`

	// ControlNumber is the transaction set control number (ST02).
	ControlNumber string `json:"control_number"`

	// SegmentCount is the total member segments across the tree.
	SegmentCount int `json:"segment_count"`

	// TotalCharge is the sum of CLM02 across every claim in the tree.
	TotalCharge decimal.Decimal `json:"total_charge"`

	// Root is the assembled loop tree.
	Root LoopNode `json:"root"`
}

// NewClaimDocument flattens an assembled loop tree into its wire form,
// stamping it with the reading session's version identifiers.
func NewClaimDocument(root *assembler.Loop, version x12.VersionIdentifiers, controlNumber string) *ClaimDocument {
	doc := &ClaimDocument{
		VersionKey:    version.Key(),
		ControlNumber: controlNumber,
		SegmentCount:  root.SegmentCount(),
		Root:          flatten(root),
	}

	total := decimal.Zero
	for _, claim := range root.Descendants("2300") {
		if clm, ok := claim.First("CLM"); ok {
			if amount, err := decimal.NewFromString(clm.Field(2)); err == nil {
				total = total.Add(amount)
			}
		}
	}
	doc.TotalCharge = total

	return doc
}

func flatten(loop *assembler.Loop) LoopNode {
	node := LoopNode{ID: loop.ID}
	for _, seg := range loop.Segments {
		node.Segments = append(node.Segments, []string(seg))
	}
	for _, child := range loop.Children {
		node.Children = append(node.Children, flatten(child))
	}
	return node
}

// Schema implements Payload.
func (d *ClaimDocument) Schema() Type {
	return ProfessionalClaim
}

// Validate implements Payload.
func (d *ClaimDocument) Validate() error {
	if d.VersionKey == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "ClaimDocument", "Validate",
			"version key is required")
	}
	if d.Root.ID == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "ClaimDocument", "Validate",
			"loop tree is empty")
	}
	if d.TotalCharge.IsNegative() {
		return errors.WrapInvalid(errors.ErrInvalidData, "ClaimDocument", "Validate",
			"total charge cannot be negative")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d *ClaimDocument) MarshalJSON() ([]byte, error) {
	type alias ClaimDocument
	return json.Marshal((*alias)(d))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *ClaimDocument) UnmarshalJSON(data []byte) error {
	type alias ClaimDocument
	return json.Unmarshal(data, (*alias)(d))
}
