package x12

import (
	"fmt"
	"strings"

	"github.com/c360/edistreams/config"
)

// VersionIdentifiers captures the transmission's version fields as the
// corresponding control segments are observed. Fields are absent before the
// segment that carries them has been read, and immutable once populated.
type VersionIdentifiers struct {
	InterchangeControlVersion string
	FunctionalIDCode          string
	FunctionalVersionCode     string
	TransactionSetCode        string
}

// Key renders the identifiers as a single lookup key, for example
// "00501-HS-005010X279A1-270".
func (v VersionIdentifiers) Key() string {
	return fmt.Sprintf("%s-%s-%s-%s",
		v.InterchangeControlVersion,
		v.FunctionalIDCode,
		v.FunctionalVersionCode,
		v.TransactionSetCode)
}

// Context is the mutable state threaded through one reading session. It is
// exclusively owned by that session and must not be shared across concurrent
// sessions. Schema and validation logic stay state-free; only the tokenizer
// mutates the context.
type Context struct {
	Delimiters Delimiters
	Version    VersionIdentifiers

	CurrentSegmentName  string
	CurrentSegment      Segment
	PreviousSegmentName string
	PreviousSegment     Segment

	// Raw control segment captures retained for envelope-level inspection.
	InterchangeHeader     Segment
	FunctionalGroupHeader Segment
	TransactionSetHeader  Segment
}

// NewContext creates an empty reading session context.
func NewContext() *Context {
	return &Context{}
}

// Update records a freshly tokenized segment as current, shifting the prior
// segment to previous, and captures version identifiers from ISA/GS/ST
// control segments at their configured field positions.
func (c *Context) Update(fields Segment, x12cfg config.X12Config) {
	c.PreviousSegmentName = c.CurrentSegmentName
	c.PreviousSegment = c.CurrentSegment
	c.CurrentSegmentName = strings.ToUpper(fields.Name())
	c.CurrentSegment = fields

	switch c.CurrentSegmentName {
	case SegmentISA:
		c.InterchangeHeader = fields
		c.Version.InterchangeControlVersion = fields.Field(x12cfg.ISAControlVersion)
	case SegmentGS:
		c.FunctionalGroupHeader = fields
		c.Version.FunctionalIDCode = fields.Field(x12cfg.GSFunctionalCode)
		c.Version.FunctionalVersionCode = fields.Field(x12cfg.GSFunctionVersion)
	case SegmentST:
		c.TransactionSetHeader = fields
		c.Version.TransactionSetCode = fields.Field(x12cfg.STTransactionCode)
	}
}

// Reset tears down the session state. Called when the reading session ends.
func (c *Context) Reset() {
	*c = Context{}
}
