// Package schema describes transaction loop hierarchies declaratively: which
// segments start and belong to a loop, how loops nest, and the repetition
// bounds for both segments and loops. Schemas are immutable after
// registration and safe to share across any number of concurrent assembly
// sessions.
package schema

import (
	"strings"

	"github.com/c360/edistreams/x12"
)

// Unbounded marks a repetition with no upper limit.
const Unbounded = -1

// Occurrence bounds a repeatable segment or loop. Max may be Unbounded.
type Occurrence struct {
	Min int
	Max int
}

// Once is the occurrence for a single, non-repeating member.
var Once = Occurrence{Min: 1, Max: 1}

// Allows reports whether one more occurrence fits under the upper bound
// given the current count.
func (o Occurrence) Allows(count int) bool {
	return o.Max == Unbounded || count < o.Max
}

// Satisfied reports whether the count meets the lower bound.
func (o Occurrence) Satisfied(count int) bool {
	return count >= o.Min
}

// Condition constrains a field of a loop's start segment. It disambiguates
// segment names reused across loop levels, such as the HL level codes that
// distinguish billing-provider, subscriber, and patient loops.
type Condition struct {
	Field  int
	Values []string
}

// Matches reports whether the segment's field carries one of the allowed
// values.
func (c Condition) Matches(seg x12.Segment) bool {
	got := seg.Field(c.Field)
	for _, v := range c.Values {
		if got == v {
			return true
		}
	}
	return false
}

// StartSegment identifies the segment that opens a loop, optionally narrowed
// by field conditions.
type StartSegment struct {
	Name       string
	Conditions []Condition
}

// Matches reports whether the segment opens a loop with this start matcher.
func (s StartSegment) Matches(seg x12.Segment) bool {
	if !strings.EqualFold(seg.Name(), s.Name) {
		return false
	}
	for _, c := range s.Conditions {
		if !c.Matches(seg) {
			return false
		}
	}
	return true
}

// SegmentRule declares one member segment of a loop: its name, whether it is
// required, and its repetition bounds. Member order in the slice is the
// order the transmission must respect.
type SegmentRule struct {
	Name     string
	Required bool
	Repeats  Occurrence
}

// MinCount returns the minimum occurrences the rule demands. Optional rules
// demand zero regardless of their declared lower bound.
func (r SegmentRule) MinCount() int {
	if !r.Required {
		return 0
	}
	if r.Repeats.Min < 1 {
		return 1
	}
	return r.Repeats.Min
}

// LoopRule declares one child loop of a parent, with repetition bounds.
// Child order in the slice is a total order the segment stream must respect;
// the assembler never jumps backward.
type LoopRule struct {
	Loop     *LoopSchema
	Required bool
	Repeats  Occurrence
}

// MinCount returns the minimum occurrences the rule demands.
func (r LoopRule) MinCount() int {
	if !r.Required {
		return 0
	}
	if r.Repeats.Min < 1 {
		return 1
	}
	return r.Repeats.Min
}

// LoopSchema is the static descriptor for one loop type.
type LoopSchema struct {
	// ID is the implementation guide loop identifier, e.g. "2300".
	ID string
	// Name is the human readable loop name, e.g. "Claim Information".
	Name string
	// Start matches the segment that opens this loop. It must correspond to
	// the first segment rule.
	Start StartSegment
	// Segments are the loop's member segments in declared order.
	Segments []SegmentRule
	// Loops are the loop's child loops in declared order.
	Loops []LoopRule
}

// SegmentRuleFor returns the member rule for a segment name, if declared.
func (ls *LoopSchema) SegmentRuleFor(name string) (SegmentRule, bool) {
	for _, rule := range ls.Segments {
		if strings.EqualFold(rule.Name, name) {
			return rule, true
		}
	}
	return SegmentRule{}, false
}

// required returns a required single-occurrence member rule.
func required(name string) SegmentRule {
	return SegmentRule{Name: name, Required: true, Repeats: Once}
}

// optional returns an optional single-occurrence member rule.
func optional(name string) SegmentRule {
	return SegmentRule{Name: name, Repeats: Once}
}

// repeated returns a required repeatable member rule with the given bounds.
func repeated(name string, min, max int) SegmentRule {
	return SegmentRule{Name: name, Required: true, Repeats: Occurrence{Min: min, Max: max}}
}

// optionalRepeated returns an optional repeatable member rule capped at max.
func optionalRepeated(name string, max int) SegmentRule {
	return SegmentRule{Name: name, Repeats: Occurrence{Min: 0, Max: max}}
}
