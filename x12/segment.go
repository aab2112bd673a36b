package x12

import "strings"

// Segment is one tokenized unit of an X12 transmission: an ordered sequence
// of field strings. Field 0 carries the segment name.
type Segment []string

// Name returns the normalized (upper-case) segment name, or "" for an empty
// record.
func (s Segment) Name() string {
	if len(s) == 0 {
		return ""
	}
	return strings.ToUpper(s[0])
}

// Field returns the field at index i, or "" when the segment is too short.
// X12 segments routinely omit trailing optional elements.
func (s Segment) Field(i int) string {
	if i < 0 || i >= len(s) {
		return ""
	}
	return s[i]
}

// Join renders the segment back to its raw wire form using the supplied
// element separator.
func (s Segment) Join(elementSeparator rune) string {
	return strings.Join(s, string(elementSeparator))
}

// Control segment names bounding interchanges, functional groups, and
// transaction sets.
const (
	SegmentISA = "ISA"
	SegmentGS  = "GS"
	SegmentST  = "ST"
	SegmentSE  = "SE"
	SegmentGE  = "GE"
	SegmentIEA = "IEA"
)

var controlSegments = map[string]bool{
	SegmentISA: true,
	SegmentGS:  true,
	SegmentST:  true,
	SegmentSE:  true,
	SegmentGE:  true,
	SegmentIEA: true,
}

// IsControlSegment reports whether name identifies an envelope/administrative
// segment. The check is case-insensitive.
func IsControlSegment(name string) bool {
	return controlSegments[strings.ToUpper(name)]
}
