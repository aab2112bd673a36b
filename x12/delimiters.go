// Package x12 defines the data model for ANSI X12 EDI transmissions: the
// structural delimiter set, the incrementally populated version identifiers,
// tokenized segment records, and the single-owner reading session context.
package x12

import (
	"fmt"
	"unicode"

	"github.com/c360/edistreams/errors"
)

// Delimiters holds the four structural delimiters of one transmission.
// They are data-defined: derived from fixed byte offsets within the ISA
// control segment, and immutable for the transmission's lifetime.
type Delimiters struct {
	ElementSeparator    rune
	ComponentSeparator  rune
	RepetitionSeparator rune
	SegmentTerminator   rune
}

// Validate checks that all four delimiters are distinct non-whitespace
// characters.
func (d Delimiters) Validate() error {
	all := []rune{
		d.ElementSeparator,
		d.ComponentSeparator,
		d.RepetitionSeparator,
		d.SegmentTerminator,
	}

	seen := make(map[rune]bool, len(all))
	for _, r := range all {
		if r == 0 {
			return errors.WrapInvalid(errors.ErrDelimitersNotSet,
				"Delimiters", "Validate", "delimiter presence check")
		}
		if unicode.IsSpace(r) {
			return errors.WrapInvalid(
				fmt.Errorf("whitespace delimiter %q", r),
				"Delimiters", "Validate", "delimiter character check")
		}
		if seen[r] {
			return errors.WrapInvalid(
				fmt.Errorf("duplicate delimiter %q", r),
				"Delimiters", "Validate", "delimiter uniqueness check")
		}
		seen[r] = true
	}

	return nil
}

// IsSet reports whether the delimiter set has been derived.
func (d Delimiters) IsSet() bool {
	return d.ElementSeparator != 0 && d.SegmentTerminator != 0 &&
		d.ComponentSeparator != 0 && d.RepetitionSeparator != 0
}
