// Package validate applies semantic validation rules to assembled loop
// trees. Rules run as loops close during assembly, so a violation is
// reported against the innermost loop that exhibits it and assembly stops
// at the first failure.
package validate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/c360/edistreams/assembler"
	"github.com/c360/edistreams/errors"
	"github.com/c360/edistreams/schema"
)

// Rule checks one semantic property of a closed loop. Rules receive the
// loop after structural bounds are verified, so segment presence promised
// by the schema can be assumed.
type Rule func(loop *assembler.Loop, ordinal int) error

// Engine dispatches semantic rules by loop type. It satisfies
// assembler.Validator.
type Engine struct {
	rules map[string][]Rule
}

// NewEngine returns an engine loaded with the standard claim rules:
// duplicate date and amount qualifier detection on claim and service-line
// loops, and claim total reconciliation against service-line charges.
func NewEngine() *Engine {
	e := &Engine{rules: make(map[string][]Rule)}

	e.Register("2300", NoDuplicateQualifiers("DTP"))
	e.Register("2300", NoDuplicateQualifiers("AMT"))
	e.Register("2300", ClaimTotalReconciles)
	e.Register("2320", NoDuplicateQualifiers("AMT"))
	e.Register("2400", NoDuplicateQualifiers("DTP"))
	e.Register("2400", NoDuplicateQualifiers("AMT"))

	return e
}

// Register adds a rule for a loop type. Rules run in registration order.
func (e *Engine) Register(loopID string, rule Rule) {
	e.rules[loopID] = append(e.rules[loopID], rule)
}

// LoopClosed rechecks the loop's occurrence bounds against its schema
// entry, then runs the rules registered for the loop's type, failing on the
// first violation.
func (e *Engine) LoopClosed(loop *assembler.Loop, entry *schema.LoopSchema, ordinal int) error {
	if err := CheckBounds(loop, entry, ordinal); err != nil {
		return err
	}
	for _, rule := range e.rules[loop.ID] {
		if err := rule(loop, ordinal); err != nil {
			return err
		}
	}
	return nil
}

// CheckBounds verifies every member segment and child loop count against
// the schema entry's declared occurrence bounds. The assembler enforces the
// same bounds while matching; this recheck guards closed trees handed to
// the engine directly.
func CheckBounds(loop *assembler.Loop, entry *schema.LoopSchema, ordinal int) error {
	if entry == nil {
		return nil
	}

	for _, rule := range entry.Segments {
		count := len(loop.SegmentsNamed(rule.Name))
		if rule.Required && !rule.Repeats.Satisfied(count) {
			return boundsViolation(loop.ID, ordinal,
				fmt.Sprintf("segment %s occurs %d times, minimum %d", rule.Name, count, rule.MinCount()))
		}
		if rule.Repeats.Max != schema.Unbounded && count > rule.Repeats.Max {
			return boundsViolation(loop.ID, ordinal,
				fmt.Sprintf("segment %s occurs %d times, maximum %d", rule.Name, count, rule.Repeats.Max))
		}
	}

	for _, child := range entry.Loops {
		count := len(loop.ChildrenByID(child.Loop.ID))
		if child.Required && !child.Repeats.Satisfied(count) {
			return boundsViolation(loop.ID, ordinal,
				fmt.Sprintf("loop %s occurs %d times, minimum %d", child.Loop.ID, count, child.MinCount()))
		}
		if child.Repeats.Max != schema.Unbounded && count > child.Repeats.Max {
			return boundsViolation(loop.ID, ordinal,
				fmt.Sprintf("loop %s occurs %d times, maximum %d", child.Loop.ID, count, child.Repeats.Max))
		}
	}

	return nil
}

func boundsViolation(loopID string, ordinal int, detail string) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: loop %s near position %d: %s",
			errors.ErrCardinalityViolation, loopID, ordinal, detail),
		"Engine", "LoopClosed", "occurrence bounds recheck")
}

// NoDuplicateQualifiers returns a rule rejecting repeated qualifier values
// in the first element of the named segment within one loop. Date and
// amount segments repeat, but each qualifier may appear at most once per
// loop.
func NoDuplicateQualifiers(segmentName string) Rule {
	return func(loop *assembler.Loop, ordinal int) error {
		seen := make(map[string]struct{})
		for _, seg := range loop.SegmentsNamed(segmentName) {
			qualifier := strings.ToUpper(seg.Field(1))
			if qualifier == "" {
				continue
			}
			if _, dup := seen[qualifier]; dup {
				return errors.WrapInvalid(
					fmt.Errorf("%w: loop %s near position %d: %s qualifier %s appears more than once",
						errors.ErrDuplicateQualifier, loop.ID, ordinal, segmentName, qualifier),
					"Engine", "LoopClosed", "qualifier uniqueness check")
			}
			seen[qualifier] = struct{}{}
		}
		return nil
	}
}

// ClaimTotalReconciles verifies that the claim's total charge amount (CLM02)
// equals the sum of its service line charge amounts (SV102) across every
// service line beneath the claim. Amounts are compared as exact decimals.
func ClaimTotalReconciles(loop *assembler.Loop, ordinal int) error {
	clm, ok := loop.First("CLM")
	if !ok {
		return nil
	}

	claimed, err := decimal.NewFromString(clm.Field(2))
	if err != nil {
		return errors.WrapInvalid(
			fmt.Errorf("%w: loop %s near position %d: claim amount %q is not a valid decimal",
				errors.ErrAmountMismatch, loop.ID, ordinal, clm.Field(2)),
			"Engine", "LoopClosed", "claim total reconciliation")
	}

	total := decimal.Zero
	for _, line := range loop.Descendants("2400") {
		sv1, ok := line.First("SV1")
		if !ok {
			continue
		}
		charge, err := decimal.NewFromString(sv1.Field(2))
		if err != nil {
			return errors.WrapInvalid(
				fmt.Errorf("%w: loop %s near position %d: service line charge %q is not a valid decimal",
					errors.ErrAmountMismatch, line.ID, ordinal, sv1.Field(2)),
				"Engine", "LoopClosed", "claim total reconciliation")
		}
		total = total.Add(charge)
	}

	if !claimed.Equal(total) {
		return errors.WrapInvalid(
			fmt.Errorf("%w: loop %s near position %d: claim total %s does not equal service line sum %s",
				errors.ErrAmountMismatch, loop.ID, ordinal, claimed.String(), total.String()),
			"Engine", "LoopClosed", "claim total reconciliation")
	}

	return nil
}

var _ assembler.Validator = (*Engine)(nil)
