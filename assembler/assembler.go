package assembler

import (
	"fmt"
	"io"
	"strings"

	"github.com/c360/edistreams/errors"
	"github.com/c360/edistreams/schema"
	"github.com/c360/edistreams/x12"
)

// SegmentSource supplies segments in transmission order. Next returns io.EOF
// when the stream is exhausted; Ordinal returns the 1-based position of the
// most recently returned segment. reader.SegmentReader satisfies this.
type SegmentSource interface {
	Next() (x12.Segment, error)
	Ordinal() int
}

// Validator is invoked for each loop as it closes, after the assembler's own
// bound checks. validate.Engine satisfies this; a nil validator skips
// semantic checks.
type Validator interface {
	LoopClosed(loop *Loop, entry *schema.LoopSchema, ordinal int) error
}

// Assembler is a recursive-descent consumer of a segment stream, driven by a
// loop schema, with one segment of look-ahead. An assembler owns its source
// for the duration of the session and is not safe for concurrent use;
// independent transmissions are processed by independent assemblers.
type Assembler struct {
	source    SegmentSource
	root      *schema.LoopSchema
	validator Validator

	lookahead   x12.Segment
	haveLook    bool
	lookOrdinal int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithValidator installs a validator invoked at each loop closure.
func WithValidator(v Validator) Option {
	return func(a *Assembler) {
		a.validator = v
	}
}

// New creates an assembler over a segment source for one transaction root
// schema.
func New(source SegmentSource, root *schema.LoopSchema, opts ...Option) *Assembler {
	a := &Assembler{source: source, root: root}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble consumes the next transaction from the stream and returns its
// fully populated, closed loop tree. Envelope segments (ISA, GS, GE, IEA)
// surrounding the transaction are consumed and skipped; the transaction
// itself spans the root schema's start segment through its final member.
// Assemble returns io.EOF when the stream ends before a transaction starts.
func (a *Assembler) Assemble() (*Loop, error) {
	for {
		seg, ok, err := a.peek()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, io.EOF
		}
		if a.root.Start.Matches(seg) {
			break
		}
		if x12.IsControlSegment(seg.Name()) {
			a.consume()
			continue
		}
		return nil, a.violation(a.root.ID, seg,
			"expected transaction start segment %s", a.root.Start.Name)
	}

	return a.assembleLoop(a.root)
}

// assembleLoop assembles one loop. The look-ahead segment is the loop's
// start segment, except for structure-only roots that declare no member
// segments. At each decision point the next segment is tested, in order,
// against: the loop's member rules at or after the current member position,
// then the eligible child loops at or after the current child position.
// A segment matching neither closes the loop if every required member and
// child is satisfied; closing hands the segment back to the parent as its
// look-ahead.
func (a *Assembler) assembleLoop(entry *schema.LoopSchema) (*Loop, error) {
	loop := &Loop{ID: entry.ID}
	segCounts := make([]int, len(entry.Segments))
	loopCounts := make([]int, len(entry.Loops))
	segIdx, loopIdx := 0, 0

	for {
		seg, ok, err := a.peek()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		if idx, matched := a.matchMember(entry, seg, segIdx, segCounts); matched {
			a.consume()
			loop.Segments = append(loop.Segments, seg)
			segCounts[idx]++
			// Stay at the matched rule so further repeats are tested first.
			segIdx = idx
			continue
		}

		if idx, matched := a.matchChild(entry, seg, loopIdx, loopCounts); matched {
			// Entering a child forecloses the member positions; member
			// segments arriving after a child loop are out of order.
			segIdx = len(entry.Segments)

			child, err := a.assembleLoop(entry.Loops[idx].Loop)
			if err != nil {
				return nil, err
			}
			loop.Children = append(loop.Children, child)
			loopCounts[idx]++
			loopIdx = idx
			continue
		}

		break
	}

	if err := a.close(loop, entry, segCounts, loopCounts); err != nil {
		return nil, err
	}

	return loop, nil
}

// matchMember scans the member rules at or after segIdx for one that the
// segment satisfies with headroom under its repetition bound. Rules before
// segIdx are never revisited: member order is a total order.
func (a *Assembler) matchMember(
	entry *schema.LoopSchema, seg x12.Segment, segIdx int, segCounts []int,
) (int, bool) {
	for i := segIdx; i < len(entry.Segments); i++ {
		rule := entry.Segments[i]
		if strings.EqualFold(rule.Name, seg.Name()) && rule.Repeats.Allows(segCounts[i]) {
			return i, true
		}
	}
	return 0, false
}

// matchChild scans the child loop rules at or after loopIdx for an eligible
// loop the segment starts. A child is eligible while its repetition bound
// has headroom and its declared position has not been passed; when the
// segment could start either a repeat of the current child or a later
// sibling, the current (innermost still-open) child wins by scan order.
func (a *Assembler) matchChild(
	entry *schema.LoopSchema, seg x12.Segment, loopIdx int, loopCounts []int,
) (int, bool) {
	for i := loopIdx; i < len(entry.Loops); i++ {
		rule := entry.Loops[i]
		if rule.Loop.Start.Matches(seg) && rule.Repeats.Allows(loopCounts[i]) {
			return i, true
		}
	}
	return 0, false
}

// close verifies the loop's cardinality lower bounds and runs the installed
// validator. A loop is never exposed to its parent until close succeeds.
func (a *Assembler) close(
	loop *Loop, entry *schema.LoopSchema, segCounts, loopCounts []int,
) error {
	var blocking x12.Segment
	if a.haveLook {
		blocking = a.lookahead
	}

	for i, rule := range entry.Segments {
		if segCounts[i] < rule.MinCount() {
			return a.violation(entry.ID, blocking,
				"required segment %s: found %d occurrence(s), need %d",
				rule.Name, segCounts[i], rule.MinCount())
		}
	}

	for i, rule := range entry.Loops {
		if loopCounts[i] < rule.MinCount() {
			return a.violation(entry.ID, blocking,
				"required loop %s: found %d occurrence(s), need %d",
				rule.Loop.ID, loopCounts[i], rule.MinCount())
		}
	}

	if a.validator != nil {
		if err := a.validator.LoopClosed(loop, entry, a.lookOrdinal); err != nil {
			return err
		}
	}

	return nil
}

// Remainder returns the look-ahead segment left unconsumed when the last
// assembled tree closed, with its 1-based ordinal. Closing the root loop
// pulls one segment past the transaction's end; callers processing
// back-to-back transactions hand that segment to the next consumer instead
// of losing it. ok is false when the stream was exhausted.
func (a *Assembler) Remainder() (x12.Segment, int, bool) {
	if !a.haveLook {
		return nil, 0, false
	}
	return a.lookahead, a.lookOrdinal, true
}

// peek returns the next segment without consuming it. ok is false at end of
// stream.
func (a *Assembler) peek() (x12.Segment, bool, error) {
	if a.haveLook {
		return a.lookahead, true, nil
	}

	seg, err := a.source.Next()
	if err == io.EOF {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	a.lookahead = seg
	a.haveLook = true
	a.lookOrdinal = a.source.Ordinal()
	return seg, true, nil
}

func (a *Assembler) consume() {
	a.haveLook = false
}

// violation builds a structural violation tagged with the offending loop
// type and the 1-based segment ordinal for diagnostics.
func (a *Assembler) violation(loopID string, seg x12.Segment, format string, args ...any) error {
	detail := fmt.Sprintf(format, args...)
	name := "<end of stream>"
	if seg != nil {
		name = seg.Name()
	}
	return errors.WrapInvalid(
		fmt.Errorf("%w: loop %s, segment %s at position %d: %s",
			errors.ErrStructuralViolation, loopID, name, a.lookOrdinal, detail),
		"Assembler", "assembleLoop", "loop structure check")
}
