// Package errors provides standardized error handling patterns for EDIStreams components.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable), and
// Fatal (unrecoverable, stop processing).
//
// EDI parsing distinguishes failures the same way a claims pipeline reacts to
// them. A transmission source that cannot be read right now is transient and
// worth retrying. A transmission whose loop structure or amounts do not
// reconcile is invalid and must be rejected, not retried. A malformed ISA
// control segment is fatal for the reading session: the delimiters cannot be
// derived, so no segment downstream of it is trustworthy.
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if len(prefix) < cfg.ISASegmentLength {
//	    return errors.ErrMalformedControlSegment
//	}
//
// Wrap errors with component context for debugging:
//
//	if err := assembler.Assemble(ctx); err != nil {
//	    return errors.Wrap(err, "FileInput", "process", "claim assembly")
//	}
//
// Check classification for retry decisions:
//
//	if errors.IsTransient(err) {
//	    // schedule another attempt
//	}
package errors
