// Package edistreams provides an ingestion core for ANSI X12 EDI healthcare
// claims, turning raw 837 transmissions into validated, hierarchical claim
// documents published over NATS.
//
// # Pipeline
//
// An X12 transmission flows through three stages:
//
//	┌─────────────────────────────────────┐
//	│           reader                    │  Delimiter extraction from the
//	│  (tokenize segments, track version) │  ISA segment, streaming tokenizer
//	└─────────────────────────────────────┘
//	           ↓ segments
//	┌─────────────────────────────────────┐
//	│          assembler                  │  Schema-driven recursive descent
//	│  (build the claim loop hierarchy)   │  over declarative loop rules
//	└─────────────────────────────────────┘
//	           ↓ loop tree
//	┌─────────────────────────────────────┐
//	│          validate                   │  Per-loop semantic rules run as
//	│  (balances, duplicate qualifiers)   │  each loop closes
//	└─────────────────────────────────────┘
//
// The reader owns byte-level concerns: it extracts the element, repetition,
// and component separators plus the segment terminator from fixed offsets in
// the 106-byte ISA header, then streams tokenized segments. It also collects
// the version identifiers (ISA12, GS01, GS08, ST01) that select a schema.
//
// The assembler consumes segments one at a time with single-segment
// lookahead, matching them against a declarative loop schema. Loops open
// when their start segment matches, nest per the schema's child rules, and
// close when a segment belongs to an ancestor. Occurrence bounds are
// enforced on both segments and loops.
//
// The validate package hooks loop closure: each completed loop is checked
// against registered rules before assembly continues, so a violation
// surfaces at the segment that caused it.
//
// # Packages
//
// Parsing core:
//   - x12: segment, delimiter, and version identifier types
//   - reader: streaming segment tokenizer
//   - schema: declarative loop schemas and the transaction set registry
//   - assembler: loop hierarchy construction
//   - validate: semantic validation rules
//
// Infrastructure:
//   - config: configuration loading and validation
//   - errors: classified error handling
//   - natsclient: NATS connection management with circuit breaking
//   - metric: Prometheus metrics
//   - message: typed claim document envelope for publishing
//   - component: component lifecycle contracts
//   - input/file: file and inline input component
//
// # Usage
//
// Assemble a transmission held in memory:
//
//	r, _ := reader.New(data, config.DefaultX12Config())
//	r.Reset()
//
//	root, _ := schema.Default().Get("837")
//	a := assembler.New(r, root, assembler.WithValidator(validate.NewEngine()))
//	tree, err := a.Assemble()
//
// Or run the binary against one or more sources:
//
//	edistreams --input=/data/claims/batch.837 --publish --subject=edi.claims.837
package edistreams
