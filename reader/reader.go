// Package reader streams ordered segment records from an X12 transmission.
// It derives the structural delimiters from the fixed-length ISA control
// segment, then tokenizes the remainder in bounded chunks without loading
// the transmission into memory.
package reader

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/c360/edistreams/config"
	"github.com/c360/edistreams/errors"
	"github.com/c360/edistreams/x12"
)

// SegmentReader streams segments from an X12 message or file.
//
//	r, err := reader.New(input, cfg)
//	defer r.Close()
//	err = r.Segments(func(seg x12.Segment, ctx *x12.Context) error { ... })
//
// Segments are streamed in order using a buffered read loop. The buffer size
// is configured via X12Config.ReaderBufferSize and defaults to 1MB. The
// reader owns its Context for the duration of the session; the context must
// not be shared with a concurrent session.
type SegmentReader struct {
	cfg     config.X12Config
	ctx     *x12.Context
	source  io.ReadSeeker
	closer  io.Closer
	pending []string
	eof     bool
	ordinal int
}

// New classifies the input as inline X12 data or a path to an X12 file,
// opens it, and extracts the delimiter set from the ISA control segment
// prefix. The read cursor position after New is unspecified; Segments and
// Reset reseek to the start themselves.
func New(input string, cfg config.X12Config) (*SegmentReader, error) {
	r := &SegmentReader{cfg: cfg, ctx: x12.NewContext()}

	switch {
	case x12.IsData(input):
		r.source = strings.NewReader(input)
	case input == "":
		return nil, errors.WrapTransient(errors.ErrSourceUnavailable,
			"SegmentReader", "New", "empty input")
	case x12.IsFile(input, cfg.ISASegmentLength):
		f, err := os.Open(x12.ExpandPath(input))
		if err != nil {
			return nil, errors.WrapTransient(
				fmt.Errorf("%w: %v", errors.ErrSourceUnavailable, err),
				"SegmentReader", "New", "file open")
		}
		r.source = f
		r.closer = f
	default:
		path := x12.ExpandPath(input)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			// The file resolved but its prefix lacks the control tag.
			return nil, errors.WrapFatal(
				fmt.Errorf("%w: %s does not begin with %q",
					errors.ErrMalformedControlSegment, path, x12.SegmentISA),
				"SegmentReader", "New", "input classification")
		}
		// Inline payloads without the ISA tag land here too: they are
		// neither a transmission nor a resolvable file.
		if !strings.ContainsRune(input, os.PathSeparator) {
			return nil, errors.WrapFatal(errors.ErrMalformedControlSegment,
				"SegmentReader", "New", "input classification")
		}
		return nil, errors.WrapTransient(
			fmt.Errorf("%w: %s", errors.ErrSourceUnavailable, path),
			"SegmentReader", "New", "file resolution")
	}

	if err := r.extractDelimiters(); err != nil {
		r.release()
		return nil, err
	}

	return r, nil
}

// extractDelimiters reads the fixed-length ISA prefix and derives the four
// structural delimiters from the configured byte offsets.
func (r *SegmentReader) extractDelimiters() error {
	if _, err := r.source.Seek(0, io.SeekStart); err != nil {
		return errors.WrapTransient(err, "SegmentReader", "extractDelimiters", "seek")
	}

	prefix := make([]byte, r.cfg.ISASegmentLength)
	n, err := io.ReadFull(r.source, prefix)
	if err != nil || n < r.cfg.ISASegmentLength {
		return errors.WrapFatal(
			fmt.Errorf("%w: %d byte prefix, want %d",
				errors.ErrMalformedControlSegment, n, r.cfg.ISASegmentLength),
			"SegmentReader", "extractDelimiters", "prefix read")
	}

	if !x12.IsData(string(prefix)) {
		return errors.WrapFatal(
			fmt.Errorf("%w: transmission does not begin with %q",
				errors.ErrMalformedControlSegment, x12.SegmentISA),
			"SegmentReader", "extractDelimiters", "control tag check")
	}

	r.ctx.Delimiters = x12.Delimiters{
		ElementSeparator:    rune(prefix[r.cfg.ISAElementSeparator]),
		RepetitionSeparator: rune(prefix[r.cfg.ISARepetitionSeparator]),
		ComponentSeparator:  rune(prefix[r.cfg.ISAComponentSeparator]),
		SegmentTerminator:   rune(prefix[r.cfg.ISASegmentTerminator]),
	}

	if err := r.ctx.Delimiters.Validate(); err != nil {
		return errors.WrapFatal(
			fmt.Errorf("%w: %v", errors.ErrMalformedControlSegment, err),
			"SegmentReader", "extractDelimiters", "delimiter validation")
	}

	return nil
}

// Context returns the reading session context. The context is mutated in
// place as segments are tokenized.
func (r *SegmentReader) Context() *x12.Context {
	return r.ctx
}

// Delimiters returns the delimiter set derived from the ISA segment.
func (r *SegmentReader) Delimiters() x12.Delimiters {
	return r.ctx.Delimiters
}

// Ordinal returns the 1-based position of the most recently returned
// segment, counted from the start of the stream.
func (r *SegmentReader) Ordinal() int {
	return r.ordinal
}

// Reset rewinds the reader to the start of the transmission so the segment
// stream can be consumed again. Delimiters and version identifiers already
// captured are retained.
func (r *SegmentReader) Reset() error {
	if r.source == nil {
		return errors.WrapInvalid(errors.ErrNotStarted, "SegmentReader", "Reset", "source check")
	}
	if _, err := r.source.Seek(0, io.SeekStart); err != nil {
		return errors.WrapTransient(err, "SegmentReader", "Reset", "seek")
	}
	r.pending = r.pending[:0]
	r.eof = false
	r.ordinal = 0
	return nil
}

// Next returns the next segment record in transmission order, updating the
// session context as a side effect. It returns io.EOF when the stream is
// exhausted.
func (r *SegmentReader) Next() (x12.Segment, error) {
	if r.source == nil {
		return nil, errors.WrapInvalid(errors.ErrNotStarted, "SegmentReader", "Next", "source check")
	}
	if !r.ctx.Delimiters.IsSet() {
		return nil, errors.WrapFatal(errors.ErrDelimitersNotSet,
			"SegmentReader", "Next", "delimiter check")
	}

	for len(r.pending) == 0 {
		if r.eof {
			return nil, io.EOF
		}
		if err := r.fill(); err != nil {
			return nil, err
		}
	}

	raw := r.pending[0]
	r.pending = r.pending[1:]

	fields := x12.Segment(strings.Split(raw, string(r.ctx.Delimiters.ElementSeparator)))
	r.ctx.Update(fields, r.cfg)
	r.ordinal++

	return fields, nil
}

// fill reads the next chunk from the source, extending one byte at a time
// past the buffer boundary until a segment terminator (or EOF) is reached,
// so no segment is ever split across reads.
func (r *SegmentReader) fill() error {
	buf := make([]byte, r.cfg.ReaderBufferSize)
	n, err := io.ReadFull(r.source, buf)
	if err == io.EOF {
		r.eof = true
		return nil
	}
	if err == io.ErrUnexpectedEOF {
		r.eof = true
	} else if err != nil {
		return errors.WrapTransient(
			fmt.Errorf("%w: %v", errors.ErrSourceUnavailable, err),
			"SegmentReader", "fill", "chunk read")
	}
	chunk := buf[:n]

	terminator := byte(r.ctx.Delimiters.SegmentTerminator)
	for !r.eof && (len(chunk) == 0 || lastStructural(chunk) != terminator) {
		var single [1]byte
		read, err := r.source.Read(single[:])
		if read == 0 {
			r.eof = true
			break
		}
		if err != nil && err != io.EOF {
			return errors.WrapTransient(
				fmt.Errorf("%w: %v", errors.ErrSourceUnavailable, err),
				"SegmentReader", "fill", "boundary read")
		}
		chunk = append(chunk, single[0])
		if err == io.EOF {
			r.eof = true
		}
	}

	cleaned := strings.NewReplacer("\r", "", "\n", "").Replace(string(chunk))
	cleaned = strings.TrimRight(cleaned, string(terminator))
	if cleaned == "" {
		return nil
	}

	for _, raw := range strings.Split(cleaned, string(terminator)) {
		if raw != "" {
			r.pending = append(r.pending, raw)
		}
	}

	return nil
}

// lastStructural returns the last byte of the chunk ignoring trailing line
// breaks, which transmissions commonly insert after each terminator.
func lastStructural(chunk []byte) byte {
	for i := len(chunk) - 1; i >= 0; i-- {
		if chunk[i] != '\n' && chunk[i] != '\r' {
			return chunk[i]
		}
	}
	return 0
}

// Segments streams every segment in transmission order, invoking fn with
// each record and the session context. The iteration starts from position 0
// regardless of prior reads. Returning an error from fn stops the stream.
func (r *SegmentReader) Segments(fn func(seg x12.Segment, ctx *x12.Context) error) error {
	if err := r.Reset(); err != nil {
		return err
	}

	for {
		seg, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(seg, r.ctx); err != nil {
			return err
		}
	}
}

// Close releases the underlying source and tears down the session context.
func (r *SegmentReader) Close() error {
	err := r.release()
	r.ctx.Reset()
	return err
}

func (r *SegmentReader) release() error {
	r.source = nil
	r.pending = nil
	if r.closer != nil {
		c := r.closer
		r.closer = nil
		if err := c.Close(); err != nil {
			return errors.WrapTransient(err, "SegmentReader", "Close", "source close")
		}
	}
	return nil
}
