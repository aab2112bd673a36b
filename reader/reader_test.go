package reader

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/edistreams/config"
	"github.com/c360/edistreams/errors"
	"github.com/c360/edistreams/testutil"
	"github.com/c360/edistreams/x12"
)

func collect(t *testing.T, r *SegmentReader) []x12.Segment {
	t.Helper()
	var segments []x12.Segment
	err := r.Segments(func(seg x12.Segment, _ *x12.Context) error {
		segments = append(segments, seg)
		return nil
	})
	require.NoError(t, err)
	return segments
}

func TestNewExtractsDelimiters(t *testing.T) {
	r, err := New(testutil.Simple270, config.DefaultX12Config())
	require.NoError(t, err)
	defer r.Close()

	d := r.Delimiters()
	assert.Equal(t, '*', d.ElementSeparator)
	assert.Equal(t, '^', d.RepetitionSeparator)
	assert.Equal(t, ':', d.ComponentSeparator)
	assert.Equal(t, '~', d.SegmentTerminator)
}

func TestSegmentsInlineOneLine(t *testing.T) {
	r, err := New(testutil.Simple270, config.DefaultX12Config())
	require.NoError(t, err)
	defer r.Close()

	segments := collect(t, r)
	require.Len(t, segments, 21)
	assert.Equal(t, "ISA", segments[0].Name())
	assert.Equal(t, "IEA", segments[20].Name())
	assert.Equal(t, 21, r.Ordinal())
}

func TestSegmentsInlineMultiLine(t *testing.T) {
	r, err := New(testutil.Simple270MultiLine(), config.DefaultX12Config())
	require.NoError(t, err)
	defer r.Close()

	segments := collect(t, r)
	require.Len(t, segments, 21)
	for _, seg := range segments {
		for _, field := range seg {
			assert.NotContains(t, field, "\n")
			assert.NotContains(t, field, "\r")
		}
	}
}

func TestSegmentsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simple.270")
	require.NoError(t, os.WriteFile(path, []byte(testutil.Simple270MultiLine()), 0o600))

	r, err := New(path, config.DefaultX12Config())
	require.NoError(t, err)
	defer r.Close()

	segments := collect(t, r)
	assert.Len(t, segments, 21)
}

func TestTokenizationIsLossless(t *testing.T) {
	r, err := New(testutil.Simple270, config.DefaultX12Config())
	require.NoError(t, err)
	defer r.Close()

	var rebuilt []string
	err = r.Segments(func(seg x12.Segment, ctx *x12.Context) error {
		rebuilt = append(rebuilt, seg.Join(ctx.Delimiters.ElementSeparator))
		return nil
	})
	require.NoError(t, err)

	original := strings.Join(rebuilt, "~") + "~"
	assert.Equal(t, testutil.Simple270, original)
}

func TestRereadIsDeterministic(t *testing.T) {
	r, err := New(testutil.Simple270, config.DefaultX12Config())
	require.NoError(t, err)
	defer r.Close()

	first := collect(t, r)
	second := collect(t, r)
	assert.Equal(t, first, second)
}

func TestSegmentsNeverSplitAcrossChunks(t *testing.T) {
	// Buffer sizes chosen to land chunk boundaries mid-segment.
	for _, size := range []int{107, 110, 128, 255, 1024} {
		cfg := config.DefaultX12Config()
		cfg.ReaderBufferSize = size

		r, err := New(testutil.Simple270, cfg)
		require.NoError(t, err, "buffer size %d", size)

		segments := collect(t, r)
		assert.Len(t, segments, 21, "buffer size %d", size)
		r.Close()
	}
}

func TestLargeTransmissionMultipleChunks(t *testing.T) {
	// Hundreds of claims forces many fill cycles at a small buffer size.
	var b strings.Builder
	b.WriteString(testutil.ISAFixture)
	b.WriteString(testutil.GSFixture)
	for i := 0; i < 300; i++ {
		b.WriteString("ST*837*0001*005010X222A1~")
		b.WriteString("BHT*0019*00*000000001*20200929*1705*CH~")
		b.WriteString("SE*2*0001~")
	}
	b.WriteString("GE*300*1~IEA*1*000000001~")

	cfg := config.DefaultX12Config()
	cfg.ReaderBufferSize = 256

	r, err := New(b.String(), cfg)
	require.NoError(t, err)
	defer r.Close()

	segments := collect(t, r)
	assert.Len(t, segments, 300*3+4)
}

func TestContextCapturesVersionIdentifiers(t *testing.T) {
	r, err := New(testutil.Minimal837, config.DefaultX12Config())
	require.NoError(t, err)
	defer r.Close()

	err = r.Segments(func(_ x12.Segment, _ *x12.Context) error { return nil })
	require.NoError(t, err)

	v := r.Context().Version
	assert.Equal(t, "00501", v.InterchangeControlVersion)
	assert.Equal(t, "HC", v.FunctionalIDCode)
	assert.Equal(t, "005010X222A1", v.FunctionalVersionCode)
	assert.Equal(t, "837", v.TransactionSetCode)
	assert.Equal(t, "00501-HC-005010X222A1-837", v.Key())
}

func TestMalformedInlineInput(t *testing.T) {
	_, err := New("GS*HC*890069730*154663145~", config.DefaultX12Config())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMalformedControlSegment)
	assert.True(t, errors.IsFatal(err))
}

func TestMalformedFileContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.edi")
	content := strings.Repeat("GS*HC*X12*IS~", 20)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := New(path, config.DefaultX12Config())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMalformedControlSegment)
}

func TestTruncatedControlSegment(t *testing.T) {
	_, err := New("ISA*00*          *00~", config.DefaultX12Config())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMalformedControlSegment)
}

func TestMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.edi"), config.DefaultX12Config())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceUnavailable)
	assert.True(t, errors.IsTransient(err))
}

func TestDirectoryInput(t *testing.T) {
	_, err := New(t.TempDir(), config.DefaultX12Config())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceUnavailable)
}

func TestEmptyInput(t *testing.T) {
	_, err := New("", config.DefaultX12Config())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceUnavailable)
}

func TestNextAfterClose(t *testing.T) {
	r, err := New(testutil.Simple270, config.DefaultX12Config())
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = r.Next()
	assert.ErrorIs(t, err, errors.ErrNotStarted)
}

func TestNextStreamsToEOF(t *testing.T) {
	r, err := New(testutil.Simple270, config.DefaultX12Config())
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.Reset())

	count := 0
	for {
		_, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 21, count)

	// Reads past exhaustion stay at EOF.
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}
