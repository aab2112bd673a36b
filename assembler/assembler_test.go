package assembler_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/edistreams/assembler"
	"github.com/c360/edistreams/config"
	"github.com/c360/edistreams/errors"
	"github.com/c360/edistreams/reader"
	"github.com/c360/edistreams/schema"
	"github.com/c360/edistreams/testutil"
	"github.com/c360/edistreams/x12"
)

// sliceSource feeds pre-tokenized segments, for tests that do not need the
// reader in the path.
type sliceSource struct {
	segments []x12.Segment
	pos      int
}

func (s *sliceSource) Next() (x12.Segment, error) {
	if s.pos >= len(s.segments) {
		return nil, io.EOF
	}
	seg := s.segments[s.pos]
	s.pos++
	return seg, nil
}

func (s *sliceSource) Ordinal() int { return s.pos }

func sourceFor(t *testing.T, transmission string) *reader.SegmentReader {
	t.Helper()
	r, err := reader.New(transmission, config.DefaultX12Config())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	require.NoError(t, r.Reset())
	return r
}

func TestAssembleMinimalClaim(t *testing.T) {
	src := sourceFor(t, testutil.Minimal837)
	a := assembler.New(src, schema.Professional837())

	root, err := a.Assemble()
	require.NoError(t, err)

	require.Len(t, root.Children, 5)
	assert.Equal(t, "HEADER", root.Children[0].ID)
	assert.Equal(t, "1000A", root.Children[1].ID)
	assert.Equal(t, "1000B", root.Children[2].ID)
	assert.Equal(t, "2000A", root.Children[3].ID)
	assert.Equal(t, "FOOTER", root.Children[4].ID)

	billing := root.Children[3]
	require.Len(t, billing.Children, 2)
	assert.Equal(t, "2010AA", billing.Children[0].ID)

	subscriber := billing.Children[1]
	require.Equal(t, "2000B", subscriber.ID)
	require.Len(t, subscriber.Children, 3)
	assert.Equal(t, "2010BA", subscriber.Children[0].ID)
	assert.Equal(t, "2010BC", subscriber.Children[1].ID)

	claim := subscriber.Children[2]
	require.Equal(t, "2300", claim.ID)
	clm, ok := claim.First("CLM")
	require.True(t, ok)
	assert.Equal(t, "100.00", clm.Field(2))

	lines := claim.ChildrenByID("2400")
	require.Len(t, lines, 1)
	sv1, ok := lines[0].First("SV1")
	require.True(t, ok)
	assert.Equal(t, "100.00", sv1.Field(2))
}

func TestAssembleSkipsEnvelopeSegments(t *testing.T) {
	src := sourceFor(t, testutil.Minimal837)
	a := assembler.New(src, schema.Professional837())

	root, err := a.Assemble()
	require.NoError(t, err)

	for _, loop := range root.Descendants("HEADER") {
		for _, seg := range loop.Segments {
			assert.NotEqual(t, "ISA", seg.Name())
			assert.NotEqual(t, "GS", seg.Name())
		}
	}

	// A second Assemble drains the trailers and reports end of stream.
	_, err = a.Assemble()
	assert.Equal(t, io.EOF, err)
}

func TestAssembleConsecutiveTransactionSets(t *testing.T) {
	src := sourceFor(t, testutil.Dual837)
	a := assembler.New(src, schema.Professional837())

	first, err := a.Assemble()
	require.NoError(t, err)
	st, ok := first.Children[0].First("ST")
	require.True(t, ok)
	assert.Equal(t, "0001", st.Field(2))

	// Closing the first root leaves the second set's ST as the remainder.
	seg, ordinal, ok := a.Remainder()
	require.True(t, ok)
	assert.Equal(t, "ST", seg.Name())
	assert.Equal(t, 20, ordinal)

	second, err := a.Assemble()
	require.NoError(t, err)
	st, ok = second.Children[0].First("ST")
	require.True(t, ok)
	assert.Equal(t, "0002", st.Field(2))

	_, err = a.Assemble()
	assert.Equal(t, io.EOF, err)
	_, _, ok = a.Remainder()
	assert.False(t, ok)
}

func TestAssembleEmptyStream(t *testing.T) {
	a := assembler.New(&sliceSource{}, schema.Professional837())
	_, err := a.Assemble()
	assert.Equal(t, io.EOF, err)
}

func TestAssembleEnvelopeOnly(t *testing.T) {
	src := &sliceSource{segments: []x12.Segment{
		{"ISA", "00"},
		{"GS", "HC"},
		{"GE", "0", "1"},
		{"IEA", "1", "000000001"},
	}}
	a := assembler.New(src, schema.Professional837())
	_, err := a.Assemble()
	assert.Equal(t, io.EOF, err)
}

// submitterRepeats builds a transmission whose 1000A loop carries the given
// number of PER segments. The loop allows one or two.
func submitterRepeats(perCount int) string {
	var b strings.Builder
	b.WriteString(testutil.ISAFixture)
	b.WriteString(testutil.GSFixture)
	b.WriteString("ST*837*0001*005010X222A1~")
	b.WriteString("BHT*0019*00*000000001*20200929*1705*CH~")
	b.WriteString("NM1*41*2*SUBMITTER INC*****46*123456789~")
	for i := 0; i < perCount; i++ {
		b.WriteString("PER*IC*JANE SMITH*TE*5551234567~")
	}
	b.WriteString("NM1*40*2*RECEIVER CORP*****46*987654321~")
	b.WriteString("HL*1**20*1~")
	b.WriteString("NM1*85*2*GOOD CLINIC*****XX*1122334455~")
	b.WriteString("N3*400 HEALTH WAY~")
	b.WriteString("N4*SAN MATEO*CA*94401~")
	b.WriteString("HL*2*1*22*0~")
	b.WriteString("SBR*P*18*******CI~")
	b.WriteString("NM1*IL*1*DOE*JOHN****MI*00000000001~")
	b.WriteString("NM1*PR*2*PAYER C*****PI*12345~")
	b.WriteString("CLM*PATIENT1*100.00***11:B:1*Y*A*Y*Y~")
	b.WriteString("LX*1~")
	b.WriteString("SV1*HC:99213*100.00*UN*1***1~")
	b.WriteString("SE*15*0001~")
	b.WriteString("GE*1*1~IEA*1*000000001~")
	return b.String()
}

func TestRepeatBoundsOnMemberSegments(t *testing.T) {
	t.Run("zero occurrences of a required repeat fails", func(t *testing.T) {
		src := sourceFor(t, submitterRepeats(0))
		_, err := assembler.New(src, schema.Professional837()).Assemble()
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrStructuralViolation)
		assert.Contains(t, err.Error(), "1000A")
	})

	t.Run("one occurrence passes", func(t *testing.T) {
		src := sourceFor(t, submitterRepeats(1))
		_, err := assembler.New(src, schema.Professional837()).Assemble()
		assert.NoError(t, err)
	})

	t.Run("two occurrences pass", func(t *testing.T) {
		src := sourceFor(t, submitterRepeats(2))
		_, err := assembler.New(src, schema.Professional837()).Assemble()
		assert.NoError(t, err)
	})

	t.Run("three occurrences exceed the bound", func(t *testing.T) {
		src := sourceFor(t, submitterRepeats(3))
		_, err := assembler.New(src, schema.Professional837()).Assemble()
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrStructuralViolation)
	})
}

func TestMissingRequiredSegment(t *testing.T) {
	// BHT removed from the header.
	transmission := strings.Replace(testutil.Minimal837,
		"BHT*0019*00*000000001*20200929*1705*CH~", "", 1)

	src := sourceFor(t, transmission)
	_, err := assembler.New(src, schema.Professional837()).Assemble()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrStructuralViolation)
	assert.Contains(t, err.Error(), "HEADER")
	assert.Contains(t, err.Error(), "BHT")
}

func TestMissingRequiredLoop(t *testing.T) {
	// Receiver name loop removed.
	transmission := strings.Replace(testutil.Minimal837,
		"NM1*40*2*RECEIVER CORP*****46*987654321~", "", 1)

	src := sourceFor(t, transmission)
	_, err := assembler.New(src, schema.Professional837()).Assemble()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrStructuralViolation)
	assert.Contains(t, err.Error(), "1000B")
}

func TestViolationCarriesOrdinal(t *testing.T) {
	src := sourceFor(t, submitterRepeats(3))
	_, err := assembler.New(src, schema.Professional837()).Assemble()
	require.Error(t, err)

	// The third PER is segment 6: ISA GS ST BHT NM1 PER PER PER...; the
	// violation is detected when it cannot be placed, at position 8.
	assert.Contains(t, err.Error(), "position 8")
}

func TestMultipleServiceLines(t *testing.T) {
	src := sourceFor(t, testutil.Claim837("150.00", "100.00", "50.00"))
	root, err := assembler.New(src, schema.Professional837()).Assemble()
	require.NoError(t, err)

	lines := root.Descendants("2400")
	require.Len(t, lines, 2)
	first, ok := lines[0].First("LX")
	require.True(t, ok)
	assert.Equal(t, "1", first.Field(1))
	second, ok := lines[1].First("LX")
	require.True(t, ok)
	assert.Equal(t, "2", second.Field(1))
}

// recordingValidator captures every loop closure it sees.
type recordingValidator struct {
	closed []string
	fail   error
}

func (v *recordingValidator) LoopClosed(loop *assembler.Loop, entry *schema.LoopSchema, ordinal int) error {
	v.closed = append(v.closed, loop.ID)
	return v.fail
}

func TestValidatorSeesEveryLoopClosure(t *testing.T) {
	src := sourceFor(t, testutil.Minimal837)
	v := &recordingValidator{}

	_, err := assembler.New(src, schema.Professional837(),
		assembler.WithValidator(v)).Assemble()
	require.NoError(t, err)

	// Inner loops close before the loops containing them.
	assert.Equal(t, []string{
		"HEADER", "1000A", "1000B",
		"2010AA", "2010BA", "2010BC", "2400", "2300", "2000B", "2000A",
		"FOOTER", "837",
	}, v.closed)
}

func TestValidatorFailureStopsAssembly(t *testing.T) {
	src := sourceFor(t, testutil.Minimal837)
	sentinel := errors.WrapInvalid(errors.ErrDuplicateQualifier, "Engine", "LoopClosed", "test")

	_, err := assembler.New(src, schema.Professional837(),
		assembler.WithValidator(&recordingValidator{fail: sentinel})).Assemble()
	assert.ErrorIs(t, err, errors.ErrDuplicateQualifier)
}
