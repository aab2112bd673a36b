package x12

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/edistreams/config"
)

func TestDelimitersValidate(t *testing.T) {
	valid := Delimiters{
		ElementSeparator:    '*',
		ComponentSeparator:  ':',
		RepetitionSeparator: '^',
		SegmentTerminator:   '~',
	}
	assert.NoError(t, valid.Validate())
	assert.True(t, valid.IsSet())

	t.Run("unset", func(t *testing.T) {
		var d Delimiters
		assert.Error(t, d.Validate())
		assert.False(t, d.IsSet())
	})

	t.Run("duplicate", func(t *testing.T) {
		d := valid
		d.ComponentSeparator = '*'
		assert.Error(t, d.Validate())
	})

	t.Run("whitespace", func(t *testing.T) {
		d := valid
		d.RepetitionSeparator = ' '
		assert.Error(t, d.Validate())
	})
}

func TestSegmentName(t *testing.T) {
	assert.Equal(t, "CLM", Segment{"clm", "PATIENT1", "500.00"}.Name())
	assert.Equal(t, "", Segment{}.Name())
}

func TestSegmentField(t *testing.T) {
	seg := Segment{"DTP", "431", "D8", "20050214"}
	assert.Equal(t, "431", seg.Field(1))
	assert.Equal(t, "", seg.Field(10))
	assert.Equal(t, "", seg.Field(-1))
}

func TestSegmentJoin(t *testing.T) {
	seg := Segment{"NM1", "PR", "2", "PAYER C"}
	assert.Equal(t, "NM1*PR*2*PAYER C", seg.Join('*'))
}

func TestIsControlSegment(t *testing.T) {
	for _, name := range []string{"ISA", "GS", "ST", "SE", "GE", "IEA", "isa"} {
		assert.True(t, IsControlSegment(name), name)
	}
	assert.False(t, IsControlSegment("CLM"))
	assert.False(t, IsControlSegment(""))
}

func TestVersionIdentifiersKey(t *testing.T) {
	v := VersionIdentifiers{
		InterchangeControlVersion: "00501",
		FunctionalIDCode:          "HS",
		FunctionalVersionCode:     "005010X279A1",
		TransactionSetCode:        "270",
	}
	assert.Equal(t, "00501-HS-005010X279A1-270", v.Key())
}

func TestContextUpdate(t *testing.T) {
	x12cfg := config.DefaultX12Config()
	ctx := NewContext()

	isa := Segment{"ISA", "03", "9876543210", "01", "9876543210", "30",
		"000000005      ", "30", "12345          ", "131031", "1147", "^",
		"00501", "000000907", "1", "T", ":"}
	ctx.Update(isa, x12cfg)

	assert.Equal(t, "ISA", ctx.CurrentSegmentName)
	assert.Equal(t, "00501", ctx.Version.InterchangeControlVersion)
	assert.Equal(t, isa, ctx.InterchangeHeader)

	gs := Segment{"GS", "HS", "000000005", "54321", "20131031", "1147", "1", "X", "005010X279A1"}
	ctx.Update(gs, x12cfg)

	assert.Equal(t, "GS", ctx.CurrentSegmentName)
	assert.Equal(t, "ISA", ctx.PreviousSegmentName)
	assert.Equal(t, "HS", ctx.Version.FunctionalIDCode)
	assert.Equal(t, "005010X279A1", ctx.Version.FunctionalVersionCode)

	st := Segment{"ST", "270", "0001", "005010X279A1"}
	ctx.Update(st, x12cfg)

	assert.Equal(t, "270", ctx.Version.TransactionSetCode)
	assert.Equal(t, "00501-HS-005010X279A1-270", ctx.Version.Key())
}

func TestContextReset(t *testing.T) {
	ctx := NewContext()
	ctx.Update(Segment{"ST", "837", "0001"}, config.DefaultX12Config())
	require.NotEmpty(t, ctx.CurrentSegmentName)

	ctx.Reset()
	assert.Empty(t, ctx.CurrentSegmentName)
	assert.Empty(t, ctx.Version.TransactionSetCode)
	assert.Nil(t, ctx.TransactionSetHeader)
}

func TestIsData(t *testing.T) {
	assert.True(t, IsData("ISA*00*..."))
	assert.False(t, IsData("GS*HS*..."))
	assert.False(t, IsData(""))
}

func TestIsFile(t *testing.T) {
	length := config.DefaultX12Config().ISASegmentLength

	t.Run("x12 file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "claim.x12")
		require.NoError(t, os.WriteFile(path, []byte("ISA*00*rest of interchange"), 0o600))
		assert.True(t, IsFile(path, length))
	})

	t.Run("non x12 file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))
		assert.False(t, IsFile(path, length))
	})

	t.Run("directory", func(t *testing.T) {
		assert.False(t, IsFile(t.TempDir(), length))
	})

	t.Run("missing", func(t *testing.T) {
		assert.False(t, IsFile("/no/such/file.x12", length))
	})

	t.Run("empty path", func(t *testing.T) {
		assert.False(t, IsFile("", length))
	})
}
