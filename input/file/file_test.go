package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/edistreams/component"
	"github.com/c360/edistreams/config"
	"github.com/c360/edistreams/errors"
	"github.com/c360/edistreams/metric"
	"github.com/c360/edistreams/testutil"
)

func testConfig(sources ...string) config.Config {
	cfg := config.DefaultConfig()
	cfg.Input.Sources = sources
	cfg.Input.Publish = false
	return *cfg
}

func TestInitializeRequiresSources(t *testing.T) {
	in := NewInput(InputDeps{Config: testConfig()})
	err := in.Initialize()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingConfig)
}

func TestInitializeRequiresSubjectWhenPublishing(t *testing.T) {
	cfg := testConfig(testutil.Minimal837)
	cfg.Input.Publish = true
	cfg.Input.Subject = ""

	in := NewInput(InputDeps{Config: cfg})
	assert.ErrorIs(t, in.Initialize(), errors.ErrMissingConfig)
}

func TestProcessInlineTransmission(t *testing.T) {
	in := NewInput(InputDeps{Config: testConfig(testutil.Minimal837)})

	count, err := in.Process(context.Background(), testutil.Minimal837)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestProcessFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claim.837")
	require.NoError(t, os.WriteFile(path, []byte(testutil.Minimal837), 0o600))

	in := NewInput(InputDeps{Config: testConfig(path)})

	count, err := in.Process(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestProcessMultipleTransactionSets(t *testing.T) {
	// Two ST-SE sets in one functional group: the segment after the first
	// SE is the second set's ST, which must reach the next envelope scan.
	in := NewInput(InputDeps{Config: testConfig(testutil.Dual837)})

	count, err := in.Process(context.Background(), testutil.Dual837)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestProcessUnknownTransactionSet(t *testing.T) {
	// A 270 eligibility inquiry has no registered schema.
	in := NewInput(InputDeps{Config: testConfig(testutil.Simple270)})

	_, err := in.Process(context.Background(), testutil.Simple270)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownTransactionSet)
}

func TestProcessRejectsUnreconciledClaim(t *testing.T) {
	bad := testutil.Claim837("500.00", "499.99")
	in := NewInput(InputDeps{Config: testConfig(bad)})

	_, err := in.Process(context.Background(), bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAmountMismatch)
}

func TestProcessRecordsMetrics(t *testing.T) {
	registry := metric.NewRegistry()
	in := NewInput(InputDeps{
		Config:       testConfig(testutil.Minimal837),
		Dependencies: component.Dependencies{MetricsRegistry: registry},
	})

	count, err := in.Process(context.Background(), testutil.Minimal837)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStartProcessesAllSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claim.837")
	require.NoError(t, os.WriteFile(path, []byte(testutil.Minimal837), 0o600))

	in := NewInput(InputDeps{Config: testConfig(testutil.Minimal837, path)})
	require.NoError(t, in.Initialize())
	require.NoError(t, in.Start(context.Background()))
	in.Wait()

	assert.Equal(t, int64(2), in.Processed())
	assert.True(t, in.Health().Healthy)
	require.NoError(t, in.Stop(time.Second))
}

func TestStartContinuesPastFailedSource(t *testing.T) {
	in := NewInput(InputDeps{
		Config: testConfig("GARBAGE DATA", testutil.Minimal837),
	})
	require.NoError(t, in.Initialize())
	require.NoError(t, in.Start(context.Background()))
	in.Wait()

	assert.Equal(t, int64(1), in.Processed())

	health := in.Health()
	assert.False(t, health.Healthy)
	assert.Equal(t, 1, health.ErrorCount)
	assert.NotEmpty(t, health.LastError)
	require.NoError(t, in.Stop(time.Second))
}

func TestLifecycleStateTransitions(t *testing.T) {
	in := NewInput(InputDeps{Config: testConfig(testutil.Minimal837)})

	// Stop before Start is a no-op.
	require.NoError(t, in.Stop(time.Second))

	require.NoError(t, in.Initialize())
	require.NoError(t, in.Start(context.Background()))

	// A second Start does not spawn a second run loop.
	require.NoError(t, in.Start(context.Background()))
	in.Wait()

	assert.Equal(t, int64(1), in.Processed())
	require.NoError(t, in.Stop(time.Second))
	require.NoError(t, in.Stop(time.Second))
}

func TestMetaDescribesComponent(t *testing.T) {
	cfg := testConfig(testutil.Minimal837)
	cfg.Input.Subject = "edi.claims.837"

	in := NewInput(InputDeps{Name: "claims-intake", Config: cfg})
	meta := in.Meta()
	assert.Equal(t, "claims-intake", meta.Name)
	assert.Equal(t, "input", meta.Type)
	assert.Contains(t, meta.Description, "edi.claims.837")
}
