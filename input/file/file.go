// Package file provides the input component that reads X12 transmissions
// from files or inline payloads, assembles and validates them, and publishes
// the resulting claim documents to NATS.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/edistreams/assembler"
	"github.com/c360/edistreams/component"
	"github.com/c360/edistreams/config"
	"github.com/c360/edistreams/errors"
	"github.com/c360/edistreams/message"
	"github.com/c360/edistreams/metric"
	"github.com/c360/edistreams/natsclient"
	"github.com/c360/edistreams/pkg/retry"
	"github.com/c360/edistreams/reader"
	"github.com/c360/edistreams/schema"
	"github.com/c360/edistreams/validate"
	"github.com/c360/edistreams/x12"
)

// Metrics holds the component-owned Prometheus metrics.
type Metrics struct {
	sourcesProcessed prometheus.Counter
	sourcesFailed    prometheus.Counter
	publishLatency   prometheus.Histogram
}

func newMetrics(registry *metric.Registry, serviceName string) *Metrics {
	if registry == nil {
		return nil
	}

	m := &Metrics{
		sourcesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edistreams",
			Subsystem: "input_file",
			Name:      "sources_processed_total",
			Help:      "Transmission sources successfully processed",
		}),
		sourcesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edistreams",
			Subsystem: "input_file",
			Name:      "sources_failed_total",
			Help:      "Transmission sources that failed processing",
		}),
		publishLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "edistreams",
			Subsystem: "input_file",
			Name:      "publish_duration_seconds",
			Help:      "Time to publish claim documents to NATS",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
	}

	_ = registry.Register(serviceName, "sources_processed", m.sourcesProcessed)
	_ = registry.Register(serviceName, "sources_failed", m.sourcesFailed)
	_ = registry.Register(serviceName, "publish_latency", m.publishLatency)

	return m
}

// InputDeps bundles everything the input component is constructed with. The
// shared external dependencies come in through component.Dependencies.
type InputDeps struct {
	Name      string
	Config    config.Config
	Validator assembler.Validator
	component.Dependencies
}

// Input reads X12 transmissions, runs them through the reader, assembler,
// and validation stages, and publishes one claim document per transaction.
type Input struct {
	name       string
	cfg        config.Config
	natsClient *natsclient.Client
	schemas    *schema.Registry
	validator  assembler.Validator
	logger     *slog.Logger

	retryConfig retry.Config

	shutdown  chan struct{}
	done      chan struct{}
	state     component.State
	startTime time.Time
	mu        sync.RWMutex
	wg        sync.WaitGroup

	processed atomic.Int64
	failures  atomic.Int64
	lastError atomic.Value // string

	metrics *Metrics
	core    *metric.Metrics
}

var _ component.LifecycleComponent = (*Input)(nil)

// NewInput creates the file input component.
func NewInput(deps InputDeps) *Input {
	name := deps.Name
	if name == "" {
		name = "input-file"
	}

	logger := deps.GetLoggerWithComponent(name)

	schemas := deps.Schemas
	if schemas == nil {
		schemas = schema.Default()
	}

	validator := deps.Validator
	if validator == nil {
		validator = validate.NewEngine()
	}

	var core *metric.Metrics
	if deps.MetricsRegistry != nil {
		core = deps.MetricsRegistry.CoreMetrics()
	}

	in := &Input{
		name:        name,
		cfg:         deps.Config,
		natsClient:  deps.NATSClient,
		schemas:     schemas,
		validator:   validator,
		logger:      logger,
		retryConfig: retry.DefaultConfig(),
		startTime:   time.Now(),
		metrics:     newMetrics(deps.MetricsRegistry, name),
		core:        core,
	}
	in.lastError.Store("")
	return in
}

// Meta returns the component metadata.
func (f *Input) Meta() component.Metadata {
	return component.Metadata{
		Name:        f.name,
		Type:        "input",
		Description: fmt.Sprintf("X12 transmission reader publishing to %s", f.cfg.Input.Subject),
		Version:     "1.0.0",
	}
}

// Health returns the current health status.
func (f *Input) Health() component.HealthStatus {
	lastErr, _ := f.lastError.Load().(string)
	return component.HealthStatus{
		Healthy:    f.failures.Load() == 0,
		LastCheck:  time.Now(),
		ErrorCount: int(f.failures.Load()),
		LastError:  lastErr,
		Uptime:     time.Since(f.startTime),
	}
}

// Initialize validates the component configuration.
func (f *Input) Initialize() error {
	if len(f.cfg.Input.Sources) == 0 {
		return errors.WrapInvalid(errors.ErrMissingConfig,
			"input-file", "Initialize", "no transmission sources configured")
	}
	if f.cfg.Input.Publish {
		if f.cfg.Input.Subject == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig,
				"input-file", "Initialize", "publish enabled without a subject")
		}
		if f.natsClient == nil {
			return errors.WrapInvalid(errors.ErrMissingConfig,
				"input-file", "Initialize", "publish enabled without a NATS client")
		}
	}

	f.mu.Lock()
	f.state = component.StateInitialized
	f.mu.Unlock()
	return nil
}

// Start processes the configured sources on a background goroutine. Each
// source is independent; a failure in one does not stop the others.
func (f *Input) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == component.StateStarted {
		return nil
	}

	f.shutdown = make(chan struct{})
	f.done = make(chan struct{})
	f.state = component.StateStarted
	f.startTime = time.Now()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer close(f.done)
		f.run(ctx)
	}()

	return nil
}

func (f *Input) run(ctx context.Context) {
	for _, source := range f.cfg.Input.Sources {
		select {
		case <-ctx.Done():
			return
		case <-f.shutdown:
			return
		default:
		}

		count, err := f.Process(ctx, source)
		if err != nil {
			f.failures.Add(1)
			f.lastError.Store(err.Error())
			if f.metrics != nil {
				f.metrics.sourcesFailed.Inc()
			}
			if f.core != nil {
				f.core.RecordError(f.name, errors.Classify(err).String())
			}
			f.logger.Error("transmission processing failed",
				"source", sourceLabel(source), "error", err)
			continue
		}

		f.processed.Add(1)
		if f.metrics != nil {
			f.metrics.sourcesProcessed.Inc()
		}
		f.logger.Info("transmission processed",
			"source", sourceLabel(source), "transactions", count)
	}
}

// Process runs one transmission through the full pipeline and returns the
// number of transactions published. The input is inline X12 data or a file
// path; classification happens in the reader.
func (f *Input) Process(ctx context.Context, input string) (int, error) {
	started := time.Now()

	r, err := reader.New(input, f.cfg.X12)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	if err := r.Reset(); err != nil {
		return 0, err
	}

	var src assembler.SegmentSource = r
	count := 0
	for {
		root, asmSrc, err := f.selectSchema(src)
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}

		asm := assembler.New(asmSrc, root, assembler.WithValidator(f.validator))
		tree, err := asm.Assemble()
		versionKey := r.Context().Version.Key()
		if err != nil {
			if f.core != nil {
				f.core.RecordTransactionAssembled(f.name, versionKey, "error")
				if errors.IsInvalid(err) {
					f.core.RecordValidationFailure(f.name, errors.Classify(err).String())
				}
			}
			return count, err
		}

		if f.core != nil {
			f.core.RecordTransactionAssembled(f.name, versionKey, "ok")
		}

		if err := f.publish(ctx, tree, r.Context()); err != nil {
			return count, err
		}
		count++

		// Closing the root pulled one segment past the transaction's end.
		// Hand it to the next envelope scan so a following ST-SE set is
		// not swallowed with the finished assembler.
		if seg, ordinal, ok := asm.Remainder(); ok {
			src = &pushbackSource{buffered: seg, ordinal: ordinal, src: r}
		} else {
			src = r
		}
	}

	if f.core != nil {
		f.core.RecordSegmentsRead(f.name, r.Ordinal())
		f.core.RecordProcessingDuration(f.name, "process", time.Since(started))
	}

	return count, nil
}

// selectSchema consumes envelope segments until it sees the next
// transaction set header, then resolves that set's loop schema. The ST
// segment is handed back so assembly starts from it.
func (f *Input) selectSchema(src assembler.SegmentSource) (*schema.LoopSchema, assembler.SegmentSource, error) {
	for {
		seg, err := src.Next()
		if err != nil {
			return nil, nil, err
		}
		if seg.Name() != x12.SegmentST {
			if x12.IsControlSegment(seg.Name()) {
				continue
			}
			return nil, nil, errors.WrapInvalid(
				fmt.Errorf("%w: unexpected segment %s outside a transaction set",
					errors.ErrStructuralViolation, seg.Name()),
				"input-file", "selectSchema", "envelope scan")
		}

		root, err := f.schemas.Get(seg.Field(f.cfg.X12.STTransactionCode))
		if err != nil {
			return nil, nil, err
		}
		return root, &pushbackSource{buffered: seg, ordinal: src.Ordinal(), src: src}, nil
	}
}

// publish wraps the assembled tree in a claim document message and sends it
// with retry; transient NATS hiccups back off, poisoned payloads fail fast.
func (f *Input) publish(ctx context.Context, tree *assembler.Loop, readCtx *x12.Context) error {
	doc := message.NewClaimDocument(tree, readCtx.Version,
		readCtx.TransactionSetHeader.Field(2))
	msg := message.NewBaseMessage(doc.Schema(), doc, f.name)
	if err := msg.Validate(); err != nil {
		return err
	}

	if !f.cfg.Input.Publish {
		return nil
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return errors.WrapInvalid(err, "input-file", "publish", "message marshal")
	}

	subject := f.cfg.Input.Subject
	started := time.Now()
	err = retry.Do(ctx, f.retryConfig, func() error {
		if f.cfg.NATS.JetStream {
			return f.natsClient.PublishToStream(ctx, subject, data)
		}
		return f.natsClient.Publish(ctx, subject, data)
	})
	if err != nil {
		return err
	}

	if f.metrics != nil {
		f.metrics.publishLatency.Observe(time.Since(started).Seconds())
	}
	if f.core != nil {
		f.core.RecordClaimPublished(f.name, subject)
	}
	return nil
}

// Stop waits for in-flight processing to finish, up to the timeout.
func (f *Input) Stop(timeout time.Duration) error {
	f.mu.Lock()
	if f.state != component.StateStarted {
		f.mu.Unlock()
		return nil
	}
	f.state = component.StateStopped

	if f.shutdown != nil {
		select {
		case <-f.shutdown:
		default:
			close(f.shutdown)
		}
	}
	done := f.done
	f.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-time.After(timeout):
			return errors.WrapTransient(fmt.Errorf("stop timeout after %v", timeout),
				"input-file", "Stop", "graceful shutdown")
		}
	}
	return nil
}

// Wait blocks until background processing completes.
func (f *Input) Wait() {
	f.wg.Wait()
}

// Processed returns the count of successfully processed sources.
func (f *Input) Processed() int64 {
	return f.processed.Load()
}

// sourceLabel keeps inline payloads out of log lines.
func sourceLabel(input string) string {
	if x12.IsData(input) {
		return "<inline>"
	}
	return input
}

// pushbackSource replays the transaction set header consumed during schema
// selection before delegating to the underlying stream.
type pushbackSource struct {
	buffered x12.Segment
	ordinal  int
	src      assembler.SegmentSource
	replayed bool
}

func (p *pushbackSource) Next() (x12.Segment, error) {
	if !p.replayed {
		p.replayed = true
		return p.buffered, nil
	}
	return p.src.Next()
}

func (p *pushbackSource) Ordinal() int {
	if !p.replayed {
		return p.ordinal
	}
	return p.src.Ordinal()
}
