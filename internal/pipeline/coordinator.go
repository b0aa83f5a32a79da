package pipeline

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"solana-launch-monitor/internal/classify"
	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/filter"
	"solana-launch-monitor/internal/listing"
	"solana-launch-monitor/internal/observability"
	"solana-launch-monitor/internal/raydium"
	"solana-launch-monitor/internal/scan"
	"solana-launch-monitor/internal/stream"
)

// Notifier is the external collaborator receiving accepted events. It
// owns human-readable formatting and delivery retries.
type Notifier interface {
	// Notify is called exactly once per accepted candidate event.
	Notify(ctx context.Context, event domain.CandidateEvent) error

	// MonitoringHalted is called at most once, when the stream manager
	// has exhausted its reconnect budget and monitoring has stopped.
	MonitoringHalted(ctx context.Context)
}

// streamRunner is the subset of the stream manager the coordinator uses.
type streamRunner interface {
	Run(ctx context.Context, onMessage func([]byte)) error
	Send(payload []byte) error
}

// poolScanner is the subset of the scanner the coordinator uses.
type poolScanner interface {
	Scan(ctx context.Context, programID string, pageSize, maxRecords int) ([]scan.Result, error)
}

// listingFetcher is the subset of the listing client the coordinator uses.
type listingFetcher interface {
	FetchLatest(ctx context.Context) ([]listing.Token, error)
}

// enricher resolves classified stream events into normalized records.
type enricher interface {
	TokenFromTransaction(ctx context.Context, signature string) (*domain.TokenRecord, error)
}

// streamEventBuffer bounds the classifier-to-enrichment handoff. The read
// loop never performs network calls; enrichment runs on its own worker.
const streamEventBuffer = 1024

// Coordinator runs the stream (primary) and the two pollers (secondary),
// routes everything through the dedup and filter gates, and emits each
// accepted record exactly once.
type Coordinator struct {
	runtime    *Runtime
	stream     streamRunner
	classifier *classify.Classifier
	enrich     enricher
	scanner    poolScanner
	listings   listingFetcher // nil disables the listing poller
	notifier   Notifier
	logger     *log.Logger

	scanProgram string

	haltedOnce sync.Once
	now        func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithListingClient enables the HTTP listing poller.
func WithListingClient(c listingFetcher) Option {
	return func(co *Coordinator) { co.listings = c }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(co *Coordinator) { co.logger = l }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(co *Coordinator) { co.now = now }
}

// WithScanProgram overrides the program scanned by the fallback poller.
// Defaults to the Raydium AMM v4 program.
func WithScanProgram(programID string) Option {
	return func(co *Coordinator) { co.scanProgram = programID }
}

// NewCoordinator wires the pipeline together.
func NewCoordinator(
	runtime *Runtime,
	sm streamRunner,
	classifier *classify.Classifier,
	en enricher,
	scanner poolScanner,
	notifier Notifier,
	opts ...Option,
) *Coordinator {
	c := &Coordinator{
		runtime:     runtime,
		stream:      sm,
		classifier:  classifier,
		enrich:      en,
		scanner:     scanner,
		notifier:    notifier,
		logger:      log.Default(),
		scanProgram: raydium.AMMV4Program,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run blocks until ctx is cancelled. The stream path, the scan poller and
// the listing poller run concurrently; all share the dedup tracker and
// the filter config snapshot through the Runtime.
func (c *Coordinator) Run(ctx context.Context) error {
	events := make(chan classify.Result, streamEventBuffer)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.runStream(ctx, events)
		close(events)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.consumeStreamEvents(ctx, events)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.runScanPoller(ctx)
	}()

	if c.listings != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.runListingPoller(ctx)
		}()
	}

	wg.Wait()
	return ctx.Err()
}

// runStream drives the subscription and classifies inbound payloads
// synchronously. Classified events are handed to the enrichment worker;
// the read loop itself never touches the network.
func (c *Coordinator) runStream(ctx context.Context, events chan<- classify.Result) {
	err := c.stream.Run(ctx, func(raw []byte) {
		observability.RecordMessageReceived()

		res, err := c.classifier.Classify(raw)
		if err != nil {
			observability.RecordParseError()
			c.logger.Printf("[pipeline] dropping message: %v", err)
			return
		}

		if res.Reply != nil {
			if err := c.stream.Send(res.Reply); err != nil {
				c.logger.Printf("[pipeline] pong failed: %v", err)
			}
		}

		if res.Ignored() {
			return
		}
		observability.RecordEventClassified(res.Kind.String())

		select {
		case events <- res:
		default:
			// Enrichment is behind; dropping is preferable to stalling
			// the read loop.
			c.logger.Printf("[pipeline] event buffer full, dropping %s", res.Signature)
		}
	})

	if errors.Is(err, stream.ErrExhausted) {
		c.markHalted(ctx)
	}
}

// consumeStreamEvents enriches classified events and pushes them through
// the gates. Enrichment failures degrade to the bare event.
func (c *Coordinator) consumeStreamEvents(ctx context.Context, events <-chan classify.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-events:
			if !ok {
				return
			}
			if res.Signature == "" {
				continue
			}

			rec, err := c.enrich.TokenFromTransaction(ctx, res.Signature)
			if err != nil {
				c.logger.Printf("[pipeline] enrich %s: %v", res.Signature, err)
			}

			c.process(ctx, domain.CandidateEvent{
				Kind:   res.Kind,
				ID:     res.Signature,
				Source: domain.SourceTokenLogs,
				Record: rec,
			})
		}
	}
}

// runScanPoller runs the fallback full scan on a fixed timer.
func (c *Coordinator) runScanPoller(ctx context.Context) {
	interval := c.runtime.Tuning.PollInterval
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.scanOnce(ctx)
		}
	}
}

func (c *Coordinator) scanOnce(ctx context.Context) {
	tuning := c.runtime.Tuning
	results, err := c.scanner.Scan(ctx, c.scanProgram, tuning.ScanPageSize, tuning.ScanMaxRecords)
	observability.RecordScanRun(len(results), err)
	if err != nil {
		c.logger.Printf("[pipeline] scan failed: %v", err)
	}

	for _, r := range results {
		c.process(ctx, domain.CandidateEvent{
			Kind:   domain.KindNewPoolLiquidity,
			ID:     r.Pubkey,
			Source: domain.SourcePoolScan,
			Record: classify.PoolRecord(r.Pubkey, r.State),
		})
	}
}

// runListingPoller polls the HTTP listing feed on a fixed timer.
func (c *Coordinator) runListingPoller(ctx context.Context) {
	interval := c.runtime.Tuning.PollInterval
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.pollListingsOnce(ctx)
		}
	}
}

func (c *Coordinator) pollListingsOnce(ctx context.Context) {
	tokens, err := c.listings.FetchLatest(ctx)
	observability.RecordListingPoll(err)
	if err != nil {
		c.logger.Printf("[pipeline] listing poll failed: %v", err)
		return
	}

	for _, t := range tokens {
		rec := listing.ToRecord(t)
		if rec.Mint == "" {
			continue
		}
		c.process(ctx, domain.CandidateEvent{
			Kind:   domain.KindGenericTokenUpdate,
			ID:     rec.Mint,
			Source: domain.SourceListingPoll,
			Record: rec,
		})
	}
}

// process pushes one candidate through the dedup gate, then the filter
// gate, and emits it to the notifier when both pass. Dedup marks before
// notifying, so two racing paths cannot emit the same identifier twice.
func (c *Coordinator) process(ctx context.Context, event domain.CandidateEvent) {
	if event.ID == "" {
		return
	}

	if c.runtime.Tracker.CheckAndMark(event.ID) {
		observability.RecordCandidateDeduped()
		return
	}
	observability.UpdateDedupSize(c.runtime.Tracker.Len())

	// Stream events that could not be enriched carry no record; there is
	// nothing for the filter to evaluate, so they pass through.
	if event.Record != nil {
		if !filter.Passes(event.Record, c.runtime.FilterConfig(), c.now()) {
			observability.RecordCandidateFiltered()
			return
		}
	}

	event.AlertID = uuid.NewString()
	event.ObservedAt = c.now().UnixMilli()

	if err := c.notifier.Notify(ctx, event); err != nil {
		c.logger.Printf("[pipeline] notify %s: %v", event.ID, err)
		return
	}
	observability.RecordCandidateEmitted(event.Source.String())
}

// markHalted reports retry exhaustion exactly once.
func (c *Coordinator) markHalted(ctx context.Context) {
	c.haltedOnce.Do(func() {
		observability.RecordMonitoringHalted()
		c.logger.Printf("[pipeline] monitoring halted: reconnect attempts exhausted")
		c.notifier.MonitoringHalted(ctx)
	})
}
