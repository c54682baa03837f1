// Command worker consumes posting batches from NATS, runs the pipeline, and
// fans results out to Neo4j, Qdrant, the trend history, and the report
// subject. Store writes sit behind circuit breakers; batches that keep
// failing go to the DLQ subject.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/LeadScopeAI/leadscope-mvp/engine/batch"
	"github.com/LeadScopeAI/leadscope-mvp/engine/classify"
	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
	"github.com/LeadScopeAI/leadscope-mvp/engine/graph"
	"github.com/LeadScopeAI/leadscope-mvp/engine/semantic"
	"github.com/LeadScopeAI/leadscope-mvp/engine/trend"
	"github.com/LeadScopeAI/leadscope-mvp/pkg/metrics"
	"github.com/LeadScopeAI/leadscope-mvp/pkg/natsutil"
	"github.com/LeadScopeAI/leadscope-mvp/pkg/resilience"
)

const (
	// BatchSubject carries incoming posting batches.
	BatchSubject = "leadscope.batch"
	// ReportSubject carries finished batch reports.
	ReportSubject = "leadscope.report"
	// DLQSubject receives batches that failed repeatedly.
	DLQSubject = "leadscope.batch.dlq"
	// QueueGroup lets multiple workers compete for batches.
	QueueGroup = "leadscope-workers"
	// MaxRetries before a batch goes to the DLQ.
	MaxRetries = 3
)

var met = metrics.New()

var (
	mBatchesTotal    = met.Counter("leadscope_worker_batches_total", "Batches processed")
	mBatchErrors     = met.Counter("leadscope_worker_batch_errors_total", "Batches that failed all retries")
	mMalformedMsgs   = met.Counter("leadscope_worker_malformed_total", "Undecodable NATS messages")
	mPostingsTotal   = met.Counter("leadscope_worker_postings_total", "Postings processed")
	mPostingsSkipped = met.Counter("leadscope_worker_postings_skipped_total", "Postings dropped at validation")
	mFallbacks       = met.Counter("leadscope_worker_fallbacks_total", "Per-label classifier fallbacks with a model loaded")
	mGraphWrites     = met.Counter("leadscope_worker_graph_writes_total", "Neo4j batch writes")
	mVectorWrites    = met.Counter("leadscope_worker_vector_writes_total", "Qdrant profile upserts")
	mDLQTotal        = met.Counter("leadscope_worker_dlq_total", "Batches dead-lettered")
	mBatchDur        = met.Histogram("leadscope_worker_batch_duration_seconds", "End-to-end batch time", nil)
)

// BatchMessage is the wire format on BatchSubject.
type BatchMessage struct {
	BatchID  string           `json:"batch_id,omitempty"`
	Postings []domain.Posting `json:"postings"`
}

func main() {
	var (
		natsURL     = flag.String("nats", nats.DefaultURL, "NATS server URL")
		neo4jURL    = flag.String("neo4j", "neo4j://localhost:7687", "Neo4j bolt URL")
		neo4jUser   = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass   = flag.String("neo4j-pass", "leadscope123", "Neo4j password")
		qdrantAddr  = flag.String("qdrant", "localhost:6334", "Qdrant gRPC address")
		collection  = flag.String("collection", "leadscope-profiles", "Qdrant collection name")
		snapshots   = flag.String("snapshots", "data/trend-history.json", "trend snapshot history file")
		modelPath   = flag.String("model", "", "optional classifier model JSON")
		intakeRate  = flag.Float64("rate", 2, "max batches started per second")
		metricsPort = flag.Int("metrics-port", 9092, "metrics HTTP port")
	)
	flag.Parse()

	met.CollectRuntime("leadscope_worker", 15*time.Second)
	met.ServeAsync(*metricsPort)

	log := slog.Default()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	driver, err := neo4j.NewDriverWithContext(*neo4jURL, neo4j.BasicAuth(*neo4jUser, *neo4jPass, ""))
	if err != nil {
		log.Error("neo4j connect failed", "error", err)
		os.Exit(1)
	}
	defer driver.Close(ctx)
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Error("neo4j verify failed", "error", err)
		os.Exit(1)
	}
	companyGraph := graph.New(driver)
	log.Info("connected to Neo4j")

	profiles, err := semantic.New(*qdrantAddr, *collection)
	if err != nil {
		log.Error("qdrant connect failed", "error", err)
		os.Exit(1)
	}
	defer profiles.Close()
	if err := profiles.EnsureCollection(ctx); err != nil {
		log.Error("qdrant ensure collection failed", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Qdrant", "collection", *collection)

	store, err := trend.NewFileStore(*snapshots)
	if err != nil {
		log.Error("open snapshot store", "error", err)
		os.Exit(1)
	}

	opts := batch.Options{Logger: log}
	if *modelPath != "" {
		model, err := classify.LoadModelFile(*modelPath)
		if err != nil {
			log.Error("load model", "error", err)
			os.Exit(1)
		}
		opts.Model = model
		log.Info("model loaded", "version", model.Version())
	}

	nc, err := nats.Connect(*natsURL, nats.Name("leadscope-worker"))
	if err != nil {
		log.Error("nats connect failed", "error", err)
		os.Exit(1)
	}
	defer nc.Drain()

	w := &worker{
		log:          log,
		nc:           nc,
		graph:        companyGraph,
		profiles:     profiles,
		snapshots:    store,
		opts:         opts,
		limiter:      resilience.NewLimiter(resilience.LimiterOpts{Rate: *intakeRate, Burst: 1}),
		graphBreaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
		vecBreaker:   resilience.NewBreaker(resilience.DefaultBreakerOpts),
	}

	sub, err := natsutil.QueueSubscribe(nc, BatchSubject, QueueGroup, w.handle,
		func(data []byte, err error) {
			mMalformedMsgs.Inc()
			log.Warn("malformed batch message", "error", err, "bytes", len(data))
		})
	if err != nil {
		log.Error("subscribe failed", "error", err)
		os.Exit(1)
	}
	defer sub.Unsubscribe()

	log.Info("worker started", "subject", BatchSubject, "queue", QueueGroup)
	<-ctx.Done()
	log.Info("worker stopping")
}

type worker struct {
	log          *slog.Logger
	nc           *nats.Conn
	graph        *graph.CompanyGraph
	profiles     *semantic.ProfileStore
	snapshots    trend.Store
	opts         batch.Options
	limiter      *resilience.Limiter
	graphBreaker *resilience.Breaker
	vecBreaker   *resilience.Breaker
}

func (w *worker) handle(ctx context.Context, msg BatchMessage) {
	start := time.Now()
	if err := w.limiter.Wait(ctx); err != nil {
		return
	}

	var lastErr error
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		if lastErr = w.process(ctx, msg); lastErr == nil {
			mBatchesTotal.Inc()
			mBatchDur.Since(start)
			return
		}
		w.log.Warn("batch attempt failed", "attempt", attempt, "error", lastErr)
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	mBatchErrors.Inc()
	mDLQTotal.Inc()
	w.log.Error("batch dead-lettered", "error", lastErr, "postings", len(msg.Postings))
	if err := natsutil.Publish(ctx, w.nc, DLQSubject, msg); err != nil {
		w.log.Error("dlq publish failed", "error", err)
	}
}

func (w *worker) process(ctx context.Context, msg BatchMessage) error {
	report, err := batch.Run(ctx, msg.Postings, w.opts)
	if err != nil {
		return err
	}
	mPostingsTotal.Add(int64(len(report.Postings)))
	mPostingsSkipped.Add(int64(report.Diagnostics.Skipped))
	mFallbacks.Add(int64(report.Diagnostics.UrgencyFallbacks + report.Diagnostics.TechFallbacks))

	if err := w.graphBreaker.Call(ctx, func(ctx context.Context) error {
		return w.graph.SaveBatch(ctx, report.BatchID, report.Profiles, report.Scores)
	}); err != nil {
		return err
	}
	mGraphWrites.Inc()

	if err := w.vecBreaker.Call(ctx, func(ctx context.Context) error {
		return w.profiles.UpsertProfiles(ctx, report.BatchID, report.Profiles, report.Scores)
	}); err != nil {
		return err
	}
	mVectorWrites.Inc()

	if err := w.snapshots.Append(ctx, batch.SnapshotFrom(report)); err != nil {
		return err
	}
	return natsutil.Publish(ctx, w.nc, ReportSubject, report)
}
