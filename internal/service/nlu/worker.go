package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/adapter/queue"
	"github.com/seu-repo/restoran-pos/internal/domain"
	"github.com/seu-repo/restoran-pos/internal/observability/telemetry"
	"github.com/seu-repo/restoran-pos/internal/ports"
)

// WorkerConfig names the subjects the utterance worker reads from and writes to.
type WorkerConfig struct {
	UtteranceSubject string
	DetectionSubject string
	Timeout          time.Duration
}

// Worker interprets utterances arriving on the message queue and publishes the detections.
type Worker struct {
	detector ports.IntentService
	mq       queue.MessageQueue
	cfg      WorkerConfig
	log      *zap.Logger
	now      func() time.Time
}

func NewWorker(detector ports.IntentService, mq queue.MessageQueue, cfg WorkerConfig, log *zap.Logger) *Worker {
	if cfg.UtteranceSubject == "" {
		cfg.UtteranceSubject = queue.SubjectUtterances
	}
	if cfg.DetectionSubject == "" {
		cfg.DetectionSubject = queue.SubjectDetections
	}
	return &Worker{
		detector: detector,
		mq:       mq,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Start subscribes to the utterance subject.
func (w *Worker) Start() error {
	if err := w.mq.Subscribe(w.cfg.UtteranceSubject, w.Handle); err != nil {
		return fmt.Errorf("subscribe %s: %w", w.cfg.UtteranceSubject, err)
	}
	w.log.Info("Utterance worker started",
		zap.String("consume", w.cfg.UtteranceSubject),
		zap.String("publish", w.cfg.DetectionSubject),
	)
	return nil
}

// Handle processes one message. Malformed payloads are dropped; detection and publish
// failures are returned to the queue adapter.
func (w *Worker) Handle(data []byte) error {
	var u domain.Utterance
	if err := json.Unmarshal(data, &u); err != nil || strings.TrimSpace(u.ID) == "" {
		telemetry.UtterancesTotal.WithLabelValues("invalid").Inc()
		w.log.Warn("Dropping invalid utterance payload", zap.ByteString("payload", data), zap.Error(err))
		return nil
	}

	ctx := context.Background()
	if w.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.Timeout)
		defer cancel()
	}

	result, err := w.detector.Detect(ctx, u.Text)
	if err != nil {
		telemetry.UtterancesTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("detect utterance %s: %w", u.ID, err)
	}

	payload, err := json.Marshal(domain.DetectionEvent{
		UtteranceID: u.ID,
		TenantID:    u.TenantID,
		Result:      result,
		DetectedAt:  w.now().Unix(),
	})
	if err != nil {
		telemetry.UtterancesTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("marshal detection %s: %w", u.ID, err)
	}
	if err := w.mq.Publish(w.cfg.DetectionSubject, payload); err != nil {
		telemetry.UtterancesTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("publish detection %s: %w", u.ID, err)
	}

	telemetry.UtterancesTotal.WithLabelValues("processed").Inc()
	return nil
}
