package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvrelay/internal/logging"
	"github.com/JonMunkholm/csvrelay/internal/metrics"
)

// DefaultRowLimit is the row limit used when none is configured.
const DefaultRowLimit = 1000

// acceptedContentTypes lists the media types treated as CSV.
var acceptedContentTypes = map[string]bool{
	"text/csv":        true,
	"text/plain":      true,
	"application/csv": true,
}

// Options holds the immutable settings shared by every upload.
type Options struct {
	RowLimit      int
	LimitMode     LimitMode
	MaxConcurrent int
	MaxWait       time.Duration
}

// OutcomeRecord is the audit summary of one upload. It never carries row data.
type OutcomeRecord struct {
	UploadID  string
	FileName  string
	State     State
	ErrorKind string
	ErrorCode string
	Message   string
	Accepted  int
	Forwarded int
	FailedRow int
	ClientIP  string
	UserAgent string
	Duration  time.Duration
}

// Recorder stores upload outcomes.
type Recorder interface {
	Record(ctx context.Context, rec OutcomeRecord) error
}

// Service runs uploads. It is safe for concurrent use; uploads share only
// the read-only Options and the collaborators passed to NewService.
type Service struct {
	opts       Options
	dispatcher *Dispatcher
	notifier   *OutcomeNotifier
	recorder   Recorder
	uploads    *UploadLimiter
}

// NewService creates a Service. recorder and mailer may be nil.
func NewService(opts Options, sink Sink, mailer Mailer, recorder Recorder) (*Service, error) {
	if sink == nil {
		return nil, errors.New("sink is required")
	}
	if opts.RowLimit <= 0 {
		opts.RowLimit = DefaultRowLimit
	}
	mode, err := ParseLimitMode(string(opts.LimitMode))
	if err != nil {
		return nil, err
	}
	opts.LimitMode = mode

	return &Service{
		opts:       opts,
		dispatcher: NewDispatcher(sink),
		notifier:   NewOutcomeNotifier(mailer),
		recorder:   recorder,
		uploads:    NewUploadLimiter(opts.MaxConcurrent, opts.MaxWait),
	}, nil
}

// Options returns the service settings.
func (s *Service) Options() Options {
	return s.opts
}

// Process validates and forwards one upload. On rejection the returned error
// is a *Error (or ErrTooManyUploads / a context error) and Result still
// describes how far the upload got.
func (s *Service) Process(ctx context.Context, up Upload) (Result, error) {
	start := time.Now()
	id := uuid.NewString()
	logger := logging.WithFields(ctx, "upload_id", id, "file", up.FileName)

	res := Result{UploadID: id, FileName: up.FileName, State: StateAwaitingInput}

	err := s.process(ctx, up, &res, logger)
	res.Duration = time.Since(start)

	metrics.ObserveUpload(outcomeLabel(err), res.Duration)
	s.record(ctx, res, err)

	if err != nil {
		return res, err
	}
	logger.Info("upload accepted", "rows", res.Forwarded, "duration_ms", res.Duration.Milliseconds())
	return res, nil
}

func (s *Service) process(ctx context.Context, up Upload, res *Result, logger *slog.Logger) error {
	if !isCSVContentType(up.ContentType) {
		res.State = StateRejected
		return &Error{Kind: KindUnsupportedFormat}
	}
	if up.Size == 0 || up.Body == nil {
		res.State = StateRejected
		return &Error{Kind: KindEmptyFile}
	}

	if err := s.uploads.Acquire(ctx); err != nil {
		res.State = StateRejected
		return err
	}
	defer s.uploads.Release()

	p := NewPipeline(
		NewRowLimiter(s.opts.RowLimit, s.opts.LimitMode),
		s.dispatcher,
		s.notifier,
		logger,
	)
	err := p.Run(ctx, up.Body)

	outcome := p.Outcome()
	res.State = p.State()
	res.Accepted = len(p.Batch())
	res.Forwarded = outcome.Sent
	res.FailedRow = outcome.FailedRow
	return err
}

// record writes the audit row. Failures are logged only.
func (s *Service) record(ctx context.Context, res Result, err error) {
	if s.recorder == nil {
		return
	}

	rec := OutcomeRecord{
		UploadID:  res.UploadID,
		FileName:  res.FileName,
		State:     res.State,
		Accepted:  res.Accepted,
		Forwarded: res.Forwarded,
		FailedRow: res.FailedRow,
		ClientIP:  ClientIPFromContext(ctx),
		UserAgent: UserAgentFromContext(ctx),
		Duration:  res.Duration,
	}
	if err != nil {
		msg := MapError(err)
		rec.ErrorKind = KindOf(err).String()
		rec.ErrorCode = msg.Code
		rec.Message = msg.Message
	}

	if rerr := s.recorder.Record(context.WithoutCancel(ctx), rec); rerr != nil {
		logging.FromContext(ctx).Warn("failed to record upload outcome",
			"upload_id", res.UploadID,
			"error", fmt.Errorf("record outcome: %w", rerr),
		)
	}
}

// UploadLimiterStatus reports current upload concurrency.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.uploads.Status()
}

// WaitForUploads blocks until in-flight uploads finish or ctx ends.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.uploads.WaitForDrain(ctx)
}

func isCSVContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return acceptedContentTypes[strings.ToLower(mediaType)]
}

func outcomeLabel(err error) string {
	if err == nil {
		return "accepted"
	}
	kind := KindOf(err)
	if kind == KindUnknown {
		return "error"
	}
	return strings.TrimSuffix(kind.String(), "Error")
}
