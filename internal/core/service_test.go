package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeRecorder struct {
	mu   sync.Mutex
	recs []OutcomeRecord
	err  error
}

func (r *fakeRecorder) Record(_ context.Context, rec OutcomeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
	return r.err
}

func newTestService(t *testing.T, sink Sink, rec Recorder) *Service {
	t.Helper()
	svc, err := NewService(Options{RowLimit: 10, MaxConcurrent: 1, MaxWait: 50 * time.Millisecond}, sink, nil, rec)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func csvUpload(content string) Upload {
	return Upload{
		FileName:    "students.csv",
		ContentType: "text/csv",
		Size:        int64(len(content)),
		Body:        strings.NewReader(content),
	}
}

func TestNewService_Validation(t *testing.T) {
	if _, err := NewService(Options{}, nil, nil, nil); err == nil {
		t.Error("NewService() without sink should fail")
	}
	if _, err := NewService(Options{LimitMode: "sideways"}, &fakeSink{}, nil, nil); err == nil {
		t.Error("NewService() with bad mode should fail")
	}

	svc, err := NewService(Options{}, &fakeSink{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if opts := svc.Options(); opts.RowLimit != DefaultRowLimit || opts.LimitMode != LimitInclusive {
		t.Errorf("defaults = %+v", opts)
	}
}

func TestService_Process(t *testing.T) {
	sink := &fakeSink{}
	rec := &fakeRecorder{}
	svc := newTestService(t, sink, rec)

	ctx := ContextWithClient(context.Background(), "192.0.2.1", "curl/8")
	res, err := svc.Process(ctx, csvUpload(testHeader+testRows(2)))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if res.State != StateAccepted || res.Accepted != 2 || res.Forwarded != 2 || res.FailedRow != 0 {
		t.Errorf("result = %+v", res)
	}
	if res.UploadID == "" {
		t.Error("UploadID is empty")
	}

	if len(rec.recs) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(rec.recs))
	}
	got := rec.recs[0]
	if got.UploadID != res.UploadID || got.State != StateAccepted || got.ClientIP != "192.0.2.1" || got.UserAgent != "curl/8" {
		t.Errorf("audit row = %+v", got)
	}
	if got.ErrorCode != "" {
		t.Errorf("ErrorCode = %q, want empty on success", got.ErrorCode)
	}
}

func TestService_PreflightRejections(t *testing.T) {
	tests := []struct {
		name string
		up   Upload
		want error
	}{
		{
			name: "json content type",
			up:   Upload{ContentType: "application/json", Size: 10, Body: strings.NewReader("{}")},
			want: ErrUnsupportedFormat,
		},
		{
			name: "missing content type",
			up:   Upload{Size: 10, Body: strings.NewReader("a")},
			want: ErrUnsupportedFormat,
		},
		{
			name: "zero bytes",
			up:   Upload{ContentType: "text/csv", Size: 0, Body: strings.NewReader("")},
			want: ErrEmptyFile,
		},
		{
			name: "nil body",
			up:   Upload{ContentType: "text/csv; charset=utf-8", Size: 5},
			want: ErrEmptyFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{}
			rec := &fakeRecorder{}
			svc := newTestService(t, sink, rec)

			res, err := svc.Process(context.Background(), tt.up)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Process() error = %v, want %v", err, tt.want)
			}
			if res.State != StateRejected {
				t.Errorf("state = %s, want rejected", res.State)
			}
			if sink.calls != 0 {
				t.Errorf("sink calls = %d, want 0", sink.calls)
			}
			if len(rec.recs) != 1 || rec.recs[0].ErrorCode == "" {
				t.Errorf("audit rows = %+v", rec.recs)
			}
		})
	}
}

func TestService_ForwardingResult(t *testing.T) {
	svc := newTestService(t, &fakeSink{failAt: 2}, nil)

	res, err := svc.Process(context.Background(), csvUpload(testHeader+testRows(3)))
	if !errors.Is(err, ErrForwarding) {
		t.Fatalf("Process() error = %v", err)
	}
	if res.Accepted != 3 || res.Forwarded != 1 || res.FailedRow != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestService_RecorderFailureIgnored(t *testing.T) {
	svc := newTestService(t, &fakeSink{}, &fakeRecorder{err: errors.New("db down")})

	if _, err := svc.Process(context.Background(), csvUpload(testHeader+testRows(1))); err != nil {
		t.Fatalf("Process() error = %v, want audit failure ignored", err)
	}
}

// blockingSink holds every send until release is closed.
type blockingSink struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingSink) Send(ctx context.Context, _ ValidatedRecord) error {
	s.once.Do(func() { close(s.started) })
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestService_TooManyUploads(t *testing.T) {
	sink := &blockingSink{started: make(chan struct{}), release: make(chan struct{})}
	svc := newTestService(t, sink, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Process(context.Background(), csvUpload(testHeader+testRows(1)))
		done <- err
	}()
	<-sink.started

	if status := svc.UploadLimiterStatus(); status.Active != 1 {
		t.Errorf("active = %d, want 1", status.Active)
	}

	_, err := svc.Process(context.Background(), csvUpload(testHeader+testRows(1)))
	if !errors.Is(err, ErrTooManyUploads) {
		t.Errorf("second Process() error = %v, want ErrTooManyUploads", err)
	}

	close(sink.release)
	if err := <-done; err != nil {
		t.Errorf("first Process() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.WaitForUploads(ctx); err != nil {
		t.Errorf("WaitForUploads() error = %v", err)
	}
}

func TestIsCSVContentType(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"text/csv", true},
		{"TEXT/CSV", true},
		{"text/csv; charset=utf-8", true},
		{"text/plain", true},
		{"application/csv", true},
		{"application/vnd.ms-excel", false},
		{"application/octet-stream", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := isCSVContentType(tt.in); got != tt.want {
				t.Errorf("isCSVContentType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutcomeLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "accepted"},
		{ErrHeaderMismatch, "HeaderMismatch"},
		{&Error{Kind: KindForwarding, Row: 1}, "Forwarding"},
		{ErrTooManyUploads, "error"},
	}

	for _, tt := range tests {
		if got := outcomeLabel(tt.err); got != tt.want {
			t.Errorf("outcomeLabel(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
