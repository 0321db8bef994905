package core

import (
	"context"
	"io"
	"time"
)

// RawRow is one tokenized data line keyed by column name.
// Row is the 1-based position among data rows (the header is not counted).
type RawRow struct {
	Row     int
	Columns int // number of fields the tokenizer produced for this line
	Values  map[string]string
}

// ValidatedRecord is the typed, normalized form of a RawRow.
// Records are passed by value and never modified after ValidateRow builds them.
type ValidatedRecord struct {
	StudentID  WholeNumber
	FirstName  string
	LastName   string
	Email      string
	UploadDate time.Time
	TitleCode  WholeNumber
	Percentage float64
}

// Sink receives validated records one at a time.
// Send must return a non-nil error when the downstream rejects the record
// or cannot be reached.
type Sink interface {
	Send(ctx context.Context, rec ValidatedRecord) error
}

// Mailer delivers a single operational message.
type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

// State is a step of the upload state machine.
type State string

const (
	StateAwaitingInput State = "awaiting_input"
	StateHeaderPending State = "header_pending"
	StateIngesting     State = "ingesting"
	StateAccepted      State = "accepted"
	StateRejected      State = "rejected"
)


// ForwardOutcome is the result of relaying a batch to the sink.
// FailedRow is zero when every record was accepted downstream.
type ForwardOutcome struct {
	Sent      int   // records confirmed by the sink
	FailedRow int   // 1-based batch position of the first failure
	Detail    error // downstream error for FailedRow
}

// OK reports whether every record was accepted downstream.
func (o ForwardOutcome) OK() bool {
	return o.FailedRow == 0
}

// Err returns the forwarding failure as a *Error, or nil on success.
func (o ForwardOutcome) Err() error {
	if o.OK() {
		return nil
	}
	return &Error{Kind: KindForwarding, Row: o.FailedRow, Err: o.Detail}
}

// Upload is a decoded file submission handed over by the transport layer.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Result summarizes a finished upload.
type Result struct {
	UploadID  string
	FileName  string
	State     State
	Accepted  int // rows that passed validation
	Forwarded int // rows confirmed by the sink
	FailedRow int // first sink failure, 0 if none
	Duration  time.Duration
}
