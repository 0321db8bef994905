// Package sink delivers validated records to the downstream ingestion API.
package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/JonMunkholm/csvrelay/internal/core"
	"github.com/JonMunkholm/csvrelay/internal/schema"
)

// dateLayout is the wire format for Upload_Date.
const dateLayout = "2006-01-02"

// maxErrorBody caps how much of a rejection body is kept for logs.
const maxErrorBody = 512

// Payload is the JSON body for one record. Keys follow the CSV header.
type Payload struct {
	StudentID  core.WholeNumber `json:"Student_Id"`
	FirstName  string           `json:"First_Name"`
	LastName   string           `json:"Last_Name"`
	Email      string           `json:"Email"`
	UploadDate string           `json:"Upload_Date"`
	TitleCode  core.WholeNumber `json:"Title_Code"`
	Percentage float64          `json:"Percentage"`
}

// NewPayload converts a record to its wire form.
func NewPayload(rec core.ValidatedRecord) Payload {
	return Payload{
		StudentID:  rec.StudentID,
		FirstName:  rec.FirstName,
		LastName:   rec.LastName,
		Email:      rec.Email,
		UploadDate: rec.UploadDate.Format(dateLayout),
		TitleCode:  rec.TitleCode,
		Percentage: rec.Percentage,
	}
}

// StatusError is returned when the sink answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("sink returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("sink returned status %d: %s", e.StatusCode, e.Body)
}

// HTTPSink posts each record as JSON to a fixed URL.
type HTTPSink struct {
	url    string
	client *http.Client
}

// NewHTTPSink creates a sink for url. A zero timeout leaves sends unbounded
// apart from the request context.
func NewHTTPSink(url string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Send implements core.Sink.
func (s *HTTPSink) Send(ctx context.Context, rec core.ValidatedRecord) error {
	body, err := json.Marshal(NewPayload(rec))
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", schema.StudentID, rec.StudentID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
