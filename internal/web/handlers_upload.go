package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvrelay/internal/core"
	"github.com/JonMunkholm/csvrelay/internal/logging"
)

// UploadSuccessMessage is the body returned when every row was forwarded.
const UploadSuccessMessage = "File uploaded successfully"

// handleUpload validates the uploaded CSV and relays its rows to the sink.
// The response is sent only after the upload reaches a terminal state.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		if isTooLarge(err) {
			s.respondError(w, r, err)
			return
		}
		s.respondError(w, r, core.ErrUnsupportedFormat)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(s.cfg.Upload.FormField)
	if err != nil {
		logging.FromContext(r.Context()).Debug("no upload file", "field", s.cfg.Upload.FormField, "error", err)
		s.respondError(w, r, core.ErrUnsupportedFormat)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	_, err = s.service.Process(ctx, core.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeText(w, http.StatusOK, UploadSuccessMessage)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}
