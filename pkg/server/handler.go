package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/benjaminschreck/docfill/pkg/docfill"
)

// Form fields with a meaning of their own; every other field is a
// replacement
const (
	FieldFile           = "file"
	FieldAdditionalRows = "additionalRows"
)

// ContentTypeDocx is the media type of filled documents
const ContentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// requestError is answered with its status and message
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(format string, args ...interface{}) error {
	return &requestError{status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

// fillRequest is a parsed POST /process request
type fillRequest struct {
	filename       string
	document       []byte
	replacements   map[string]string
	additionalRows int
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := otel.Tracer("docfill.server").Start(r.Context(), "docfill.process")
	defer span.End()
	logger := docfill.LoggerFromContext(ctx)

	status := http.StatusOK
	defer func() {
		s.metrics.RecordRequest(status, time.Since(start))
	}()

	req, err := s.parseFillRequest(w, r)
	if err != nil {
		var reqErr *requestError
		if !errors.As(err, &reqErr) {
			reqErr = &requestError{status: http.StatusBadRequest, message: err.Error()}
		}
		status = reqErr.status
		logger.WithField("status", status).Warn("rejected request: %s", reqErr.message)
		span.SetStatus(codes.Error, reqErr.message)
		http.Error(w, reqErr.message, status)
		return
	}

	span.SetAttributes(
		attribute.String("docfill.filename", req.filename),
		attribute.Int("docfill.replacements", len(req.replacements)),
		attribute.Int("docfill.additional_rows", req.additionalRows),
	)

	out, report, err := s.engine.ProcessWithReport(ctx, req.document, req.replacements, req.additionalRows)
	if err != nil {
		status = http.StatusInternalServerError
		logger.WithField("filename", req.filename).Error("failed to process document: %v", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "process failed")
		http.Error(w, err.Error(), status)
		return
	}

	s.metrics.RecordReport(report)
	span.SetAttributes(
		attribute.Int("docfill.tables.standard", report.StandardTables),
		attribute.Int("docfill.tables.listing", report.ListingTables),
		attribute.Int("docfill.paragraphs.substituted", report.ParagraphsSubstituted),
		attribute.Int("docfill.paragraphs.skipped", report.ParagraphsSkipped),
		attribute.Int("docfill.rows_added", report.RowsAdded),
	)

	h := w.Header()
	h.Set("Content-Type", ContentTypeDocx)
	h.Set("Content-Disposition", attachment("processed_"+req.filename))
	h.Set("Content-Length", strconv.Itoa(len(out)))
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	w.WriteHeader(status)
	if _, err := w.Write(out); err != nil {
		logger.Warn("failed to write response: %v", err)
	}
}

// parseFillRequest reads the multipart form of r. The upload is bounded by
// the configured maximum.
func (s *Server) parseFillRequest(w http.ResponseWriter, r *http.Request) (*fillRequest, error) {
	maxBytes := s.engine.Config().Server.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &requestError{
				status:  http.StatusRequestEntityTooLarge,
				message: fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit),
			}
		}
		return nil, badRequest("invalid multipart form: %v", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(FieldFile)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, badRequest("no file uploaded")
		}
		return nil, badRequest("invalid file: %v", err)
	}
	defer file.Close()

	document, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(document) == 0 {
		return nil, badRequest("no file uploaded")
	}

	additionalRows := 0
	if raw := r.PostForm.Get(FieldAdditionalRows); raw != "" {
		additionalRows, err = strconv.Atoi(raw)
		if err != nil {
			return nil, badRequest("invalid %s: %q is not an integer", FieldAdditionalRows, raw)
		}
	}

	replacements := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if key == FieldFile || key == FieldAdditionalRows || len(values) == 0 {
			continue
		}
		replacements[key] = values[0]
	}

	return &fillRequest{
		filename:       filepath.Base(header.Filename),
		document:       document,
		replacements:   replacements,
		additionalRows: additionalRows,
	}, nil
}

// attachment renders a Content-Disposition value for filename. Names that are
// not plain ASCII use the RFC 2231 extended form.
func attachment(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
