// Package api exposes the parser over HTTP. Uploads are written to a
// temp file per request; nothing is kept after the response is sent.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/insightdelivered/transtractor/internal/extractor"
	"github.com/insightdelivered/transtractor/internal/models"
	"github.com/insightdelivered/transtractor/internal/parser"
	"github.com/insightdelivered/transtractor/internal/quality"
	"github.com/insightdelivered/transtractor/internal/writer"
)

// ParseResponse is the JSON response from the /api/parse endpoint.
type ParseResponse struct {
	Success       bool                 `json:"success"`
	Error         string               `json:"error,omitempty"`
	JobID         string               `json:"jobId,omitempty"`
	Key           string               `json:"key,omitempty"`
	AccountNumber string               `json:"accountNumber,omitempty"`
	Transactions  []models.Transaction `json:"transactions"`
	Count         int                  `json:"count"`
	CSV           string               `json:"csv,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Parser  *parser.Parser
	Log     *slog.Logger
	Version string
}

// Register sets up the HTTP routes.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.Health)
	app.Post("/api/parse", h.Parse)
	app.Post("/api/debug", h.Debug)
	app.Post("/api/layout", h.Layout)
}

// Health reports liveness.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
	})
}

// Parse accepts a multipart PDF upload and returns the extracted
// statement. Optional form fields: "fields" selects CSV columns
// (comma-separated), "header" controls the CSV header row.
func (h *Handler) Parse(c *fiber.Ctx) error {
	jobID := uuid.NewString()
	path, cleanup, err := h.saveUpload(c, jobID)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, jobID, err)
	}
	defer cleanup()

	data, err := h.Parser.ParseFile(path)
	if err != nil {
		h.Log.Info("parse request failed", "job", jobID, "error", err)
		return writeError(c, statusFor(err), jobID, err)
	}

	csvWriter := &writer.CSVWriter{
		Fields:        splitFields(c.FormValue("fields")),
		IncludeHeader: c.FormValue("header") != "false",
	}
	var csvBuf bytes.Buffer
	if err := csvWriter.Write(&csvBuf, data); err != nil {
		return writeError(c, fiber.StatusBadRequest, jobID, err)
	}

	txns := data.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}
	h.Log.Info("parse request complete", "job", jobID, "key", data.Key, "transactions", len(txns))
	return c.JSON(ParseResponse{
		Success:       true,
		JobID:         jobID,
		Key:           data.Key,
		AccountNumber: data.AccountNumber,
		Transactions:  txns,
		Count:         len(txns),
		CSV:           csvBuf.String(),
	})
}

// Debug accepts a multipart PDF upload and returns the full candidate
// report as plain text. Every candidate runs to completion.
func (h *Handler) Debug(c *fiber.Ctx) error {
	jobID := uuid.NewString()
	path, cleanup, err := h.saveUpload(c, jobID)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, jobID, err)
	}
	defer cleanup()

	report, err := h.Parser.DebugFile(path)
	if err != nil {
		return writeError(c, statusFor(err), jobID, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(report)
}

// Layout accepts a multipart PDF upload and returns the reconstructed
// layout text. Optional form fields "y_bin" and "x_gap" override the
// reconstruction thresholds.
func (h *Handler) Layout(c *fiber.Ctx) error {
	jobID := uuid.NewString()
	path, cleanup, err := h.saveUpload(c, jobID)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, jobID, err)
	}
	defer cleanup()

	yBin := formFloat(c, "y_bin", 0)
	xGap := formFloat(c, "x_gap", 0)
	text, err := h.Parser.LayoutFile(path, yBin, xGap)
	if err != nil {
		return writeError(c, statusFor(err), jobID, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(text)
}

// saveUpload validates and persists the request's "file" field to a
// temp path. The caller must run cleanup when done with the file.
func (h *Handler) saveUpload(c *fiber.Ctx, jobID string) (string, func(), error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", nil, errors.New("no file uploaded; use form field 'file'")
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		return "", nil, errors.New("only PDF files are supported")
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("statement-%s.pdf", jobID))
	if err := c.SaveFile(file, path); err != nil {
		return "", nil, fmt.Errorf("failed to save upload: %w", err)
	}
	return path, func() { os.Remove(path) }, nil
}

// statusFor maps domain errors to HTTP statuses. Unsupported or
// rejected documents are the client's problem; everything else is ours.
func statusFor(err error) int {
	var notSupported *quality.NotSupportedError
	var noErrorFree *quality.NoErrorFreeError
	var unreadable *extractor.UnreadableError
	switch {
	case errors.As(err, &notSupported), errors.As(err, &noErrorFree), errors.As(err, &unreadable):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, status int, jobID string, err error) error {
	return c.Status(status).JSON(ParseResponse{
		Success: false,
		Error:   err.Error(),
		JobID:   jobID,
	})
}

func splitFields(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}

func formFloat(c *fiber.Ctx, name string, fallback float64) float64 {
	raw := c.FormValue(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
