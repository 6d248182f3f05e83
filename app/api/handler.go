package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"docqa/export"
	"docqa/parser"
	"docqa/service"
	"docqa/types"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	svc      *service.Service
	exporter *export.Exporter
	logger   *zap.Logger
}

func NewDocumentHandler(svc *service.Service, exporter *export.Exporter, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		svc:      svc,
		exporter: exporter,
		logger:   logger,
	}
}

// HandleProcess accepts an uploaded document, extracts its text and builds
// a fresh session around it. The returned session_id keys all later
// queries.
func (h *DocumentHandler) HandleProcess(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	text, err := parser.Extract(data, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return err
	}

	sessionID, err := h.svc.Ingest(c.UserContext(), text, fileHeader.Filename)
	if err != nil {
		return err
	}

	return c.JSON(types.ProcessResponse{
		Message:   "Document processed successfully. Use the session_id to ask questions.",
		SessionID: sessionID,
	})
}

// HandleQuery streams the answer fragments as plain text. The retrieved
// chunks travel in the X-Context-Sources header, set before the first
// fragment is written.
func (h *DocumentHandler) HandleQuery(c *fiber.Ctx) error {
	var params types.QueryParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	// The stream writer runs after this handler returns, so the answer gets
	// its own cancellable context instead of the request-scoped one.
	ctx, cancel := context.WithCancel(context.Background())

	answer, err := h.svc.Query(ctx, params.SessionID, params.Question, params.History)
	if err != nil {
		cancel()
		return err
	}

	sources, err := json.Marshal(answer.Contexts)
	if err != nil {
		cancel()
		return err
	}
	c.Set("X-Context-Sources", string(sources))
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		for token := range answer.Stream {
			if token.Err != nil {
				h.logger.Warn("generation failed mid-stream", zap.Error(token.Err))
				w.WriteString("\n\n[The answer was interrupted by a generation backend error.]")
				w.Flush()
				return
			}
			if _, err := w.WriteString(token.Text); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				// Client is gone; cancel abandons the generation call.
				return
			}
		}
	}))
	return nil
}

// HandleExport renders a PDF summary of the supplied conversation.
func (h *DocumentHandler) HandleExport(c *fiber.Ctx) error {
	var params types.ExportParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	pdfBytes, err := h.exporter.Summary(c.UserContext(), params.History)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="conversation-summary.pdf"`)
	return c.Send(pdfBytes)
}
