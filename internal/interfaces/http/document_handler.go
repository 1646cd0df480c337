package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factures-api/internal/application/dto"
	"github.com/jhoicas/factures-api/internal/application/usecase"
	"github.com/jhoicas/factures-api/pkg/logger"
)

// DocumentHandler URLs prefirmadas de documentos individuales (descarga y subida).
type DocumentHandler struct {
	documents *usecase.DocumentUseCase
	uploads   *usecase.UploadUseCase
	log       *logger.Logger
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(documents *usecase.DocumentUseCase, uploads *usecase.UploadUseCase, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{documents: documents, uploads: uploads, log: log}
}

// DownloadURL GET /api/documents/:id/download-url
func (h *DocumentHandler) DownloadURL(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.documents.DownloadURL(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// PresignUpload POST /api/uploads/presign
func (h *DocumentHandler) PresignUpload(c *fiber.Ctx) error {
	var in dto.PresignUploadRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uploads.Presign(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
