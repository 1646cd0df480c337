package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factures-api/internal/application/dto"
	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/pkg/logger"
)

type httpError struct {
	target  error
	status  int
	code    string
	message string // vacío = err.Error()
}

// errorTable de error de dominio a respuesta HTTP. Se evalúa en orden con errors.Is.
var errorTable = []httpError{
	{domain.ErrInvalidMonthKey, fiber.StatusBadRequest, "INVALID_MONTH_KEY", "monthKey invalide (format attendu YYYY-MM)"},
	{domain.ErrNoInvoicesForMonth, fiber.StatusNotFound, "NO_INVOICES", "Aucune facture pour ce mois"},
	{domain.ErrNoDocumentsForMonth, fiber.StatusNotFound, "NO_DOCUMENTS", "Aucun document à télécharger"},
	{domain.ErrInvalidEmail, fiber.StatusBadRequest, "INVALID_EMAIL", "Adresse e-mail invalide"},
	{domain.ErrMailTransport, fiber.StatusBadGateway, "MAIL_ERROR", "Échec de l'envoi de l'e-mail"},
	{domain.ErrStorageWrite, fiber.StatusBadGateway, "STORAGE_ERROR", "Échec de l'enregistrement de l'archive"},
	{domain.ErrObjectStore, fiber.StatusBadGateway, "STORAGE_ERROR", "Stockage indisponible"},
	{domain.ErrArchiveEncoding, fiber.StatusInternalServerError, "ARCHIVE_ERROR", "Échec de la création de l'archive"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND", ""},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", ""},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", ""},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS", ""},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", ""},
	{domain.ErrDuplicate, fiber.StatusConflict, "CONFLICT", ""},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", ""},
}

// respondError traduce err a dto.ErrorResponse. Los errores no mapeados son 500 y se registran.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			msg := e.message
			if msg == "" {
				msg = err.Error()
			}
			if e.status >= fiber.StatusInternalServerError {
				log.Error().Err(err).Str("path", c.Path()).Msg("http: error de servidor")
			}
			return c.Status(e.status).JSON(dto.ErrorResponse{Code: e.code, Message: msg})
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("http: error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

// badRequest cuerpo ilegible o validación fallida.
func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}

// parseAndValidate BodyParser + validator. Devuelve false si ya respondió 400.
func parseAndValidate(c *fiber.Ctx, in interface{}) (bool, error) {
	if err := c.BodyParser(in); err != nil {
		return false, badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := dto.Validate(in); err != nil {
		return false, badRequest(c, "VALIDATION", dto.ValidationMessage(err))
	}
	return true, nil
}
