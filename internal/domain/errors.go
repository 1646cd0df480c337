package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// Errores de la exportación mensual de documentos.
var (
	ErrInvalidMonthKey     = errors.New("monthKey inválido, formato esperado YYYY-MM (ej. 2026-01)")
	ErrNoInvoicesForMonth  = errors.New("no hay facturas para el mes solicitado")
	ErrNoDocumentsForMonth = errors.New("las facturas del mes no tienen documentos")
	ErrInvalidEmail        = errors.New("dirección de email inválida")

	// ErrDocumentFetch se recupera localmente: el documento se sustituye por una entrada __FAILED__/.
	ErrDocumentFetch  = errors.New("no se pudo obtener el documento")
	ErrObjectNotFound = errors.New("objeto no encontrado en el almacenamiento")
	ErrObjectStore    = errors.New("error del almacenamiento de objetos")

	// ErrArchiveEncoding aborta el trabajo completo.
	ErrArchiveEncoding = errors.New("error al codificar el archivo ZIP")
	ErrStorageWrite    = errors.New("error al guardar el archivo ZIP")
	ErrMailTransport   = errors.New("error al enviar el email")
)
