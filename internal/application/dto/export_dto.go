package dto

// EmailExportRequest cuerpo de POST /invoices/month/:monthKey/documents.zip/email.
type EmailExportRequest struct {
	Email string `json:"email"`
}
