package dto

// PresignUploadRequest datos para calcular la clave S3 del documento.
type PresignUploadRequest struct {
	Filename      string `json:"filename" validate:"required"`
	MimeType      string `json:"mimeType" validate:"required"`
	InvoiceDate   string `json:"invoiceDate" validate:"required"`
	SupplierName  string `json:"supplierName" validate:"required"`
	InvoiceNumber string `json:"invoiceNumber" validate:"required"`
	Structure     string `json:"structure" validate:"required"`
	FileIndex     int    `json:"fileIndex"`
}

// PresignUploadResponse URL PUT prefirmada y clave a guardar en el documento.
type PresignUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
}

// DownloadURLResponse URL GET prefirmada de un documento.
type DownloadURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
}
