package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/factures-api/internal/application/dto"
	"github.com/jhoicas/factures-api/internal/application/ports"
	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/internal/domain/repository"
)

// DocumentURLTTL validez de las URLs prefirmadas de documentos individuales.
const DocumentURLTTL = 120 * time.Second

// DocumentUseCase descarga de documentos individuales vía URL prefirmada.
type DocumentUseCase struct {
	repo   repository.DocumentRepository
	signer ports.URLSigner
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(repo repository.DocumentRepository, signer ports.URLSigner) *DocumentUseCase {
	return &DocumentUseCase{repo: repo, signer: signer}
}

// DownloadURL URL GET prefirmada (120 s) del documento. ErrNotFound si no existe.
func (uc *DocumentUseCase) DownloadURL(ctx context.Context, id string) (*dto.DownloadURLResponse, error) {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	url, _, err := uc.signer.GenerateDownloadURL(ctx, doc.StorageKey, DocumentURLTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrObjectStore, err)
	}
	return &dto.DownloadURLResponse{DownloadURL: url}, nil
}
