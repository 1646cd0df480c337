package export

import (
	"context"
	"fmt"
	"html"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/factures-api/internal/application/dto"
	"github.com/jhoicas/factures-api/internal/application/ports"
	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/internal/domain/monthkey"
)

// LinkResult resultado del modo email.
type LinkResult struct {
	Key       string
	URL       string
	ExpiresAt time.Time
	Failures  int
}

// EmailLink construye el ZIP en un archivo temporal, lo sube al almacenamiento y envía
// por email un enlace de descarga temporal.
//
// El email se valida antes de cualquier acceso a base de datos, almacenamiento o correo.
// Si no hay facturas o documentos no se envía nada.
func (e *Exporter) EmailLink(ctx context.Context, rawKey, email string) (*LinkResult, error) {
	if _, err := monthkey.Parse(rawKey); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if !dto.ValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}
	job, err := e.Prepare(ctx, rawKey)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(e.cfg.TempDir, "export-"+job.Key.String()+"-*.zip")
	if err != nil {
		return nil, fmt.Errorf("%w: archivo temporal: %v", domain.ErrStorageWrite, err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if err := e.WriteArchive(ctx, job, tmp, nil); err != nil {
		return nil, err
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}

	key := path.Join("exports", job.Key.String(), uuid.New().String()+".zip")
	if err := e.store.PutFile(ctx, key, tmp, job.Written, "application/zip"); err != nil {
		return nil, err
	}
	url, expiresAt, err := e.store.GenerateDownloadURL(ctx, key, e.cfg.LinkTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: enlace de descarga: %v", domain.ErrStorageWrite, err)
	}

	if err := e.mailer.Send(ctx, linkMessage(email, job, url, e.cfg.LinkTTL)); err != nil {
		return nil, err
	}
	e.log.Info().
		Str("month", job.Key.String()).
		Str("to", email).
		Str("key", key).
		Int("failures", len(job.Failures)).
		Msg("export: enlace enviado por email")

	return &LinkResult{Key: key, URL: url, ExpiresAt: expiresAt, Failures: len(job.Failures)}, nil
}

func linkMessage(to string, job *Job, url string, ttl time.Duration) ports.MailMessage {
	validity := humanTTL(ttl)
	text := fmt.Sprintf(
		"Bonjour,\n\nVoici le lien de téléchargement pour les factures du mois de %s :\n%s\n\nCe lien expire dans %s.\n",
		job.Title, url, validity,
	)
	if n := len(job.Failures); n > 0 {
		text += fmt.Sprintf("\nAttention : %d document(s) n'ont pas pu être récupérés (voir le dossier __FAILED__ dans l'archive).\n", n)
	}
	body := fmt.Sprintf(
		`<p>Bonjour,</p><p>Voici le lien de téléchargement pour les factures du mois de <strong>%s</strong> :</p><p><a href="%s">Télécharger l'archive</a></p><p>Ce lien expire dans %s.</p>`,
		html.EscapeString(job.Title), html.EscapeString(url), validity,
	)
	return ports.MailMessage{
		To:      to,
		Subject: "Factures " + job.Title,
		Text:    text,
		HTML:    body,
	}
}

func humanTTL(ttl time.Duration) string {
	if ttl >= time.Hour && ttl%time.Hour == 0 {
		h := int(ttl / time.Hour)
		if h == 1 {
			return "1 heure"
		}
		return fmt.Sprintf("%d heures", h)
	}
	m := int(ttl / time.Minute)
	if m <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
