package ports

import "context"

// MailMessage correo con versión texto y HTML.
type MailMessage struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer puerto de salida para el envío de correos.
// Un fallo de transporte (SMTP/red) debe envolver domain.ErrMailTransport. Si además
// envuelve context.DeadlineExceeded o context.Canceled, el resultado es desconocido:
// el correo pudo entregarse igualmente.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
