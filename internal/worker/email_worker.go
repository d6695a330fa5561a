package worker

// email_worker.go
// Processes report delivery jobs from QueueEmail: renders the report PDF and
// mails it as an attachment.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/infra"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/service"

	"github.com/rs/zerolog/log"
)

// ReporteEmailPayload is the job body sent to QueueEmail.
type ReporteEmailPayload struct {
	ReporteID int64  `json:"reporte_id"`
	To        string `json:"to"`
}

// Sender is satisfied by *infra.Mailer.
type Sender interface {
	Send(to, subject, body string, attachments ...infra.Attachment) error
}

// RenderFunc returns the PDF of a report and its file name.
type RenderFunc func(ctx context.Context, reporteID int64) ([]byte, string, error)

type EmailWorker struct {
	mailer Sender
	render RenderFunc
}

func NewEmailWorker(mailer Sender, render RenderFunc) *EmailWorker {
	return &EmailWorker{mailer: mailer, render: render}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReporteEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return permanent(fmt.Errorf("email_worker: invalid payload: %w", err))
	}
	if payload.To == "" || payload.ReporteID == 0 {
		return permanent(errors.New("email_worker: payload without destination or reporte"))
	}

	pdf, filename, err := w.render(ctx, payload.ReporteID)
	if service.KindOf(err) == service.KindNotFound {
		return permanent(fmt.Errorf("email_worker: reporte %d: %w", payload.ReporteID, err))
	}
	if err != nil {
		return fmt.Errorf("email_worker: render reporte %d: %w", payload.ReporteID, err)
	}

	subject := fmt.Sprintf("Don Nildo - Reporte #%d", payload.ReporteID)
	body := "Se adjunta el reporte solicitado.\n\nEste mensaje fue generado automáticamente."
	err = w.mailer.Send(payload.To, subject, body, infra.Attachment{
		Filename:    filename,
		ContentType: "application/pdf",
		Data:        pdf,
	})
	if errors.Is(err, infra.ErrMailerDisabled) {
		return permanent(err)
	}
	if err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.To, err)
	}
	log.Info().Int64("reporte_id", payload.ReporteID).Str("to", payload.To).Msg("email_worker: reporte sent")
	return nil
}
