package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"
)

// AuditWorker persists audit rows queued by the services.
type AuditWorker struct {
	repo repository.AuditoriaRepository
}

func NewAuditWorker(repo repository.AuditoriaRepository) *AuditWorker {
	return &AuditWorker{repo: repo}
}

// Process inserts one row. A row whose usuario no longer exists is still a
// valid insert; only database errors are retried.
func (w *AuditWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var entry model.Auditoria
	if err := json.Unmarshal(raw, &entry); err != nil {
		return permanent(fmt.Errorf("audit_worker: invalid payload: %w", err))
	}
	if entry.Evento == "" || entry.Modulo == "" {
		return permanent(fmt.Errorf("audit_worker: entry without evento/modulo"))
	}
	entry.ID = 0
	entry.Usuario = nil
	return w.repo.Create(ctx, &entry)
}
