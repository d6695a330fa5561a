package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// dateLayout is the format of every date accepted in query strings and bodies.
const dateLayout = "2006-01-02"

// parseRango turns inclusive YYYY-MM-DD bounds into a half-open [desde, hasta+1d)
// interval. Empty bounds stay nil.
func parseRango(desde, hasta string) (*time.Time, *time.Time, error) {
	var d, h *time.Time
	if desde != "" {
		t, err := time.ParseInLocation(dateLayout, desde, time.Local)
		if err != nil {
			return nil, nil, validation("fecha 'desde' inválida: %s", desde)
		}
		d = &t
	}
	if hasta != "" {
		t, err := time.ParseInLocation(dateLayout, hasta, time.Local)
		if err != nil {
			return nil, nil, validation("fecha 'hasta' inválida: %s", hasta)
		}
		t = t.AddDate(0, 0, 1)
		h = &t
	}
	if d != nil && h != nil && !d.Before(*h) {
		return nil, nil, validation("el rango de fechas es inválido")
	}
	return d, h, nil
}

// parseFecha parses an optional YYYY-MM-DD date, defaulting to now.
func parseFecha(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, validation("fecha inválida: %s", s)
	}
	return t, nil
}

func fmtFecha(t time.Time) string { return t.Format(dateLayout) }

func fmtFechaHora(t time.Time) string { return t.Format(time.RFC3339) }

// txError keeps service errors raised inside a transaction and wraps anything
// else as internal.
func txError(err error, msg string) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return internal(msg, err)
}
