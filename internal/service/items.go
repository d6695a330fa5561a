package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scales of the cantidad and precio columns. Values with more places would be
// rounded by Postgres and drift from the movement ledger.
const (
	decimalesCantidad int32 = 3
	decimalesPrecio   int32 = 2
)

func excedeDecimales(d decimal.Decimal, places int32) bool {
	return !d.Equal(d.Truncate(places))
}

func checkCantidad(d decimal.Decimal) string {
	switch {
	case !d.IsPositive():
		return "la cantidad debe ser mayor a cero"
	case excedeDecimales(d, decimalesCantidad):
		return fmt.Sprintf("la cantidad admite hasta %d decimales", decimalesCantidad)
	}
	return ""
}

func checkPrecio(d decimal.Decimal) string {
	switch {
	case !d.IsPositive():
		return "el precio unitario debe ser mayor a cero"
	case excedeDecimales(d, decimalesPrecio):
		return fmt.Sprintf("el precio unitario admite hasta %d decimales", decimalesPrecio)
	}
	return ""
}

// itemErrors collects the first problem of every offending line so one 400
// reports them all. Positions are 1-indexed, as shown to operators.
type itemErrors struct {
	msgs   []string
	fields map[string]string
}

func (e *itemErrors) add(n int, msg string) {
	if msg == "" {
		return
	}
	key := fmt.Sprintf("items[%d]", n)
	if e.fields == nil {
		e.fields = make(map[string]string)
	}
	if _, ok := e.fields[key]; ok {
		return
	}
	e.fields[key] = msg
	e.msgs = append(e.msgs, fmt.Sprintf("Ítem %d: %s", n, msg))
}

func (e *itemErrors) err() error {
	if len(e.msgs) == 0 {
		return nil
	}
	return &Error{Kind: KindValidation, Msg: strings.Join(e.msgs, "; "), Fields: e.fields}
}
