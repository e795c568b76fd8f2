// Package models defines the invoice and user record types, the record
// normalizer, and duplicate detection.
//
// JSON tags follow the wire shape of the hosted dashboard (Spanish field
// names), so sealed payloads stay interchangeable across clients.
package models

import (
	"strconv"
	"time"

	"github.com/acuellar/cfdivault/internal/sanitize"
)

// Status describes the processing state of an invoice record.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusDuplicate  Status = "duplicate"
)

// Invoice is one processed CFDI invoice document.
type Invoice struct {
	ID            string        `json:"id"`
	FileName      string        `json:"fileName"`
	IssuerRFC     string        `json:"rfcEmisor"`
	IssuerName    string        `json:"nombreEmisor"`
	ReceiverRFC   string        `json:"rfcReceptor"`
	ReceiverName  string        `json:"nombreReceptor"`
	Date          string        `json:"fecha"`
	Folio         string        `json:"folio"`
	Series        string        `json:"serie"`
	UUID          string        `json:"uuid"`
	DocumentType  string        `json:"tipoComprobante"`
	Currency      string        `json:"moneda"`
	Subtotal      float64       `json:"subtotal"`
	Total         float64       `json:"total"`
	VAT           float64       `json:"iva"`
	Withholding   float64       `json:"isr"`
	Concepts      string        `json:"conceptos"`
	PaymentMethod string        `json:"metodoPago"`
	PaymentForm   string        `json:"formaPago"`
	CFDIUsage     string        `json:"usoCFDI"`
	Agent         string        `json:"agente"`
	Status        Status        `json:"status"`
	UserID        string        `json:"usuarioId"`
	UploadedAt    string        `json:"fechaSubida"`
	DuplicateOf   string        `json:"duplicadoDe,omitempty"`
	DuplicateKind DuplicateKind `json:"tipoDuplicado,omitempty"`
	Synced        bool          `json:"sincronizado"`
}

// now is a test seam for the clock.
var now = time.Now

// NormalizeInvoice returns a copy of in with every field coerced to its safe
// canonical form: strings cleaned of control characters and trimmed, numbers
// finite, and defaults applied (id from the current time, status completed,
// upload timestamp now). Total function; identifiers already present are
// never replaced.
func NormalizeInvoice(in Invoice) Invoice {
	out := Invoice{
		ID:            sanitize.CleanText(in.ID),
		FileName:      sanitize.CleanText(in.FileName),
		IssuerRFC:     sanitize.CleanText(in.IssuerRFC),
		IssuerName:    sanitize.CleanText(in.IssuerName),
		ReceiverRFC:   sanitize.CleanText(in.ReceiverRFC),
		ReceiverName:  sanitize.CleanText(in.ReceiverName),
		Date:          sanitize.CleanText(in.Date),
		Folio:         sanitize.CleanText(in.Folio),
		Series:        sanitize.CleanText(in.Series),
		UUID:          sanitize.CleanText(in.UUID),
		DocumentType:  sanitize.CleanText(in.DocumentType),
		Currency:      sanitize.CleanText(in.Currency),
		Subtotal:      sanitize.ToNumber(in.Subtotal),
		Total:         sanitize.ToNumber(in.Total),
		VAT:           sanitize.ToNumber(in.VAT),
		Withholding:   sanitize.ToNumber(in.Withholding),
		Concepts:      sanitize.CleanText(in.Concepts),
		PaymentMethod: sanitize.CleanText(in.PaymentMethod),
		PaymentForm:   sanitize.CleanText(in.PaymentForm),
		CFDIUsage:     sanitize.CleanText(in.CFDIUsage),
		Agent:         sanitize.CleanText(in.Agent),
		Status:        in.Status,
		UserID:        sanitize.CleanText(in.UserID),
		UploadedAt:    sanitize.CleanText(in.UploadedAt),
		DuplicateOf:   sanitize.CleanText(in.DuplicateOf),
		DuplicateKind: in.DuplicateKind,
		Synced:        in.Synced,
	}
	if out.ID == "" {
		// nanosecond resolution so two records ingested back-to-back
		// cannot collide on the identifier
		out.ID = strconv.FormatInt(now().UnixNano(), 10)
	}
	if out.Status == "" {
		out.Status = StatusCompleted
	}
	if out.UploadedAt == "" {
		out.UploadedAt = now().Format(time.RFC3339)
	}
	return out
}

// InvoiceFromRaw maps a loosely-typed record (as produced by the upstream
// document extraction step) into a normalized Invoice. Unknown keys are
// ignored, missing keys get safe defaults.
func InvoiceFromRaw(raw map[string]any) Invoice {
	return NormalizeInvoice(Invoice{
		ID:            sanitize.ToText(raw["id"]),
		FileName:      sanitize.ToText(raw["fileName"]),
		IssuerRFC:     sanitize.ToText(raw["rfcEmisor"]),
		IssuerName:    sanitize.ToText(raw["nombreEmisor"]),
		ReceiverRFC:   sanitize.ToText(raw["rfcReceptor"]),
		ReceiverName:  sanitize.ToText(raw["nombreReceptor"]),
		Date:          sanitize.ToText(raw["fecha"]),
		Folio:         sanitize.ToText(raw["folio"]),
		Series:        sanitize.ToText(raw["serie"]),
		UUID:          sanitize.ToText(raw["uuid"]),
		DocumentType:  sanitize.ToText(raw["tipoComprobante"]),
		Currency:      sanitize.ToText(raw["moneda"]),
		Subtotal:      sanitize.ToNumber(raw["subtotal"]),
		Total:         sanitize.ToNumber(raw["total"]),
		VAT:           sanitize.ToNumber(raw["iva"]),
		Withholding:   sanitize.ToNumber(raw["isr"]),
		Concepts:      sanitize.ToText(raw["conceptos"]),
		PaymentMethod: sanitize.ToText(raw["metodoPago"]),
		PaymentForm:   sanitize.ToText(raw["formaPago"]),
		CFDIUsage:     sanitize.ToText(raw["usoCFDI"]),
		Agent:         sanitize.ToText(raw["agente"]),
		Status:        Status(sanitize.ToText(raw["status"])),
		UserID:        sanitize.ToText(raw["usuarioId"]),
		Synced:        sanitize.ToBool(raw["sincronizado"]),
	})
}
