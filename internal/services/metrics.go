package services

import (
	"sort"
	"time"

	"github.com/acuellar/cfdivault/internal/models"
	"github.com/acuellar/cfdivault/internal/sanitize"
)

// Metrics summarizes the completed invoices in a collection.
type Metrics struct {
	TotalInvoices  int     `json:"totalFacturas"`
	TotalAmount    float64 `json:"totalImporte"`
	TotalVAT       float64 `json:"totalIVA"`
	AverageInvoice float64 `json:"promedioFactura"`
	ThisMonth      int     `json:"facturasEsteMes"`
	ActiveClients  int     `json:"clientesActivos"`
	ActiveAgents   int     `json:"agentesActivos"`
}

// ClientStat is one receiver aggregated over completed invoices.
type ClientStat struct {
	Name     string  `json:"nombre"`
	RFC      string  `json:"rfc"`
	Total    float64 `json:"total"`
	Invoices int     `json:"facturas"`
}

// AgentStat is one agent aggregated over completed invoices.
type AgentStat struct {
	Name     string  `json:"nombre"`
	Total    float64 `json:"total"`
	Invoices int     `json:"facturas"`
	Average  float64 `json:"promedio"`
}

// ComputeMetrics aggregates the dashboard figures over invoices with status
// completed. ref anchors the "this month" window. Pure and total: garbage
// fields count as zero, never as NaN.
func ComputeMetrics(invoices []models.Invoice, ref time.Time) Metrics {
	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())

	var m Metrics
	clients := make(map[string]struct{})
	agents := make(map[string]struct{})

	for _, inv := range invoices {
		if inv.Status != models.StatusCompleted {
			continue
		}
		m.TotalInvoices++
		m.TotalAmount += sanitize.ToNumber(inv.Total)
		m.TotalVAT += sanitize.ToNumber(inv.VAT)

		if d, ok := parseInvoiceDate(inv.Date); ok && !d.Before(monthStart) {
			m.ThisMonth++
		}
		if rfc := sanitize.CleanText(inv.ReceiverRFC); rfc != "" {
			clients[rfc] = struct{}{}
		}
		if agent := sanitize.CleanText(inv.Agent); agent != "" {
			agents[agent] = struct{}{}
		}
	}

	if m.TotalInvoices > 0 {
		m.AverageInvoice = m.TotalAmount / float64(m.TotalInvoices)
	}
	m.ActiveClients = len(clients)
	m.ActiveAgents = len(agents)
	return m
}

// parseInvoiceDate accepts the two date shapes the extraction step emits.
func parseInvoiceDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// TopClients returns up to n receivers ordered by total amount, descending.
func TopClients(invoices []models.Invoice, n int) []ClientStat {
	byRFC := make(map[string]*ClientStat)
	order := make([]string, 0)

	for _, inv := range invoices {
		if inv.Status != models.StatusCompleted {
			continue
		}
		rfc := sanitize.CleanText(inv.ReceiverRFC)
		if rfc == "" {
			continue
		}
		stat, ok := byRFC[rfc]
		if !ok {
			stat = &ClientStat{Name: inv.ReceiverName, RFC: rfc}
			byRFC[rfc] = stat
			order = append(order, rfc)
		}
		stat.Total += sanitize.ToNumber(inv.Total)
		stat.Invoices++
	}

	out := make([]ClientStat, 0, len(order))
	for _, rfc := range order {
		out = append(out, *byRFC[rfc])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// TopAgents returns up to n agents ordered by total amount, descending.
func TopAgents(invoices []models.Invoice, n int) []AgentStat {
	byName := make(map[string]*AgentStat)
	order := make([]string, 0)

	for _, inv := range invoices {
		if inv.Status != models.StatusCompleted {
			continue
		}
		name := sanitize.CleanText(inv.Agent)
		if name == "" {
			continue
		}
		stat, ok := byName[name]
		if !ok {
			stat = &AgentStat{Name: name}
			byName[name] = stat
			order = append(order, name)
		}
		stat.Total += sanitize.ToNumber(inv.Total)
		stat.Invoices++
	}

	out := make([]AgentStat, 0, len(order))
	for _, name := range order {
		stat := *byName[name]
		stat.Average = stat.Total / float64(stat.Invoices)
		out = append(out, stat)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
