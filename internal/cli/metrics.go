package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/acuellar/cfdivault/internal/common"
	"github.com/acuellar/cfdivault/internal/services"
)

// Metrics prints the dashboard summary for the loaded collection.
func (a *App) Metrics(ctx context.Context) error {
	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return common.ErrSessionClosed
	}

	invoices := a.sync.LoadInvoices(ctx, a.sess)
	m := services.ComputeMetrics(invoices, time.Now())

	fmt.Printf("Invoices:       %d (%d this month)\n", m.TotalInvoices, m.ThisMonth)
	fmt.Printf("Total amount:   %.2f\n", m.TotalAmount)
	fmt.Printf("Total VAT:      %.2f\n", m.TotalVAT)
	fmt.Printf("Average:        %.2f\n", m.AverageInvoice)
	fmt.Printf("Clients/Agents: %d / %d\n", m.ActiveClients, m.ActiveAgents)

	if top := services.TopClients(invoices, 5); len(top) > 0 {
		fmt.Println("Top clients:")
		for _, c := range top {
			fmt.Printf("  %-14s %10.2f (%d)\n", c.RFC, c.Total, c.Invoices)
		}
	}
	if top := services.TopAgents(invoices, 5); len(top) > 0 {
		fmt.Println("Top agents:")
		for _, ag := range top {
			fmt.Printf("  %-14s %10.2f (%d, avg %.2f)\n", ag.Name, ag.Total, ag.Invoices, ag.Average)
		}
	}
	return nil
}
