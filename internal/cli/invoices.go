package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/acuellar/cfdivault/internal/common"
)

// Upload reads an extracted invoice record from a JSON file and adds it to
// the collection. Duplicates are stored anyway, flagged against the record
// they collide with.
func (a *App) Upload(ctx context.Context) error {
	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return common.ErrSessionClosed
	}

	path, err := getSimpleText(a.reader, "Enter path of the invoice JSON file", os.Stdout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("Error: not a valid invoice file: %s", err.Error())
		return err
	}

	inv, dup, err := a.sync.AddInvoice(ctx, a.sess, raw)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	if dup != nil {
		fmt.Printf("Warning: duplicate of %s (%s)\n", dup.Existing.ID, dup.Kind)
	}
	fmt.Printf("Stored invoice %s (%s)\n", inv.ID, inv.Status)
	return nil
}

// List prints the invoice collection, one record per line.
func (a *App) List(ctx context.Context) error {
	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return common.ErrSessionClosed
	}

	invoices := a.sync.LoadInvoices(ctx, a.sess)
	if len(invoices) == 0 {
		fmt.Println("No invoices")
		return nil
	}

	for _, inv := range invoices {
		sync := " "
		if inv.Synced {
			sync = "*"
		}
		fmt.Printf("%s %s  %-12s %-14s %10.2f  %s\n",
			sync, inv.ID, inv.Folio, inv.IssuerRFC, inv.Total, inv.Status)
	}
	return nil
}

// Delete prompts for invoice ids (comma-separated) and removes them from
// both stores.
func (a *App) Delete(ctx context.Context) error {
	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return common.ErrSessionClosed
	}

	line, err := getSimpleText(a.reader, "Enter invoice ids to delete (comma-separated)", os.Stdout)
	if err != nil {
		return err
	}

	var ids []string
	for _, id := range strings.Split(line, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	if err := a.sync.DeleteInvoices(ctx, a.sess, ids); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("Deleted %d invoice(s)\n", len(ids))
	return nil
}

// Sync re-saves the collection, pushing every unsynced record to the remote
// store.
func (a *App) Sync(ctx context.Context) error {
	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return common.ErrSessionClosed
	}

	invoices := a.sync.LoadInvoices(ctx, a.sess)
	saved, err := a.sync.SaveInvoices(ctx, a.sess, invoices)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	synced := 0
	for _, inv := range saved {
		if inv.Synced {
			synced++
		}
	}
	fmt.Printf("%d of %d invoice(s) synced\n", synced, len(saved))
	return nil
}
