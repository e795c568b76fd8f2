package models

import (
	"strings"

	"github.com/acuellar/cfdivault/internal/sanitize"
)

// DuplicateKind classifies how a candidate record collides with an existing
// one. Wire values match the dashboard payloads.
type DuplicateKind string

const (
	// DuplicateFolio: same fiscal folio under a different file name,
	// typically a re-submission of the same document renamed.
	DuplicateFolio DuplicateKind = "folio"
	// DuplicateFile: same file name, typically an accidental re-upload.
	DuplicateFile DuplicateKind = "archivo"
	// DuplicateBoth: folio and file name both match.
	DuplicateBoth DuplicateKind = "ambos"
)

// Duplicate pairs a candidate record with the pre-existing record it
// collides with.
type Duplicate struct {
	Candidate Invoice       `json:"nuevaFactura"`
	Existing  Invoice       `json:"facturaExistente"`
	Kind      DuplicateKind `json:"tipoDuplicado"`
}

func foldFolio(s string) string {
	return strings.TrimSpace(sanitize.ToLowerText(s))
}

// DetectDuplicate scans existing in collection order and returns the first
// record (skipping any with the candidate's own id) whose folio matches
// case- and whitespace-insensitively (empty folios never match) or whose
// file name matches case-insensitively. Returns nil when there is no
// collision. Total function.
//
// First match wins; with several possible collisions the earliest inserted
// record is reported.
func DetectDuplicate(candidate Invoice, existing []Invoice) *Duplicate {
	cFolio := foldFolio(candidate.Folio)
	cFile := sanitize.ToLowerText(candidate.FileName)

	for _, e := range existing {
		if e.ID == candidate.ID {
			continue
		}

		eFolio := foldFolio(e.Folio)
		folioMatch := cFolio != "" && eFolio != "" && cFolio == eFolio
		fileMatch := cFile != "" && cFile == sanitize.ToLowerText(e.FileName)

		if !folioMatch && !fileMatch {
			continue
		}

		kind := DuplicateFile
		switch {
		case folioMatch && fileMatch:
			kind = DuplicateBoth
		case folioMatch:
			kind = DuplicateFolio
		}
		return &Duplicate{Candidate: candidate, Existing: e, Kind: kind}
	}
	return nil
}
