package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func existingSet() []Invoice {
	return []Invoice{
		{ID: "1", Folio: "100", FileName: "a.pdf"},
	}
}

func TestDetectDuplicate_FolioOnly(t *testing.T) {
	d := DetectDuplicate(Invoice{ID: "2", Folio: "100", FileName: "b.pdf"}, existingSet())
	require.NotNil(t, d)
	assert.Equal(t, DuplicateFolio, d.Kind)
	assert.Equal(t, "1", d.Existing.ID)
}

func TestDetectDuplicate_FileOnly(t *testing.T) {
	d := DetectDuplicate(Invoice{ID: "2", Folio: "200", FileName: "a.pdf"}, existingSet())
	require.NotNil(t, d)
	assert.Equal(t, DuplicateFile, d.Kind)
}

func TestDetectDuplicate_Both(t *testing.T) {
	d := DetectDuplicate(Invoice{ID: "2", Folio: "100", FileName: "a.pdf"}, existingSet())
	require.NotNil(t, d)
	assert.Equal(t, DuplicateBoth, d.Kind)
}

func TestDetectDuplicate_NoMatch(t *testing.T) {
	assert.Nil(t, DetectDuplicate(Invoice{ID: "2", Folio: "", FileName: "c.pdf"}, existingSet()))
	assert.Nil(t, DetectDuplicate(Invoice{ID: "2", Folio: "300", FileName: "d.pdf"}, existingSet()))
}

func TestDetectDuplicate_CaseAndWhitespaceInsensitive(t *testing.T) {
	d := DetectDuplicate(Invoice{ID: "2", Folio: "  a-100 ", FileName: "x.pdf"},
		[]Invoice{{ID: "1", Folio: "A-100", FileName: "y.pdf"}})
	require.NotNil(t, d)
	assert.Equal(t, DuplicateFolio, d.Kind)
}

func TestDetectDuplicate_SkipsSameID(t *testing.T) {
	assert.Nil(t, DetectDuplicate(Invoice{ID: "1", Folio: "100", FileName: "a.pdf"}, existingSet()))
}

func TestDetectDuplicate_EmptyFilenamesNeverMatch(t *testing.T) {
	d := DetectDuplicate(Invoice{ID: "2", Folio: "", FileName: ""},
		[]Invoice{{ID: "1", Folio: "", FileName: ""}})
	assert.Nil(t, d)
}

func TestDetectDuplicate_FirstMatchWins(t *testing.T) {
	existing := []Invoice{
		{ID: "1", Folio: "100", FileName: "a.pdf"},
		{ID: "2", Folio: "100", FileName: "b.pdf"},
	}
	d := DetectDuplicate(Invoice{ID: "3", Folio: "100", FileName: "c.pdf"}, existing)
	require.NotNil(t, d)
	assert.Equal(t, "1", d.Existing.ID)
}

func TestDetectDuplicate_EmptyCollection(t *testing.T) {
	assert.Nil(t, DetectDuplicate(Invoice{ID: "1", Folio: "100"}, nil))
}
