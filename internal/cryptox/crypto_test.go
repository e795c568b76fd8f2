package cryptox

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt-16byt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	assert.Len(t, key1, 32)
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveKey(password, []byte("salt-1"))
	key2 := DeriveKey(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	type payload struct {
		Folio string  `json:"folio"`
		Total float64 `json:"total"`
	}

	token, err := Seal(payload{Folio: "A-100", Total: 1234.56}, []byte("pw"))
	require.NoError(t, err)

	var got payload
	require.NoError(t, Open(token, []byte("pw"), &got))
	assert.Equal(t, "A-100", got.Folio)
	assert.Equal(t, 1234.56, got.Total)
}

func TestSeal_CleansControlCharacters(t *testing.T) {
	in := map[string]any{"name": " Ju\x00an \x1f"}

	token, err := Seal(in, []byte("pw"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, Open(token, []byte("pw"), &got))
	assert.Equal(t, "Juan", got["name"])
}

func TestSeal_NonDeterministic(t *testing.T) {
	pw := []byte("pw")
	v := map[string]any{"folio": "100"}

	t1, err := Seal(v, pw)
	require.NoError(t, err)
	t2, err := Seal(v, pw)
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
}

func TestOpen_WrongPassphrase(t *testing.T) {
	token, err := Seal(map[string]any{"a": 1.0}, []byte("p1"))
	require.NoError(t, err)

	var got map[string]any
	err = Open(token, []byte("p2"), &got)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestOpen_TamperedCiphertext(t *testing.T) {
	pw := []byte("pw")
	token, err := Seal(map[string]any{"a": "b"}, pw)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(token)
	require.NoError(t, err)

	// flip one bit inside the ciphertext region
	raw[len(raw)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)

	var got map[string]any
	assert.ErrorIs(t, Open(tampered, pw, &got), ErrDecrypt)
}

func TestOpen_MalformedTokens(t *testing.T) {
	var got any

	assert.ErrorIs(t, Open("", []byte("pw"), &got), ErrDecrypt)
	assert.ErrorIs(t, Open("!!!not-base64!!!", []byte("pw"), &got), ErrDecrypt)

	short := base64.StdEncoding.EncodeToString(make([]byte, 27))
	assert.ErrorIs(t, Open(short, []byte("pw"), &got), ErrDecrypt)
}

func TestSeal_UnserializableValue(t *testing.T) {
	_, err := Seal(make(chan int), []byte("pw"))
	assert.ErrorIs(t, err, ErrEncrypt)
}
