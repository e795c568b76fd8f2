package cli

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/acuellar/cfdivault/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts the user for credentials and tries to authenticate against
// the roster. On success it binds the session and updates connectivity Mode
// from a fresh probe.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.auth.Login(ctx, userName, string(password))
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			log.Printf("Login unsuccessful: wrong username or password")
		} else {
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}

	a.sess = sess
	if a.remote.Probe(ctx) == nil {
		a.setMode(ModeOnline)
	} else {
		a.setMode(ModeOffline)
	}
	return nil
}

// Logout closes the session and drops the in-memory collections.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(a.sess)
	a.sess = nil
	log.Println("Logged out")
	return nil
}

// Rekey rotates the session passphrase: every persisted blob is re-sealed
// under the new password.
func (a *App) Rekey(ctx context.Context) error {
	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return common.ErrSessionClosed
	}

	password, err := getPassword(os.Stdout, "Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(os.Stdout, "Repeat new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		log.Println("Passwords do not match")
		return common.ErrInternal
	}

	if err := a.auth.Rekey(ctx, a.sess, string(password)); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	log.Println("Vault re-keyed")
	return nil
}
