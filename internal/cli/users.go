package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/acuellar/cfdivault/internal/common"
	"github.com/acuellar/cfdivault/internal/models"
)

// Users prints the account roster.
func (a *App) Users(ctx context.Context) error {
	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return common.ErrSessionClosed
	}

	users := a.sync.LoadUsers(ctx, a.sess)
	for _, u := range users {
		active := "active"
		if !u.Active {
			active = "inactive"
		}
		fmt.Printf("%s  %-16s %-12s %s\n", u.ID, u.Username, u.Role, active)
	}
	return nil
}

// AddUser prompts for the new account's details and adds it to the roster.
// Admin only.
func (a *App) AddUser(ctx context.Context) error {
	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return common.ErrSessionClosed
	}

	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	role, err := getSimpleText(a.reader, "Enter role (admin/usuario/solo-lectura)", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u := models.User{
		Username: userName,
		Email:    email,
		Password: string(password),
		Role:     models.Role(role),
	}

	if err := a.sync.CreateUser(ctx, a.sess, u); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("User %s created\n", userName)
	return nil
}

// Deactivate prompts for a user id and flips its active flag off. Admin only.
func (a *App) Deactivate(ctx context.Context) error {
	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return common.ErrSessionClosed
	}

	id, err := getSimpleText(a.reader, "Enter user id to deactivate", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.sync.DeactivateUser(ctx, a.sess, id); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("User %s deactivated\n", id)
	return nil
}
