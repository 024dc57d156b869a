package main

import (
	"fmt"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/profile"
)

// token prints a signed API token for the given identity.
func (cli *commandLine) token(userID, name, email, role string) error {
	if !profile.IsValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}
	claims := echoapi.NewClaims(cli.conf, profile.Identity{
		ID:    userID,
		Name:  name,
		Email: email,
		Role:  role,
	})
	tkn, err := echoapi.GenerateToken(cli.conf, claims)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, tkn)
	return nil
}
