package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"swimclub/internal/app"
	"swimclub/internal/application/orchestrators"
	"swimclub/internal/config"
	"swimclub/internal/domain/account"
)

// errLoginRequired is returned when a guarded command runs without credentials.
var errLoginRequired = errors.New("login required: pass --user and --password or set " +
	config.EnvPrefix + "_USER and " + config.EnvPrefix + "_PASSWORD")

// credentials returns the flag values, falling back to the environment.
func (c *cli) credentials() (string, string) {
	user, password := c.user, c.password
	if user == "" {
		user = os.Getenv(config.EnvPrefix + "_USER")
	}
	if password == "" {
		password = os.Getenv(config.EnvPrefix + "_PASSWORD")
	}
	return strings.TrimSpace(user), password
}

// login checks the caller's credentials and that their role grants perm.
func (c *cli) login(a *app.App, perm account.Permission) (orchestrators.LoginResult, error) {
	user, password := c.credentials()
	if user == "" || password == "" {
		return orchestrators.LoginResult{}, errLoginRequired
	}
	res, err := orchestrators.ExecuteLogin(orchestrators.LoginInput{
		Username:   user,
		Password:   password,
		Permission: perm,
	}, orchestrators.LoginDeps{AccountStore: a.Accounts})
	if err != nil {
		return orchestrators.LoginResult{}, fmt.Errorf("%s: %w", user, err)
	}
	return res, nil
}
