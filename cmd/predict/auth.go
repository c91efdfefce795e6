package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/edupredict/predictcli/core/form"
	"github.com/edupredict/predictcli/core/session"
)

func (cli *commandLine) login(ctx context.Context, email, password string) error {
	f := form.New(form.LoginSchema(), form.Values{
		"email":    email,
		"password": password,
	})
	if !f.ValidateAll() {
		return fieldErrs(f)
	}

	f.SetSubmitting(true)
	defer f.SetSubmitting(false)

	res := cli.sess.Login(ctx, session.Credentials{Email: email, Password: password})
	if !res.Success {
		return errors.New(res.Error)
	}
	usr, _ := cli.sess.CurrentUser()
	fmt.Fprintf(cli.out, "logged in as %s (%s)\n", usr.Name, usr.Role)
	return nil
}

func (cli *commandLine) register(ctx context.Context, name, email, password, confirm string) error {
	f := form.New(form.SignupSchema(), form.Values{
		"name":            name,
		"email":           email,
		"password":        password,
		"confirmPassword": confirm,
	})
	if !f.ValidateAll() {
		return fieldErrs(f)
	}

	f.SetSubmitting(true)
	defer f.SetSubmitting(false)

	res := cli.sess.Register(ctx, session.NewAccount{Name: name, Email: email, Password: password})
	if !res.Success {
		return errors.New(res.Error)
	}
	usr, _ := cli.sess.CurrentUser()
	fmt.Fprintf(cli.out, "account created, logged in as %s\n", usr.Name)
	return nil
}

func (cli *commandLine) logout() error {
	cli.sess.Logout()
	fmt.Fprintln(cli.out, "logged out")
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	usr, err := cli.sess.Profile(ctx)
	if err != nil {
		if err == session.ErrNotAuthenticated {
			fmt.Fprintln(cli.out, "not logged in")
			return errHelp
		}
		return err
	}
	fmt.Fprintf(cli.out, "id:    %d\n", usr.ID)
	fmt.Fprintf(cli.out, "name:  %s\n", usr.Name)
	fmt.Fprintf(cli.out, "email: %s\n", usr.Email)
	fmt.Fprintf(cli.out, "role:  %s\n", usr.Role)
	if usr.ClassName.Valid {
		fmt.Fprintf(cli.out, "class: %s\n", usr.ClassName.String)
	}
	return nil
}
