package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/edupredict/predictcli/core/form"
	"github.com/edupredict/predictcli/core/session"
	"github.com/edupredict/predictcli/services/predictapi"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	sess    *session.Manager
	predict *predictapi.Client
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL                  - log in (password prompted)")
	fmt.Fprintln(cli.out, "  register -name NAME -email EMAIL    - create an account and log in")
	fmt.Fprintln(cli.out, "  logout                              - clear the stored session")
	fmt.Fprintln(cli.out, "  whoami                              - show the authenticated profile")
	fmt.Fprintln(cli.out, "  predict [flags]                     - predict a grade from study inputs")
	fmt.Fprintln(cli.out, "  history [-limit N] [-offset N]      - list recorded predictions")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginEmail := loginCmd.String("email", "", "Email or username. The password will be prompted next.")

	registerCmd := flag.NewFlagSet("register", flag.ExitOnError)
	registerName := registerCmd.String("name", "", "Display name.")
	registerEmail := registerCmd.String("email", "", "Email address. The password will be prompted next.")

	predictCmd := flag.NewFlagSet("predict", flag.ExitOnError)
	predictHours := predictCmd.String("hours", "", "Study hours per week (0-168).")
	predictAttendance := predictCmd.String("attendance", "", "Attendance rate (0-100).")
	predictPastScores := predictCmd.String("past-scores", "", "Past exam scores (0-100).")
	predictParental := predictCmd.String("parental", "", "Parental education level (HighSchool|Bachelors|Masters|PhD).")
	predictInternet := predictCmd.String("internet", "", "Internet access at home (Yes|No).")
	predictExtra := predictCmd.String("extracurricular", "", "Extracurricular activities (Yes|No).")

	historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
	historyLimit := historyCmd.Int("limit", 50, "Max entries to fetch.")
	historyOffset := historyCmd.Int("offset", 0, "Entries to skip.")

	ctx := context.Background()

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		return cli.login(ctx, *loginEmail, pwd)

	case "register":
		if err := registerCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *registerEmail == "" {
			registerCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		confirm, err := cli.promptPassword("Confirm password:")
		if err != nil {
			return err
		}
		return cli.register(ctx, *registerName, *registerEmail, pwd, confirm)

	case "logout":
		return cli.logout()

	case "whoami":
		return cli.whoami(ctx)

	case "predict":
		if err := predictCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.runPredict(ctx, form.Values{
			"studyHoursPerWeek":         *predictHours,
			"attendanceRate":            *predictAttendance,
			"pastExamScores":            *predictPastScores,
			"parentalEducationLevel":    *predictParental,
			"internetAccessAtHome":      *predictInternet,
			"extracurricularActivities": *predictExtra,
		})

	case "history":
		if err := historyCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.runHistory(ctx, *historyLimit, *historyOffset)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// fieldErrs flattens a form's validation errors into a single error.
func fieldErrs(f *form.Form) error {
	msg := "invalid input:"
	for name, fldErr := range f.Errors() {
		if fldErr != "" {
			msg += fmt.Sprintf("\n  %s: %s", name, fldErr)
		}
	}
	return errors.New(msg)
}
