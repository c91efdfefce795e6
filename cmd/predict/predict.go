package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/edupredict/predictcli/core/form"
	"github.com/edupredict/predictcli/services/predictapi"
)

func (cli *commandLine) runPredict(ctx context.Context, values form.Values) error {
	f := form.New(form.PredictionSchema(), values)
	if !f.ValidateAll() {
		return fieldErrs(f)
	}

	in := predictapi.Input{
		StudyHoursPerWeek:         mustFloat(values["studyHoursPerWeek"]),
		AttendanceRate:            mustFloat(values["attendanceRate"]),
		PastExamScores:            mustFloat(values["pastExamScores"]),
		ParentalEducationLevel:    values["parentalEducationLevel"].(string),
		InternetAccessAtHome:      values["internetAccessAtHome"].(string),
		ExtracurricularActivities: values["extracurricularActivities"].(string),
	}

	// the token is optional here: anonymous predictions are allowed, they are
	// just not recorded in the history
	pred, err := cli.predict.Predict(ctx, cli.sess.Token(), in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "predicted score: %.2f\n", pred.PredictedScore)
	return nil
}

func (cli *commandLine) runHistory(ctx context.Context, limit, offset int) error {
	if !cli.sess.Authenticated() {
		fmt.Fprintln(cli.out, "please log in first")
		return errHelp
	}

	entries, err := cli.predict.History(ctx, cli.sess.Token(), limit, offset)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cli.out, "no predictions recorded yet")
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintf(cli.out, "%s  score=%.2f  (hours=%.1f attendance=%.1f past=%.1f)\n",
			entry.CreatedAt.Format("2006-01-02 15:04"),
			entry.PredictedScore,
			entry.Input.StudyHoursPerWeek,
			entry.Input.AttendanceRate,
			entry.Input.PastExamScores,
		)
	}
	return nil
}

// mustFloat converts an already form-validated numeric string.
func mustFloat(value interface{}) float64 {
	n, err := strconv.ParseFloat(fmt.Sprintf("%v", value), 64)
	if err != nil {
		return 0
	}
	return n
}
