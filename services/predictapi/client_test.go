package predictapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupredict/predictcli/core/session"
	"github.com/edupredict/predictcli/services/predictapi"
	"github.com/edupredict/predictcli/services/rest"
	testutil "github.com/edupredict/predictcli/tests"
)

var ctx = context.Background()

var sampleInput = predictapi.Input{
	StudyHoursPerWeek:         20,
	AttendanceRate:            95,
	PastExamScores:            80,
	ParentalEducationLevel:    "Masters",
	InternetAccessAtHome:      "Yes",
	ExtracurricularActivities: "No",
}

func TestClient_PredictAnonymous(t *testing.T) {
	stub := testutil.NewStubAPI()
	srv := stub.Server()
	defer srv.Close()
	client := predictapi.NewClient(srv.URL, testutil.Logger())

	pred, err := client.Predict(ctx, "", sampleInput)
	require.NoError(t, err)
	assert.Equal(t, testutil.Score(sampleInput), pred.PredictedScore)
}

func TestClient_PredictAndHistory(t *testing.T) {
	stub := testutil.NewStubAPI()
	usr := stub.AddUser("Abc", "abc", "abc@gmail.com", "pwd", session.RoleStudent, "")
	srv := stub.Server()
	defer srv.Close()
	client := predictapi.NewClient(srv.URL, testutil.Logger())
	token := stub.MakeToken(usr, time.Hour)

	pred, err := client.Predict(ctx, token, sampleInput)
	require.NoError(t, err)

	entries, err := client.History(ctx, token, 50, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, sampleInput, entries[0].Input)
	assert.Equal(t, pred.PredictedScore, entries[0].PredictedScore)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestClient_HistoryPagination(t *testing.T) {
	stub := testutil.NewStubAPI()
	usr := stub.AddUser("Abc", "abc", "abc@gmail.com", "pwd", session.RoleStudent, "")
	srv := stub.Server()
	defer srv.Close()
	client := predictapi.NewClient(srv.URL, testutil.Logger())
	token := stub.MakeToken(usr, time.Hour)

	for i := 0; i < 3; i++ {
		in := sampleInput
		in.StudyHoursPerWeek = float64(10 + i)
		_, err := client.Predict(ctx, token, in)
		require.NoError(t, err)
	}

	entries, err := client.History(ctx, token, 2, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// newest first
	assert.Equal(t, float64(12), entries[0].Input.StudyHoursPerWeek)
	assert.Equal(t, float64(11), entries[1].Input.StudyHoursPerWeek)

	entries, err = client.History(ctx, token, 2, 2)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, float64(10), entries[0].Input.StudyHoursPerWeek)
}

func TestClient_HistoryRequiresAuth(t *testing.T) {
	stub := testutil.NewStubAPI()
	srv := stub.Server()
	defer srv.Close()
	client := predictapi.NewClient(srv.URL, testutil.Logger())

	_, err := client.History(ctx, "", 50, 0)
	apiErr, ok := errors.Cause(err).(*rest.APIError)
	require.True(t, ok, "want *rest.APIError, got %T", err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}
