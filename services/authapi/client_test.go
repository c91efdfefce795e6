package authapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupredict/predictcli/core/session"
	"github.com/edupredict/predictcli/services/authapi"
	"github.com/edupredict/predictcli/services/rest"
	testutil "github.com/edupredict/predictcli/tests"
)

var ctx = context.Background()

func apiError(t *testing.T, err error) *rest.APIError {
	t.Helper()
	apiErr, ok := errors.Cause(err).(*rest.APIError)
	require.True(t, ok, "want *rest.APIError, got %T: %v", err, err)
	return apiErr
}

func TestClient_Login(t *testing.T) {
	stub := testutil.NewStubAPI()
	stub.AddUser("Abc", "abc", "abc@gmail.com", "pwd", session.RoleStudent, "9A")
	srv := stub.Server()
	defer srv.Close()
	client := authapi.NewClient(srv.URL, testutil.Logger())

	// the identifier may be the email, the bare username or the local part
	for _, identifier := range []string{"abc@gmail.com", "abc"} {
		data, err := client.Login(ctx, identifier, "pwd")
		require.NoError(t, err, identifier)
		assert.NotEmpty(t, data.Access)
		assert.NotEmpty(t, data.Refresh)
		assert.Equal(t, "login successful", data.Message)
		require.NotNil(t, data.User)
		assert.Equal(t, "Abc", data.User.Name)
		assert.Equal(t, session.RoleStudent, data.User.Role)
		assert.Equal(t, "9A", data.User.ClassName.String)
	}
}

func TestClient_LoginWithoutUserRecord(t *testing.T) {
	stub := testutil.NewStubAPI()
	stub.OmitLoginUser = true
	stub.AddUser("Abc", "abc", "abc@gmail.com", "pwd", session.RoleStudent, "")
	srv := stub.Server()
	defer srv.Close()
	client := authapi.NewClient(srv.URL, testutil.Logger())

	data, err := client.Login(ctx, "abc@gmail.com", "pwd")
	require.NoError(t, err)
	assert.NotEmpty(t, data.Access)
	assert.Nil(t, data.User)
}

func TestClient_LoginBadCredentials(t *testing.T) {
	stub := testutil.NewStubAPI()
	stub.AddUser("Abc", "abc", "abc@gmail.com", "pwd", session.RoleStudent, "")
	srv := stub.Server()
	defer srv.Close()
	client := authapi.NewClient(srv.URL, testutil.Logger())

	_, err := client.Login(ctx, "abc@gmail.com", "wrong")
	apiErr := apiError(t, err)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.UserMessage())
}

func TestClient_Register(t *testing.T) {
	stub := testutil.NewStubAPI()
	srv := stub.Server()
	defer srv.Close()
	client := authapi.NewClient(srv.URL, testutil.Logger())

	// email is cleaned and lowered; the username is its local part
	err := client.Register(ctx, session.NewAccount{
		Name:     "Abc",
		Email:    "  ABC@Gmail.com ",
		Password: "pwd",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stub.RegisterCalls())

	data, err := client.Login(ctx, "abc@gmail.com", "pwd")
	require.NoError(t, err)
	assert.Equal(t, "abc", data.User.Username)
	assert.Equal(t, "abc@gmail.com", data.User.Email)
}

func TestClient_RegisterDuplicateUsername(t *testing.T) {
	stub := testutil.NewStubAPI()
	stub.AddUser("Abc", "abc", "abc@gmail.com", "pwd", session.RoleStudent, "")
	srv := stub.Server()
	defer srv.Close()
	client := authapi.NewClient(srv.URL, testutil.Logger())

	err := client.Register(ctx, session.NewAccount{Name: "Other", Email: "abc@test.cd", Password: "pwd"})
	apiErr := apiError(t, err)
	assert.Equal(t, "user with this Username already exists.", apiErr.UserMessage())
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "Username", apiErr.Fields[0].Field)
}

func TestClient_RegisterMissingPassword(t *testing.T) {
	stub := testutil.NewStubAPI()
	srv := stub.Server()
	defer srv.Close()
	client := authapi.NewClient(srv.URL, testutil.Logger())

	err := client.Register(ctx, session.NewAccount{Name: "Abc", Email: "abc@gmail.com"})
	apiErr := apiError(t, err)
	assert.Equal(t, "This field is required.", apiErr.UserMessage())
}

func TestClient_Profile(t *testing.T) {
	stub := testutil.NewStubAPI()
	usr := stub.AddUser("Abc", "abc", "abc@gmail.com", "pwd", session.RoleTeacher, "9A")
	srv := stub.Server()
	defer srv.Close()
	client := authapi.NewClient(srv.URL, testutil.Logger())

	got, err := client.Profile(ctx, stub.MakeToken(usr, time.Hour))
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)
	assert.Equal(t, "Abc", got.Name)
	assert.Equal(t, session.RoleTeacher, got.Role)
	assert.Equal(t, "9A", got.ClassName.String)
	assert.True(t, got.ClassName.Valid)
}

func TestClient_ProfileExpiredToken(t *testing.T) {
	stub := testutil.NewStubAPI()
	usr := stub.AddUser("Abc", "abc", "abc@gmail.com", "pwd", session.RoleStudent, "")
	srv := stub.Server()
	defer srv.Close()
	client := authapi.NewClient(srv.URL, testutil.Logger())

	_, err := client.Profile(ctx, stub.MakeToken(usr, -time.Hour))
	apiErr := apiError(t, err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode())
}
