package adminapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupredict/predictcli/core/session"
	"github.com/edupredict/predictcli/services/adminapi"
	testutil "github.com/edupredict/predictcli/tests"
)

var ctx = context.Background()

func TestClient_Users(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/users/", r.URL.Path)
		assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"users":[
			{"id":1,"username":"abc","name":"Abc","role":"teacher","class_name":"9A"},
			{"id":2,"username":"def","name":"Def","role":"student"}
		]}`))
	}))
	defer srv.Close()
	client := adminapi.NewClient(srv.URL, testutil.Logger())

	users, err := client.Users(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.True(t, users[0].IsTeacher())
	assert.True(t, users[1].IsStudent())
}

func TestClient_CreateUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var nu adminapi.NewUser
		require.NoError(t, json.NewDecoder(r.Body).Decode(&nu))
		assert.Equal(t, session.RoleTeacher, nu.Role)
		_, _ = w.Write([]byte(`{"id":3,"username":"ghi","name":"Ghi","role":"teacher"}`))
	}))
	defer srv.Close()
	client := adminapi.NewClient(srv.URL, testutil.Logger())

	usr, err := client.CreateUser(ctx, "t1", adminapi.NewUser{
		Username: "ghi",
		Email:    "ghi@gmail.com",
		Name:     "Ghi",
		Password: "pwd",
		Role:     session.RoleTeacher,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, usr.ID)
	assert.True(t, usr.IsTeacher())
}

func TestClient_DeleteUser(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	client := adminapi.NewClient(srv.URL, testutil.Logger())

	require.NoError(t, client.DeleteUser(ctx, "t1", 3))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/admin/users/3/", gotPath)
}
