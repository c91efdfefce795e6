package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupredict/predictcli/services/rest"
	testutil "github.com/edupredict/predictcli/tests"
)

var ctx = context.Background()

func TestClient_do(t *testing.T) {
	var gotAuth, gotContentType, gotMethod, gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"pong": "ok"})
	}))
	defer srv.Close()

	// a trailing slash on the base must not double up in the URL
	client := rest.NewClient(srv.URL+"/", testutil.Logger())

	var out map[string]string
	err := client.Post(ctx, "/ping/", "t1", map[string]string{"ping": "1"}, &out, rest.DetailOrError("failed"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/ping/", gotPath)
	assert.Equal(t, map[string]string{"ping": "1"}, gotBody)
	assert.Equal(t, map[string]string{"pong": "ok"}, out)
}

func TestClient_noAuthHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	var hasAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hasAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	client := rest.NewClient(srv.URL, testutil.Logger())

	require.NoError(t, client.Get(ctx, "/ping/", "", nil, rest.DetailOrError("failed")))
	assert.False(t, hasAuth, "unexpected Authorization header %q", gotAuth)
}

func TestDetailOrError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "detail key", body: `{"detail":"invalid credentials"}`, want: "invalid credentials"},
		{name: "error key", body: `{"error":"Token expired"}`, want: "Token expired"},
		{name: "details key", body: `{"details":"boom"}`, want: "boom"},
		{name: "detail preferred over error", body: `{"detail":"a","error":"b"}`, want: "a"},
		{name: "empty body falls back", body: ``, want: "failed"},
		{name: "non-JSON body falls back", body: `<html>504</html>`, want: "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rest.DetailOrError("failed")(http.StatusBadRequest, []byte(tt.body))
			apiErr, ok := err.(*rest.APIError)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, tt.want, apiErr.UserMessage())
		})
	}
}

func TestFieldKeyed(t *testing.T) {
	extract := rest.FieldKeyed("registration failed", "Username", "Email")

	t.Run("first field message wins", func(t *testing.T) {
		body := `{"Username":["user with this Username already exists."],"Email":["invalid"]}`
		err := extract(http.StatusBadRequest, []byte(body))
		apiErr := err.(*rest.APIError)
		assert.Equal(t, "user with this Username already exists.", apiErr.Message)
		require.Len(t, apiErr.Fields, 2)
		assert.Equal(t, "Username", apiErr.Fields[0].Field)
		assert.Equal(t, "Email", apiErr.Fields[1].Field)
	})

	t.Run("error key as last resort", func(t *testing.T) {
		err := extract(http.StatusBadRequest, []byte(`{"error":"malformed request"}`))
		assert.Equal(t, "malformed request", err.(*rest.APIError).Message)
	})

	t.Run("fallback on garbage", func(t *testing.T) {
		err := extract(http.StatusBadRequest, []byte(`not json`))
		assert.Equal(t, "registration failed", err.(*rest.APIError).Message)
	})
}

func TestClient_non2xxUsesExtractor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "nope"})
	}))
	defer srv.Close()
	client := rest.NewClient(srv.URL, testutil.Logger())

	err := client.Get(ctx, "/x/", "t1", nil, rest.DetailOrError("failed"))
	apiErr, ok := errors.Cause(err).(*rest.APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode())
	assert.Equal(t, "nope", apiErr.UserMessage())
}

func TestClient_transportErrorIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on
	client := rest.NewClient(srv.URL, testutil.Logger())

	err := client.Get(ctx, "/x/", "", nil, rest.DetailOrError("failed"))
	require.Error(t, err)
	_, ok := errors.Cause(err).(*rest.APIError)
	assert.False(t, ok)
}
