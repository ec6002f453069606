package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shoenig/test/must"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv(EnvWatchdogAddr, "")
	t.Setenv(EnvWatchdogToken, "")

	conf := DefaultConfig()
	must.Eq(t, DefaultAddress, conf.Address)
	must.Eq(t, "", conf.Token)
	must.Eq(t, DefaultTimeout, conf.Timeout)
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	t.Setenv(EnvWatchdogAddr, "http://watchdog.internal:4040")
	t.Setenv(EnvWatchdogToken, "sekrit")

	conf := DefaultConfig()
	must.Eq(t, "http://watchdog.internal:4040", conf.Address)
	must.Eq(t, "sekrit", conf.Token)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(&Config{})
	must.ErrorContains(t, err, "missing server address")
}

func TestClient_BearerHeader(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"regions":[],"groups":[],"incidents":[]}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{Address: srv.URL, Token: "sekrit"})
	must.NoError(t, err)

	_, err = client.Analytics()
	must.NoError(t, err)
	must.Eq(t, "Bearer sekrit", gotAuth)
	must.Eq(t, "application/json", gotAccept)
}

func TestClient_TrailingSlashAddress(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(&Config{Address: srv.URL + "/", Token: "t"})
	must.NoError(t, err)

	_, err = client.FetchConfig()
	must.NoError(t, err)
	must.Eq(t, "/api/v1/config", gotPath)
}

func TestClient_ErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/analytics":
			http.Error(w, "invalid or missing bearer token", http.StatusUnauthorized)
		case "/api/v1/incidents/missing":
			http.Error(w, "unknown incident", http.StatusNotFound)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client, err := NewClient(&Config{Address: srv.URL, Token: "t"})
	must.NoError(t, err)

	_, err = client.Analytics()
	must.True(t, IsAuthError(err))
	must.False(t, IsNotFoundError(err))
	must.ErrorContains(t, err, "invalid or missing bearer token")

	_, err = client.Incident("missing")
	must.True(t, IsNotFoundError(err))

	_, err = client.Status()
	var respErr *UnexpectedResponseError
	must.True(t, errors.As(err, &respErr))
	must.Eq(t, http.StatusInternalServerError, respErr.StatusCode)
	must.StrContains(t, respErr.Error(), "boom")
}

func TestClient_FetchConfigIfChanged(t *testing.T) {
	current := &ConfigResponse{Hash: "abcd"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("hash") == current.Hash {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		json.NewEncoder(w).Encode(current)
	}))
	defer srv.Close()

	client, err := NewClient(&Config{Address: srv.URL, Token: "t"})
	must.NoError(t, err)

	// Unknown hash fetches the document.
	resp, err := client.FetchConfigIfChanged("stale")
	must.NoError(t, err)
	must.NotNil(t, resp)
	must.Eq(t, "abcd", resp.Hash)

	// Matching hash short-circuits.
	resp, err = client.FetchConfigIfChanged("abcd")
	must.NoError(t, err)
	must.Nil(t, resp)
}

func TestClient_PushResults(t *testing.T) {
	var (
		gotPath   string
		gotMethod string
		gotBody   PushRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		must.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := NewClient(&Config{Address: srv.URL, Token: "t"})
	must.NoError(t, err)

	results := []*GroupResult{
		{Group: "core", Status: StatusOK},
		{Group: "edge", Status: StatusFail},
	}
	must.NoError(t, client.PushResults("eu-west", results))

	must.Eq(t, http.MethodPost, gotMethod)
	must.Eq(t, "/api/v1/relay/eu-west", gotPath)
	must.Len(t, 2, gotBody.Results)
	must.Eq(t, "core", gotBody.Results[0].Group)
	must.Eq(t, StatusFail, gotBody.Results[1].Status)
}

func TestClient_PushResults_MissingRegion(t *testing.T) {
	client, err := NewClient(&Config{Address: "http://127.0.0.1:1", Token: "t"})
	must.NoError(t, err)
	must.ErrorContains(t, client.PushResults("", nil), "missing region name")
}
