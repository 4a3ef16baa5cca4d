package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/mock/gomock"

	"github.com/mergington/activities-api/internal/api"
	"github.com/mergington/activities-api/internal/registry"
	"github.com/mergington/activities-api/internal/service/inmemory"
	"github.com/mergington/activities-api/internal/service/mocks"
)

func newSeededServer(t *testing.T, opts ...api.ServerOption) *httptest.Server {
	t.Helper()

	reg, err := registry.New(registry.DefaultCatalog())
	require.NoError(t, err)
	svc, err := inmemory.New(context.Background(), reg)
	require.NoError(t, err)

	srv := httptest.NewServer(api.NewServer(svc, opts...))
	t.Cleanup(srv.Close)
	return srv
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func do(t *testing.T, client *http.Client, method, url string) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func participants(t *testing.T, client *http.Client, baseURL, activity string) []string {
	t.Helper()

	resp, body := do(t, client, http.MethodGet, baseURL+"/activities")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var emails []string
	for _, e := range gjson.Get(body, gjson.Escape(activity)+".participants").Array() {
		emails = append(emails, e.String())
	}
	return emails
}

func TestEnrollmentScenario(t *testing.T) {
	t.Parallel()

	srv := newSeededServer(t)
	client := srv.Client()

	t.Run("list activities", func(t *testing.T) {
		resp, body := do(t, client, http.MethodGet, srv.URL+"/activities")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		assert.True(t, gjson.Get(body, "Basketball Team").Exists())
		assert.True(t, gjson.Get(body, "Soccer Club").Exists())
	})

	t.Run("signup then duplicate", func(t *testing.T) {
		const email = "newstudent@mergington.edu"
		url := srv.URL + "/activities/Basketball%20Team/signup?email=" + email

		require.NotContains(t, participants(t, client, srv.URL, "Basketball Team"), email)

		resp, body := do(t, client, http.MethodPost, url)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Signed up newstudent@mergington.edu for Basketball Team", gjson.Get(body, "message").String())
		assert.Contains(t, participants(t, client, srv.URL, "Basketball Team"), email)

		before := len(participants(t, client, srv.URL, "Basketball Team"))
		resp, body = do(t, client, http.MethodPost, url)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Student already signed up", gjson.Get(body, "detail").String())
		assert.Len(t, participants(t, client, srv.URL, "Basketball Team"), before)
	})

	t.Run("unregister then repeat", func(t *testing.T) {
		roster := participants(t, client, srv.URL, "Soccer Club")
		require.NotEmpty(t, roster)
		email := roster[0]
		url := srv.URL + "/activities/Soccer%20Club/signup?email=" + email

		resp, body := do(t, client, http.MethodDelete, url)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Unregistered "+email+" from Soccer Club", gjson.Get(body, "message").String())
		assert.NotContains(t, participants(t, client, srv.URL, "Soccer Club"), email)

		resp, body = do(t, client, http.MethodDelete, url)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Participant not found in activity", gjson.Get(body, "detail").String())
	})

	t.Run("unknown activity", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodDelete} {
			resp, body := do(t, client, method, srv.URL+"/activities/Knitting%20Circle/signup?email=a@mergington.edu")
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.Equal(t, "Activity not found", gjson.Get(body, "detail").String())
		}
	})

	t.Run("get single activity", func(t *testing.T) {
		resp, body := do(t, client, http.MethodGet, srv.URL+"/activities/Chess%20Club")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(12), gjson.Get(body, "max_participants").Int())
	})
}

func TestActivityNameWithPercent(t *testing.T) {
	t.Parallel()

	reg, err := registry.New([]registry.Seed{
		{Name: "100% Club", Activity: registry.Activity{
			Description:     "Perfect attendance",
			Schedule:        "Mondays, 7:30 AM - 8:00 AM",
			MaxParticipants: 5,
		}},
	})
	require.NoError(t, err)
	svc, err := inmemory.New(context.Background(), reg)
	require.NoError(t, err)

	srv := httptest.NewServer(api.NewServer(svc))
	t.Cleanup(srv.Close)
	client := srv.Client()

	resp, body := do(t, client, http.MethodGet, srv.URL+"/activities/100%25%20Club")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Perfect attendance", gjson.Get(body, "description").String())

	resp, body = do(t, client, http.MethodPost, srv.URL+"/activities/100%25%20Club/signup?email=a@mergington.edu")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Signed up a@mergington.edu for 100% Club", gjson.Get(body, "message").String())

	resp, body = do(t, client, http.MethodDelete, srv.URL+"/activities/100%25%20Club/signup?email=a@mergington.edu")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Unregistered a@mergington.edu from 100% Club", gjson.Get(body, "message").String())
}

func TestRootRedirect(t *testing.T) {
	t.Parallel()

	srv := newSeededServer(t)

	resp, _ := do(t, noRedirectClient(), http.MethodGet, srv.URL+"/")

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, api.IndexPath, resp.Header.Get("Location"))
}

func TestStaticAssets(t *testing.T) {
	t.Parallel()

	t.Run("embedded", func(t *testing.T) {
		t.Parallel()
		srv := newSeededServer(t)

		resp, body := do(t, srv.Client(), http.MethodGet, srv.URL+"/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Mergington High School")

		resp, _ = do(t, srv.Client(), http.MethodGet, srv.URL+"/static/app.js")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = do(t, srv.Client(), http.MethodGet, srv.URL+"/static/missing.css")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("custom filesystem", func(t *testing.T) {
		t.Parallel()
		srv := newSeededServer(t, api.WithStaticFS(fstest.MapFS{
			"index.html": &fstest.MapFile{Data: []byte("<h1>Custom landing</h1>")},
		}))

		resp, body := do(t, srv.Client(), http.MethodGet, srv.URL+"/static/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Custom landing")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockSvc := mocks.NewMockActivityService(ctrl)

	without := api.NewServer(mockSvc)
	rr := httptest.NewRecorder()
	without.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	with := api.NewServer(mockSvc, api.WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("activities_enrollment_operations_total 1\n"))
	})))
	rr = httptest.NewRecorder()
	with.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "activities_enrollment_operations_total")
}

func TestSystemEndpoints(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockSvc := mocks.NewMockActivityService(ctrl)
	mockSvc.EXPECT().CheckReadiness(gomock.Any()).Return(nil)
	server := api.NewServer(mockSvc, api.WithMiddlewares(api.LoggingMiddleware))

	for path, field := range map[string]string{
		"/health":    "status",
		"/readiness": "status",
		"/version":   "version",
	} {
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.True(t, gjson.Get(rr.Body.String(), field).Exists(), path)
	}
}
