package system_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/mock/gomock"

	"github.com/mergington/activities-api/internal/api/system"
	"github.com/mergington/activities-api/internal/service"
	"github.com/mergington/activities-api/internal/service/mocks"
)

func TestRouter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		path         string
		readinessErr error
		wantStatus   int
		wantField    string
		wantValue    string
	}{
		{
			name:       "health",
			path:       "/health",
			wantStatus: http.StatusOK,
			wantField:  "status",
			wantValue:  "healthy",
		},
		{
			name:       "ready",
			path:       "/readiness",
			wantStatus: http.StatusOK,
			wantField:  "status",
			wantValue:  "ready",
		},
		{
			name:         "not ready",
			path:         "/readiness",
			readinessErr: errors.Join(service.ErrNotReady, errors.New("shutting down")),
			wantStatus:   http.StatusServiceUnavailable,
			wantField:    "detail",
			wantValue:    "Service not ready: service not ready\nshutting down",
		},
		{
			name:       "version",
			path:       "/version",
			wantStatus: http.StatusOK,
			wantField:  "go_version",
			wantValue:  runtime.Version(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			t.Cleanup(ctrl.Finish)

			mockSvc := mocks.NewMockActivityService(ctrl)
			mockSvc.EXPECT().CheckReadiness(gomock.Any()).Return(tt.readinessErr).AnyTimes()

			req, err := http.NewRequest(http.MethodGet, tt.path, nil)
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			system.Router(mockSvc).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantValue, gjson.Get(rr.Body.String(), tt.wantField).String())
		})
	}
}
