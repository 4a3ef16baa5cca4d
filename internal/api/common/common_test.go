package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestWriteJSONResponse(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	WriteJSONResponse(rr, MessageResponse{Message: "Signed up a@mergington.edu for Chess Club"}, http.StatusOK)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "Signed up a@mergington.edu for Chess Club", gjson.Get(rr.Body.String(), "message").String())
}

func TestWriteDetailResponse(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	WriteDetailResponse(rr, "Activity not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"detail":"Activity not found"}`, rr.Body.String())
}
