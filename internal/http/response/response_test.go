package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	assert.EqualValues(t, 3, NewPagination(2, 20, 41).TotalPage)
	assert.EqualValues(t, 0, NewPagination(1, 20, 0).TotalPage)
	assert.EqualValues(t, 0, NewPagination(1, 0, 10).TotalPage)
}

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestErrorAttachesRequestID(t *testing.T) {
	c, w := newContext()
	c.Set("request_id", "req-1")
	Error(c, CodeForbidden, "denied")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		StatusCode int               `json:"status_code"`
		Msg        string            `json:"msg"`
		Data       map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CodeForbidden, body.StatusCode)
	assert.Equal(t, "denied", body.Msg)
	assert.Equal(t, "req-1", body.Data["request_id"])
}

func TestSuccessWithPageFlattensEnvelope(t *testing.T) {
	c, w := newContext()
	SuccessWithPage(c, []int{1, 2}, NewPagination(1, 2, 5))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.JSONEq(t, `0`, string(body["status_code"]))
	assert.JSONEq(t, `[1,2]`, string(body["data"]))
	assert.JSONEq(t, `{"page":1,"page_size":2,"total":5,"total_page":3}`, string(body["pagination"]))
}
