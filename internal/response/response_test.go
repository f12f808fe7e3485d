package response

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/logging"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	return c, rec
}

func TestJSONWrapsMessageDataAndMeta(t *testing.T) {
	c, rec := newContext()
	JSON(c, http.StatusOK, "Product created successfully.", map[string]int{"id": 3}, map[string]int{"total": 1})

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Product created successfully.", body["message"])
	assert.Equal(t, map[string]interface{}{"id": float64(3)}, body["data"])
	assert.Equal(t, map[string]interface{}{"total": float64(1)}, body["meta"])
}

func TestJSONOmitsEmptyDataAndMeta(t *testing.T) {
	c, rec := newContext()
	JSON(c, http.StatusNotFound, "Product not found.", nil, nil)

	assert.JSONEq(t, `{"message":"Product not found."}`, rec.Body.String())
}

func TestJSONHidesInternalDetail(t *testing.T) {
	c, rec := newContext()
	var logs bytes.Buffer
	log := logging.NewWithWriter(&logs, "info", "json")
	logging.WithEntry(c, logrus.NewEntry(log))

	JSON(c, http.StatusInternalServerError, "pq: connection refused", nil, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Something went wrong."}`, rec.Body.String())
	assert.Contains(t, logs.String(), "pq: connection refused")
}

func TestRawPassthrough(t *testing.T) {
	c, rec := newContext()
	Raw(c, http.StatusOK, gin.H{"message": "Login successful.", "token": "abc"})

	assert.JSONEq(t, `{"message":"Login successful.","token":"abc"}`, rec.Body.String())
}
