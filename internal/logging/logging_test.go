package logging

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", "json")
	log.WithField("account_id", 7).Debug("account created")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "account created", line["msg"])
	assert.Equal(t, float64(7), line["account_id"])
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	log := NewWithWriter(&bytes.Buffer{}, "chatty", "text")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestEntryRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	fallback := Entry(c)
	assert.NotNil(t, fallback)

	entry := logrus.NewEntry(logrus.New()).WithField("request_id", "abc")
	WithEntry(c, entry)
	assert.Equal(t, "abc", Entry(c).Data["request_id"])
}
