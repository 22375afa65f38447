package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/messages/{id}", "200"))
	RecordRequest("GET", "/messages/{id}", 200, 0.01)
	RecordRequest("GET", "/messages/{id}", 200, 0.02)
	after := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/messages/{id}", "200"))
	assert.Equal(t, before+2, after)
}

func TestRecordEvent(t *testing.T) {
	ok := testutil.ToFloat64(EventsPublished.WithLabelValues("message.read", "ok"))
	failed := testutil.ToFloat64(EventsPublished.WithLabelValues("message.read", "error"))

	RecordEvent("message.read", nil)
	RecordEvent("message.read", errors.New("down"))

	assert.Equal(t, ok+1, testutil.ToFloat64(EventsPublished.WithLabelValues("message.read", "ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(EventsPublished.WithLabelValues("message.read", "error")))
}
