package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordLedger(t *testing.T) {
	before := testutil.ToFloat64(ledgerTransactions.WithLabelValues("create", "error"))

	RecordLedger("create", errors.New("boom"), time.Second)
	RecordLedger("create", nil, time.Second)

	assert.Equal(t, before+1, testutil.ToFloat64(ledgerTransactions.WithLabelValues("create", "error")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(ledgerTransactions.WithLabelValues("create", "ok")), 1.0)
}

func TestRecordDivergence(t *testing.T) {
	before := testutil.ToFloat64(mirrorDivergence.WithLabelValues("transfer"))
	RecordDivergence("transfer")
	assert.Equal(t, before+1, testutil.ToFloat64(mirrorDivergence.WithLabelValues("transfer")))
}

func TestHandler(t *testing.T) {
	RecordResponse("read", 404)
	RecordMirror("create", nil)

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `supplychain_router_responses_total{route="read",status="404"}`)
	assert.Contains(t, rr.Body.String(), "supplychain_mirror_writes_total")
}
