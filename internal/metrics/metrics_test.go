package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserver(t *testing.T) {
	var o Observer

	o.ObserveFetch("TEST_OK", 120*time.Millisecond, 2048, nil)
	o.ObserveFetch("TEST_FAIL", time.Second, 0, errors.New("404"))
	o.ObserveParse("TEST_OK", 101, nil)
	o.ObserveParse("TEST_BAD", 0, errors.New("table not found"))

	assert.Equal(t, 1.0, testutil.ToFloat64(FetchTotal.WithLabelValues("TEST_OK", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(FetchTotal.WithLabelValues("TEST_FAIL", "error")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(FetchBytes.WithLabelValues("TEST_OK")))
	assert.Equal(t, 101.0, testutil.ToFloat64(Tickers.WithLabelValues("TEST_OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ParseErrors.WithLabelValues("TEST_BAD")))
}
