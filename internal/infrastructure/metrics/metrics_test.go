package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("posapi", reg)

	m.BillSubmitted("B2C_RECEIPT", "success", 120*time.Millisecond)
	m.BillSubmitted("B2C_RECEIPT", "success", 80*time.Millisecond)
	m.BillSubmitted("B2B_INVOICE", "rejected", time.Second)
	m.BillRejected("duplicate")
	m.BillCancelled("success")
	m.ObserveHTTP("POST", "/posapi/addBill", 200, 10*time.Millisecond)
	m.TaskRun("posapi:send_data", "success")

	require.Equal(t, 2.0, testutil.ToFloat64(m.billsSubmitted.WithLabelValues("B2C_RECEIPT", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.billsSubmitted.WithLabelValues("B2B_INVOICE", "rejected")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.billsRejected.WithLabelValues("duplicate")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.billsCancelled.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/posapi/addBill", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.taskRuns.WithLabelValues("posapi:send_data", "success")))

	n, err := testutil.GatherAndCount(reg, "posapi_bill_submit_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 2, n, "una serie por outcome")
}

func TestNew_RegistrosIndependientes(t *testing.T) {
	require.NotPanics(t, func() {
		New("posapi", prometheus.NewRegistry())
		New("posapi", prometheus.NewRegistry())
	})
}
