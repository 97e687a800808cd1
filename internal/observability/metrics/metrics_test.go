package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSale(t *testing.T) {
	m := New()

	m.RecordSale(3)
	m.RecordSale(2)

	if got := testutil.ToFloat64(m.salesTotal); got != 2 {
		t.Fatalf("expected 2 sales, got %v", got)
	}
	if got := testutil.ToFloat64(m.salesUnits); got != 5 {
		t.Fatalf("expected 5 units, got %v", got)
	}
}

func TestRecordStockAlertByStatus(t *testing.T) {
	m := New()

	m.RecordStockAlert("low-stock")
	m.RecordStockAlert("low-stock")
	m.RecordStockAlert("out-of-stock")
	m.RecordStockAlert("expired")

	if got := testutil.ToFloat64(m.stockAlerts.WithLabelValues("low-stock")); got != 2 {
		t.Fatalf("expected 2 low-stock alerts, got %v", got)
	}
	if got := testutil.ToFloat64(m.stockAlerts.WithLabelValues("out-of-stock")); got != 1 {
		t.Fatalf("expected 1 out-of-stock alert, got %v", got)
	}
	if got := testutil.ToFloat64(m.stockAlerts.WithLabelValues("expired")); got != 1 {
		t.Fatalf("expected 1 expired alert, got %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	m.RecordSale(1)
	m.RecordTransfer()
	m.RecordStockAlert("low-stock")
}
