package vm

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewMetricsRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	// The per-opcode CounterVec exports no series until a label is used, so
	// before any observation only call depth, gas and reverts are gathered.
	if len(families) != 3 {
		t.Fatalf("registered metric families = %d, want 3 (call depth, gas, reverts)", len(families))
	}

	m.observeOp(ADD)
	m.observeFrame(2)
	m.observeGas(21000)
	m.observeRevert()

	families, err = reg.Gather()
	if err != nil {
		t.Fatalf("Gather after observing: %v", err)
	}
	if len(families) != 4 {
		t.Fatalf("registered metric families after observing = %d, want 4", len(families))
	}
}

func TestNewMetricsDoublyRegisteredPanicsOnSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	defer func() {
		if recover() == nil {
			t.Fatal("registering a second Metrics against the same registry did not panic on the duplicate collector names")
		}
	}()
	NewMetrics(reg)
}
