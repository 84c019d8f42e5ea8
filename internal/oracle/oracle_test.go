package oracle

import (
	"context"
	"testing"
)

func TestMatrixOracleTravel(t *testing.T) {
	m := NewMatrixOracle(map[[2]int]float64{{1, 2}: 5, {2, 1}: 5})
	if v, ok := m.Travel(context.Background(), 1, 2); !ok || v != 5 {
		t.Fatalf("Travel(1,2) = %v, %v", v, ok)
	}
	if v, ok := m.Travel(context.Background(), 1, 1); !ok || v != 0 {
		t.Fatalf("Travel(1,1) should be 0, got %v, %v", v, ok)
	}
	if _, ok := m.Travel(context.Background(), 1, 3); ok {
		t.Fatal("expected missing edge to miss")
	}
}

func TestMatrixOracleTravelMany(t *testing.T) {
	m := NewMatrixOracle(map[[2]int]float64{{1, 2}: 5, {1, 3}: 7})
	out, err := m.TravelMany(context.Background(), 1, []int{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("TravelMany: %v", err)
	}
	if out[1] != 0 || out[2] != 5 || out[3] != 7 || out[4] != Inf {
		t.Fatalf("unexpected TravelMany result: %+v", out)
	}
}

// singleOracle only implements CostOracle, exercising the package-level
// TravelMany fallback path.
type singleOracle struct{ m *MatrixOracle }

func (s singleOracle) Travel(ctx context.Context, fromID, toID int) (float64, bool) {
	return s.m.Travel(ctx, fromID, toID)
}

func TestPackageTravelManyFallback(t *testing.T) {
	m := NewMatrixOracle(map[[2]int]float64{{1, 2}: 5})
	s := singleOracle{m: m}
	out := TravelMany(context.Background(), s, 1, []int{2, 3})
	if out[2] != 5 || out[3] != Inf {
		t.Fatalf("unexpected fallback result: %+v", out)
	}
}

func TestRateLimitedOracleDelegates(t *testing.T) {
	m := NewMatrixOracle(map[[2]int]float64{{1, 2}: 9})
	r := NewRateLimitedOracle(m, 1000, 10)
	v, ok := r.Travel(context.Background(), 1, 2)
	if !ok || v != 9 {
		t.Fatalf("Travel through rate limiter = %v, %v", v, ok)
	}
}

func TestRateLimitedOracleRespectsCancellation(t *testing.T) {
	m := NewMatrixOracle(nil)
	r := NewRateLimitedOracle(m, 1, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := r.Travel(ctx, 1, 2); ok {
		t.Fatal("expected cancelled context to fail")
	}
}

func TestInstrumentedOracleDelegatesTravel(t *testing.T) {
	m := NewMatrixOracle(map[[2]int]float64{{1, 2}: 9})
	inst := NewInstrumentedOracle(m)
	v, ok := inst.Travel(context.Background(), 1, 2)
	if !ok || v != 9 {
		t.Fatalf("Travel through instrumented oracle = %v, %v", v, ok)
	}
}

func TestInstrumentedOracleDelegatesTravelMany(t *testing.T) {
	m := NewMatrixOracle(map[[2]int]float64{{1, 2}: 5, {1, 3}: 7})
	inst := NewInstrumentedOracle(m)
	out, err := inst.TravelMany(context.Background(), 1, []int{2, 3})
	if err != nil {
		t.Fatalf("TravelMany: %v", err)
	}
	if out[2] != 5 || out[3] != 7 {
		t.Fatalf("unexpected TravelMany result: %+v", out)
	}
}

func TestInstrumentedOracleTravelManyErrorsWhenInnerIsNotBatch(t *testing.T) {
	inst := NewInstrumentedOracle(singleOracle{m: NewMatrixOracle(nil)})
	if _, err := inst.TravelMany(context.Background(), 1, []int{2}); err == nil {
		t.Fatal("expected an error when the inner oracle does not support TravelMany")
	}
}
