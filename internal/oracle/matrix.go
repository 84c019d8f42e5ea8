package oracle

import "context"

// MatrixOracle answers Travel from a dense map keyed on directed pairs,
// as loaded from a <base>.dmatrix-time.txt file by internal/parse. It is
// the default CostOracle when OSRM_BASE_URL is not set.
type MatrixOracle struct {
	costs map[[2]int]float64
}

// NewMatrixOracle builds a MatrixOracle from pre-parsed directed edges.
func NewMatrixOracle(edges map[[2]int]float64) *MatrixOracle {
	m := make(map[[2]int]float64, len(edges))
	for k, v := range edges {
		m[k] = v
	}
	return &MatrixOracle{costs: m}
}

func (m *MatrixOracle) Travel(_ context.Context, fromID, toID int) (float64, bool) {
	if fromID == toID {
		return 0, true
	}
	v, ok := m.costs[[2]int{fromID, toID}]
	return v, ok
}

func (m *MatrixOracle) TravelMany(_ context.Context, fromID int, toIDs []int) (map[int]float64, error) {
	out := make(map[int]float64, len(toIDs))
	for _, id := range toIDs {
		if id == fromID {
			out[id] = 0
			continue
		}
		if v, ok := m.costs[[2]int{fromID, id}]; ok {
			out[id] = v
		} else {
			out[id] = Inf
		}
	}
	return out, nil
}
