package catalog

import (
	"testing"

	"trashcvrp/internal/model"
)

func sampleNodes() []model.Node {
	return []model.Node{
		{ID: 1, Demand: 5, Opens: 0, Closes: 10, Kind: model.Container},
		{ID: 2, Demand: 3, Opens: 0, Closes: 10, Kind: model.Container},
		{ID: 100, Opens: 0, Closes: 1000, Kind: model.Depot},
		{ID: 200, Opens: 0, Closes: 1000, Kind: model.Dump},
	}
}

func TestNewAndLookup(t *testing.T) {
	cat, err := New(sampleNodes())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cat.Len() != 4 {
		t.Fatalf("expected 4 nodes, got %d", cat.Len())
	}
	if got := cat.Containers(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected containers: %v", got)
	}
	if got := cat.Dumps(); len(got) != 1 || got[0] != 200 {
		t.Fatalf("unexpected dumps: %v", got)
	}
	if got := cat.Depots(); len(got) != 1 || got[0] != 100 {
		t.Fatalf("unexpected depots: %v", got)
	}
	if _, ok := cat.Get(999); ok {
		t.Fatal("expected unknown id to miss")
	}
	if n, ok := cat.Get(1); !ok || n.Demand != 5 {
		t.Fatalf("expected node 1 with demand 5, got %+v ok=%v", n, ok)
	}
}

func TestNewRejectsDuplicateID(t *testing.T) {
	nodes := append(sampleNodes(), model.Node{ID: 1, Demand: 1, Kind: model.Container})
	if _, err := New(nodes); err == nil {
		t.Fatal("expected error on duplicate id")
	}
}

func TestNewRejectsInvalidNode(t *testing.T) {
	nodes := []model.Node{{ID: 1, Opens: 10, Closes: 0, Demand: 1, Kind: model.Container}}
	if _, err := New(nodes); err == nil {
		t.Fatal("expected error on invalid node")
	}
}

func TestMustGetPanicsOnUnknown(t *testing.T) {
	cat, err := New(sampleNodes())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected MustGet to panic on unknown id")
		}
	}()
	cat.MustGet(9999)
}
