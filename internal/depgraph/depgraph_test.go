package depgraph

import (
	"context"
	"testing"

	"github.com/hochfrequenz/task-engine/internal/domain"
)

type memStore map[int]*domain.Task

func (m memStore) Get(_ context.Context, id int) (*domain.Task, error) {
	t, ok := m[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func TestCheckExistence(t *testing.T) {
	store := memStore{1: {ID: 1}, 2: {ID: 2}}

	if err := CheckExistence(context.Background(), store, []int{1, 2}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckExistence(context.Background(), store, []int{1, 99}); err == nil {
		t.Error("expected DepMissing error for id 99")
	}
}

func TestCheckAcyclic_DirectCycle(t *testing.T) {
	// Task1 -> Task2 exists. Updating Task1 with deps=[Task2] where Task2
	// itself (transitively) depends on Task1 is circular.
	store := memStore{
		1: {ID: 1, Dependencies: []int{2}},
		2: {ID: 2, Dependencies: []int{1}},
	}

	err := CheckAcyclic(context.Background(), store, 1, []int{2})
	if err == nil {
		t.Fatal("expected Circular error")
	}
}

func TestCheckAcyclic_NoCycle(t *testing.T) {
	store := memStore{
		1: {ID: 1},
		2: {ID: 2, Dependencies: []int{1}},
		3: {ID: 3},
	}

	if err := CheckAcyclic(context.Background(), store, 3, []int{2}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheckAcyclic_TransitiveCycle(t *testing.T) {
	store := memStore{
		1: {ID: 1, Dependencies: []int{2}},
		2: {ID: 2, Dependencies: []int{3}},
		3: {ID: 3},
	}

	// Proposing task3 to depend on task1 would close 1->2->3->1.
	err := CheckAcyclic(context.Background(), store, 3, []int{1})
	if err == nil {
		t.Fatal("expected Circular error for transitive cycle")
	}
}

func TestAllComplete(t *testing.T) {
	store := memStore{
		1: {ID: 1, Status: domain.StatusCompleted},
		2: {ID: 2, Status: domain.StatusOpen},
	}

	ok, err := AllComplete(context.Background(), store, []int{1})
	if err != nil || !ok {
		t.Errorf("AllComplete([1]) = %v, %v; want true, nil", ok, err)
	}

	ok, err = AllComplete(context.Background(), store, []int{1, 2})
	if err != nil || ok {
		t.Errorf("AllComplete([1,2]) = %v, %v; want false, nil", ok, err)
	}

	ok, err = AllComplete(context.Background(), store, []int{99})
	if err != nil || ok {
		t.Errorf("AllComplete([99]) = %v, %v; want false, nil", ok, err)
	}

	ok, err = AllComplete(context.Background(), store, nil)
	if err != nil || !ok {
		t.Errorf("AllComplete(nil) = %v, %v; want true, nil (vacuous)", ok, err)
	}
}
