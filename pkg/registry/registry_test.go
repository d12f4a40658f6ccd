package registry

import (
	"errors"
	"sync"
	"testing"
)

type item struct {
	n int
}

func TestConcurrentAdd(t *testing.T) {
	r := NewRegistry[item]()
	var wg sync.WaitGroup
	const citems = 3
	c := citems
	wg.Add(c)
	for c > 0 {
		go func(val int) {
			r.Add(item{n: val})
			wg.Done()
		}(c)
		c--
	}
	wg.Wait()
	r.Delete(1)
	res := r.GetAll()
	if len(res) != citems-1 || r.Len() != citems-1 {
		t.Fatalf("registry content len is wrong. Should be %d is %d", citems-1, len(res))
	}
}

func TestGetDelete(t *testing.T) {
	r := NewRegistry[item]()
	id := r.Add(item{n: 1})
	got, err := r.GetByID(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.n != 1 {
		t.Fatalf("got %d", got.n)
	}

	_, err = r.GetByID(2)
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("should return err")
	}

	err = r.Delete(2)
	if err == nil {
		t.Fatal("should return err")
	}
	err = r.Delete(1)
	if err != nil {
		t.Fatal("should not return err")
	}
}

func TestGetAllIsACopy(t *testing.T) {
	r := NewRegistry[*item]()
	r.Add(&item{n: 1})
	all := r.GetAll()
	delete(all, 1)
	if r.Len() != 1 {
		t.Fatal("registry changed through GetAll")
	}
}
