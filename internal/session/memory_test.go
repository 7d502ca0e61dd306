package session

import (
	"sync"
	"testing"
)

func TestMemoryStore_SetGetClear(t *testing.T) {
	s := NewMemoryStore()
	if _, ok := s.Get(); ok {
		t.Fatalf("new store should be empty")
	}

	s.Set("first")
	s.Set("second")
	if got, ok := s.Get(); !ok || got != "second" {
		t.Fatalf("Get = %q,%v; want second,true", got, ok)
	}

	s.Clear()
	if _, ok := s.Get(); ok {
		t.Fatalf("expected empty after Clear")
	}

	s.Set("x")
	s.Set("")
	if _, ok := s.Get(); ok {
		t.Fatalf("Set(\"\") should clear the slot")
	}
}

func TestMemoryStore_ConcurrentReadsSeeWholeValues(t *testing.T) {
	s := NewMemoryStore()
	const old, next = "old-token-value", "new-token-value"
	s.Set(old)

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				got, ok := s.Get()
				if ok && got != old && got != next {
					errs <- got
					return
				}
			}
		}()
	}
	for j := 0; j < 1000; j++ {
		if j%2 == 0 {
			s.Set(next)
		} else {
			s.Set(old)
		}
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Fatalf("observed torn value %q", got)
	}
}

func TestToken_NilStore(t *testing.T) {
	if _, ok := Token(nil); ok {
		t.Fatalf("nil store must read as no token")
	}
}
