package inject

import (
	"reflect"
	"sync"
	"testing"
)

type clock interface {
	Now() int
}

type fixedClock struct{ at int }

func (c fixedClock) Now() int { return c.at }

type settings struct {
	Region string
}

func TestContainer_SetAndGet(t *testing.T) {
	c := New()
	Set[clock](c, fixedClock{at: 42})
	Set(c, &settings{Region: "eu"})

	if c.Len() != 2 {
		t.Fatalf("inject:inject_test - expected 2 values, got %d", c.Len())
	}

	got, ok := Get[clock](c)
	if !ok {
		t.Fatal("inject:inject_test - expected clock to be provided")
	}
	if got.Now() != 42 {
		t.Errorf("inject:inject_test - expected 42, got %d", got.Now())
	}

	s, ok := Get[*settings](c)
	if !ok || s.Region != "eu" {
		t.Errorf("inject:inject_test - expected settings for eu, got %+v (ok=%v)", s, ok)
	}
}

func TestContainer_LookupIsByExactType(t *testing.T) {
	c := New()
	Set(c, fixedClock{at: 1})

	if _, ok := Get[clock](c); ok {
		t.Error("inject:inject_test - concrete registration must not satisfy interface lookup")
	}
	if _, ok := c.Obtain(reflect.TypeFor[fixedClock]()); !ok {
		t.Error("inject:inject_test - expected concrete lookup to succeed")
	}
	if _, ok := Get[settings](c); ok {
		t.Error("inject:inject_test - expected missing type to be absent")
	}
}

func TestContainer_SetReplaces(t *testing.T) {
	c := New()
	Set[clock](c, fixedClock{at: 1})
	Set[clock](c, fixedClock{at: 2})

	got, _ := Get[clock](c)
	if got.Now() != 2 {
		t.Errorf("inject:inject_test - expected replacement value 2, got %d", got.Now())
	}
	if c.Len() != 1 {
		t.Errorf("inject:inject_test - expected 1 value, got %d", c.Len())
	}
}

func TestGet_NilProvider(t *testing.T) {
	if _, ok := Get[clock](nil); ok {
		t.Error("inject:inject_test - expected nil provider to yield nothing")
	}
}

func TestContainer_ConcurrentAccess(t *testing.T) {
	c := New()
	Set[clock](c, fixedClock{at: 7})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if got, ok := Get[clock](c); !ok || got.Now() != 7 {
				t.Errorf("inject:inject_test - concurrent lookup failed")
			}
		}()
		go func(i int) {
			defer wg.Done()
			Set(c, &settings{Region: "r"})
		}(i)
	}
	wg.Wait()
}
