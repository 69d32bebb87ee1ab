package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New(time.Minute)

	c.Set("k", 42)

	v, ok := c.Get("k")

	if !ok || v.(int) != 42 {
		t.Fatalf("Get = (%v, %v)", v, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("missing key reported present")
	}
}

func TestEntriesExpire(t *testing.T) {
	c := New(10 * time.Millisecond)

	c.Set("k", "v")

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry still served")
	}
}

func TestDelete(t *testing.T) {
	c := New(time.Minute)

	c.Set("k", "v")
	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Fatal("deleted entry still served")
	}
}
