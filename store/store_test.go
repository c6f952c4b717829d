package store

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRU(t *testing.T) {
	kv := newStore(t, Option{Driver: "lru", Size: 16})
	testBasic(t, kv)
	testTTL(t, kv)
}

func TestLRUBounded(t *testing.T) {
	kv := newStore(t, Option{Size: 2})
	kv.Set("a", "1", 0)
	kv.Set("b", "2", 0)
	kv.Set("c", "3", 0)
	assert.Equal(t, 2, kv.Len())
}

func TestBadger(t *testing.T) {
	kv := newStore(t, Option{Driver: "badger", Prefix: "render:"})
	testBasic(t, kv)
	testTTL(t, kv)
}

func TestBadgerDisk(t *testing.T) {
	path := t.TempDir()
	first, err := New(Option{Driver: "badger", Path: path})
	if err != nil {
		t.Fatal(err)
	}
	first.Set("page", "<div>persisted</div>", 0)
	first.Close()

	kv := newStore(t, Option{Driver: "badger", Path: path})
	value, ok := kv.Get("page")
	assert.True(t, ok)
	assert.Equal(t, "<div>persisted</div>", value)
}

func TestBadgerBoundedByTTL(t *testing.T) {
	kv := newStore(t, Option{Driver: "badger", Size: 2, TTL: time.Second})
	for i := 0; i < 50; i++ {
		kv.Set(fmt.Sprintf("page-%d", i), "<div></div>", 0)
	}
	assert.Equal(t, 50, kv.Len())
	assert.Eventually(t, func() bool { return kv.Len() == 0 }, 3*time.Second, 100*time.Millisecond)

	// no ttl set, the default one applies
	kv = newStore(t, Option{Driver: "badger"})
	assert.Equal(t, DefaultTTL, kv.(expiring).ttl)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("SSR_TEST_REDIS")
	if addr == "" {
		t.Skip("SSR_TEST_REDIS is not set")
	}
	kv := newStore(t, Option{Driver: "redis", Addr: addr, Prefix: "ssr-test:"})
	testBasic(t, kv)
}

func TestUnknownDriver(t *testing.T) {
	_, err := New(Option{Driver: "memcached"})
	assert.NotNil(t, err)
}

func testBasic(t *testing.T, kv Store) {
	kv.Clear()
	kv.Set("key1", "<div>bar</div>", 0)
	kv.Set("key2", "", 0)

	value, ok := kv.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "<div>bar</div>", value)

	value, ok = kv.Get("key2")
	assert.True(t, ok)
	assert.Equal(t, "", value)

	_, ok = kv.Get("key3")
	assert.False(t, ok)

	assert.True(t, kv.Has("key1"))
	assert.Equal(t, 2, kv.Len())

	kv.Del("key1")
	assert.False(t, kv.Has("key1"))

	kv.Clear()
	assert.Equal(t, 0, kv.Len())
}

func testTTL(t *testing.T, kv Store) {
	kv.Set("short", "value", time.Second)
	assert.True(t, kv.Has("short"))
	time.Sleep(1100 * time.Millisecond)
	_, ok := kv.Get("short")
	assert.False(t, ok)
}

func newStore(t *testing.T, option Option) Store {
	kv, err := New(option)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}
