package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rushteam/coursekit/core"
)

// exerciseKeyValueStore 对任意 KeyValueStore 实现跑同一组行为断言。
func exerciseKeyValueStore(t *testing.T, s core.KeyValueStore, ns string) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, ns+"missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) error = %v, want store not found", err)
	}

	if err := s.Set(ctx, ns+"a", []byte("1")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, ns+"a")
	if err != nil || string(got) != "1" {
		t.Fatalf("Get() = %q, %v", got, err)
	}

	if err := s.BatchSet(ctx, map[string][]byte{ns + "b": []byte("2"), ns + "c": []byte("3")}, 60); err != nil {
		t.Fatalf("BatchSet() error = %v", err)
	}
	batch, err := s.BatchGet(ctx, []string{ns + "a", ns + "b", ns + "c", ns + "missing"})
	if err != nil {
		t.Fatalf("BatchGet() error = %v", err)
	}
	if len(batch) != 3 || string(batch[ns+"c"]) != "3" {
		t.Errorf("BatchGet() = %v", batch)
	}

	if err := s.Delete(ctx, ns+"a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, ns+"a"); !core.IsStoreNotFound(err) {
		t.Errorf("Get after Delete error = %v", err)
	}

	zkey := ns + "top"
	for _, q := range []string{"python", "excel", "python", "guitar", "python", "excel"} {
		if err := s.ZIncrBy(ctx, zkey, 1, q); err != nil {
			t.Fatalf("ZIncrBy() error = %v", err)
		}
	}
	top, err := s.ZRange(ctx, zkey, 0, 1)
	if err != nil {
		t.Fatalf("ZRange() error = %v", err)
	}
	if len(top) != 2 || top[0] != "python" || top[1] != "excel" {
		t.Errorf("ZRange(0,1) = %v", top)
	}
	// 负下标在两种后端上语义一致
	if tail, err := s.ZRange(ctx, zkey, -2, -1); err != nil || len(tail) != 2 || tail[0] != "excel" || tail[1] != "guitar" {
		t.Errorf("ZRange(-2,-1) = %v, %v", tail, err)
	}
	if head, err := s.ZRange(ctx, zkey, 0, -2); err != nil || len(head) != 2 || head[1] != "excel" {
		t.Errorf("ZRange(0,-2) = %v, %v", head, err)
	}
	score, err := s.ZScore(ctx, zkey, "python")
	if err != nil || score != 3 {
		t.Errorf("ZScore(python) = %v, %v", score, err)
	}
	if _, err := s.ZScore(ctx, zkey, "haskell"); !core.IsStoreNotFound(err) {
		t.Errorf("ZScore(missing) error = %v", err)
	}
	_ = s.Delete(ctx, zkey)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseKeyValueStore(t, s, "")
	if s.Name() != "memory" {
		t.Errorf("Name() = %q", s.Name())
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	var mu sync.Mutex
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	s := newMemoryStore(time.Hour, clock)
	defer s.Close()

	ctx := context.Background()
	_ = s.Set(ctx, "short", []byte("x"), 5)
	_ = s.Set(ctx, "forever", []byte("y"))

	mu.Lock()
	now = now.Add(6 * time.Second)
	mu.Unlock()

	if _, err := s.Get(ctx, "short"); !core.IsStoreNotFound(err) {
		t.Errorf("expired key still readable: %v", err)
	}
	if v, err := s.Get(ctx, "forever"); err != nil || string(v) != "y" {
		t.Errorf("Get(forever) = %q, %v", v, err)
	}
	if got, _ := s.BatchGet(ctx, []string{"short", "forever"}); len(got) != 1 {
		t.Errorf("BatchGet() returned expired key: %v", got)
	}
}

func TestMemoryStore_ZRangeBounds(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if got, err := s.ZRange(ctx, "empty", 0, -1); err != nil || len(got) != 0 {
		t.Errorf("ZRange(empty) = %v, %v", got, err)
	}
	for i := 0; i < 5; i++ {
		_ = s.ZIncrBy(ctx, "z", float64(i), fmt.Sprintf("m%d", i))
	}
	// 成员按分数降序为 m4 m3 m2 m1 m0
	tests := []struct {
		start, stop int64
		want        []string
	}{
		{0, -1, []string{"m4", "m3", "m2", "m1", "m0"}},
		{0, 100, []string{"m4", "m3", "m2", "m1", "m0"}},
		{2, 3, []string{"m2", "m1"}},
		{4, 1, []string{}},
		{0, -2, []string{"m4", "m3", "m2", "m1"}},
		{-2, -1, []string{"m1", "m0"}},
		{-100, 1, []string{"m4", "m3"}},
		{-3, 0, []string{}},
		{0, -6, []string{}},
		{5, -1, []string{}},
	}
	for _, tt := range tests {
		got, err := s.ZRange(ctx, "z", tt.start, tt.stop)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("ZRange(%d,%d) = %v, want %v", tt.start, tt.stop, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ZRange(%d,%d) = %v, want %v", tt.start, tt.stop, got, tt.want)
				break
			}
		}
	}
}

func TestMemoryStore_CloseIdempotent(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

// 设置 COURSEKIT_TEST_REDIS=host:port 时对真实 Redis 运行同一组断言。
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("COURSEKIT_TEST_REDIS")
	if addr == "" {
		t.Skip("COURSEKIT_TEST_REDIS not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ns := fmt.Sprintf("coursekit-test-%d:", time.Now().UnixNano())
	s, err := NewRedisStore(ctx, RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer s.Close()
	exerciseKeyValueStore(t, s, ns)
}

func TestNewRedisStore_Unavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err := NewRedisStore(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	if !core.IsUnavailable(err) {
		t.Errorf("error = %v, want UNAVAILABLE", err)
	}
}
