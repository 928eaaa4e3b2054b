package snapshot

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// storeFactories lets both implementations run the same behavioral suite.
func storeFactories(t *testing.T) map[string]Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(client, "test:"),
	}
}

func TestStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(ctx, "watch-1", "lastBlockNum")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok {
				t.Error("expected missing field on empty store")
			}
		})
	}
}

func TestStoreSetGet(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Set(ctx, "watch-1", map[string]string{
				"lastBlockNum": "500",
				"lastBalance":  "1000000000000000000",
			})
			if err != nil {
				t.Fatalf("set: %v", err)
			}

			v, ok, err := store.Get(ctx, "watch-1", "lastBlockNum")
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if v != "500" {
				t.Errorf("lastBlockNum = %q, want 500", v)
			}

			// Partial update leaves the other field intact.
			if err := store.Set(ctx, "watch-1", map[string]string{"lastBlockNum": "501"}); err != nil {
				t.Fatalf("update: %v", err)
			}
			v, ok, _ = store.Get(ctx, "watch-1", "lastBalance")
			if !ok || v != "1000000000000000000" {
				t.Errorf("lastBalance after partial update = %q ok=%v", v, ok)
			}
		})
	}
}

func TestStoreInstanceIsolation(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(ctx, "watch-1", map[string]string{"lastPrice": "23.4"}); err != nil {
				t.Fatalf("set: %v", err)
			}
			_, ok, err := store.Get(ctx, "watch-2", "lastPrice")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if ok {
				t.Error("instances must not share fields")
			}
		})
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(ctx, "watch-1", map[string]string{"lastPrice": "23.4"}); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Delete(ctx, "watch-1"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			_, ok, err := store.Get(ctx, "watch-1", "lastPrice")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if ok {
				t.Error("field survived delete")
			}
		})
	}
}
