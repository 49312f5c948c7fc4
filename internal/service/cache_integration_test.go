//go:build integration

package service

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"biblioteca-api/internal/cache"
	"biblioteca-api/internal/models"
	"biblioteca-api/internal/recommend"
	rt "biblioteca-api/internal/recommend/recommendtest"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func dockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// startRedis levanta redis:7 y lo conecta al paquete cache.
func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if !dockerAvailable() {
		t.Skip("Docker no disponible")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("levantando redis: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatal(err)
	}

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	cache.Use(client)
	t.Cleanup(func() {
		cache.Use(nil)
		client.Close()
	})
	return client
}

const plantedBookID = 999

// plant reemplaza lo cacheado por un resultado reconocible: si Recommend lo
// devuelve, salió de Redis.
func plant(t *testing.T, key string) {
	t.Helper()
	res := recommend.Result{UserID: 1, Items: []models.BookSummary{{BookID: plantedBookID}}, Tier: recommend.TierCluster}
	if err := cache.SetJSON(context.Background(), key, res, time.Minute); err != nil {
		t.Fatal(err)
	}
}

func fromCache(res *recommend.Result) bool {
	return len(res.Items) == 1 && res.Items[0].BookID == plantedBookID
}

func TestRecommendationCacheLifecycle(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()

	users := newMemUsers(
		rt.User(1, rt.Ptr(1), []int{1}, nil),
		rt.User(2, rt.Ptr(1), []int{1}, nil),
		rt.User(3, rt.Ptr(3), []int{2}, nil),
		rt.User(4, rt.Ptr(3), []int{2}, nil),
	)
	catalog := newMemCatalog()
	books := &rt.Books{Books: []models.BookDoc{rt.Book(1, []int{1}, nil), rt.Book(2, []int{2}, nil), rt.Book(3, []int{1}, nil)}}
	engine := recommend.NewEngine(catalog, users, books, &rt.Store{}, 2)

	recSvc := NewRecommendService(engine, nil, time.Minute)
	prefSvc := NewPreferenceService(users, catalog)
	modelSvc := NewModelService(engine, nil)

	req := RecRequest{UserID: 1, Limit: 2}
	exists := func(key string) bool {
		n, err := rdb.Exists(ctx, key).Result()
		if err != nil {
			t.Fatal(err)
		}
		return n == 1
	}

	// primera llamada: entrena y cachea
	first, err := recSvc.Recommend(ctx, req)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	v1 := first.Model
	if v1 == "" || !exists(cacheKey(req, v1)) {
		t.Fatalf("modelo %q, key cacheada = %v", v1, exists(cacheKey(req, v1)))
	}

	t.Run("hit tras la primera llamada", func(t *testing.T) {
		plant(t, cacheKey(req, v1))
		res, err := recSvc.Recommend(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		if !fromCache(res) {
			t.Errorf("items = %+v, want el resultado cacheado", res.Items)
		}
	})

	t.Run("miss tras cambiar preferencias", func(t *testing.T) {
		plant(t, cacheKey(req, v1))
		if _, err := prefSvc.Update(ctx, 1, PreferenceInput{CategoryIDs: &[]int{2}}); err != nil {
			t.Fatal(err)
		}
		if exists(cacheKey(req, v1)) {
			t.Fatal("la key del usuario sigue en Redis")
		}
		res, err := recSvc.Recommend(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		if fromCache(res) || len(res.Items) == 0 || res.Items[0].BookID != 2 {
			t.Errorf("items = %+v, want el libro de Historia primero", res.Items)
		}
	})

	t.Run("miss tras reentrenar", func(t *testing.T) {
		plant(t, cacheKey(req, v1))
		tr, err := modelSvc.Train(ctx, 2, 0)
		if err != nil {
			t.Fatal(err)
		}
		if tr.Version == v1 {
			t.Fatal("la versión del modelo no cambió")
		}
		if exists(cacheKey(req, v1)) {
			t.Error("la key del modelo anterior sigue en Redis")
		}
		res, err := recSvc.Recommend(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		if fromCache(res) || res.Model != tr.Version {
			t.Errorf("modelo = %q, items = %+v", res.Model, res.Items)
		}
		if !exists(cacheKey(req, tr.Version)) {
			t.Error("no se cacheó con la versión nueva")
		}
	})

	t.Run("refresh ignora el cache", func(t *testing.T) {
		key := cacheKey(req, engine.Snapshot().Version())
		plant(t, key)
		res, err := recSvc.Recommend(ctx, RecRequest{UserID: 1, Limit: 2, Refresh: true})
		if err != nil {
			t.Fatal(err)
		}
		if fromCache(res) {
			t.Fatal("refresh=true devolvió lo cacheado")
		}
		var stored recommend.Result
		if ok, err := cache.GetJSON(ctx, key, &stored); err != nil || !ok || fromCache(&stored) {
			t.Errorf("cache tras refresh = %+v, %v, %v", stored.Items, ok, err)
		}
	})
}
