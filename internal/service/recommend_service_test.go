package service

import (
	"context"
	"errors"
	"net"
	"testing"

	"biblioteca-api/internal/models"
	"biblioteca-api/internal/recommend"
	rt "biblioteca-api/internal/recommend/recommendtest"
	"biblioteca-api/internal/trainnode"
)

func newEngine(store recommend.ModelStore) (*recommend.Engine, *rt.Users) {
	vocab := &rt.Vocabulary{
		Categories: []models.Category{{CategoryID: 1, Name: "Ciencia"}, {CategoryID: 2, Name: "Historia"}},
		Languages:  []models.Language{{LanguageID: 1, Name: "Español"}},
		Levels:     models.DefaultLevels,
	}
	users := &rt.Users{Users: []models.UserDoc{
		rt.User(1, rt.Ptr(1), []int{1}, nil),
		rt.User(2, rt.Ptr(1), []int{1}, nil),
		rt.User(3, rt.Ptr(3), []int{2}, []int{1}),
	}}
	books := &rt.Books{Books: []models.BookDoc{rt.Book(1, []int{1}, nil), rt.Book(2, []int{2}, nil), rt.Book(3, nil, []int{1})}}
	return recommend.NewEngine(vocab, users, books, store, 2), users
}

func TestClampLimit(t *testing.T) {
	for in, want := range map[int]int{0: 10, -3: 10, 7: 7, 50: 50, 500: 50} {
		if got := ClampLimit(in); got != want {
			t.Errorf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestRecommendStoresHistory(t *testing.T) {
	engine, _ := newEngine(&rt.Store{})
	hist := &memHistory{}
	svc := NewRecommendService(engine, hist, 0)

	res, err := svc.Recommend(context.Background(), RecRequest{UserID: 1, Limit: 0})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(res.Items) != 3 {
		t.Errorf("items = %d, want 3", len(res.Items))
	}
	if len(hist.recs) != 1 || hist.recs[0].Algo != "kmeans" || len(hist.recs[0].BookIDs) != 3 {
		t.Errorf("history = %+v", hist.recs)
	}

	// usuario inexistente: lista vacía y sin historial
	res, err = svc.Recommend(context.Background(), RecRequest{UserID: 99})
	if err != nil || len(res.Items) != 0 {
		t.Fatalf("unknown user = %v, %v", res, err)
	}
	if len(hist.recs) != 1 {
		t.Errorf("history grew for unknown user")
	}
}

func TestModelServiceTrainsLocally(t *testing.T) {
	store := &rt.Store{}
	engine, _ := newEngine(store)
	svc := NewModelService(engine, nil)

	res, err := svc.Train(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if res.K != 3 || res.TrainedUsers != 3 || store.Saves != 1 {
		t.Errorf("res = %+v saves = %d", res, store.Saves)
	}
	info, err := svc.Info(context.Background())
	if err != nil || info.Status != "ready" {
		t.Errorf("Info = %+v, %v", info, err)
	}
}

func TestModelServiceDispatchesToNode(t *testing.T) {
	store := &rt.Store{}
	apiEngine, _ := newEngine(store)
	nodeEngine, _ := newEngine(store)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		trainnode.Serve(ctx, ln, "nodo-1", nodeEngine)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	// el primer nodo no existe: se prueba el siguiente
	dead, _ := net.Listen("tcp", "127.0.0.1:0")
	deadAddr := dead.Addr().String()
	dead.Close()

	svc := NewModelService(apiEngine, []string{deadAddr, ln.Addr().String()})
	res, err := svc.Train(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if res.K != 2 || res.Version == "" {
		t.Errorf("res = %+v", res)
	}
	if got := apiEngine.Snapshot().Version(); got != res.Version {
		t.Errorf("api snapshot version = %q, want %q", got, res.Version)
	}
}

func TestModelServiceInsufficientData(t *testing.T) {
	engine, users := newEngine(&rt.Store{})
	users.Users = users.Users[:1]
	svc := NewModelService(engine, nil)
	if _, err := svc.Train(context.Background(), 0, 1); !errors.Is(err, recommend.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	engine, _ := newEngine(&rt.Store{})
	hist := &memHistory{}
	svc := NewRecommendService(engine, hist, 0)

	for _, limit := range []int{1, 2, 3} {
		if _, err := svc.Recommend(context.Background(), RecRequest{UserID: 1, Limit: limit}); err != nil {
			t.Fatalf("Recommend: %v", err)
		}
	}

	got, err := svc.History(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("history = %d entries, want 2", len(got))
	}
	if len(got[0].BookIDs) != 3 || len(got[1].BookIDs) != 2 {
		t.Errorf("history order = %v, %v", got[0].BookIDs, got[1].BookIDs)
	}

	if other, _ := svc.History(context.Background(), 2, 10); len(other) != 0 {
		t.Errorf("history of user 2 = %+v, want empty", other)
	}
}
