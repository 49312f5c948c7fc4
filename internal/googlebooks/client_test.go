package googlebooks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"
)

const sampleResponse = `{
  "totalItems": 2,
  "items": [
    {"id": "abc", "volumeInfo": {
      "title": "Go en práctica",
      "authors": ["Ana Pérez"],
      "publisher": "Norma",
      "pageCount": 320,
      "categories": ["Computers"],
      "language": "es",
      "industryIdentifiers": [{"type": "OTHER", "identifier": "x"}, {"type": "ISBN_13", "identifier": "9781234567897"}],
      "imageLinks": {"thumbnail": "http://img/abc.jpg"}
    }},
    {"id": "sin-titulo", "volumeInfo": {"pageCount": 10}}
  ]
}`

func TestSearchMapsVolumes(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	books, err := c.Search(context.Background(), Query{Q: "ignorado", Subject: "programming", Language: "es", Max: 100})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.Contains(gotQuery, "q=subject%3Aprogramming") || !strings.Contains(gotQuery, "maxResults=40") {
		t.Errorf("query = %s", gotQuery)
	}
	if len(books) != 1 {
		t.Fatalf("got %d books, want 1 (untitled skipped)", len(books))
	}
	b := books[0]
	if b.Title != "Go en práctica" || b.ISBN != "9781234567897" || b.TotalPages != 320 {
		t.Errorf("book = %+v", b)
	}
	if b.Synopsis != noSynopsis {
		t.Errorf("synopsis = %q, want default", b.Synopsis)
	}
}

func TestSearchDefaults(t *testing.T) {
	p, ok := toPrefill(volume{ID: "z", VolumeInfo: volumeInfo{Title: "T", Description: strings.Repeat("a", 2500)}})
	if !ok {
		t.Fatal("expected prefill")
	}
	if p.Authors[0] != unknownAuthor || p.Publisher != unknownPublisher {
		t.Errorf("defaults = %+v", p)
	}
	if n := len([]rune(p.Synopsis)); n != maxSynopsis || !strings.HasSuffix(p.Synopsis, "...") {
		t.Errorf("synopsis length = %d", n)
	}
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	if _, err := c.Search(context.Background(), Query{Q: "go"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestCircuitOpensAfterFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	for i := 0; i < 15; i++ {
		c.Search(context.Background(), Query{Q: "go"})
	}
	if calls != 10 {
		t.Errorf("upstream calls = %d, want 10 before the circuit opens", calls)
	}
}

func TestBreakerIgnoresClientSideErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		cancelled bool
		wantErr   error
		wantCalls int
		wantState gobreaker.State
	}{
		{name: "404 no cuenta", status: http.StatusNotFound, wantErr: ErrRejected, wantCalls: 15, wantState: gobreaker.StateClosed},
		{name: "400 no cuenta", status: http.StatusBadRequest, wantErr: ErrRejected, wantCalls: 15, wantState: gobreaker.StateClosed},
		{name: "cancelación no cuenta", status: http.StatusOK, cancelled: true, wantErr: context.Canceled, wantCalls: 0, wantState: gobreaker.StateClosed},
		{name: "429 cuenta", status: http.StatusTooManyRequests, wantErr: ErrUnavailable, wantCalls: 10, wantState: gobreaker.StateOpen},
		{name: "503 cuenta", status: http.StatusServiceUnavailable, wantErr: ErrUnavailable, wantCalls: 10, wantState: gobreaker.StateOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				w.Write([]byte(sampleResponse))
			}))
			defer srv.Close()

			ctx := context.Background()
			if tt.cancelled {
				var cancel context.CancelFunc
				ctx, cancel = context.WithCancel(ctx)
				cancel()
			}

			c := NewClient("", WithBaseURL(srv.URL))
			for i := 0; i < 15; i++ {
				_, err := c.Search(ctx, Query{Q: "go"})
				// con el circuito abierto el error ya no viene del upstream
				if i < tt.wantCalls || tt.wantCalls == 0 {
					if !errors.Is(err, tt.wantErr) {
						t.Fatalf("intento %d: err = %v, want %v", i, err, tt.wantErr)
					}
				}
			}
			if calls != tt.wantCalls {
				t.Errorf("upstream calls = %d, want %d", calls, tt.wantCalls)
			}
			if got := c.cb.State(); got != tt.wantState {
				t.Errorf("state = %s, want %s", got, tt.wantState)
			}
		})
	}
}
