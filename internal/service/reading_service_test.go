package service

import (
	"context"
	"errors"
	"testing"

	"biblioteca-api/internal/models"
)

func newReadingFixture() *ReadingService {
	books := &memBooks{books: []models.BookDoc{{BookID: 1, Title: "Rayuela", TotalPages: 100}}}
	return NewReadingService(&memReadings{}, books)
}

func TestReadingRules(t *testing.T) {
	ctx := context.Background()
	svc := newReadingFixture()

	rd, err := svc.Create(ctx, 5, 1, ReadingInput{PagesRead: ptr(10)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rd.State != models.ReadingInProgress {
		t.Errorf("state = %q, want in_progress", rd.State)
	}

	tests := []struct {
		name    string
		userID  int
		bookID  int
		in      ReadingInput
		wantErr error
	}{
		{"libro inexistente", 5, 2, ReadingInput{}, ErrBookNotFound},
		{"lectura repetida", 5, 1, ReadingInput{}, ErrReadingExists},
		{"más páginas que el libro", 6, 1, ReadingInput{PagesRead: ptr(101)}, ErrPagesExceeded},
		{"estado inválido", 6, 1, ReadingInput{State: ptr("leyendo")}, ErrInvalidReadState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tt.userID, tt.bookID, tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadingCompletesAtTotalPages(t *testing.T) {
	ctx := context.Background()
	svc := newReadingFixture()
	if _, err := svc.Create(ctx, 5, 1, ReadingInput{}); err != nil {
		t.Fatal(err)
	}

	rd, err := svc.Update(ctx, 5, 1, ReadingInput{PagesRead: ptr(100)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rd.State != models.ReadingCompleted {
		t.Errorf("state = %q, want completed", rd.State)
	}

	list, err := svc.List(ctx, 5, models.ReadingCompleted, 10, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}

	if err := svc.Delete(ctx, 5, 1); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, 5, 1); !errors.Is(err, ErrReadingNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestReadingDetailAndStats(t *testing.T) {
	ctx := context.Background()
	svc := newReadingFixture()

	if _, err := svc.Create(ctx, 5, 1, ReadingInput{PagesRead: ptr(33)}); err != nil {
		t.Fatal(err)
	}

	d, err := svc.Get(ctx, 5, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.BookTitle != "Rayuela" || d.BookTotalPages != 100 || d.ProgressPercent != 33 {
		t.Errorf("detail = %+v", d)
	}
	if _, err := svc.Get(ctx, 5, 2); !errors.Is(err, ErrReadingNotFound) {
		t.Errorf("Get inexistente err = %v", err)
	}

	tests := []struct {
		name  string
		items []models.ReadingDoc
		want  models.ReadingStats
	}{
		{"sin lecturas", nil, models.ReadingStats{UserID: 7}},
		{
			"promedio redondeado",
			[]models.ReadingDoc{{UserID: 7, BookID: 1, PagesRead: 10}, {UserID: 7, BookID: 2, PagesRead: 0}, {UserID: 7, BookID: 3, PagesRead: 0}, {UserID: 8, BookID: 1, PagesRead: 99}},
			models.ReadingStats{UserID: 7, TotalPagesRead: 10, TotalReadings: 3, AveragePages: 3.33},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewReadingService(&memReadings{items: tt.items}, &memBooks{})
			got, err := svc.Stats(ctx, 7)
			if err != nil {
				t.Fatal(err)
			}
			if *got != tt.want {
				t.Errorf("stats = %+v, want %+v", *got, tt.want)
			}
		})
	}
}
