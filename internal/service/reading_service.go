package service

import (
	"context"
	"errors"

	"biblioteca-api/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
	"gonum.org/v1/gonum/floats/scalar"
)

type ReadingService struct {
	readings ReadingStore
	books    BookStore
}

func NewReadingService(r ReadingStore, b BookStore) *ReadingService {
	return &ReadingService{readings: r, books: b}
}

type ReadingInput struct {
	PagesRead *int
	State     *string
}

func (s *ReadingService) book(ctx context.Context, bookID int) (*models.BookDoc, error) {
	b, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookNotFound
	}
	return b, nil
}

// resolve valida páginas y estado. Llegar al total de páginas marca la
// lectura como completada.
func resolve(b *models.BookDoc, pages int, state string) (int, string, error) {
	if pages < 0 {
		pages = 0
	}
	if pages > b.TotalPages {
		return 0, "", ErrPagesExceeded
	}
	if state == "" {
		state = models.ReadingNotStarted
		if pages > 0 {
			state = models.ReadingInProgress
		}
	}
	if !models.ValidReadingState(state) {
		return 0, "", ErrInvalidReadState
	}
	if b.TotalPages > 0 && pages == b.TotalPages {
		state = models.ReadingCompleted
	}
	return pages, state, nil
}

func (s *ReadingService) Create(ctx context.Context, userID, bookID int, in ReadingInput) (*models.ReadingDoc, error) {
	b, err := s.book(ctx, bookID)
	if err != nil {
		return nil, err
	}
	prev, err := s.readings.Find(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		return nil, ErrReadingExists
	}

	pages, state := 0, ""
	if in.PagesRead != nil {
		pages = *in.PagesRead
	}
	if in.State != nil {
		state = *in.State
	}
	pages, state, err = resolve(b, pages, state)
	if err != nil {
		return nil, err
	}

	ts := now()
	rd := &models.ReadingDoc{
		UserID:    userID,
		BookID:    bookID,
		PagesRead: pages,
		State:     state,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.readings.Insert(ctx, rd); err != nil {
		return nil, err
	}
	return rd, nil
}

func (s *ReadingService) List(ctx context.Context, userID int, state string, limit, offset int) ([]models.ReadingDoc, error) {
	if state != "" && !models.ValidReadingState(state) {
		return nil, ErrInvalidReadState
	}
	return s.readings.ListByUser(ctx, userID, state, limit, offset)
}

// Get devuelve la lectura con título, total de páginas y porcentaje de avance.
func (s *ReadingService) Get(ctx context.Context, userID, bookID int) (*models.ReadingDetail, error) {
	rd, err := s.readings.Find(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if rd == nil {
		return nil, ErrReadingNotFound
	}
	d := &models.ReadingDetail{ReadingDoc: *rd}
	b, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	// el libro pudo borrarse entre tanto
	if b != nil {
		d.BookTitle = b.Title
		d.BookTotalPages = b.TotalPages
		if b.TotalPages > 0 {
			d.ProgressPercent = scalar.Round(float64(rd.PagesRead)/float64(b.TotalPages)*100, 2)
		}
	}
	return d, nil
}

// Stats: páginas leídas en total, cantidad de lecturas y promedio por lectura.
func (s *ReadingService) Stats(ctx context.Context, userID int) (*models.ReadingStats, error) {
	pages, count, err := s.readings.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}
	st := &models.ReadingStats{UserID: userID, TotalPagesRead: pages, TotalReadings: count}
	if count > 0 {
		st.AveragePages = scalar.Round(float64(pages)/float64(count), 2)
	}
	return st, nil
}

func (s *ReadingService) Update(ctx context.Context, userID, bookID int, in ReadingInput) (*models.ReadingDoc, error) {
	if in.PagesRead == nil && in.State == nil {
		return nil, ErrNoFields
	}
	rd, err := s.readings.Find(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if rd == nil {
		return nil, ErrReadingNotFound
	}
	b, err := s.book(ctx, bookID)
	if err != nil {
		return nil, err
	}

	pages, state := rd.PagesRead, rd.State
	if in.PagesRead != nil {
		pages = *in.PagesRead
		if in.State == nil && pages > 0 && state == models.ReadingNotStarted {
			state = models.ReadingInProgress
		}
	}
	if in.State != nil {
		state = *in.State
	}
	pages, state, err = resolve(b, pages, state)
	if err != nil {
		return nil, err
	}

	rd.PagesRead, rd.State, rd.UpdatedAt = pages, state, now()
	err = s.readings.Update(ctx, userID, bookID, map[string]any{
		"pagesRead": rd.PagesRead,
		"state":     rd.State,
		"updatedAt": rd.UpdatedAt,
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrReadingNotFound
	}
	if err != nil {
		return nil, err
	}
	return rd, nil
}

func (s *ReadingService) Delete(ctx context.Context, userID, bookID int) error {
	ok, err := s.readings.Delete(ctx, userID, bookID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrReadingNotFound
	}
	return nil
}
