package service

import (
	"context"
	"errors"
	"testing"

	"biblioteca-api/internal/models"
)

func TestCatalogPaging(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(newMemCatalog(), newMemUsers())

	got, err := svc.Categories(ctx, 1, 1)
	if err != nil || len(got) != 1 || got[0].CategoryID != 2 {
		t.Fatalf("Categories(1,1) = %v, %v", got, err)
	}
	if got, _ := svc.Categories(ctx, 10, 5); len(got) != 0 {
		t.Errorf("offset past end = %v", got)
	}
}

func TestCreateCategoryRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(newMemCatalog(), newMemUsers())

	if _, err := svc.CreateCategory(ctx, " ciencia "); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("err = %v, want ErrDuplicateName", err)
	}
	c, err := svc.CreateCategory(ctx, "Arte")
	if err != nil || c.CategoryID != 3 {
		t.Errorf("CreateCategory = %+v, %v", c, err)
	}
}

func TestCreateBookResolvesTags(t *testing.T) {
	ctx := context.Background()
	cat := newMemCatalog()
	books := &memBooks{}
	svc := NewBookService(books, cat, &memReadings{}, nil)

	b, err := svc.Create(ctx, &models.BookCreateRequest{
		Title:       "Cien años de soledad",
		TotalPages:  471,
		Publisher:   "Sudamericana",
		Authors:     []string{"Gabriel García Márquez", "Gabriel García Márquez"},
		CategoryIDs: []int{2, 42},
		LanguageIDs: []int{1},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(b.Authors) != 1 || len(b.Categories) != 1 || b.Categories[0].Name != "Historia" || len(b.Languages) != 1 {
		t.Errorf("book = %+v", b)
	}
	if b.Publisher == nil || b.Publisher.Name != "Sudamericana" {
		t.Errorf("publisher = %+v", b.Publisher)
	}
	if _, err := svc.GetBook(ctx, 99); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("GetBook err = %v", err)
	}
}

func TestLevelCRUD(t *testing.T) {
	ctx := context.Background()
	lvl := 2
	users := newMemUsers(models.UserDoc{UserID: 1, Preference: &models.PreferenceDoc{LevelID: &lvl}})
	svc := NewCatalogService(newMemCatalog(), users)

	created, err := svc.CreateLevel(ctx, " Experto ")
	if err != nil || created.LevelID != 4 || created.Name != "Experto" {
		t.Fatalf("CreateLevel = %+v, %v", created, err)
	}

	tests := []struct {
		name    string
		op      func() error
		wantErr error
	}{
		{"crear con nombre repetido", func() error { _, err := svc.CreateLevel(ctx, "beginner"); return err }, ErrDuplicateName},
		{"leer existente", func() error { _, err := svc.GetLevel(ctx, 4); return err }, nil},
		{"leer inexistente", func() error { _, err := svc.GetLevel(ctx, 42); return err }, ErrLevelNotFound},
		{"renombrar", func() error { _, err := svc.UpdateLevel(ctx, 4, "Maestro"); return err }, nil},
		{"renombrar a su mismo nombre", func() error { _, err := svc.UpdateLevel(ctx, 4, "MAESTRO"); return err }, nil},
		{"renombrar a nombre ajeno", func() error { _, err := svc.UpdateLevel(ctx, 4, "Advanced"); return err }, ErrDuplicateName},
		{"renombrar inexistente", func() error { _, err := svc.UpdateLevel(ctx, 42, "x"); return err }, ErrLevelNotFound},
		{"borrar nivel en uso", func() error { return svc.DeleteLevel(ctx, 2) }, ErrLevelInUse},
		{"borrar nivel libre", func() error { return svc.DeleteLevel(ctx, 4) }, nil},
		{"borrar dos veces", func() error { return svc.DeleteLevel(ctx, 4) }, ErrLevelNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	levels, _ := svc.Levels(ctx)
	if len(levels) != 3 {
		t.Errorf("levels = %+v, want los 3 por defecto", levels)
	}
}
