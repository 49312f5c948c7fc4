package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"biblioteca-api/internal/models"
)

func TestPreferenceLifecycle(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers(models.UserDoc{UserID: 7, State: models.UserStateActive})
	svc := NewPreferenceService(users, newMemCatalog())

	if _, err := svc.Get(ctx, 7); !errors.Is(err, ErrPreferenceNotFound) {
		t.Fatalf("Get before create err = %v", err)
	}

	p, err := svc.Create(ctx, 7, PreferenceInput{
		LevelID:     ptr(2),
		CategoryIDs: ptr([]int{2, 2, 99, 1}),
		LanguageIDs: ptr([]int{1}),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !slices.Equal(p.CategoryIDs, []int{2, 1}) || *p.LevelID != 2 {
		t.Errorf("created = %+v", p)
	}

	if _, err := svc.Create(ctx, 7, PreferenceInput{}); !errors.Is(err, ErrPreferenceExists) {
		t.Errorf("second create err = %v", err)
	}

	p, err = svc.Update(ctx, 7, PreferenceInput{LanguageIDs: ptr([]int{})})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(p.LanguageIDs) != 0 || !slices.Equal(p.CategoryIDs, []int{2, 1}) {
		t.Errorf("updated = %+v", p)
	}

	if _, err := svc.Update(ctx, 7, PreferenceInput{LevelID: ptr(9)}); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("bad level err = %v", err)
	}
	if _, err := svc.Update(ctx, 7, PreferenceInput{}); !errors.Is(err, ErrNoFields) {
		t.Errorf("empty update err = %v", err)
	}

	if err := svc.Delete(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, 7); !errors.Is(err, ErrPreferenceNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if _, err := svc.Get(ctx, 404); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user err = %v", err)
	}
}
