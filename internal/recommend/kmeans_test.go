package recommend

import (
	"context"
	"slices"
	"testing"
)

func twoBlobs() [][]float64 {
	return [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{10, 10}, {10.1, 10}, {10, 10.1},
	}
}

func TestFitKMeansSeparatesBlobs(t *testing.T) {
	fit, err := fitKMeans(context.Background(), twoBlobs(), DefaultKMeansConfig(2))
	if err != nil {
		t.Fatalf("fitKMeans: %v", err)
	}
	l := fit.Labels
	if l[0] != l[1] || l[1] != l[2] || l[3] != l[4] || l[4] != l[5] || l[0] == l[3] {
		t.Errorf("labels = %v, want two groups of three", l)
	}
	if fit.Inertia > 0.1 {
		t.Errorf("inertia = %v, want < 0.1", fit.Inertia)
	}
}

func TestFitKMeansDeterministic(t *testing.T) {
	data := [][]float64{{1, 2}, {2, 1}, {5, 5}, {6, 5}, {9, 1}, {8, 2}, {3, 3}}
	a, err := fitKMeans(context.Background(), data, DefaultKMeansConfig(3))
	if err != nil {
		t.Fatal(err)
	}
	b, err := fitKMeans(context.Background(), data, DefaultKMeansConfig(3))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a.Labels, b.Labels) || a.Inertia != b.Inertia {
		t.Errorf("same seed gave different fits: %v/%v vs %v/%v", a.Labels, a.Inertia, b.Labels, b.Inertia)
	}
}

func TestFitKMeansIdenticalPoints(t *testing.T) {
	data := [][]float64{{1, 1}, {1, 1}, {1, 1}}
	fit, err := fitKMeans(context.Background(), data, DefaultKMeansConfig(2))
	if err != nil {
		t.Fatal(err)
	}
	if len(fit.Centroids) != 2 || fit.Inertia != 0 {
		t.Errorf("centroids = %v inertia = %v", fit.Centroids, fit.Inertia)
	}
}

func TestFitKMeansCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fitKMeans(ctx, twoBlobs(), DefaultKMeansConfig(2)); err == nil {
		t.Fatal("expected context error")
	}
}

func TestNearestTieLowestIndex(t *testing.T) {
	c, _ := nearest([]float64{0}, [][]float64{{1}, {-1}})
	if c != 0 {
		t.Errorf("nearest = %d, want 0", c)
	}
}
