package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveTraining(t *testing.T) {
	okBefore := testutil.ToFloat64(TrainingRuns.WithLabelValues("ok", "api"))
	errBefore := testutil.ToFloat64(TrainingRuns.WithLabelValues("error", "api"))

	ObserveTraining("api", 50*time.Millisecond, 12, 4, nil)
	ObserveTraining("api", time.Millisecond, 0, 0, errors.New("sin datos"))

	if got := testutil.ToFloat64(TrainingRuns.WithLabelValues("ok", "api")); got != okBefore+1 {
		t.Errorf("ok runs = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(TrainingRuns.WithLabelValues("error", "api")); got != errBefore+1 {
		t.Errorf("error runs = %v, want %v", got, errBefore+1)
	}
	if got := testutil.ToFloat64(TrainedUsers); got != 12 {
		t.Errorf("TrainedUsers = %v, want 12", got)
	}
	if got := testutil.ToFloat64(ModelClusters); got != 4 {
		t.Errorf("ModelClusters = %v, want 4", got)
	}
}
