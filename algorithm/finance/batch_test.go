package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/wyfcoding/optionpricing/algorithm/types"
)

func TestEvaluateRangeMatchesSequential(t *testing.T) {
	base := NewParams(100, 100, 1, 0.05, 0.2)
	spots := make([]float64, 0, 101)
	for s := 50.0; s <= 150; s++ {
		spots = append(spots, s)
	}

	for _, workers := range []int{0, 1, 3, 8, 500} {
		got, err := EvaluateRange(context.Background(), types.OptionTypePut, base, spots, workers)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if len(got) != len(spots) {
			t.Fatalf("workers=%d: got %d results", workers, len(got))
		}
		for i, s := range spots {
			p := base
			p.Spot = s
			if want := Evaluate(types.OptionTypePut, p); got[i] != want {
				t.Errorf("workers=%d spot=%v: %+v != %+v", workers, s, got[i], want)
			}
		}
	}
}

func TestEvaluateRangeEmpty(t *testing.T) {
	got, err := EvaluateRange(context.Background(), types.OptionTypeCall, NewParams(100, 100, 1, 0.05, 0.2), nil, 4)
	if err != nil || len(got) != 0 {
		t.Errorf("expected empty result, got %v %v", got, err)
	}
}

func TestEvaluateRangeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := EvaluateRange(ctx, types.OptionTypeCall, NewParams(100, 100, 1, 0.05, 0.2), []float64{90, 100, 110}, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
