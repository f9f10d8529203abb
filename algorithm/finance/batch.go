package finance

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"
	"github.com/wyfcoding/optionpricing/algorithm/types"
)

// EvaluateRange 以 base 为模板，对一组标的价格并行求值价格与希腊字母。
// 结果顺序与 spots 一致，且与逐个调用 Evaluate 的结果逐位相同。
// workers <= 0 时使用 GOMAXPROCS。
func EvaluateRange(ctx context.Context, typ types.OptionType, base Params, spots []float64, workers int) ([]Greeks, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Greeks, len(spots))
	if len(spots) == 0 {
		return out, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(spots))

	chunk := (len(spots) + workers - 1) / workers
	p := pool.New().WithContext(ctx).WithMaxGoroutines(workers).WithCancelOnError()
	for lo := 0; lo < len(spots); lo += chunk {
		hi := min(lo+chunk, len(spots))
		p.Go(func(ctx context.Context) error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				params := base
				params.Spot = spots[i]
				out[i] = Evaluate(typ, params)
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
