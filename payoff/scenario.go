package payoff

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wyfcoding/optionpricing/algorithm/finance"
	"github.com/wyfcoding/optionpricing/algorithm/types"
	"github.com/wyfcoding/optionpricing/xerrors"
)

// Scenario 一组按行权价区分的演示场景。
type Scenario struct {
	Name   string
	Strike float64
}

// DefaultScenarios 标的价格 100 时的平值、实值看涨与虚值看涨场景。
var DefaultScenarios = []Scenario{
	{Name: "ATM", Strike: 100},
	{Name: "ITM_Call", Strike: 80},
	{Name: "OTM_Call", Strike: 120},
}

// Scenarios 对每个场景用 market（忽略其中的 Strike）定价看涨与看跌两条腿，
// 并在 dir 下写出 call_payoff_<name>.png、put_payoff_<name>.png 与 combined_payoff_<name>.png。
// 返回写出的文件路径。
func Scenarios(dir string, market finance.Params, spots []float64, scenarios ...Scenario) ([]string, error) {
	if len(spots) == 0 {
		return nil, xerrors.ErrEmptyPriceRange
	}
	if len(scenarios) == 0 {
		scenarios = DefaultScenarios
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, renderFailed(err, "create output directory")
	}

	written := make([]string, 0, 3*len(scenarios))
	for _, sc := range scenarios {
		p := market
		p.Strike = sc.Strike
		callPremium := finance.Price(types.OptionTypeCall, p.Spot, p.Strike, p.Expiry, p.Rate, p.Vol)
		putPremium := finance.Price(types.OptionTypePut, p.Spot, p.Strike, p.Expiry, p.Rate, p.Vol)

		diagrams := []struct {
			prefix string
			build  func() (*Diagram, error)
		}{
			{"call", func() (*Diagram, error) {
				return NewDiagram(spots, sc.Strike, callPremium, types.OptionTypeCall, true)
			}},
			{"put", func() (*Diagram, error) {
				return NewDiagram(spots, sc.Strike, putPremium, types.OptionTypePut, true)
			}},
			{"combined", func() (*Diagram, error) {
				return NewCombinedDiagram(spots, sc.Strike, callPremium, putPremium, true)
			}},
		}
		for _, item := range diagrams {
			d, err := item.build()
			if err != nil {
				return written, err
			}
			path := filepath.Join(dir, fmt.Sprintf("%s_payoff_%s.png", item.prefix, sc.Name))
			if err := d.Save(path); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	return written, nil
}
