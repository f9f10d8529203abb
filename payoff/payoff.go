// Package payoff 到期损益曲线与损益图，只消费定价结果（权利金），不参与定价。
package payoff

import (
	"math"

	"github.com/wyfcoding/optionpricing/algorithm/types"
	"gonum.org/v1/gonum/floats"
)

// Curve 计算多头持仓的到期损益：看涨 max(S−K,0)−premium，看跌 max(K−S,0)−premium。
func Curve(spots []float64, strike, premium float64, typ types.OptionType) []float64 {
	out := make([]float64, len(spots))
	for i, s := range spots {
		if typ == types.OptionTypeCall {
			out[i] = math.Max(s-strike, 0) - premium
		} else {
			out[i] = math.Max(strike-s, 0) - premium
		}
	}
	return out
}

// Breakeven 盈亏平衡点：看涨 K+premium，看跌 K−premium。
func Breakeven(strike, premium float64, typ types.OptionType) float64 {
	if typ == types.OptionTypeCall {
		return strike + premium
	}
	return strike - premium
}

// CombinedPayoff 同一行权价的看涨、看跌及两者之和（买入跨式）的损益曲线。
type CombinedPayoff struct {
	Call          []float64 `json:"call"`
	Put           []float64 `json:"put"`
	Total         []float64 `json:"total"`
	CallBreakeven float64   `json:"call_breakeven"`
	PutBreakeven  float64   `json:"put_breakeven"`
}

// Combined 计算组合损益。
func Combined(spots []float64, strike, callPremium, putPremium float64) CombinedPayoff {
	call := Curve(spots, strike, callPremium, types.OptionTypeCall)
	put := Curve(spots, strike, putPremium, types.OptionTypePut)
	total := make([]float64, len(spots))
	floats.AddTo(total, call, put)
	return CombinedPayoff{
		Call:          call,
		Put:           put,
		Total:         total,
		CallBreakeven: Breakeven(strike, callPremium, types.OptionTypeCall),
		PutBreakeven:  Breakeven(strike, putPremium, types.OptionTypePut),
	}
}

// Linspace 返回 [lo, hi] 上 n 个等距点，两端包含在内。
// n <= 0 返回空切片，n == 1 只返回 lo。
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
