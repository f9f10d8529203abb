package pricingapi

import (
	"github.com/wyfcoding/optionpricing/algorithm/finance"
	"github.com/wyfcoding/optionpricing/algorithm/types"
	"github.com/wyfcoding/optionpricing/payoff"
	"github.com/wyfcoding/optionpricing/xerrors"
)

// OptionRequest 单个期权的定价输入。rate、volatility 缺省时取配置中的默认值。
type OptionRequest struct {
	Type       string   `json:"type"       form:"type"`
	Spot       float64  `json:"spot"       form:"spot"`
	Strike     float64  `json:"strike"     form:"strike"`
	Expiry     float64  `json:"expiry"     form:"expiry"`
	Rate       *float64 `json:"rate"       form:"rate"`
	Volatility *float64 `json:"volatility" form:"volatility"`
}

// PayoffRequest 损益曲线与损益图输入。range_low/range_high 为标的价格绝对值。
type PayoffRequest struct {
	OptionRequest
	RangeLow  *float64 `json:"range_low"  form:"range_low"`
	RangeHigh *float64 `json:"range_high" form:"range_high"`
	Points    int      `json:"points"     form:"points"`
	Breakeven *bool    `json:"breakeven"  form:"breakeven"`
	Combined  bool     `json:"combined"   form:"combined"`
}

// params 补全默认值并校验定义域。
func (r OptionRequest) params(o Options) (finance.Params, error) {
	rate, vol := o.DefaultRate, o.DefaultVolatility
	if r.Rate != nil {
		rate = *r.Rate
	}
	if r.Volatility != nil {
		vol = *r.Volatility
	}
	p := finance.NewParams(r.Spot, r.Strike, r.Expiry, rate, vol)
	if err := p.Validate(); err != nil {
		return finance.Params{}, err
	}
	return p, nil
}

func (r OptionRequest) optionType() (types.OptionType, error) {
	return types.ParseOptionType(r.Type)
}

// spots 按请求或默认倍数生成采样价格。
func (r PayoffRequest) spots(o Options, strike float64) ([]float64, error) {
	lo, hi := strike*o.RangeLow, strike*o.RangeHigh
	if r.RangeLow != nil {
		lo = *r.RangeLow
	}
	if r.RangeHigh != nil {
		hi = *r.RangeHigh
	}
	n := r.Points
	if n == 0 {
		n = o.Points
	}
	switch {
	case n < 2 || (o.MaxPoints > 0 && n > o.MaxPoints):
		return nil, xerrors.Detailed(xerrors.ErrInvalidRange, "points must be within [2, %d], got %d", o.MaxPoints, n)
	case lo < 0 || !(hi > lo):
		return nil, xerrors.Detailed(xerrors.ErrInvalidRange, "range [%v, %v] is empty or negative", lo, hi)
	}
	return payoff.Linspace(lo, hi, n), nil
}

func (r PayoffRequest) showBreakeven(o Options) bool {
	if r.Breakeven != nil {
		return *r.Breakeven
	}
	return o.ShowBreakeven
}
