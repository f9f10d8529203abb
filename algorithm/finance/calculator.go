package finance

import (
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/algorithm/types"
)

const (
	// DaysPerYear 年化 theta 折算为每日 theta 的天数。
	DaysPerYear = 365
	// PercentPoint 单位 vega/rho 折算为每 1% 变动的除数。
	PercentPoint = 100
)

// BlackScholesCalculator Black-Scholes 期权定价计算器。
// 与自由函数不同，它在入口处校验参数，并按交易台惯例输出每日 theta 与每 1% 的 vega/rho。
type BlackScholesCalculator struct{}

// NewBlackScholesCalculator 创建 Black-Scholes 计算器。
func NewBlackScholesCalculator() *BlackScholesCalculator {
	return &BlackScholesCalculator{}
}

// BlackScholesResult 包含计算出的期权价格及其希腊字母。
type BlackScholesResult struct {
	Price decimal.Decimal `json:"price"`
	Delta decimal.Decimal `json:"delta"`
	Gamma decimal.Decimal `json:"gamma"`
	Vega  decimal.Decimal `json:"vega_per_pct"`  // 波动率变动 1%
	Theta decimal.Decimal `json:"theta_per_day"` // 每日
	Rho   decimal.Decimal `json:"rho_per_pct"`   // 利率变动 1%
}

// CalculateCallPrice 计算看涨期权价格。
func (bsc *BlackScholesCalculator) CalculateCallPrice(spot, strike, expiry, rate, vol decimal.Decimal) (decimal.Decimal, error) {
	return bsc.price(types.OptionTypeCall, spot, strike, expiry, rate, vol)
}

// CalculatePutPrice 计算看跌期权价格。
func (bsc *BlackScholesCalculator) CalculatePutPrice(spot, strike, expiry, rate, vol decimal.Decimal) (decimal.Decimal, error) {
	return bsc.price(types.OptionTypePut, spot, strike, expiry, rate, vol)
}

// Calculate 一次性计算期权价格及所有希腊字母。
func (bsc *BlackScholesCalculator) Calculate(optionType types.OptionType, spot, strike, expiry, rate, vol decimal.Decimal) (*BlackScholesResult, error) {
	g, err := EvaluateChecked(optionType, bsc.params(spot, strike, expiry, rate, vol))
	if err != nil {
		return nil, err
	}
	return ToDeskConvention(g)
}

// ToDeskConvention 将年化/单位口径的希腊字母换算为每日 theta 与每 1% 的 vega/rho。
// 含 Inf/NaN 的结果无法表示为 decimal，返回 ErrInvalidInput。
func ToDeskConvention(g Greeks) (*BlackScholesResult, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	days := decimal.NewFromInt(DaysPerYear)
	pct := decimal.NewFromInt(PercentPoint)
	return &BlackScholesResult{
		Price: decimal.NewFromFloat(g.Price),
		Delta: decimal.NewFromFloat(g.Delta),
		Gamma: decimal.NewFromFloat(g.Gamma),
		Vega:  decimal.NewFromFloat(g.Vega).Div(pct),
		Theta: decimal.NewFromFloat(g.Theta).Div(days),
		Rho:   decimal.NewFromFloat(g.Rho).Div(pct),
	}, nil
}

func (bsc *BlackScholesCalculator) price(typ types.OptionType, spot, strike, expiry, rate, vol decimal.Decimal) (decimal.Decimal, error) {
	g, err := EvaluateChecked(typ, bsc.params(spot, strike, expiry, rate, vol))
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(g.Price), nil
}

func (bsc *BlackScholesCalculator) params(spot, strike, expiry, rate, vol decimal.Decimal) Params {
	return NewParams(spot.InexactFloat64(), strike.InexactFloat64(), expiry.InexactFloat64(), rate.InexactFloat64(), vol.InexactFloat64())
}
