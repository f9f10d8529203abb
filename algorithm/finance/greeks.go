package finance

import (
	"math"

	"github.com/wyfcoding/optionpricing/algorithm/types"
	"github.com/wyfcoding/optionpricing/xerrors"
)

// Greeks 一次求值得到的价格与全部希腊字母（年化 theta，单位 vega/rho）。
type Greeks struct {
	Type     types.OptionType `json:"type"`
	Price    float64          `json:"price"`
	Delta    float64          `json:"delta"`
	Gamma    float64          `json:"gamma"`
	Theta    float64          `json:"theta"`
	Vega     float64          `json:"vega"`
	Rho      float64          `json:"rho"`
	Boundary bool             `json:"boundary"` // 是否按 T=0 / σ=0 边界规则求值
}

// Evaluate 共用一组 d1/d2 计算价格与全部希腊字母，结果与逐个调用自由函数逐位一致。
func Evaluate(typ types.OptionType, p Params) Greeks {
	t := newTerms(p)
	return Greeks{
		Type:     typ,
		Price:    t.price(typ),
		Delta:    t.delta(typ),
		Gamma:    t.gamma(),
		Theta:    t.theta(typ),
		Vega:     t.vega(),
		Rho:      t.rho(typ),
		Boundary: p.AtBoundary(),
	}
}

// Validate 检查各字段均为有限值。极端的 r·T 会让贴现因子溢出，
// 接近 0 的次正规 σ 会让 gamma 溢出，参数本身合法时也可能得到 Inf/NaN。
func (g Greeks) Validate() error {
	fields := [...]struct {
		name string
		v    float64
	}{
		{"price", g.Price}, {"delta", g.Delta}, {"gamma", g.Gamma},
		{"theta", g.Theta}, {"vega", g.Vega}, {"rho", g.Rho},
	}
	for _, f := range fields {
		if math.IsInf(f.v, 0) || math.IsNaN(f.v) {
			return xerrors.Detailed(xerrors.ErrInvalidInput, "%s is not finite (%v): rate*expiry or volatility out of representable range", f.name, f.v).
				WithContext("field", f.name)
		}
	}
	return nil
}

// EvaluateChecked 校验参数后求值，结果含非有限值时返回 ErrInvalidInput。
func EvaluateChecked(typ types.OptionType, p Params) (Greeks, error) {
	if !typ.Valid() {
		return Greeks{}, xerrors.ErrInvalidOptionType
	}
	if err := p.Validate(); err != nil {
		return Greeks{}, err
	}
	g := Evaluate(typ, p)
	if err := g.Validate(); err != nil {
		return Greeks{}, err
	}
	return g, nil
}

// DeltaCall 看涨 Delta Φ(d1)，取值 [0, 1]。
func DeltaCall(spot, strike, expiry, rate, vol float64) float64 {
	return newTerms(NewParams(spot, strike, expiry, rate, vol)).delta(types.OptionTypeCall)
}

// DeltaPut 看跌 Delta Φ(d1) − 1，取值 [−1, 0]。
func DeltaPut(spot, strike, expiry, rate, vol float64) float64 {
	return newTerms(NewParams(spot, strike, expiry, rate, vol)).delta(types.OptionTypePut)
}

// Delta 按期权类型计算 Delta。
func Delta(typ types.OptionType, spot, strike, expiry, rate, vol float64) float64 {
	return newTerms(NewParams(spot, strike, expiry, rate, vol)).delta(typ)
}

// Gamma φ(d1)/(S·σ·√T)，看涨看跌相同，非负。
func Gamma(spot, strike, expiry, rate, vol float64) float64 {
	return newTerms(NewParams(spot, strike, expiry, rate, vol)).gamma()
}

// ThetaCall 看涨 Theta（每年）。
func ThetaCall(spot, strike, expiry, rate, vol float64) float64 {
	return newTerms(NewParams(spot, strike, expiry, rate, vol)).theta(types.OptionTypeCall)
}

// ThetaPut 看跌 Theta（每年）。
func ThetaPut(spot, strike, expiry, rate, vol float64) float64 {
	return newTerms(NewParams(spot, strike, expiry, rate, vol)).theta(types.OptionTypePut)
}

// Theta 按期权类型计算 Theta（每年）。按日口径请除以 365。
func Theta(typ types.OptionType, spot, strike, expiry, rate, vol float64) float64 {
	return newTerms(NewParams(spot, strike, expiry, rate, vol)).theta(typ)
}

// Vega S·√T·φ(d1)，波动率变化 1（而非 1%）对应的价格变化，看涨看跌相同。
func Vega(spot, strike, expiry, rate, vol float64) float64 {
	return newTerms(NewParams(spot, strike, expiry, rate, vol)).vega()
}

// RhoCall 看涨 Rho K·T·e^(−rT)·Φ(d2)，利率变化 1 对应的价格变化。
func RhoCall(spot, strike, expiry, rate, vol float64) float64 {
	return newTerms(NewParams(spot, strike, expiry, rate, vol)).rho(types.OptionTypeCall)
}

// RhoPut 看跌 Rho −K·T·e^(−rT)·Φ(−d2)。
func RhoPut(spot, strike, expiry, rate, vol float64) float64 {
	return newTerms(NewParams(spot, strike, expiry, rate, vol)).rho(types.OptionTypePut)
}

// Rho 按期权类型计算 Rho。
func Rho(typ types.OptionType, spot, strike, expiry, rate, vol float64) float64 {
	return newTerms(NewParams(spot, strike, expiry, rate, vol)).rho(typ)
}

// 边界上 delta 为阶跃函数，其余希腊字母均为 0。

func (t terms) delta(typ types.OptionType) float64 {
	if t.p.AtBoundary() {
		switch {
		case !t.boundaryITM(typ):
			return 0
		case typ == types.OptionTypeCall:
			return 1
		default:
			return -1
		}
	}
	if typ == types.OptionTypeCall {
		return NormCDF(t.d1)
	}
	return NormCDF(t.d1) - 1
}

func (t terms) gamma() float64 {
	if t.p.AtBoundary() {
		return 0
	}
	return NormPDF(t.d1) / (t.p.Spot * t.p.Vol * t.sqrtT)
}

func (t terms) theta(typ types.OptionType) float64 {
	if t.p.AtBoundary() {
		return 0
	}
	carry := t.p.Rate * t.p.Strike * t.disc
	decay := -t.p.Spot * NormPDF(t.d1) * t.p.Vol / (2 * t.sqrtT)
	if typ == types.OptionTypeCall {
		return decay - carry*NormCDF(t.d2)
	}
	return decay + carry*NormCDF(-t.d2)
}

func (t terms) vega() float64 {
	if t.p.AtBoundary() {
		return 0
	}
	return t.p.Spot * t.sqrtT * NormPDF(t.d1)
}

func (t terms) rho(typ types.OptionType) float64 {
	if t.p.AtBoundary() {
		return 0
	}
	exposure := t.p.Strike * t.p.Expiry * t.disc
	if typ == types.OptionTypeCall {
		return exposure * NormCDF(t.d2)
	}
	return -exposure * NormCDF(-t.d2)
}
