package finance

import (
	"math"

	"github.com/wyfcoding/optionpricing/algorithm/types"
)

// CallPrice 计算欧式看涨期权价格 S·Φ(d1) − K·e^(−rT)·Φ(d2)。
// 输入的定义域由调用方保证；T=0 或 σ=0 时返回 max(S − K·e^(−rT), 0)。
func CallPrice(spot, strike, expiry, rate, vol float64) float64 {
	return newTerms(NewParams(spot, strike, expiry, rate, vol)).callPrice()
}

// PutPrice 计算欧式看跌期权价格 K·e^(−rT)·Φ(−d2) − S·Φ(−d1)。
// T=0 或 σ=0 时返回 max(K·e^(−rT) − S, 0)。
func PutPrice(spot, strike, expiry, rate, vol float64) float64 {
	return newTerms(NewParams(spot, strike, expiry, rate, vol)).putPrice()
}

// Price 按期权类型计算价格。
func Price(typ types.OptionType, spot, strike, expiry, rate, vol float64) float64 {
	return newTerms(NewParams(spot, strike, expiry, rate, vol)).price(typ)
}

// ParityGap 返回平价关系的偏差 (C + K·e^(−rT)) − (P + S)，理论上为 0。
func ParityGap(spot, strike, expiry, rate, vol float64) float64 {
	t := newTerms(NewParams(spot, strike, expiry, rate, vol))
	return (t.callPrice() + strike*t.disc) - (t.putPrice() + spot)
}

func (t terms) price(typ types.OptionType) float64 {
	if typ == types.OptionTypeCall {
		return t.callPrice()
	}
	return t.putPrice()
}

func (t terms) callPrice() float64 {
	if t.p.AtBoundary() {
		return math.Max(t.p.Spot-t.p.Strike*t.disc, 0)
	}
	return t.p.Spot*NormCDF(t.d1) - t.p.Strike*t.disc*NormCDF(t.d2)
}

func (t terms) putPrice() float64 {
	if t.p.AtBoundary() {
		return math.Max(t.p.Strike*t.disc-t.p.Spot, 0)
	}
	return t.p.Strike*t.disc*NormCDF(-t.d2) - t.p.Spot*NormCDF(-t.d1)
}
