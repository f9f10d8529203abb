package finance

import (
	"math"

	"github.com/wyfcoding/optionpricing/algorithm/types"
	"github.com/wyfcoding/optionpricing/validator"
)

// Params 定价模型的五元输入，值语义，不缓存任何中间量。
type Params struct {
	Spot   float64 `json:"spot"       validate:"finite,gt=0"`  // 标的资产价格 S
	Strike float64 `json:"strike"     validate:"finite,gt=0"`  // 执行价格 K
	Expiry float64 `json:"expiry"     validate:"finite,gte=0"` // 到期时间 T（年）
	Rate   float64 `json:"rate"       validate:"finite"`       // 连续复利无风险利率 r
	Vol    float64 `json:"volatility" validate:"finite,gte=0"` // 年化波动率 σ
}

// NewParams 按 (S, K, T, r, σ) 顺序构造参数。
func NewParams(spot, strike, expiry, rate, vol float64) Params {
	return Params{Spot: spot, Strike: strike, Expiry: expiry, Rate: rate, Vol: vol}
}

// Validate 校验参数是否落在模型定义域内。
// 自由函数不做校验，调用方按需在边界处调用。
func (p Params) Validate() error {
	return validator.Struct(p)
}

// AtBoundary 判断是否处于 T=0 或 σ=0 的奇异边界，此时 d1/d2 无定义。
func (p Params) AtBoundary() bool {
	return p.Expiry <= 0 || p.Vol <= 0
}

// Discount 贴现因子 e^(−rT)。
func (p Params) Discount() float64 {
	return math.Exp(-p.Rate * p.Expiry)
}

// D1 见 D1 函数。
func (p Params) D1() float64 {
	return newTerms(p).d1
}

// D2 见 D2 函数。
func (p Params) D2() float64 {
	return newTerms(p).d2
}

// Intrinsic 立即行权的内在价值，不计时间价值。
func (p Params) Intrinsic(typ types.OptionType) float64 {
	if typ == types.OptionTypeCall {
		return math.Max(p.Spot-p.Strike, 0)
	}
	return math.Max(p.Strike-p.Spot, 0)
}

// D1 计算 d1 = (ln(S/K) + (r + σ²/2)·T) / (σ·√T)。
// T=0 或 σ=0 时按 IEEE-754 返回 ±Inf 或 NaN，定价与希腊字母函数不会在边界上使用它。
func D1(spot, strike, expiry, rate, vol float64) float64 {
	return NewParams(spot, strike, expiry, rate, vol).D1()
}

// D2 计算 d2 = d1 − σ·√T。
func D2(spot, strike, expiry, rate, vol float64) float64 {
	return NewParams(spot, strike, expiry, rate, vol).D2()
}

// terms 单次调用内共享的中间量，随调用创建、随调用丢弃。
type terms struct {
	p     Params
	d1    float64
	d2    float64
	sqrtT float64
	disc  float64
}

func newTerms(p Params) terms {
	sqrtT := math.Sqrt(p.Expiry)
	d1 := (math.Log(p.Spot/p.Strike) + (p.Rate+0.5*p.Vol*p.Vol)*p.Expiry) / (p.Vol * sqrtT)
	return terms{
		p:     p,
		d1:    d1,
		d2:    d1 - p.Vol*sqrtT,
		sqrtT: sqrtT,
		disc:  math.Exp(-p.Rate * p.Expiry),
	}
}

// boundaryITM 边界上以贴现行权价判断实值：看涨 S > K·e^(−rT)，看跌 S < K·e^(−rT)。
func (t terms) boundaryITM(typ types.OptionType) bool {
	fwd := t.p.Spot - t.p.Strike*t.disc
	if typ == types.OptionTypeCall {
		return fwd > 0
	}
	return fwd < 0
}
