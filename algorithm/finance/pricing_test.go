package finance

import (
	"math"
	"testing"

	"github.com/wyfcoding/optionpricing/algorithm/types"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// 原始测试脚本中的参数组合：平值、实值看涨、虚值看涨。
var pricingGrid = [][5]float64{
	{100, 100, 1.0, 0.05, 0.2},
	{120, 100, 1.0, 0.05, 0.2},
	{150, 100, 1.0, 0.05, 0.2},
	{80, 100, 1.0, 0.05, 0.2},
	{50, 100, 1.0, 0.05, 0.2},
	{100, 100, 0.01, 0.05, 0.2},
	{100, 100, 10.0, 0.05, 0.2},
	{100, 100, 1.0, 0.05, 0.01},
	{100, 100, 1.0, 0.05, 1.0},
	{1, 100, 1.0, 0.05, 0.2},
	{1000, 100, 1.0, 0.05, 0.2},
	{100, 90, 0.5, -0.01, 0.35},
	{42, 40, 0.25, 0.1, 0.3},
}

func TestNormalPrimitives(t *testing.T) {
	if NormCDF(0) != 0.5 {
		t.Errorf("Φ(0) = %v", NormCDF(0))
	}
	if !almostEqual(NormPDF(0), 1/math.Sqrt(2*math.Pi), 1e-15) {
		t.Errorf("φ(0) = %v", NormPDF(0))
	}
	if !almostEqual(NormCDF(1.959963984540054), 0.975, 1e-12) {
		t.Errorf("Φ(1.96) = %v", NormCDF(1.959963984540054))
	}

	prev := 0.0
	for x := -10.0; x <= 10.0; x += 0.25 {
		c := NormCDF(x)
		if c < prev {
			t.Fatalf("Φ not monotone at %v", x)
		}
		prev = c
		if !almostEqual(NormCDF(-x), 1-NormCDF(x), 1e-15) {
			t.Errorf("Φ(-x) != 1-Φ(x) at %v", x)
		}
		if NormPDF(x) != NormPDF(-x) {
			t.Errorf("φ not symmetric at %v", x)
		}
	}

	for _, x := range []float64{-1e6, -50, 50, 1e6} {
		c, d := NormCDF(x), NormPDF(x)
		if math.IsNaN(c) || math.IsNaN(d) || c < 0 || c > 1 || d < 0 {
			t.Errorf("extreme %v: Φ=%v φ=%v", x, c, d)
		}
	}
	if NormCDF(-50) != 0 || NormCDF(50) != 1 {
		t.Errorf("expected saturation, got %v %v", NormCDF(-50), NormCDF(50))
	}
}

func TestD1D2(t *testing.T) {
	d1 := D1(100, 100, 1, 0.05, 0.2)
	if !almostEqual(d1, 0.35, 1e-12) {
		t.Errorf("d1 = %v", d1)
	}
	if d2 := D2(100, 100, 1, 0.05, 0.2); !almostEqual(d2, 0.15, 1e-12) {
		t.Errorf("d2 = %v", d2)
	}
	// 边界上按 IEEE-754 传播
	if v := D1(120, 100, 0, 0.05, 0.2); !math.IsInf(v, 1) {
		t.Errorf("expected +Inf at T=0, got %v", v)
	}
	if v := D1(100, 100, 0, 0, 0.2); !math.IsNaN(v) {
		t.Errorf("expected NaN for 0/0, got %v", v)
	}
}

func TestReferenceScenario(t *testing.T) {
	S, K, T, r, sigma := 100.0, 100.0, 1.0, 0.05, 0.2
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"call", CallPrice(S, K, T, r, sigma), 10.4506},
		{"put", PutPrice(S, K, T, r, sigma), 5.5735},
		{"delta_call", DeltaCall(S, K, T, r, sigma), 0.6368},
		{"delta_put", DeltaPut(S, K, T, r, sigma), -0.3632},
		{"gamma", Gamma(S, K, T, r, sigma), 0.0188},
		{"vega", Vega(S, K, T, r, sigma), 37.5240},
		{"theta_call", ThetaCall(S, K, T, r, sigma), -6.4140},
		{"theta_put", ThetaPut(S, K, T, r, sigma), -1.6579},
		{"rho_call", RhoCall(S, K, T, r, sigma), 53.2325},
		{"rho_put", RhoPut(S, K, T, r, sigma), -41.8905},
	}
	for _, c := range checks {
		if !almostEqual(c.got, c.want, 1e-3) {
			t.Errorf("%s: got %v want %v", c.name, c.got, c.want)
		}
	}
}

func TestInTheMoneyCall(t *testing.T) {
	S, K, T, r, sigma := 120.0, 100.0, 1.0, 0.05, 0.2
	if c := CallPrice(S, K, T, r, sigma); c <= S-K {
		t.Errorf("call %v should exceed intrinsic %v", c, S-K)
	}
	if d := DeltaCall(S, K, T, r, sigma); d <= 0.5 {
		t.Errorf("delta %v should exceed 0.5", d)
	}
}

func TestPutCallParity(t *testing.T) {
	for _, in := range pricingGrid {
		S, K, T, r, sigma := in[0], in[1], in[2], in[3], in[4]
		call, put := CallPrice(S, K, T, r, sigma), PutPrice(S, K, T, r, sigma)
		if gap := (call + K*math.Exp(-r*T)) - (put + S); math.Abs(gap) > 1e-6 {
			t.Errorf("%v: parity gap %v", in, gap)
		}
		if gap := ParityGap(S, K, T, r, sigma); math.Abs(gap) > 1e-6 {
			t.Errorf("%v: ParityGap %v", in, gap)
		}
		if call < 0 || put < 0 {
			t.Errorf("%v: negative price call=%v put=%v", in, call, put)
		}
	}
}

func TestAtTheMoneySymmetry(t *testing.T) {
	for _, r := range []float64{0.01, 0.02, 0.05, 0.08, 0.1} {
		if c, p := CallPrice(100, 100, 1, r, 0.2), PutPrice(100, 100, 1, r, 0.2); c <= p {
			t.Errorf("r=%v: call %v should exceed put %v", r, c, p)
		}
	}
	c, p := CallPrice(100, 100, 1, 0, 0.2), PutPrice(100, 100, 1, 0, 0.2)
	if !almostEqual(c, p, 1e-12) {
		t.Errorf("r=0: call %v put %v", c, p)
	}
	if !almostEqual(c, 7.965567455405804, 1e-9) {
		t.Errorf("r=0 ATM call %v", c)
	}
}

func TestMonotonicity(t *testing.T) {
	K, T, r := 100.0, 1.0, 0.05
	prevCall, prevPut := -1.0, math.Inf(1)
	for S := 50.0; S <= 150; S += 5 {
		c, p := CallPrice(S, K, T, r, 0.2), PutPrice(S, K, T, r, 0.2)
		if c < prevCall {
			t.Errorf("call decreasing in S at %v", S)
		}
		if p > prevPut {
			t.Errorf("put increasing in S at %v", S)
		}
		prevCall, prevPut = c, p
	}

	prevCall, prevPut = -1.0, -1.0
	for _, sigma := range []float64{0.1, 0.2, 0.3, 0.5, 0.8} {
		c, p := CallPrice(100, K, T, r, sigma), PutPrice(100, K, T, r, sigma)
		if c < prevCall || p < prevPut {
			t.Errorf("price decreasing in sigma at %v", sigma)
		}
		prevCall, prevPut = c, p
	}
}

func TestDeepMoneyness(t *testing.T) {
	K, T, r, sigma := 100.0, 1.0, 0.05, 0.2

	S := 1e6
	if d := DeltaCall(S, K, T, r, sigma); !almostEqual(d, 1, 1e-12) {
		t.Errorf("deep ITM delta %v", d)
	}
	if diff := CallPrice(S, K, T, r, sigma) - (S - K*math.Exp(-r*T)); !almostEqual(diff, 0, 1e-6) {
		t.Errorf("deep ITM call - forward intrinsic = %v", diff)
	}

	S = 1e-6
	if c := CallPrice(S, K, T, r, sigma); !almostEqual(c, 0, 1e-12) {
		t.Errorf("deep OTM call %v", c)
	}
	if d := DeltaCall(S, K, T, r, sigma); !almostEqual(d, 0, 1e-12) {
		t.Errorf("deep OTM delta %v", d)
	}
}

func TestPriceDispatch(t *testing.T) {
	for _, in := range pricingGrid {
		S, K, T, r, sigma := in[0], in[1], in[2], in[3], in[4]
		if Price(types.OptionTypeCall, S, K, T, r, sigma) != CallPrice(S, K, T, r, sigma) {
			t.Errorf("%v: call dispatch mismatch", in)
		}
		if Price(types.OptionTypePut, S, K, T, r, sigma) != PutPrice(S, K, T, r, sigma) {
			t.Errorf("%v: put dispatch mismatch", in)
		}
	}
}
