// Package pricingapi 以 HTTP 接口暴露期权定价、希腊字母、平价校验与损益图。
package pricingapi

import (
	"github.com/wyfcoding/optionpricing/config"
	"gonum.org/v1/plot/vg"
)

// Options 处理器的运行参数，配置热更新时整体替换。
type Options struct {
	DefaultRate       float64
	DefaultVolatility float64
	Workers           int
	MaxPoints         int

	// RangeLow/RangeHigh 为行权价的倍数，请求未给出价格区间时使用。
	RangeLow      float64
	RangeHigh     float64
	Points        int
	Width         vg.Length
	Height        vg.Length
	ShowBreakeven bool
}

// DefaultOptions 与配置默认值一致。
func DefaultOptions() Options {
	return Options{
		DefaultRate:       0.05,
		DefaultVolatility: 0.2,
		MaxPoints:         2000,
		RangeLow:          0.5,
		RangeHigh:         1.5,
		Points:            100,
		Width:             10 * vg.Inch,
		Height:            6 * vg.Inch,
		ShowBreakeven:     true,
	}
}

// OptionsFromConfig 从 pricing 与 diagram 配置段构造 Options。
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DefaultRate:       cfg.Pricing.DefaultRate,
		DefaultVolatility: cfg.Pricing.DefaultVolatility,
		Workers:           cfg.Pricing.Workers,
		MaxPoints:         cfg.Pricing.MaxPoints,
		RangeLow:          cfg.Diagram.RangeLow,
		RangeHigh:         cfg.Diagram.RangeHigh,
		Points:            cfg.Diagram.Points,
		Width:             vg.Length(cfg.Diagram.Width) * vg.Inch,
		Height:            vg.Length(cfg.Diagram.Height) * vg.Inch,
		ShowBreakeven:     cfg.Diagram.ShowBreakeven,
	}
}
