// Package finance - 欧式期权 Black-Scholes-Merton 定价与希腊字母。
package finance

import "gonum.org/v1/gonum/stat/distuv"

// NormCDF 标准正态分布累积分布函数 Φ(x)。
// 基于 erfc 计算，尾部精度不损失，极端取值下饱和为 0 或 1。
func NormCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormPDF 标准正态分布概率密度函数 φ(x)。
func NormPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
