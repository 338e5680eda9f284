package diagnostics

import "math"

// ar_filter.go 从自相关系数推导线性预测(LPC)系数，用于analyze子命令报告
// 语音帧的频谱倾斜（一阶反射系数）和LPC增益

// LevinsonDurbin 从自相关系数递归求解AR/LPC系数
//
// autoCorr是[R(0), R(1), ..., R(order)]，返回arCoeffs=[1, -a1, ..., -a_order]
// 和预测误差功率；autoCorr[0]==0或递归中预测误差非正时提前退出
func LevinsonDurbin(autoCorr []float64, order int) ([]float64, float64) {
	if len(autoCorr) < order+1 {
		return nil, 0
	}

	arCoeffs := make([]float64, order+1)
	arCoeffs[0] = 1.0

	if autoCorr[0] == 0 {
		return arCoeffs, 0
	}

	predictionError := autoCorr[0]
	reflectionCoeffs := make([]float64, order)

	for m := 0; m < order; m++ {
		sum := autoCorr[m+1]
		for k := 0; k < m; k++ {
			sum += arCoeffs[k+1] * autoCorr[m-k]
		}
		reflectionCoeffs[m] = -sum / predictionError

		prev := append([]float64(nil), arCoeffs[:m+1]...)
		arCoeffs[m+1] = reflectionCoeffs[m]
		for k := 0; k < m; k++ {
			arCoeffs[k+1] = prev[k+1] + reflectionCoeffs[m]*prev[m-k]
		}

		predictionError *= 1.0 - reflectionCoeffs[m]*reflectionCoeffs[m]
		if predictionError <= 0 {
			break
		}
	}

	return arCoeffs, predictionError
}

// LPCAnalysis 对一帧信号做线性预测编码分析：先算自相关，再用Levinson-Durbin
// 求出LPC系数和增益
func LPCAnalysis(signal []int16, length int, order int) ([]float64, float64) {
	autoCorr := make([]float64, order+1)
	for lag := 0; lag <= order; lag++ {
		var sum float64
		for n := 0; n < length-lag; n++ {
			sum += float64(signal[n]) * float64(signal[n+lag])
		}
		autoCorr[lag] = sum
	}

	lpcCoeffs, predError := LevinsonDurbin(autoCorr, order)

	var gain float64
	if predError > 0 && autoCorr[0] > 0 {
		gain = math.Sqrt(predError / autoCorr[0])
	}

	return lpcCoeffs, gain
}

// ComputeParcorCoefficients 计算偏自相关系数（反射系数），与LevinsonDurbin
// 共享同一套递归但只保留反射系数本身，不需要完整AR系数
func ComputeParcorCoefficients(autoCorr []float64, order int) []float64 {
	if len(autoCorr) < order+1 {
		return nil
	}

	parcor := make([]float64, order)
	arCoeffs := make([]float64, order+1)
	arCoeffs[0] = 1.0

	if autoCorr[0] == 0 {
		return parcor
	}

	predictionError := autoCorr[0]

	for m := 0; m < order; m++ {
		sum := autoCorr[m+1]
		for k := 0; k < m; k++ {
			sum += arCoeffs[k+1] * autoCorr[m-k]
		}
		parcor[m] = -sum / predictionError

		prev := append([]float64(nil), arCoeffs[:m+1]...)
		arCoeffs[m+1] = parcor[m]
		for k := 0; k < m; k++ {
			arCoeffs[k+1] = prev[k+1] + parcor[m]*prev[m-k]
		}

		predictionError *= 1.0 - parcor[m]*parcor[m]
		if predictionError <= 0 {
			break
		}
	}

	return parcor
}
