package diagnostics

// pitch.go 把窗函数、自相关与线性预测组合成一份"帧诊断报告"
//
// 这些诊断完全在VAD判决路径之外：它们使用浮点数，只为CLI的analyze
// 子命令提供人类可读的附加信息，绝不影响IsSpeech的返回值。

// FrameReport 是对单帧语音的诊断结果
type FrameReport struct {
	PitchPeriodSamples int     // 自相关峰值对应的基音周期（样本数），0表示未检出
	PitchConfidence    float64 // 归一化的峰值相关性，0..1
	ReflectionCoeff1   float64 // 一阶反射系数（PARCOR），粗略反映频谱倾斜
	LPCGain            float64 // LPC增益
}

// minLagSamples/maxLagSamples 限定基音搜索范围，对应人声基频约80-400Hz
// 在8kHz采样下的周期范围
const (
	minLagSamples = 20 // 8000/400
	maxLagSamples = 100 // 8000/80
)

// AnalyzeFrame 对一帧8kHz采样的int16信号做基音与LPC诊断
//
// windowName按名字选取加窗函数（参见ByName），order是线性预测阶数，
// 典型语音诊断取8-12阶
func AnalyzeFrame(frame []int16, order int, windowName string) FrameReport {
	windowed := ApplyWindow(frame, ByName(windowName))

	maxLag := maxLagSamples
	if maxLag > len(windowed)-1 {
		maxLag = len(windowed) - 1
	}
	if maxLag <= minLagSamples {
		return FrameReport{}
	}

	// 按峰值幅度选右移位数，使len(windowed)个乘积之和不超出int32
	var peakSq int64
	for _, s := range windowed {
		if sq := int64(s) * int64(s); sq > peakSq {
			peakSq = sq
		}
	}
	rightShifts := 0
	for (peakSq>>uint(rightShifts))*int64(len(windowed)) > 1<<31-1 {
		rightShifts++
	}

	autoCorr := make([]int32, maxLag+1)
	AutoCorrelationTo(windowed, len(windowed), maxLag+1, rightShifts, autoCorr)

	// 只在基频合理范围内找峰值，避免零延迟处的能量峰值干扰
	peakIdx, peakVal := FindPeak(autoCorr[minLagSamples:])

	var report FrameReport
	if peakIdx >= 0 && autoCorr[0] > 0 {
		report.PitchPeriodSamples = peakIdx + minLagSamples
		report.PitchConfidence = float64(peakVal) / float64(autoCorr[0])
		if report.PitchConfidence > 1 {
			report.PitchConfidence = 1
		}
		if report.PitchConfidence < 0 {
			report.PitchConfidence = 0
		}
	}

	lpcAutoCorr := make([]float64, order+1)
	for lag := 0; lag <= order && lag < len(windowed); lag++ {
		var sum float64
		for n := 0; n < len(windowed)-lag; n++ {
			sum += float64(windowed[n]) * float64(windowed[n+lag])
		}
		lpcAutoCorr[lag] = sum
	}

	parcor := ComputeParcorCoefficients(lpcAutoCorr, order)
	if len(parcor) > 0 {
		report.ReflectionCoeff1 = parcor[0]
	}

	_, gain := LPCAnalysis(windowed, len(windowed), order)
	report.LPCGain = gain

	return report
}
