package vad

// vad_gmm.go 评估单个高斯分量在给定观测下的概率密度

const (
	kCompVar Q10Acc = 22005 // 指数项的比较阈值，超过则认为概率可忽略为0
	kLog2Exp int32  = 5909  // log2(e)，Q12定点数
)

// gaussianProbability 计算正态分布 N(mean, std) 在input处的概率密度
//
//	1/s · exp(-(x - m)^2 / (2 · s^2))
//
// input为Q4格式，mean/std为Q7格式，返回值为Q20格式。
//
// 额外返回delta（Q11格式），即(x-m)/s^2，供调用方在线更新所属高斯
// 分量的均值/标准差时复用，避免重复计算。
func gaussianProbability(input Q4, mean, std Q7) (prob Q20, delta Q11) {
	invStd := invertToQ10(std)
	invStd2 := squareToQ14(invStd)

	diff := shiftUpQ4ToQ7(input) - mean // Q7

	delta = deltaQ11(invStd2, diff)
	expArg := expArgQ10(delta, diff)

	var expValue Q10
	if expArg < kCompVar {
		// expValue ≈ exp(-(x-m)^2/(2s^2)) = exp2(-log2(e)·expArg)
		// 用移位近似exp2，而不是调用浮点exp2
		scaled := Q10((kLog2Exp * int32(expArg)) >> 12) // Q10
		scaled = -scaled
		mantissa := Q10(0x0400 | (int16(scaled) & 0x03FF))
		shiftCount := (int16(scaled) ^ -1) >> 10
		shiftCount++
		expValue = mantissa >> uint(shiftCount)
	}

	return Q20(invStd) * Q20(expValue), delta
}
