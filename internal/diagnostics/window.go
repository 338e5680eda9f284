package diagnostics

import "math"

// window.go 窗函数族，供analyze子命令在做自相关/LPC诊断前给一帧信号加窗
//
// 这里的系数和特性描述来自原始SPL库的WebRtcSpl_GetHanningWindow族，
// 按同一个WindowFunc签名泛化成一张可按名字查询的表

// WindowFunc 窗函数类型：n是当前样本索引，N是总样本数
type WindowFunc func(n, N int) float64

// Hamming 旁瓣抑制-42dB，语音分析里最常用的折中窗
func Hamming(n, N int) float64 {
	if N <= 1 {
		return 1.0
	}
	return 0.54 - 0.46*math.Cos(2*math.Pi*float64(n)/float64(N-1))
}

// Hann 旁瓣抑制-31dB，主瓣略宽于Hamming
func Hann(n, N int) float64 {
	if N <= 1 {
		return 1.0
	}
	return 0.5 * (1 - math.Cos(2*math.Pi*float64(n)/float64(N-1)))
}

// Blackman 旁瓣抑制-58dB，主瓣更宽，适合高精度谱分析
func Blackman(n, N int) float64 {
	if N <= 1 {
		return 1.0
	}
	const a0, a1, a2 = 0.42, 0.5, 0.08
	x := 2 * math.Pi * float64(n) / float64(N-1)
	if w := a0 - a1*math.Cos(x) + a2*math.Cos(2*x); w > 0 {
		return w
	}
	return 0
}

// BlackmanHarris 旁瓣抑制-92dB，动态范围要求高的场合
func BlackmanHarris(n, N int) float64 {
	if N <= 1 {
		return 1.0
	}
	const a0, a1, a2, a3 = 0.35875, 0.48829, 0.14128, 0.01168
	x := 2 * math.Pi * float64(n) / float64(N-1)
	return a0 - a1*math.Cos(x) + a2*math.Cos(2*x) - a3*math.Cos(3*x)
}

// Bartlett 三角窗，旁瓣抑制-25dB
func Bartlett(n, N int) float64 {
	if N <= 1 {
		return 1.0
	}
	half := float64(N-1) / 2.0
	return 1.0 - math.Abs(float64(n)-half)/half
}

// Welch 抛物窗，比Bartlett更平滑，常用于功率谱估计
func Welch(n, N int) float64 {
	if N <= 1 {
		return 1.0
	}
	half := float64(N-1) / 2.0
	x := (float64(n) - half) / half
	return 1.0 - x*x
}

// Kaiser beta控制旁瓣抑制：beta=0等同矩形窗，beta≈5类似Hamming，beta≈8.6类似Blackman
func Kaiser(n, N int, beta float64) float64 {
	if N <= 1 {
		return 1.0
	}
	x := 2.0*float64(n)/float64(N-1) - 1.0
	return besselI0(beta*math.Sqrt(1-x*x)) / besselI0(beta)
}

// besselI0 零阶修正贝塞尔函数，Kaiser窗的归一化分母用它
func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	for i := 1; i < 50; i++ {
		term *= (x / 2.0) / float64(i)
		term *= (x / 2.0) / float64(i)
		sum += term
		if term < 1e-10 {
			break
		}
	}
	return sum
}

// Rectangular 矩形窗（不加窗），最窄主瓣但旁瓣最差（-13dB）
func Rectangular(n, N int) float64 {
	return 1.0
}

// byName 把窗函数名绑定到实现，AnalyzeFrame按名字挑选窗而不必把一串if/else
// 散落在调用方；Kaiser需要额外的beta参数，不走这张表
var byName = map[string]WindowFunc{
	"hamming":        Hamming,
	"hann":           Hann,
	"blackman":       Blackman,
	"blackmanharris": BlackmanHarris,
	"bartlett":       Bartlett,
	"welch":          Welch,
	"rectangular":    Rectangular,
}

// ByName 按名字查找窗函数，未知名字回退到Hamming窗（analyze子命令的默认值）
func ByName(name string) WindowFunc {
	if w, ok := byName[name]; ok {
		return w
	}
	return Hamming
}

// ApplyWindow 对信号应用窗函数，int16和float64共用同一套泛型实现
func ApplyWindow[T ~int16 | ~float64](signal []T, window WindowFunc) []T {
	result := make([]T, len(signal))
	ApplyWindowTo(signal, window, result)
	return result
}

// ApplyWindowTo 对信号应用窗函数（零分配版本，result长度应 >= len(signal)）
func ApplyWindowTo[T ~int16 | ~float64](signal []T, window WindowFunc, result []T) {
	N := len(signal)
	for i := 0; i < N; i++ {
		result[i] = T(float64(signal[i]) * window(i, N))
	}
}
