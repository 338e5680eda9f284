package diagnostics

import (
	"math"
	"testing"
)

// TestLevinsonDurbin 测试Levinson-Durbin递归
func TestLevinsonDurbin(t *testing.T) {
	autoCorr := []float64{1.0, 0.8, 0.5, 0.2}
	order := 2

	arCoeffs, predError := LevinsonDurbin(autoCorr, order)

	if len(arCoeffs) != order+1 {
		t.Errorf("Expected %d coefficients, got %d", order+1, len(arCoeffs))
	}
	if arCoeffs[0] != 1.0 {
		t.Errorf("First coefficient should be 1.0, got %.3f", arCoeffs[0])
	}
	if predError <= 0 {
		t.Errorf("Prediction error should be positive, got %.3f", predError)
	}
	if predError >= autoCorr[0] {
		t.Errorf("Prediction error %.3f should be < variance %.3f", predError, autoCorr[0])
	}
}

// TestLevinsonDurbinZeroEnergy 覆盖autoCorr[0]==0的提前退出分支
func TestLevinsonDurbinZeroEnergy(t *testing.T) {
	arCoeffs, predError := LevinsonDurbin([]float64{0, 1, 2}, 2)
	if predError != 0 {
		t.Errorf("零能量输入应返回predError=0, 得到%f", predError)
	}
	if arCoeffs[0] != 1.0 {
		t.Errorf("AR系数首项应为1.0, 得到%f", arCoeffs[0])
	}
}

// TestLevinsonDurbinShortInput 覆盖autoCorr长度不足order+1的提前返回
func TestLevinsonDurbinShortInput(t *testing.T) {
	arCoeffs, predError := LevinsonDurbin([]float64{1, 2}, 5)
	if arCoeffs != nil || predError != 0 {
		t.Errorf("autoCorr过短时应返回(nil, 0), 得到(%v, %f)", arCoeffs, predError)
	}
}

// TestLPCAnalysis 测试LPC分析
func TestLPCAnalysis(t *testing.T) {
	length := 256
	signal := make([]int16, length)

	for i := 0; i < length; i++ {
		signal[i] = int16(1000 * math.Sin(2*math.Pi*float64(i)/32.0))
	}

	order := 10
	lpcCoeffs, gain := LPCAnalysis(signal, length, order)

	if len(lpcCoeffs) != order+1 {
		t.Errorf("Expected %d LPC coefficients, got %d", order+1, len(lpcCoeffs))
	}
	if lpcCoeffs[0] != 1.0 {
		t.Errorf("First LPC coefficient should be 1.0, got %.3f", lpcCoeffs[0])
	}
	if gain <= 0 {
		t.Error("Gain should be positive")
	}
}

// TestLPCAnalysisSilence 静音输入应返回零增益
func TestLPCAnalysisSilence(t *testing.T) {
	signal := make([]int16, 50)
	_, gain := LPCAnalysis(signal, len(signal), 8)
	if gain != 0 {
		t.Errorf("静音输入增益应为0, 得到%f", gain)
	}
}

// TestComputeParcorCoefficients 测试PARCOR系数计算
func TestComputeParcorCoefficients(t *testing.T) {
	autoCorr := []float64{1.0, 0.9, 0.7, 0.5, 0.3}
	order := 3

	parcor := ComputeParcorCoefficients(autoCorr, order)

	if len(parcor) != order {
		t.Errorf("Expected %d PARCOR coefficients, got %d", order, len(parcor))
	}
	for i, k := range parcor {
		if k < -1.0 || k > 1.0 {
			t.Errorf("PARCOR[%d]=%.3f is outside [-1, 1]", i, k)
		}
	}

	// 一阶模型的AR系数[1]就是首个反射系数；更高阶时AR系数[1]会被后续递归修改
	arCoeffs, _ := LevinsonDurbin(autoCorr, 1)
	if len(arCoeffs) > 1 && parcor[0] != arCoeffs[1] {
		t.Errorf("反射系数首项应与一阶LevinsonDurbin的AR系数[1]一致: parcor[0]=%f, arCoeffs[1]=%f",
			parcor[0], arCoeffs[1])
	}
}

// BenchmarkLevinsonDurbin 基准测试Levinson-Durbin
func BenchmarkLevinsonDurbin(b *testing.B) {
	autoCorr := make([]float64, 17) // order=16
	for i := range autoCorr {
		autoCorr[i] = 1.0 / float64(i+1)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		LevinsonDurbin(autoCorr, 16)
	}
}

// BenchmarkLPCAnalysis 基准测试LPC分析
func BenchmarkLPCAnalysis(b *testing.B) {
	length := 256
	signal := make([]int16, length)

	for i := 0; i < length; i++ {
		signal[i] = int16(math.Sin(float64(i)*0.1) * 1000)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		LPCAnalysis(signal, length, 12)
	}
}
