package vad

import (
	"testing"
)

// approxSin 用于合成测试输入的正弦近似，不追求精度
func approxSin(x float64) float64 {
	for x > 3.14159 {
		x -= 2 * 3.14159
	}
	for x < -3.14159 {
		x += 2 * 3.14159
	}
	if x < 0 {
		return -x * (1.27323954 + 0.405284735*x)
	}
	return x * (1.27323954 - 0.405284735*x)
}

// TestResample48khzTo8khzFull 测试完整的重采样滤波器
func TestResample48khzTo8khzFull(t *testing.T) {
	// 480样本 @ 48kHz = 10ms，合成一个1kHz正弦波
	input := make([]int16, 480)
	for i := range input {
		input[i] = int16(10000.0 * approxSin(float64(i)*2*3.14159*1000/48000))
	}

	output := make([]int16, 80)
	var state state48khzTo8khzFull
	tmpMem := make([]int32, 512)

	resample48khzTo8khzFull(input, output, &state, tmpMem)

	nonZeroCount := 0
	for _, v := range output {
		if v != 0 {
			nonZeroCount++
		}
	}
	if nonZeroCount == 0 {
		t.Error("输出全为零，重采样失败")
	}
	if len(output) != 80 {
		t.Errorf("输出长度错误: 期望80, 得到%d", len(output))
	}
}

// TestAllpassCascade3 直接对共享的三级allpass级联做正确性检查：
// 零输入在零状态下必须保持零输出（级联是线性的，没有直流偏置）
func TestAllpassCascade3(t *testing.T) {
	state := make([]int32, 4)
	coef := [3]int16{20972, 5571, 16880}

	if got := allpassCascade3(0, state, coef); got != 0 {
		t.Errorf("allpassCascade3(0, zero-state) = %d, want 0", got)
	}
	for _, s := range state {
		if s != 0 {
			t.Errorf("allpassCascade3: state not zero after zero input: %v", state)
			break
		}
	}

	// 非零输入应当改变状态（至少state[0]记下了输入）
	state2 := make([]int32, 4)
	allpassCascade3(10000, state2, coef)
	allZero := true
	for _, s := range state2 {
		if s != 0 {
			allZero = false
		}
	}
	if allZero {
		t.Error("allpassCascade3: state unchanged after nonzero input")
	}
}

// TestSaturateInt16 验证饱和截断的三个区间
func TestSaturateInt16(t *testing.T) {
	tests := []struct {
		in   int32
		want int16
	}{
		{0, 0},
		{32767, 32767},
		{32768, 32767},
		{100000, 32767},
		{-32768, -32768},
		{-32769, -32768},
		{-100000, -32768},
	}
	for _, tt := range tests {
		if got := saturateInt16(tt.in); got != tt.want {
			t.Errorf("saturateInt16(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// TestDownBy2ShortToInt 测试2倍降采样
func TestDownBy2ShortToInt(t *testing.T) {
	input := []int16{100, 200, 300, 400, 500, 600, 700, 800,
		900, 1000, 1100, 1200, 1300, 1400, 1500, 1600}
	output := make([]int32, 8)
	state := make([]int32, 8)

	downBy2ShortToInt(input, 16, output, state)

	if len(output) != 8 {
		t.Errorf("输出长度错误")
	}

	nonZero := false
	for _, v := range output {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("降采样输出全为零")
	}
}

// TestResample48khzTo32khz 测试分数重采样
func TestResample48khzTo32khz(t *testing.T) {
	input := make([]int32, 240)
	for i := range input {
		input[i] = int32(i * 1000)
	}
	output := make([]int32, 160)

	resample48khzTo32khz(input, output, 80)

	if len(output) != 160 {
		t.Errorf("输出长度错误: 期望160, 得到%d", len(output))
	}

	nonZero := false
	for _, v := range output {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("重采样输出全为零")
	}
}

// TestResample48khzTo8khzConsistency 两次独立调用、相同输入，应得到相同输出
func TestResample48khzTo8khzConsistency(t *testing.T) {
	input := make([]int16, 480)
	for i := range input {
		input[i] = int16((i % 100) * 100)
	}

	runOnce := func() []int16 {
		output := make([]int16, 80)
		var state state48khzTo8khzFull
		tmpMem := make([]int32, 512)
		resample48khzTo8khzFull(input, output, &state, tmpMem)
		return output
	}

	output1, output2 := runOnce(), runOnce()
	for i := range output1 {
		if output1[i] != output2[i] {
			t.Errorf("重采样不一致: index %d, %d != %d", i, output1[i], output2[i])
		}
	}
}

// BenchmarkResample48khzTo8khzFull Benchmark完整重采样
func BenchmarkResample48khzTo8khzFull(b *testing.B) {
	input := make([]int16, 480)
	output := make([]int16, 80)
	var state state48khzTo8khzFull
	tmpMem := make([]int32, 512)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		resample48khzTo8khzFull(input, output, &state, tmpMem)
	}
}

// BenchmarkDownBy2ShortToInt Benchmark 2倍降采样
func BenchmarkDownBy2ShortToInt(b *testing.B) {
	input := make([]int16, 480)
	output := make([]int32, 240)
	state := make([]int32, 8)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		downBy2ShortToInt(input, 480, output, state)
	}
}
