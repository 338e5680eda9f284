package vad

import (
	"testing"
)

// TestNewWithOptions 测试选项模式创建VAD
func TestNewWithOptions(t *testing.T) {
	detector, err := NewWithOptions()
	if err != nil {
		t.Fatalf("创建默认VAD失败: %v", err)
	}
	if detector == nil {
		t.Fatal("VAD实例为nil")
	}

	detector, err = NewWithOptions(WithMode(2))
	if err != nil {
		t.Fatalf("创建VAD失败: %v", err)
	}
	if detector == nil {
		t.Fatal("VAD实例为nil")
	}

	if _, err := NewWithOptions(WithMode(5)); err == nil {
		t.Error("应该拒绝无效模式")
	}
}

// TestNewStreamVADWithOptions 测试选项模式创建StreamVAD
func TestNewStreamVADWithOptions(t *testing.T) {
	svad, err := NewStreamVADWithOptions()
	if err != nil {
		t.Fatalf("创建默认StreamVAD失败: %v", err)
	}
	if svad == nil {
		t.Fatal("StreamVAD实例为nil")
	}

	svad, err = NewStreamVADWithOptions(
		WithStreamMode(2),
		WithSampleRate(16000),
		WithFrameDuration(20),
	)
	if err != nil {
		t.Fatalf("创建StreamVAD失败: %v", err)
	}
	if svad.sampleRate != 16000 {
		t.Errorf("采样率错误: 期望16000, 得到%d", svad.sampleRate)
	}
	if svad.frameMs != 20 {
		t.Errorf("帧长度错误: 期望20, 得到%d", svad.frameMs)
	}

	if _, err := NewStreamVADWithOptions(WithSampleRate(11025)); err == nil {
		t.Error("应该拒绝无效采样率")
	}
	if _, err := NewStreamVADWithOptions(WithFrameDuration(15)); err == nil {
		t.Error("应该拒绝无效帧长度")
	}
}

// TestVADPresetsTable 直接核对vadPresets表的内容，而不仅仅是构造结果
func TestVADPresetsTable(t *testing.T) {
	tests := []struct {
		name     string
		wantMode int
	}{
		{"default", 0},
		{"aggressive", 3},
	}

	for _, tt := range tests {
		preset, ok := vadPresets[tt.name]
		if !ok {
			t.Fatalf("vadPresets 缺少 %q", tt.name)
		}
		if preset.mode != tt.wantMode {
			t.Errorf("vadPresets[%q].mode = %d, want %d", tt.name, preset.mode, tt.wantMode)
		}
	}
}

// TestPresetConfigurations 测试预定义配置
func TestPresetConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		factory func() (*VAD, error)
	}{
		{"DefaultVAD", DefaultVAD},
		{"AggressiveVAD", AggressiveVAD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector, err := tt.factory()
			if err != nil {
				t.Fatalf("创建%s失败: %v", tt.name, err)
			}

			sampleRate := 16000
			frame := make([]byte, frameSizeFor(sampleRate, 10))
			if _, err := detector.IsSpeech(frame, sampleRate); err != nil {
				t.Fatalf("%s检测失败: %v", tt.name, err)
			}
		})
	}
}

// TestPresetStreamVADConfigurations 测试预定义StreamVAD配置，并核对streamPresets表
func TestPresetStreamVADConfigurations(t *testing.T) {
	tests := []struct {
		name       string
		factory    func() (*StreamVAD, error)
		wantPreset string
	}{
		{"DefaultStreamVAD", DefaultStreamVAD, "default"},
		{"RealtimeStreamVAD", RealtimeStreamVAD, "realtime"},
		{"HighQualityStreamVAD", HighQualityStreamVAD, "highquality"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svad, err := tt.factory()
			if err != nil {
				t.Fatalf("创建%s失败: %v", tt.name, err)
			}

			want := streamPresets[tt.wantPreset]
			if svad.sampleRate != want.sampleRate || svad.frameMs != want.frameMs {
				t.Fatalf("%s: got (rate=%d, ms=%d), want (rate=%d, ms=%d)",
					tt.name, svad.sampleRate, svad.frameMs, want.sampleRate, want.frameMs)
			}

			frame := make([]byte, frameSizeFor(svad.sampleRate, svad.frameMs))
			if _, err := svad.Write(frame); err != nil {
				t.Fatalf("%s写入失败: %v", tt.name, err)
			}
		})
	}
}

// TestOptionsChaining 测试选项链式调用
func TestOptionsChaining(t *testing.T) {
	detector, err := NewWithOptions(WithMode(2))
	if err != nil {
		t.Fatalf("创建VAD失败: %v", err)
	}

	sampleRate := 16000
	frame := make([]byte, frameSizeFor(sampleRate, 10))
	if _, err := detector.IsSpeech(frame, sampleRate); err != nil {
		t.Fatalf("检测失败: %v", err)
	}
}

// TestStreamOptionsChaining 测试StreamVAD选项链式调用
func TestStreamOptionsChaining(t *testing.T) {
	svad, err := NewStreamVADWithOptions(
		WithStreamMode(1),
		WithSampleRate(8000),
		WithFrameDuration(10),
	)
	if err != nil {
		t.Fatalf("创建StreamVAD失败: %v", err)
	}

	if svad.sampleRate != 8000 {
		t.Errorf("采样率配置错误")
	}
	if svad.frameMs != 10 {
		t.Errorf("帧长度配置错误")
	}
}

// BenchmarkNewWithOptions Benchmark选项模式创建
func BenchmarkNewWithOptions(b *testing.B) {
	for i := 0; i < b.N; i++ {
		detector, _ := NewWithOptions(WithMode(2))
		_ = detector
	}
}

// BenchmarkNewDirect Benchmark直接创建（对比）
func BenchmarkNewDirect(b *testing.B) {
	for i := 0; i < b.N; i++ {
		detector, _ := New(2)
		_ = detector
	}
}
