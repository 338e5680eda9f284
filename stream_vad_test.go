package vad

import (
	"testing"
	"time"
)

// TestStreamVADCreation 测试StreamVAD创建
func TestStreamVADCreation(t *testing.T) {
	svad, err := NewStreamVAD(1, 16000, 20)
	if err != nil {
		t.Fatalf("创建StreamVAD失败: %v", err)
	}
	if svad == nil {
		t.Fatal("StreamVAD实例为nil")
	}

	if _, err := NewStreamVAD(1, 11025, 20); err == nil {
		t.Error("应该拒绝无效采样率")
	}
	if _, err := NewStreamVAD(1, 16000, 15); err == nil {
		t.Error("应该拒绝无效帧长度")
	}
}

// TestStreamVADWrite 测试流式写入
func TestStreamVADWrite(t *testing.T) {
	svad, err := NewStreamVAD(1, 16000, 20)
	if err != nil {
		t.Fatalf("创建StreamVAD失败: %v", err)
	}

	frameSize := frameSizeFor(16000, 20)
	audioData := make([]byte, frameSize*3)

	segments, err := svad.Write(audioData)
	if err != nil {
		t.Fatalf("写入音频失败: %v", err)
	}
	if len(segments) == 0 {
		t.Error("应该检测到至少1个片段")
	}
	if svad.GetTotalProcessed() != int64(frameSize*3) {
		t.Errorf("总处理字节数错误: 期望%d, 得到%d", frameSize*3, svad.GetTotalProcessed())
	}
}

// TestStreamVADBuffering 测试缓冲功能
func TestStreamVADBuffering(t *testing.T) {
	svad, err := NewStreamVAD(1, 8000, 10)
	if err != nil {
		t.Fatalf("创建StreamVAD失败: %v", err)
	}

	frameSize := frameSizeFor(8000, 10)
	partialFrame := make([]byte, frameSize/2)

	segments, err := svad.Write(partialFrame)
	if err != nil {
		t.Fatalf("写入音频失败: %v", err)
	}
	if len(segments) != 0 {
		t.Error("不完整帧不应该产生片段")
	}
	if svad.GetBufferSize() != frameSize/2 {
		t.Errorf("缓冲区大小错误: 期望%d, 得到%d", frameSize/2, svad.GetBufferSize())
	}

	segments, err = svad.Write(partialFrame)
	if err != nil {
		t.Fatalf("写入音频失败: %v", err)
	}
	if len(segments) == 0 {
		t.Error("完整帧应该产生片段")
	}
}

// TestExtendOrAppend 直接覆盖extendOrAppend的两个分支：同类型延长、异类型新增
func TestExtendOrAppend(t *testing.T) {
	svad := &StreamVAD{}

	first := VoiceSegment{Start: 0, End: time.Second, IsSpeech: true}
	added, isNew := svad.extendOrAppend(true, time.Second, first)
	if !isNew || added != first {
		t.Fatalf("first segment: got (added=%v, isNew=%v), want (%v, true)", added, isNew, first)
	}
	if len(svad.segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(svad.segments))
	}

	// 同类型应该原地延长，不产生新片段
	extendTo := 2 * time.Second
	_, isNew = svad.extendOrAppend(true, extendTo, VoiceSegment{})
	if isNew {
		t.Error("same-type write should extend, not append")
	}
	if len(svad.segments) != 1 || svad.segments[0].End != extendTo {
		t.Fatalf("expected last segment extended to %v, got %+v", extendTo, svad.segments)
	}

	// 不同类型应该追加新片段
	second := VoiceSegment{Start: extendTo, End: 3 * time.Second, IsSpeech: false}
	added, isNew = svad.extendOrAppend(false, 3*time.Second, second)
	if !isNew || added != second {
		t.Fatalf("type change: got (added=%v, isNew=%v), want (%v, true)", added, isNew, second)
	}
	if len(svad.segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(svad.segments))
	}
}

// TestStreamVADReset 测试重置功能
func TestStreamVADReset(t *testing.T) {
	svad, err := NewStreamVAD(2, 16000, 10)
	if err != nil {
		t.Fatalf("创建StreamVAD失败: %v", err)
	}

	audioData := make([]byte, frameSizeFor(16000, 10)*2)
	if _, err := svad.Write(audioData); err != nil {
		t.Fatalf("写入音频失败: %v", err)
	}

	if err := svad.Reset(); err != nil {
		t.Fatalf("重置失败: %v", err)
	}

	if svad.GetBufferSize() != 0 {
		t.Error("重置后缓冲区应为空")
	}
	if svad.GetTotalProcessed() != 0 {
		t.Error("重置后总处理量应为0")
	}
	if len(svad.GetSegments()) != 0 {
		t.Error("重置后片段列表应为空")
	}
}

// TestStreamVADSegmentFiltering 测试片段过滤
func TestStreamVADSegmentFiltering(t *testing.T) {
	svad, err := NewStreamVAD(1, 8000, 10)
	if err != nil {
		t.Fatalf("创建StreamVAD失败: %v", err)
	}

	audioData := make([]byte, frameSizeFor(8000, 10)*5)
	if _, err := svad.Write(audioData); err != nil {
		t.Fatalf("写入音频失败: %v", err)
	}

	allSegments := svad.GetSegments()
	if len(allSegments) == 0 {
		t.Skip("没有检测到片段")
	}

	speechSegments := svad.filterSegments(true)
	silenceSegments := svad.filterSegments(false)
	if len(speechSegments)+len(silenceSegments) != len(allSegments) {
		t.Error("过滤后的片段总数不匹配")
	}

	if len(svad.FilterSpeechSegments()) != len(speechSegments) {
		t.Error("FilterSpeechSegments应与filterSegments(true)一致")
	}
	if len(svad.FilterSilenceSegments()) != len(silenceSegments) {
		t.Error("FilterSilenceSegments应与filterSegments(false)一致")
	}
}

// TestVoiceSegmentDuration 测试时长计算
func TestVoiceSegmentDuration(t *testing.T) {
	svad, err := NewStreamVAD(1, 16000, 20)
	if err != nil {
		t.Fatalf("创建StreamVAD失败: %v", err)
	}

	frameSize := frameSizeFor(16000, 20)
	for i := 0; i < 50; i++ {
		audioData := make([]byte, frameSize)
		if _, err := svad.Write(audioData); err != nil {
			t.Fatalf("写入音频失败: %v", err)
		}
	}

	totalDuration := svad.GetTotalDuration()
	expectedDuration := time.Second

	diff := totalDuration - expectedDuration
	if diff < 0 {
		diff = -diff
	}
	if diff > time.Millisecond {
		t.Errorf("总时长错误: 期望%v, 得到%v", expectedDuration, totalDuration)
	}
}

// BenchmarkStreamVADWrite Benchmark流式写入
func BenchmarkStreamVADWrite(b *testing.B) {
	svad, _ := NewStreamVAD(1, 16000, 10)
	audioData := make([]byte, frameSizeFor(16000, 10))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		svad.Write(audioData)
	}
}
