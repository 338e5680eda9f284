package vad

import (
	"fmt"
	"time"
)

// stream_vad.go 提供流式VAD处理接口
// 自动处理缓冲和分帧，适合实时流处理场景

// StreamVAD 流式VAD处理器
type StreamVAD struct {
	vad        *VAD
	sampleRate int
	frameMs    int // 帧长度（毫秒）

	buffer     []byte // 缓冲区
	frameSize  int    // 单帧字节数
	segments   []VoiceSegment
	totalBytes int64 // 已处理的总字节数
}

// VoiceSegment 语音片段
type VoiceSegment struct {
	Start    time.Duration // 开始时间
	End      time.Duration // 结束时间
	IsSpeech bool          // 是否为语音
}

// NewStreamVAD 创建流式VAD处理器
//
// 参数:
//   - mode: VAD模式（0-3）
//   - sampleRate: 采样率（8000, 16000, 32000, 48000）
//   - frameMs: 帧长度（毫秒，10/20/30）
//
// 返回:
//   - *StreamVAD: 流式VAD实例
//   - error: 错误信息
func NewStreamVAD(mode int, sampleRate int, frameMs int) (*StreamVAD, error) {
	// 验证参数
	if !isValidSampleRate(sampleRate) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if frameMs != 10 && frameMs != 20 && frameMs != 30 {
		return nil, fmt.Errorf("%w: %dms", ErrInvalidFrameLength, frameMs)
	}

	// 创建VAD实例
	vad, err := New(mode)
	if err != nil {
		return nil, err
	}

	// 计算帧大小（字节）
	frameSize := sampleRate * frameMs / 1000 * 2 // 16位 = 2字节

	return &StreamVAD{
		vad:        vad,
		sampleRate: sampleRate,
		frameMs:    frameMs,
		buffer:     make([]byte, 0, frameSize*2),
		frameSize:  frameSize,
		segments:   make([]VoiceSegment, 0, 100),
		totalBytes: 0,
	}, nil
}

// Write 写入音频数据，返回新检测到的语音片段
//
// 参数:
//   - data: 音频数据（16位PCM，小端序）
//
// 返回:
//   - []VoiceSegment: 新检测到的语音片段
//   - error: 错误信息
func (s *StreamVAD) Write(data []byte) ([]VoiceSegment, error) {
	s.buffer = append(s.buffer, data...)

	var newSegments []VoiceSegment

	for len(s.buffer) >= s.frameSize {
		frame := s.buffer[:s.frameSize]

		isSpeech, err := s.vad.IsSpeech(frame, s.sampleRate)
		if err != nil {
			return nil, err
		}

		startTime := s.bytesToDuration(s.totalBytes)
		s.totalBytes += int64(s.frameSize)
		endTime := s.bytesToDuration(s.totalBytes)

		if added, ok := s.extendOrAppend(isSpeech, endTime, VoiceSegment{Start: startTime, End: endTime, IsSpeech: isSpeech}); ok {
			newSegments = append(newSegments, added)
		}

		s.buffer = s.buffer[s.frameSize:]
	}

	return newSegments, nil
}

// extendOrAppend 把一帧的判决结果并入片段列表：和最后一个片段同类型就原地
// 延长其End时间戳，否则追加为新片段。返回的bool表示是否产生了一个新片段
// （调用方只需要把真正新增的片段报告给Write的调用者，延长的片段不算新增）
func (s *StreamVAD) extendOrAppend(isSpeech bool, endTime time.Duration, segment VoiceSegment) (VoiceSegment, bool) {
	if len(s.segments) > 0 {
		last := &s.segments[len(s.segments)-1]
		if last.IsSpeech == isSpeech {
			last.End = endTime
			return VoiceSegment{}, false
		}
	}

	s.segments = append(s.segments, segment)
	return segment, true
}

// GetSegments 获取所有语音片段
func (s *StreamVAD) GetSegments() []VoiceSegment {
	return s.segments
}

// Reset 重置流式VAD状态
func (s *StreamVAD) Reset() error {
	s.buffer = s.buffer[:0]
	s.segments = s.segments[:0]
	s.totalBytes = 0

	// 重新初始化VAD实例
	if err := initCore(s.vad.inst); err != nil {
		return err
	}

	return nil
}

// bytesToDuration 将字节数转换为时长
func (s *StreamVAD) bytesToDuration(bytes int64) time.Duration {
	// 字节 -> 样本 -> 秒 -> Duration
	samples := bytes / 2 // 16位 = 2字节
	seconds := float64(samples) / float64(s.sampleRate)
	return time.Duration(seconds * float64(time.Second))
}

// GetBufferSize 获取当前缓冲区大小（字节）
func (s *StreamVAD) GetBufferSize() int {
	return len(s.buffer)
}

// GetTotalProcessed 获取已处理的总字节数
func (s *StreamVAD) GetTotalProcessed() int64 {
	return s.totalBytes
}

// GetTotalDuration 获取已处理的总时长
func (s *StreamVAD) GetTotalDuration() time.Duration {
	return s.bytesToDuration(s.totalBytes)
}

// filterSegments 返回IsSpeech等于want的片段子集
func (s *StreamVAD) filterSegments(want bool) []VoiceSegment {
	var out []VoiceSegment
	for _, seg := range s.segments {
		if seg.IsSpeech == want {
			out = append(out, seg)
		}
	}
	return out
}

// FilterSpeechSegments 过滤出语音片段
func (s *StreamVAD) FilterSpeechSegments() []VoiceSegment {
	return s.filterSegments(true)
}

// FilterSilenceSegments 过滤出静音片段
func (s *StreamVAD) FilterSilenceSegments() []VoiceSegment {
	return s.filterSegments(false)
}
