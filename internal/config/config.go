// Package config 加载VAD运行参数预设（激进度模式、采样率、帧时长）
//
// 预设以YAML描述，供CLI和StreamVAD构造器使用；它只选择构造参数，
// 从不直接触碰VAD核心状态。
package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// validSampleRates 是VAD支持的采样率集合
var validSampleRates = map[int]bool{8000: true, 16000: true, 32000: true, 48000: true}

// validFrameMs 是VAD支持的帧时长（毫秒）集合
var validFrameMs = map[int]bool{10: true, 20: true, 30: true}

// Preset 描述一组VAD运行参数
type Preset struct {
	Name            string `yaml:"name"`
	Mode            int    `yaml:"mode"`
	SampleRate      int    `yaml:"sample_rate"`
	FrameDurationMs int    `yaml:"frame_duration_ms"`
}

// presetFile 是YAML文档的顶层结构
type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// Validate 检查预设的各字段是否落在VAD支持的范围内
func (p Preset) Validate() error {
	if p.Mode < 0 || p.Mode > 3 {
		return fmt.Errorf("preset %q: mode must be 0-3, got %d", p.Name, p.Mode)
	}
	if !validSampleRates[p.SampleRate] {
		return fmt.Errorf("preset %q: sample rate must be 8000, 16000, 32000 or 48000, got %d", p.Name, p.SampleRate)
	}
	if !validFrameMs[p.FrameDurationMs] {
		return fmt.Errorf("preset %q: frame duration must be 10, 20 or 30 ms, got %d", p.Name, p.FrameDurationMs)
	}
	return nil
}

// FrameLength 返回该预设下每帧的样本数
func (p Preset) FrameLength() int {
	return p.SampleRate * p.FrameDurationMs / 1000
}

// LoadPresets 从r读取YAML格式的预设列表，逐条校验后返回
func LoadPresets(r io.Reader) ([]Preset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}

	var doc presetFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}

	for _, p := range doc.Presets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	return doc.Presets, nil
}

// DefaultPresets 返回四种激进度模式在16kHz/20ms下的预设
func DefaultPresets() []Preset {
	return []Preset{
		{Name: "quality", Mode: 0, SampleRate: 16000, FrameDurationMs: 20},
		{Name: "low-bitrate", Mode: 1, SampleRate: 16000, FrameDurationMs: 20},
		{Name: "aggressive", Mode: 2, SampleRate: 16000, FrameDurationMs: 20},
		{Name: "very-aggressive", Mode: 3, SampleRate: 16000, FrameDurationMs: 20},
	}
}

// Find 按名称在预设列表中查找，找不到时返回ok=false
func Find(presets []Preset, name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
