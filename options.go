package vad

// options.go 提供基于选项模式的VAD配置，让构造方式在保持一份默认配置的
// 同时可以按需覆盖单个字段

// Option VAD配置选项函数类型
type Option func(*VAD) error

// WithMode 设置VAD激进度模式
//
// 参数:
//   - mode: 激进度模式（0-3）
//   - 0: 质量模式（最不激进）
//   - 1: 低比特率模式
//   - 2: 激进模式
//   - 3: 非常激进模式
func WithMode(mode int) Option {
	return func(d *VAD) error {
		return d.SetMode(mode)
	}
}

// NewWithOptions 使用选项模式创建VAD实例
//
// 示例:
//
//	d, err := vad.NewWithOptions(
//	    vad.WithMode(2),
//	)
func NewWithOptions(opts ...Option) (*VAD, error) {
	detector, err := New(kDefaultMode)
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(detector); err != nil {
			return nil, err
		}
	}

	return detector, nil
}

// StreamVADOption StreamVAD配置选项函数类型
type StreamVADOption func(*streamVADConfig) error

// streamVADConfig StreamVAD内部配置
type streamVADConfig struct {
	mode       int
	sampleRate int
	frameMs    int
}

// WithStreamMode 设置StreamVAD的激进度模式
func WithStreamMode(mode int) StreamVADOption {
	return func(cfg *streamVADConfig) error {
		if mode < 0 || mode > 3 {
			return ErrInvalidMode
		}
		cfg.mode = mode
		return nil
	}
}

// WithSampleRate 设置StreamVAD的采样率
func WithSampleRate(rate int) StreamVADOption {
	return func(cfg *streamVADConfig) error {
		if !isValidSampleRate(rate) {
			return ErrInvalidSampleRate
		}
		cfg.sampleRate = rate
		return nil
	}
}

// WithFrameDuration 设置StreamVAD的帧长度（毫秒）
func WithFrameDuration(ms int) StreamVADOption {
	return func(cfg *streamVADConfig) error {
		if ms != 10 && ms != 20 && ms != 30 {
			return ErrInvalidFrameLength
		}
		cfg.frameMs = ms
		return nil
	}
}

// NewStreamVADWithOptions 使用选项模式创建StreamVAD，默认配置为streamVADDefaults
//
// 示例:
//
//	svad, err := vad.NewStreamVADWithOptions(
//	    vad.WithStreamMode(2),
//	    vad.WithSampleRate(16000),
//	    vad.WithFrameDuration(20),
//	)
func NewStreamVADWithOptions(opts ...StreamVADOption) (*StreamVAD, error) {
	cfg := streamVADDefaults

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return NewStreamVAD(cfg.mode, cfg.sampleRate, cfg.frameMs)
}

// streamVADDefaults 是NewStreamVADWithOptions在没有任何Option时使用的配置
var streamVADDefaults = streamVADConfig{
	mode:       1,     // 低比特率模式
	sampleRate: 16000, // 16kHz
	frameMs:    20,    // 20ms
}

// vadPreset 把一组(mode)参数和一个名字绑在一起，供下面的预设表驱动
type vadPreset struct {
	name string
	mode int
}

// vadPresets 按名字索引的VAD预设，DefaultVAD/AggressiveVAD都是对这张表的查询，
// 而不是各自手写一遍New(...)调用
var vadPresets = map[string]vadPreset{
	"default":    {name: "default", mode: 0},
	"aggressive": {name: "aggressive", mode: 3},
}

// newPresetVAD 按名字在vadPresets中查找并构造VAD；名字必须存在于表中，
// 调用方（本文件内的预设构造器）保证这一点，所以这里不返回"unknown preset"错误
func newPresetVAD(name string) (*VAD, error) {
	return New(vadPresets[name].mode)
}

// DefaultVAD 创建默认配置的VAD（mode=0，质量模式）
func DefaultVAD() (*VAD, error) {
	return newPresetVAD("default")
}

// AggressiveVAD 创建激进模式的VAD（mode=3）
func AggressiveVAD() (*VAD, error) {
	return newPresetVAD("aggressive")
}

// streamPreset 是一个完整的StreamVAD预设：激进度、采样率、帧长
type streamPreset struct {
	mode       int
	sampleRate int
	frameMs    int
}

// streamPresets 按用途命名的StreamVAD预设表
var streamPresets = map[string]streamPreset{
	"default":     {mode: 1, sampleRate: 16000, frameMs: 20},
	"realtime":    {mode: 2, sampleRate: 16000, frameMs: 10}, // 低延迟
	"highquality": {mode: 0, sampleRate: 48000, frameMs: 30}, // 高质量，低激进度
}

func newPresetStreamVAD(name string) (*StreamVAD, error) {
	p := streamPresets[name]
	return NewStreamVAD(p.mode, p.sampleRate, p.frameMs)
}

// DefaultStreamVAD 创建默认配置的StreamVAD（mode=1，16kHz，20ms）
func DefaultStreamVAD() (*StreamVAD, error) {
	return newPresetStreamVAD("default")
}

// RealtimeStreamVAD 创建适合实时处理的StreamVAD（mode=2，16kHz，10ms）
func RealtimeStreamVAD() (*StreamVAD, error) {
	return newPresetStreamVAD("realtime")
}

// HighQualityStreamVAD 创建高质量StreamVAD（mode=0，48kHz，30ms）
func HighQualityStreamVAD() (*StreamVAD, error) {
	return newPresetStreamVAD("highquality")
}
