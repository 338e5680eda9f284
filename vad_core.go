package vad

import (
	"fmt"
)

const (
	// kNumChannels 频带数量
	kNumChannels = 6
	// kNumGaussians 每个频带的高斯分布数量
	kNumGaussians = 2
	// kTableSize 查找表大小
	kTableSize = kNumChannels * kNumGaussians
	// kMinEnergy 触发音频信号的最小能量
	kMinEnergy = 10
	// kInitCheck 初始化检查标志
	kInitCheck = 42
	// kDefaultMode 默认激进度模式
	kDefaultMode = 0
	// kMaxSpeechFrames 最大连续语音帧数
	kMaxSpeechFrames = 6
	// kMinStd 最小标准差
	kMinStd = 384
)

// 频谱权重
var kSpectrumWeight = [kNumChannels]int16{6, 8, 10, 12, 14, 16}

// 噪声和语音更新常量（Q15定点数）
const (
	kNoiseUpdateConst  = 655  // Q15
	kSpeechUpdateConst = 6554 // Q15
	kBackEta           = 154  // Q8
)

// 两个模型之间的最小差异（Q5定点数）
var kMinimumDifference = [kNumChannels]int16{544, 544, 576, 576, 576, 576}

// 语音模型均值的上限（Q7定点数）
var kMaximumSpeech = [kNumChannels]int16{11392, 11392, 11520, 11520, 11520, 11520}

// 均值的最小值
var kMinimumMean = [kNumGaussians]int16{640, 768}

// 噪声模型均值的上限（Q7定点数）
var kMaximumNoise = [kNumChannels]int16{9216, 9088, 8960, 8832, 8704, 8576}

// 噪声的两个高斯权重
var kNoiseDataWeights = [kTableSize]int16{
	34, 62, 72, 66, 53, 25, 94, 66, 56, 62, 75, 103,
}

// 语音的两个高斯权重
var kSpeechDataWeights = [kTableSize]int16{
	48, 82, 45, 87, 50, 47, 80, 46, 83, 41, 78, 81,
}

// 噪声的两个高斯均值（Q7定点数）
var kNoiseDataMeans = [kTableSize]int16{
	6738, 4892, 7065, 6715, 6771, 3369, 7646, 3863, 7820, 7266, 5020, 4362,
}

// 语音的两个高斯均值（Q7定点数）
var kSpeechDataMeans = [kTableSize]int16{
	8306, 10085, 10078, 11823, 11843, 6309, 9473, 9571, 10879, 7581, 8180, 7483,
}

// 噪声的两个高斯标准差（Q7定点数）
var kNoiseDataStds = [kTableSize]int16{
	378, 1064, 493, 582, 688, 593, 474, 697, 475, 688, 421, 455,
}

// 语音的两个高斯标准差（Q7定点数）
var kSpeechDataStds = [kTableSize]int16{
	555, 505, 567, 524, 585, 1231, 509, 828, 492, 1540, 1079, 850,
}

// vadModeParams 把一种激进度模式下10/20/30ms帧长对应的全部门限值打包，
// 这样setModeCore只需一次数组拷贝，新增模式也只需在modeTable追加一行
type vadModeParams struct {
	overHangMax1 [3]int16
	overHangMax2 [3]int16
	individual   [3]int16
	total        [3]int16
}

// modeTable 按mode索引（0=质量, 1=低比特率, 2=激进, 3=非常激进）
var modeTable = [4]vadModeParams{
	{ // 质量模式
		overHangMax1: [3]int16{8, 4, 3},
		overHangMax2: [3]int16{14, 7, 5},
		individual:   [3]int16{24, 21, 24},
		total:        [3]int16{57, 48, 57},
	},
	{ // 低比特率模式
		overHangMax1: [3]int16{8, 4, 3},
		overHangMax2: [3]int16{14, 7, 5},
		individual:   [3]int16{37, 32, 37},
		total:        [3]int16{100, 80, 100},
	},
	{ // 激进模式
		overHangMax1: [3]int16{6, 3, 2},
		overHangMax2: [3]int16{9, 5, 3},
		individual:   [3]int16{82, 78, 82},
		total:        [3]int16{285, 260, 285},
	},
	{ // 非常激进模式
		overHangMax1: [3]int16{6, 3, 2},
		overHangMax2: [3]int16{9, 5, 3},
		individual:   [3]int16{94, 94, 94},
		total:        [3]int16{1100, 1050, 1100},
	},
}

// vadInst VAD实例结构
type vadInst struct {
	vad                      int
	downsamplingFilterStates [4]int32
	state48To8               state48khzTo8khzFull
	noiseMeans               [kTableSize]int16
	speechMeans              [kTableSize]int16
	noiseStds                [kTableSize]int16
	speechStds               [kTableSize]int16
	frameCounter             int32
	overHang                 int16
	numOfSpeech              int16
	indexVector              [16 * kNumChannels]int16
	lowValueVector           [16 * kNumChannels]Q4
	meanValue                [kNumChannels]Q4
	upperState               [5]int16
	lowerState               [5]int16
	hpFilterState            [4]int16
	overHangMax1             [3]int16
	overHangMax2             [3]int16
	individual               [3]int16
	total                    [3]int16
	initFlag                 int
}

// createVadInst 创建VAD实例
func createVadInst() *vadInst {
	return &vadInst{initFlag: 0}
}

// initCore 初始化VAD核心组件
func initCore(self *vadInst) error {
	if self == nil {
		return fmt.Errorf("%w: nil instance", ErrNotInitialized)
	}

	self.vad = 1 // 默认语音激活
	self.frameCounter = 0
	self.overHang = 0
	self.numOfSpeech = 0

	clear(self.downsamplingFilterStates[:])
	resetResample48khzTo8khzFull(&self.state48To8)

	// 读取初始PDF参数
	copy(self.noiseMeans[:], kNoiseDataMeans[:])
	copy(self.speechMeans[:], kSpeechDataMeans[:])
	copy(self.noiseStds[:], kNoiseDataStds[:])
	copy(self.speechStds[:], kSpeechDataStds[:])

	// 初始化索引和最小值向量
	for i := range self.lowValueVector {
		self.lowValueVector[i] = 10000
		self.indexVector[i] = 0
	}

	clear(self.upperState[:])
	clear(self.lowerState[:])
	clear(self.hpFilterState[:])

	// 初始化均值内存（用于findMinimum）
	for i := range self.meanValue {
		self.meanValue[i] = Q4(1600)
	}

	if err := setModeCore(self, kDefaultMode); err != nil {
		return err
	}

	self.initFlag = kInitCheck

	return nil
}

// setModeCore 设置激进度模式
func setModeCore(self *vadInst, mode int) error {
	if mode < 0 || mode >= len(modeTable) {
		return fmt.Errorf("%w: got %d", ErrInvalidMode, mode)
	}

	params := modeTable[mode]
	self.overHangMax1 = params.overHangMax1
	self.overHangMax2 = params.overHangMax2
	self.individual = params.individual
	self.total = params.total

	return nil
}

// process 处理音频帧并返回VAD决策
func process(inst *vadInst, fs int, audioFrame []int16) (int, error) {
	if inst == nil {
		return -1, ErrNotInitialized
	}

	if inst.initFlag != kInitCheck {
		return -1, ErrNotInitialized
	}

	if len(audioFrame) == 0 {
		return -1, fmt.Errorf("%w: empty audio frame", ErrInvalidFrameLength)
	}

	frameLength := len(audioFrame)
	if !ValidRateAndFrameLength(fs, frameLength) {
		return -1, fmt.Errorf("%w: rate %d, frame length %d", ErrInvalidFrameLength, fs, frameLength)
	}

	var (
		vad int
		err error
	)

	switch fs {
	case 48000:
		vad, err = calcVad48khz(inst, audioFrame, frameLength)
	case 32000:
		vad, err = calcVad32khz(inst, audioFrame, frameLength)
	case 16000:
		vad, err = calcVad16khz(inst, audioFrame, frameLength)
	case 8000:
		vad, err = calcVad8khz(inst, audioFrame, frameLength)
	default:
		return -1, fmt.Errorf("%w: %d Hz", ErrInvalidSampleRate, fs)
	}

	if err != nil {
		return -1, err
	}

	// 将VAD值归一化为0或1
	if vad > 0 {
		vad = 1
	}

	return vad, nil
}
