package vad

// vad_sp.go 包含VAD核心使用的特定信号处理工具：2倍降采样与滑动最小值跟踪

// 全通滤波器系数，上部和下部，Q13定点数
// Upper: 0.64, Lower: 0.17
var kAllPassCoefsQ13 = [2]int16{5243, 1392}

// 平滑系数
const (
	kSmoothingDown = 6553  // 0.2，Q15定点数
	kSmoothingUp   = 32439 // 0.99，Q15定点数
)

// downsampling 基于全通滤波器对的2倍降采样（例如 32kHz->16kHz 或 16kHz->8kHz）
//
// 参数：
//   - signalIn：输入信号
//   - signalOut：降采样后的信号，长度 inLength/2
//   - filterState：两个全通滤波器的状态（长度2），处理完成后原地更新
//   - inLength：输入信号的长度（样本数）
func downsampling(signalIn, signalOut []int16, filterState []int32, inLength int) {
	var (
		branchA, branchB int16
		stateA           = filterState[0]
		stateB           = filterState[1]
		halfLength       = inLength >> 1
	)

	for n := 0; n < halfLength; n++ {
		// 上分支：偶数索引样本
		branchA = int16((stateA >> 1) +
			((int32(kAllPassCoefsQ13[0]) * int32(signalIn[n*2])) >> 14))
		signalOut[n] = branchA
		stateA = int32(signalIn[n*2]) -
			((int32(kAllPassCoefsQ13[0]) * int32(branchA)) >> 12)

		// 下分支：奇数索引样本
		branchB = int16((stateB >> 1) +
			((int32(kAllPassCoefsQ13[1]) * int32(signalIn[n*2+1])) >> 14))
		signalOut[n] += branchB
		stateB = int32(signalIn[n*2+1]) -
			((int32(kAllPassCoefsQ13[1]) * int32(branchB)) >> 12)
	}

	filterState[0] = stateA
	filterState[1] = stateB
}

// findMinimum 把featureValue插入某个频道最近100帧内16个最小值的窗口
// （如果它够资格），然后返回平滑后的移动窗口最小值
//
// 参数：
//   - self：VAD状态（indexVector/lowValueVector/meanValue原地更新）
//   - featureValue：该频道本帧的特征值，Q4格式
//   - channel：频道编号
//
// 返回：平滑后的窗口最小值，Q4格式
func findMinimum(self *vadInst, featureValue Q4, channel int) Q4 {
	offset := channel << 4 // 该频道16个最小值在内存中的起始偏移
	age := self.indexVector[offset : offset+16]
	smallestValues := self.lowValueVector[offset : offset+16]

	// 窗口中的每个值都老了一轮；淘汰超过100帧的条目
	for i := 0; i < 16; i++ {
		if age[i] != 100 {
			age[i]++
			continue
		}
		for j := i; j < 15; j++ {
			smallestValues[j] = smallestValues[j+1]
			age[j] = age[j+1]
		}
		age[15] = 101
		smallestValues[15] = 10000
	}

	// 用16路二分比较定位featureValue在有序窗口中的插入位置
	position := -1
	switch {
	case featureValue < smallestValues[7]:
		switch {
		case featureValue < smallestValues[3]:
			switch {
			case featureValue < smallestValues[1]:
				if featureValue < smallestValues[0] {
					position = 0
				} else {
					position = 1
				}
			case featureValue < smallestValues[2]:
				position = 2
			default:
				position = 3
			}
		case featureValue < smallestValues[5]:
			if featureValue < smallestValues[4] {
				position = 4
			} else {
				position = 5
			}
		case featureValue < smallestValues[6]:
			position = 6
		default:
			position = 7
		}
	case featureValue < smallestValues[15]:
		switch {
		case featureValue < smallestValues[11]:
			switch {
			case featureValue < smallestValues[9]:
				if featureValue < smallestValues[8] {
					position = 8
				} else {
					position = 9
				}
			case featureValue < smallestValues[10]:
				position = 10
			default:
				position = 11
			}
		case featureValue < smallestValues[13]:
			if featureValue < smallestValues[12] {
				position = 12
			} else {
				position = 13
			}
		case featureValue < smallestValues[14]:
			position = 14
		default:
			position = 15
		}
	}

	// 新的小值：插入到position，把更大的值整体上移一格
	if position > -1 {
		for i := 15; i > position; i-- {
			smallestValues[i] = smallestValues[i-1]
			age[i] = age[i-1]
		}
		smallestValues[position] = featureValue
		age[position] = 1
	}

	var currentMedian Q4 = 1600
	if self.frameCounter > 2 {
		currentMedian = smallestValues[2]
	} else if self.frameCounter > 0 {
		currentMedian = smallestValues[0]
	}

	// 平滑中位数值
	var alpha int32
	if self.frameCounter > 0 {
		if currentMedian < self.meanValue[channel] {
			alpha = kSmoothingDown // 0.2，Q15定点数
		} else {
			alpha = kSmoothingUp // 0.99，Q15定点数
		}
	}

	acc := (alpha + 1) * int32(self.meanValue[channel])
	acc += (int32(maxInt16) - alpha) * int32(currentMedian)
	acc += 16384
	self.meanValue[channel] = Q4(acc >> 15)

	return self.meanValue[channel]
}
