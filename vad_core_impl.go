package vad

// vad_core_impl.go 按采样率分派到8kHz判决路径，并实现GMM假设检验与在线模型更新

// calcVad8khz 计算8kHz音频的VAD
func calcVad8khz(inst *vadInst, speechFrame []int16, frameLength int) (int, error) {
	featureVector := make([]Q4, kNumChannels)

	totalPower := calculateFeatures(inst, speechFrame, frameLength, featureVector)
	inst.vad = int(gmmProbability(inst, featureVector, totalPower, frameLength))

	return inst.vad, nil
}

// calcVad16khz 计算16kHz音频的VAD
func calcVad16khz(inst *vadInst, speechFrame []int16, frameLength int) (int, error) {
	speechNB := make([]int16, 240) // 降采样后的语音帧：最多240样本（30ms宽带）

	downsampling(speechFrame, speechNB, inst.downsamplingFilterStates[:], frameLength)
	length := frameLength / 2

	return calcVad8khz(inst, speechNB, length)
}

// calcVad32khz 计算32kHz音频的VAD
func calcVad32khz(inst *vadInst, speechFrame []int16, frameLength int) (int, error) {
	speechWB := make([]int16, 480) // 降采样后的语音帧：最多480样本（30ms超宽带）
	speechNB := make([]int16, 240) // 降采样后的语音帧：最多240样本（30ms宽带）

	// 降采样信号 32->16->8 然后执行VAD
	downsampling(speechFrame, speechWB, inst.downsamplingFilterStates[2:], frameLength)
	length := frameLength / 2

	downsampling(speechWB, speechNB, inst.downsamplingFilterStates[:], length)
	length /= 2

	return calcVad8khz(inst, speechNB, length)
}

// calcVad48khz 计算48kHz音频的VAD
func calcVad48khz(inst *vadInst, speechFrame []int16, frameLength int) (int, error) {
	const (
		kFrameLen10ms48khz = 480
		kFrameLen10ms8khz  = 80
	)

	speechNB := make([]int16, 240) // 30ms的8kHz数据
	tmpMem := make([]int32, 480+256)

	num10msFrames := frameLength / kFrameLen10ms48khz

	for i := 0; i < num10msFrames; i++ {
		startIdx := i * kFrameLen10ms48khz
		endIdx := startIdx + kFrameLen10ms48khz
		outStartIdx := i * kFrameLen10ms8khz

		resample48khzTo8khzFull(
			speechFrame[startIdx:endIdx],
			speechNB[outStartIdx:outStartIdx+kFrameLen10ms8khz],
			&inst.state48To8,
			tmpMem,
		)
	}

	return calcVad8khz(inst, speechNB, frameLength/6)
}

// weightedAverage 计算加权平均值，data被加上offset后再参与加权
func weightedAverage(data []int16, offset int16, weights []int16) int32 {
	var total int32

	for k := 0; k < kNumGaussians; k++ {
		idx := k * kNumChannels
		data[idx] += offset
		total += int32(data[idx]) * int32(weights[idx])
	}

	return total
}

// overflowingMulS16ByS32ToS32 允许溢出的乘法（保持与原始C实现的回绕行为一致）
func overflowingMulS16ByS32ToS32(a int16, b int32) int32 {
	return int32(a) * b
}

// channelThresholds 是某个帧长度（10/20/30ms）对应的全部判决门限
type channelThresholds struct {
	overhead1      int16
	overhead2      int16
	individualTest int16
	totalTest      int16
}

// thresholdsForFrameLength 按帧长度（80/160/240样本）选出对应的门限组
func thresholdsForFrameLength(self *vadInst, frameLength int) channelThresholds {
	idx := 2
	switch frameLength {
	case 80:
		idx = 0
	case 160:
		idx = 1
	}

	return channelThresholds{
		overhead1:      self.overHangMax1[idx],
		overhead2:      self.overHangMax2[idx],
		individualTest: self.individual[idx],
		totalTest:      self.total[idx],
	}
}

// channelEvidence 收集evaluateChannels对每个频道/高斯求值后的中间结果，
// updateModels据此在线更新噪声/语音模型
type channelEvidence struct {
	sumLogLikelihoodRatio int32
	vadflag               int16
	ngprvec               [kTableSize]int16 // 噪声条件概率，Q14
	sgprvec               [kTableSize]int16 // 语音条件概率，Q14
	deltaN                [kTableSize]Q11
	deltaS                [kTableSize]Q11
}

// evaluateChannels 对每个频道执行局部+全局似然比检验，产出vadflag草案
// 以及后续模型更新所需的条件概率向量
func evaluateChannels(self *vadInst, features []Q4, thresholds channelThresholds) channelEvidence {
	var ev channelEvidence

	for channel := 0; channel < kNumChannels; channel++ {
		var (
			h0Test, h1Test                     int32
			noiseProbability, speechProbability [kNumGaussians]int32
		)

		for k := 0; k < kNumGaussians; k++ {
			gaussian := channel + k*kNumChannels

			// H0：帧是噪声的概率，Q27 = Q7 * Q20
			probN, deltaN := gaussianProbability(features[channel], Q7(self.noiseMeans[gaussian]), Q7(self.noiseStds[gaussian]))
			ev.deltaN[gaussian] = deltaN
			noiseProbability[k] = int32(kNoiseDataWeights[gaussian]) * int32(probN)
			h0Test += noiseProbability[k]

			// H1：帧是语音的概率，Q27 = Q7 * Q20
			probS, deltaS := gaussianProbability(features[channel], Q7(self.speechMeans[gaussian]), Q7(self.speechStds[gaussian]))
			ev.deltaS[gaussian] = deltaS
			speechProbability[k] = int32(kSpeechDataWeights[gaussian]) * int32(probS)
			h1Test += speechProbability[k]
		}

		// log2(Pr{X|H1} / Pr{X|H0}) ≈ shiftsH0 - shiftsH1
		shiftsH0 := leadingZeroNorm32(h0Test)
		shiftsH1 := leadingZeroNorm32(h1Test)
		if h0Test == 0 {
			shiftsH0 = 31
		}
		if h1Test == 0 {
			shiftsH1 = 31
		}
		logLikelihoodRatio := shiftsH0 - shiftsH1

		ev.sumLogLikelihoodRatio += int32(logLikelihoodRatio) * int32(kSpectrumWeight[channel])

		if (logLikelihoodRatio * 4) > thresholds.individualTest {
			ev.vadflag = 1
		}

		// 局部噪声条件概率（供updateModels使用）
		h0 := int16(h0Test >> 12) // Q15
		if h0 > 0 {
			scaled := int32(uint32(noiseProbability[0])&0xFFFFF000) << 2 // Q29
			ev.ngprvec[channel] = int16(divRound32By16(scaled, h0))      // Q14
			ev.ngprvec[channel+kNumChannels] = 16384 - ev.ngprvec[channel]
		} else {
			ev.ngprvec[channel] = 16384
		}

		// 局部语音条件概率（供updateModels使用）
		h1 := int16(h1Test >> 12) // Q15
		if h1 > 0 {
			scaled := int32(uint32(speechProbability[0])&0xFFFFF000) << 2 // Q29
			ev.sgprvec[channel] = int16(divRound32By16(scaled, h1))       // Q14
			ev.sgprvec[channel+kNumChannels] = 16384 - ev.sgprvec[channel]
		}
	}

	if ev.sumLogLikelihoodRatio >= int32(thresholds.totalTest) {
		ev.vadflag = 1
	}

	return ev
}

// updateModels 在线更新噪声/语音GMM的均值与标准差，并在两个模型靠得太近时分离它们
//
// maxspe携带的是"上一个频道"的语音均值上限（初始12800），而每个频道自己的
// 漂移钳制用的是kMaximumSpeech[channel]——两者错开一轮，和原始实现一致
func updateModels(self *vadInst, features []Q4, ev channelEvidence) {
	maxspe := int16(12800)

	for channel := 0; channel < kNumChannels; channel++ {
		// 过去窗口内的最小值，用于长期噪声均值修正，Q4格式
		featureMinimum := findMinimum(self, features[channel], channel)

		noiseGlobalMean := weightedAverage(self.noiseMeans[channel:], 0, kNoiseDataWeights[channel:])
		tmp1S16 := int16(noiseGlobalMean >> 6) // Q8

		for k := 0; k < kNumGaussians; k++ {
			gaussian := channel + k*kNumChannels

			nmk := self.noiseMeans[gaussian]
			smk := self.speechMeans[gaussian]
			nsk := self.noiseStds[gaussian]
			ssk := self.speechStds[gaussian]

			// 如果帧只包含噪声，更新噪声均值向量
			nmk2 := nmk
			if ev.vadflag == 0 {
				// delt = (Q14 * Q11) >> 11 = Q14
				delt := int16((int32(ev.ngprvec[gaussian]) * int32(ev.deltaN[gaussian])) >> 11)
				// Q7 + (Q14 * Q15 >> 22) = Q7
				nmk2 = nmk + int16((int32(delt)*kNoiseUpdateConst)>>22)
			}

			// 噪声均值的长期修正，Q8 - Q8 = Q8
			ndelt := (int16(featureMinimum) << 4) - tmp1S16
			// Q7 + (Q8 * Q8) >> 9 = Q7
			nmk3 := nmk2 + int16((int32(ndelt)*kBackEta)>>9)

			// 控制噪声均值不要漂移太多
			lowerBound := int16((k + 5) << 7)
			upperBound := int16((72 + k - channel) << 7)
			self.noiseMeans[gaussian] = Clamp(nmk3, lowerBound, upperBound)

			if ev.vadflag != 0 {
				updateSpeechGaussian(self, gaussian, k, features[channel], smk, ssk, ev, maxspe)
			} else {
				updateNoiseVariance(self, gaussian, features[channel], nmk, nsk, ev)
			}
		}

		rebalanceChannel(self, channel, kMaximumSpeech[channel])
		maxspe = kMaximumSpeech[channel]
	}

	self.frameCounter++
}

// updateSpeechGaussian 更新单个高斯分量的语音均值/标准差（仅在vadflag==1时调用）
func updateSpeechGaussian(self *vadInst, gaussian, k int, feature Q4, smk, ssk int16, ev channelEvidence, maxspe int16) {
	// (Q14 * Q11) >> 11 = Q14
	delt := int16((int32(ev.sgprvec[gaussian]) * int32(ev.deltaS[gaussian])) >> 11)
	// Q14 * Q15 >> 21 = Q8
	tmpS16 := int16((int32(delt) * kSpeechUpdateConst) >> 21)
	// Q7 + (Q8 >> 1) = Q7，带舍入
	smk2 := smk + ((tmpS16 + 1) >> 1)

	// 控制语音均值不要漂移太多
	maxmu := maxspe + 640
	smk2 = Clamp(smk2, kMinimumMean[k], maxmu)
	self.speechMeans[gaussian] = smk2 // Q7

	// (Q7 >> 3) = Q4，带舍入
	tmpS16 = (smk + 4) >> 3
	tmpS16 = int16(feature) - tmpS16 // Q4
	// (Q11 * Q4 >> 3) = Q12
	tmp1S32 := (int32(ev.deltaS[gaussian]) * int32(tmpS16)) >> 3
	tmp2S32 := tmp1S32 - 4096
	tmpS16 = ev.sgprvec[gaussian] >> 2
	// (Q14 >> 2) * Q12 = Q24
	tmp1S32 = int32(tmpS16) * tmp2S32
	tmp2S32 = tmp1S32 >> 4 // Q20

	// 0.1 * Q20 / Q7 = Q13
	if tmp2S32 > 0 {
		tmpS16 = int16(divRound32By16(tmp2S32, ssk*10))
	} else {
		tmpS16 = int16(divRound32By16(-tmp2S32, ssk*10))
		tmpS16 = -tmpS16
	}
	// 除以4等价于右移2位，更新因子实际为0.025 (= 0.1 / 4)
	// (Q13 >> 8) = (Q13 >> 6) / 4 = Q7
	tmpS16 += 128 // 舍入
	ssk += tmpS16 >> 8
	ssk = Max(ssk, kMinStd)
	self.speechStds[gaussian] = ssk
}

// updateNoiseVariance 更新单个高斯分量的噪声标准差（仅在vadflag==0时调用）
func updateNoiseVariance(self *vadInst, gaussian int, feature Q4, nmk, nsk int16, ev channelEvidence) {
	// Q4 - (Q7 >> 3) = Q4
	tmpS16 := int16(feature) - (nmk >> 3)
	// (Q11 * Q4 >> 3) = Q12
	tmp1S32 := (int32(ev.deltaN[gaussian]) * int32(tmpS16)) >> 3
	tmp1S32 -= 4096

	// (Q14 >> 2) * Q12 = Q24
	tmpS16 = (ev.ngprvec[gaussian] + 2) >> 2
	tmp2S32 := overflowingMulS16ByS32ToS32(tmpS16, tmp1S32)
	// Q20 * 约0.001 (2^-10)，(Q24 >> 14) = (Q24 >> 4) / 2^10 = Q20
	tmp1S32 = tmp2S32 >> 14

	// Q20 / Q7 = Q13
	if tmp1S32 > 0 {
		tmpS16 = int16(divRound32By16(tmp1S32, nsk))
	} else {
		tmpS16 = int16(divRound32By16(-tmp1S32, nsk))
		tmpS16 = -tmpS16
	}
	tmpS16 += 32       // 舍入
	nsk += tmpS16 >> 6 // Q13 >> 6 = Q7
	nsk = Max(nsk, kMinStd)
	self.noiseStds[gaussian] = nsk
}

// rebalanceChannel 在一个频道的噪声/语音模型靠得太近时把它们推开，
// 并把"全局"均值（各高斯加权和）限制在各自的漂移上限内
func rebalanceChannel(self *vadInst, channel int, maxspe int16) {
	// noiseGlobalMean/speechGlobalMean以Q14表示 (= Q7 * Q7)
	noiseGlobalMean := weightedAverage(self.noiseMeans[channel:], 0, kNoiseDataWeights[channel:])
	speechGlobalMean := weightedAverage(self.speechMeans[channel:], 0, kSpeechDataWeights[channel:])

	// diff = "全局"语音均值 - "全局"噪声均值，(Q14 >> 9) - (Q14 >> 9) = Q5
	diff := int16(speechGlobalMean>>9) - int16(noiseGlobalMean>>9)

	if diff < kMinimumDifference[channel] {
		tmpS16 := kMinimumDifference[channel] - diff

		// tmp1S16 ≈ 0.8 * (kMinimumDifference - diff)，Q7
		// tmp2S16 ≈ 0.2 * (kMinimumDifference - diff)，Q7
		tmp1S16 := int16((13 * int32(tmpS16)) >> 2)
		tmp2S16 := int16((3 * int32(tmpS16)) >> 2)

		// 为语音模型移动高斯均值tmp1S16，并更新speechGlobalMean
		speechGlobalMean = weightedAverage(self.speechMeans[channel:], tmp1S16, kSpeechDataWeights[channel:])
		// 为噪声模型移动高斯均值-tmp2S16，并更新noiseGlobalMean
		noiseGlobalMean = weightedAverage(self.noiseMeans[channel:], -tmp2S16, kNoiseDataWeights[channel:])
	}

	// 控制语音和噪声均值不要漂移太多
	if over := int16(speechGlobalMean >> 7); over > maxspe {
		over -= maxspe
		for k := 0; k < kNumGaussians; k++ {
			self.speechMeans[channel+k*kNumChannels] -= over
		}
	}

	if over := int16(noiseGlobalMean >> 7); over > kMaximumNoise[channel] {
		over -= kMaximumNoise[channel]
		for k := 0; k < kNumGaussians; k++ {
			self.noiseMeans[channel+k*kNumChannels] -= over
		}
	}
}

// applyHangover 对判决应用迟滞平滑（防止短促能量跌落过早判为静音）
func applyHangover(self *vadInst, vadflag int16, thresholds channelThresholds) int16 {
	if vadflag == 0 {
		if self.overHang > 0 {
			vadflag = 2 + self.overHang
			self.overHang--
		}
		self.numOfSpeech = 0
		return vadflag
	}

	self.numOfSpeech++
	if self.numOfSpeech > kMaxSpeechFrames {
		self.numOfSpeech = kMaxSpeechFrames
		self.overHang = thresholds.overhead2
	} else {
		self.overHang = thresholds.overhead1
	}

	return vadflag
}

// gmmProbability 用高斯混合模型对噪声/语音做似然比检验，必要时在线更新模型，
// 并对判决结果应用迟滞平滑
//
// 返回VAD决策（0 - 噪声，1 - 语音，或携带迟滞计数的非零值）
func gmmProbability(self *vadInst, features []Q4, totalPower int16, frameLength int) int16 {
	thresholds := thresholdsForFrameLength(self, frameLength)

	var vadflag int16
	if totalPower > kMinEnergy {
		ev := evaluateChannels(self, features, thresholds)
		vadflag = ev.vadflag
		updateModels(self, features, ev)
	}

	return applyHangover(self, vadflag, thresholds)
}
