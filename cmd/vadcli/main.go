// Command vadcli 是围绕github.com/dspworks/vad的文件/CLI外壳
//
// 它本身不属于VAD核心：按spec所述，核心只负责(rate, frame_length)校验与
// 逐帧判决；读文件、分帧、打印结果、维护静音段计数都是外部协作者的职责。
package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/dspworks/vad"
	"github.com/dspworks/vad/internal/config"
	"github.com/dspworks/vad/internal/diagnostics"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

	var err error
	switch os.Args[1] {
	case "detect":
		err = runDetect(logger, os.Args[2:])
	case "analyze":
		err = runAnalyze(logger, os.Args[2:])
	case "presets":
		err = runPresets(logger, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		logger.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "用法: vadcli <detect|analyze|presets> [选项] [文件]")
}

// readPCM16 从path读取小端16位单声道PCM原始样本
func readPCM16(path string) ([]int16, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pcm file: %w", err)
	}
	n := len(raw) / 2
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return samples, nil
}

// samplesToBytes 把int16样本序列转换为小端字节，供StreamVAD.Write使用
func samplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

func runDetect(logger *log.Logger, args []string) error {
	fs := pflag.NewFlagSet("detect", pflag.ExitOnError)
	mode := fs.IntP("mode", "m", 2, "激进度模式 0-3")
	rate := fs.IntP("rate", "r", 16000, "采样率 Hz (8000/16000/32000/48000)")
	frameMs := fs.IntP("frame-ms", "f", 30, "帧时长 ms (10/20/30)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("detect: 缺少输入文件参数")
	}
	path := fs.Arg(0)

	sv, err := vad.NewStreamVAD(*mode, *rate, *frameMs)
	if err != nil {
		return fmt.Errorf("create stream vad: %w", err)
	}

	samples, err := readPCM16(path)
	if err != nil {
		return err
	}
	logger.Info("已加载音频", "file", path, "samples", len(samples), "rate", *rate)

	segs, err := sv.Write(samplesToBytes(samples))
	if err != nil {
		return fmt.Errorf("process audio: %w", err)
	}

	fmt.Println("检测结果 (0=静音, 1=语音):")
	for _, seg := range sv.GetSegments() {
		flag := "0"
		if seg.IsSpeech {
			flag = "1"
		}
		fmt.Printf("  [%v - %v] %s\n", seg.Start, seg.End, flag)
	}
	_ = segs

	speech := sv.FilterSpeechSegments()
	logger.Info("检测完成", "segments", len(sv.GetSegments()), "speech_segments", len(speech))
	return nil
}

func runAnalyze(logger *log.Logger, args []string) error {
	fs := pflag.NewFlagSet("analyze", pflag.ExitOnError)
	rate := fs.IntP("rate", "r", 16000, "采样率 Hz")
	mode := fs.IntP("mode", "m", 1, "激进度模式 0-3")
	lpcOrder := fs.IntP("lpc-order", "o", 10, "线性预测阶数")
	window := fs.StringP("window", "w", "hamming", "加窗函数: hamming/hann/blackman/blackmanharris/bartlett/welch/rectangular")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("analyze: 缺少输入文件参数")
	}
	path := fs.Arg(0)

	v, err := vad.New(*mode)
	if err != nil {
		return fmt.Errorf("create vad: %w", err)
	}

	samples, err := readPCM16(path)
	if err != nil {
		return err
	}

	frameLen := *rate / 100 * 3 // 30ms
	frameBytes := frameLen * 2

	raw := samplesToBytes(samples)
	logger.Info("开始逐帧诊断", "file", path, "frame_len", frameLen)

	for offset := 0; offset+frameBytes <= len(raw); offset += frameBytes {
		chunk := raw[offset : offset+frameBytes]
		isSpeech, err := v.IsSpeech(chunk, *rate)
		if err != nil {
			logger.Warn("处理帧失败", "err", err)
			continue
		}

		frameSamples := samples[offset/2 : offset/2+frameLen]
		var report diagnostics.FrameReport
		if isSpeech {
			report = diagnostics.AnalyzeFrame(downmixTo8k(frameSamples, *rate), *lpcOrder, *window)
		}

		speechFlag := "-"
		if isSpeech {
			speechFlag = "speech"
		}
		fmt.Printf("%-8s pitch=%-4d conf=%.2f refl1=%.2f gain=%.2f\n",
			speechFlag, report.PitchPeriodSamples, report.PitchConfidence,
			report.ReflectionCoeff1, report.LPCGain)
	}

	return nil
}

// downmixTo8k 对诊断而言只需要粗略的8kHz序列；analyze子命令不经过核心的
// 降采样链（那只在VAD决策路径内部使用），这里做最简单的抽取以匹配基音
// 搜索范围的假设
func downmixTo8k(samples []int16, rate int) []int16 {
	if rate <= 8000 {
		return samples
	}
	step := rate / 8000
	out := make([]int16, 0, len(samples)/step+1)
	for i := 0; i < len(samples); i += step {
		out = append(out, samples[i])
	}
	return out
}

func runPresets(logger *log.Logger, args []string) error {
	fs := pflag.NewFlagSet("presets", pflag.ExitOnError)
	path := fs.StringP("config", "c", "", "预设YAML文件路径（为空时使用内置默认预设）")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var presets []config.Preset
	if *path == "" {
		presets = config.DefaultPresets()
		logger.Info("使用内置默认预设")
	} else {
		f, err := os.Open(*path)
		if err != nil {
			return fmt.Errorf("open presets file: %w", err)
		}
		defer f.Close()

		presets, err = config.LoadPresets(f)
		if err != nil {
			return err
		}
	}

	for _, p := range presets {
		fmt.Printf("%-16s mode=%d rate=%-6d frame_ms=%-3d frame_len=%d\n",
			p.Name, p.Mode, p.SampleRate, p.FrameDurationMs, p.FrameLength())
	}
	return nil
}
