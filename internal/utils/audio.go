package utils

import (
	"fmt"
	"os"
	"time"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// 估算时长时假设每段平均5秒，仅在无法解码产物时使用
const fallbackSecondsPerSegment = 5

// MP3Duration 解码MP3文件并返回实际播放时长
func MP3Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, fmt.Errorf("解码MP3失败: %v", err)
	}

	// Length为解码后的PCM字节数，16位双声道即每采样4字节
	samples := decoder.Length() / 4
	if decoder.SampleRate() <= 0 {
		return 0, fmt.Errorf("无效采样率: %d", decoder.SampleRate())
	}
	seconds := float64(samples) / float64(decoder.SampleRate())
	return time.Duration(seconds * float64(time.Second)), nil
}

// EstimateDuration 根据片段数量估算时长
func EstimateDuration(numSegments int) time.Duration {
	return time.Duration(numSegments*fallbackSecondsPerSegment) * time.Second
}

// FormatDurationCN 将时长格式化为中文描述，如 1小时2分钟3秒
func FormatDurationCN(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d小时%d分钟%d秒", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%d分钟%d秒", minutes, seconds)
	}
	return fmt.Sprintf("%d秒", seconds)
}
