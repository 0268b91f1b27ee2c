package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tingshu-go/internal/platform/errors"
)

// Merger 用ffmpeg把分段音频按顺序无重编码地拼接成一个文件
type Merger struct{}

// NewMerger 创建音频合并器
func NewMerger() *Merger {
	return &Merger{}
}

// CheckFFmpeg 确认ffmpeg已安装且可运行
func CheckFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return errors.Wrap(errors.KindMerge, "audio.check", "ffmpeg not found in PATH", err)
	}
	if err := exec.Command("ffmpeg", "-version").Run(); err != nil {
		return errors.Wrap(errors.KindMerge, "audio.check", "ffmpeg not runnable", err)
	}
	return nil
}

// Merge 按给定顺序拼接audioFiles到outputFile。
// 走concat分离器加流复制，要求所有输入是同编码的MP3。
func (m *Merger) Merge(ctx context.Context, audioFiles []string, outputFile string) error {
	if len(audioFiles) == 0 {
		return errors.New(errors.KindMerge, "audio.merge", "no audio files to merge")
	}
	if err := CheckFFmpeg(); err != nil {
		return err
	}

	content, err := buildConcatList(audioFiles)
	if err != nil {
		return err
	}

	listFile, err := os.CreateTemp("", "tingshu_concat_*.txt")
	if err != nil {
		return errors.Wrap(errors.KindMerge, "audio.merge", "create concat list failed", err)
	}
	defer os.Remove(listFile.Name())

	if _, err := listFile.WriteString(content); err != nil {
		listFile.Close()
		return errors.Wrap(errors.KindMerge, "audio.merge", "write concat list failed", err)
	}
	if err := listFile.Close(); err != nil {
		return errors.Wrap(errors.KindMerge, "audio.merge", "close concat list failed", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile.Name(),
		"-c", "copy",
		outputFile,
		"-y",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := lastNonEmptyLine(stderr.String())
		if msg == "" {
			msg = "ffmpeg exited with error"
		}
		return errors.Wrap(errors.KindMerge, "audio.merge", msg, err)
	}
	return nil
}

// buildConcatList 生成ffmpeg concat分离器的列表内容，路径转为绝对路径
func buildConcatList(audioFiles []string) (string, error) {
	var b strings.Builder
	for _, file := range audioFiles {
		abs, err := filepath.Abs(file)
		if err != nil {
			return "", errors.Wrap(errors.KindMerge, "audio.merge", "resolve path failed", err)
		}
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(abs))
	}
	return b.String(), nil
}

// escapeConcatPath concat列表里的单引号要写成 '\'' 的形式
func escapeConcatPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
