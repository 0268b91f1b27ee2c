package segment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
)

// Kind 片段类型
type Kind string

const (
	KindNarrator  Kind = "narrator"
	KindCharacter Kind = "character"
)

// Gender 角色性别
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// ParseGender 将外部输入归一化为合法的性别值
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return GenderMale
	case "female":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// Segment 一个待合成的文本片段。由分析阶段产出，创建后不再修改，顺序必须保持。
// Voice 字段是分析器给出的提示性标签（如 "narrator"、"character_张三"），
// 音色分配引擎不读取它。
type Segment struct {
	Type      Kind   `json:"type"`
	Character string `json:"character,omitempty"`
	Gender    Gender `json:"gender,omitempty"`
	Text      string `json:"text"`
	Voice     string `json:"voice,omitempty"`
}

// Narrator 构造旁白片段
func Narrator(text string) Segment {
	return Segment{
		Type:  KindNarrator,
		Text:  text,
		Voice: "narrator",
	}
}

// Character 构造角色对话片段
func Character(name, text string) Segment {
	return Segment{
		Type:      KindCharacter,
		Character: name,
		Text:      text,
		Voice:     "character_" + name,
	}
}

// IsCharacter 是否为角色对话
func (s Segment) IsCharacter() bool {
	return s.Type == KindCharacter
}

// DumpPath 根据输出音频路径推导分析结果JSON的路径，
// 例如 output/audiobook.mp3 -> output/audiobook_analysis.json
func DumpPath(outputFile string) string {
	ext := filepath.Ext(outputFile)
	return strings.TrimSuffix(outputFile, ext) + "_analysis.json"
}

// Dump 将片段列表以缩进JSON写入文件，供检查分析结果使用
func Dump(segments []Segment, path string) error {
	data, err := sonic.ConfigDefault.MarshalIndent(segments, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化分析结果失败: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入分析结果失败: %v", err)
	}
	return nil
}
