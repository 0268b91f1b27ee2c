package analysis

import (
	"strings"

	"github.com/bytedance/sonic"

	"tingshu-go/internal/domain/segment"
	"tingshu-go/internal/platform/errors"
	"tingshu-go/internal/utils"
)

// DecodeSegments 严格解码：输入必须是一个JSON片段数组。
// 类型字段不是narrator的一律视为角色片段，保持顺序不变。
func DecodeSegments(raw string) ([]segment.Segment, error) {
	var segs []segment.Segment
	if err := sonic.UnmarshalString(strings.TrimSpace(raw), &segs); err != nil {
		return nil, errors.Wrap(errors.KindAnalysis, "analysis.decode", "invalid segment array", err)
	}
	return normalizeSegments(segs), nil
}

// ExtractSegments 宽松解码：从自由文本中截取首个 [ 到最后一个 ] 的子串再解码。
// 模型偶尔会在JSON前后附加说明文字或代码块标记，这一步把它们剥掉。
func ExtractSegments(raw string) ([]segment.Segment, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, errors.New(errors.KindAnalysis, "analysis.extract", "no JSON array found in response")
	}
	return DecodeSegments(raw[start : end+1])
}

// ParseResponse 解析模型返回内容：先严格解码，失败后退到宽松提取。
// 宽松提取前先剥掉尖括号包裹的内容，推理类模型会把思考过程放在<think>标签里。
func ParseResponse(content string) ([]segment.Segment, error) {
	segs, err := DecodeSegments(content)
	if err == nil {
		return segs, nil
	}
	return ExtractSegments(utils.RemoveAngleBracketContent(content))
}

func normalizeSegments(segs []segment.Segment) []segment.Segment {
	out := make([]segment.Segment, 0, len(segs))
	for _, s := range segs {
		if s.Type != segment.KindNarrator {
			s.Type = segment.KindCharacter
		}
		if s.Type == segment.KindNarrator {
			s.Character = ""
			s.Gender = ""
		}
		out = append(out, s)
	}
	return out
}
