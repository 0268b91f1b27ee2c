package analysis

import (
	"regexp"
	"strings"

	"tingshu-go/internal/domain/segment"
)

// dialoguePattern 匹配中英文引号包裹的对话，开闭引号可互换
var dialoguePattern = regexp.MustCompile(`["「」『』](.+?)["「」『』]`)

// FallbackCharacter 规则切分无法识别说话人，统一落到这个角色名
const FallbackCharacter = "unknown"

// RuleSegment 规则切分：逐行扫描引号包裹的对话，引号外的文字作为旁白。
// 模型不可用或返回内容无法解析时的本地兜底。
func RuleSegment(text string) []segment.Segment {
	var segments []segment.Segment
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		matches := dialoguePattern.FindAllStringSubmatchIndex(line, -1)
		if len(matches) == 0 {
			segments = append(segments, segment.Narrator(line))
			continue
		}

		lastEnd := 0
		for _, m := range matches {
			if m[0] > lastEnd {
				if t := strings.TrimSpace(line[lastEnd:m[0]]); t != "" {
					segments = append(segments, segment.Narrator(t))
				}
			}
			if t := strings.TrimSpace(line[m[2]:m[3]]); t != "" {
				segments = append(segments, segment.Character(FallbackCharacter, t))
			}
			lastEnd = m[1]
		}
		if lastEnd < len(line) {
			if t := strings.TrimSpace(line[lastEnd:]); t != "" {
				segments = append(segments, segment.Narrator(t))
			}
		}
	}
	return segments
}
