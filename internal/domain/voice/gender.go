package voice

import (
	"strings"

	"tingshu-go/internal/domain/segment"
)

// 常见中文名字的性别特征字
var (
	femalePatterns = []string{"芳", "玲", "娜", "婷", "娟", "丽", "敏", "静", "燕", "红", "秀", "英", "梅", "花", "兰", "玉", "珍", "芬", "萍"}
	malePatterns   = []string{"强", "伟", "刚", "勇", "军", "杰", "涛", "明", "建", "平", "波", "峰", "龙", "虎", "雄", "斌", "浩", "宇", "飞"}
)

// InferGender 推断角色性别，解析顺序：
// 片段自带的性别提示 > 运行缓存 > 配置的角色性别表 > 名字特征字 > 默认男性。
// 女性特征字先于男性检查，名字同时含两类特征字时判为女性。
// 每次解析结果（包括默认值）都写入缓存，同一运行内同名角色的结果稳定。
func (e *Engine) InferGender(rc *RunContext, name string, hint segment.Gender) segment.Gender {
	if g := segment.ParseGender(string(hint)); g == segment.GenderMale || g == segment.GenderFemale {
		rc.SetGender(name, g)
		return g
	}

	if g, ok := rc.Gender(name); ok {
		return g
	}

	if raw, ok := e.cfg.CharacterVoices.Genders[name]; ok {
		g := segment.ParseGender(raw)
		rc.SetGender(name, g)
		return g
	}

	for _, pattern := range femalePatterns {
		if strings.Contains(name, pattern) {
			rc.SetGender(name, segment.GenderFemale)
			return segment.GenderFemale
		}
	}
	for _, pattern := range malePatterns {
		if strings.Contains(name, pattern) {
			rc.SetGender(name, segment.GenderMale)
			return segment.GenderMale
		}
	}

	rc.SetGender(name, segment.GenderMale)
	return segment.GenderMale
}
