package voice

import (
	"tingshu-go/internal/domain/segment"
	"tingshu-go/internal/platform/config"
	"tingshu-go/internal/utils"
)

// OverridePlaceholder 音色覆盖表中表示"不覆盖"的占位值
const OverridePlaceholder = "default"

// UnnamedCharacter 未命名角色片段统一落到的角色名
const UnnamedCharacter = "default"

// Engine 音色分配引擎。旁白固定用旁白音色；角色按覆盖表、
// 已有分配、性别音色池、通用池随机、默认音色的顺序解析，
// 分配结果写入RunContext，同名角色整个运行内音色一致。
type Engine struct {
	cfg *config.TTSConfig
}

// NewEngine 创建音色分配引擎
func NewEngine(cfg *config.TTSConfig) *Engine {
	return &Engine{cfg: cfg}
}

// speakerName 角色片段的说话人名
func speakerName(seg segment.Segment) string {
	if seg.Character == "" {
		return UnnamedCharacter
	}
	return seg.Character
}

// Resolve 解析片段的音色与pitch调整
func (e *Engine) Resolve(rc *RunContext, seg segment.Segment) (voice, pitch string) {
	if !seg.IsCharacter() {
		return e.cfg.NarratorVoice, e.cfg.Pitch
	}

	name := speakerName(seg)

	// 角色专属覆盖优先级最高，不进分配表，pitch用基准值
	if override, ok := e.cfg.CharacterVoices.Overrides[name]; ok && override != OverridePlaceholder {
		return override, e.cfg.Pitch
	}

	voice = e.assignVoice(rc, name, seg.Gender)
	return voice, e.pitchFor(rc, name, seg.Gender, voice)
}

func (e *Engine) assignVoice(rc *RunContext, name string, hint segment.Gender) string {
	if v, ok := rc.Assignment(name); ok {
		return v
	}

	cv := e.cfg.CharacterVoices
	gender := e.InferGender(rc, name, hint)

	// 旁白音色不参与角色分配，从各个池子里过滤掉
	if gender == segment.GenderMale {
		if pool := e.withoutNarrator(cv.Male); len(pool) > 0 {
			v := pool[rc.rng.Intn(len(pool))]
			rc.SetAssignment(name, v)
			return v
		}
	}
	if gender == segment.GenderFemale {
		if pool := e.withoutNarrator(cv.Female); len(pool) > 0 {
			v := pool[rc.rng.Intn(len(pool))]
			rc.SetAssignment(name, v)
			return v
		}
	}

	if cv.RandomAssignment && len(cv.Available) > 0 {
		candidates := e.withoutNarrator(cv.Available)

		// 优先选未分配过的音色，让不同角色音色不同；
		// 角色数超过池子时允许重复，区分只是尽力而为
		assigned := rc.assignedVoiceSet()
		fresh := make([]string, 0, len(candidates))
		for _, v := range candidates {
			if !assigned[v] {
				fresh = append(fresh, v)
			}
		}
		if len(fresh) == 0 {
			fresh = candidates
		}

		if len(fresh) > 0 {
			v := fresh[rc.rng.Intn(len(fresh))]
			rc.SetAssignment(name, v)
			return v
		}
	}

	rc.SetAssignment(name, cv.Default)
	return cv.Default
}

func (e *Engine) withoutNarrator(pool []string) []string {
	kept := make([]string, 0, len(pool))
	for _, v := range pool {
		if v != e.cfg.NarratorVoice {
			kept = append(kept, v)
		}
	}
	return kept
}

// pitchFor 根据音色性别与角色性别的匹配情况决定pitch调整。
// 匹配（含都未知）用基准pitch；男角色配非男声时压低，女角色配非女声时抬高。
func (e *Engine) pitchFor(rc *RunContext, name string, hint segment.Gender, voice string) string {
	gp := e.cfg.GenderPitch
	if !gp.Enabled {
		return e.cfg.Pitch
	}

	charGender := e.InferGender(rc, name, hint)

	voiceGender := segment.GenderUnknown
	if utils.IsInArray(voice, e.cfg.CharacterVoices.Male) {
		voiceGender = segment.GenderMale
	} else if utils.IsInArray(voice, e.cfg.CharacterVoices.Female) {
		voiceGender = segment.GenderFemale
	}

	if voiceGender == charGender {
		return e.cfg.Pitch
	}
	switch charGender {
	case segment.GenderMale:
		return gp.MalePitch
	case segment.GenderFemale:
		return gp.FemalePitch
	default:
		return gp.DefaultPitch
	}
}
