package voice

import (
	"math/rand"
	"testing"

	"tingshu-go/internal/domain/segment"
	"tingshu-go/internal/platform/config"
)

func testTTSConfig() *config.TTSConfig {
	return &config.TTSConfig{
		NarratorVoice: "zh-CN-XiaoxiaoNeural",
		Rate:          "+0%",
		Volume:        "+0%",
		Pitch:         "+0Hz",
		CharacterVoices: config.CharacterVoiceConfig{
			Default:          "zh-CN-YunxiNeural",
			RandomAssignment: true,
			Available: []string{
				"zh-CN-XiaoxiaoNeural",
				"zh-CN-XiaoyiNeural",
				"zh-CN-YunxiNeural",
				"zh-CN-YunyangNeural",
			},
			Male:      []string{"zh-CN-YunxiNeural", "zh-CN-YunyangNeural"},
			Female:    []string{"zh-CN-XiaoxiaoNeural", "zh-CN-XiaoyiNeural"},
			Genders:   map[string]string{},
			Overrides: map[string]string{},
		},
		GenderPitch: config.GenderPitchConfig{
			Enabled:      true,
			MalePitch:    "-10Hz",
			FemalePitch:  "+10Hz",
			DefaultPitch: "+0Hz",
		},
	}
}

func seededContext(seed int64) *RunContext {
	return NewRunContextWithRand(rand.New(rand.NewSource(seed)))
}

func characterSeg(name, text string) segment.Segment {
	return segment.Character(name, text)
}

func TestResolve_NarratorFixedVoice(t *testing.T) {
	e := NewEngine(testTTSConfig())
	rc := seededContext(1)

	for i := 0; i < 3; i++ {
		voice, pitch := e.Resolve(rc, segment.Narrator("夜深了。"))
		if voice != "zh-CN-XiaoxiaoNeural" {
			t.Fatalf("旁白音色不匹配: %q", voice)
		}
		if pitch != "+0Hz" {
			t.Fatalf("旁白应使用基准pitch: %q", pitch)
		}
	}
}

func TestResolve_StableAssignmentPerCharacter(t *testing.T) {
	e := NewEngine(testTTSConfig())
	rc := seededContext(7)

	first, _ := e.Resolve(rc, characterSeg("小芳", "来了。"))
	for i := 0; i < 20; i++ {
		voice, _ := e.Resolve(rc, characterSeg("小芳", "又来了。"))
		if voice != first {
			t.Fatalf("同一角色的音色应保持稳定: 第一次 %q, 后续 %q", first, voice)
		}
	}
}

func TestResolve_GenderPoolPick(t *testing.T) {
	e := NewEngine(testTTSConfig())
	rc := seededContext(3)

	maleVoice, _ := e.Resolve(rc, characterSeg("大强", "站住！"))
	if maleVoice != "zh-CN-YunxiNeural" && maleVoice != "zh-CN-YunyangNeural" {
		t.Errorf("男角色应从男声池选择: %q", maleVoice)
	}

	femaleVoice, _ := e.Resolve(rc, characterSeg("小芳", "别追了。"))
	if femaleVoice != "zh-CN-XiaoyiNeural" {
		t.Errorf("女角色应从过滤掉旁白音色后的女声池选择: %q", femaleVoice)
	}
}

func TestResolve_HintThenCachedSecondSegment(t *testing.T) {
	e := NewEngine(testTTSConfig())
	rc := seededContext(11)

	hinted := characterSeg("小明", "我先说。")
	hinted.Gender = segment.GenderMale
	v1, _ := e.Resolve(rc, hinted)

	v2, _ := e.Resolve(rc, characterSeg("小明", "我再说。"))
	if v1 != v2 {
		t.Fatalf("带性别提示与不带提示的同名角色应同音色: %q vs %q", v1, v2)
	}
	if g, ok := rc.Gender("小明"); !ok || g != segment.GenderMale {
		t.Fatalf("首次提示应写入性别缓存: %v %v", g, ok)
	}
}

func TestResolve_OverrideBypassesAssignment(t *testing.T) {
	cfg := testTTSConfig()
	cfg.CharacterVoices.Overrides["县令"] = "zh-CN-YunjianNeural"
	e := NewEngine(cfg)
	rc := seededContext(5)

	voice, pitch := e.Resolve(rc, characterSeg("县令", "升堂！"))
	if voice != "zh-CN-YunjianNeural" {
		t.Fatalf("覆盖音色未生效: %q", voice)
	}
	if pitch != "+0Hz" {
		t.Fatalf("覆盖音色应使用基准pitch: %q", pitch)
	}
	if _, ok := rc.Assignment("县令"); ok {
		t.Fatal("覆盖音色不应写入分配表")
	}
}

func TestResolve_OverridePlaceholderIgnored(t *testing.T) {
	cfg := testTTSConfig()
	cfg.CharacterVoices.Overrides["路人"] = "default"
	e := NewEngine(cfg)
	rc := seededContext(5)

	e.Resolve(rc, characterSeg("路人", "借过。"))
	if _, ok := rc.Assignment("路人"); !ok {
		t.Fatal("占位覆盖应走正常分配并写入分配表")
	}
}

func TestResolve_NarratorVoiceNeverGivenToCharacters(t *testing.T) {
	cfg := testTTSConfig()
	e := NewEngine(cfg)
	rc := seededContext(13)

	names := []string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "小芳", "大强"}
	for _, name := range names {
		voice, _ := e.Resolve(rc, characterSeg(name, "一句话。"))
		if voice == cfg.NarratorVoice {
			t.Fatalf("角色 %q 分到了旁白音色", name)
		}
	}
}

func TestResolve_NarratorOnlyPoolFallsToDefault(t *testing.T) {
	cfg := testTTSConfig()
	cfg.CharacterVoices.Male = nil
	cfg.CharacterVoices.Female = nil
	cfg.CharacterVoices.Available = []string{cfg.NarratorVoice}
	e := NewEngine(cfg)
	rc := seededContext(17)

	voice, _ := e.Resolve(rc, characterSeg("甲", "一句话。"))
	if voice != cfg.CharacterVoices.Default {
		t.Fatalf("候选池耗尽应落到默认音色: %q", voice)
	}
	if voice == cfg.NarratorVoice {
		t.Fatal("默认回退也不允许旁白音色")
	}
}

func TestResolve_DistinctVoicesWhenPoolPermits(t *testing.T) {
	cfg := testTTSConfig()
	cfg.CharacterVoices.Male = nil
	cfg.CharacterVoices.Female = nil
	cfg.CharacterVoices.Genders = map[string]string{
		"甲": "unknown", "乙": "unknown", "丙": "unknown",
	}
	e := NewEngine(cfg)
	rc := seededContext(23)

	seen := make(map[string]string)
	for _, name := range []string{"甲", "乙", "丙"} {
		voice, _ := e.Resolve(rc, characterSeg(name, "一句话。"))
		for other, v := range seen {
			if v == voice {
				t.Fatalf("池子足够时角色应音色互异: %q 与 %q 同为 %q", name, other, voice)
			}
		}
		seen[name] = voice
	}
}

func TestResolve_ExhaustedPoolAllowsRepeats(t *testing.T) {
	cfg := testTTSConfig()
	cfg.CharacterVoices.Male = nil
	cfg.CharacterVoices.Female = nil
	cfg.CharacterVoices.Available = []string{cfg.NarratorVoice, "voice-a", "voice-b"}
	cfg.CharacterVoices.Genders = map[string]string{
		"甲": "unknown", "乙": "unknown", "丙": "unknown",
	}
	e := NewEngine(cfg)
	rc := seededContext(29)

	voices := make([]string, 0, 3)
	for _, name := range []string{"甲", "乙", "丙"} {
		voice, _ := e.Resolve(rc, characterSeg(name, "一句话。"))
		if voice != "voice-a" && voice != "voice-b" {
			t.Fatalf("耗尽后应在候选池内重复使用: %q", voice)
		}
		voices = append(voices, voice)
	}
	if voices[0] == voices[1] {
		t.Fatalf("前两个角色应拿到互异音色: %v", voices)
	}
}

func TestResolve_SameSeedSameSequence(t *testing.T) {
	names := []string{"甲", "乙", "丙", "丁"}
	run := func() []string {
		e := NewEngine(testTTSConfig())
		rc := seededContext(42)
		out := make([]string, 0, len(names))
		for _, name := range names {
			voice, _ := e.Resolve(rc, characterSeg(name, "一句话。"))
			out = append(out, voice)
		}
		return out
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("相同种子应重现分配序列: %v vs %v", first, second)
		}
	}
}

func TestResolve_UnnamedCharactersShareVoice(t *testing.T) {
	e := NewEngine(testTTSConfig())
	rc := seededContext(31)

	unnamed := segment.Segment{Type: segment.KindCharacter, Text: "谁？"}
	v1, _ := e.Resolve(rc, unnamed)
	v2, _ := e.Resolve(rc, segment.Segment{Type: segment.KindCharacter, Text: "是我。"})
	if v1 != v2 {
		t.Fatalf("未命名角色应共享同一音色: %q vs %q", v1, v2)
	}
	if _, ok := rc.Assignment(UnnamedCharacter); !ok {
		t.Fatalf("未命名角色应以 %q 记入分配表", UnnamedCharacter)
	}
}

func TestInferGender_FemalePatternCheckedFirst(t *testing.T) {
	e := NewEngine(testTTSConfig())
	rc := seededContext(1)

	if g := e.InferGender(rc, "梅强", ""); g != segment.GenderFemale {
		t.Fatalf("同时含男女特征字的名字应判为女性: %v", g)
	}
}

func TestInferGender_DefaultsToMale(t *testing.T) {
	e := NewEngine(testTTSConfig())
	rc := seededContext(1)

	if g := e.InferGender(rc, "司机", ""); g != segment.GenderMale {
		t.Fatalf("无特征字的名字应默认男性: %v", g)
	}
	if cached, ok := rc.Gender("司机"); !ok || cached != segment.GenderMale {
		t.Fatal("默认结果也应写入缓存")
	}
}

func TestInferGender_ConfigTable(t *testing.T) {
	cfg := testTTSConfig()
	cfg.CharacterVoices.Genders["阿紫"] = "female"
	e := NewEngine(cfg)
	rc := seededContext(1)

	if g := e.InferGender(rc, "阿紫", ""); g != segment.GenderFemale {
		t.Fatalf("配置表性别未生效: %v", g)
	}
}

func TestInferGender_Idempotent(t *testing.T) {
	e := NewEngine(testTTSConfig())
	rc := seededContext(1)

	first := e.InferGender(rc, "小芳", "")
	second := e.InferGender(rc, "小芳", "")
	if first != second {
		t.Fatalf("重复推断结果应一致: %v vs %v", first, second)
	}
}

func TestInferGender_HintBeatsCache(t *testing.T) {
	e := NewEngine(testTTSConfig())
	rc := seededContext(1)

	if g := e.InferGender(rc, "阿紫", ""); g != segment.GenderMale {
		t.Fatalf("前置条件失败: %v", g)
	}
	if g := e.InferGender(rc, "阿紫", segment.GenderFemale); g != segment.GenderFemale {
		t.Fatalf("显式提示应优先于缓存: %v", g)
	}
	if cached, _ := rc.Gender("阿紫"); cached != segment.GenderFemale {
		t.Fatalf("提示应回写缓存: %v", cached)
	}
}

func TestPitch_DisabledAlwaysBase(t *testing.T) {
	cfg := testTTSConfig()
	cfg.GenderPitch.Enabled = false
	cfg.Pitch = "+2Hz"
	e := NewEngine(cfg)
	rc := seededContext(1)

	if _, pitch := e.Resolve(rc, segment.Narrator("旁白。")); pitch != "+2Hz" {
		t.Fatalf("旁白pitch不匹配: %q", pitch)
	}
	if _, pitch := e.Resolve(rc, characterSeg("大强", "台词。")); pitch != "+2Hz" {
		t.Fatalf("关闭调整后角色也应用基准pitch: %q", pitch)
	}
}

func TestPitch_MatchedVoiceUsesBase(t *testing.T) {
	e := NewEngine(testTTSConfig())
	rc := seededContext(1)

	// 男角色从男声池拿音色，性别匹配
	if _, pitch := e.Resolve(rc, characterSeg("大强", "台词。")); pitch != "+0Hz" {
		t.Fatalf("性别匹配应用基准pitch: %q", pitch)
	}
}

func TestPitch_MaleCharacterOnFemaleVoice(t *testing.T) {
	cfg := testTTSConfig()
	cfg.CharacterVoices.Male = nil
	cfg.CharacterVoices.Available = []string{"zh-CN-XiaoyiNeural"}
	e := NewEngine(cfg)
	rc := seededContext(1)

	voice, pitch := e.Resolve(rc, characterSeg("大强", "台词。"))
	if voice != "zh-CN-XiaoyiNeural" {
		t.Fatalf("男声池为空应落到通用池: %q", voice)
	}
	if pitch != "-10Hz" {
		t.Fatalf("男角色配女声应压低pitch: %q", pitch)
	}
}

func TestPitch_FemaleCharacterOnMaleVoice(t *testing.T) {
	cfg := testTTSConfig()
	cfg.CharacterVoices.Female = nil
	cfg.CharacterVoices.Available = []string{"zh-CN-YunxiNeural"}
	e := NewEngine(cfg)
	rc := seededContext(1)

	voice, pitch := e.Resolve(rc, characterSeg("小芳", "台词。"))
	if voice != "zh-CN-YunxiNeural" {
		t.Fatalf("女声池为空应落到通用池: %q", voice)
	}
	if pitch != "+10Hz" {
		t.Fatalf("女角色配男声应抬高pitch: %q", pitch)
	}
}

func TestPitch_UnknownGenderOnGenderedVoice(t *testing.T) {
	cfg := testTTSConfig()
	cfg.GenderPitch.DefaultPitch = "+1Hz"
	cfg.CharacterVoices.Genders["神秘人"] = "unknown"
	cfg.CharacterVoices.Available = []string{"zh-CN-YunxiNeural"}
	e := NewEngine(cfg)
	rc := seededContext(1)

	if _, pitch := e.Resolve(rc, characterSeg("神秘人", "台词。")); pitch != "+1Hz" {
		t.Fatalf("性别未知配有性别音色应用默认pitch: %q", pitch)
	}
}

func TestPitch_UnknownGenderOnUnclassifiedVoice(t *testing.T) {
	cfg := testTTSConfig()
	cfg.CharacterVoices.Genders["神秘人"] = "unknown"
	cfg.CharacterVoices.Available = []string{"voice-x"}
	e := NewEngine(cfg)
	rc := seededContext(1)

	if _, pitch := e.Resolve(rc, characterSeg("神秘人", "台词。")); pitch != "+0Hz" {
		t.Fatalf("双方都无性别归类视为匹配，应用基准pitch: %q", pitch)
	}
}
