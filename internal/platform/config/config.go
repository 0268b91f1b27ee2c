package config

// Config 全局配置
type Config struct {
	Log      LogConfig      `yaml:"log"`
	DeepSeek DeepSeekConfig `yaml:"deepseek"`
	Analysis AnalysisConfig `yaml:"analysis"`
	TTS      TTSConfig      `yaml:"tts"`
	Audio    AudioConfig    `yaml:"audio"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// DeepSeekConfig DeepSeek API 凭据与模型参数。
// api_keys.yaml 中的同名字段优先于主配置文件。
type DeepSeekConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Timeout     int     `yaml:"timeout"` // 单次分析请求超时，秒
}

// AnalysisConfig 文本分析配置
type AnalysisConfig struct {
	Provider string `yaml:"provider"`
	MaxChars int    `yaml:"max_chars"` // 发送给分析服务的文本前缀上限，按字符计
}

// TTSConfig 语音合成配置
type TTSConfig struct {
	Provider        string               `yaml:"provider"`
	NarratorVoice   string               `yaml:"narrator_voice"`
	Rate            string               `yaml:"rate"`
	Volume          string               `yaml:"volume"`
	Pitch           string               `yaml:"pitch"`
	ReceiveTimeout  int                  `yaml:"receive_timeout"` // 单段合成超时，秒
	CacheEnabled    bool                 `yaml:"cache_enabled"`
	CacheDir        string               `yaml:"cache_dir"`
	CharacterVoices CharacterVoiceConfig `yaml:"character_voices"`
	GenderPitch     GenderPitchConfig    `yaml:"gender_pitch_adjustment"`
}

// CharacterVoiceConfig 角色音色配置
type CharacterVoiceConfig struct {
	Default          string            `yaml:"default"`
	RandomAssignment bool              `yaml:"random_assignment"`
	Available        []string          `yaml:"available_voices"`
	Male             []string          `yaml:"male_voices"`
	Female           []string          `yaml:"female_voices"`
	Genders          map[string]string `yaml:"character_genders"` // 角色名 -> male/female
	Overrides        map[string]string `yaml:"voice_overrides"`   // 角色名 -> 指定音色，"default"表示不指定
}

// GenderPitchConfig 性别与音色不匹配时的pitch补偿
type GenderPitchConfig struct {
	Enabled      bool   `yaml:"enabled"`
	MalePitch    string `yaml:"male_pitch"`
	FemalePitch  string `yaml:"female_pitch"`
	DefaultPitch string `yaml:"default_pitch"`
}

// AudioConfig 音频产物配置
type AudioConfig struct {
	OutputFormat string `yaml:"output_format"`
	TempDir      string `yaml:"temp_dir"`
	OutputDir    string `yaml:"output_dir"`
	MinFreeMB    uint64 `yaml:"min_free_mb"` // 合成前要求临时目录所在磁盘的最小可用空间
}

// HasAPIKey 判断是否配置了可用的API密钥
func (c *Config) HasAPIKey() bool {
	return c.DeepSeek.APIKey != "" && c.DeepSeek.APIKey != "your-api-key-here"
}

// Normalize 校验并修正配置，返回需要提示用户的警告信息
func (c *Config) Normalize() []string {
	var warnings []string

	if c.TTS.Rate == "" {
		c.TTS.Rate = "+0%"
	}
	if c.TTS.Volume == "" {
		c.TTS.Volume = "+0%"
	}
	if c.TTS.Pitch == "" {
		c.TTS.Pitch = "+0Hz"
	}
	if c.TTS.CacheDir == "" {
		c.TTS.CacheDir = "cache"
	}
	if c.Audio.TempDir == "" {
		c.Audio.TempDir = "temp_audio"
	}
	if c.Audio.OutputDir == "" {
		c.Audio.OutputDir = "output"
	}
	if c.Audio.OutputFormat == "" {
		c.Audio.OutputFormat = "mp3"
	}
	if c.Analysis.MaxChars <= 0 {
		c.Analysis.MaxChars = 2000
	}

	// 角色默认音色不允许与旁白音色相同，否则角色会落到旁白的声音上
	cv := &c.TTS.CharacterVoices
	if cv.Default == "" {
		cv.Default = "zh-CN-YunxiNeural"
	}
	if cv.Default == c.TTS.NarratorVoice {
		replacement := ""
		for _, v := range cv.Available {
			if v != c.TTS.NarratorVoice {
				replacement = v
				break
			}
		}
		if replacement == "" {
			replacement = "zh-CN-YunxiNeural"
			if replacement == c.TTS.NarratorVoice {
				replacement = "zh-CN-XiaoxiaoNeural"
			}
		}
		warnings = append(warnings, "角色默认音色与旁白音色相同，已改用 "+replacement)
		cv.Default = replacement
	}

	return warnings
}
