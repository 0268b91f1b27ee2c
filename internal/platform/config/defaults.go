package config

// DefaultConfig 返回默认配置，字段值与工具的标准用法保持一致
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "INFO",
			Dir:   "logs",
			File:  "tingshu.log",
		},
		DeepSeek: DeepSeekConfig{
			APIKey:      "",
			BaseURL:     "https://api.deepseek.com",
			Model:       "deepseek-chat",
			Temperature: 0.3,
			MaxTokens:   4000,
			Timeout:     120,
		},
		Analysis: AnalysisConfig{
			Provider: "deepseek",
			MaxChars: 2000,
		},
		TTS: TTSConfig{
			Provider:       "edge",
			NarratorVoice:  "zh-CN-XiaoxiaoNeural",
			Rate:           "+0%",
			Volume:         "+0%",
			Pitch:          "+0Hz",
			ReceiveTimeout: 60,
			CacheEnabled:   true,
			CacheDir:       "cache",
			CharacterVoices: CharacterVoiceConfig{
				Default:          "zh-CN-YunxiNeural",
				RandomAssignment: true,
				Available: []string{
					"zh-CN-XiaoxiaoNeural",
					"zh-CN-YunxiNeural",
					"zh-CN-YunyangNeural",
					"zh-CN-XiaoyiNeural",
				},
				Male: []string{
					"zh-CN-YunxiNeural",
					"zh-CN-YunyangNeural",
				},
				Female: []string{
					"zh-CN-XiaoxiaoNeural",
					"zh-CN-XiaoyiNeural",
				},
				Genders:   map[string]string{},
				Overrides: map[string]string{},
			},
			GenderPitch: GenderPitchConfig{
				Enabled:      true,
				MalePitch:    "-10Hz",
				FemalePitch:  "+10Hz",
				DefaultPitch: "+0Hz",
			},
		},
		Audio: AudioConfig{
			OutputFormat: "mp3",
			TempDir:      "temp_audio",
			OutputDir:    "output",
			MinFreeMB:    200,
		},
	}
}
