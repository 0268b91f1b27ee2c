package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tingshu-go/internal/platform/errors"
)

// api_keys 文件的查找顺序，找到第一个可解析的即停止
var apiKeysPaths = []string{
	"api_keys.yaml",
	"api_keys.yml",
	".api_keys.yaml",
	".api_keys.yml",
	"config/api_keys.yaml",
	"config/api_keys.yml",
}

const envAPIKey = "DEEPSEEK_API_KEY"

// Loader 配置加载器。加载顺序：默认值 -> 配置文件 -> api_keys文件 -> 环境变量。
type Loader struct {
	path      string
	baseDir   string
	useDotEnv bool
}

// NewLoader 创建配置加载器，path为主配置文件路径
func NewLoader(path string) *Loader {
	return &Loader{
		path:      path,
		baseDir:   ".",
		useDotEnv: true,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithBaseDir overrides the directory api_keys files are resolved against (useful for tests).
func (l *Loader) WithBaseDir(dir string) *Loader {
	if dir != "" {
		l.baseDir = dir
	}
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config   *Config
	Path     string // 实际加载的配置文件路径，空表示使用默认配置
	Warnings []string
}

// Load 加载并归一化配置
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("未找到 .env 文件，使用系统环境变量")
		}
	}

	cfg := DefaultConfig()
	loadedPath := ""

	data, err := os.ReadFile(l.path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.KindConfig, "config.load", "failed to parse config file", err)
		}
		loadedPath = l.path
	case os.IsNotExist(err):
		fmt.Printf("配置文件 %s 不存在，使用默认配置\n", l.path)
	default:
		return nil, errors.Wrap(errors.KindConfig, "config.load", "failed to read config file", err)
	}

	l.mergeAPIKeys(cfg)

	warnings := cfg.Normalize()
	if !cfg.HasAPIKey() {
		warnings = append(warnings,
			"未找到API密钥，请创建 api_keys.yaml 或设置 "+envAPIKey+" 环境变量；分析将使用本地规则")
	}

	return &Result{
		Config:   cfg,
		Path:     loadedPath,
		Warnings: warnings,
	}, nil
}

type apiKeysFile struct {
	DeepSeek DeepSeekConfig `yaml:"deepseek"`
}

// mergeAPIKeys 从api_keys文件或环境变量合并密钥配置，文件中的值优先于主配置
func (l *Loader) mergeAPIKeys(cfg *Config) {
	for _, p := range apiKeysPaths {
		path := filepath.Join(l.baseDir, p)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var keys apiKeysFile
		if err := yaml.Unmarshal(data, &keys); err != nil {
			fmt.Printf("警告: 无法加载API密钥文件 %s: %v\n", path, err)
			continue
		}

		overlayDeepSeek(&cfg.DeepSeek, keys.DeepSeek)
		return
	}

	// 找不到API密钥文件时，尝试从环境变量读取
	if key := os.Getenv(envAPIKey); key != "" {
		fmt.Println("从环境变量 " + envAPIKey + " 读取API密钥")
		cfg.DeepSeek.APIKey = key
	}
}

func overlayDeepSeek(dst *DeepSeekConfig, src DeepSeekConfig) {
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Temperature != 0 {
		dst.Temperature = src.Temperature
	}
	if src.MaxTokens != 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
}
