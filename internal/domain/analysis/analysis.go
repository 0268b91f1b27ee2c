package analysis

import (
	"context"
	"fmt"
	"time"

	"tingshu-go/internal/domain/segment"
)

// Config 分析提供者配置
type Config struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature,omitempty"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
	MaxChars    int     `yaml:"max_chars,omitempty"` // 发送文本前缀的字符数上限
	Timeout     time.Duration
}

// Provider 文本分析提供者接口。把原始文本切分为旁白/角色片段并推断角色性别。
type Provider interface {
	Name() string
	Initialize() error
	Analyze(ctx context.Context, text string) ([]segment.Segment, error)
	Cleanup() error
}

// BaseProvider 分析提供者基础实现
type BaseProvider struct {
	config *Config
}

// NewBaseProvider 创建分析基础提供者
func NewBaseProvider(config *Config) *BaseProvider {
	return &BaseProvider{config: config}
}

// Config 获取配置
func (p *BaseProvider) Config() *Config {
	return p.config
}

// Initialize 初始化提供者
func (p *BaseProvider) Initialize() error {
	return nil
}

// Cleanup 清理资源
func (p *BaseProvider) Cleanup() error {
	return nil
}

// Factory 分析提供者工厂函数类型
type Factory func(config *Config) (Provider, error)

var factories = make(map[string]Factory)

// Register 注册分析提供者工厂
func Register(name string, factory Factory) {
	factories[name] = factory
}

// Create 创建分析提供者实例
func Create(name string, config *Config) (Provider, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("未知的分析提供者: %s", name)
	}

	provider, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("创建分析提供者失败: %v", err)
	}

	return provider, nil
}
