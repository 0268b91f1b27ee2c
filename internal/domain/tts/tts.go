package tts

import (
	"context"
	"fmt"
)

// Config TTS提供者配置。Rate/Volume/Pitch是请求未指定时的默认值。
type Config struct {
	Voice          string `yaml:"voice,omitempty"`
	Rate           string `yaml:"rate,omitempty"`
	Volume         string `yaml:"volume,omitempty"`
	Pitch          string `yaml:"pitch,omitempty"`
	ReceiveTimeout int    `yaml:"receive_timeout,omitempty"` // 单段合成超时，秒
}

// Request 单段合成请求
type Request struct {
	Text   string
	Voice  string
	Rate   string
	Volume string
	Pitch  string
}

// Provider 语音合成提供者接口，一次调用产出一段完整音频
type Provider interface {
	Name() string
	Initialize() error
	Synthesize(ctx context.Context, req Request) ([]byte, error)
	Cleanup() error
}

// BaseProvider TTS基础实现
type BaseProvider struct {
	config *Config
}

// NewBaseProvider 创建TTS基础提供者
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

// ApplyDefaults 用配置默认值补齐请求中的空字段
func (p *BaseProvider) ApplyDefaults(req Request) Request {
	if req.Voice == "" {
		req.Voice = p.config.Voice
	}
	if req.Rate == "" {
		req.Rate = p.config.Rate
	}
	if req.Volume == "" {
		req.Volume = p.config.Volume
	}
	if req.Pitch == "" {
		req.Pitch = p.config.Pitch
	}
	return req
}

// Factory TTS工厂函数类型
type Factory func(config *Config) (Provider, error)

var factories = make(map[string]Factory)

// Register 注册TTS提供者工厂
func Register(name string, factory Factory) {
	factories[name] = factory
}

// Create 创建TTS提供者实例
func Create(name string, config *Config) (Provider, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("未知的TTS提供者: %s", name)
	}

	provider, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("创建TTS提供者失败: %v", err)
	}

	return provider, nil
}
