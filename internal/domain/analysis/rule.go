package analysis

import (
	"context"

	"tingshu-go/internal/domain/segment"
)

func init() {
	Register("rule", func(config *Config) (Provider, error) {
		return NewRuleProvider(config), nil
	})
}

// RuleProvider 本地规则分析器，按引号切分旁白和对话，不依赖任何外部服务。
// 未配置API密钥时用它替代deepseek。
type RuleProvider struct {
	*BaseProvider
}

func NewRuleProvider(config *Config) *RuleProvider {
	return &RuleProvider{BaseProvider: NewBaseProvider(config)}
}

func (p *RuleProvider) Name() string {
	return "rule"
}

// Analyze 使用引号规则切分文本
func (p *RuleProvider) Analyze(ctx context.Context, text string) ([]segment.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return RuleSegment(text), nil
}
