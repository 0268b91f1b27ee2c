package deepseek

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"tingshu-go/internal/domain/analysis"
	"tingshu-go/internal/domain/segment"
	"tingshu-go/internal/platform/errors"
	"tingshu-go/internal/utils"
)

// 注册提供者
func init() {
	analysis.Register("deepseek", NewProvider)
}

const systemPrompt = "你是一个专业的文本分析助手，专门分析小说和文章中的旁白和角色对话。"

// Provider DeepSeek文本分析提供者
type Provider struct {
	*analysis.BaseProvider
	client   *openai.Client
	maxChars int
}

// NewProvider 创建DeepSeek提供者
func NewProvider(config *analysis.Config) (analysis.Provider, error) {
	base := analysis.NewBaseProvider(config)
	provider := &Provider{
		BaseProvider: base,
		maxChars:     config.MaxChars,
	}
	if provider.maxChars <= 0 {
		provider.maxChars = 2000
	}

	return provider, nil
}

// Name 提供者名称
func (p *Provider) Name() string {
	return "deepseek"
}

// Initialize 初始化提供者
func (p *Provider) Initialize() error {
	config := p.Config()
	if config.APIKey == "" {
		return errors.New(errors.KindAnalysis, "deepseek.initialize", "missing DeepSeek API key")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	p.client = openai.NewClientWithConfig(clientConfig)
	return nil
}

// Analyze 调用DeepSeek分析文本，解析返回的片段数组
func (p *Provider) Analyze(ctx context.Context, text string) ([]segment.Segment, error) {
	if p.client == nil {
		if err := p.Initialize(); err != nil {
			return nil, err
		}
	}

	config := p.Config()
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(text, p.maxChars)},
		},
		Temperature: float32(config.Temperature),
		MaxTokens:   config.MaxTokens,
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindAnalysis, "deepseek.analyze", "chat completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New(errors.KindAnalysis, "deepseek.analyze", "empty completion response")
	}

	return analysis.ParseResponse(resp.Choices[0].Message.Content)
}

// buildPrompt 构建分析提示词，只发送文本前缀以控制token消耗
func buildPrompt(text string, maxChars int) string {
	return fmt.Sprintf(`
请分析以下文本，识别出旁白和各个角色的对话，并推断每个角色的性别。文本内容：

%s...

请按照以下JSON格式返回分析结果：
[
  {
    "type": "narrator",
    "text": "旁白文本内容",
    "voice": "narrator"
  },
  {
    "type": "character",
    "character": "角色名",
    "gender": "male/female/unknown",
    "text": "角色对话内容",
    "voice": "character_角色名"
  },
  ...
]

规则：
1. 旁白：描述性文字、环境描写、心理活动等非对话内容
2. 角色对话：引号内的内容，如"你好"、「你好」、『你好』等
3. 如果无法确定角色名，使用"unknown"作为角色名
4. 推断角色性别：根据角色名字、上下文、称呼等推断性别
   - male: 男性角色
   - female: 女性角色
   - unknown: 无法确定性别
5. 保持文本的原始顺序
6. 不要修改原始文本内容
`, utils.TruncateRunes(text, maxChars))
}
