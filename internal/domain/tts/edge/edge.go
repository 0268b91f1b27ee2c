package edge

import (
	"context"

	"github.com/wujunwei928/edge-tts-go/edge_tts"

	"tingshu-go/internal/domain/tts"
	"tingshu-go/internal/platform/errors"
)

// 注册提供者
func init() {
	tts.Register("edge", NewProvider)
}

// Provider Edge TTS提供者，走微软在线语音服务
type Provider struct {
	*tts.BaseProvider
}

// NewProvider 创建Edge TTS提供者
func NewProvider(config *tts.Config) (tts.Provider, error) {
	return &Provider{BaseProvider: tts.NewBaseProvider(config)}, nil
}

// Name 提供者名称
func (p *Provider) Name() string {
	return "edge"
}

// Synthesize 合成单段音频。服务端流式返回，这里聚合成完整的MP3字节。
func (p *Provider) Synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.KindSynthesis, "edge.synthesize", "context finished before synthesis", err)
	}
	if req.Text == "" {
		return nil, errors.New(errors.KindSynthesis, "edge.synthesize", "empty text")
	}

	req = p.ApplyDefaults(req)

	opts := []edge_tts.CommunicateOption{
		edge_tts.SetVoice(req.Voice),
		edge_tts.SetRate(req.Rate),
		edge_tts.SetVolume(req.Volume),
		edge_tts.SetPitch(req.Pitch),
	}
	if timeout := p.Config().ReceiveTimeout; timeout > 0 {
		opts = append(opts, edge_tts.SetReceiveTimeout(timeout))
	}

	conn, err := edge_tts.NewCommunicate(req.Text, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.KindSynthesis, "edge.synthesize", "create communicate failed", err)
	}

	data, err := conn.Stream()
	if err != nil {
		return nil, errors.Wrap(errors.KindSynthesis, "edge.synthesize", "stream synthesis failed", err)
	}
	if len(data) == 0 {
		return nil, errors.New(errors.KindSynthesis, "edge.synthesize", "service returned no audio")
	}
	return data, nil
}
