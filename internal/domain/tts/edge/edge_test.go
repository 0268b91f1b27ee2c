package edge

import (
	"context"
	"testing"

	"tingshu-go/internal/domain/tts"
	"tingshu-go/internal/platform/errors"
)

func TestFactoryRegistration(t *testing.T) {
	provider, err := tts.Create("edge", &tts.Config{Voice: "zh-CN-XiaoxiaoNeural"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if provider.Name() != "edge" {
		t.Errorf("提供者名称不匹配: %q", provider.Name())
	}
	if err := provider.Initialize(); err != nil {
		t.Errorf("Initialize() error = %v", err)
	}
}

func TestSynthesize_EmptyText(t *testing.T) {
	provider, err := NewProvider(&tts.Config{Voice: "zh-CN-XiaoxiaoNeural"})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	_, err = provider.Synthesize(context.Background(), tts.Request{})
	if err == nil {
		t.Fatal("空文本应合成失败")
	}
	if !errors.IsKind(err, errors.KindSynthesis) {
		t.Errorf("错误类别不匹配: %v", err)
	}
}

func TestSynthesize_FinishedContext(t *testing.T) {
	provider, err := NewProvider(&tts.Config{Voice: "zh-CN-XiaoxiaoNeural"})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := provider.Synthesize(ctx, tts.Request{Text: "文本"}); err == nil {
		t.Fatal("已取消的上下文应直接失败")
	}
}
