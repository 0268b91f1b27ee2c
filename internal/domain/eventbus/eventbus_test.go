package eventbus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tingshu-go/internal/utils"
)

func newTestLogger(t *testing.T) (*utils.Logger, string) {
	t.Helper()
	dir := t.TempDir()
	logger, err := utils.NewLogger(&utils.LogCfg{
		LogLevel: "debug",
		LogDir:   dir,
		LogFile:  "events.log",
	})
	if err != nil {
		t.Fatalf("创建测试日志器失败: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, filepath.Join(dir, "events.log")
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	time.Sleep(10 * time.Millisecond)
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	return string(content)
}

func TestPublishSubscribe_InOrder(t *testing.T) {
	const topic = "test:order"

	var got []int
	fn := func(args ...interface{}) {
		if len(args) > 0 {
			got = append(got, args[0].(int))
		}
	}
	if err := Subscribe(topic, fn); err != nil {
		t.Fatalf("订阅失败: %v", err)
	}
	defer Unsubscribe(topic, fn)

	for i := 0; i < 5; i++ {
		Publish(topic, i)
	}

	if len(got) != 5 {
		t.Fatalf("期望收到5个事件，实际 %d 个", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Errorf("事件顺序错乱: 位置 %d 收到 %d", i, v)
		}
	}
}

func TestDefaultEventHandler_SegmentEvents(t *testing.T) {
	logger, logPath := newTestLogger(t)
	handler := NewDefaultEventHandler(logger)

	handler.Handle(EventPipelineSegment, SegmentEventData{
		RunID:     "run-1",
		Index:     0,
		Total:     3,
		Text:      "你好，世界。",
		Voice:     "zh-CN-YunxiNeural",
		Pitch:     "+0Hz",
		Succeeded: true,
		FilePath:  "/tmp/segment_0000.mp3",
	})
	handler.Handle(EventPipelineSegment, SegmentEventData{
		RunID:     "run-1",
		Index:     1,
		Total:     3,
		Text:      "这一段合成失败了",
		Succeeded: false,
	})

	content := readLog(t, logPath)
	if !strings.Contains(content, "第 1/3 段完成") {
		t.Errorf("日志缺少成功段记录: %s", content)
	}
	if !strings.Contains(content, "zh-CN-YunxiNeural") {
		t.Errorf("日志缺少音色信息: %s", content)
	}
	if !strings.Contains(content, "第 2/3 段失败") {
		t.Errorf("日志缺少失败段记录: %s", content)
	}
}

func TestDefaultEventHandler_StateAndDone(t *testing.T) {
	logger, logPath := newTestLogger(t)
	handler := NewDefaultEventHandler(logger)

	handler.Handle(EventPipelineState, StateEventData{
		RunID: "run-2",
		From:  "分析中",
		To:    "合成中",
	})
	handler.Handle(EventPipelineDone, DoneEventData{
		RunID:      "run-2",
		OutputFile: "output/audiobook.mp3",
		Succeeded:  12,
		Failed:     1,
		Duration:   "1分钟5秒",
	})

	content := readLog(t, logPath)
	if !strings.Contains(content, "分析中") || !strings.Contains(content, "合成中") {
		t.Errorf("日志缺少状态迁移记录: %s", content)
	}
	if !strings.Contains(content, "output/audiobook.mp3") {
		t.Errorf("日志缺少输出文件记录: %s", content)
	}
}

func TestDefaultEventHandler_SystemLevels(t *testing.T) {
	logger, logPath := newTestLogger(t)
	handler := NewDefaultEventHandler(logger)

	handler.Handle(EventSystemError, SystemEventData{
		Level:   "error",
		Message: "磁盘空间不足",
	})
	handler.Handle(EventSystemInfo, SystemEventData{
		Level:   "info",
		Message: "缓存目录已就绪",
	})

	content := readLog(t, logPath)
	if !strings.Contains(content, "磁盘空间不足") {
		t.Errorf("日志缺少系统错误记录: %s", content)
	}
	if !strings.Contains(content, "缓存目录已就绪") {
		t.Errorf("日志缺少系统信息记录: %s", content)
	}
}

func TestDefaultEventHandler_MismatchedPayloadDoesNotPanic(t *testing.T) {
	logger, logPath := newTestLogger(t)
	handler := NewDefaultEventHandler(logger)

	handler.Handle(EventPipelineState, "不是事件结构体")
	handler.Handle(EventPipelineDone, nil)

	content := readLog(t, logPath)
	if !strings.Contains(content, "未知载荷") {
		t.Errorf("载荷类型不符应记入日志: %s", content)
	}
	if !strings.Contains(content, "string") {
		t.Errorf("日志应包含实际载荷类型: %s", content)
	}
}

func TestSetupEventHandlers_PublishReachesLog(t *testing.T) {
	logger, logPath := newTestLogger(t)
	SetupEventHandlers(logger)

	Publish(EventAnalysisFallback, FallbackEventData{
		RunID:  "run-3",
		Reason: "LLM响应不是合法JSON",
	})

	content := readLog(t, logPath)
	if !strings.Contains(content, "降级为规则切分") {
		t.Errorf("降级事件未写入日志: %s", content)
	}
	if !strings.Contains(content, "LLM响应不是合法JSON") {
		t.Errorf("降级原因未写入日志: %s", content)
	}
}
