package eventbus

import (
	"tingshu-go/internal/utils"
)

// EventHandler 事件处理器接口
type EventHandler interface {
	Handle(eventType string, data interface{})
}

// DefaultEventHandler 默认事件处理器，把流水线事件写入日志。
// 进度类事件只在debug级别记录，避免和流水线自身的进度输出重复。
type DefaultEventHandler struct {
	logger *utils.Logger
}

// NewDefaultEventHandler 创建默认事件处理器
func NewDefaultEventHandler(logger *utils.Logger) *DefaultEventHandler {
	return &DefaultEventHandler{logger: logger}
}

// Handle 处理事件。按载荷类型分发，载荷与主题不符时只记日志，不让订阅者panic。
func (h *DefaultEventHandler) Handle(eventType string, data interface{}) {
	switch d := data.(type) {
	case StateEventData:
		h.handleState(d)
	case SegmentEventData:
		h.handleSegment(d)
	case DoneEventData:
		h.handleDone(d)
	case FallbackEventData:
		h.handleFallback(d)
	case SystemEventData:
		h.handleSystem(d)
	default:
		h.logger.WarnTag("事件", "%s 事件携带未知载荷: %T", eventType, data)
	}
}

// handleState 处理状态迁移事件
func (h *DefaultEventHandler) handleState(data StateEventData) {
	h.logger.DebugTag("事件", "运行 %s 状态迁移: %s -> %s", data.RunID, data.From, data.To)
}

// handleSegment 处理单段合成事件
func (h *DefaultEventHandler) handleSegment(data SegmentEventData) {
	if data.Succeeded {
		h.logger.DebugTag("事件", "第 %d/%d 段完成: 音色=%s, 音调=%s, 缓存=%v, 文件=%s",
			data.Index+1, data.Total, data.Voice, data.Pitch, data.Cached, data.FilePath)
		return
	}
	h.logger.DebugTag("事件", "第 %d/%d 段失败: %s",
		data.Index+1, data.Total, utils.TruncateRunes(data.Text, 20))
}

// handleDone 处理运行完成事件
func (h *DefaultEventHandler) handleDone(data DoneEventData) {
	h.logger.DebugTag("事件", "运行 %s 完成: 输出=%s, 成功=%d, 失败=%d, 时长=%s",
		data.RunID, data.OutputFile, data.Succeeded, data.Failed, data.Duration)
}

// handleFallback 处理分析降级事件
func (h *DefaultEventHandler) handleFallback(data FallbackEventData) {
	h.logger.DebugTag("事件", "运行 %s 分析降级为规则切分: %s", data.RunID, data.Reason)
}

// handleSystem 处理系统事件
func (h *DefaultEventHandler) handleSystem(data SystemEventData) {
	switch data.Level {
	case "error":
		h.logger.ErrorTag("事件", "%s", data.Message)
	case "warn":
		h.logger.WarnTag("事件", "%s", data.Message)
	default:
		h.logger.InfoTag("事件", "%s", data.Message)
	}
}

// SetupEventHandlers 注册默认事件处理器
func SetupEventHandlers(logger *utils.Logger) {
	handler := NewDefaultEventHandler(logger)

	Subscribe(EventPipelineState, func(args ...interface{}) {
		if len(args) > 0 {
			handler.Handle(EventPipelineState, args[0])
		}
	})

	Subscribe(EventPipelineSegment, func(args ...interface{}) {
		if len(args) > 0 {
			handler.Handle(EventPipelineSegment, args[0])
		}
	})

	Subscribe(EventPipelineDone, func(args ...interface{}) {
		if len(args) > 0 {
			handler.Handle(EventPipelineDone, args[0])
		}
	})

	Subscribe(EventAnalysisFallback, func(args ...interface{}) {
		if len(args) > 0 {
			handler.Handle(EventAnalysisFallback, args[0])
		}
	})

	Subscribe(EventSystemError, func(args ...interface{}) {
		if len(args) > 0 {
			handler.Handle(EventSystemError, args[0])
		}
	})
}
