package eventbus

// 事件类型定义
const (
	// 流水线相关事件
	EventPipelineState   = "pipeline:state"
	EventPipelineSegment = "pipeline:segment"
	EventPipelineDone    = "pipeline:done"

	// 分析相关事件
	EventAnalysisFallback = "analysis:fallback"

	// 系统事件
	EventSystemError = "system:error"
	EventSystemInfo  = "system:info"
)

// 事件数据结构
type StateEventData struct {
	RunID string `json:"run_id"`
	From  string `json:"from"`
	To    string `json:"to"`
}

type SegmentEventData struct {
	RunID     string `json:"run_id"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	Text      string `json:"text"`
	Voice     string `json:"voice"`
	Pitch     string `json:"pitch"`
	Succeeded bool   `json:"succeeded"`
	Cached    bool   `json:"cached,omitempty"`
	FilePath  string `json:"file_path,omitempty"`
}

type FallbackEventData struct {
	RunID  string `json:"run_id"`
	Reason string `json:"reason"`
}

type DoneEventData struct {
	RunID      string `json:"run_id"`
	OutputFile string `json:"output_file"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	Duration   string `json:"duration"`
}

type SystemEventData struct {
	Level   string      `json:"level"` // error, warn, info
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
