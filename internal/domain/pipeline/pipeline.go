package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tingshu-go/internal/domain/analysis"
	"tingshu-go/internal/domain/eventbus"
	"tingshu-go/internal/domain/segment"
	"tingshu-go/internal/domain/tts"
	"tingshu-go/internal/domain/voice"
	"tingshu-go/internal/platform/config"
	"tingshu-go/internal/platform/errors"
	"tingshu-go/internal/utils"
)

// Muxer 把有序的音频分段合并成单个文件
type Muxer interface {
	Merge(ctx context.Context, audioFiles []string, outputFile string) error
}

// Result 一次转换的产物信息
type Result struct {
	RunID        string
	OutputFile   string
	AnalysisFile string
	Segments     int
	Succeeded    int
	Failed       int
	Duration     time.Duration
}

// Pipeline 把文本分析、音色分配、语音合成与音频合并串成一次完整转换。
// 每次Run使用独立的RunContext，角色的性别与音色缓存不跨运行保留。
type Pipeline struct {
	cfg      *config.Config
	logger   *utils.Logger
	analyzer analysis.Provider
	synth    tts.Provider
	muxer    Muxer
	voices   *voice.Engine
	cache    *tts.Cache
}

// New 创建转换流水线
func New(cfg *config.Config, logger *utils.Logger, analyzer analysis.Provider, synth tts.Provider, muxer Muxer) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		logger:   logger,
		analyzer: analyzer,
		synth:    synth,
		muxer:    muxer,
		voices:   voice.NewEngine(&cfg.TTS),
		cache:    tts.NewCache(cfg.TTS.CacheDir, cfg.TTS.CacheEnabled),
	}
}

// Run 执行一次完整的文本到有声书转换
func (p *Pipeline) Run(ctx context.Context, text, outputFile string) (*Result, error) {
	runID := uuid.NewString()[:8]
	sm := NewStateMachine()
	rc := voice.NewRunContext()
	result := &Result{RunID: runID, OutputFile: outputFile}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return result, errors.Wrap(errors.KindPipeline, "pipeline.run", "create output directory", err)
	}

	p.transition(sm, runID, StateAnalyzing)
	segments := p.analyze(ctx, runID, text)
	if len(segments) == 0 {
		p.transition(sm, runID, StateFailed)
		return result, errors.New(errors.KindPipeline, "pipeline.run", "no segments produced from input text")
	}
	result.Segments = len(segments)
	p.logger.InfoTag("分析", "共识别出 %d 个语音段", len(segments))

	// 分析结果落盘便于人工检查，写入失败不影响转换
	analysisFile := segment.DumpPath(outputFile)
	if err := segment.Dump(segments, analysisFile); err != nil {
		p.logger.WarnTag("分析", "保存分析结果失败: %v", err)
	} else {
		result.AnalysisFile = analysisFile
		p.logger.InfoTag("分析", "分析结果已保存到: %s", analysisFile)
	}

	p.transition(sm, runID, StateSynthesizing)
	sessionDir := filepath.Join(p.cfg.Audio.TempDir, "run_"+runID)
	files, failed := p.synthesizeAll(ctx, runID, sessionDir, rc, segments)
	result.Succeeded = len(files)
	result.Failed = failed
	if err := ctx.Err(); err != nil {
		p.transition(sm, runID, StateFailed)
		return result, errors.Wrap(errors.KindPipeline, "pipeline.run", "conversion cancelled", err)
	}
	if len(files) == 0 {
		p.transition(sm, runID, StateFailed)
		return result, errors.New(errors.KindPipeline, "pipeline.run", "all segments failed to synthesize")
	}
	if failed > 0 {
		p.logger.WarnTag("合成", "%d 段合成失败，已跳过", failed)
	}

	p.transition(sm, runID, StateMerging)
	p.logger.InfoTag("合并", "正在合并 %d 个音频文件...", len(files))
	if err := p.muxer.Merge(ctx, files, outputFile); err != nil {
		p.transition(sm, runID, StateFailed)
		return result, err
	}

	// 合并成功后才清理本次运行的临时目录，失败时保留分段文件便于排查
	if err := os.RemoveAll(sessionDir); err != nil {
		p.logger.WarnTag("合并", "清理临时目录失败: %v", err)
	}

	result.Duration = p.outputDuration(outputFile, len(files))
	p.transition(sm, runID, StateDone)

	eventbus.Publish(eventbus.EventPipelineDone, eventbus.DoneEventData{
		RunID:      runID,
		OutputFile: outputFile,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed,
		Duration:   utils.FormatDurationCN(result.Duration),
	})
	p.logger.InfoTag("流水线", "转换完成: %s，时长约 %s", outputFile, utils.FormatDurationCN(result.Duration))
	return result, nil
}

// transition 推进状态机并广播状态事件
func (p *Pipeline) transition(sm *StateMachine, runID string, to State) {
	from := sm.Current()
	if !sm.Transition(to) {
		p.logger.WarnTag("流水线", "非法状态迁移: %s -> %s", from, to)
		return
	}
	p.logger.DebugTag("流水线", "状态迁移: %s -> %s", from, to)
	eventbus.Publish(eventbus.EventPipelineState, eventbus.StateEventData{
		RunID: runID,
		From:  from.String(),
		To:    to.String(),
	})
}

// analyze 调用分析服务切分文本，失败时降级为本地规则切分
func (p *Pipeline) analyze(ctx context.Context, runID, text string) []segment.Segment {
	p.logger.InfoTag("分析", "正在分析文本结构...")
	segments, err := p.analyzer.Analyze(ctx, text)
	if err == nil {
		return segments
	}

	p.logger.WarnTag("分析", "智能分析失败，降级为规则切分: %v", err)
	eventbus.Publish(eventbus.EventAnalysisFallback, eventbus.FallbackEventData{
		RunID:  runID,
		Reason: err.Error(),
	})
	return analysis.RuleSegment(text)
}

// synthesizeAll 逐段合成语音。单段失败只跳过该段，空白段直接忽略，
// 分段文件名保留原始序号，保证合并顺序与分析顺序一致。
// 分段文件写入本次运行独立的临时目录，多次运行之间互不干扰。
func (p *Pipeline) synthesizeAll(ctx context.Context, runID, tempDir string, rc *voice.RunContext, segments []segment.Segment) (files []string, failed int) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		p.logger.ErrorTag("合成", "创建临时目录失败: %v", err)
		return nil, len(segments)
	}

	total := len(segments)
	p.logger.InfoTag("合成", "开始合成 %d 段语音", total)

	for i, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		if ctx.Err() != nil {
			p.logger.WarnTag("合成", "转换被取消，停止合成")
			break
		}

		voiceName, pitch := p.voices.Resolve(rc, seg)
		p.logger.InfoTag("合成", "正在合成第 %d/%d 段: %s...", i+1, total, utils.TruncateRunes(seg.Text, 50))

		path, cached, err := p.synthesizeSegment(ctx, tempDir, i, seg.Text, voiceName, pitch)
		event := eventbus.SegmentEventData{
			RunID: runID,
			Index: i,
			Total: total,
			Text:  seg.Text,
			Voice: voiceName,
			Pitch: pitch,
		}
		if err != nil {
			failed++
			p.logger.WarnTag("合成", "第 %d 段合成失败: %v，跳过", i+1, err)
			eventbus.Publish(eventbus.EventPipelineSegment, event)
			continue
		}
		event.Succeeded = true
		event.Cached = cached
		event.FilePath = path
		eventbus.Publish(eventbus.EventPipelineSegment, event)
		files = append(files, path)
	}
	return files, failed
}

// synthesizeSegment 合成单段音频并写入临时文件，命中缓存时跳过合成
func (p *Pipeline) synthesizeSegment(ctx context.Context, tempDir string, index int, text, voiceName, pitch string) (string, bool, error) {
	req := tts.Request{
		Text:   text,
		Voice:  voiceName,
		Rate:   p.cfg.TTS.Rate,
		Volume: p.cfg.TTS.Volume,
		Pitch:  pitch,
	}

	data, cached := p.cache.Load(req)
	if !cached {
		var err error
		data, err = p.synth.Synthesize(ctx, req)
		if err != nil {
			return "", false, err
		}
		if _, err := p.cache.Store(req, data); err != nil {
			p.logger.WarnTag("合成", "写入语音缓存失败: %v", err)
		}
	}

	path := filepath.Join(tempDir, fmt.Sprintf("segment_%04d.mp3", index))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", cached, errors.Wrap(errors.KindPipeline, "pipeline.segment", "write segment file", err)
	}
	return path, cached, nil
}

// outputDuration 读取产物的真实时长，解码失败时按段数估算
func (p *Pipeline) outputDuration(outputFile string, numSegments int) time.Duration {
	if d, err := utils.MP3Duration(outputFile); err == nil {
		return d
	}
	return utils.EstimateDuration(numSegments)
}
