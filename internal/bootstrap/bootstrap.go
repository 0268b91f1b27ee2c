package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sync/errgroup"

	"tingshu-go/internal/domain/analysis"
	_ "tingshu-go/internal/domain/analysis/deepseek"
	"tingshu-go/internal/domain/audio"
	"tingshu-go/internal/domain/eventbus"
	"tingshu-go/internal/domain/pipeline"
	"tingshu-go/internal/domain/tts"
	_ "tingshu-go/internal/domain/tts/edge"
	"tingshu-go/internal/platform/config"
	"tingshu-go/internal/platform/errors"
	"tingshu-go/internal/utils"
)

// Options 一次转换运行的输入
type Options struct {
	ConfigPath string
	Text       string
	OutputFile string
}

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      errors.Kind
	Execute   stepFn
}

type appState struct {
	opts       Options
	config     *config.Config
	configPath string
	warnings   []string
	logger     *utils.Logger
	analyzer   analysis.Provider
	synth      tts.Provider
	pipeline   *pipeline.Pipeline
}

// Run 执行一次完整的转换生命周期：加载配置、初始化依赖、运行流水线、清理资源。
// 收到SIGINT/SIGTERM时取消流水线并保留临时文件。
func Run(ctx context.Context, opts Options) error {
	state := &appState{opts: opts}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	logger := state.logger
	if state.config == nil || logger == nil {
		return errors.New(errors.KindBootstrap, "bootstrap.run", "config/logger not initialised")
	}
	if state.pipeline == nil {
		return errors.New(errors.KindBootstrap, "bootstrap.run", "pipeline not initialised")
	}

	logBootstrapGraph(steps, logger)
	defer logger.Close()

	defer func() {
		if err := state.analyzer.Cleanup(); err != nil {
			logger.WarnTag("引导", "分析提供者清理失败: %v", err)
		}
		if err := state.synth.Cleanup(); err != nil {
			logger.WarnTag("引导", "TTS提供者清理失败: %v", err)
		}
	}()

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)
	group.Go(func() error {
		_, err := state.pipeline.Run(groupCtx, opts.Text, opts.OutputFile)
		return err
	})

	if err := group.Wait(); err != nil {
		eventbus.Publish(eventbus.EventSystemError, eventbus.SystemEventData{
			Level:   "error",
			Message: err.Error(),
		})
		logger.ErrorTag("引导", "转换失败: %v", err)
		return err
	}

	logger.InfoTag("引导", "转换任务结束")
	return nil
}

func logBootstrapGraph(steps []initStep, logger *utils.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("引导", "初始化依赖关系概览")

	// 阶段名称映射
	stepNames := map[string]string{
		"config:load-file":            "加载配置文件",
		"logging:init-provider":       "初始化日志",
		"preflight:check-environment": "环境预检",
		"providers:init-analysis":     "初始化分析提供者",
		"providers:init-tts":          "初始化TTS提供者",
		"pipeline:init":               "初始化转换流水线",
	}

	for _, step := range steps {
		if name, ok := stepNames[step.ID]; ok {
			logger.InfoTag("引导", "%s (%s)", name, step.ID)
		}
	}
	logger.InfoTag("引导", "开始转换")
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return errors.New(errors.KindBootstrap, "execute init steps", "nil bootstrap state")
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return errors.New(
					errors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return errors.New(errors.KindBootstrap, step.ID, "missing execute function")
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *errors.Error
			if stderrors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = errors.KindBootstrap
			}
			return errors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load-file",
			Title:   "Load configuration file",
			Kind:    errors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load-file"},
			Kind:      errors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "preflight:check-environment",
			Title:     "Check ffmpeg and disk space",
			DependsOn: []string{"logging:init-provider"},
			Kind:      errors.KindBootstrap,
			Execute:   preflightStep,
		},
		{
			ID:        "providers:init-analysis",
			Title:     "Initialise analysis provider",
			DependsOn: []string{"logging:init-provider"},
			Kind:      errors.KindAnalysis,
			Execute:   initAnalysisStep,
		},
		{
			ID:        "providers:init-tts",
			Title:     "Initialise TTS provider",
			DependsOn: []string{"logging:init-provider"},
			Kind:      errors.KindSynthesis,
			Execute:   initTTSStep,
		},
		{
			ID:        "pipeline:init",
			Title:     "Initialise conversion pipeline",
			DependsOn: []string{"preflight:check-environment", "providers:init-analysis", "providers:init-tts"},
			Kind:      errors.KindPipeline,
			Execute:   initPipelineStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := config.NewLoader(state.opts.ConfigPath).Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	if state.configPath == "" {
		state.configPath = "默认配置"
	}
	state.warnings = result.Warnings
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return errors.New(errors.KindBootstrap, "logging:init-provider", "config not loaded")
	}

	logger, err := utils.NewLogger(&utils.LogCfg{
		LogLevel: state.config.Log.Level,
		LogDir:   state.config.Log.Dir,
		LogFile:  state.config.Log.File,
	})
	if err != nil {
		return errors.Wrap(errors.KindBootstrap, "logging:init-provider", "failed to initialize logger", err)
	}
	state.logger = logger
	utils.DefaultLogger = logger

	logger.InfoTag("引导", "日志模块就绪 [%s] %s", state.config.Log.Level, state.configPath)
	for _, w := range state.warnings {
		logger.WarnTag("配置", "%s", w)
	}

	// 设置事件处理器
	eventbus.SetupEventHandlers(logger)
	return nil
}

// preflightStep 在合成开始前确认ffmpeg可用且磁盘空间充足，
// 避免长时间合成后才在合并阶段失败。
func preflightStep(_ context.Context, state *appState) error {
	if err := audio.CheckFFmpeg(); err != nil {
		return err
	}
	return checkTempDirSpace(state.logger, state.config.Audio.TempDir, state.config.Audio.MinFreeMB)
}

// checkTempDirSpace 检查分段文件所在磁盘的可用空间。
// 临时目录可能尚不存在，先建出来再查它挂载的文件系统。
func checkTempDirSpace(logger *utils.Logger, tempDir string, minFree uint64) error {
	if minFree == 0 {
		return nil
	}

	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return errors.Wrap(errors.KindBootstrap, "preflight:check-environment", "create temp directory", err)
	}
	usage, err := disk.Usage(tempDir)
	if err != nil {
		logger.WarnTag("引导", "磁盘空间检查失败: %v", err)
		return nil
	}
	freeMB := usage.Free / (1024 * 1024)
	if freeMB < minFree {
		return errors.New(errors.KindBootstrap, "preflight:check-environment",
			fmt.Sprintf("insufficient disk space: %dMB free, %dMB required", freeMB, minFree))
	}
	logger.DebugTag("引导", "临时目录磁盘可用空间 %dMB", freeMB)
	return nil
}

func initAnalysisStep(_ context.Context, state *appState) error {
	cfg := state.config
	name := cfg.Analysis.Provider
	if !cfg.HasAPIKey() {
		state.logger.WarnTag("引导", "未配置可用的API密钥，文本分析将使用本地规则切分")
		name = "rule"
	}

	provider, err := analysis.Create(name, &analysis.Config{
		APIKey:      cfg.DeepSeek.APIKey,
		BaseURL:     cfg.DeepSeek.BaseURL,
		Model:       cfg.DeepSeek.Model,
		Temperature: cfg.DeepSeek.Temperature,
		MaxTokens:   cfg.DeepSeek.MaxTokens,
		MaxChars:    cfg.Analysis.MaxChars,
		Timeout:     time.Duration(cfg.DeepSeek.Timeout) * time.Second,
	})
	if err != nil {
		return errors.Wrap(errors.KindAnalysis, "providers:init-analysis", "failed to create analysis provider", err)
	}
	if err := provider.Initialize(); err != nil {
		return errors.Wrap(errors.KindAnalysis, "providers:init-analysis", "failed to initialize analysis provider", err)
	}
	state.analyzer = provider
	state.logger.InfoTag("引导", "分析提供者就绪: %s", provider.Name())
	return nil
}

func initTTSStep(_ context.Context, state *appState) error {
	cfg := state.config
	provider, err := tts.Create(cfg.TTS.Provider, &tts.Config{
		Voice:          cfg.TTS.NarratorVoice,
		Rate:           cfg.TTS.Rate,
		Volume:         cfg.TTS.Volume,
		Pitch:          cfg.TTS.Pitch,
		ReceiveTimeout: cfg.TTS.ReceiveTimeout,
	})
	if err != nil {
		return errors.Wrap(errors.KindSynthesis, "providers:init-tts", "failed to create tts provider", err)
	}
	if err := provider.Initialize(); err != nil {
		return errors.Wrap(errors.KindSynthesis, "providers:init-tts", "failed to initialize tts provider", err)
	}
	state.synth = provider
	state.logger.InfoTag("引导", "TTS提供者就绪: %s，旁白音色 %s", provider.Name(), cfg.TTS.NarratorVoice)
	return nil
}

func initPipelineStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil || state.logger == nil {
		return errors.New(errors.KindPipeline, "pipeline:init", "missing config/logger")
	}
	state.pipeline = pipeline.New(state.config, state.logger, state.analyzer, state.synth, audio.NewMerger())
	return nil
}

// loadConfigAndLogger 加载配置和日志记录器（用于测试）
func loadConfigAndLogger(configPath string) (*config.Config, *utils.Logger, error) {
	state := &appState{opts: Options{ConfigPath: configPath}}

	steps := []initStep{
		{
			ID:      "config:load-file",
			Title:   "Load configuration file",
			Kind:    errors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load-file"},
			Kind:      errors.KindBootstrap,
			Execute:   initLoggingStep,
		},
	}

	if err := executeInitSteps(context.Background(), steps, state); err != nil {
		return nil, nil, err
	}

	return state.config, state.logger, nil
}
