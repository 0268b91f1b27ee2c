package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"tingshu-go/internal/bootstrap"
	"tingshu-go/internal/utils"
)

var (
	cfgFile    string
	outputFile string
	inputFile  string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tingshu [输入文件或文本]",
		Short: "把小说文本转换成多角色有声书",
		Long: `tingshu 读取一段叙事文本，识别旁白与角色对话，
为每个角色分配独立音色，逐段合成语音并合并为一个MP3文件。

输入可以是.txt文件、带text字段的.json文件，或直接给出的文本。`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			source := inputFile
			if len(args) > 0 {
				source = args[0]
			}
			if strings.TrimSpace(source) == "" {
				_ = cmd.Help()
				return fmt.Errorf("未提供输入文本，请使用位置参数或 -f 指定")
			}

			text, err := loadInputText(source)
			if err != nil {
				return err
			}
			// 文本里混入的控制字符会污染分析JSON和合成请求
			text = utils.RemoveControlCharacters(text)
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("输入文本为空")
			}

			fmt.Printf("[%s] [INFO] [引导] 开始启动 tingshu...\n", time.Now().Format("2006-01-02 15:04:05.000"))
			return bootstrap.Run(cmd.Context(), bootstrap.Options{
				ConfigPath: cfgFile,
				Text:       text,
				OutputFile: outputFile,
			})
		},
	}

	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "config.yaml", "配置文件路径")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", filepath.Join("output", "audiobook.mp3"), "输出音频文件路径")
	rootCmd.Flags().StringVarP(&inputFile, "file", "f", "", "输入文本文件路径（与位置参数二选一）")

	return rootCmd
}

// loadInputText 解析输入来源。存在的文件按扩展名读取：.json取其text字段，
// 其余一律按纯文本读取；不存在的路径则把输入本身当作待转换文本。
func loadInputText(source string) (string, error) {
	info, err := os.Stat(source)
	if err != nil || info.IsDir() {
		return source, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("读取输入文件失败: %w", err)
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".json":
		var doc struct {
			Text string `json:"text"`
		}
		if err := sonic.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("解析JSON输入失败: %w", err)
		}
		return doc.Text, nil
	default:
		return string(data), nil
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "tingshu failed: %v\n", err)
		os.Exit(1)
	}
}
