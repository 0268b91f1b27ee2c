package tts

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxFilenameLength = 250 // 文件名最大长度限制
	cacheNameOverhead = 50  // 音色名、摘要和后缀占用的预算
)

var unsafeFilenameChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]`)

// Cache 合成结果的文件缓存。同一(文本,音色,语速,音量,pitch)组合
// 只合成一次，重复运行同一本书时直接复用磁盘上的音频。
type Cache struct {
	dir     string
	enabled bool
}

// NewCache 创建合成缓存
func NewCache(dir string, enabled bool) *Cache {
	return &Cache{dir: dir, enabled: enabled}
}

// Enabled 缓存是否启用
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Load 查找缓存命中的音频数据
func (c *Cache) Load(req Request) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	data, err := os.ReadFile(filepath.Join(c.dir, c.filename(req)))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Store 将合成结果写入缓存，返回缓存文件路径
func (c *Cache) Store(req Request, data []byte) (string, error) {
	if !c.enabled {
		return "", nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("创建缓存目录失败: %v", err)
	}

	path := filepath.Join(c.dir, c.filename(req))
	if _, err := os.Stat(path); err == nil {
		return path, nil // 已有同键缓存，跳过写入
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("写入缓存文件失败: %v", err)
	}
	return path, nil
}

// filename 缓存文件名：安全化的文本前缀 + 音色 + 请求参数摘要
func (c *Cache) filename(req Request) string {
	sum := md5.Sum([]byte(req.Text + "|" + req.Voice + "|" + req.Rate + "|" + req.Volume + "|" + req.Pitch))
	digest := hex.EncodeToString(sum[:])[:8]

	safeText := sanitizeFilename(req.Text, maxFilenameLength-len(req.Voice)-cacheNameOverhead)
	return fmt.Sprintf("%s_%s_%s.mp3", safeText, req.Voice, digest)
}

// sanitizeFilename 清理文件名，移除不安全的字符
func sanitizeFilename(text string, maxLen int) string {
	safe := unsafeFilenameChars.ReplaceAllString(text, "_")
	safe = strings.Trim(safe, "_. ")

	if len(safe) > maxLen {
		safe = safe[:maxLen]
		// 截断可能切在多字节字符中间，去掉末尾的不完整字符
		for len(safe) > 0 {
			r, size := utf8.DecodeLastRuneInString(safe)
			if r == utf8.RuneError && size == 1 {
				safe = safe[:len(safe)-1]
			} else {
				break
			}
		}
	}

	if safe == "" {
		safe = "audio"
	}
	return safe
}
