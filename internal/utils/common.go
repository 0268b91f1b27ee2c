package utils

import (
	"regexp"
	"strings"
)

// IsInArray 判断字符串是否在数组中
func IsInArray(target string, arr []string) bool {
	for _, item := range arr {
		if item == target {
			return true
		}
	}
	return false
}

// TruncateRunes 按字符数截断文本，避免截断多字节字符
func TruncateRunes(text string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

// RemoveAngleBracketContent 移除尖括号及其内容
func RemoveAngleBracketContent(text string) string {
	re := regexp.MustCompile(`<[^>]*>`)
	return re.ReplaceAllString(text, "")
}

// RemoveControlCharacters 移除控制字符
func RemoveControlCharacters(text string) string {
	// 移除常见的控制字符，但保留换行符和制表符
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, text)
}
