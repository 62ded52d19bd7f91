// Package i18n 提供后台接口的多语言消息。
package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	LocaleZH = "zh-CN"
	LocaleTW = "zh-TW"
	LocaleEN = "en-US"

	// DefaultLocale 无法协商时使用的语言
	DefaultLocale = LocaleZH

	// LocaleHeader 前端显式指定语言的请求头
	LocaleHeader = "X-Locale"
)

var supportedTags = []language.Tag{
	language.MustParse(LocaleZH),
	language.MustParse(LocaleTW),
	language.MustParse(LocaleEN),
}

var supportedLocales = []string{LocaleZH, LocaleTW, LocaleEN}

var matcher = language.NewMatcher(supportedTags)

// ResolveLocale 依次读取 X-Locale、Accept-Language，协商失败回退到默认语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if explicit := strings.TrimSpace(c.GetHeader(LocaleHeader)); explicit != "" {
		return NormalizeLocale(explicit)
	}
	accept := strings.TrimSpace(c.GetHeader("Accept-Language"))
	if accept == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return supportedLocales[index]
}

// NormalizeLocale 将任意语言标签归一到受支持的语言
func NormalizeLocale(raw string) string {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return DefaultLocale
	}
	return supportedLocales[index]
}

// T 翻译消息键，缺失时回退默认语言，再回退到键本身
func T(locale, key string) string {
	if msgs, ok := catalog[locale]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
