package parser

import (
	"math"
	"strconv"
	"strings"
)

// 供应商用来表示“不适用”的占位值
var (
	fabricPlaceholders  = []string{"[None]", "None"}
	conceptPlaceholders = []string{"[None]", "None", "1 PAIR", "1 PC", "1 SET"}
)

// CleanString 清洗字符串字段
//
// 去除首尾空白；结果为空，或恰好是 "undefined"/"null" 时返回空字符串。
// 缺失的列按空字符串传入。
func CleanString(value string) string {
	cleaned := strings.TrimSpace(value)
	if cleaned == "undefined" || cleaned == "null" {
		return ""
	}
	return cleaned
}

// CleanFabric 清洗面料字段
func CleanFabric(value string) string {
	return dropPlaceholder(CleanString(value), fabricPlaceholders)
}

// CleanConcept 清洗款式概念字段（件/套/双等销售单位不是款式名）
func CleanConcept(value string) string {
	return dropPlaceholder(CleanString(value), conceptPlaceholders)
}

// ParseNumeric 解析数值字段，空值或无法解析时返回 defaultValue
//
// 不做千分位、货币符号处理；结果保证是有限数。
func ParseNumeric(value string, defaultValue float64) float64 {
	s := strings.TrimSpace(value)
	if s == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return defaultValue
	}
	return f
}

func dropPlaceholder(cleaned string, placeholders []string) string {
	for _, p := range placeholders {
		if cleaned == p {
			return ""
		}
	}
	return cleaned
}
