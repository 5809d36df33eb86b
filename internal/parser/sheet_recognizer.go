package parser

import "strings"

// identityFields 决定一行是否保留的四个字段，同时用于判断 Sheet 是否为销售明细
var identityFields = []Field{FieldCategory, FieldBranch, FieldSupplier, FieldArticleNo}

// SheetRecognitionResult Sheet 识别结果
type SheetRecognitionResult struct {
	SheetName     string
	Confidence    float64 // 已识别字段数 / 全部字段数
	MatchedFields []Field
	HasIdentity   bool // 至少识别出一个标识字段
}

// SheetRecognizer 销售明细 Sheet 识别器
type SheetRecognizer struct {
	aliases AliasTable
}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer(aliases AliasTable) *SheetRecognizer {
	return &SheetRecognizer{aliases: aliases}
}

// Recognize 根据表头识别 Sheet
func (r *SheetRecognizer) Recognize(sheetName string, headers []string) SheetRecognitionResult {
	present := make([]string, 0, len(headers))
	for _, h := range headers {
		if strings.TrimSpace(h) != "" {
			present = append(present, h)
		}
	}

	// 与导入时的列解析保持一致：表头按原文匹配
	cols := ResolveColumns(present, r.aliases)
	result := SheetRecognitionResult{SheetName: sheetName}
	for _, f := range r.aliases.Fields() {
		if _, ok := cols[f]; ok {
			result.MatchedFields = append(result.MatchedFields, f)
		}
	}
	for _, f := range identityFields {
		if _, ok := cols[f]; ok {
			result.HasIdentity = true
			break
		}
	}
	if total := len(r.aliases); total > 0 {
		result.Confidence = float64(len(result.MatchedFields)) / float64(total)
	}
	return result
}

// Pick 选出第一个带标识字段的 Sheet；都不满足时返回第一个 Sheet
//
// headers 与 sheetNames 按下标一一对应。
func (r *SheetRecognizer) Pick(sheetNames []string, headers [][]string) int {
	for i, name := range sheetNames {
		if i >= len(headers) {
			break
		}
		if r.Recognize(name, headers[i]).HasIdentity {
			return i
		}
	}
	return 0
}
