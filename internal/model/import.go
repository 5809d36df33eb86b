package model

import "time"

// ImportResult 一次导入的汇总结果（只报告计数，不报告逐行诊断）
type ImportResult struct {
	ImportID       string            `json:"importId"`
	Filename       string            `json:"filename"`
	SheetName      string            `json:"sheetName,omitempty"`
	InsertedCount  int               `json:"insertedCount"`
	TotalRows      int               `json:"totalRows"`
	ValidRows      int               `json:"validRows"`
	DeletedCount   int64             `json:"deletedCount"`
	Mappings       map[string]string `json:"mappings"`
	UnmappedFields []string          `json:"unmappedFields"`
	Duration       time.Duration     `json:"duration"`
}
