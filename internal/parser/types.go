package parser

import "salesboard/internal/model"

// Field 规范字段名
type Field string

const (
	FieldCategory  Field = "category"
	FieldBranch    Field = "branch"
	FieldSupplier  Field = "supplier"
	FieldArticleNo Field = "articleNo"
	FieldFabric    Field = "fabric"
	FieldConcept   Field = "concept"
	FieldNetSlsQty Field = "netSlsQty"
	FieldAmount    Field = "amount"
	FieldCost      Field = "cost"
)

// ColumnMap 规范字段 -> 本次导入文件中实际匹配到的表头
//
// 仅在单次导入内有效，不持久化。未匹配的字段不出现在 map 中。
type ColumnMap map[Field]string

// Strings 转换为可序列化的 map
func (m ColumnMap) Strings() map[string]string {
	out := make(map[string]string, len(m))
	for f, h := range m {
		out[string(f)] = h
	}
	return out
}

// Table 从导入源读取出的表格
type Table struct {
	SheetName string
	Headers   []string
	Rows      []model.RawRow
}
