package parser

import "salesboard/internal/model"

// AssembleRow 将一行原始数据组装为规范记录
//
// 未映射的字段走缺失路径（空字符串或 0）。不满足保留规则的行返回 false。
func AssembleRow(row model.RawRow, cols ColumnMap) (*model.Record, bool) {
	cell := func(f Field) string {
		header, ok := cols[f]
		if !ok {
			return ""
		}
		return row[header]
	}

	record := &model.Record{
		Category:    CleanString(cell(FieldCategory)),
		Branch:      CleanString(cell(FieldBranch)),
		Supplier:    CleanString(cell(FieldSupplier)),
		ArticleNo:   CleanString(cell(FieldArticleNo)),
		Fabric:      CleanFabric(cell(FieldFabric)),
		Concept:     CleanConcept(cell(FieldConcept)),
		NetSlsQty:   ParseNumeric(cell(FieldNetSlsQty), 0),
		Amount:      ParseNumeric(cell(FieldAmount), 0),
		Cost:        ParseNumeric(cell(FieldCost), 0),
		OriginalRow: row,
	}

	if !HasIdentity(record) {
		return nil, false
	}
	return record, true
}

// HasIdentity 保留规则：category/branch/supplier/articleNo 至少一个非空
//
// 数值字段和 fabric/concept 不参与判断，0 是合法值。
func HasIdentity(r *model.Record) bool {
	return r.Category != "" || r.Branch != "" || r.Supplier != "" || r.ArticleNo != ""
}

// AssembleRows 组装整张表，返回保留下来的记录
func AssembleRows(table *Table, cols ColumnMap) []*model.Record {
	records := make([]*model.Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		if record, ok := AssembleRow(row, cols); ok {
			records = append(records, record)
		}
	}
	return records
}
