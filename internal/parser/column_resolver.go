package parser

import "strings"

// FieldAliases 单个规范字段的候选表头，按优先级排列
type FieldAliases struct {
	Field   Field
	Aliases []string
}

// AliasTable 字段别名表
//
// 别名顺序决定同一文件同时出现多个候选表头时谁胜出，不能随意调整。
type AliasTable []FieldAliases

// DefaultAliases 各供应商导出文件使用过的表头
var DefaultAliases = AliasTable{
	{FieldCategory, []string{"CategoryShortName", "Category Filter", "Category", "category", "CATEGORY", "Category Name", "CATEGORY_NAME"}},
	{FieldBranch, []string{"Branch", "branch", "BRANCH", "Branch Name", "Branch Location", "BRANCH_NAME"}},
	{FieldSupplier, []string{"Supplier", "supplier", "SUPPLIER", "Supplier Name", "Supplier Info", "SUPPLIER_NAME", "SupplierAlias", "SupplierName"}},
	{FieldArticleNo, []string{"ArticleNo", "Article No", "articleNo", "ARTICLE_NO", "Article Number", "ARTICLE_NUMBER"}},
	{FieldFabric, []string{"Fabric", "fabric", "FABRIC", "Material", "Material Type", "MATERIAL_TYPE"}},
	{FieldConcept, []string{"Concept", "concept", "CONCEPT", "Style", "Design", "Design Style", "DESIGN_STYLE"}},
	{FieldNetSlsQty, []string{"NetSlsQty", "Net Sls Qty", "netSlsQty", "NET_SLS_QTY", "Quantity", "Qty", "QUANTITY"}},
	{FieldAmount, []string{"Amount", "amount", "AMOUNT", "Price", "Total Amount", "Total Price", "TOTAL_AMOUNT", "NetAmount"}},
	{FieldCost, []string{"Cost", "cost", "COST", "Unit Cost", "Cost Price", "UNIT_COST", "NetSlsCostValue"}},
}

// Fields 返回别名表中的字段（保持表内顺序）
func (t AliasTable) Fields() []Field {
	out := make([]Field, 0, len(t))
	for _, fa := range t {
		out = append(out, fa.Field)
	}
	return out
}

// ResolveColumns 将文件中实际出现的表头映射到规范字段
//
// 每个字段先按别名顺序做精确匹配，全部落空后再按同样顺序做大小写不敏感匹配。
// 仍无匹配的字段不写入结果。
func ResolveColumns(headers []string, table AliasTable) ColumnMap {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}

	mappings := make(ColumnMap)
	for _, fa := range table {
		if col, ok := findColumn(fa.Aliases, headers, present); ok {
			mappings[fa.Field] = col
		}
	}
	return mappings
}

// UnmappedFields 返回别名表中未匹配的字段
func UnmappedFields(m ColumnMap, table AliasTable) []string {
	out := []string{}
	for _, fa := range table {
		if _, ok := m[fa.Field]; !ok {
			out = append(out, string(fa.Field))
		}
	}
	return out
}

func findColumn(aliases []string, headers []string, present map[string]struct{}) (string, bool) {
	for _, alias := range aliases {
		if _, ok := present[alias]; ok {
			return alias, true
		}
	}

	// 大小写不敏感兜底：返回文件中的原始表头
	for _, alias := range aliases {
		for _, h := range headers {
			if strings.EqualFold(h, alias) {
				return h, true
			}
		}
	}
	return "", false
}
