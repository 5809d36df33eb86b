package model

// RawRow 导入文件中的原始行（表头 -> 单元格文本）
type RawRow map[string]string

// Record 规范化后的销售记录（持久化与聚合的基本单位）
type Record struct {
	ID int64 `json:"id,omitempty"`

	Category  string `json:"category"`
	Branch    string `json:"branch"`
	Supplier  string `json:"supplier"`
	ArticleNo string `json:"articleNo"`
	Fabric    string `json:"fabric"`  // 空字符串表示“不适用”
	Concept   string `json:"concept"` // 空字符串表示“不适用”

	NetSlsQty float64 `json:"netSlsQty"`
	Amount    float64 `json:"amount"`
	Cost      float64 `json:"cost"`

	// 原始行，仅用于审计/排查，不参与聚合
	OriginalRow RawRow `json:"originalRow,omitempty"`
}

// DimensionValue 返回记录在指定维度上的取值
func (r *Record) DimensionValue(d Dimension) string {
	switch d {
	case DimensionCategory:
		return r.Category
	case DimensionBranch:
		return r.Branch
	case DimensionSupplier:
		return r.Supplier
	case DimensionFabric:
		return r.Fabric
	case DimensionConcept:
		return r.Concept
	}
	return ""
}

// GroupKey 聚合分组键（六个描述字段，空字符串也是合法分量）
type GroupKey struct {
	Category  string `json:"category"`
	Branch    string `json:"branch"`
	Supplier  string `json:"supplier"`
	ArticleNo string `json:"articleNo"`
	Fabric    string `json:"fabric"`
	Concept   string `json:"concept"`
}

// KeyOf 提取记录的分组键
func KeyOf(r *Record) GroupKey {
	return GroupKey{
		Category:  r.Category,
		Branch:    r.Branch,
		Supplier:  r.Supplier,
		ArticleNo: r.ArticleNo,
		Fabric:    r.Fabric,
		Concept:   r.Concept,
	}
}

// AggregateRow 聚合结果行（数值字段沿用前端表格的大写键名）
type AggregateRow struct {
	GroupKey

	NetSlsQty float64 `json:"NetSlsQty"`
	Amount    float64 `json:"Amount"`
	Cost      float64 `json:"Cost"`
}

// FilterOptions 各维度的去重取值（用于前端筛选器）
type FilterOptions struct {
	Categories []string `json:"categories"`
	Branches   []string `json:"branches"`
	Suppliers  []string `json:"suppliers"`
	Fabrics    []string `json:"fabrics"`
	Concepts   []string `json:"concepts"`
}

// Set 按维度写入取值列表
func (o *FilterOptions) Set(d Dimension, values []string) {
	if values == nil {
		values = []string{}
	}
	switch d {
	case DimensionCategory:
		o.Categories = values
	case DimensionBranch:
		o.Branches = values
	case DimensionSupplier:
		o.Suppliers = values
	case DimensionFabric:
		o.Fabrics = values
	case DimensionConcept:
		o.Concepts = values
	}
}
