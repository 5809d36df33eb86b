package model

// Dimension 可筛选的描述维度
type Dimension string

const (
	DimensionCategory Dimension = "category"
	DimensionBranch   Dimension = "branch"
	DimensionSupplier Dimension = "supplier"
	DimensionFabric   Dimension = "fabric"
	DimensionConcept  Dimension = "concept"
)

// Dimensions 五个筛选维度（固定顺序）
var Dimensions = []Dimension{
	DimensionCategory,
	DimensionBranch,
	DimensionSupplier,
	DimensionFabric,
	DimensionConcept,
}

// Combinator 跨维度条件的组合方式
type Combinator string

const (
	CombineAll Combinator = "and" // 所有出现的维度条件都满足
	CombineAny Combinator = "or"  // 任一出现的维度条件满足
)

// ParseCombinator 解析组合方式，非法值返回 false
func ParseCombinator(s string) (Combinator, bool) {
	switch Combinator(s) {
	case CombineAll:
		return CombineAll, true
	case CombineAny:
		return CombineAny, true
	}
	return "", false
}

// FilterSelection 单次查询的筛选条件
//
// 每个维度要么缺省（无约束），要么给出一个或多个取值。单值按相等匹配，多值按集合成员匹配，
// 二者在语义上一致，因此统一存成切片。
type FilterSelection map[Dimension][]string

// Single 设置单值条件
func (s FilterSelection) Single(d Dimension, value string) FilterSelection {
	s[d] = []string{value}
	return s
}

// Set 设置多值条件
func (s FilterSelection) Set(d Dimension, values ...string) FilterSelection {
	s[d] = append([]string(nil), values...)
	return s
}

// Present 返回有约束的维度（按固定维度顺序）
func (s FilterSelection) Present() []Dimension {
	out := make([]Dimension, 0, len(Dimensions))
	for _, d := range Dimensions {
		if len(s[d]) > 0 {
			out = append(out, d)
		}
	}
	return out
}

// IsEmpty 是否没有任何维度约束
func (s FilterSelection) IsEmpty() bool {
	return len(s.Present()) == 0
}
