package query

import (
	"net/url"
	"strings"

	"salesboard/internal/model"
)

// 单值参数与多值参数名
var (
	singularParams = map[model.Dimension]string{
		model.DimensionCategory: "category",
		model.DimensionBranch:   "branch",
		model.DimensionSupplier: "supplier",
		model.DimensionFabric:   "fabric",
		model.DimensionConcept:  "concept",
	}
	pluralParams = map[model.Dimension]string{
		model.DimensionCategory: "categories",
		model.DimensionBranch:   "branches",
		model.DimensionSupplier: "suppliers",
		model.DimensionFabric:   "fabrics",
		model.DimensionConcept:  "concepts",
	}
)

// ParseSelection 从查询参数构建筛选条件
//
// 多值参数（逗号分隔，可重复出现）优先于单值参数；取值去首尾空白、去重并保持顺序。
// 解析不出任何取值的维度视为无约束。
func ParseSelection(values url.Values) model.FilterSelection {
	sel := make(model.FilterSelection)
	for _, d := range model.Dimensions {
		if list := SplitList(values[pluralParams[d]]); len(list) > 0 {
			sel[d] = list
			continue
		}
		if v := strings.TrimSpace(values.Get(singularParams[d])); v != "" {
			sel[d] = []string{v}
		}
	}
	return sel
}

// SplitList 拆分逗号分隔的取值
func SplitList(raw []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range raw {
		for _, token := range strings.Split(part, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			out = append(out, token)
		}
	}
	return out
}
