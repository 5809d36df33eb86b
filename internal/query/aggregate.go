package query

import (
	"sort"
	"strings"

	"salesboard/internal/model"
)

// Aggregate 过滤后按六个描述字段分组，累加三个数值字段
//
// 结果按 (category, supplier, articleNo) 升序；其余字段不参与排序。
func Aggregate(records []*model.Record, pred Predicate) []model.AggregateRow {
	if pred == nil {
		pred = MatchAll
	}

	index := make(map[model.GroupKey]int)
	rows := make([]model.AggregateRow, 0)
	for _, r := range records {
		if !pred(r) {
			continue
		}
		key := model.KeyOf(r)
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, model.AggregateRow{GroupKey: key})
		}
		rows[i].NetSlsQty += r.NetSlsQty
		rows[i].Amount += r.Amount
		rows[i].Cost += r.Cost
	}

	SortRows(rows)
	return rows
}

// SortRows 按 category、supplier、articleNo 升序排列
func SortRows(rows []model.AggregateRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Supplier != b.Supplier {
			return a.Supplier < b.Supplier
		}
		return a.ArticleNo < b.ArticleNo
	})
}

// DistinctValues 计算各维度的去重非空取值（字母序）
func DistinctValues(records []*model.Record) *model.FilterOptions {
	sets := make(map[model.Dimension]map[string]struct{}, len(model.Dimensions))
	for _, d := range model.Dimensions {
		sets[d] = make(map[string]struct{})
	}
	for _, r := range records {
		for _, d := range model.Dimensions {
			sets[d][r.DimensionValue(d)] = struct{}{}
		}
	}

	opts := &model.FilterOptions{}
	for _, d := range model.Dimensions {
		values := make([]string, 0, len(sets[d]))
		for v := range sets[d] {
			values = append(values, v)
		}
		opts.Set(d, SortDistinct(values))
	}
	return opts
}

// SortDistinct 剔除空白取值并排序
func SortDistinct(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
