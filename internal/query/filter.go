package query

import (
	"strings"

	"salesboard/internal/model"
)

// Predicate 记录过滤条件
type Predicate func(r *model.Record) bool

// MatchAll 不做任何过滤
func MatchAll(*model.Record) bool { return true }

type dimensionConstraint struct {
	dim    model.Dimension
	values map[string]struct{}
}

func (c dimensionConstraint) match(r *model.Record) bool {
	_, ok := c.values[r.DimensionValue(c.dim)]
	return ok
}

// Compile 将筛选条件编译为谓词
//
// 同一维度内为集合成员匹配；跨维度按 mode 组合。没有任何约束时两种模式都匹配全部记录。
func Compile(sel model.FilterSelection, mode model.Combinator) Predicate {
	constraints := buildConstraints(sel)
	if len(constraints) == 0 {
		return MatchAll
	}

	if mode == model.CombineAny {
		return func(r *model.Record) bool {
			for _, c := range constraints {
				if c.match(r) {
					return true
				}
			}
			return false
		}
	}

	return func(r *model.Record) bool {
		for _, c := range constraints {
			if !c.match(r) {
				return false
			}
		}
		return true
	}
}

// CompileSQL 将筛选条件编译为 SQL WHERE 片段（? 占位符）
//
// columns 给出维度到列名的映射；没有约束时返回空串。
func CompileSQL(sel model.FilterSelection, mode model.Combinator, columns map[model.Dimension]string) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	for _, d := range sel.Present() {
		values := sel[d]
		col := columns[d]
		if len(values) == 1 {
			clauses = append(clauses, col+" = ?")
			args = append(args, values[0])
			continue
		}
		clauses = append(clauses, col+" IN ("+placeholders(len(values))+")")
		for _, v := range values {
			args = append(args, v)
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}

	sep := " AND "
	if mode == model.CombineAny {
		sep = " OR "
	}
	return "(" + strings.Join(clauses, sep) + ")", args
}

func buildConstraints(sel model.FilterSelection) []dimensionConstraint {
	var out []dimensionConstraint
	for _, d := range sel.Present() {
		set := make(map[string]struct{}, len(sel[d]))
		for _, v := range sel[d] {
			set[v] = struct{}{}
		}
		out = append(out, dimensionConstraint{dim: d, values: set})
	}
	return out
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
