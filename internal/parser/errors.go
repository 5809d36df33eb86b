package parser

import (
	"errors"
	"fmt"
)

// ErrNoRows 导入源中没有任何数据行
var ErrNoRows = errors.New("no data found in import file")

// FormatError 导入源不可读或格式不符合要求
//
// 出现该错误时导入在写库之前终止，已有数据保持不变。
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid import file %q: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErr(path string, err error) *FormatError {
	return &FormatError{Path: path, Err: err}
}
