package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"salesboard/internal/model"
)

// SupportedExtensions 支持导入的文件扩展名
var SupportedExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm", ".csv"}

// IsSupported 判断文件名是否为支持的导入格式
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ReadTable 读取导入文件（Excel 取销售明细所在的 Sheet，首行为表头）
func ReadTable(path string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return readWorkbook(path)
	default:
		return nil, formatErr(path, fmt.Errorf("unsupported file type %q", ext))
	}
}

func readWorkbook(path string) (*Table, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, formatErr(path, fmt.Errorf("open workbook: %w", err))
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, formatErr(path, fmt.Errorf("workbook has no sheets"))
	}

	// 多 Sheet 时跳过封面/说明页，取第一个带标识字段的 Sheet
	allRows := make([][][]string, len(sheets))
	headers := make([][]string, len(sheets))
	for i, name := range sheets {
		// 读取原始值，数值单元格不受显示格式（千分位、小数位）影响
		rows, err := file.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, formatErr(path, fmt.Errorf("read sheet %q: %w", name, err))
		}
		allRows[i] = rows
		if len(rows) > 0 {
			headers[i] = rows[0]
		}
	}
	picked := NewSheetRecognizer(DefaultAliases).Pick(sheets, headers)

	table, err := TableFromRows(sheets[picked], allRows[picked])
	if err != nil {
		return nil, formatErr(path, err)
	}
	return table, nil
}

func readCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, formatErr(path, fmt.Errorf("open csv: %w", err))
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, formatErr(path, fmt.Errorf("read csv: %w", err))
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}

	table, err := TableFromRows(filepath.Base(path), rows)
	if err != nil {
		return nil, formatErr(path, err)
	}
	return table, nil
}

// TableFromRows 由二维单元格构建表格：首行为表头，其后每个非空行为一条原始数据
//
// 表头按原文保留（不去除首尾空白），空白表头列被忽略；重复表头只保留第一列。
func TableFromRows(sheetName string, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	type column struct {
		index  int
		header string
	}

	seen := make(map[string]struct{})
	var columns []column
	for idx, h := range rows[0] {
		if strings.TrimSpace(h) == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		columns = append(columns, column{index: idx, header: h})
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("header row is empty")
	}

	table := &Table{
		SheetName: sheetName,
		Headers:   make([]string, 0, len(columns)),
	}
	for _, col := range columns {
		table.Headers = append(table.Headers, col.header)
	}

	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		raw := make(model.RawRow, len(columns))
		for _, col := range columns {
			if col.index < len(row) {
				raw[col.header] = row[col.index]
			} else {
				raw[col.header] = ""
			}
		}
		table.Rows = append(table.Rows, raw)
	}

	if len(table.Rows) == 0 {
		return nil, ErrNoRows
	}
	return table, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
