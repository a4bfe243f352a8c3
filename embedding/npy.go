package embedding

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/sbinet/npyio"
)

// decodeNPY 解析稠密 NumPy 格式的向量表：形状 (N, D+1) 的浮点矩阵，
// 每行前 D 列是向量分量，最后一列是数值型物品 ID。
//
// 与 JSONL 格式同样采取整体失败策略；两种格式由部署配置显式选择，
// 绝不自动嗅探（嗅探可能把另一种格式错误解析成一张看似合法的表）。
func decodeNPY(data []byte) (*Table, error) {
	r, err := npyio.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read npy header: %w", err)
	}

	shape := r.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, fmt.Errorf("want 2-d array, got shape %v", shape)
	}
	rows, cols := shape[0], shape[1]
	if rows == 0 || cols < 2 {
		return nil, fmt.Errorf("invalid shape %v: need at least 1 row and 2 columns", shape)
	}

	var raw []float64
	switch r.Header.Descr.Type {
	case "<f8", ">f8", "f8":
		if err := r.Read(&raw); err != nil {
			return nil, fmt.Errorf("read npy data: %w", err)
		}
	case "<f4", ">f4", "f4":
		var raw32 []float32
		if err := r.Read(&raw32); err != nil {
			return nil, fmt.Errorf("read npy data: %w", err)
		}
		raw = make([]float64, len(raw32))
		for i, v := range raw32 {
			raw[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("unsupported dtype %q: want float32 or float64", r.Header.Descr.Type)
	}

	if len(raw) != rows*cols {
		return nil, fmt.Errorf("data size mismatch: got %d values, want %d", len(raw), rows*cols)
	}
	if r.Header.Descr.Fortran {
		return nil, fmt.Errorf("fortran-order array not supported")
	}

	dim := cols - 1
	table := newTable(dim, rows)
	for i := 0; i < rows; i++ {
		row := raw[i*cols : (i+1)*cols]
		idVal := row[dim]
		if math.IsNaN(idVal) || math.IsInf(idVal, 0) || idVal != math.Trunc(idVal) {
			return nil, fmt.Errorf("row %d: non-integral id column value %v", i, idVal)
		}
		id := strconv.FormatInt(int64(idVal), 10)
		if _, dup := table.vectors[id]; dup {
			return nil, fmt.Errorf("row %d: duplicate movie_id %q", i, id)
		}
		vector := make([]float64, dim)
		copy(vector, row[:dim])
		table.add(id, vector)
	}
	return table, nil
}
