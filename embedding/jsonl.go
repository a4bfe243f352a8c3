package embedding

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// jsonlRecord 是行式 JSON 格式的单条记录：{"movie_id": "...", "embedding": [...]}。
// 与离线生成脚本的输出逐字段对应。
type jsonlRecord struct {
	MovieID   string    `json:"movie_id"`
	Embedding []float64 `json:"embedding"`
}

// maxLineBytes 限制单行大小：384 维 float 文本约 5KB，1MB 足够容纳更高维模型。
const maxLineBytes = 1 << 20

// decodeJSONL 解析行式 JSON 向量表。
// 任何一行非法都使整次加载失败：半张表的排序语义是未定义的，
// 宁可整体失败也不静默跳行。错误信息带行号，便于定位离线数据问题。
func decodeJSONL(data []byte) (*Table, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var table *Table
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var rec jsonlRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if strings.TrimSpace(rec.MovieID) == "" {
			return nil, fmt.Errorf("line %d: empty movie_id", lineNo)
		}
		if len(rec.Embedding) == 0 {
			return nil, fmt.Errorf("line %d: empty embedding for %q", lineNo, rec.MovieID)
		}

		if table == nil {
			table = newTable(len(rec.Embedding), 1024)
		}
		if len(rec.Embedding) != table.dim {
			return nil, fmt.Errorf("line %d: dimension mismatch for %q: got %d, want %d",
				lineNo, rec.MovieID, len(rec.Embedding), table.dim)
		}
		if _, dup := table.vectors[rec.MovieID]; dup {
			return nil, fmt.Errorf("line %d: duplicate movie_id %q", lineNo, rec.MovieID)
		}
		table.add(rec.MovieID, rec.Embedding)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
	}
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("no records found")
	}
	return table, nil
}
