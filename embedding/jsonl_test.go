package embedding

import (
	"strings"
	"testing"
)

func TestDecodeJSONL(t *testing.T) {
	t.Run("正常解析", func(t *testing.T) {
		data := strings.Join([]string{
			`{"movie_id": "1", "embedding": [1.0, 0.0]}`,
			`{"movie_id": "2", "embedding": [0.0, 1.0]}`,
			``,
			`{"movie_id": "3", "embedding": [0.9, 0.1]}`,
		}, "\n")
		table, err := decodeJSONL([]byte(data))
		if err != nil {
			t.Fatalf("解析失败: %v", err)
		}
		if table.Len() != 3 {
			t.Errorf("期望 3 条记录，实际 %d 条", table.Len())
		}
		if table.Dimension() != 2 {
			t.Errorf("期望维度 2，实际 %d", table.Dimension())
		}
		v, ok := table.Lookup("3")
		if !ok || v[0] != 0.9 || v[1] != 0.1 {
			t.Errorf("Lookup(3) = %v, %v", v, ok)
		}
	})

	t.Run("插入顺序保持", func(t *testing.T) {
		data := `{"movie_id": "b", "embedding": [1]}` + "\n" +
			`{"movie_id": "a", "embedding": [2]}` + "\n" +
			`{"movie_id": "c", "embedding": [3]}`
		table, err := decodeJSONL([]byte(data))
		if err != nil {
			t.Fatalf("解析失败: %v", err)
		}
		candidates := table.Candidates()
		for i, want := range []string{"b", "a", "c"} {
			if candidates[i].ID != want {
				t.Errorf("位置 %d 期望 %s，实际 %s", i, want, candidates[i].ID)
			}
		}
	})

	// 任何一行非法都使整次加载失败，绝不静默跳行
	badInputs := []struct {
		name string
		data string
	}{
		{"非法 JSON", `{"movie_id": "1", "embedding"`},
		{"缺失 movie_id", `{"embedding": [1.0]}`},
		{"空 embedding", `{"movie_id": "1", "embedding": []}`},
		{"维度不一致", `{"movie_id": "1", "embedding": [1, 0]}` + "\n" + `{"movie_id": "2", "embedding": [1]}`},
		{"重复 movie_id", `{"movie_id": "1", "embedding": [1]}` + "\n" + `{"movie_id": "1", "embedding": [2]}`},
		{"空文件", ""},
		{"只有空行", "\n\n\n"},
	}
	for _, tt := range badInputs {
		t.Run("整体失败_"+tt.name, func(t *testing.T) {
			if _, err := decodeJSONL([]byte(tt.data)); err == nil {
				t.Fatal("期望解析错误，实际为 nil")
			}
		})
	}
}
