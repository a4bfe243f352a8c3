package recommend

import (
	"encoding/json"
	"testing"
)

func TestRequestFromParams(t *testing.T) {
	t.Run("JSON 参数翻译", func(t *testing.T) {
		var params map[string]any
		body := `{
			"query": "space opera",
			"top_k": 5,
			"rated_movies": [
				{"movie_id": "1", "weight": 5.0},
				{"movie_id": "2", "weight": 3},
				{"weight": 4.0},
				"not an object"
			]
		}`
		if err := json.Unmarshal([]byte(body), &params); err != nil {
			t.Fatal(err)
		}

		req := RequestFromParams(StrategyContent, params)
		if req.Strategy != StrategyContent {
			t.Errorf("Strategy = %q", req.Strategy)
		}
		if req.Query != "space opera" || req.TopK != 5 {
			t.Errorf("Query=%q TopK=%d", req.Query, req.TopK)
		}
		// 缺 movie_id 的对象与非对象元素被跳过
		if len(req.RatedMovies) != 2 {
			t.Fatalf("期望 2 个评分对，实际 %d 个", len(req.RatedMovies))
		}
		if req.RatedMovies[1].MovieID != "2" || req.RatedMovies[1].Weight != 3.0 {
			t.Errorf("评分对 1 = %+v", req.RatedMovies[1])
		}
	})

	t.Run("空参数留零值", func(t *testing.T) {
		req := RequestFromParams(StrategySimilar, nil)
		if req.Strategy != StrategySimilar || req.MovieID != "" || req.TopK != 0 {
			t.Errorf("req = %+v", req)
		}
	})
}
