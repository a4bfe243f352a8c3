package recommend

import (
	"github.com/reelkit/reelkit/core"
	"github.com/reelkit/reelkit/pkg/conv"
)

// RequestFromParams 把松散的传输层参数（JSON 反序列化出的 map）翻译成类型化请求。
// 只做类型翻译，不做合法性判断；缺失/类型不符的参数留零值，交给 Execute 统一校验。
//
// 参数名约定：query / movie_id / user_id / top_k / rated_movies。
// rated_movies 是对象数组：[{"movie_id": "...", "weight": 5.0}, ...]。
func RequestFromParams(strategy string, params map[string]any) *Request {
	req := &Request{Strategy: strategy}
	if params == nil {
		return req
	}

	req.Query = conv.ConfigGet[string](params, "query", "")
	req.MovieID = conv.ConfigGet[string](params, "movie_id", "")
	req.UserID = conv.ConfigGet[string](params, "user_id", "")
	req.TopK = int(conv.ConfigGetInt64(params, "top_k", 0))

	if rawList, ok := params["rated_movies"].([]any); ok {
		rated := make([]core.RatedMovie, 0, len(rawList))
		for _, raw := range rawList {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			id, ok := conv.ToString(m["movie_id"])
			if !ok || id == "" {
				continue
			}
			weight, _ := conv.ToFloat64(m["weight"])
			rated = append(rated, core.RatedMovie{MovieID: id, Weight: weight})
		}
		req.RatedMovies = rated
	}
	return req
}
