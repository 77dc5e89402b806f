package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RecommendRequest 是 GET /api/v1/recommendations 的查询参数。
type RecommendRequest struct {
	Title string `validate:"required,max=512"`
	K     int    `validate:"min=0,max=100"` // 0 = 默认 TopK
}

// SearchRequest 是 GET /api/v1/search 的查询参数；空 Query 匹配全部课程。
type SearchRequest struct {
	Query string `validate:"max=512"`
	Limit int    `validate:"min=0,max=100"` // 0 = 默认兜底数量
}

// TopQueriesRequest 是 GET /api/v1/queries/top 的查询参数。
type TopQueriesRequest struct {
	N int `validate:"min=0,max=100"`
}

// validateRequest 返回可直接展示给调用方的错误信息。
func validateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s%s", strings.ToLower(fe.Field()), fe.Tag(), param(fe.Param())))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func param(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

// getIntParam 读取整数参数；缺省返回 defaultValue，非整数返回错误。
func getIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: not an integer: %q", key, raw)
	}
	return n, nil
}

// ParamPrefix 标记透传给链路的查询参数：?param.max_price=10 在 CEL 中为 params.max_price。
const ParamPrefix = "param."

// queryParams 收集带 ParamPrefix 的查询参数。数字解析为 float64，true/false 解析为 bool，其余保持字符串；
// 同名参数只取第一个值。
func queryParams(r *http.Request) map[string]any {
	var params map[string]any
	for key, values := range r.URL.Query() {
		name, ok := strings.CutPrefix(key, ParamPrefix)
		if !ok || name == "" || len(values) == 0 {
			continue
		}
		if params == nil {
			params = make(map[string]any)
		}
		params[name] = paramValue(values[0])
	}
	return params
}

func paramValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return raw
}
