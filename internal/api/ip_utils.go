package api

import (
	"net/http"
	"strings"
)

// 文档注释：获取访问者 IP（用于连接日志）
// 背景：多层代理环境下，优先常见反向代理头，最后回退远端地址；WebSocket 订阅者的连接与断开日志据此标注来源。
// 约束：头部存在伪造风险，仅用于日志，不参与任何判定。
func getVisitorIP(r *http.Request) string {
	h := r.Header
	if x := h.Get("x-forwarded-for"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	if x := h.Get("cf-connecting-ip"); x != "" {
		return x
	}
	if x := h.Get("x-real-ip"); x != "" {
		return x
	}
	if x := h.Get("forwarded"); x != "" {
		i := strings.Index(strings.ToLower(x), "for=")
		if i >= 0 {
			y := x[i+4:]
			if p := strings.IndexAny(y, ";,"); p >= 0 {
				y = y[:p]
			}
			return strings.Trim(y, "\" ")
		}
	}
	host := r.RemoteAddr
	if host != "" {
		if i := strings.LastIndex(host, ":"); i > 0 {
			return host[:i]
		}
		return host
	}
	return ""
}
