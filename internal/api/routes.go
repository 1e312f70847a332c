// 包 api：集中注册 HTTP API 路由以解耦主入口，所有操作转发到领地引擎
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"territory-engine/internal/district"
	"territory-engine/internal/engine"
	"territory-engine/internal/geo"
	"territory-engine/internal/metrics"
	"territory-engine/internal/mode"
	"territory-engine/internal/projection"
	"territory-engine/internal/territory"
)

// 文档注释：统一写出 JSON
// 约束：禁用缓存；帧内容随每次操作变化。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errStatus(err), errorResult{Error: err.Error()})
}

// 文档注释：错误到状态码的映射
// 背景：引擎错误都不改变状态；“前置条件不满足”（无聚焦、行政区未加载、视口未就绪）统一为 409。
func errStatus(err error) int {
	switch {
	case errors.Is(err, mode.ErrUnknownMode), errors.Is(err, engine.ErrUnknownLandmark):
		return http.StatusNotFound
	case errors.Is(err, territory.ErrNoFocus),
		errors.Is(err, district.ErrNotLoaded),
		errors.Is(err, projection.ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, territory.ErrEmptyTerritory):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResult{Error: "bad request body: " + err.Error()})
		return false
	}
	return true
}

// counted：按路由计数
func counted(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsTotal.WithLabelValues(route).Inc()
		h(w, r)
	}
}

// 文档注释：构建并返回 API 路由
// 背景：独立 ServeMux 便于在主入口挂载到 API_BASE 前缀；districts 为 nil 时重新拉取端点返回 409。
func BuildRoutes(eng *engine.Engine, districts *district.Source, hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /modes", counted("modes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, eng.Modes())
	}))

	mux.HandleFunc("POST /mode", counted("mode", func(w http.ResponseWriter, r *http.Request) {
		var req modeRequest
		if !decode(w, r, &req) {
			return
		}
		if _, err := eng.SetMode(req.Mode); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, eng.Frame())
	}))

	mux.HandleFunc("POST /view", counted("view", func(w http.ResponseWriter, r *http.Request) {
		var req viewRequest
		if !decode(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, viewResult{Recomputed: eng.ViewChanged(req.Viewport, req.Settled)})
	}))

	mux.HandleFunc("POST /focus", counted("focus", func(w http.ResponseWriter, r *http.Request) {
		var req focusRequest
		if !decode(w, r, &req) {
			return
		}
		if err := eng.FocusLandmark(req.Name); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, eng.Frame())
	}))

	mux.HandleFunc("POST /click", counted("click", func(w http.ResponseWriter, r *http.Request) {
		var pt geo.GeoPoint
		if !decode(w, r, &pt) {
			return
		}
		writeJSON(w, http.StatusOK, eng.Click(pt))
	}))

	mux.HandleFunc("POST /dismiss", counted("dismiss", func(w http.ResponseWriter, r *http.Request) {
		eng.Dismiss()
		w.WriteHeader(http.StatusNoContent)
	}))

	eliminate := func(others bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			st, err := eng.Eliminate(others)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, eliminateResult{State: st.String(), Frame: eng.Frame()})
		}
	}
	mux.HandleFunc("POST /eliminate", counted("eliminate", eliminate(false)))
	mux.HandleFunc("POST /eliminate-others", counted("eliminate_others", eliminate(true)))

	mux.HandleFunc("POST /zap", counted("zap", func(w http.ResponseWriter, r *http.Request) {
		var pt geo.GeoPoint
		if !decode(w, r, &pt) {
			return
		}
		zapped := eng.Zap(pt)
		if zapped == nil {
			zapped = []territory.ID{}
		}
		writeJSON(w, http.StatusOK, zapResult{Zapped: zapped})
	}))

	mux.HandleFunc("POST /location", counted("location", func(w http.ResponseWriter, r *http.Request) {
		var pt geo.GeoPoint
		if !decode(w, r, &pt) {
			return
		}
		eng.SetLocation(pt)
		w.WriteHeader(http.StatusNoContent)
	}))

	mux.HandleFunc("POST /switches", counted("switches", func(w http.ResponseWriter, r *http.Request) {
		var s engine.Switches
		if !decode(w, r, &s) {
			return
		}
		eng.SetSwitches(s)
		writeJSON(w, http.StatusOK, s)
	}))

	mux.HandleFunc("GET /frame", counted("frame", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, eng.Frame())
	}))

	mux.HandleFunc("POST /districts/reload", counted("districts_reload", func(w http.ResponseWriter, r *http.Request) {
		if districts == nil {
			writeError(w, district.ErrNotLoaded)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()
		if err := districts.Load(ctx); err != nil {
			writeJSON(w, http.StatusBadGateway, errorResult{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"districts": districts.Dataset().Len()})
	}))

	if hub != nil {
		mux.HandleFunc("GET /ws", hub.Serve(eng))
	}
	return mux
}
