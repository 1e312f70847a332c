package api

import (
	"territory-engine/internal/engine"
	"territory-engine/internal/projection"
	"territory-engine/internal/territory"
)

// 文档注释：视图变化请求
// 背景：前端地图在拖动过程中以 settled=false 高频上报，手势结束后以 settled=true 上报一次。
// 约束：宽高为 0 视为视口未就绪。
type viewRequest struct {
	projection.Viewport
	Settled bool `json:"settled"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type focusRequest struct {
	Name string `json:"name"`
}

// 文档注释：淘汰结果（对外）
// 约束：state 取 eliminated / active；帧随结果一并返回，便于不使用 WebSocket 的客户端直接刷新。
type eliminateResult struct {
	State string       `json:"state"`
	Frame engine.Frame `json:"frame"`
}

type zapResult struct {
	Zapped []territory.ID `json:"zapped"`
}

type viewResult struct {
	Recomputed bool `json:"recomputed"`
}

type errorResult struct {
	Error string `json:"error"`
}
