package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"territory-engine/internal/engine"
	"territory-engine/internal/logger"
	"territory-engine/internal/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	wsSendBuffer   = 8
	wsWriteTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// 文档注释：帧推送中心
// 背景：每个订阅者一个带缓冲的发送队列与独立写协程；引擎每次状态变化推送整帧 JSON。
// 约束：队列满的慢订阅者被直接断开，不阻塞引擎；订阅者以 uuid 标识。
type Hub struct {
	mu      sync.Mutex
	clients map[string]*wsClient
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*wsClient)}
}

// Attach：订阅引擎帧并广播给全部连接
func (h *Hub) Attach(eng *engine.Engine) func() {
	return eng.Subscribe(func(f engine.Frame) {
		b, err := json.Marshal(f)
		if err != nil {
			logger.Component("ws").Error("ws_frame_encode_error", "err", err)
			return
		}
		h.Broadcast(b)
	})
}

// Broadcast：非阻塞投递到全部订阅者
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			logger.Component("ws").Warn("ws_client_slow", "id", id)
			h.removeLocked(id)
		}
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	metrics.FrameSubscribers.Inc()
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	h.removeLocked(id)
	h.mu.Unlock()
}

func (h *Hub) removeLocked(id string) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	close(c.send)
	metrics.FrameSubscribers.Dec()
}

// 文档注释：WebSocket 入口
// 背景：连接建立后先推送当前帧，此后随状态变化推送；客户端消息只用于探测断开，内容被忽略。
func (h *Hub) Serve(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Component("ws").Warn("ws_upgrade_error", "err", err)
			return
		}
		c := &wsClient{id: uuid.NewString(), conn: conn, send: make(chan []byte, wsSendBuffer)}
		l := logger.Component("ws").With("id", c.id, "ip", getVisitorIP(r))
		if b, err := json.Marshal(eng.Frame()); err == nil {
			c.send <- b
		}
		h.add(c)
		l.Info("ws_connected")

		go func() {
			defer conn.Close()
			for msg := range c.send {
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					l.Debug("ws_write_error", "err", err)
					h.remove(c.id)
					return
				}
			}
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.remove(c.id)
		l.Info("ws_disconnected")
	}
}
