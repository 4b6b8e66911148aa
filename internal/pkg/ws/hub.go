package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 单次写入超时，超时的连接视为断开
const writeWait = 10 * time.Second

// Hub 按品牌分组的在线连接，一个品牌可以有多名成员同时在线
type Hub struct {
	brands map[string]map[*Client]struct{}
	mu     sync.RWMutex
	log    *zap.Logger
}

type Client struct {
	BrandID string
	Conn    *websocket.Conn
	writeMu sync.Mutex
}

// Message 推送给前端的消息
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		brands: make(map[string]map[*Client]struct{}),
		log:    log,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	conns := h.brands[client.BrandID]
	if conns == nil {
		conns = make(map[*Client]struct{})
		h.brands[client.BrandID] = conns
	}
	conns[client] = struct{}{}
	count := len(conns)
	h.mu.Unlock()

	h.log.Debug("ws client connected",
		zap.String("brand_id", client.BrandID),
		zap.Int("brand_conns", count))
}

// Unregister 重复调用安全
func (h *Hub) Unregister(client *Client) {
	if h.remove(client) {
		h.log.Debug("ws client disconnected", zap.String("brand_id", client.BrandID))
	}
}

func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.brands[client.BrandID]
	if !ok {
		return false
	}
	if _, ok := conns[client]; !ok {
		return false
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.brands, client.BrandID)
	}
	return true
}

// SendToBrand 向品牌的所有连接推送，写入失败的连接会被关闭并移除
func (h *Hub) SendToBrand(brandID string, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	for _, c := range h.snapshot(brandID) {
		if err := c.write(data); err != nil {
			h.log.Warn("ws write failed, dropping connection",
				zap.String("brand_id", brandID), zap.Error(err))
			h.Unregister(c)
			c.Conn.Close()
		}
	}
	return nil
}

// snapshot 复制连接列表，写入时不持有 hub 锁
func (h *Hub) snapshot(brandID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := h.brands[brandID]
	clients := make([]*Client, 0, len(conns))
	for c := range conns {
		clients = append(clients, c)
	}
	return clients
}

func (c *Client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// IsOnline 品牌是否有在线连接
func (h *Hub) IsOnline(brandID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.brands[brandID]) > 0
}

// ConnectionCount 全部在线连接数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.brands {
		total += len(conns)
	}
	return total
}

// CloseAll 服务退出时关闭全部连接
func (h *Hub) CloseAll() {
	h.mu.Lock()
	brands := h.brands
	h.brands = make(map[string]map[*Client]struct{})
	h.mu.Unlock()

	for _, conns := range brands {
		for c := range conns {
			c.writeMu.Lock()
			c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(time.Second))
			c.writeMu.Unlock()
			c.Conn.Close()
		}
	}
}
