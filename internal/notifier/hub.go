package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"job-portal/internal/model"

	"golang.org/x/net/websocket"
)

// HubConfig 实时推送配置。
type HubConfig struct {
	Buffer int `yaml:"buffer" json:"buffer"`
}

// Hub 进程内的 websocket 广播中心：不持久化、不重放，至多一次投递。
// 客户端只会收到连接建立之后发布的事件。
type Hub struct {
	logger *log.Logger
	buffer int
	nextID atomic.Uint64

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	id   uint64
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) stop() {
	c.once.Do(func() { close(c.done) })
}

// NewHub 创建广播中心，未提供 logger 时默认输出到标准输出。
func NewHub(logger *log.Logger, cfg HubConfig) *Hub {
	if logger == nil {
		logger = log.New(os.Stdout, "[ws] ", log.LstdFlags)
	}
	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{logger: logger, buffer: buffer, clients: make(map[*client]struct{})}
}

// Handler 返回 websocket 端点，接受任意来源。
func (h *Hub) Handler() http.Handler {
	return websocket.Server{Handler: h.serve}
}

// Subscribers 返回当前连接数。
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Notify 向所有已连接客户端投递事件，缓冲区已满的客户端丢弃该事件。
func (h *Hub) Notify(_ context.Context, jobs []model.JobListing) error {
	if len(jobs) == 0 {
		return nil
	}
	payloads := make([][]byte, 0, len(jobs))
	for _, job := range jobs {
		data, err := json.Marshal(Event{Event: EventJobPosted, Data: job})
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		payloads = append(payloads, data)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	for c := range h.clients {
		for _, p := range payloads {
			select {
			case c.send <- p:
			default:
				h.logger.Printf("client %d buffer full, event dropped", c.id)
			}
		}
	}
	return nil
}

// Close 断开全部客户端，此后 Notify 不再投递。
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for c := range h.clients {
		c.stop()
		delete(h.clients, c)
	}
	return nil
}

func (h *Hub) register() (*client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	c := &client{
		id:   h.nextID.Add(1),
		send: make(chan []byte, h.buffer),
		done: make(chan struct{}),
	}
	h.clients[c] = struct{}{}
	return c, true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.stop()
}

func (h *Hub) serve(ws *websocket.Conn) {
	c, ok := h.register()
	if !ok {
		_ = ws.Close()
		return
	}
	h.logger.Printf("client %d connected from %s", c.id, ws.Request().RemoteAddr)
	defer func() {
		h.unregister(c)
		h.logger.Printf("client %d disconnected", c.id)
	}()

	// 客户端不发送业务消息，读循环只用于感知断开。
	go func() {
		var discard string
		for {
			if err := websocket.Message.Receive(ws, &discard); err != nil {
				c.stop()
				return
			}
		}
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := websocket.Message.Send(ws, string(msg)); err != nil {
				return
			}
		}
	}
}
