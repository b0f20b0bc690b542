package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-paradigmas/internal/watcher"
	json "github.com/goccy/go-json"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 54 * time.Second

	// Debounce for editor save bursts
	reloadDebounce = 150 * time.Millisecond
)

// reloadMessage is sent to browsers after a template or asset changed
type reloadMessage struct {
	Type  string   `json:"type"`
	Paths []string `json:"paths,omitempty"`
}

type reloadClient struct {
	conn *websocket.Conn
	send chan []byte
}

// reloadHub keeps the connected dev browsers
type reloadHub struct {
	mux          sync.RWMutex
	clients      map[*reloadClient]struct{}
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

func newReloadHub() *reloadHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &reloadHub{
		clients: make(map[*reloadClient]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// handle upgrades /dev/livereload. The default accept options only allow
// same host origins.
func (h *reloadHub) handle(c *gin.Context) {
	if h.ctx.Err() != nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WEB]: Live reload upgrade error: %v", err)
		return
	}

	client := &reloadClient{conn: conn, send: make(chan []byte, 16)}
	h.mux.Lock()
	h.clients[client] = struct{}{}
	h.mux.Unlock()

	// browsers never send; CloseRead handles pongs and close frames
	ctx := conn.CloseRead(h.ctx)
	h.writePump(ctx, client)
	h.remove(client)
}

func (h *reloadHub) writePump(ctx context.Context, client *reloadClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case message := <-client.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := client.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("[WEB]: Live reload write error: %v", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := client.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (h *reloadHub) remove(client *reloadClient) {
	h.mux.Lock()
	delete(h.clients, client)
	h.mux.Unlock()
}

// Clients returns the number of connected browsers
func (h *reloadHub) Clients() int {
	h.mux.RLock()
	defer h.mux.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. Slow clients miss the message,
// they reload on the next one.
func (h *reloadHub) Broadcast(msg reloadMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WEB]: Live reload marshal error: %v", err)
		return
	}
	h.mux.RLock()
	defer h.mux.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
		}
	}
}

// Shutdown closes all connections
func (h *reloadHub) Shutdown() {
	h.shutdownOnce.Do(func() {
		h.cancel()
	})
}

// startDevWatcher reloads browsers when a template or static file changes
func (s *WebServer) startDevWatcher() error {
	fw, err := watcher.NewFileWatcher(reloadDebounce)
	if err != nil {
		return err
	}
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.ExtFilter(".html", ".css", ".js", ".svg"))
	fw.AddHandler(s.handleFileChanges)
	for _, dir := range []string{s.Config.TemplatesDir, s.Config.StaticDir} {
		if err := fw.AddRecursive(dir); err != nil {
			fw.Stop()
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := fw.Start(ctx); err != nil {
		cancel()
		fw.Stop()
		return err
	}

	s.mux.Lock()
	if s.stopped {
		s.mux.Unlock()
		cancel()
		fw.Stop()
		return errors.New("server shut down")
	}
	s.watcher = fw
	s.stopWatch = cancel
	s.mux.Unlock()
	log.Printf("[WATCH]: Live reload watching %d directories", len(fw.WatchList()))
	return nil
}

// handleFileChanges drops rendered pages and tells browsers to reload
func (s *WebServer) handleFileChanges(events []watcher.ChangeEvent) error {
	paths := make([]string, 0, len(events))
	for _, ev := range events {
		paths = append(paths, ev.Path)
	}
	log.Printf("[WATCH]: %d file(s) changed, reloading", len(paths))
	s.clearPageCache()
	if s.reload != nil {
		s.reload.Broadcast(reloadMessage{Type: "reload", Paths: paths})
	}
	return nil
}
