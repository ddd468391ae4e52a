package transport

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	websocketDialTimeout  = 5 * time.Second
	websocketWriteTimeout = 2 * time.Second
)

type captionMessage struct {
	Text      string `json:"text"`
	Composing bool   `json:"composing"`
}

// Websocket pushes captions as JSON messages to a websocket server. The
// connection is dialed on the first send and redialed after a failed write.
type Websocket struct {
	url string

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWebsocket(rawURL string) (*Websocket, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket url %q: %w", rawURL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("invalid websocket url %q: scheme must be ws or wss", rawURL)
	}
	return &Websocket{url: rawURL}, nil
}

func (w *Websocket) Send(text string, composing bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		if err := w.connectLocked(); err != nil {
			return err
		}
	}

	_ = w.conn.SetWriteDeadline(time.Now().Add(websocketWriteTimeout))
	if err := w.conn.WriteJSON(captionMessage{Text: text, Composing: composing}); err != nil {
		w.conn.Close()
		w.conn = nil
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

func (w *Websocket) connectLocked() error {
	ctx, cancel := context.WithTimeout(context.Background(), websocketDialTimeout)
	defer cancel()

	log.Debugf("Websocket: connecting to %s", w.url)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, w.url, nil)
	if err != nil {
		if resp != nil {
			log.Warnf("Websocket: dial failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("websocket dial: %w", err)
	}
	w.conn = conn
	return nil
}

func (w *Websocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return nil
	}
	_ = w.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := w.conn.Close()
	w.conn = nil
	return err
}
