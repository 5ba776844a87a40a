package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrConnectionClosed = errors.New("websocket connection is closed")
)

const (
	readTimeout  = time.Minute
	writeTimeout = 30 * time.Second
)

type Connection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
	IsClosed() bool
}

type websocketConn struct {
	conn      *websocket.Conn
	lock      sync.Mutex
	isClosed  atomic.Bool
	closeOnce sync.Once
}

// newWebsocketConn 升级连接，readLimit 限制单帧大小，<=0 不限制
func newWebsocketConn(w http.ResponseWriter, r *http.Request, readLimit int64) (*websocketConn, error) {
	upGrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	conn, err := upGrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	if readLimit > 0 {
		conn.SetReadLimit(readLimit)
	}
	return &websocketConn{conn: conn}, nil
}

func (w *websocketConn) ReadMessage() (int, []byte, error) {
	if w.isClosed.Load() {
		return 0, nil, ErrConnectionClosed
	}

	_ = w.conn.SetReadDeadline(time.Now().Add(readTimeout))

	messageType, p, err := w.conn.ReadMessage()
	if err != nil {
		// 读取出错后连接不可再用
		w.isClosed.Store(true)
		return 0, nil, ErrConnectionClosed
	}
	return messageType, p, nil
}

func (w *websocketConn) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if w.isClosed.Load() {
		return ErrConnectionClosed
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	_ = w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err = w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		w.isClosed.Store(true)
		return ErrConnectionClosed
	}
	return nil
}

func (w *websocketConn) Close() error {
	var err error
	w.closeOnce.Do(func() {
		broken := w.isClosed.Swap(true)

		w.lock.Lock()
		defer w.lock.Unlock()

		// 读写失败后对端可能已断开，不再发送关闭帧
		if !broken {
			closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "analysis finished")
			_ = w.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			_ = w.conn.WriteMessage(websocket.CloseMessage, closeMsg)
		}
		err = w.conn.Close()
	})
	return err
}

func (w *websocketConn) IsClosed() bool {
	return w.isClosed.Load()
}
