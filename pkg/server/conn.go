package server

import (
	"errors"
	"io"
	"strings"

	"github.com/gorilla/websocket"
)

// sessionConn carries one interpreter session over a websocket. Every Write
// is one text message and every text message received is one input line.
type sessionConn struct {
	ws *websocket.Conn
}

func (c *sessionConn) Write(p []byte) (int, error) {
	if err := c.ws.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *sessionConn) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		if _, err := io.WriteString(c, prompt); err != nil {
			return "", err
		}
	}
	for {
		kind, msg, err := c.ws.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				return "", io.EOF
			}
			return "", err
		}
		if kind != websocket.TextMessage {
			continue
		}
		return strings.TrimRight(string(msg), "\r\n"), nil
	}
}

func (c *sessionConn) close(code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = c.ws.WriteMessage(websocket.CloseMessage, msg)
	_ = c.ws.Close()
}
