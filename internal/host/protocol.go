package host

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nerdneilsfield/select-translator/pkg/translation"
)

const (
	// MaxMessageSize 宿主发往浏览器的单条消息上限
	MaxMessageSize = 1 << 20
	// MaxIncomingSize 浏览器发往宿主的单条消息上限
	MaxIncomingSize = 64 << 20
)

// ErrMessageTooLarge 消息超过协议允许的长度
var ErrMessageTooLarge = errors.New("native message too large")

// 支持的动作
const (
	ActionTranslate    = "translate"
	ActionGetSettings  = "getSettings"
	ActionSaveSettings = "saveSettings"
	ActionClearCache   = "clearCache"
	ActionGetStats     = "getStats"
	ActionPing         = "ping"
)

// Request 浏览器发来的消息
type Request struct {
	ID     string          `json:"id,omitempty"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Response 发回浏览器的消息，ID 与请求一致
type Response struct {
	ID       string                `json:"id"`
	Success  bool                  `json:"success"`
	Results  []translation.Result  `json:"results,omitempty"`
	Settings *translation.Settings `json:"settings,omitempty"`
	Stats    *translation.Stats    `json:"stats,omitempty"`
	Version  string                `json:"version,omitempty"`
	Error    string                `json:"error,omitempty"`
	Code     string                `json:"code,omitempty"`
}

// ReadMessage 读取一条消息：4 字节本机字节序长度 + JSON。
// 流在消息边界处结束时返回 io.EOF
func ReadMessage(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	size := binary.NativeEndian.Uint32(header[:])
	if size > MaxIncomingSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return body, nil
}

// WriteMessage 序列化 v 并写出一条消息
func WriteMessage(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if len(data) > MaxMessageSize {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(data))
	}

	frame := make([]byte, 4+len(data))
	binary.NativeEndian.PutUint32(frame, uint32(len(data)))
	copy(frame[4:], data)

	_, err = w.Write(frame)
	return err
}
