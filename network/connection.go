package network

import (
	"encoding/binary"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const headerSize = 4 // 2字节消息ID + 2字节数据长度

// MaxPayload bounds a single frame's payload; the length field is 16 bits.
const MaxPayload = 1<<16 - 1

var (
	ErrShortFrame   = errors.New("network: frame shorter than its header")
	ErrLargePayload = errors.New("network: payload exceeds frame limit")
)

// Packet is one decoded logical message.
type Packet struct {
	MsgID uint16
	Data  []byte
}

// Connection is one persistent per-player link. Implementations must be safe
// for one concurrent reader and one concurrent writer.
type Connection interface {
	Send(msgID uint16, data []byte) error
	ReadPacket() (*Packet, error)
	SetHeartbeat(interval time.Duration)
	RemoteAddr() net.Addr
	Close() error
}

// WSConnection frames packets over binary websocket messages.
type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	heartbeat time.Duration
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

func (c *WSConnection) Send(msgID uint16, data []byte) error {
	if len(data) > MaxPayload {
		return ErrLargePayload
	}

	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	frame := make([]byte, headerSize+len(data))
	binary.BigEndian.PutUint16(frame[0:2], msgID)
	binary.BigEndian.PutUint16(frame[2:4], uint16(len(data)))
	copy(frame[headerSize:], data)

	return c.conn.WriteMessage(websocket.BinaryMessage, frame)
}

func (c *WSConnection) ReadPacket() (*Packet, error) {
	if c.heartbeat > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.heartbeat * 2))
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if len(data) < headerSize {
		return nil, ErrShortFrame
	}

	msgID := binary.BigEndian.Uint16(data[0:2])
	length := int(binary.BigEndian.Uint16(data[2:4]))
	if len(data) < headerSize+length {
		return nil, ErrShortFrame
	}

	return &Packet{MsgID: msgID, Data: data[headerSize : headerSize+length]}, nil
}

// SetHeartbeat makes reads fail when no frame arrives within two intervals.
func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.heartbeat = interval
	c.conn.SetReadDeadline(time.Now().Add(interval * 2))
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
