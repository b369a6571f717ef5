package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"voxelshapes.ai/internal/cell/orient"
	"voxelshapes.ai/internal/geom"
	"voxelshapes.ai/internal/protocol"
	"voxelshapes.ai/internal/service"
)

type Config struct {
	HandshakeTimeout time.Duration
	IdleTimeout      time.Duration
	MaxMessageBytes  int64
	OutQueue         int
	// TuningDigest is echoed in WELCOME.
	TuningDigest string
}

func (c *Config) normalize() {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 5 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = 64 * 1024
	}
	if c.OutQueue <= 0 {
		c.OutQueue = 64
	}
}

type Server struct {
	svc *service.Service
	cfg Config
	log *log.Logger

	upgrader websocket.Upgrader
	sessions atomic.Int64
	active   atomic.Int64
}

func NewServer(svc *service.Service, cfg Config, logger *log.Logger) *Server {
	cfg.normalize()
	s := &Server{
		svc: svc,
		cfg: cfg,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

// Active is the number of connections past the handshake.
func (s *Server) Active() int64 { return s.active.Load() }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.SetReadLimit(s.cfg.MaxMessageBytes)

		sessionID, maxQ := s.handshake(conn)
		if sessionID == "" {
			return
		}
		s.active.Add(1)
		defer s.active.Add(-1)
		s.logf("ws: %s connected from %s", sessionID, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		out := make(chan []byte, maxQ)

		// Writer goroutine.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			reply := s.dispatch(msg)
			b, err := json.Marshal(reply)
			if err != nil {
				s.logf("ws: %s marshal reply: %v", sessionID, err)
				continue
			}
			select {
			case out <- b:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}
		<-done
		s.logf("ws: %s disconnected", sessionID)
	}
}

func (s *Server) handshake(conn *websocket.Conn) (sessionID string, maxQ int) {
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.HandshakeTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", 0
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", 0
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", 0
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", 0
	}

	maxQ = hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}
	if maxQ > s.cfg.OutQueue {
		maxQ = s.cfg.OutQueue
	}

	sessionID = fmt.Sprintf("S%d", s.sessions.Add(1))
	cells := s.svc.Catalog()
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		Catalogs: protocol.CatalogDigests{
			Cells:        protocol.DigestRef{Digest: cells.Digest, Count: cells.Len()},
			TuningDigest: s.cfg.TuningDigest,
		},
		Cells: s.svc.Describe(),
	}
	if err := writeJSON(conn, welcome); err != nil {
		return "", 0
	}
	return sessionID, maxQ
}

// dispatch answers one request. Every request gets exactly one reply.
func (s *Server) dispatch(msg []byte) any {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.NewError("", protocol.ErrProtoBadRequest, "bad json")
	}
	if base.ProtocolVersion != protocol.Version {
		return protocol.NewError(base.ID, protocol.ErrProtoVersion, "bad protocol_version")
	}
	switch base.Type {
	case protocol.TypeShapeQuery:
		var q protocol.ShapeQueryMsg
		if err := json.Unmarshal(msg, &q); err != nil {
			return protocol.NewError(base.ID, protocol.ErrProtoBadRequest, err.Error())
		}
		r, err := s.svc.Shape(q.Cell, q.Props, geom.PosFromArray(q.Pos))
		if err != nil {
			return protocol.NewError(q.ID, service.ErrorCode(err), err.Error())
		}
		return r.ShapeMsg(q.ID)

	case protocol.TypePlace:
		var q protocol.PlaceMsg
		if err := json.Unmarshal(msg, &q); err != nil {
			return protocol.NewError(base.ID, protocol.ErrProtoBadRequest, err.Error())
		}
		p, err := placement(q)
		if err != nil {
			return protocol.NewError(q.ID, protocol.ErrBadRequest, err.Error())
		}
		r, err := s.svc.Place(q.Cell, geom.PosFromArray(q.Pos), p)
		if err != nil {
			return protocol.NewError(q.ID, service.ErrorCode(err), err.Error())
		}
		return r.PlacedMsg(q.ID)

	case protocol.TypeBake:
		var q protocol.BakeMsg
		if err := json.Unmarshal(msg, &q); err != nil {
			return protocol.NewError(base.ID, protocol.ErrProtoBadRequest, err.Error())
		}
		face := geom.None
		if err := face.UnmarshalText([]byte(q.Face)); err != nil {
			return protocol.NewError(q.ID, protocol.ErrBadRequest, err.Error())
		}
		r, err := s.svc.Bake(q.Cell, q.Props)
		if err != nil {
			return protocol.NewError(q.ID, service.ErrorCode(err), err.Error())
		}
		return r.BakedMsg(q.ID, face)

	default:
		return protocol.NewError(base.ID, protocol.ErrProtoBadRequest, "unsupported type "+base.Type)
	}
}

func placement(q protocol.PlaceMsg) (orient.Placement, error) {
	var p orient.Placement
	if err := p.Facing.UnmarshalText([]byte(q.Facing)); err != nil {
		return p, fmt.Errorf("facing: %w", err)
	}
	if err := p.Face.UnmarshalText([]byte(q.Face)); err != nil {
		return p, fmt.Errorf("face: %w", err)
	}
	p.Hit = orient.NormalizeHit(p.Face, geom.V(q.Hit[0], q.Hit[1], q.Hit[2]))
	p.Placer = strings.TrimSpace(q.Placer)
	return p, nil
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
