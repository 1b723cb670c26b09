package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"auction-advisor/internal/domain"
	"auction-advisor/internal/features"
	"auction-advisor/internal/observability"
)

// WSConfig configures live estimate connections.
type WSConfig struct {
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is how long a connection may stay silent, pongs included.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// MaxMessageSize bounds one incoming request.
	MaxMessageSize int64
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		PingInterval:   30 * time.Second,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxMessageSize: 4096,
	}
}

// handleWS answers each text message (a JSON EstimateRequest) with an
// estimate or an error envelope, until the client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Debug("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.trackClient(1)
	defer s.trackClient(-1)

	ctx, cancel := context.WithCancel(context.Background())

	conn.SetReadLimit(s.ws.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.ws.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.ws.ReadTimeout))
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.pingLoop(ctx, conn)
	}()
	defer wg.Wait()
	defer cancel()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("WebSocket closed", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(s.ws.ReadTimeout))

		reply := s.liveEstimate(ctx, msgType, data)

		body, code := encodeReply(http.StatusOK, reply)
		if code == http.StatusInternalServerError {
			s.logger.Error("Encode WebSocket reply failed", zap.String("surface", "ws"))
		}

		conn.SetWriteDeadline(time.Now().Add(s.ws.WriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			s.logger.Debug("WebSocket write failed", zap.Error(err))
			return
		}
	}
}

// liveEstimate turns one WebSocket message into a reply value.
func (s *Server) liveEstimate(ctx context.Context, msgType int, data []byte) any {
	if msgType != websocket.TextMessage {
		return newErrorResponse(http.StatusBadRequest, fmt.Errorf("%w: expected a text message", errBadInput))
	}

	req := domain.DefaultEstimateRequest()
	if err := json.Unmarshal(data, &req); err != nil {
		return newErrorResponse(http.StatusBadRequest, fmt.Errorf("%w: %v", errBadInput, err))
	}
	if err := features.ValidateRequest(req); err != nil {
		return newErrorResponse(http.StatusBadRequest, err)
	}

	est, err := s.estimator.Estimate(ctx, req)
	s.record(err)
	if err != nil {
		s.logger.Warn("Estimate failed", zap.String("surface", "ws"), zap.Error(err))
		return newErrorResponse(http.StatusBadGateway, err)
	}
	return est
}

func (s *Server) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(s.ws.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.ws.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (s *Server) trackClient(delta int) {
	s.mu.Lock()
	s.wsClients += delta
	s.mu.Unlock()

	if delta > 0 {
		observability.WebSocketOpened()
	} else {
		observability.WebSocketClosed()
	}
}
