package push

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const reconnectDelay = 3 * time.Second

// Socket keeps a websocket connection to the backend's push endpoint and
// feeds decoded frames into a Router. Malformed frames are dropped and
// logged; they never crash the read loop or reach a consumer.
type Socket struct {
	url    string
	router *Router
	logger *zap.Logger
}

// NewSocket builds a socket bound to a router.
func NewSocket(url string, router *Router, logger *zap.Logger) *Socket {
	return &Socket{url: url, router: router, logger: logger}
}

// Run connects and reads until ctx is canceled, redialing after transient
// connection loss. It returns nil on cancellation.
func (s *Socket) Run(ctx context.Context) error {
	for {
		if err := s.readOnce(ctx); err != nil {
			s.logger.Warn("push connection lost", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *Socket) readOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	s.logger.Debug("push connected", zap.String("url", s.url))

	// Unblock ReadMessage when the caller navigates away.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.dispatch(data)
	}
}

func (s *Socket) dispatch(data []byte) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.logger.Warn("dropping undecodable push frame", zap.Error(err))
		return
	}
	switch frame.Type {
	case EventTicketStatusUpdated:
		var update TicketStatusUpdate
		if err := json.Unmarshal(frame.Payload, &update); err != nil {
			s.logger.Warn("dropping malformed status update", zap.Error(err))
			return
		}
		s.router.DispatchTicketStatus(update)
	case EventNewJobRequest, EventJobRequestUpdated:
		var signal JobRequestSignal
		if err := json.Unmarshal(frame.Payload, &signal); err != nil {
			s.logger.Warn("dropping malformed request signal", zap.Error(err))
			return
		}
		s.router.DispatchJobRequestSignal(signal)
	case EventServiceCenterVerified:
		var change CenterVerification
		if err := json.Unmarshal(frame.Payload, &change); err != nil {
			s.logger.Warn("dropping malformed verification change", zap.Error(err))
			return
		}
		s.router.DispatchCenterVerification(change)
	default:
		s.logger.Debug("ignoring unknown push event", zap.String("type", string(frame.Type)))
	}
}
