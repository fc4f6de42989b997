package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"DarkPull/internal/domain/models"
	drepo "DarkPull/internal/domain/repository"
	"DarkPull/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream implements a MarketStream backed by the Polygon trades WebSocket.
// Authentication happens right after connect; subscriptions use the
// "T.<SYMBOL>" channel per symbol.
type Stream struct {
	apiKey         string
	websocketURL   string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	logger         *logger.Logger

	mu         sync.Mutex
	conn       *websocket.Conn
	connected  bool
	subscribed []string
}

// NewStream creates a new Polygon MarketStream.
func NewStream(apiKey, websocketURL string, reconnectDelay, pingInterval time.Duration, lgr *logger.Logger) drepo.MarketStream {
	return &Stream{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		logger:         lgr,
	}
}

type wsAction struct {
	Action string `json:"action"`
	Params string `json:"params"`
}

type wsStatus struct {
	Event   string `json:"ev"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Connect dials the WebSocket and authenticates.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("polygon connect: %w", err)
	}

	if err := conn.WriteJSON(wsAction{Action: "auth", Params: s.apiKey}); err != nil {
		_ = conn.Close()
		return fmt.Errorf("polygon auth: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()

	s.logger.Info("polygon: connected", logger.String("url", s.websocketURL))
	return nil
}

// Subscribe subscribes to the trade channel for the given symbols.
// Symbols are remembered so Reconnect can resubscribe.
func (s *Stream) Subscribe(ctx context.Context, symbols ...string) error {
	s.mu.Lock()
	conn, connected := s.conn, s.connected
	if len(symbols) > 0 {
		s.subscribed = symbols
	} else {
		symbols = s.subscribed
	}
	s.mu.Unlock()

	if conn == nil || !connected {
		return fmt.Errorf("polygon not connected")
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols to subscribe")
	}

	channels := make([]string, len(symbols))
	for i, sym := range symbols {
		channels[i] = "T." + sym
	}
	if err := conn.WriteJSON(wsAction{Action: "subscribe", Params: strings.Join(channels, ",")}); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	s.logger.Info("polygon: subscribed", logger.Strings("symbols", symbols))
	return nil
}

// Read streams Trade events and errors. Trade frames arrive as arrays of
// events; non-trade frames (status, auth acks) are skipped.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Trade, <-chan error) {
	trades := make(chan *models.Trade, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				conn := s.conn
				s.mu.Unlock()
				if conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(trades)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				s.mu.Lock()
				conn := s.conn
				s.mu.Unlock()
				if conn == nil {
					errs <- fmt.Errorf("polygon conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("polygon read: %w", err)
					return
				}

				var raw []json.RawMessage
				if err := json.Unmarshal(b, &raw); err != nil {
					// non-array frame; ignore
					continue
				}
				for _, ev := range raw {
					var head struct {
						Event string `json:"ev"`
					}
					if err := json.Unmarshal(ev, &head); err != nil {
						continue
					}
					switch head.Event {
					case "T":
						var t models.Trade
						if err := json.Unmarshal(ev, &t); err != nil {
							continue
						}
						select {
						case trades <- &t:
						default:
							// drop on backpressure
						}
					case "status":
						var st wsStatus
						if err := json.Unmarshal(ev, &st); err == nil && st.Status == "auth_failed" {
							errs <- fmt.Errorf("polygon auth failed: %s", st.Message)
							return
						}
					}
				}
			}
		}
	}()

	return trades, errs
}

// Reconnect closes and reconnects, resubscribing remembered symbols.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
