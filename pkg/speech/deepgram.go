package speech

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const keepAliveInterval = 5 * time.Second

// buildListenURL constructs the streaming recognition endpoint URL.
// Interim results are explicitly disabled: the adapter emits one finalized
// transcript per utterance, never partial fragments.
func buildListenURL(cfg Config) (string, error) {
	base, err := url.Parse(cfg.BaseURL + "/v1/listen")
	if err != nil {
		return "", err
	}

	q := base.Query()
	q.Set("model", cfg.Model)
	q.Set("language", cfg.Language)
	q.Set("interim_results", "false")
	q.Set("punctuate", "true")
	q.Set("smart_format", "true")
	q.Set("endpointing", "300")
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(cfg.SampleRate))
	q.Set("channels", "1")
	base.RawQuery = q.Encode()

	return base.String(), nil
}

// listenSession is one websocket connection to the recognition service.
type listenSession struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func dialListen(cfg Config) (*listenSession, error) {
	wsURL, err := buildListenURL(cfg)
	if err != nil {
		return nil, fmt.Errorf("building recognition URL: %w", err)
	}

	headers := http.Header{"Authorization": {"Token " + cfg.APIKey}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("connecting to recognition service: %w", err)
	}

	return &listenSession{conn: conn}, nil
}

// SendAudio ships one linear16 frame to the service.
func (s *listenSession) SendAudio(frame []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// KeepAlive stops the service from timing the connection out between
// utterances. Runs until stop is closed.
func (s *listenSession) KeepAlive(stop <-chan struct{}) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	msg := []byte(`{"type":"KeepAlive"}`)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteMessage(websocket.TextMessage, msg)
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// ReadMessage returns the next text message from the service.
func (s *listenSession) ReadMessage() ([]byte, error) {
	for {
		msgType, msg, err := s.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if msgType == websocket.TextMessage {
			return msg, nil
		}
	}
}

// Close asks the service to flush and closes the connection.
func (s *listenSession) Close() error {
	s.writeMu.Lock()
	_ = s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`))
	s.writeMu.Unlock()
	return s.conn.Close()
}

// listenResults is the shape of a recognition result message.
type listenResults struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// parseTranscript extracts a finalized utterance from a service message.
// Non-result messages (metadata, utterance markers) and non-final results
// yield ok=false. The transcript is trimmed; an utterance that trims to
// empty also yields ok=false.
func parseTranscript(msg []byte) (string, bool) {
	var res listenResults
	if err := json.Unmarshal(msg, &res); err != nil {
		return "", false
	}
	if res.Type != "Results" || !res.IsFinal {
		return "", false
	}
	if len(res.Channel.Alternatives) == 0 {
		return "", false
	}

	text := strings.TrimSpace(res.Channel.Alternatives[0].Transcript)
	if text == "" {
		return "", false
	}
	return text, true
}
