package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type sseToken struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type sseMeta struct {
	Type               string `json:"type"`
	Mode               string `json:"mode"`
	ModeDescription    string `json:"mode_description"`
	RelevantPostsCount int    `json:"relevant_posts_count"`
}

type sseError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type sseDone struct {
	Type string `json:"type"`
}

type sseStreamer struct {
	writer  http.ResponseWriter
	flusher http.Flusher
}

func newSSEStreamer(writer http.ResponseWriter) (*sseStreamer, error) {
	flusher, ok := writer.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support streaming")
	}
	return &sseStreamer{writer: writer, flusher: flusher}, nil
}

func (s *sseStreamer) SendToken(token string) error {
	return s.send(sseToken{Type: "token", Content: token})
}

func (s *sseStreamer) SendMeta(meta sseMeta) error {
	return s.send(meta)
}

func (s *sseStreamer) SendError(err error) error {
	return s.send(sseError{Type: "error", Error: err.Error()})
}

func (s *sseStreamer) SendDone() error {
	if err := s.send(sseDone{Type: "done"}); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.writer, "data: [DONE]\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseStreamer) send(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.writer, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
