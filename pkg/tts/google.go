// Package tts synthesizes speech from text using the Google Cloud
// Text-to-Speech REST API.
package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"creatorcoach/pkg/config"
)

const defaultEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"

// Config holds Google TTS settings.
type Config struct {
	APIKey       string
	Endpoint     string
	LanguageCode string
	VoiceName    string
	SpeakingRate float64
	Pitch        float64
}

// LoadConfig reads TTS settings from the environment.
func LoadConfig() Config {
	return Config{
		APIKey:       config.GetEnv("GOOGLE_TTS_API_KEY", ""),
		Endpoint:     config.GetEnv("GOOGLE_TTS_ENDPOINT", defaultEndpoint),
		LanguageCode: config.GetEnv("GOOGLE_TTS_LANGUAGE", "en-US"),
		VoiceName:    config.GetEnv("GOOGLE_TTS_VOICE", "en-US-Neural2-F"),
		SpeakingRate: config.GetEnvFloat("GOOGLE_TTS_SPEAKING_RATE", 1.0),
		Pitch:        config.GetEnvFloat("GOOGLE_TTS_PITCH", 0.0),
	}
}

// Client synthesizes MP3 audio from text.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("tts: API key is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		cfg:        cfg,
	}, nil
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate"`
		Pitch         float64 `json:"pitch"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize converts text to MP3 audio bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("tts: text is required")
	}

	var reqBody synthesizeRequest
	reqBody.Input.Text = text
	reqBody.Voice.LanguageCode = c.cfg.LanguageCode
	reqBody.Voice.Name = c.cfg.VoiceName
	reqBody.AudioConfig.AudioEncoding = "MP3"
	reqBody.AudioConfig.SpeakingRate = c.cfg.SpeakingRate
	reqBody.AudioConfig.Pitch = c.cfg.Pitch

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("tts: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tts: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tts: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var response synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("tts: decode response: %w", err)
	}
	if response.AudioContent == "" {
		return nil, errors.New("tts: response contained no audio")
	}

	audio, err := base64.StdEncoding.DecodeString(response.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("tts: decode audio: %w", err)
	}
	return audio, nil
}
