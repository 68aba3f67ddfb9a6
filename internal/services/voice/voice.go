// Package voice wraps the ElevenLabs text-to-speech API.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
	defaultModel   = "eleven_monolingual_v1"
)

var ErrVoiceNotFound = errors.New("voice: not found")

type Voice struct {
	VoiceID    string `json:"voiceId"`
	Name       string `json:"name"`
	PreviewURL string `json:"previewUrl"`
}

var mockVoices = []Voice{
	{VoiceID: "voice1", Name: "Professional Female", PreviewURL: "https://example.com/preview1.mp3"},
	{VoiceID: "voice2", Name: "Professional Male", PreviewURL: "https://example.com/preview2.mp3"},
	{VoiceID: "voice3", Name: "Friendly Female", PreviewURL: "https://example.com/preview3.mp3"},
}

type Service struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New builds the client. baseURL and client may be empty/nil.
func New(apiKey, baseURL string, client *http.Client, log *zap.Logger) *Service {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    client,
		log:     log,
	}
}

func (s *Service) Enabled() bool { return s.apiKey != "" }

// GenerateSpeech returns MPEG audio for text.
func (s *Service) GenerateSpeech(ctx context.Context, text, voiceID string) ([]byte, error) {
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	if !s.Enabled() {
		s.log.Info("[mock] elevenlabs speech", zap.String("voice_id", voiceID), zap.Int("chars", len(text)))
		return []byte("Mocked audio data"), nil
	}

	body, err := json.Marshal(map[string]string{"text": text, "model_id": defaultModel})
	if err != nil {
		return nil, err
	}
	resp, err := s.do(ctx, http.MethodPost, "/v1/text-to-speech/"+url.PathEscape(voiceID), body, "audio/mpeg")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

type apiVoice struct {
	VoiceID    string `json:"voice_id"`
	Name       string `json:"name"`
	PreviewURL string `json:"preview_url"`
}

func (v apiVoice) toVoice() Voice {
	return Voice{VoiceID: v.VoiceID, Name: v.Name, PreviewURL: v.PreviewURL}
}

func (s *Service) ListVoices(ctx context.Context) ([]Voice, error) {
	if !s.Enabled() {
		out := make([]Voice, len(mockVoices))
		copy(out, mockVoices)
		return out, nil
	}

	resp, err := s.do(ctx, http.MethodGet, "/v1/voices", nil, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Voices []apiVoice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("elevenlabs voices: decode: %w", err)
	}
	voices := make([]Voice, 0, len(payload.Voices))
	for _, v := range payload.Voices {
		voices = append(voices, v.toVoice())
	}
	return voices, nil
}

func (s *Service) GetVoice(ctx context.Context, voiceID string) (*Voice, error) {
	if !s.Enabled() {
		for _, v := range mockVoices {
			if v.VoiceID == voiceID {
				v := v
				return &v, nil
			}
		}
		return nil, ErrVoiceNotFound
	}

	resp, err := s.do(ctx, http.MethodGet, "/v1/voices/"+url.PathEscape(voiceID), nil, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var v apiVoice
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, fmt.Errorf("elevenlabs voice: decode: %w", err)
	}
	out := v.toVoice()
	return &out, nil
}

func (s *Service) do(ctx context.Context, method, path string, body []byte, accept string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs %s: %w", path, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrVoiceNotFound
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("elevenlabs %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}
