// Package speech renders reply text to audio files for the chat surface.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Vatsa10/Zomatooo/internal/logging"
)

// Synthesizer converts reply text into a served voice file and returns
// its path relative to the static dir (e.g. "voice_<id>.mp3").
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
	Close() error
}

// HTTPSynthesizer posts text to a speech API and writes the returned
// mp3 under the static dir.
type HTTPSynthesizer struct {
	endpoint  string
	voice     string
	staticDir string
	client    *http.Client
	log       *logging.Logger
}

// NewHTTPSynthesizer creates a synthesizer against the given endpoint.
func NewHTTPSynthesizer(endpoint, voice, staticDir string, log *logging.Logger) *HTTPSynthesizer {
	return &HTTPSynthesizer{
		endpoint:  endpoint,
		voice:     voice,
		staticDir: staticDir,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log.Sub("speech"),
	}
}

// Synthesize renders the text and returns the voice file name.
func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]string{"text": text, "voice": s.voice})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("speech api status %d: %s", resp.StatusCode, payload)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading audio: %w", err)
	}

	if err := os.MkdirAll(s.staticDir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("voice_%s.mp3", uuid.New().String())
	if err := os.WriteFile(filepath.Join(s.staticDir, name), audio, 0o644); err != nil {
		return "", fmt.Errorf("writing voice file: %w", err)
	}

	s.log.Debug().Str("file", name).Int("bytes", len(audio)).Msg("voice file rendered")
	return name, nil
}

func (s *HTTPSynthesizer) Close() error { return nil }

// Mock is a test double for Synthesizer.
type Mock struct {
	SynthesizeFunc func(ctx context.Context, text string) (string, error)

	// Texts records every synthesized input.
	Texts []string
}

func (m *Mock) Synthesize(ctx context.Context, text string) (string, error) {
	m.Texts = append(m.Texts, text)
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text)
	}
	return "voice_mock.mp3", nil
}

func (m *Mock) Close() error { return nil }
