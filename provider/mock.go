package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a mock AI provider for testing.
type MockProvider struct {
	mu sync.Mutex

	Translations map[string]string // Map of source text to translation
	Detections   map[string]string // Map of text to detected language code
	Err          error             // Returned from every call when set
	CallCount    int               // Number of times Translate was called
	DetectCount  int               // Number of times DetectLanguage was called
	LastRequest  *TranslateRequest // Last request received
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":       "Hola",
			"World":       "Mundo",
			"Hello World": "Hola Mundo",
			"Good night":  "Buenas noches",
		},
		Detections: map[string]string{
			"Hello":     "en",
			"Bonjour":   "fr",
			"Hola":      "es",
			"Guten Tag": "de",
		},
	}
}

// Translate returns mock translations.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastRequest = &req
	if m.Err != nil {
		return "", m.Err
	}

	if translation, ok := m.Translations[req.Text]; ok {
		return translation, nil
	}
	// Bracketed text for unknown translations
	return fmt.Sprintf("[%s:%s]", req.TargetLang, req.Text), nil
}

// DetectLanguage returns the configured detection, or "en".
func (m *MockProvider) DetectLanguage(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DetectCount++
	if m.Err != nil {
		return "", m.Err
	}
	if code, ok := m.Detections[text]; ok {
		return code, nil
	}
	return "en", nil
}

// Model returns a fixed model name.
func (m *MockProvider) Model() string {
	return "mock"
}

// Calls returns the translate and detect call counts.
func (m *MockProvider) Calls() (translate, detect int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount, m.DetectCount
}

// Reset resets the call counts and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.DetectCount = 0
	m.LastRequest = nil
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)
