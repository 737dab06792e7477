// Package profile loads the persona documents the avatar speaks from.
package profile

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"avatar-agent/internal/config"
	"avatar-agent/internal/logger"
)

const (
	summaryFallback  = "Resumen profesional no disponible"
	linkedInFallback = "Perfil de LinkedIn no disponible"
)

// Profile is the persona the agent impersonates.
type Profile struct {
	Name     string
	Summary  string
	LinkedIn string
}

// Load reads the summary text and the LinkedIn PDF export. Missing files are
// replaced by placeholder text so the server still starts; the avatar just
// knows less about its owner.
func Load(cfg config.ProfileConfig) *Profile {
	p := &Profile{
		Name:     cfg.Name,
		Summary:  loadSummary(cfg.SummaryPath),
		LinkedIn: loadLinkedIn(cfg.LinkedInPDF),
	}
	if p.Name == "" {
		p.Name = "the site owner"
	}
	return p
}

func loadSummary(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Str("path", path).Err(err).Msg("summary file not available")
		return summaryFallback
	}
	return strings.TrimSpace(string(data))
}

func loadLinkedIn(path string) string {
	text, err := extractPDFText(path)
	if err != nil {
		logger.Warn().Str("path", path).Err(err).Msg("LinkedIn PDF not available")
		return linkedInFallback
	}
	return text
}

// extractPDFText concatenates the plain text of every page.
func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("PDF contains no extractable text")
	}
	return text, nil
}
