// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package email delivers rendered digests through SendGrid. Without an
// API key the digest is written to a local HTML file instead, so a run
// on a laptop without credentials still produces something readable.
package email

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Sender delivers digests by email.
type Sender struct {
	From     string
	FromName string
	To       string
	// OutputDir receives local HTML copies when delivery is unconfigured.
	OutputDir string
	Log       zerolog.Logger

	// send issues one SendGrid request. Swappable in tests.
	send func(message *mail.SGMailV3) (*rest.Response, error)
}

// NewSender builds a Sender. An empty apiKey or recipient disables
// SendGrid; SendDigest then saves the digest locally.
func NewSender(apiKey string, cfg types.EmailConfig, outputDir string, log zerolog.Logger) *Sender {
	s := &Sender{
		From:      cfg.From,
		FromName:  cfg.FromName,
		To:        cfg.To,
		OutputDir: outputDir,
		Log:       log,
	}
	if apiKey == "" || cfg.To == "" {
		log.Warn().Str("stage", "email").Msg("email delivery unconfigured, saving digests locally")
		return s
	}
	client := sendgrid.NewSendClient(apiKey)
	s.send = client.Send
	return s
}

// SendDigest emails the rendered digest, or saves it locally when
// delivery is unconfigured. Returns the local path in the latter case.
func (s *Sender) SendDigest(d types.Digest, htmlBody, textBody string) error {
	subject := fmt.Sprintf("%s Research Digest - %s (%d papers)",
		periodLabel(d.Period), d.GeneratedAt.Format("January 2, 2006"), d.PaperCount)

	if s.send == nil {
		return s.fallbackToDisk(htmlBody)
	}

	from := mail.NewEmail(s.FromName, s.From)
	to := mail.NewEmail("", s.To)
	message := mail.NewSingleEmail(from, subject, to, textBody, htmlBody)

	resp, err := s.send(message)
	if err != nil {
		s.Log.Warn().Str("stage", "email").Err(err).
			Msg("sending digest email failed, saving locally")
		return s.fallbackToDisk(htmlBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.Log.Warn().Str("stage", "email").Int("status", resp.StatusCode).
			Str("body", resp.Body).Msg("SendGrid rejected the digest, saving locally")
		return s.fallbackToDisk(htmlBody)
	}

	s.Log.Info().Str("stage", "email").Str("to", s.To).
		Int("status", resp.StatusCode).Msg("digest emailed")
	return nil
}

// fallbackToDisk saves the digest locally. A failed send degrades to
// this; the digest run already cost API calls and must not be lost.
func (s *Sender) fallbackToDisk(htmlBody string) error {
	path, err := s.saveLocally(htmlBody)
	if err != nil {
		return err
	}
	s.Log.Info().Str("stage", "email").Str("path", path).Msg("digest saved locally")
	return nil
}

// saveLocally writes the HTML digest to OutputDir with a timestamped
// name and returns the path.
func (s *Sender) saveLocally(htmlBody string) (string, error) {
	dir := s.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	name := fmt.Sprintf("digest_%s.html", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(htmlBody), 0o644); err != nil {
		return "", fmt.Errorf("writing local digest: %w", err)
	}
	return path, nil
}

func periodLabel(p types.Period) string {
	if p == types.PeriodWeekly {
		return "Weekly"
	}
	return "Daily"
}
