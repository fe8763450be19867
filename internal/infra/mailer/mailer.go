package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/mrz1836/postmark"
	"github.com/rs/zerolog"
)

var ErrSendFailed = errors.New("failed to send email")

type Message struct {
	To      string
	Subject string
	Text    string
	Tag     string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

type Postmark struct {
	client *postmark.Client
	from   string
}

func NewPostmark(serverToken, accountToken, from string) *Postmark {
	return &Postmark{client: postmark.NewClient(serverToken, accountToken), from: from}
}

func (p *Postmark) Send(ctx context.Context, m Message) error {
	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:     p.from,
		To:       m.To,
		Subject:  m.Subject,
		TextBody: m.Text,
		Tag:      m.Tag,
	})
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrSendFailed, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}

// Log writes mail to the logger instead of sending it. Used when Postmark is
// not configured.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log { return &Log{log: log} }

func (l *Log) Send(_ context.Context, m Message) error {
	l.log.Info().Str("to", m.To).Str("subject", m.Subject).Str("tag", m.Tag).Msg(m.Text)
	return nil
}

func Confirmation(siteURL, to, token string) Message {
	link := siteURL + "/confirm?token=" + url.QueryEscape(token)
	return Message{
		To:      to,
		Subject: "Confirm your email",
		Text:    "Welcome! Confirm your email address to finish setting up your account:\n\n" + link,
		Tag:     "email-confirmation",
	}
}

func PasswordReset(siteURL, to, token string) Message {
	link := siteURL + "/reset-password?token=" + url.QueryEscape(token)
	return Message{
		To:      to,
		Subject: "Reset your password",
		Text:    "Someone asked to reset the password for this account. If it was you, open this link within one hour:\n\n" + link + "\n\nOtherwise you can ignore this email.",
		Tag:     "password-reset",
	}
}
