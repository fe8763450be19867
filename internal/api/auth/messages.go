package auth

import (
	"errors"
	"strings"

	"creator-app/internal/service/identity"
)

const GenericMessage = "Something went wrong. Please try again."

var typedMessages = []struct {
	err error
	msg string
}{
	{identity.ErrAlreadyRegistered, "An account with this email already exists. Try signing in instead."},
	{identity.ErrInvalidCredentials, "Invalid email or password."},
	{identity.ErrEmailNotConfirmed, "Please confirm your email address before signing in."},
	{identity.ErrRateLimited, "Too many attempts. Please wait a minute and try again."},
	{identity.ErrInvalidToken, "This link is invalid or has expired. Please request a new one."},
	{identity.ErrNoPassword, "This account uses Google sign-in. Sign in with Google or reset your password to set one."},
}

type MessageRule struct {
	Needle  string
	Message string
}

// MessageRules maps raw provider error text to user messages when the error
// carries no typed identity error. Needles are lower case.
var MessageRules = []MessageRule{
	{"already registered", typedMessages[0].msg},
	{"already exists", typedMessages[0].msg},
	{"invalid login credentials", typedMessages[1].msg},
	{"email not confirmed", typedMessages[2].msg},
	{"rate limit", typedMessages[3].msg},
	{"too many requests", typedMessages[3].msg},
}

// Message returns a user-facing sentence for err. It never echoes the raw text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, t := range typedMessages {
		if errors.Is(err, t.err) {
			return t.msg
		}
	}
	return MessageForText(err.Error())
}

func MessageForText(raw string) string {
	raw = strings.ToLower(raw)
	for _, r := range MessageRules {
		if strings.Contains(raw, r.Needle) {
			return r.Message
		}
	}
	return GenericMessage
}
