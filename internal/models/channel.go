// Package models defines notification channel metadata for FanFlow.
package models

import (
	"regexp"
	"strings"
)

// Channel is a typed notification channel. Each channel carries its own
// contact validator and input-mode metadata so callers look the rules up
// once instead of branching on label strings.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelTelegram Channel = "telegram"
	ChannelDiscord  Channel = "discord"
	ChannelEmail    Channel = "email"
)

// emailPattern is the simplified RFC check applied to email submissions.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// digitsPattern matches strings consisting only of digits.
var digitsPattern = regexp.MustCompile(`^[0-9]+$`)

// ParseChannel converts a raw channel name to a Channel.
func ParseChannel(name string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(name))) {
	case ChannelSMS:
		return ChannelSMS, nil
	case ChannelWhatsApp:
		return ChannelWhatsApp, nil
	case ChannelTelegram:
		return ChannelTelegram, nil
	case ChannelDiscord:
		return ChannelDiscord, nil
	case ChannelEmail:
		return ChannelEmail, nil
	default:
		return "", ErrUnknownChannel
	}
}

// IsValid reports whether the channel is one of the supported values.
func (c Channel) IsValid() bool {
	_, err := ParseChannel(string(c))
	return err == nil
}

// DisplayName returns the user-facing channel name spliced into message
// templates. Channel names are brand names, shared across locales.
func (c Channel) DisplayName() string {
	switch c {
	case ChannelSMS:
		return "SMS"
	case ChannelWhatsApp:
		return "WhatsApp"
	case ChannelTelegram:
		return "Telegram"
	case ChannelDiscord:
		return "Discord"
	case ChannelEmail:
		return "E-mail"
	default:
		return string(c)
	}
}

// InputMode returns the input affordance a contact prompt for this
// channel should use.
func (c Channel) InputMode() InputMode {
	switch c {
	case ChannelSMS, ChannelWhatsApp:
		return InputModeNumeric
	case ChannelEmail:
		return InputModeEmail
	default:
		return InputModeText
	}
}

// ValidateContact checks a raw contact value against this channel's rule.
// The value is trimmed before validation.
func (c Channel) ValidateContact(value string) error {
	value = strings.TrimSpace(value)
	switch c {
	case ChannelSMS, ChannelWhatsApp:
		if !digitsPattern.MatchString(value) || len(value) < MinPhoneDigits || len(value) > MaxPhoneDigits {
			return ErrInvalidPhone
		}
		return nil
	case ChannelTelegram:
		if !strings.HasPrefix(value, "@") || len(value) <= 1 {
			return ErrInvalidHandle
		}
		return nil
	case ChannelDiscord:
		if len(value) < MinHandleLength {
			return ErrHandleTooShort
		}
		return nil
	case ChannelEmail:
		if !emailPattern.MatchString(value) {
			return ErrInvalidEmail
		}
		return nil
	default:
		return ErrUnknownChannel
	}
}

// ValidateEmail applies the simplified RFC email check used for both the
// profile email action and the email notification channel.
func ValidateEmail(value string) error {
	if !emailPattern.MatchString(strings.TrimSpace(value)) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateLink checks that a submitted clip link carries an http scheme.
func ValidateLink(value string) error {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return ErrInvalidLink
	}
	return nil
}
