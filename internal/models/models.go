// Package models defines the core data structures for FanFlow.
//
// It includes the message-graph node types, per-session chat message
// instances, profile and clip records, and the shared API response
// envelopes used across modules.
package models

import (
	"errors"
	"time"
)

// MessageSender identifies which side of the conversation authored a message.
type MessageSender string

const (
	// SenderAssistant marks messages authored by the virtual assistant.
	SenderAssistant MessageSender = "assistant"
	// SenderUser marks messages echoed back from user input.
	SenderUser MessageSender = "user"
)

// NodeKind defines how a message node interacts with the user.
type NodeKind string

const (
	// NodeStatement is a plain assistant statement with no interaction.
	NodeStatement NodeKind = "statement"
	// NodeChoice presents a list of selectable options.
	NodeChoice NodeKind = "choice"
	// NodeInput prompts for a free-text value.
	NodeInput NodeKind = "free-input"
)

// ActionID identifies what a free-input submission is meant to fulfill.
type ActionID string

const (
	ActionSetName       ActionID = "set-name"
	ActionSetEmail      ActionID = "set-email"
	ActionSetNationalID ActionID = "set-national-id"
	ActionSetContact    ActionID = "set-contact"
	ActionSubmitClip    ActionID = "submit-clip"
)

// InputMode hints the client at the appropriate keyboard/input affordance.
type InputMode string

const (
	InputModeText    InputMode = "text"
	InputModeEmail   InputMode = "email"
	InputModeNumeric InputMode = "numeric"
	InputModeURL     InputMode = "url"
)

// Validation constants for free-input submissions.
const (
	// NationalIDLength is the exact digit count of a valid national id.
	NationalIDLength = 11
	// MinPhoneDigits is the minimum digit count for phone-like contacts.
	MinPhoneDigits = 10
	// MaxPhoneDigits is the maximum digit count for phone-like contacts.
	MaxPhoneDigits = 15
	// MinHandleLength is the minimum length for free handle contacts.
	MinHandleLength = 2
)

// Error variables shared across modules for better testability.
var (
	ErrNodeNotFound     = errors.New("message node not found")
	ErrUnknownLocale    = errors.New("unknown locale")
	ErrEmptyActorKey    = errors.New("actor key cannot be empty")
	ErrEmptyActionType  = errors.New("action type cannot be empty")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrEmptyValue       = errors.New("value cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrInvalidID        = errors.New("national id must be 11 digits")
	ErrInvalidPhone     = errors.New("contact must be numeric, 10-15 digits")
	ErrInvalidHandle    = errors.New("handle must start with @")
	ErrHandleTooShort   = errors.New("handle too short")
	ErrInvalidLink      = errors.New("link must start with http:// or https://")
	ErrUnknownChannel   = errors.New("unknown notification channel")
	ErrNothingSelected  = errors.New("at least one team must be selected")
)

// Option is one selectable choice on a message node. NextNodeID names the
// graph node to advance to; an empty NextNodeID marks a control option the
// dialog controller handles itself (toggle, confirm, restart, reveal, open).
type Option struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	NextNodeID string `json:"next_node_id,omitempty"`
}

// InputSpec describes the free-text step attached to a NodeInput node.
type InputSpec struct {
	Label    string    `json:"label"`
	ActionID ActionID  `json:"action_id"`
	Mode     InputMode `json:"mode"`
}

// MessageNode is one authored conversational turn in the message graph.
// Nodes are immutable after graph construction. Text may contain
// {{placeholder}} tokens resolved against injected data at render time.
// Next chains a statement node to its follow-up without user interaction.
type MessageNode struct {
	ID          string            `json:"id"`
	Text        string            `json:"text"`
	Sender      MessageSender     `json:"sender"`
	Kind        NodeKind          `json:"kind"`
	Next        string            `json:"next,omitempty"`
	Options     []Option          `json:"options,omitempty"`
	Input       *InputSpec        `json:"input,omitempty"`
	DefaultData map[string]string `json:"default_data,omitempty"`
}

// RenderedOption is an Option instance placed into a session timeline.
// InstanceID changes on every mutation of the carrying message so render
// layers treat the option as new; ID stays the stable graph-level key.
type RenderedOption struct {
	InstanceID string `json:"instance_id"`
	ID         string `json:"id"`
	Label      string `json:"label"`
	NextNodeID string `json:"next_node_id,omitempty"`
}

// ChatMessage is a concrete instance of a MessageNode placed into a
// session's timeline. Data is the only part mutated after creation, and
// only while the message is the active one (multi-select toggles, inline
// validation errors, reveal toggles).
type ChatMessage struct {
	InstanceID string            `json:"instance_id"`
	NodeID     string            `json:"node_id"`
	Text       string            `json:"text"`
	Sender     MessageSender     `json:"sender"`
	Kind       NodeKind          `json:"kind"`
	Options    []RenderedOption  `json:"options,omitempty"`
	Input      *InputSpec        `json:"input,omitempty"`
	Active     bool              `json:"active"`
	Data       map[string]string `json:"data,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Profile holds the accumulated identity fields a session gathers. Reveal
// flags control whether masked fields are shown in full on re-render.
type Profile struct {
	ActorID        string    `json:"actor_id"`
	DisplayName    string    `json:"display_name"`
	Email          string    `json:"email"`
	NationalID     string    `json:"national_id,omitempty"`
	Channel        string    `json:"channel,omitempty"`
	ChannelContact string    `json:"channel_contact,omitempty"`
	Teams          []string  `json:"teams,omitempty"`
	RevealEmail    bool      `json:"-"`
	RevealID       bool      `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Clip is a user-submitted video link.
type Clip struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// CooldownRecord tracks the last permitted attempt for one
// (actor, action type) pair. Counter is observability only.
type CooldownRecord struct {
	ActorKey       string    `json:"actor_key"`
	ActionType     string    `json:"action_type"`
	LastActivityAt time.Time `json:"last_activity_at"`
	Counter        int64     `json:"counter"`
}

// CooldownResult is the gateway's verdict for one attempt.
type CooldownResult struct {
	Allowed bool   `json:"allowed"`
	Message string `json:"message,omitempty"`
}

// SaveOutcome is the shared result shape for cooldown-gated writes.
type SaveOutcome struct {
	OK        bool   `json:"ok"`
	Throttled bool   `json:"throttled,omitempty"`
	NotFound  bool   `json:"not_found,omitempty"`
	Message   string `json:"message,omitempty"`
}
