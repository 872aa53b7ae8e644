// Package model defines the banner message presented by bannerd.
package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Urgency levels matching freedesktop spec.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// UrgencyNames maps urgency levels to human-readable names.
var UrgencyNames = map[int]string{
	UrgencyLow:      "low",
	UrgencyNormal:   "normal",
	UrgencyCritical: "critical",
}

// ParseUrgency maps a name or number to an urgency level.
func ParseUrgency(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "0":
		return UrgencyLow, nil
	case "normal", "1", "":
		return UrgencyNormal, nil
	case "critical", "2":
		return UrgencyCritical, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidUrgency, s)
	}
}

// Banner is a single message handed to the presenter.
type Banner struct {
	// BannerID is a ULID assigned when the banner is created.
	BannerID string `json:"banner_id"`
	Source   string `json:"source"`

	// NotificationID is the freedesktop notification id, when the banner
	// arrived over D-Bus.
	NotificationID uint32 `json:"notification_id,omitempty"`

	// Tag is an explicit identity. Banners with the same tag replace or
	// deduplicate each other.
	Tag         string `json:"tag,omitempty"`
	ContentHash string `json:"content_hash,omitempty"`

	AppName string `json:"app_name"`
	Title   string `json:"title"`
	Body    string `json:"body,omitempty"`
	Icon    string `json:"icon,omitempty"`

	Urgency     int    `json:"urgency"`
	UrgencyName string `json:"urgency_name"`
	Category    string `json:"category,omitempty"`

	// ExpireTimeout is the sender's requested timeout in milliseconds;
	// -1 leaves the choice to the daemon and 0 never expires.
	ExpireTimeout int32 `json:"expire_timeout"`

	CreatedAt int64    `json:"created_at"`
	Actions   []Action `json:"actions,omitempty"`
}

// Action represents a banner action with key and label.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Validation errors.
var (
	ErrEmptyBannerID    = errors.New("banner_id cannot be empty")
	ErrEmptySource      = errors.New("source cannot be empty")
	ErrEmptyAppName     = errors.New("app_name cannot be empty")
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrInvalidUrgency   = errors.New("urgency must be 0, 1, or 2")
	ErrInvalidCreatedAt = errors.New("created_at must be greater than 0")
)

// NewBanner creates a Banner with a generated ULID.
func NewBanner(source string) (*Banner, error) {
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return &Banner{
		BannerID:      id.String(),
		Source:        source,
		Urgency:       UrgencyNormal,
		UrgencyName:   UrgencyNames[UrgencyNormal],
		ExpireTimeout: -1,
		CreatedAt:     now.Unix(),
	}, nil
}

// Validate checks that the banner has all required fields.
func (b *Banner) Validate() error {
	if b.BannerID == "" {
		return ErrEmptyBannerID
	}
	if b.Source == "" {
		return ErrEmptySource
	}
	if b.AppName == "" {
		return ErrEmptyAppName
	}
	if b.Title == "" {
		return ErrEmptyTitle
	}
	if b.Urgency < 0 || b.Urgency > 2 {
		return ErrInvalidUrgency
	}
	if b.CreatedAt <= 0 {
		return ErrInvalidCreatedAt
	}
	return nil
}

// SetUrgency sets the urgency level and its human-readable name.
func (b *Banner) SetUrgency(level int) {
	if level < 0 || level > 2 {
		level = UrgencyNormal
	}
	b.Urgency = level
	b.UrgencyName = UrgencyNames[level]
}

// ID returns the identity used for deduplication: the tag when set,
// otherwise a hash of the content.
func (b *Banner) ID() string {
	if b.Tag != "" {
		return b.Tag
	}
	if b.ContentHash != "" {
		return b.ContentHash
	}
	return b.ComputeContentHash()
}

// Priority orders queued banners; higher urgency goes first.
func (b *Banner) Priority() int {
	return b.Urgency
}

// ComputeContentHash generates a SHA256 hash of the app, title and body.
func (b *Banner) ComputeContentHash() string {
	hash := sha256.Sum256([]byte(b.AppName + "\x00" + b.Title + "\x00" + b.Body))
	return hex.EncodeToString(hash[:])
}

// EnsureContentHash computes and sets the ContentHash if not already set.
func (b *Banner) EnsureContentHash() {
	if b.ContentHash == "" {
		b.ContentHash = b.ComputeContentHash()
	}
}

// AccessibilityMessage returns the text read out when the banner appears.
func (b *Banner) AccessibilityMessage() string {
	body := b.BodyTruncated(200)
	if body == "" {
		return b.Title
	}
	if b.Title == "" {
		return body
	}
	return b.Title + ", " + body
}

// BodyTruncated returns the body truncated to maxLen characters.
// If the body is longer, it is truncated and "..." is appended.
func (b *Banner) BodyTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	// Collapse whitespace and newlines to single spaces
	body := []rune(strings.Join(strings.Fields(b.Body), " "))

	if len(body) <= maxLen {
		return string(body)
	}
	if maxLen <= 3 {
		return string(body[:maxLen])
	}
	return string(body[:maxLen-3]) + "..."
}

// CreatedAtTime returns the creation timestamp as a time.Time.
func (b *Banner) CreatedAtTime() time.Time {
	return time.Unix(b.CreatedAt, 0)
}

// HasAction reports whether the banner offers an action with key.
func (b *Banner) HasAction(key string) bool {
	for _, a := range b.Actions {
		if a.Key == key {
			return true
		}
	}
	return false
}

// Clone creates a deep copy of the banner.
func (b *Banner) Clone() *Banner {
	clone := *b
	if b.Actions != nil {
		clone.Actions = append([]Action(nil), b.Actions...)
	}
	return &clone
}
