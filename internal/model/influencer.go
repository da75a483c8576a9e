package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// Platform is the influencer's primary social platform.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformTwitter   Platform = "twitter"
)

// ParsePlatform validates a raw platform value.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(s); p {
	case PlatformInstagram, PlatformTikTok, PlatformYouTube, PlatformTwitter:
		return p, nil
	}
	return "", eris.Errorf("model: invalid platform %q", s)
}

// Influencer is a roster entry.
type Influencer struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Handle            *string   `json:"handle"`
	Email             *string   `json:"email"`
	Platform          *Platform `json:"platform"`
	ContentType       *string   `json:"content_type"`
	Location          *string   `json:"location"`
	Rate              *float64  `json:"rate"`
	FollowerCount     *int64    `json:"follower_count"`
	Notes             *string   `json:"notes"`
	PerformanceRating *float64  `json:"performance_rating"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
