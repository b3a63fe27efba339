package models

import (
	"fmt"
	"strings"
)

// Platform identifies one of the supported ad platforms.
type Platform string

const (
	GooglePlatform Platform = "google"
	MetaPlatform   Platform = "meta"
	RedditPlatform Platform = "reddit"
	XPlatform      Platform = "x"
)

// AllPlatforms lists every supported platform, in launch order.
func AllPlatforms() []Platform {
	return []Platform{GooglePlatform, MetaPlatform, RedditPlatform, XPlatform}
}

func (p Platform) Valid() bool {
	switch p {
	case GooglePlatform, MetaPlatform, RedditPlatform, XPlatform:
		return true
	}
	return false
}

// ParsePlatform converts a wire string into a Platform.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

// CampaignIDPrefix is prepended to campaign ids so the owning platform
// can be recovered from the id alone.
func (p Platform) CampaignIDPrefix() string {
	return string(p) + "_"
}

// PlatformFromCampaignID recovers the platform encoded in a campaign id prefix.
func PlatformFromCampaignID(campaignID string) (Platform, bool) {
	for _, p := range AllPlatforms() {
		if strings.HasPrefix(campaignID, p.CampaignIDPrefix()) {
			return p, true
		}
	}
	return "", false
}
