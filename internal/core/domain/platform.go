package domain

// PlatformType identifies a social platform a creator can connect
type PlatformType string

const (
	PlatformTypeTikTok    PlatformType = "tiktok"
	PlatformTypeInstagram PlatformType = "instagram"
	PlatformTypeX         PlatformType = "x"
	PlatformTypeYouTube   PlatformType = "youtube"
	PlatformTypeFacebook  PlatformType = "facebook"
)

// CorePlatforms returns the platforms supported by CreatorSync Core
func CorePlatforms() []PlatformType {
	return []PlatformType{
		PlatformTypeTikTok,
		PlatformTypeInstagram,
		PlatformTypeX,
		PlatformTypeYouTube,
		PlatformTypeFacebook,
	}
}

// IsCorePlatform reports whether pt is one of the supported platforms.
func IsCorePlatform(pt PlatformType) bool {
	for _, p := range CorePlatforms() {
		if p == pt {
			return true
		}
	}
	return false
}

// PlatformDisplayName returns a human-readable name for a platform.
func PlatformDisplayName(pt PlatformType) string {
	switch pt {
	case PlatformTypeTikTok:
		return "TikTok"
	case PlatformTypeInstagram:
		return "Instagram"
	case PlatformTypeX:
		return "X"
	case PlatformTypeYouTube:
		return "YouTube"
	case PlatformTypeFacebook:
		return "Facebook"
	default:
		return string(pt)
	}
}
