package redis

const (
	// KeyPrefixPreload holds sanitized preload JSON per page.
	KeyPrefixPreload = "mirror:preload:"
	// KeyPrefixHeartbeat holds raw heartbeat API bodies per page.
	KeyPrefixHeartbeat = "mirror:heartbeat:"
)

// PreloadKey returns the snapshot key for a page's sanitized preload payload.
func PreloadKey(pageID string) string {
	return KeyPrefixPreload + pageID
}

// HeartbeatKey returns the snapshot key for a page's heartbeat API body.
func HeartbeatKey(pageID string) string {
	return KeyPrefixHeartbeat + pageID
}
