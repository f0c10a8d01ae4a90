package model

import "time"

// Shared defaults used by both the daemon and the watch client.
const (
	DefaultCooldown         = 1000 * time.Millisecond
	DefaultReelClickWindow  = 1500 * time.Millisecond
	DefaultExploreWindow    = 30 * time.Second
	DefaultAction           = ActionBack
	DefaultUpdateInterval   = 2 * time.Second
	DefaultDecisionBuffer   = 200
)
