package detect

import "strings"

// ShortsSignals holds every intermediate predicate of the Shorts
// classifier, in the order they are evaluated.
type ShortsSignals struct {
	ChannelNav bool // creator channel navigation affordance
	Subscribe  bool // subscribe-to-creator affordance
	Handle     bool // @handle present in any raw label
	FullPlayer bool // full-video player veto
	Viewer     bool // final verdict
}

// Map flattens the signals for journaling.
func (s ShortsSignals) Map() map[string]bool {
	return map[string]bool{
		"channel_nav": s.ChannelNav,
		"subscribe":   s.Subscribe,
		"handle":      s.Handle,
		"full_player": s.FullPlayer,
		"viewer":      s.Viewer,
	}
}

// ClassifyShorts decides whether the extracted snapshot text shows the
// Shorts viewer. Pure and deterministic: the viewer is declared only when
// the channel-nav, subscribe, and handle markers are all present and the
// full-video veto is not. The veto exists because regular videos also show
// creator subscribe UI; it takes precedence over every positive signal.
func ClassifyShorts(texts []string) ShortsSignals {
	var s ShortsSignals
	if len(texts) == 0 {
		return s
	}

	joined := strings.ToLower(strings.Join(texts, " "))

	s.ChannelNav = strings.Contains(joined, phraseGoToChannel)
	s.Subscribe = strings.Contains(joined, phraseSubscribe)
	for _, label := range texts {
		if strings.Contains(label, handleMarker) {
			s.Handle = true
			break
		}
	}
	s.FullPlayer = strings.Contains(joined, phrasePlayerChrome) &&
		strings.Contains(joined, phrasePlayVideo)

	s.Viewer = s.ChannelNav && s.Subscribe && s.Handle && !s.FullPlayer
	return s
}
