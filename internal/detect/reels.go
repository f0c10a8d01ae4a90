package detect

import "strings"

// ReelsSignals holds every intermediate predicate of the Reels classifier.
type ReelsSignals struct {
	ReelBy       bool
	DoubleTap    bool
	LikeCount    bool
	CommentCount bool
	Tray         bool // reels tray container marker
	Home         bool // home feed marker
	RecentClick  bool // reel-opening click inside the context window
	PlayerView   bool // triggering view looks like a player control; logged only

	LooksLikeViewer bool
	StrongViewer    bool
	Viewer          bool // final verdict
}

// Map flattens the signals for journaling.
func (s ReelsSignals) Map() map[string]bool {
	return map[string]bool{
		"reel_by":           s.ReelBy,
		"double_tap":        s.DoubleTap,
		"like_count":        s.LikeCount,
		"comment_count":     s.CommentCount,
		"tray":              s.Tray,
		"home":              s.Home,
		"recent_click":      s.RecentClick,
		"player_view":       s.PlayerView,
		"looks_like_viewer": s.LooksLikeViewer,
		"strong_viewer":     s.StrongViewer,
		"viewer":            s.Viewer,
	}
}

// ClassifyReels decides whether the extracted snapshot text shows the
// full-screen Reels viewer. viewType is the class name of the view that
// raised the event; recentReelClick is the click-context window state at
// evaluation time.
//
// The rule blocks when the screen looks like a viewer AND any of:
//   - a reel-opening click happened inside the context window (covers
//     viewers reached from the tray or explore grid, where stale tray/home
//     text may still be in the snapshot),
//   - no tray and no home markers are present (a directly opened viewer
//     carries neither),
//   - the strong text signature is present (unconditional override for
//     deep links).
func ClassifyReels(texts []string, viewType string, recentReelClick bool) ReelsSignals {
	var s ReelsSignals
	s.RecentClick = recentReelClick
	s.PlayerView = looksLikePlayerView(viewType)
	if len(texts) == 0 {
		return s
	}

	joined := strings.ToLower(strings.Join(texts, " "))

	s.ReelBy = strings.Contains(joined, phraseReelBy)
	s.DoubleTap = strings.Contains(joined, phraseDoubleTap)
	s.LikeCount = strings.Contains(joined, phraseLikeCount) ||
		strings.Contains(joined, phraseViewLikes)
	s.CommentCount = strings.Contains(joined, phraseCommentCount) ||
		strings.Contains(joined, phraseViewComments)
	s.Tray = strings.Contains(joined, phraseReelsTray)
	s.Home = strings.Contains(joined, phraseHomeFeed)

	s.LooksLikeViewer = s.ReelBy && (s.DoubleTap || s.LikeCount || s.CommentCount)
	s.StrongViewer = s.ReelBy && s.DoubleTap && (s.LikeCount || s.CommentCount)

	s.Viewer = s.LooksLikeViewer &&
		(s.RecentClick || (!s.Tray && !s.Home) || s.StrongViewer)
	return s
}

func looksLikePlayerView(viewType string) bool {
	lower := strings.ToLower(viewType)
	for _, tag := range playerViewTags {
		if strings.Contains(lower, tag) {
			return true
		}
	}
	return false
}
