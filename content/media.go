package content

import (
	"fmt"
	"regexp"
)

var (
	urlRegex = regexp.MustCompile(`https?://[^\s<>"]+`)

	imageExtRegex = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)(\?.*)?$`)
	videoExtRegex = regexp.MustCompile(`(?i)\.(mp4|webm|mov|m4v)(\?.*)?$`)
	audioExtRegex = regexp.MustCompile(`(?i)\.(mp3|wav|ogg|flac|m4a|aac)(\?.*)?$`)

	// youtube.com/watch?v=ID, youtu.be/ID, youtube.com/shorts/ID
	youtubeRegex = regexp.MustCompile(`(?i)(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`)
)

// ExtractMedia returns media spans in order of first appearance,
// deduplicated by matched text. Any http(s) URL with a known media
// file extension or a recognized video-host shape qualifies.
func ExtractMedia(text string) []Media {
	seen := make(map[string]bool)
	var media []Media
	for _, raw := range urlRegex.FindAllString(text, -1) {
		u := trimTrailingPunct(raw)
		if u == "" || seen[u] {
			continue
		}
		m, ok := classifyMedia(u)
		if !ok {
			continue
		}
		seen[u] = true
		media = append(media, m)
	}
	return media
}

func classifyMedia(u string) (Media, bool) {
	switch {
	case imageExtRegex.MatchString(u):
		return Media{Matched: u, URL: u, Kind: MediaImage}, true
	case videoExtRegex.MatchString(u):
		return Media{Matched: u, URL: u, Kind: MediaVideo}, true
	case audioExtRegex.MatchString(u):
		return Media{Matched: u, URL: u, Kind: MediaAudio}, true
	}
	if m := youtubeRegex.FindStringSubmatch(u); len(m) > 1 {
		return Media{
			Matched:   u,
			URL:       u,
			Kind:      MediaYouTube,
			Thumbnail: fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", m[1]),
		}, true
	}
	return Media{}, false
}
