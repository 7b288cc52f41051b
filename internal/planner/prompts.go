package planner

import (
	"fmt"
	"path/filepath"
	"strings"

	"curator/internal/media"
)

// promptLabel terminates every prompt. Models frequently echo it back, so
// the sanitizer strips it from generated output.
const promptLabel = "New filename:"

// buildPrompt assembles the kind-specific prompt for one item: task
// statement, few-shot examples, the item's metadata, then the label the
// model should complete.
func buildPrompt(item media.Item, customAdditions string) string {
	var b strings.Builder
	b.WriteString("You rename media files. Reply with only the new filename on a single line, keeping the original file extension.\n\n")

	switch item.Kind() {
	case media.KindEpisode:
		b.WriteString("Format: {Series} S{season:02}E{episode:02} - {Title}{ext}\n")
		b.WriteString("Example: file \"Breaking.Bad.S02E03.720p.HDTV.x264-LOL.mkv\", series \"Breaking Bad\", season 2, episode 3, title \"Cat's in the Bag\" -> Breaking Bad S02E03 - Cat's in the Bag.mkv\n")
		b.WriteString("Example: file \"the_office_s05e14_HDTV.avi\", series \"The Office\", season 5, episode 14, title \"Stress Relief\" -> The Office S05E14 - Stress Relief.avi\n\n")
	case media.KindTrack:
		b.WriteString("Format: {track:02} - {Title}{ext}\n")
		b.WriteString("Example: file \"01-artist-some_song_192.mp3\", track 1, title \"Some Song\" -> 01 - Some Song.mp3\n")
		b.WriteString("Example: file \"track07.flac\", track 7, title \"Moonlight Sonata\" -> 07 - Moonlight Sonata.flac\n\n")
	default:
		b.WriteString("Format: {Title} ({Year}){ext}\n")
		b.WriteString("Example: file \"The.Matrix.1999.1080p.BluRay.x264-GROUP.mkv\", title \"The Matrix\", year 1999 -> The Matrix (1999).mkv\n")
		b.WriteString("Example: file \"inception_2010_720p.mp4\", title \"Inception\", year 2010 -> Inception (2010).mp4\n\n")
	}

	b.WriteString("Current filename: " + filepath.Base(item.Path) + "\n")
	writeMetadata(&b, item)

	if custom := strings.TrimSpace(customAdditions); custom != "" {
		b.WriteString(custom + "\n")
	}
	b.WriteString(promptLabel + " ")
	return b.String()
}

func writeMetadata(b *strings.Builder, item media.Item) {
	if title := strings.TrimSpace(item.Name); title != "" {
		fmt.Fprintf(b, "Title: %s\n", title)
	}
	switch item.Kind() {
	case media.KindEpisode:
		fmt.Fprintf(b, "Series: %s\n", item.SeriesName)
		fmt.Fprintf(b, "Season: %d\n", item.SeasonNumber)
		fmt.Fprintf(b, "Episode: %d\n", item.EpisodeNumber)
	case media.KindTrack:
		if item.TrackNumber > 0 {
			fmt.Fprintf(b, "Track: %d\n", item.TrackNumber)
		}
		if album := strings.TrimSpace(item.Album); album != "" {
			fmt.Fprintf(b, "Album: %s\n", album)
		}
		if len(item.Artists) > 0 {
			fmt.Fprintf(b, "Artists: %s\n", strings.Join(item.Artists, ", "))
		}
	default:
		if item.Year > 0 {
			fmt.Fprintf(b, "Year: %d\n", item.Year)
		}
	}
}
