package media

import (
	"fmt"
	"path/filepath"
	"strings"
)

// TargetFileName computes the filename the metadata rule produces for the
// item, extension included. The boolean is false when metadata is too sparse
// for a deterministic name.
func TargetFileName(item Item) (string, bool) {
	ext := strings.ToLower(filepath.Ext(item.Path))
	title := strings.TrimSpace(item.Name)
	switch item.Kind() {
	case KindEpisode:
		series := SanitizeComponent(item.SeriesName)
		if series == "" || item.SeasonNumber <= 0 || item.EpisodeNumber <= 0 {
			return "", false
		}
		code := fmt.Sprintf("S%02dE%02d", item.SeasonNumber, item.EpisodeNumber)
		if title == "" {
			return series + " " + code + ext, true
		}
		return series + " " + code + " - " + SanitizeComponent(title) + ext, true
	case KindTrack:
		if item.TrackNumber <= 0 || title == "" {
			return "", false
		}
		return fmt.Sprintf("%02d - %s%s", item.TrackNumber, SanitizeComponent(title), ext), true
	default:
		if title == "" {
			return "", false
		}
		if item.Year > 0 {
			return fmt.Sprintf("%s (%d)%s", SanitizeComponent(title), item.Year, ext), true
		}
		return SanitizeComponent(title) + ext, true
	}
}

// TargetMovieDirName computes the deterministic name for a movie's folder.
func TargetMovieDirName(item Item) (string, bool) {
	title := SanitizeComponent(item.Name)
	if title == "" {
		return "", false
	}
	if item.Year > 0 {
		return fmt.Sprintf("%s (%d)", title, item.Year), true
	}
	return title, true
}

// TargetSeasonDirName computes the deterministic name for an episode's season folder.
func TargetSeasonDirName(item Item) (string, bool) {
	if item.SeasonNumber <= 0 {
		return "", false
	}
	return fmt.Sprintf("Season %02d", item.SeasonNumber), true
}

// TargetSeriesDirName computes the deterministic name for an episode's series folder.
func TargetSeriesDirName(item Item) (string, bool) {
	series := SanitizeComponent(item.SeriesName)
	if series == "" {
		return "", false
	}
	return series, true
}
