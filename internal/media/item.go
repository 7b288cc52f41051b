package media

import "strings"

// Kind identifies which rename rules and prompts apply to an item.
type Kind int

const (
	KindMovie Kind = iota
	KindEpisode
	KindTrack
)

func (k Kind) String() string {
	switch k {
	case KindMovie:
		return "movie"
	case KindEpisode:
		return "episode"
	case KindTrack:
		return "track"
	default:
		return "unknown"
	}
}

// Item describes a single media file reported by the library collaborator.
// Items are read-only: curator never writes metadata back.
type Item struct {
	Path          string   `json:"path"`
	Name          string   `json:"name"`
	Year          int      `json:"year,omitempty"`
	SeriesName    string   `json:"series_name,omitempty"`
	SeasonNumber  int      `json:"season_number,omitempty"`
	EpisodeNumber int      `json:"episode_number,omitempty"`
	Album         string   `json:"album,omitempty"`
	Artists       []string `json:"artists,omitempty"`
	TrackNumber   int      `json:"track_number,omitempty"`
}

// Kind classifies the item from its metadata. Episodes need a series name and
// episode number; tracks need a track number or album; everything else is a
// movie.
func (i Item) Kind() Kind {
	switch {
	case strings.TrimSpace(i.SeriesName) != "" && i.EpisodeNumber > 0:
		return KindEpisode
	case i.TrackNumber > 0 || strings.TrimSpace(i.Album) != "":
		return KindTrack
	default:
		return KindMovie
	}
}

// RenameOp is a single planned filesystem mutation. Values are immutable once
// created: the planner emits them, the executor consumes them exactly once.
type RenameOp struct {
	OriginalPath string
	NewPath      string
	Reason       string
	IsDirectory  bool
}
