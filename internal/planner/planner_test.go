package planner_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/media"
	"curator/internal/planner"
	"curator/internal/testsupport"
)

type fakeGenerator struct {
	replies []string
	err     error
	calls   int
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("no canned reply")
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func newPlanner(t *testing.T, gen planner.Generator, mutate func(*config.Config)) *planner.Planner {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if mutate != nil {
		mutate(cfg)
	}
	return planner.New(cfg, gen, logging.NewNop())
}

func TestPlanRenamesMovieFromSuggestion(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"  `The Matrix (1999).mkv`  \n(extra line ignored)"}}
	p := newPlanner(t, gen, nil)

	items := []media.Item{{
		Path: "/library/movies/The.Matrix.1999.1080p.BluRay.x264-GROUP.mkv",
		Name: "The Matrix",
		Year: 1999,
	}}
	ops, err := p.Plan(context.Background(), items)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(ops))
	}
	want := "/library/movies/The Matrix (1999).mkv"
	if ops[0].NewPath != want {
		t.Fatalf("new path = %q, want %q", ops[0].NewPath, want)
	}
	if ops[0].IsDirectory {
		t.Fatal("file rename must not be a directory operation")
	}
}

func TestPlanRenamesEpisode(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Breaking Bad S02E03 - Cat's in the Bag.mkv"}}
	p := newPlanner(t, gen, nil)

	items := []media.Item{{
		Path:          "/library/tv/Breaking Bad/Season 2/Breaking.Bad.S02E03.720p.HDTV.x264-LOL.mkv",
		Name:          "Cat's in the Bag",
		SeriesName:    "Breaking Bad",
		SeasonNumber:  2,
		EpisodeNumber: 3,
	}}
	ops, err := p.Plan(context.Background(), items)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(ops))
	}
	if filepath.Base(ops[0].NewPath) != "Breaking Bad S02E03 - Cat's in the Bag.mkv" {
		t.Fatalf("new name = %q", filepath.Base(ops[0].NewPath))
	}
}

func TestPlanSkipsAlreadyCorrectName(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"should not be used"}}
	p := newPlanner(t, gen, nil)

	items := []media.Item{{
		Path: "/library/movies/Inception (2010)/Inception (2010).mp4",
		Name: "Inception",
		Year: 2010,
	}}
	for i := 0; i < 2; i++ {
		ops, err := p.Plan(context.Background(), items)
		if err != nil {
			t.Fatalf("Plan: %v", err)
		}
		if len(ops) != 0 {
			t.Fatalf("run %d: ops = %d, want 0", i, len(ops))
		}
	}
	if gen.calls != 0 {
		t.Fatalf("generator calls = %d, want 0 for an already correct name", gen.calls)
	}
}

func TestPlanForcesOriginalExtension(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"The Matrix (1999).avi"}}
	p := newPlanner(t, gen, nil)

	items := []media.Item{{
		Path: "/library/movies/The.Matrix.1999.mkv",
		Name: "The Matrix",
		Year: 1999,
	}}
	ops, err := p.Plan(context.Background(), items)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(ops))
	}
	if got := filepath.Ext(ops[0].NewPath); got != ".mkv" {
		t.Fatalf("extension = %q, want .mkv", got)
	}
}

func TestPlanRespectsKindFlags(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"ignored"}}
	p := newPlanner(t, gen, func(cfg *config.Config) {
		cfg.Rename.Movies = false
	})

	ops, err := p.Plan(context.Background(), []media.Item{{
		Path: "/library/movies/Some.Movie.2020.mkv",
		Name: "Some Movie",
		Year: 2020,
	}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(ops) != 0 || gen.calls != 0 {
		t.Fatalf("disabled kind must be skipped entirely: ops=%d calls=%d", len(ops), gen.calls)
	}
}

func TestPlanToleratesPerItemFailures(t *testing.T) {
	calls := 0
	gen := generatorFunc(func(_ context.Context, _ string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("backend hiccup")
		}
		return "Heat (1995).mkv", nil
	})
	p := newPlanner(t, gen, nil)

	ops, err := p.Plan(context.Background(), []media.Item{
		{Path: "/m/Bad.Item.2001.mkv", Name: "Bad Item", Year: 2001},
		{Path: "/m/Heat.1995.DC.mkv", Name: "Heat", Year: 1995},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(ops) != 1 || filepath.Base(ops[0].NewPath) != "Heat (1995).mkv" {
		t.Fatalf("expected only the second item planned, got %+v", ops)
	}
}

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestPlanDerivesDirectoryProposals(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		"Breaking Bad S02E03 - Cat's in the Bag.mkv",
		"Breaking Bad S02E04 - Down.mkv",
	}}
	p := newPlanner(t, gen, func(cfg *config.Config) {
		cfg.Rename.Directories = true
	})

	season := "/library/tv/breaking bad/season two"
	items := []media.Item{
		{
			Path:          season + "/Breaking.Bad.S02E03.mkv",
			Name:          "Cat's in the Bag",
			SeriesName:    "Breaking Bad",
			SeasonNumber:  2,
			EpisodeNumber: 3,
		},
		{
			Path:          season + "/Breaking.Bad.S02E04.mkv",
			Name:          "Down",
			SeriesName:    "Breaking Bad",
			SeasonNumber:  2,
			EpisodeNumber: 4,
		},
	}
	ops, err := p.Plan(context.Background(), items)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	var dirOps []media.RenameOp
	for _, op := range ops {
		if op.IsDirectory {
			dirOps = append(dirOps, op)
		}
	}
	// Season and series folders, proposed once despite two episodes.
	if len(dirOps) != 2 {
		t.Fatalf("directory ops = %d, want 2: %+v", len(dirOps), dirOps)
	}
	if dirOps[0].OriginalPath != season || filepath.Base(dirOps[0].NewPath) != "Season 02" {
		t.Fatalf("season proposal = %+v", dirOps[0])
	}
	if dirOps[1].OriginalPath != "/library/tv/breaking bad" || filepath.Base(dirOps[1].NewPath) != "Breaking Bad" {
		t.Fatalf("series proposal = %+v", dirOps[1])
	}
}

func TestPlanSkipsDirectoryAlreadyCorrect(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"The Matrix (1999).mkv"}}
	p := newPlanner(t, gen, func(cfg *config.Config) {
		cfg.Rename.Directories = true
	})

	ops, err := p.Plan(context.Background(), []media.Item{{
		Path: "/library/movies/The Matrix (1999)/The.Matrix.1999.mkv",
		Name: "The Matrix",
		Year: 1999,
	}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for _, op := range ops {
		if op.IsDirectory {
			t.Fatalf("correctly named folder must not be proposed: %+v", op)
		}
	}
}

func TestPlanStopsOnCancellation(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"A (2001).mkv"}}
	p := newPlanner(t, gen, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ops, err := p.Plan(ctx, []media.Item{{Path: "/m/a.mkv", Name: "A", Year: 2001}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(ops) != 0 || gen.calls != 0 {
		t.Fatal("cancelled plan must not process items")
	}
}

func TestPromptCarriesCustomAdditions(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"A (2001).mkv"}}
	p := newPlanner(t, gen, func(cfg *config.Config) {
		cfg.Rename.CustomPromptAdditions = "Prefer English titles."
	})

	if _, err := p.Plan(context.Background(), []media.Item{{Path: "/m/a.2001.mkv", Name: "A", Year: 2001}}); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "Prefer English titles.") {
		t.Fatal("custom prompt additions must be embedded in the prompt")
	}
}
