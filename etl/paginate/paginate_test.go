package paginate

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	pages   [][]string
	tokens  []string
	current int
	fetches int
}

func (s *fakeSource) Page(ctx context.Context) ([]string, string, error) {
	s.fetches++
	return s.pages[s.current], s.tokens[s.current], nil
}

func (s *fakeSource) Advance(ctx context.Context, token string) error {
	for i, t := range s.tokens {
		if t == token {
			s.current = i + 1
			return nil
		}
	}
	return fmt.Errorf("unknown token %q", token)
}

func TestWalkThreePages(t *testing.T) {
	src := &fakeSource{
		pages: [][]string{
			{"a1", "a2"},
			{"b1", "b2"},
			{"c1", "c2"},
		},
		tokens: []string{"page2", "page3", ""},
	}

	rows, err := Walk[string](context.Background(), src, Options{})
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(
		[]string{"a1", "a2", "b1", "b2", "c1", "c2"},
		rows,
	))
	require.Equal(t, 3, src.fetches)
}

func TestWalkSinglePage(t *testing.T) {
	src := &fakeSource{
		pages:  [][]string{{"only"}},
		tokens: []string{""},
	}
	rows, err := Walk[string](context.Background(), src, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"only"}, rows)
}

func TestWalkCycleGuard(t *testing.T) {
	// both pages point at each other forever
	src := &cyclingSource{}
	rows, err := Walk[string](context.Background(), src, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"x", "x"}, rows)
}

type cyclingSource struct {
	flip bool
}

func (s *cyclingSource) Page(ctx context.Context) ([]string, string, error) {
	token := "a"
	if s.flip {
		token = "b"
	}
	return []string{"x"}, token, nil
}

func (s *cyclingSource) Advance(ctx context.Context, token string) error {
	s.flip = !s.flip
	return nil
}

func TestWalkMaxPages(t *testing.T) {
	src := &endlessSource{}
	rows, err := Walk[string](context.Background(), src, Options{MaxPages: 5})
	require.NoError(t, err)
	require.Len(t, rows, 5)
}

type endlessSource struct {
	n int
}

func (s *endlessSource) Page(ctx context.Context) ([]string, string, error) {
	s.n++
	return []string{fmt.Sprintf("row%d", s.n)}, fmt.Sprintf("page%d", s.n+1), nil
}

func (s *endlessSource) Advance(ctx context.Context, token string) error {
	return nil
}

func TestWalkFetchError(t *testing.T) {
	src := &failingSource{}
	rows, err := Walk[string](context.Background(), src, Options{})
	require.Error(t, err)
	// first page's rows are still returned
	require.Equal(t, []string{"ok"}, rows)
}

type failingSource struct {
	calls int
}

func (s *failingSource) Page(ctx context.Context) ([]string, string, error) {
	s.calls++
	if s.calls == 1 {
		return []string{"ok"}, "page2", nil
	}
	return nil, "", fmt.Errorf("upstream went away")
}

func (s *failingSource) Advance(ctx context.Context, token string) error {
	return nil
}
