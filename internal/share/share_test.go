package share

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/studydeck/internal/api"
	"github.com/jask/studydeck/internal/database/repository"
	"github.com/jask/studydeck/internal/events"
	"github.com/jask/studydeck/internal/location"
)

type fakeIDs struct {
	setCalls    []string
	folderCalls [][2]string
	err         error
}

func (f *fakeIDs) StudySetShareID(_ context.Context, setID string) (string, error) {
	f.setCalls = append(f.setCalls, setID)
	return "s" + setID, f.err
}

func (f *fakeIDs) FolderShareID(_ context.Context, username, idOrSlug string) (string, error) {
	f.folderCalls = append(f.folderCalls, [2]string{username, idOrSlug})
	return "f" + idOrSlug, f.err
}

type memLinks struct{ links []repository.ShareLink }

func (m *memLinks) Insert(_ context.Context, l repository.ShareLink) error {
	m.links = append(m.links, l)
	return nil
}

func TestCopyStudySet(t *testing.T) {
	ids := &fakeIDs{}
	var clip string
	bus := events.NewBus()
	menu := events.NewMenu(bus)
	var announced string
	menu.LinkCopied.Subscribe(func(u string) { announced = u })
	store := &memLinks{}

	s := New(ids, "https://decks.example/", WithClipboard(func(s string) error { clip = s; return nil }),
		WithMenu(menu), WithStore(store))
	s.now = func() time.Time { return time.Unix(100, 0) }

	url, err := s.Copy(context.Background(), location.Match("/sets/abc"))
	require.NoError(t, err)
	require.Equal(t, "https://decks.example/_sabc", url)
	require.Equal(t, url, clip)
	require.Equal(t, url, announced)
	require.Equal(t, []string{"abc"}, ids.setCalls)
	require.Len(t, store.links, 1)
	require.Equal(t, repository.RecentKindSet, store.links[0].TargetKind)
	require.Equal(t, "abc", store.links[0].Target)
	require.NotEmpty(t, store.links[0].ID)
}

func TestCopyFolder(t *testing.T) {
	ids := &fakeIDs{}
	store := &memLinks{}
	s := New(ids, "https://decks.example", WithClipboard(func(string) error { return nil }), WithStore(store))

	url, err := s.Copy(context.Background(), location.Match("/@ana/folders/bio"))
	require.NoError(t, err)
	require.Equal(t, "https://decks.example/_fbio", url)
	require.Equal(t, [][2]string{{"ana", "bio"}}, ids.folderCalls)
	require.Equal(t, "@ana/bio", store.links[0].Target)
}

func TestCopyRejectsOtherRoutes(t *testing.T) {
	s := New(&fakeIDs{}, "https://decks.example", WithClipboard(func(string) error {
		t.Fatal("clipboard written for non-detail route")
		return nil
	}))
	_, err := s.Copy(context.Background(), location.Match("/settings"))
	require.ErrorIs(t, err, ErrNoShareTarget)
}

func TestCopyPropagatesAPIError(t *testing.T) {
	ids := &fakeIDs{err: &api.Error{Procedure: "studySets.getShareId", Status: 404, Message: "nope"}}
	written := false
	s := New(ids, "https://decks.example", WithClipboard(func(string) error { written = true; return nil }))
	_, err := s.Copy(context.Background(), location.Match("/abc"))
	require.ErrorIs(t, err, api.ErrNotFound)
	require.False(t, written)
}

func TestCopyClipboardFailure(t *testing.T) {
	boom := errors.New("no display")
	s := New(&fakeIDs{}, "https://decks.example", WithClipboard(func(string) error { return boom }))
	_, err := s.Copy(context.Background(), location.Match("/abc"))
	require.ErrorIs(t, err, boom)
}

func TestWriteOSC52(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOSC52(&buf, "hi", "xterm-256color", false))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\x1b]52;c;"), "got %q", out)
	require.Contains(t, out, base64.StdEncoding.EncodeToString([]byte("hi")))

	buf.Reset()
	require.NoError(t, writeOSC52(&buf, "hi", "xterm", true))
	require.True(t, strings.HasPrefix(buf.String(), "\x1bPtmux;"), "got %q", buf.String())
}
