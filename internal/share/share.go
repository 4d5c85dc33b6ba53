// Package share copies public share links for study sets and folders.
package share

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/studydeck/internal/database/repository"
	"github.com/jask/studydeck/internal/events"
	"github.com/jask/studydeck/internal/location"
)

// ErrNoShareTarget is returned for routes that are not a set or folder.
var ErrNoShareTarget = errors.New("share: route is not a study set or folder")

// IDSource resolves share ids. *api.Client implements it.
type IDSource interface {
	StudySetShareID(ctx context.Context, setID string) (string, error)
	FolderShareID(ctx context.Context, username, idOrSlug string) (string, error)
}

// LinkStore records copied links.
type LinkStore interface {
	Insert(ctx context.Context, l repository.ShareLink) error
}

// Option configures a Service.
type Option func(*Service)

// WithClipboard replaces the clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(s *Service) { s.write = write }
}

// WithMenu publishes LinkCopied on m after each copy.
func WithMenu(m *events.Menu) Option {
	return func(s *Service) { s.menu = m }
}

// WithStore records each copied link.
func WithStore(store LinkStore) Option {
	return func(s *Service) { s.store = store }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// Service turns a route into a share URL on the clipboard.
type Service struct {
	ids       IDSource
	publicURL string
	write     func(string) error
	menu      *events.Menu
	store     LinkStore
	log       *zap.Logger
	now       func() time.Time
}

func New(ids IDSource, publicURL string, opts ...Option) *Service {
	s := &Service{
		ids:       ids,
		publicURL: strings.TrimRight(publicURL, "/"),
		write:     WriteClipboard,
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL is the public share link for a share id.
func URL(publicURL, shareID string) string {
	return strings.TrimRight(publicURL, "/") + "/_" + shareID
}

// Link resolves the share URL for route without copying it.
func (s *Service) Link(ctx context.Context, route location.Route) (string, error) {
	var (
		id  string
		err error
	)
	switch route.Kind {
	case location.RouteStudySet:
		id, err = s.ids.StudySetShareID(ctx, route.SetID)
	case location.RouteFolder:
		id, err = s.ids.FolderShareID(ctx, route.Username, route.Slug)
	default:
		return "", fmt.Errorf("%w: %s", ErrNoShareTarget, route.Path)
	}
	if err != nil {
		return "", fmt.Errorf("share id for %s: %w", route.Path, err)
	}
	if id == "" {
		return "", fmt.Errorf("share id for %s: empty id", route.Path)
	}
	return URL(s.publicURL, id), nil
}

// Copy writes the share URL for route to the clipboard, announces it and
// records it. Failing to record is logged, not returned.
func (s *Service) Copy(ctx context.Context, route location.Route) (string, error) {
	url, err := s.Link(ctx, route)
	if err != nil {
		return "", err
	}
	if err := s.write(url); err != nil {
		return "", fmt.Errorf("copy %s: %w", url, err)
	}
	s.log.Info("share link copied", zap.String("route", route.Path), zap.String("url", url))

	if s.menu != nil {
		s.menu.LinkCopied.Emit(url)
	}
	if s.store != nil {
		link := repository.ShareLink{
			ID:         uuid.NewString(),
			TargetKind: repository.RecentKindSet,
			Target:     route.SetID,
			URL:        url,
			CreatedAt:  s.now(),
		}
		if route.Kind == location.RouteFolder {
			link.TargetKind = repository.RecentKindFolder
			link.Target = "@" + route.Username + "/" + route.Slug
		}
		if err := s.store.Insert(ctx, link); err != nil {
			s.log.Warn("record share link", zap.Error(err))
		}
	}
	return url, nil
}
