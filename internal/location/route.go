package location

import (
	"strings"
)

// RouteKind classifies a client path.
type RouteKind int

const (
	RouteOther RouteKind = iota
	RouteHome
	RouteStudySet
	RouteFolder
	RouteProfile
	RouteSettings
	RouteCreate
	RouteAdmin
)

func (k RouteKind) String() string {
	switch k {
	case RouteHome:
		return "home"
	case RouteStudySet:
		return "set"
	case RouteFolder:
		return "folder"
	case RouteProfile:
		return "profile"
	case RouteSettings:
		return "settings"
	case RouteCreate:
		return "create"
	case RouteAdmin:
		return "admin"
	default:
		return "other"
	}
}

// Route is a matched path with its parameters.
type Route struct {
	Kind RouteKind
	Path string
	// SetID is set for RouteStudySet.
	SetID string
	// Username is set for RouteProfile and RouteFolder, without the leading @.
	Username string
	// Slug is the folder slug or id for RouteFolder.
	Slug string
}

// IsDetail reports whether the route shows a single study set or folder.
func (r Route) IsDetail() bool {
	return r.Kind == RouteStudySet || r.Kind == RouteFolder
}

var fixedRoutes = map[string]RouteKind{
	"home":     RouteHome,
	"settings": RouteSettings,
	"create":   RouteCreate,
	"admin":    RouteAdmin,
}

// reserved top-level segments that are never study set ids.
var reserved = map[string]bool{
	"home": true, "settings": true, "create": true, "admin": true,
	"sets": true, "folders": true, "import": true, "api": true,
}

// Match classifies path. Study sets live at /sets/{id} and at the short
// form /{id}; folders at /@{username}/folders/{slug}.
func Match(path string) Route {
	clean := cleanPath(path)
	r := Route{Kind: RouteOther, Path: clean}
	segs := splitPath(clean)

	switch len(segs) {
	case 0:
		return r
	case 1:
		seg := segs[0]
		if kind, ok := fixedRoutes[seg]; ok {
			r.Kind = kind
			return r
		}
		if name, ok := strings.CutPrefix(seg, "@"); ok && name != "" {
			r.Kind = RouteProfile
			r.Username = name
			return r
		}
		if !reserved[seg] && !strings.HasPrefix(seg, "_") {
			r.Kind = RouteStudySet
			r.SetID = seg
		}
		return r
	case 2:
		if segs[0] == "sets" {
			r.Kind = RouteStudySet
			r.SetID = segs[1]
		}
		return r
	case 3:
		name, ok := strings.CutPrefix(segs[0], "@")
		if ok && name != "" && segs[1] == "folders" {
			r.Kind = RouteFolder
			r.Username = name
			r.Slug = segs[2]
		}
		return r
	}
	return r
}

func cleanPath(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func splitPath(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
