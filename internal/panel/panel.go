// Package panel models the admin UI's navigation state as a pure reducer so
// any front end can drive it without holding global mutable state.
package panel

import "github.com/nitesh/velara/pkg/models"

type Route string

const (
	RouteLogin     Route = "login"
	RouteDashboard Route = "dashboard"
	RouteEditor    Route = "editor"
)

// State is everything the panel needs to decide what to render.
// Editing is nil when the editor is open on a brand-new article.
type State struct {
	Authenticated bool            `json:"authenticated"`
	Route         Route           `json:"route"`
	Editing       *models.Article `json:"editing,omitempty"`
}

// Initial is the state before anyone has logged in.
func Initial() State {
	return State{Route: RouteLogin}
}

type ActionKind string

const (
	LoginSucceeded ActionKind = "login_succeeded"
	LoginFailed    ActionKind = "login_failed"
	Logout         ActionKind = "logout"
	Navigate       ActionKind = "navigate"
	Edit           ActionKind = "edit"
)

type Action struct {
	Kind    ActionKind      `json:"kind"`
	Route   Route           `json:"route,omitempty"`
	Article *models.Article `json:"article,omitempty"`
}

// Reduce returns the state that follows s after a. It never mutates s.
func Reduce(s State, a Action) State {
	if !s.Authenticated {
		if a.Kind == LoginSucceeded {
			return State{Authenticated: true, Route: RouteDashboard}
		}
		return Initial()
	}

	switch a.Kind {
	case Logout:
		return Initial()
	case Navigate:
		switch a.Route {
		case RouteDashboard:
			return State{Authenticated: true, Route: RouteDashboard, Editing: s.Editing}
		case RouteEditor:
			// the sidebar's "write article" always opens a blank editor
			return State{Authenticated: true, Route: RouteEditor}
		}
		return s
	case Edit:
		if a.Article == nil {
			return State{Authenticated: true, Route: RouteEditor}
		}
		art := *a.Article
		return State{Authenticated: true, Route: RouteEditor, Editing: &art}
	}
	return s
}
