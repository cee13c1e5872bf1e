// Package routes declares route groups and registers them on a ServeMux.
package routes

import "net/http"

// Group organizes routes under a common prefix. Wrap applies to every route
// in the group and its children, outside any route-level wrappers.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
	Wrap     []Wrapper
}

// Register adds all routes from groups to mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", nil, group)
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, parentWrap []Wrapper, group Group) {
	prefix := parentPrefix + group.Prefix
	wrap := append(append([]Wrapper{}, parentWrap...), group.Wrap...)

	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+prefix+route.Pattern, route.handler(wrap))
	}
	for _, child := range group.Children {
		registerGroup(mux, prefix, wrap, child)
	}
}
