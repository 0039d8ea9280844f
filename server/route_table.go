package server

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var routeTableYAML []byte

// Route is one entry in the declarative route table. A route either
// redirects, renders a page, or is a parent grouping children under its
// path. RequiresAuth gates the route and everything beneath it.
type Route struct {
	Path         string  `yaml:"path"`
	Name         string  `yaml:"name"`
	Title        string  `yaml:"title"`
	Redirect     string  `yaml:"redirect"`
	RequiresAuth bool    `yaml:"requires_auth"`
	Children     []Route `yaml:"children"`
}

type RouteTable struct {
	Routes []Route `yaml:"routes"`
}

// LoadRouteTable parses the embedded route table.
func LoadRouteTable() (*RouteTable, error) {
	var table RouteTable
	if err := yaml.Unmarshal(routeTableYAML, &table); err != nil {
		return nil, fmt.Errorf("failed to parse route table: %w", err)
	}

	if len(table.Routes) == 0 {
		return nil, fmt.Errorf("route table is empty")
	}

	for _, route := range table.Routes {
		if err := validateRoute(route, true); err != nil {
			return nil, err
		}
	}

	return &table, nil
}

func validateRoute(route Route, topLevel bool) error {
	if topLevel && !strings.HasPrefix(route.Path, "/") {
		return fmt.Errorf("top-level route %q must start with /", route.Path)
	}
	if !topLevel && strings.HasPrefix(route.Path, "/") {
		return fmt.Errorf("child route %q must be relative", route.Path)
	}
	if route.Redirect == "" && route.Name == "" && len(route.Children) == 0 {
		return fmt.Errorf("route %q has no redirect, name or children", route.Path)
	}

	for _, child := range route.Children {
		if err := validateRoute(child, false); err != nil {
			return err
		}
	}
	return nil
}

// Modules returns the named child routes of the gated parent, in table
// order. Used to build the console navigation.
func (t *RouteTable) Modules() []Route {
	for _, route := range t.Routes {
		if route.Path != RouteMyPage {
			continue
		}
		modules := make([]Route, 0, len(route.Children))
		for _, child := range route.Children {
			if child.Name != "" && child.Redirect == "" {
				modules = append(modules, child)
			}
		}
		return modules
	}
	return nil
}

// joinPath composes a parent path and a child sub-path.
func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return strings.TrimRight(parent, "/") + "/" + child
}
