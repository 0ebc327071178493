package routes

import (
	"github.com/MrSnakeDoc/staticsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/staticsite/internal/routing"
)

// Registrar declares routes on the root group of the site.
type Registrar func(g *routing.Group, d deps.Deps)

var registry []Registrar

// Register a registrar. Called from init() in this package.
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// RegisterAll runs every registrar in registration order, once per route
// table.
func RegisterAll(g *routing.Group, d deps.Deps) {
	for _, reg := range registry {
		reg(g, d)
	}
}
