package deps

import (
	"time"

	"github.com/MrSnakeDoc/staticsite/internal/index"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/routing"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time   // for testing, defaults to time.Now
	AllowedHosts []string           // Host headers answered outside a render pass
	Debug        bool               // detailed error pages outside a render pass
	Languages    []string           // languages the localized routes are published in
	Content      *index.MemoryIndex // pages and posts served by the site
	Routes       *routing.Registry  // route table, for links and the sitemap
}

// Now returns TimeNow() or time.Now() when unset.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
