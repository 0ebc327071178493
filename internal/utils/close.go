package utils

import (
	"io"

	"github.com/MrSnakeDoc/staticsite/internal/logger"
)

// Close closes c for best-effort cleanup in defer. A close error is logged
// when log is set and ignored otherwise.
func Close(c io.Closer, what string, log logger.Logger) {
	if err := c.Close(); err != nil && log != nil {
		log.Warn("failed to close", logger.String("resource", what), logger.Error(err))
	}
}
