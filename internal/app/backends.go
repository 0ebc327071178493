package app

// Publishing engines register themselves with the publish package.
import (
	_ "github.com/MrSnakeDoc/staticsite/internal/publish/backends/azure"
	_ "github.com/MrSnakeDoc/staticsite/internal/publish/backends/filesystem"
	_ "github.com/MrSnakeDoc/staticsite/internal/publish/backends/gcs"
	_ "github.com/MrSnakeDoc/staticsite/internal/publish/backends/redis"
	_ "github.com/MrSnakeDoc/staticsite/internal/publish/backends/s3"
)
