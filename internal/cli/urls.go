package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

func newListStaticURLsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list-static-urls",
		Short: "List every URL a generated site contains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.load()
			if err != nil {
				return err
			}
			uris, err := a.StaticURLs()
			if err != nil {
				return err
			}
			for _, uri := range uris {
				fmt.Fprintln(cmd.OutOrStdout(), uri)
			}
			return nil
		},
	}
}

func newRenderRouteCmd(o *options) *cobra.Command {
	var lang string
	c := &cobra.Command{
		Use:   "render-route NAME [PARAM...]",
		Short: "Render a single static route into the output directory",
		Long: `Render one static route with the given parameters. Parameters are
positional, or named when every one of them is written key=value.

Examples:
  staticsite render-route home --lang=en --output-directory=public
  staticsite render-route blog:post slug=hello-world --lang=fr --output-directory=public`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.load()
			if err != nil {
				return err
			}
			dir := o.outputDir
			if dir == "" {
				dir = a.Settings().OutputDirectory
			}
			if dir == "" {
				return domain.Configf(domain.ErrConfig,
					"no output directory, use --output-directory or set output_directory in the settings")
			}

			path, err := a.RenderRoute(cmd.Context(), dir, args[0], parseParams(args[1:]), lang)
			if err != nil {
				return err
			}
			if rel, err := filepath.Rel(dir, path); err == nil {
				path = filepath.ToSlash(rel)
			}
			o.say(cmd, "%s", checkmark("Rendered "+styleNoun.Render(args[0])+" to "+styleNoun.Render(path)))
			return nil
		},
	}
	c.Flags().StringVar(&lang, "lang", "", "language to render the route in")
	return c
}

// parseParams reads key=value arguments as named parameters when all of
// them have that form, and as positional parameters otherwise.
func parseParams(args []string) domain.ParamSet {
	if len(args) == 0 {
		return domain.ParamSet{}
	}
	named := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return domain.Positional(args...)
		}
		named[k] = v
	}
	return domain.Named(named)
}
