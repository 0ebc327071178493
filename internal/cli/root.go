// Package cli is the staticsite command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/staticsite/internal/app"
	"github.com/MrSnakeDoc/staticsite/internal/config"
	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
)

// options holds the global flags and what is built from them.
type options struct {
	configFile        string
	quiet             bool
	force             bool
	outputDir         string
	target            string
	collectStatic     bool
	excludeStatic     bool
	generateRedirects bool
	parallel          int

	cfg *config.Config
	log logger.Logger
	app *app.App
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "staticsite",
		Short: "Render a site into static files and publish them",
		Long: `staticsite renders every static route of the site into a directory tree
and mirrors that tree onto remote object storage.

Generate a local static site:
  staticsite generate --output-directory=<directory>

Generate the site and publish it to a remote storage target:
  staticsite publish --target=<target>

Test a publishing target is configured correctly:
  staticsite test-target --target=<target>`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.init(cmd.Flags().Changed("parallel-render"))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&o.configFile, "config", "c", "", "settings file (env: STATICSITE_CONFIG, default ./staticsite.yaml)")
	flags.BoolVarP(&o.quiet, "quiet", "q", false, "no progress output, log errors only")
	flags.BoolVar(&o.force, "force", false, `automatically answer "yes" to all questions`)
	flags.StringVar(&o.outputDir, "output-directory", "", "directory the site is generated into")
	flags.StringVar(&o.target, "target", "default", "publishing target name")
	flags.BoolVar(&o.collectStatic, "collectstatic", false, "gather static_dirs into static_root before copying")
	flags.BoolVar(&o.excludeStatic, "exclude-staticfiles", false, "do not copy static and media files")
	flags.BoolVar(&o.generateRedirects, "generate-redirects", false, "write HTML redirect pages for the redirects file")
	flags.IntVar(&o.parallel, "parallel-render", 1, "number of parallel render workers (env: STATICSITE_PARALLEL_RENDER)")

	root.AddCommand(
		newGenerateCmd(o),
		newPublishCmd(o),
		newTestTargetCmd(o),
		newListStaticURLsCmd(o),
		newListPublishTargetsCmd(o),
		newRenderRouteCmd(o),
		newServeCmd(o),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// init loads the environment. The flag overrides STATICSITE_PARALLEL_RENDER
// only when given.
func (o *options) init(parallelSet bool) error {
	o.cfg = config.Load()
	if !parallelSet {
		o.parallel = o.cfg.Parallel
		if o.parallel < 1 {
			return domain.Configf(domain.ErrConfig, "STATICSITE_PARALLEL_RENDER must be at least 1, got %d", o.parallel)
		}
	}
	if o.parallel < 1 {
		return domain.Configf(domain.ErrConfig, "--parallel-render must be at least 1, got %d", o.parallel)
	}
	o.log = logger.New(logger.Level(o.cfg.LogLevel, false, o.quiet), o.cfg.PrettyLog)
	return nil
}

// load reads the settings file and builds the application once.
func (o *options) load() (*app.App, error) {
	if o.app != nil {
		return o.app, nil
	}
	path := o.configFile
	if path == "" {
		path = o.cfg.SettingsFile
	}
	settings, err := config.LoadSettings(path)
	if err != nil {
		return nil, err
	}
	if settings.File != "" {
		o.log.Debug("settings loaded", logger.String("file", settings.File))
	}

	a, err := app.New(o.cfg, settings, o.log)
	if err != nil {
		return nil, err
	}
	o.app = a
	return a, nil
}

func (o *options) generateOptions(outputDir string) app.GenerateOptions {
	return app.GenerateOptions{
		OutputDir:         outputDir,
		CollectStatic:     o.collectStatic,
		ExcludeStatic:     o.excludeStatic,
		GenerateRedirects: o.generateRedirects,
		Parallel:          o.parallel,
	}
}

// say writes progress output, unless --quiet.
func (o *options) say(cmd *cobra.Command, format string, args ...any) {
	if o.quiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

func (o *options) prompter(cmd *cobra.Command) *prompter {
	return newPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), o.force)
}

// trackStates prints each state a generate or publish run enters.
func (o *options) trackStates(cmd *cobra.Command, a *app.App) {
	a.OnState = func(s app.State) {
		if s.Terminal() {
			return
		}
		o.say(cmd, "%s %s", styleDim.Render("→"), styleAction.Render(s.String()))
	}
}
