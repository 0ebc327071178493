package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

func newGenerateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a local static site",
		Long: `Render every static route into the output directory.

The output directory is deleted and recreated when it exists, after
confirmation. Static and media files are copied unless
--exclude-staticfiles is given.

Examples:
  staticsite generate --output-directory=public
  staticsite generate --output-directory=public --generate-redirects --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, o)
		},
	}
}

func runGenerate(cmd *cobra.Command, o *options) error {
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
	dir, err = filepath.Abs(dir)
	if err != nil {
		return domain.WrapConfig(err, fmt.Sprintf("invalid output directory %q", o.outputDir))
	}
	if dir == filepath.Dir(dir) {
		return domain.Configf(domain.ErrConfig, "refusing to generate into %q", dir)
	}

	s := a.Settings()
	o.say(cmd, "")
	o.say(cmd, "You have requested to create a static version of this site into:")
	o.say(cmd, "")
	o.say(cmd, "    Output directory:   %s", styleNoun.Render(dir))
	if !o.excludeStatic {
		o.say(cmd, "    Static files from:  %s", styleNoun.Render(orNone(s.StaticRoot)))
		o.say(cmd, "    Media files from:   %s", styleNoun.Render(orNone(s.MediaRoot)))
	}
	o.say(cmd, "    Languages:          %v", a.Languages())
	o.say(cmd, "")

	p := o.prompter(cmd)
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return domain.Configf(domain.ErrConfig, "output path %q is not a directory", dir)
		}
		if !p.confirm("Output directory exists, all of its files will be deleted and recreated.") {
			return cancelled("Generating site")
		}
		o.say(cmd, "Recreating output directory...")
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	} else {
		if !p.confirm("Output directory does not exist, create it?") {
			return cancelled("Generating site")
		}
		o.say(cmd, "Creating output directory...")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	o.trackStates(cmd, a)
	report, err := a.Generate(cmd.Context(), o.generateOptions(dir))
	if err != nil {
		return err
	}

	o.say(cmd, "")
	o.say(cmd, "%s %s", checkmark(styleSummary.Render("Site generation complete")), styleDim.Render(fmt.Sprintf(
		"%s, %s, %s in %s",
		plural(len(report.Files), "page"),
		plural(report.Assets, "asset"),
		plural(len(report.Redirects), "redirect"),
		report.Took.Round(time.Millisecond),
	)))
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(not configured)"
	}
	return s
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
