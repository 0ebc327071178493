package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/staticsite/internal/app"
)

func newPublishCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Generate the site and publish it to a remote storage target",
		Long: `Generate the site into a scratch directory and mirror it onto the
publishing target: changed files are uploaded and verified, files the
site no longer has are deleted from the target.

Examples:
  staticsite publish
  staticsite publish --target=staging --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPublish(cmd, o)
		},
	}
}

func runPublish(cmd *cobra.Command, o *options) error {
	a, err := o.load()
	if err != nil {
		return err
	}
	target, err := a.Target(o.target)
	if err != nil {
		return err
	}

	o.say(cmd, "")
	o.say(cmd, "You have requested to publish this site to:")
	o.say(cmd, "")
	o.say(cmd, "    Target:     %s", styleNoun.Render(target.Name))
	o.say(cmd, "    Engine:     %s", styleNoun.Render(target.Engine))
	o.say(cmd, "    Public URL: %s", styleNoun.Render(target.PublicURL))
	o.say(cmd, "")
	if !o.prompter(cmd).confirm("") {
		return cancelled("Publishing site")
	}

	o.trackStates(cmd, a)
	report, err := a.Publish(cmd.Context(), app.PublishOptions{
		Target:   target.Name,
		Generate: o.generateOptions(""),
	})
	if report != nil && report.Sync != nil {
		printSync(cmd, o, report)
	}
	if err != nil {
		return err
	}

	o.say(cmd, "")
	o.say(cmd, "%s %s", checkmark(styleSummary.Render("Site published to "+target.Name)), styleDim.Render(fmt.Sprintf(
		"%d uploaded, %d unchanged, %d deleted in %s",
		len(report.Sync.Uploaded),
		len(report.Sync.Unchanged),
		len(report.Sync.Deleted),
		report.Took.Round(time.Millisecond),
	)))
	return nil
}

func printSync(cmd *cobra.Command, o *options, report *app.PublishReport) {
	for _, name := range report.Sync.Uploaded {
		o.say(cmd, "%s", fileLine(name, statusUploaded))
	}
	for _, name := range report.Sync.Deleted {
		o.say(cmd, "%s", fileLine(name, statusDeleted))
	}
}
