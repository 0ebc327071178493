package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

func newTestTargetCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "test-target",
		Short: "Test a publishing target is configured correctly",
		Long: `Upload a random probe file to the target, fetch it back from its public
URL and compare digests. The probe is deleted afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.load()
			if err != nil {
				return err
			}
			target, err := a.Target(o.target)
			if err != nil {
				return err
			}

			o.say(cmd, "")
			o.say(cmd, "You have requested to test a publishing target:")
			o.say(cmd, "")
			o.say(cmd, "    Name:   %s", styleNoun.Render(target.Name))
			o.say(cmd, "    Engine: %s", styleNoun.Render(target.Engine))
			o.say(cmd, "")
			if !o.prompter(cmd).confirm("") {
				return cancelled("Testing publishing target")
			}

			report, err := a.TestTarget(cmd.Context(), target.Name)
			if err != nil {
				return err
			}
			o.say(cmd, "Uploaded test file: %s", styleNoun.Render(report.Name))
			o.say(cmd, "Verified remote test file: %s", styleNoun.Render(report.URL))
			if !report.Match {
				return domain.Publishf(nil, target.Name,
					"remote file hash %q differs from local hash %q at %s", report.RemoteHash, report.LocalHash, report.URL)
			}
			o.say(cmd, "%s", checkmark(styleSummary.Render("Backend testing complete, file hash is correct")))
			return nil
		},
	}
}

func newListPublishTargetsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list-publish-targets",
		Short: "List all defined publishing targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.load()
			if err != nil {
				return err
			}
			targets := a.PublishTargets()
			if len(targets) == 0 {
				o.say(cmd, "%s", styleWarn.Render("No publishing targets defined, add some under publishing_targets"))
				return nil
			}
			out := cmd.OutOrStdout()
			for _, t := range targets {
				switch {
				case t.Err != nil:
					fmt.Fprintf(out, "%s  %s\n", styleNoun.Render(t.Name), styleWarn.Render(t.Err.Error()))
				case !t.Supported:
					fmt.Fprintf(out, "%s  %s %s\n", styleNoun.Render(t.Name), t.Engine, styleWarn.Render("(unknown engine)"))
				default:
					fmt.Fprintf(out, "%s  %s %s\n", styleNoun.Render(t.Name), t.Engine, styleDim.Render(t.PublicURL))
				}
			}
			return nil
		},
	}
}
