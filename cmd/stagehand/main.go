package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stagehand-ci/stagehand"
	"github.com/stagehand-ci/stagehand/ghactions"
)

// releaseRef selects the published bundle the launcher fetches the actions
// binary from. It is baked in when the distributable bundle is assembled,
// via -ldflags "-X main.releaseRef=<ref>".
var releaseRef = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var code int

	root := cobra.Command{
		Use:   "stagehand [action phase]",
		Short: "fetch and dispatch the per-platform actions binary",
		Long: "stagehand resolves the actions binary built for this host, caches it\n" +
			"under the user profile, and dispatches the named action phase to it.\n\n" +
			"With no arguments the action and phase are derived from the launcher's\n" +
			"own location: the parent directory names the action and the file names\n" +
			"the phase, which is how the per-action stubs invoke it.",
		Args:          cobra.RangeArgs(0, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			action, phase, err := identity(args)
			if err != nil {
				return err
			}

			code = stagehand.NewLauncher(releaseRef).Launch(cmd.Context(), action, phase)
			return nil
		},
	}

	if err := root.Execute(); err != nil {
		ghactions.Error(os.Stdout, "stagehand", err.Error())
		return 1
	}

	return code
}

// identity resolves the action and phase either from explicit arguments or
// from the invoking stub's own path.
func identity(args []string) (string, string, error) {
	switch len(args) {
	case 2:
		return args[0], args[1], nil
	case 0:
		return stagehand.IdentityFromPath(os.Args[0])
	default:
		return "", "", fmt.Errorf("expected both an action and a phase, got only %q", args[0])
	}
}
