// Package stagehand launches a versioned, precompiled actions binary from
// inside an automation job without the binary's source being present.
//
// Every job step invokes a thin stub which identifies itself by action and
// phase and calls [Launcher.Launch]. The launcher resolves the artifact for
// the host platform, populates the per-host cache exactly once, runs the
// cached binary with the two identity arguments and inherited standard
// streams, and forwards its exit status. Any failure before the binary runs
// is reported as a single workflow error annotation followed by exit 1, so
// the outer platform never sees a raw fault.
//
// example usage
//
//	func main() {
//		action, phase, err := stagehand.IdentityFromPath(os.Args[0])
//		if err != nil {
//			ghactions.Error(os.Stdout, "stagehand", err.Error())
//			os.Exit(1)
//		}
//
//		os.Exit(stagehand.NewLauncher(releaseRef).Launch(context.Background(), action, phase))
//	}
package stagehand
