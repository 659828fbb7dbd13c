// Package railbed provisions ephemeral rails applications for verification
// runs.
//
// A Session detects the installed rails version, generates a throwaway
// project under a container directory, rewrites its Gemfile and environment
// configuration to be self-contained, installs its dependencies and verifies
// the installation before handing control to a caller supplied callback. The
// callback runs with the project root as working directory and RAILS_ENV set
// to the session's named environment; both are restored on every exit path.
//
//	session, _ := railbed.New("/tmp/railbed", railbed.WithRailsEnv("staging"))
//	err := session.Run(ctx, func(ctx context.Context, s *railbed.Session) error {
//		out, err := s.RunScriptSource(ctx, "puts Rails.env")
//		...
//	})
//
// Sessions are single-use and synchronous; a hung external command hangs the
// session, which is acceptable under the harness's own timeout policy.
package railbed
