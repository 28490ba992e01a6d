// Package ghactions covers the launcher's integration surface with GitHub
// Actions: workflow command formatting for error annotations, and a client
// for the runner-scoped cache API.
package ghactions
