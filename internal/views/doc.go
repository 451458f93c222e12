// ABOUTME: Package views renders the job board's feature screens to a terminal
// ABOUTME: Each view owns its data, loading flag, error and flash message

// Package views holds the feature screens: registration, login, profile,
// job posting, the job board, and both application lists. Views check the
// session's capabilities before rendering or submitting and print a fixed
// denial message, with no network call, when the role does not match.
package views
