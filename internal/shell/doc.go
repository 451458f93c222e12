// ABOUTME: Package shell is the interactive command loop of the gigboard client
// ABOUTME: Offers role-appropriate commands and reacts to session events

// Package shell reads commands line by line, opens the matching view, and
// returns to the entry screen when the server invalidates the session.
package shell
