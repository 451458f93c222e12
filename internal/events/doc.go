// ABOUTME: Package events fans session lifecycle changes out to interested views
// ABOUTME: Subscribers get buffered channels; slow subscribers drop events

// Package events provides the in-process broadcaster the session manager
// uses to announce sign-in, sign-out and server-side invalidation.
package events
