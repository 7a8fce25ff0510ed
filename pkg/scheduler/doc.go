// Package scheduler runs callbacks at absolute instants using a single
// platform timer
//
// Pending tasks are kept in a time-ordered queue. One alarm is armed for the
// earliest task, with its delay capped at a configurable maximum; when the cap
// is shorter than the true wait, the alarm simply wakes early, drains nothing,
// and re-arms. Every task whose time has passed is drained and run in order
// when the alarm fires
package scheduler
