// Package gathering implements the gathering setup and attendance service.
//
// It keeps the six-item setup evaluation, form dirty tracking, and close
// confirmation isolated in domain packages so the HTTP layer and storage
// remain thin adapters over per-gathering state transitions.
package gathering
