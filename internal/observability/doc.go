// Package observability records what the assignment engine does and reads it
// back. Events are appended to a JSON Lines file; metrics and alerts are
// derived from that file on demand, and triggered alerts can be pushed to a
// Slack webhook.
package observability
