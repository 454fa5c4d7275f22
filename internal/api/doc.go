// Package api is the HTTP ingress of the page queue. It accepts capture
// messages from page fetchers, hands them to the task router and exposes
// read-only views of stored pages and worker tasks.
package api
