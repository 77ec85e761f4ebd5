// Package kestrel detects AI provider SDK usage in Python and JavaScript
// projects and suggests where usage-tracking middleware should be wired in.
package kestrel

// Version is the current release of the kestrel CLI.
const Version = "0.3.0"
