// Package fixes turns detection results into edit scripts that add Revenium
// middleware, previews them as unified diffs and writes them to disk in a
// single transaction.
package fixes
