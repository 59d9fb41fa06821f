// Package review holds the remote review model shared by the review source,
// the identity resolver, and the sync driver.
package review
