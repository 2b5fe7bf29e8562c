// Package task runs the periodic maintenance jobs of the service on a cron
// schedule: purging expired share tokens and pruning the in-memory cache.
// Jobs run outside any request, so each gets a fresh context that the
// scheduler cancels on shutdown.
package task
