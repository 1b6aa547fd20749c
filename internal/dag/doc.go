// Package dag is a small, concurrency-safe directed acyclic graph keyed by
// string IDs. The job graph builder uses it to check the topology of a
// submission (edge validity, cycles) and to order jobs so that every job is
// submitted after the jobs it depends on.
package dag
