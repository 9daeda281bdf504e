/*
Package observability bridges the node lifecycle into Prometheus metrics.

It provides ready-made collectors for generation counts, durations, progress
volume and in-flight status, exposed through domain.LifecycleHooks so hosts
can combine them with their own hooks.
*/
package observability
