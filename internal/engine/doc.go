// Package engine runs jobs scripts against an event table with a cohort of
// worker goroutines that converge at barriers.
//
// ARCHITECTURE:
//
// Generations:
// A script is executed as a sequence of generations. Each generation spawns
// N workers over the same command stream and the same table. A worker stops
// with Completed at end of stream or with HitBarrier when it reads a BARRIER.
// The engine joins all N workers; if any hit a barrier, the next generation
// starts just past it. Generations never overlap, so generation g+1 observes
// every mutation made by generation g.
//
// Sharding:
// Every worker reads every line of the script through its own cursor into a
// shared command.Stream. Line L is executed only by worker (L mod N)+1; the
// other workers skip it. BARRIER and untargeted WAIT lines are observed by
// every worker, which is what makes them cohort-wide.
//
// Targeted waits:
// "WAIT <ms> <t>" is slept by worker t when its own cursor reaches the line,
// whichever worker owns it. The owner journals the line; a target outside
// 1..N is journaled as "no such worker" and nobody sleeps.
//
// Errors:
// Command failures are logged and the worker moves on ("log and continue").
// Only a failure reading the script stops the script, after the current
// generation has joined.
//
// Every executed line, including blank lines and control commands, is
// appended to the journal by its owner, stamped with Clock.Next().
package engine
