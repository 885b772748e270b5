// Package ratelimit bounds the number of operations per logical key within a
// rolling time window.
//
// # Window semantics
//
// [Sliding] is the in-process limiter: it keeps the timestamps of recent
// admissions per key and never admits more than the limit within ANY
// trailing window, avoiding the boundary burst a fixed bucket allows. State
// lives only in memory and disappears on restart.
//
// [RedisWindow] is the multi-process adapter: fixed-window counters built
// from INCR plus a conditional EXPIRE on first hit, the coarser tradeoff
// accepted when several processes must share one budget.
//
// # Key convention
//
// Keys combine an action name with an identifying attribute, for example
// "login:203.0.113.9" or "ai:42", so different action classes never share a
// budget. Key cardinality is bounded by clients active within the window.
package ratelimit
