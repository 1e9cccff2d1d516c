// Package stores holds the durable bookkeeping the engine keeps in the
// shared key-value store: the token revocation list and the per-user
// refresh-token record.
//
// In-process objects here are transient views constructed per call. Nothing
// is cached across requests; every operation re-reads shared state so that
// all service instances observe the same truth.
package stores
