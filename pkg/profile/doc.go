// Package profile models NextWeekend user profiles and persists them.
//
// A Profile is created at signup with an id, email and name, enriched by the
// billing reconciler with subscription fields, and edited by its owner through
// Preferences. Profiles are never deleted here.
//
// Store has three implementations:
//
//   - SupabaseStore talks to the Supabase PostgREST API with the service-role
//     key, guarded by a circuit breaker.
//   - PostgresStore queries the same table directly through a pgx pool.
//   - MemoryStore keeps profiles in process memory for tests and local runs.
//
// Emails are stored lowercased so lookups by email are exact matches.
package profile
