// Package vaultx keeps an identity-onboarding session on the user's machine without
// exposing personal data in any storage medium.
//
// A Session combines four parts:
//
//   - an encrypted vault: every record is sealed with AES-256-GCM under a per-profile
//     device key and written to a synchronous mirror store and to durable stores
//     (SQLite, Redis, S3), read back from every store with the newest valid copy winning;
//   - a field privacy registry that classifies every profile field as public, private
//     or never public, and refuses to start if a restricted field could leak;
//   - commitment versioning: each confirmed profile gets a salted SHA-256 commitment,
//     chained into an append-only version list;
//   - the wizard state machine, a pure transition function whose processing step only
//     runs on its own when entered by forward progression.
//
// # Quick Start
//
//	cfg, err := vaultx.LoadConfigFromEnvironment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	session, err := vaultx.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close(ctx)
//
//	state, _ := session.Hydrate(ctx)
//	state = session.Dispatch(wizard.NextStep{})
//
// Dispatch saves in the background after Config.AutosaveDelay. Call Flush (or Close)
// before the process exits so the last change is not lost.
//
// # Persistence guarantees
//
// Saves always reach the mirror before returning. Durable failures are logged and
// never surface. Every save carries a sequence number sealed with the record, so a
// durable copy left over from an outage never shadows the newer mirror copy. Load never
// fails on bad data: a corrupt copy in one store is skipped, and when no store holds a
// valid copy the wizard starts over.
//
// # Testing
//
// NewTestSession builds a session on in-memory backends with instant mock services.
package vaultx
