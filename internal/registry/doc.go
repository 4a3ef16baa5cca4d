// Package registry holds the in-memory activity registry: the catalog of
// extracurricular activities and the rosters of students enrolled in them.
//
// # Core Components
//
//   - Registry: the authoritative, concurrency-safe map of activity name to Activity
//   - Catalog: an ordered, read-only snapshot returned by List
//   - Change: the receipt returned by a successful Signup or Unregister
//   - Policy: the optional capacity and email checks applied on Signup
//
// # Building a Registry
//
// A registry is built once from seed data and lives for the whole process:
//
//	reg, err := registry.New(registry.DefaultCatalog(),
//	    registry.WithCapacityEnforcement(true),
//	    registry.WithEmailValidation(true),
//	)
//
// Activities are never created or deleted after construction. Only the
// participant lists change, through Signup and Unregister.
//
// # Error Precedence
//
// Signup checks, in order: the activity exists (ErrActivityNotFound), the
// email is well formed (ErrInvalidEmail), the email is not enrolled yet
// (ErrAlreadySignedUp) and the activity has room (ErrActivityFull).
// Unregister checks the activity first and then the participant
// (ErrParticipantNotFound). All errors wrap the sentinels declared in this
// package and should be matched with errors.Is.
package registry
