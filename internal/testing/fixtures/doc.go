// Package fixtures provides test data factories and a fixture dependency
// resolver for the Academy API.
//
// # Factories
//
// Factories create entities with sensible defaults and option functions
// for customization. Rows are validated against the provisioned schema
// before insertion; an unsatisfiable declaration fails as a
// ConstraintError naming the entity and field:
//
//	f := fixtures.New(tdb.DB, tdb.Snapshot)
//	user, err := f.CreateUser()
//	course, err := f.CreateCourse(func(o *fixtures.CourseOpts) {
//	    o.Title = "Intro to Go"
//	})
//
// Required relationships are satisfied transitively: creating a course
// without an instructor creates one.
//
// # Derived Fields
//
// Some fields are never supplied, only derived: a course slug comes from
// its title plus a unique suffix, order and certificate numbers are
// generated. Supplying a slug override is still possible via CourseOpts.
//
// # Named Fixtures
//
// The resolver builds named fixtures and everything they depend on:
//
//	r := fixtures.NewResolver(fixtures.DefaultRegistry(), f)
//	headers := fixtures.Resolve[map[string]string](t, r, "normal_user_token_headers")
//	course := fixtures.Resolve[*model.Course](t, r, "test_course")
//
// Within one resolver each fixture is built once; two fixtures depending
// on "test_user" share the same user. Session-scoped fixtures (the token
// signer) are shared across all tests in the process.
//
// Cyclic dependency declarations fail with a CycleError carrying the full
// cycle path before any entity is created.
package fixtures
