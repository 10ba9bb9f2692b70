// Package schema declares the Academy entity model and provisions storage from it.
//
// The declarations in this package are the single source of truth for the
// database shape. Storage is always built by regenerating the full schema from
// the declarations; nothing in the repository is allowed to patch a table
// behind the model's back.
//
// # Provisioning
//
// Provision translates a Registry into a Snapshot, validating every table and
// column and rendering the DDL:
//
//	snap, err := schema.Provision(schema.DefaultRegistry())
//	if err != nil {
//	    // a *ProvisionError names the offending table/column
//	}
//	for _, stmt := range snap.DDL() {
//	    db.Exec(stmt)
//	}
//
// Provision recomputes the snapshot on every call. There is deliberately no
// caching: a snapshot that survives a change to the declarations is exactly
// the missing-column failure mode this package exists to rule out.
//
// # Errors
//
// Provisioning failures are fatal for whoever needs the schema. Use
// errors.As to recover the attribution:
//
//	var perr *schema.ProvisionError
//	if errors.As(err, &perr) {
//	    log.Fatal(perr.Table, perr.Column, perr.Reason)
//	}
package schema
