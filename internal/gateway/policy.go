package gateway

// CheckPolicy validates a whole batch against the requested mode before
// anything executes. DCL and TCL are rejected unconditionally: privilege
// is managed out-of-band and the gateway owns transaction boundaries. In
// read-only mode (commit=false) only DML is permitted. One disallowed
// statement fails the entire batch.
func CheckPolicy(statements []Statement, commit bool) error {
	for i, statement := range statements {
		switch statement.Category {
		case CategoryDCL:
			return &PolicyError{Reason: ReasonDCLDisallowed, Category: CategoryDCL, Index: i}
		case CategoryTCL:
			return &PolicyError{Reason: ReasonTCLDisallowed, Category: CategoryTCL, Index: i}
		case CategoryDDL:
			if !commit {
				return &PolicyError{Reason: ReasonDDLInReadOnlyMode, Category: CategoryDDL, Index: i}
			}
		}
	}
	return nil
}
