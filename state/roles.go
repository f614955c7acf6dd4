package state

// RoleType identifies a user role on the server session.
type RoleType string

// Known role types.
const (
	RoleCustomer             RoleType = "customer"
	RoleTaskOrderingOfficer  RoleType = "task_ordering_officer"
	RoleTaskInvoicingOfficer RoleType = "task_invoicing_officer"
	RoleContractingOfficer   RoleType = "contracting_officer"
	RoleServicesCounselor    RoleType = "services_counselor"
	RolePrimeSimulator       RoleType = "prime_simulator"
	RoleQualityAssuranceEval RoleType = "qae"
	RoleHeadquarters         RoleType = "headquarters"
)

// knownRoles is the closed set a session role must belong to.
var knownRoles = map[RoleType]struct{}{
	RoleCustomer:             {},
	RoleTaskOrderingOfficer:  {},
	RoleTaskInvoicingOfficer: {},
	RoleContractingOfficer:   {},
	RoleServicesCounselor:    {},
	RolePrimeSimulator:       {},
	RoleQualityAssuranceEval: {},
	RoleHeadquarters:         {},
}

// Known reports whether the role type is part of the role vocabulary.
func (r RoleType) Known() bool {
	_, ok := knownRoles[r]
	return ok
}

// String returns the wire value of the role type.
func (r RoleType) String() string {
	return string(r)
}
