package onboarding

import "fmt"

// stepSuffixes is the ladder-to-page table, first match wins.
var stepSuffixes = map[Completeness]string{
	EmptyProfile:          "/conus-status",
	DODInfoComplete:       "/name",
	NameComplete:          "/contact-info",
	ContactInfoComplete:   "/duty-station",
	DutyStationComplete:   "/residence-address",
	AddressComplete:       "/backup-mailing-address",
	BackupAddressComplete: "/backup-contacts",
}

// NextStep maps a ladder position to the profile page the service member
// must visit next. Total: a complete or unrecognized position resolves to
// the root path. Non-root paths are scoped to the service member.
func NextStep(serviceMemberID string, completeness Completeness) string {
	suffix, ok := stepSuffixes[completeness]
	if !ok {
		return "/"
	}
	return fmt.Sprintf("/service-member/%s%s", serviceMemberID, suffix)
}
