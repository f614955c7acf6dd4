package state

import (
	"sync"

	"github.com/movelink/movekit/provider"
)

// Phase is the session lifecycle position.
type Phase int

// Session phases.
const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseAuthenticated
	PhaseFailed
)

// String returns the string representation of Phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transition names recorded in the log.
const (
	TransitionLoadingStarted     = "session.loading_started"
	TransitionLoadFailed         = "session.load_failed"
	TransitionAuthenticated      = "session.authenticated"
	TransitionAdminUserLoaded    = "session.admin_user_loaded"
	TransitionIdentityLoaded     = "session.identity_profile_loaded"
	TransitionRoleSwitchSuccess  = "session.role_switch_succeeded"
	TransitionRoleSwitchFailed   = "session.role_switch_failed"
	TransitionFlashMessageSet    = "flash.set"
	TransitionFlashMessageClear  = "flash.cleared"
	TransitionNavigation         = "navigation.pushed"
	TransitionOnboardingComplete = "onboarding.complete"
	TransitionOnboardingFailed   = "onboarding.failed"
)

// Transition is one recorded state change.
type Transition struct {
	Name   string
	Detail string
}

// FlashMessage is a keyed user-facing notice.
type FlashMessage struct {
	Key   string
	Type  string
	Text  string
	Title string
}

// State is the session-state container. Safe for concurrent use by
// interleaving flows; every method is atomic.
type State struct {
	mu sync.RWMutex

	phase           Phase
	loadError       error
	activeRole      string
	adminUser       provider.Record
	identityProfile provider.Record

	flash map[string]FlashMessage
	path  string

	onboardingComplete bool

	log []Transition
}

// New creates an idle state container.
func New() *State {
	return &State{
		flash: make(map[string]FlashMessage),
		path:  "/",
	}
}

func (s *State) record(name, detail string) {
	s.log = append(s.log, Transition{Name: name, Detail: detail})
}

// StartLoading marks the session as loading.
func (s *State) StartLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseLoading
	s.loadError = nil
	s.record(TransitionLoadingStarted, "")
}

// FailLoad marks the session load as failed with the given reason.
func (s *State) FailLoad(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseFailed
	s.loadError = err
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	s.record(TransitionLoadFailed, detail)
}

// Authenticate marks the session as authenticated.
func (s *State) Authenticate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseAuthenticated
	s.loadError = nil
	s.record(TransitionAuthenticated, "")
}

// Phase returns the current session phase.
func (s *State) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// LoadError returns the error recorded by the last failed load, if any.
func (s *State) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadError
}

// SetAdminUser stores the administrative user record.
func (s *State) SetAdminUser(user provider.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminUser = user.Clone()
	s.record(TransitionAdminUserLoaded, "")
}

// AdminUser returns the stored administrative user record, if any.
func (s *State) AdminUser() provider.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminUser.Clone()
}

// SetIdentityProfile stores the identity-provider profile.
func (s *State) SetIdentityProfile(profile provider.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identityProfile = profile.Clone()
	s.record(TransitionIdentityLoaded, "")
}

// IdentityProfile returns the stored identity-provider profile, if any.
func (s *State) IdentityProfile() provider.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identityProfile.Clone()
}

// SetActiveRole records a successful role switch.
func (s *State) SetActiveRole(roleType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeRole = roleType
	s.record(TransitionRoleSwitchSuccess, roleType)
}

// FailRoleSwitch records a failed role switch.
func (s *State) FailRoleSwitch(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	s.record(TransitionRoleSwitchFailed, detail)
}

// ActiveRole returns the active role type, empty when none was switched to.
func (s *State) ActiveRole() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeRole
}

// SetFlashMessage sets the flash message stored under key, replacing any
// message already there.
func (s *State) SetFlashMessage(key, messageType, text, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash[key] = FlashMessage{Key: key, Type: messageType, Text: text, Title: title}
	s.record(TransitionFlashMessageSet, key)
}

// ClearFlashMessage removes the flash message stored under key.
func (s *State) ClearFlashMessage(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.flash[key]; exists {
		delete(s.flash, key)
		s.record(TransitionFlashMessageClear, key)
	}
}

// FlashMessage returns the message stored under key.
func (s *State) FlashMessage(key string) (FlashMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	message, exists := s.flash[key]
	return message, exists
}

// FlashMessages returns every pending flash message, keyed.
func (s *State) FlashMessages() map[string]FlashMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]FlashMessage, len(s.flash))
	for key, message := range s.flash {
		out[key] = message
	}
	return out
}

// NavigateTo pushes a navigation transition to the given path.
func (s *State) NavigateTo(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	s.record(TransitionNavigation, path)
}

// Path returns the current navigation path.
func (s *State) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// CompleteOnboarding marks onboarding initialization as finished.
func (s *State) CompleteOnboarding() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onboardingComplete = true
	s.record(TransitionOnboardingComplete, "")
}

// FailOnboarding records a failed onboarding initialization.
func (s *State) FailOnboarding(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	s.record(TransitionOnboardingFailed, detail)
}

// OnboardingComplete reports whether onboarding initialization finished.
func (s *State) OnboardingComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onboardingComplete
}

// Transitions returns a copy of the ordered transition log.
func (s *State) Transitions() []Transition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Transition, len(s.log))
	copy(out, s.log)
	return out
}

// Count returns how many logged transitions carry the given name.
func (s *State) Count(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, transition := range s.log {
		if transition.Name == name {
			n++
		}
	}
	return n
}
