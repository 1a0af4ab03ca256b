// Package domain provides core business rules for the interventions bounded
// context. It is dependency-free: the lifecycle decides, it never executes
// side effects.
package domain

import "errors"

// Status is the closed enumeration of intervention lifecycle statuses.
type Status string

const (
	StatusDemande                 Status = "demande"
	StatusApprouvee               Status = "approuvee"
	StatusDemandeDeDevis          Status = "demande_de_devis"
	StatusPlanification           Status = "planification"
	StatusPlanifiee               Status = "planifiee"
	StatusEnCours                 Status = "en_cours"
	StatusClotureeParPrestataire  Status = "cloturee_par_prestataire"
	StatusClotureeParLocataire    Status = "cloturee_par_locataire"
	StatusClotureeParGestionnaire Status = "cloturee_par_gestionnaire"
	StatusAnnulee                 Status = "annulee"
	StatusRejetee                 Status = "rejetee"
)

// Role identifies the actor attempting a transition.
type Role string

const (
	RoleGestionnaire Role = "gestionnaire"
	RolePrestataire  Role = "prestataire"
	RoleLocataire    Role = "locataire"
	RoleProprietaire Role = "proprietaire"
)

// Urgency is informational only and never gates a transition.
type Urgency string

const (
	UrgencyFaible  Urgency = "faible"
	UrgencyNormale Urgency = "normale"
	UrgencyUrgente Urgency = "urgente"
)

// Effect is the declarative side-effect tag attached to a transition. The
// lifecycle returns it; the notification module dispatches it.
type Effect string

const (
	EffectNone            Effect = ""
	EffectNotifyRequester Effect = "notify_requester"
	EffectNotifyProvider  Effect = "notify_provider"
	EffectNotifyManager   Effect = "notify_manager"
	EffectNotifyAll       Effect = "notify_all"
)

// Requirement names the precondition a transition must satisfy. The lifecycle
// only names it; the caller checks it against persisted state.
type Requirement string

const (
	RequireNothing        Requirement = ""
	RequireAcceptedQuote  Requirement = "accepted_quote"
	RequireAcceptedSlot   Requirement = "accepted_slot"
	RequireCompletionNote Requirement = "completion_note"
	RequireSatisfaction   Requirement = "satisfaction"
)

// Transition is one permitted move out of a status for a given role.
type Transition struct {
	To       Status
	Effect   Effect
	Requires Requirement
}

// ErrIllegalTransition is returned when a (status, role, target) triple is not
// in the transition table. It must be surfaced to the actor, never coerced.
var ErrIllegalTransition = errors.New("illegal transition")

// ErrPreconditionUnmet is returned when a transition exists but its
// requirement is not satisfied (e.g. no mutually accepted time slot).
var ErrPreconditionUnmet = errors.New("precondition unmet")

// terminalStatuses admit no further transitions for any role.
var terminalStatuses = map[Status]bool{
	StatusClotureeParGestionnaire: true,
	StatusAnnulee:                 true,
	StatusRejetee:                 true,
}

// transitions is the canonical table: (from, actor) → permitted moves.
// Cancellation by the gestionnaire is handled separately in Next, so the
// table stays a pure forward-workflow description.
var transitions = map[Status]map[Role][]Transition{
	StatusDemande: {
		RoleGestionnaire: {
			{To: StatusApprouvee, Effect: EffectNotifyRequester},
			{To: StatusRejetee, Effect: EffectNotifyRequester},
		},
	},
	StatusApprouvee: {
		RoleGestionnaire: {
			{To: StatusDemandeDeDevis, Effect: EffectNotifyProvider},
			{To: StatusPlanification, Effect: EffectNotifyProvider},
		},
	},
	StatusDemandeDeDevis: {
		RoleGestionnaire: {
			{To: StatusPlanification, Effect: EffectNotifyProvider, Requires: RequireAcceptedQuote},
			{To: StatusRejetee, Effect: EffectNotifyProvider},
		},
	},
	StatusPlanification: {
		RoleGestionnaire: {
			{To: StatusPlanifiee, Effect: EffectNotifyAll, Requires: RequireAcceptedSlot},
		},
		RoleLocataire: {
			{To: StatusPlanifiee, Effect: EffectNotifyAll, Requires: RequireAcceptedSlot},
		},
		RolePrestataire: {
			{To: StatusPlanifiee, Effect: EffectNotifyAll, Requires: RequireAcceptedSlot},
		},
	},
	StatusPlanifiee: {
		RolePrestataire: {
			{To: StatusEnCours},
		},
	},
	StatusEnCours: {
		RolePrestataire: {
			{To: StatusClotureeParPrestataire, Effect: EffectNotifyRequester, Requires: RequireCompletionNote},
		},
	},
	StatusClotureeParPrestataire: {
		RoleLocataire: {
			{To: StatusClotureeParLocataire, Effect: EffectNotifyManager, Requires: RequireSatisfaction},
		},
	},
	StatusClotureeParLocataire: {
		RoleGestionnaire: {
			{To: StatusClotureeParGestionnaire, Effect: EffectNotifyAll},
		},
	},
}

// knownStatuses is derived from the table plus terminal states.
var knownStatuses = map[Status]bool{
	StatusDemande:                 true,
	StatusApprouvee:               true,
	StatusDemandeDeDevis:          true,
	StatusPlanification:           true,
	StatusPlanifiee:               true,
	StatusEnCours:                 true,
	StatusClotureeParPrestataire:  true,
	StatusClotureeParLocataire:    true,
	StatusClotureeParGestionnaire: true,
	StatusAnnulee:                 true,
	StatusRejetee:                 true,
}

// IsKnownStatus reports whether s is part of the closed enumeration.
func IsKnownStatus(s Status) bool {
	return knownStatuses[s]
}

// IsKnownRole reports whether r is a recognized actor role.
func IsKnownRole(r Role) bool {
	switch r {
	case RoleGestionnaire, RolePrestataire, RoleLocataire, RoleProprietaire:
		return true
	}
	return false
}

// IsKnownUrgency reports whether u is a recognized urgency level.
func IsKnownUrgency(u Urgency) bool {
	switch u {
	case UrgencyFaible, UrgencyNormale, UrgencyUrgente:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func IsTerminal(s Status) bool {
	return terminalStatuses[s]
}

// CanCancel reports whether an intervention in this status may still be
// cancelled by a gestionnaire.
func CanCancel(from Status) bool {
	return IsKnownStatus(from) && !IsTerminal(from)
}

// Next returns the permitted transitions out of from for the given actor.
// The gestionnaire may additionally cancel from every non-terminal status.
func Next(from Status, actor Role) []Transition {
	var result []Transition
	if byRole, ok := transitions[from]; ok {
		result = append(result, byRole[actor]...)
	}
	if actor == RoleGestionnaire && CanCancel(from) {
		result = append(result, Transition{To: StatusAnnulee, Effect: EffectNotifyAll})
	}
	return result
}

// Resolve finds the transition from → to for the given actor.
// Returns ErrIllegalTransition when the move is not in the table.
func Resolve(from, to Status, actor Role) (Transition, error) {
	for _, tr := range Next(from, actor) {
		if tr.To == to {
			return tr, nil
		}
	}
	return Transition{}, ErrIllegalTransition
}

// RequiresQuote derives the requires_quote flag: an intervention needs a
// devis while it sits in demande_de_devis without an accepted one. The flag
// is never stored, always derived.
func RequiresQuote(s Status, hasAcceptedQuote bool) bool {
	return s == StatusDemandeDeDevis && !hasAcceptedQuote
}

// AllStatuses returns every status of the closed enumeration, workflow order
// first, exits last.
func AllStatuses() []Status {
	return []Status{
		StatusDemande,
		StatusApprouvee,
		StatusDemandeDeDevis,
		StatusPlanification,
		StatusPlanifiee,
		StatusEnCours,
		StatusClotureeParPrestataire,
		StatusClotureeParLocataire,
		StatusClotureeParGestionnaire,
		StatusAnnulee,
		StatusRejetee,
	}
}

// AllRoles returns every recognized actor role.
func AllRoles() []Role {
	return []Role{RoleGestionnaire, RolePrestataire, RoleLocataire, RoleProprietaire}
}
