package domain

import (
	"errors"
	"testing"
)

func TestResolveHappyPath(t *testing.T) {
	steps := []struct {
		from, to Status
		actor    Role
	}{
		{StatusDemande, StatusApprouvee, RoleGestionnaire},
		{StatusApprouvee, StatusDemandeDeDevis, RoleGestionnaire},
		{StatusDemandeDeDevis, StatusPlanification, RoleGestionnaire},
		{StatusPlanification, StatusPlanifiee, RoleGestionnaire},
		{StatusPlanifiee, StatusEnCours, RolePrestataire},
		{StatusEnCours, StatusClotureeParPrestataire, RolePrestataire},
		{StatusClotureeParPrestataire, StatusClotureeParLocataire, RoleLocataire},
		{StatusClotureeParLocataire, StatusClotureeParGestionnaire, RoleGestionnaire},
	}
	for _, s := range steps {
		if _, err := Resolve(s.from, s.to, s.actor); err != nil {
			t.Fatalf("Resolve(%s -> %s, %s): %v", s.from, s.to, s.actor, err)
		}
	}
}

func TestResolveRequirements(t *testing.T) {
	cases := []struct {
		from, to Status
		actor    Role
		want     Requirement
	}{
		{StatusDemandeDeDevis, StatusPlanification, RoleGestionnaire, RequireAcceptedQuote},
		{StatusPlanification, StatusPlanifiee, RoleLocataire, RequireAcceptedSlot},
		{StatusEnCours, StatusClotureeParPrestataire, RolePrestataire, RequireCompletionNote},
		{StatusClotureeParPrestataire, StatusClotureeParLocataire, RoleLocataire, RequireSatisfaction},
		{StatusDemande, StatusApprouvee, RoleGestionnaire, RequireNothing},
	}
	for _, c := range cases {
		tr, err := Resolve(c.from, c.to, c.actor)
		if err != nil {
			t.Fatalf("Resolve(%s -> %s, %s): %v", c.from, c.to, c.actor, err)
		}
		if tr.Requires != c.want {
			t.Fatalf("Resolve(%s -> %s, %s): requires %q, want %q", c.from, c.to, c.actor, tr.Requires, c.want)
		}
	}
}

func TestTerminalStatusesAdmitNoMoves(t *testing.T) {
	for _, s := range []Status{StatusClotureeParGestionnaire, StatusAnnulee, StatusRejetee} {
		if !IsTerminal(s) {
			t.Fatalf("IsTerminal(%s) = false", s)
		}
		for _, r := range AllRoles() {
			if next := Next(s, r); len(next) != 0 {
				t.Fatalf("Next(%s, %s) = %v, want empty", s, r, next)
			}
		}
	}
}

func TestGestionnaireCanCancelFromEveryNonTerminalStatus(t *testing.T) {
	for _, s := range AllStatuses() {
		if IsTerminal(s) {
			continue
		}
		tr, err := Resolve(s, StatusAnnulee, RoleGestionnaire)
		if err != nil {
			t.Fatalf("Resolve(%s -> annulee, gestionnaire): %v", s, err)
		}
		if tr.Effect != EffectNotifyAll {
			t.Fatalf("cancel from %s: effect %q, want %q", s, tr.Effect, EffectNotifyAll)
		}
	}
}

func TestCanCancelMatchesTerminality(t *testing.T) {
	for _, s := range AllStatuses() {
		if got, want := CanCancel(s), !IsTerminal(s); got != want {
			t.Fatalf("CanCancel(%s) = %v, want %v", s, got, want)
		}
	}
	if CanCancel(Status("inconnu")) {
		t.Fatal("CanCancel should reject unknown statuses")
	}
}

func TestOnlyGestionnaireCancels(t *testing.T) {
	for _, r := range []Role{RolePrestataire, RoleLocataire, RoleProprietaire} {
		if _, err := Resolve(StatusEnCours, StatusAnnulee, r); !errors.Is(err, ErrIllegalTransition) {
			t.Fatalf("Resolve(en_cours -> annulee, %s): err = %v, want ErrIllegalTransition", r, err)
		}
	}
}

// TestIllegalPairsRejected walks the full (status, status, role) space and
// checks that everything outside the table resolves to ErrIllegalTransition.
func TestIllegalPairsRejected(t *testing.T) {
	legal := func(from, to Status, actor Role) bool {
		for _, tr := range Next(from, actor) {
			if tr.To == to {
				return true
			}
		}
		return false
	}
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			for _, actor := range AllRoles() {
				_, err := Resolve(from, to, actor)
				if legal(from, to, actor) {
					if err != nil {
						t.Fatalf("Resolve(%s -> %s, %s): unexpected error %v", from, to, actor, err)
					}
					continue
				}
				if !errors.Is(err, ErrIllegalTransition) {
					t.Fatalf("Resolve(%s -> %s, %s): err = %v, want ErrIllegalTransition", from, to, actor, err)
				}
			}
		}
	}
}

func TestSelfTransitionsAreIllegal(t *testing.T) {
	for _, s := range AllStatuses() {
		for _, r := range AllRoles() {
			if _, err := Resolve(s, s, r); !errors.Is(err, ErrIllegalTransition) {
				t.Fatalf("Resolve(%s -> %s, %s): err = %v, want ErrIllegalTransition", s, s, r, err)
			}
		}
	}
}

func TestProprietaireIsReadOnly(t *testing.T) {
	for _, from := range AllStatuses() {
		if next := Next(from, RoleProprietaire); len(next) != 0 {
			t.Fatalf("Next(%s, proprietaire) = %v, want empty", from, next)
		}
	}
}

func TestRequiresQuoteDerivation(t *testing.T) {
	if !RequiresQuote(StatusDemandeDeDevis, false) {
		t.Fatal("demande_de_devis without accepted quote must require a quote")
	}
	if RequiresQuote(StatusDemandeDeDevis, true) {
		t.Fatal("demande_de_devis with accepted quote must not require a quote")
	}
	if RequiresQuote(StatusPlanification, false) {
		t.Fatal("planification never requires a quote")
	}
}

func TestUnknownStatusAndRole(t *testing.T) {
	if IsKnownStatus(Status("termine")) {
		t.Fatal("termine is not a known status")
	}
	if IsKnownRole(Role("admin")) {
		t.Fatal("admin is not a known role")
	}
	if next := Next(Status("termine"), RoleGestionnaire); len(next) != 0 {
		t.Fatalf("Next(unknown, gestionnaire) = %v, want empty", next)
	}
}
