package service

import (
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/domain"
	"github.com/aumugisha-umu/seido-sub017/internal/planning/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/planning/transport"
)

// IsMutuallyAccepted reports whether a slot carries at least one acceptance
// from a locataire and one from a prestataire. A later refusal by the same
// participant supersedes their earlier acceptance, so only the latest answer
// per user counts. Responses must be ordered oldest first.
func IsMutuallyAccepted(responses []repository.SlotResponse) bool {
	latest := make(map[string]repository.SlotResponse, len(responses))
	for _, r := range responses {
		latest[r.UserID.String()] = r
	}

	var locataireOK, prestataireOK bool
	for _, r := range latest {
		if transport.SlotResponseValue(r.Response) != transport.SlotResponseAcceptee {
			continue
		}
		switch domain.Role(r.Role) {
		case domain.RoleLocataire:
			locataireOK = true
		case domain.RolePrestataire:
			prestataireOK = true
		}
	}
	return locataireOK && prestataireOK
}
