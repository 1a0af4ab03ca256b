package domain

var statusLabels = map[Status]string{
	StatusDemande:                 "Demande reçue",
	StatusApprouvee:               "Demande approuvée",
	StatusRejetee:                 "Demande rejetée",
	StatusDemandeDeDevis:          "Devis demandé",
	StatusPlanification:           "Planification en cours",
	StatusPlanifiee:               "Intervention planifiée",
	StatusEnCours:                 "Intervention en cours",
	StatusClotureeParPrestataire:  "Clôturée par le prestataire",
	StatusClotureeParLocataire:    "Clôturée par le locataire",
	StatusClotureeParGestionnaire: "Clôturée par le gestionnaire",
	StatusAnnulee:                 "Intervention annulée",
}

// StatusLabel returns the French display label for a status. Unknown values
// are returned as-is.
func StatusLabel(status string) string {
	if label, ok := statusLabels[Status(status)]; ok {
		return label
	}
	return status
}
