package email

const (
	subjectVerification        = "Confirmez votre adresse email"
	subjectPasswordReset       = "Réinitialisation de votre mot de passe"
	subjectTeamInviteFmt       = "Vous êtes invité à rejoindre %s"
	subjectStatusChangedFmt    = "Intervention %s : %s"
	subjectQuoteReceivedFmt    = "Nouveau devis %s pour l'intervention %s"
	subjectQuoteAcceptedFmt    = "Devis %s accepté"
	subjectQuoteRejectedFmt    = "Devis %s refusé"
	subjectSlotProposedFmt     = "Nouveau créneau proposé pour l'intervention %s"
	subjectSlotConfirmedFmt    = "Créneau confirmé pour l'intervention %s"
	subjectSlotReminderFmt     = "Rappel : intervention %s demain"
)
