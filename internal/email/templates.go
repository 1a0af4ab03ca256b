package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type verificationEmailData struct {
	baseEmailData
}

type passwordResetEmailData struct {
	baseEmailData
}

type teamInviteEmailData struct {
	baseEmailData
	TeamName string
	Role     string
}

type interventionStatusEmailData struct {
	baseEmailData
	Reference   string
	Title       string
	StatusLabel string
}

type quoteReceivedEmailData struct {
	baseEmailData
	Reference      string
	QuoteNumber    string
	TotalFormatted string
}

type quoteDecisionEmailData struct {
	baseEmailData
	QuoteNumber string
	Accepted    bool
	Reason      string
}

type slotEmailData struct {
	baseEmailData
	Reference string
	SlotDate  string
}

type slotReminderEmailData struct {
	baseEmailData
	Reference string
	Title     string
	SlotDate  string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatCurrencyEUR(cents int64) string {
	return fmt.Sprintf("%.2f €", float64(cents)/100)
}

// statusLabels maps the workflow statuses to reader-facing wording.
var statusLabels = map[string]string{
	"demande":                  "Demande reçue",
	"approuvee":                "Demande approuvée",
	"rejetee":                  "Demande rejetée",
	"demande_de_devis":         "Devis demandé",
	"planification":            "Planification en cours",
	"planifiee":                "Intervention planifiée",
	"en_cours":                 "Intervention en cours",
	"cloturee_par_prestataire": "Travaux terminés",
	"cloturee_par_locataire":   "Travaux validés par le locataire",
	"cloturee_par_gestionnaire": "Intervention clôturée",
	"annulee":                  "Intervention annulée",
}

func statusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}
