package compliance

// Guardrail is one discovery-only rule shown to users.
type Guardrail struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// Guardrails returns the rules the service enforces, in display order.
func Guardrails() []Guardrail {
	return []Guardrail{
		{Key: "discovery_only", Description: "Discovery-only workflow. No export, scraping, or bulk downloading of Google Maps/Places content."},
		{Key: "details_not_persisted", Description: "Google place details are displayed interactively and not persisted to internal storage."},
		{Key: "minimal_source_fields", Description: "Only the source place id and source Google Maps URL are stored when an RM manually creates a lead."},
		{Key: "official_contact_channels", Description: "Contact details must be copied by the RM from official company channels (website/contact page)."},
		{Key: "volume_limits", Description: "Rate limits and a hard result cap (60 per search) are enforced to prevent high-volume harvesting."},
	}
}
