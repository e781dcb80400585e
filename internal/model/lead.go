package model

import "strings"

// Lead is a person or firm waiting for supporting evidence links.
// LeadID and EvidenceID together scope one evidence slot.
type Lead struct {
	LeadID     string `json:"lead_id"`
	EvidenceID string `json:"evidence_id"`
	Name       string `json:"lead_name"`
	Firm       string `json:"lead_firm,omitempty"`
	City       string `json:"lead_city,omitempty"`
}

// Normalized returns a copy with surrounding whitespace trimmed from every field.
func (l Lead) Normalized() Lead {
	return Lead{
		LeadID:     strings.TrimSpace(l.LeadID),
		EvidenceID: strings.TrimSpace(l.EvidenceID),
		Name:       strings.TrimSpace(l.Name),
		Firm:       strings.TrimSpace(l.Firm),
		City:       strings.TrimSpace(l.City),
	}
}
