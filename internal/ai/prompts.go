// internal/ai/prompts.go
package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

func buildSummaryPrompt(stageName string, payload interface{}) string {
	data, _ := json.Marshal(payload)
	return fmt.Sprintf(`You are MARVETTI.AI Operational Assistant.
Generate a professional HTML status report for a South African business client.
Stage: %s
Submission Data: %s

Format Rules:
- Use Tailwind CSS classes.
- Style: High-tech, clean, minimalist.
- Section 1: Overview of submitted data.
- Section 2: Compliance Checklist (UIF, Banking, CIPC).
- Section 3: Next Actions (Pointing to Stage 2: Logo Design).
- Tone: Reassuring and professional.
- Use ZAR (R) currency symbols.`, stageName, data)
}

func buildDraftPrompt(stageName, clientName string) string {
	return fmt.Sprintf(`Draft a concise WhatsApp message from MARVETTI.AI to %s.
They just completed %s.
Inform them:
1. Data received and being processed by the team.
2. They can now proceed to Stage 2 (Logo Creation) in their dashboard.
3. Include a support number link.
Keep it friendly, South African vibe, but professional.`, clientName, stageName)
}

func buildLogoPrompt(businessName, niche, instructions string) string {
	if businessName == "" {
		businessName = "New Venture"
	}
	if niche == "" {
		niche = "Business"
	}

	refinement := "Iconic mark + wordmark balance."
	if strings.TrimSpace(instructions) != "" {
		refinement = fmt.Sprintf("Specific Client Refinement Request: %s", instructions)
	}

	return fmt.Sprintf(`A professional, high-end, minimalist business logo for a company named '%s' in the %s industry.
Colors: South African Red (#EC1B23) and Deep Navy (#020617).
Style: Modern vector graphic, clean, no shadows, professional typography.
%s
Place on a solid minimalist background.`, businessName, niche, refinement)
}
