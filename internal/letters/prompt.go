package letters

import (
	"fmt"

	"go-ausbildung-automation/internal/models"
)

// buildPrompt embeds the job context and CV text into the German
// letter-writing instruction.
func buildPrompt(job *models.Job, cvText string) string {
	startDate := job.StartDate
	if startDate == "" || startDate == "N/A" {
		startDate = "N.N."
	}
	context := fmt.Sprintf("Ausbildungsposition: %s\nStandort: %s\nAusbildungsbeginn: %s",
		job.Title, job.Location, startDate)

	return fmt.Sprintf(
		"Ich bewerbe mich um eine Ausbildung bei %q.\n\n"+
			"Stellenausschreibung:\n%s\n\n"+
			"Stellenbeschreibung: %s\n\n"+
			"Mein Lebenslauf:\n%s\n\n"+
			"Bitte verfasse ein professionelles Bewerbungsschreiben. Anforderungen: Deutsch, 300-450 Wörter, "+
			"professioneller Ton, auf die Ausbildung und Firma zugeschnitten. Beginne mit \"Bewerbung um einen Ausbildungsplatz als...\" "+
			"und schließe mit \"Mit freundlichen Grüßen\".",
		job.Institution, context, job.Description, cvText)
}
