package classify

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
)

// BuildPrompt renders the classification prompt for one report.
func BuildPrompt(text, contentType string) string {
	if contentType == "" {
		contentType = domain.DefaultContentType
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this Haiti humanitarian content from %s and extract key information.\n\n", contentType)
	b.WriteString("EVENT TYPES (choose exactly one):\n")
	for _, et := range domain.EventTypes {
		fmt.Fprintf(&b, "- %q: %s\n", et.Name, et.Description)
	}
	b.WriteString("\nLOCATION: the most specific Haitian place mentioned (neighborhood, commune, city or department). ")
	b.WriteString("If only \"Haiti\" is mentioned, infer a more precise place from context when possible.\n\n")
	b.WriteString("SEVERITY: integer 1-5. 1=minor, 2=local concern, 3=significant, 4=major crisis, 5=mass casualty emergency.\n\n")
	b.WriteString("Optionally include \"latitude\" and \"longitude\" of the location if you are confident.\n\n")
	b.WriteString(`Return ONLY a JSON object: {"event_type": "...", "location": "...", "severity": 1-5}`)
	fmt.Fprintf(&b, "\n\nTEXT: %q\n", text)
	return b.String()
}
