package reliefweb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
)

const (
	siteURL         = "https://reliefweb.int"
	disastersSource = "ReliefWeb Disasters"
)

// ReliefWeb API response types.

type response struct {
	Data []json.RawMessage `json:"data"`
}

type item struct {
	ID     json.RawMessage `json:"id"`
	Href   string          `json:"href"`
	Fields fields          `json:"fields"`
}

type fields struct {
	Title       string      `json:"title"`
	Body        string      `json:"body"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	URLAlias    string      `json:"url_alias"`
	URL         string      `json:"url"`
	Date        dates       `json:"date"`
	Source      sourceNames `json:"source"`
}

type dates struct {
	Created  string `json:"created"`
	Original string `json:"original"`
}

// sourceNames accepts ReliefWeb's source field as either a list of
// {"name": ...} objects or a single object.
type sourceNames []string

func (s *sourceNames) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	type named struct {
		Name string `json:"name"`
	}
	switch data[0] {
	case '[':
		var list []named
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		for _, n := range list {
			if n.Name != "" {
				*s = append(*s, n.Name)
			}
		}
	case '{':
		var one named
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		if one.Name != "" {
			*s = append(*s, one.Name)
		}
	}
	return nil
}

func decodeItem(raw json.RawMessage, contentType string) (domain.RawDocument, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.RawDocument{}, fmt.Errorf("entry is not an object: %.40s", trimmed)
	}
	var it item
	if err := json.Unmarshal(trimmed, &it); err != nil {
		return domain.RawDocument{}, fmt.Errorf("decode entry: %w", err)
	}
	return extractDocument(it, contentType), nil
}

// extractDocument flattens an API item into a RawDocument.
func extractDocument(it item, contentType string) domain.RawDocument {
	f := it.Fields
	doc := domain.RawDocument{
		ContentType: contentType,
		URL:         documentURL(it),
	}

	if contentType == "disasters" {
		doc.Title = f.Name
		doc.Body = f.Description
		doc.CreatedDate = f.Date.Created
		doc.SourceName = disastersSource
		return doc
	}

	doc.Title = f.Title
	doc.Body = f.Body
	doc.CreatedDate = f.Date.Original
	if doc.CreatedDate == "" {
		doc.CreatedDate = f.Date.Created
	}
	doc.SourceName = domain.ContentTypeLabel(contentType)
	if len(f.Source) > 0 {
		doc.SourceName = f.Source[0]
	}
	return doc
}

func documentURL(it item) string {
	switch {
	case it.Fields.URLAlias != "":
		if strings.HasPrefix(it.Fields.URLAlias, "http") {
			return it.Fields.URLAlias
		}
		return siteURL + it.Fields.URLAlias
	case it.Fields.URL != "":
		return it.Fields.URL
	default:
		return it.Href
	}
}
