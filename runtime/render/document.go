package render

import "strings"

// DefaultRootID the id of the element the component is mounted on
const DefaultRootID = "rootComponent"

// Render the document: head, title, metadata, styles, the rendered html in the
// root element, the scripts and the bootstrap script
func (doc Document) Render(name string, input string, html string) string {
	rootID := doc.RootID
	if rootID == "" {
		rootID = DefaultRootID
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	if doc.Title != "" {
		sb.WriteString("<title>" + doc.Title + "</title>\n")
	}
	for _, meta := range doc.Metadata {
		sb.WriteString(meta + "\n")
	}
	for _, style := range doc.Styles {
		sb.WriteString(style + "\n")
	}
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(`<div id="` + rootID + `">` + html + "</div>\n")
	for _, script := range doc.Scripts {
		sb.WriteString(script + "\n")
	}
	sb.WriteString("<script>" + Bootstrap(name, input, rootID) + "</script>\n")
	sb.WriteString("</body>\n</html>")
	return sb.String()
}
