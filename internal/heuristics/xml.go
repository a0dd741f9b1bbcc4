package heuristics

import (
	"github.com/beevik/etree"
)

// LoadXML parses an XML file in permissive mode.
// Callers treat an error as "no data" for that file.
func LoadXML(path string) (*etree.Document, error) {
	doc := etree.NewDocument()
	restore := suppressErrors(&doc.ReadSettings)
	defer restore()

	if err := doc.ReadFromFile(path); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseXML is LoadXML for in-memory content.
func ParseXML(content []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	restore := suppressErrors(&doc.ReadSettings)
	defer restore()

	if err := doc.ReadFromBytes(content); err != nil {
		return nil, err
	}
	return doc, nil
}

// suppressErrors switches the reader to permissive mode and returns the function that
// puts the previous mode back.
func suppressErrors(settings *etree.ReadSettings) func() {
	previous := settings.Permissive
	settings.Permissive = true
	return func() {
		settings.Permissive = previous
	}
}
