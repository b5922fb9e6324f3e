// Package inspect reads generated xlsx and docx packages back into plain
// structures: charts with their point-level styling, print areas, paragraphs,
// tables and page geometry.
package inspect

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}

func readElementText(decoder *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return sb.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return sb.String(), nil
}

// walkElement visits the subtree of the element whose start tag was just
// read. onStart receives each start element with the local names of its
// ancestors below the root; onText receives character data with the path of
// the enclosing element.
func walkElement(decoder *xml.Decoder, onStart func(path []string, se xml.StartElement), onText func(path []string, text string)) {
	var stack []string
	for {
		token, err := decoder.Token()
		if err != nil {
			return
		}
		switch t := token.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			if onStart != nil {
				onStart(stack, t)
			}
		case xml.CharData:
			if onText != nil && len(stack) > 0 {
				onText(stack, string(t))
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return
			}
			stack = stack[:len(stack)-1]
		}
	}
}

// pathIs reports whether path equals the given names.
func pathIs(path []string, names ...string) bool {
	if len(path) != len(names) {
		return false
	}
	for i := range names {
		if path[i] != names[i] {
			return false
		}
	}
	return true
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func attrInt(se xml.StartElement, local string) int {
	v, _ := strconv.Atoi(attr(se, local))
	return v
}

// onOff reads an OOXML boolean element: absent val means true.
func onOff(se xml.StartElement) bool {
	switch attr(se, "val") {
	case "", "1", "true", "on":
		return true
	}
	return false
}

// resolveRelativePath resolves a relationship target against the directory
// of the part that owns the relationship.
func resolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(baseDir, target))
}

// relsPathFor returns the relationships part of a package part.
func relsPathFor(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

// relationship is one entry of a .rels part.
type relationship struct {
	id, typ, target string
}

func parseRelationships(data []byte) []relationship {
	var result []relationship
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			result = append(result, relationship{
				id:     attr(se, "Id"),
				typ:    attr(se, "Type"),
				target: attr(se, "Target"),
			})
		}
	}
	return result
}

// partRelationships reads the relationships of part and resolves their
// targets to package paths, keyed by relationship id.
func partRelationships(r *zip.Reader, part, kind string) (map[string]string, error) {
	data, err := readZipFile(r, relsPathFor(part))
	if err != nil {
		return nil, fmt.Errorf("failed to read relationships of %s: %w", part, err)
	}
	result := make(map[string]string)
	base := path.Dir(part)
	for _, rel := range parseRelationships(data) {
		if kind != "" && !strings.HasSuffix(rel.typ, "/"+kind) {
			continue
		}
		result[rel.id] = resolveRelativePath(rel.target, base)
	}
	return result, nil
}

// parseWorkbookSheets returns rId -> sheet name from xl/workbook.xml.
func parseWorkbookSheets(data []byte) map[string]string {
	result := make(map[string]string)
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "sheet" {
			name, rID := attr(se, "name"), attr(se, "id")
			if name != "" && rID != "" {
				result[rID] = name
			}
		}
	}

	return result
}

// sheetParts maps sheet names to worksheet part paths.
func sheetParts(r *zip.Reader) (map[string]string, error) {
	result := make(map[string]string)
	workbookXML, err := readZipFile(r, "xl/workbook.xml")
	if err != nil {
		return nil, err
	}
	if workbookXML == nil {
		return nil, fmt.Errorf("xl/workbook.xml not found")
	}
	sheets := parseWorkbookSheets(workbookXML)
	rels, err := partRelationships(r, "xl/workbook.xml", "worksheet")
	if err != nil {
		return nil, err
	}
	for rID, name := range sheets {
		if p, ok := rels[rID]; ok {
			result[name] = p
		}
	}
	return result, nil
}
