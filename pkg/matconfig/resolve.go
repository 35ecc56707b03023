package matconfig

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var modelExtensions = []string{".gltf", ".glb"}

// normalizeName brings a file name into NFC form. Directory listings on
// macOS return decomposed names while configurations are typed composed.
func normalizeName(s string) string {
	return norm.NFC.String(s)
}

// StripModelExtension removes a trailing .gltf or .glb, ignoring case.
func StripModelExtension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range modelExtensions {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// FilenameMatches reports whether a mesh group filename pattern applies to
// fileName: the names match when they are equal with or without extension,
// or when either extension-less name contains the other. An empty pattern
// matches nothing.
func FilenameMatches(pattern, fileName string) bool {
	pattern = normalizeName(pattern)
	fileName = normalizeName(fileName)
	if pattern == "" || fileName == "" {
		return false
	}
	p := StripModelExtension(pattern)
	f := StripModelExtension(fileName)
	if p == f || pattern == fileName {
		return true
	}
	if p == "" || f == "" {
		return false
	}
	return strings.Contains(f, p) || strings.Contains(p, f)
}

// MatchingGroups returns the IDs of the groups whose filenames match
// fileName, in document order.
func (d *Document) MatchingGroups(fileName string) []string {
	var ids []string
	d.MeshGroups.Each(func(id string, g MeshGroup) {
		if groupMatches(g, fileName) {
			ids = append(ids, id)
		}
	})
	return ids
}

func groupMatches(g MeshGroup, fileName string) bool {
	for _, pattern := range g.Filenames {
		if FilenameMatches(pattern, fileName) {
			return true
		}
	}
	return false
}

// ResolveAssignments returns the mesh assignments in effect for fileName.
// It starts from the direct assignments; every matching group, in document
// order, then overwrites its meshes into the result, so a later matching
// group wins over an earlier one for the same mesh.
func (d *Document) ResolveAssignments(fileName string) *OrderedMap[MeshAssignment] {
	resolved := d.MeshAssignments.Clone()
	d.MeshGroups.Each(func(_ string, g MeshGroup) {
		if !groupMatches(g, fileName) {
			return
		}
		g.Meshes.Each(resolved.Set)
	})
	return resolved
}

// OrderedVariantNames returns every variant name referenced by assignments,
// deduplicated, in first-seen order.
func OrderedVariantNames(assignments *OrderedMap[MeshAssignment]) []string {
	seen := map[string]bool{}
	var names []string
	assignments.Each(func(_ string, a MeshAssignment) {
		for _, v := range a.Variants {
			if v.Name == "" || seen[v.Name] {
				continue
			}
			seen[v.Name] = true
			names = append(names, v.Name)
		}
	})
	return names
}
