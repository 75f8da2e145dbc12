package pagexml

import (
	"strings"

	"github.com/beevik/etree"
)

const (
	// pageNamespaceStem prefixes every revision of the PAGE content
	// namespace; the trailing path segment is the schema version token.
	pageNamespaceStem = "http://schema.primaresearch.org/PAGE/gts/pagecontent/"

	xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"
)

// isPageNamespace reports whether uri is a PAGE content namespace of any
// schema version, including the canonical target.
func isPageNamespace(uri string) bool {
	return strings.HasPrefix(uri, pageNamespaceStem)
}

// isFoldedNamespace reports whether declarations of uri are removed during
// normalization. PAGE content namespaces fold into the canonical default
// namespace; XMLSchema-instance attributes (xsi:schemaLocation and friends)
// reference the source schema and are dropped outright.
func isFoldedNamespace(uri string) bool {
	return isPageNamespace(uri) || uri == xsiNamespace
}

// rewriteNamespaces normalizes the document's namespace declarations so the
// root carries exactly one: the canonical target URI.
//
// Prefixes bound to a PAGE content namespace fold into the canonical default
// namespace: their declarations are removed, and elements and attributes
// using them keep their content but lose the prefix. XMLSchema-instance
// attributes are dropped outright. Unrelated namespaces survive:
// declarations on sub-elements are left untouched, and a prefix that was
// declared on the root is re-declared on the outermost elements that use
// it, keeping the output well-formed.
func rewriteNamespaces(root *etree.Element, target string) {
	rootDecls := map[string]string{}
	for _, a := range root.Attr {
		if a.Space == "xmlns" && !isFoldedNamespace(a.Value) {
			rootDecls[a.Key] = a.Value
		}
	}

	fold(root, root, map[string]string{})

	root.CreateAttr("xmlns", target)
	redeclare(root, map[string]bool{}, rootDecls)
}

// fold rewrites one element against the prefix bindings in scope, then
// recurses. Bindings are tracked per scope, so a descendant that re-binds a
// folded prefix to an unrelated namespace keeps that declaration and every
// use under it.
func fold(el, root *etree.Element, inScope map[string]string) {
	// Bindings must be collected before any declarations are removed.
	scope := inScope
	for _, a := range el.Attr {
		if a.Space != "xmlns" {
			continue
		}
		if len(scope) == len(inScope) {
			scope = cloneBindings(inScope)
		}
		scope[a.Key] = a.Value
	}

	resolve := func(prefix string) string {
		if uri, ok := scope[prefix]; ok {
			return uri
		}
		// eScriptorium exports carry xsi:schemaLocation without always
		// declaring the prefix.
		if prefix == "xsi" {
			return xsiNamespace
		}
		return ""
	}

	attrs := el.Attr
	kept := el.Attr[:0]
	for i, a := range attrs {
		switch {
		case a.Space == "" && a.Key == "xmlns":
			// Default-namespace declaration: always dropped on the
			// root, dropped elsewhere only when it binds a folded URI.
			if el == root || isFoldedNamespace(a.Value) {
				continue
			}
		case a.Space == "xmlns":
			if el == root || isFoldedNamespace(a.Value) {
				continue
			}
		case a.Space != "":
			uri := resolve(a.Space)
			if uri == xsiNamespace {
				continue
			}
			if isPageNamespace(uri) {
				// Content-namespace attributes survive under the
				// canonical default namespace, minus the prefix. An
				// unprefixed attribute of the same name wins.
				if hasUnprefixed(kept, a.Key) || hasUnprefixed(attrs[i+1:], a.Key) {
					continue
				}
				a.Space = ""
			}
		}
		kept = append(kept, a)
	}
	el.Attr = kept

	if uri := resolve(el.Space); isFoldedNamespace(uri) {
		el.Space = ""
	}

	for _, child := range el.ChildElements() {
		fold(child, root, scope)
	}
}

// hasUnprefixed reports whether attrs contains an unprefixed attribute
// named key.
func hasUnprefixed(attrs []etree.Attr, key string) bool {
	for _, a := range attrs {
		if a.Space == "" && a.Key == key {
			return true
		}
	}
	return false
}

// cloneBindings copies a prefix-to-URI scope before a branch extends it, so
// sibling subtrees do not see each other's declarations.
func cloneBindings(scope map[string]string) map[string]string {
	clone := make(map[string]string, len(scope)+1)
	for k, v := range scope {
		clone[k] = v
	}
	return clone
}

// redeclare walks the tree tracking in-scope prefix declarations and
// restores, on the outermost user, any unrelated prefix whose declaration
// was stripped from the root.
func redeclare(el *etree.Element, inScope map[string]bool, rootDecls map[string]string) {
	scope := inScope
	for _, a := range el.Attr {
		if a.Space == "xmlns" {
			scope = cloneScope(scope, inScope)
			scope[a.Key] = true
		}
	}

	needs := func(prefix string) bool {
		return prefix != "" && prefix != "xmlns" && prefix != "xml" && !scope[prefix]
	}
	for _, prefix := range usedPrefixes(el) {
		if !needs(prefix) {
			continue
		}
		if uri, ok := rootDecls[prefix]; ok {
			el.CreateAttr("xmlns:"+prefix, uri)
			scope = cloneScope(scope, inScope)
			scope[prefix] = true
		}
	}

	for _, child := range el.ChildElements() {
		redeclare(child, scope, rootDecls)
	}
}

// usedPrefixes lists the namespace prefixes an element itself relies on:
// its own tag prefix and those of its non-declaration attributes.
func usedPrefixes(el *etree.Element) []string {
	prefixes := []string{el.Space}
	for _, a := range el.Attr {
		if a.Space != "" && a.Space != "xmlns" {
			prefixes = append(prefixes, a.Space)
		}
	}
	return prefixes
}

// cloneScope copies scope the first time a branch needs to extend it, so
// sibling subtrees do not see each other's declarations.
func cloneScope(scope, parent map[string]bool) map[string]bool {
	if len(scope) != len(parent) {
		return scope // already cloned for this element
	}
	clone := make(map[string]bool, len(scope)+1)
	for k, v := range scope {
		clone[k] = v
	}
	return clone
}
