package api

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
)

// layoutFiles are parsed once and cloned under every page.
var layoutFiles = []string{"base.html", "registration_hints.html"}

// templateSet holds one layout clone per page and a single tree with every
// partial, so a partial is executed by its define name.
type templateSet struct {
	pages    map[string]*template.Template
	partials *template.Template
}

func loadTemplateSet(templateDir string, funcMap template.FuncMap, pages []string, partials []string) (*templateSet, error) {
	layoutPaths := make([]string, 0, len(layoutFiles))
	for _, file := range layoutFiles {
		layoutPaths = append(layoutPaths, filepath.Join(templateDir, file))
	}
	layout, err := template.New("base").Funcs(funcMap).ParseFiles(layoutPaths...)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	set := &templateSet{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		clone, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", page, err)
		}
		if _, err := clone.ParseFiles(filepath.Join(templateDir, page+".html")); err != nil {
			return nil, fmt.Errorf("parse page template %s: %w", page, err)
		}
		set.pages[page] = clone
	}

	set.partials = template.New("partials").Funcs(funcMap)
	for _, partial := range partials {
		if _, err := set.partials.ParseFiles(filepath.Join(templateDir, partial)); err != nil {
			return nil, fmt.Errorf("parse partial %s: %w", partial, err)
		}
	}
	return set, nil
}

func (set *templateSet) renderPage(page string, data any) ([]byte, error) {
	tmpl, ok := set.pages[page]
	if !ok {
		return nil, fmt.Errorf("page template %s not loaded", page)
	}
	var output bytes.Buffer
	if err := tmpl.ExecuteTemplate(&output, "base", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", page, err)
	}
	return output.Bytes(), nil
}

func (set *templateSet) renderPartial(name string, data any) ([]byte, error) {
	if set.partials.Lookup(name) == nil {
		return nil, fmt.Errorf("partial %s not loaded", name)
	}
	var output bytes.Buffer
	if err := set.partials.ExecuteTemplate(&output, name, data); err != nil {
		return nil, fmt.Errorf("render partial %s: %w", name, err)
	}
	return output.Bytes(), nil
}
