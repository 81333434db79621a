package prompts

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"text/template"
)

//go:embed templates/common/*.tmpl templates/planner/*.tmpl templates/clarifier/*.tmpl templates/coder/*.tmpl
var templateFS embed.FS

type registry struct {
	templates map[PromptID]*template.Template
	sources   map[PromptID]string
}

// Templates are embedded, so a load failure is a build defect.
//
//nolint:gochecknoglobals // loaded once from the embedded filesystem
var globalRegistry = mustLoad()

func funcMap() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
	}
}

func mustLoad() *registry {
	r, err := load(templateFS)
	if err != nil {
		panic(fmt.Sprintf("failed to load embedded prompts: %v", err))
	}
	return r
}

// load parses common templates first so every prompt can include them.
func load(fsys fs.FS) (*registry, error) {
	r := &registry{
		templates: make(map[PromptID]*template.Template),
		sources:   make(map[PromptID]string),
	}

	common := template.New("common").Funcs(funcMap())
	commonFiles, err := fs.Glob(fsys, "templates/common/*.tmpl")
	if err != nil {
		return nil, err
	}
	for _, file := range commonFiles {
		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("reading common template %s: %w", file, err)
		}
		if _, err := common.Parse(string(content)); err != nil {
			return nil, fmt.Errorf("parsing common template %s: %w", file, err)
		}
	}

	err = fs.WalkDir(fsys, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".tmpl") || strings.HasPrefix(p, "templates/common/") {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", p, err)
		}

		id := PromptID(strings.TrimSuffix(strings.TrimPrefix(p, "templates/"), path.Ext(p)))
		tmpl, err := common.Clone()
		if err != nil {
			return err
		}
		if _, err := tmpl.New(string(id)).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing template %s: %w", p, err)
		}

		r.templates[id] = tmpl.Lookup(string(id))
		r.sources[id] = string(content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *registry) get(id PromptID) (*template.Template, error) {
	tmpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return tmpl, nil
}

func (r *registry) list() []PromptID {
	ids := make([]PromptID, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
