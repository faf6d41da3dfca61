package adapters

import (
	"context"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"schemalens/internal/ports"
	"schemalens/internal/types"
)

// maxImportDepth stops runaway import chains.
const maxImportDepth = 32

// SchemaLoaderAdapter implements SchemaLoaderPort for LinkML YAML
// documents.  Imports are fetched relative to the importing document and
// merged; the importing document wins per name.
type SchemaLoaderAdapter struct {
	Fetcher ports.FetcherPort
}

func NewSchemaLoaderAdapter(fetcher ports.FetcherPort) SchemaLoaderAdapter {
	return SchemaLoaderAdapter{Fetcher: fetcher}
}

func (a SchemaLoaderAdapter) LoadSchema(ctx context.Context, sourceID string) (ports.SchemaAccessorPort, error) {
	schema, err := a.LoadDefinition(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	return NewSchemaViewAdapter(schema), nil
}

// LoadDefinition fetches and merges the document graph rooted at sourceID.
func (a SchemaLoaderAdapter) LoadDefinition(ctx context.Context, sourceID string) (types.SchemaDefinition, error) {
	source := strings.TrimSpace(sourceID)
	if source == "" {
		return types.SchemaDefinition{}, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"schema source is required", nil)
	}
	if a.Fetcher == nil {
		return types.SchemaDefinition{}, types.NewFailure(types.ErrorKindLoad, errbuilder.CodeInternal,
			"schema loader requires a fetcher", nil)
	}
	root, err := a.loadDocument(ctx, source)
	if err != nil {
		return types.SchemaDefinition{}, err
	}
	if len(root.Classes) == 0 && len(root.Slots) == 0 && root.Name == "" && root.ID == "" {
		return types.SchemaDefinition{}, types.NewFailure(types.ErrorKindLoad, errbuilder.CodeInvalidArgument,
			"unsupported schema format: "+source, nil)
	}

	visited := map[string]struct{}{source: {}}
	merged := root
	if err := a.mergeImports(ctx, &merged, source, root.Imports, visited, 1); err != nil {
		return types.SchemaDefinition{}, err
	}
	log.Debug().
		Str("source", source).
		Str("schema", merged.Name).
		Int("classes", len(merged.Classes)).
		Int("slots", len(merged.Slots)).
		Int("documents", len(visited)).
		Msg("schema loaded")
	return merged, nil
}

func (a SchemaLoaderAdapter) mergeImports(ctx context.Context, merged *types.SchemaDefinition, base string, imports []string, visited map[string]struct{}, depth int) error {
	if depth > maxImportDepth {
		return types.NewFailure(types.ErrorKindLoad, errbuilder.CodeInvalidArgument,
			"schema imports nested too deeply under "+base, nil)
	}
	for _, entry := range imports {
		target, ok := resolveImport(base, entry)
		if !ok {
			continue
		}
		if _, seen := visited[target]; seen {
			continue
		}
		visited[target] = struct{}{}
		doc, err := a.loadDocument(ctx, target)
		if err != nil {
			return err
		}
		mergeDefinition(merged, doc)
		if err := a.mergeImports(ctx, merged, target, doc.Imports, visited, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (a SchemaLoaderAdapter) loadDocument(ctx context.Context, source string) (types.SchemaDefinition, error) {
	data, err := a.Fetcher.Fetch(ctx, source)
	if err != nil {
		if types.KindOf(err) != types.ErrorKindNone {
			return types.SchemaDefinition{}, err
		}
		return types.SchemaDefinition{}, types.NewFailure(types.ErrorKindLoad, errbuilder.CodeInternal,
			"failed to fetch schema: "+source, err)
	}
	var doc types.SchemaDefinition
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.SchemaDefinition{}, types.NewFailure(types.ErrorKindLoad, errbuilder.CodeInvalidArgument,
			"failed to parse schema yaml: "+source, err)
	}
	return doc, nil
}

// mergeDefinition adds names from doc that merged does not define yet.
func mergeDefinition(merged *types.SchemaDefinition, doc types.SchemaDefinition) {
	if len(doc.Classes) > 0 && merged.Classes == nil {
		merged.Classes = map[string]types.ClassDefinition{}
	}
	for name, class := range doc.Classes {
		if _, ok := merged.Classes[name]; !ok {
			merged.Classes[name] = class
		}
	}
	if len(doc.Slots) > 0 && merged.Slots == nil {
		merged.Slots = map[string]types.SlotDefinition{}
	}
	for name, slot := range doc.Slots {
		if _, ok := merged.Slots[name]; !ok {
			merged.Slots[name] = slot
		}
	}
	if doc.Settings != nil && merged.Settings == nil {
		merged.Settings = map[string]types.Setting{}
	}
	for name, setting := range doc.Settings {
		if _, ok := merged.Settings[name]; !ok {
			merged.Settings[name] = setting
		}
	}
}

// resolveImport maps an import entry to a fetchable source.  Metamodel
// imports ("linkml:types") report false.
func resolveImport(base string, entry string) (string, bool) {
	entry = strings.TrimSpace(entry)
	if entry == "" || strings.HasPrefix(entry, "linkml:") {
		return "", false
	}
	if path.Ext(entry) == "" {
		entry += ".yaml"
	}
	if isRemote(entry) {
		return entry, true
	}
	if isRemote(base) {
		baseURL, err := url.Parse(base)
		if err != nil {
			return "", false
		}
		ref, err := url.Parse(entry)
		if err != nil {
			return "", false
		}
		return baseURL.ResolveReference(ref).String(), true
	}
	if strings.HasPrefix(strings.ToLower(base), "file://") {
		baseURL, err := url.Parse(base)
		if err != nil {
			return "", false
		}
		baseURL.Path = path.Join(path.Dir(baseURL.Path), entry)
		return baseURL.String(), true
	}
	if filepath.IsAbs(entry) {
		return entry, true
	}
	return filepath.Join(filepath.Dir(base), entry), true
}

var _ ports.SchemaLoaderPort = SchemaLoaderAdapter{}
