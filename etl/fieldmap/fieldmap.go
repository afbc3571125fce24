// Package fieldmap renames the keys of raw portal rows to the
// local column names declared in etl.json5.
package fieldmap

import (
	"log/slog"
	"strings"

	"hauntops-backend/lib/configutil"
)

// Mapping holds the rename tables. JSONFields applies to API
// exports, CSVHeaders to spreadsheet exports (the portal's column
// titles are not valid identifiers).
type Mapping struct {
	JSONFields map[string]string `json:"json_field_name_mapping"`
	CSVHeaders map[string]string `json:"csv_header_name_mapping"`
}

// Load reads a mapping config file, merging <name>.local.json5
// overrides like any other config.
func Load(path string) (Mapping, error) {
	return configutil.ReadConfig[Mapping](path)
}

// MapRow renames the top level keys of a raw row and flattens the
// portal's two structured fields:
//
//   - customFieldValues, a list of {customField: {name}, value}
//     objects (or flat {name, value} objects), becomes one top
//     level key per entry, renamed through the table
//   - groups, a list of names or {name} objects or a plain string,
//     becomes a single comma separated string
//
// unmapped keys pass through under their own name. when two source
// keys map to the same target the last one wins.
func (m Mapping) MapRow(raw map[string]any) map[string]any {
	mapped := make(map[string]any, len(raw))

	for key, value := range raw {
		if local, ok := m.JSONFields[key]; ok {
			mapped[local] = value
			continue
		}

		switch key {
		case "customFieldValues":
			items, ok := value.([]any)
			if !ok {
				slog.Warn("customFieldValues is not a list, skipping", "value", value)
				continue
			}
			m.flattenCustomFields(mapped, items)
		case "groups":
			mapped["groups"] = flattenGroups(value)
		default:
			slog.Debug("unmapped field passed through", "key", key)
			mapped[key] = value
		}
	}

	return mapped
}

func (m Mapping) flattenCustomFields(mapped map[string]any, items []any) {
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			slog.Warn("malformed custom field entry, skipping", "entry", item)
			continue
		}

		var name string
		if nested, ok := obj["customField"].(map[string]any); ok {
			name, _ = nested["name"].(string)
		}
		if name == "" {
			name, _ = obj["name"].(string)
		}
		if name == "" {
			slog.Warn("custom field entry without a name, skipping", "entry", obj)
			continue
		}

		local, ok := m.JSONFields[name]
		if !ok {
			slog.Debug("unmapped custom field passed through", "name", name)
			local = name
		}
		mapped[local] = obj["value"]
	}
}

func flattenGroups(value any) string {
	switch groups := value.(type) {
	case string:
		return groups
	case []any:
		var names []string
		for _, g := range groups {
			switch group := g.(type) {
			case string:
				if group != "" {
					names = append(names, group)
				}
			case map[string]any:
				name, _ := group["name"].(string)
				if name != "" {
					names = append(names, name)
				}
			}
		}
		return strings.Join(names, ", ")
	}
	return ""
}

// MapHeader renames CSV column titles in place order, leaving
// unknown titles untouched.
func (m Mapping) MapHeader(header []string) []string {
	out := make([]string, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		if local, ok := m.CSVHeaders[col]; ok {
			out[i] = local
			continue
		}
		out[i] = col
	}
	return out
}
