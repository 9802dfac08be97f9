package boardedit

import "strings"

// Validation messages surfaced next to a draft in the editor.
const (
	msgMapNeedsPlace  = "Map widgets need at least one place."
	msgEmbedURL       = "Embed URL must be a valid web address."
	msgLinkURL        = "Link URL must be a valid web address."
	msgTitleRequired  = "Widgets need a title."
	msgLayoutRequired = "Widgets need a layout."
)

func builtinTypeHandlers() []TypeHandler {
	return []TypeHandler{
		{
			Type:   TypeEmbed,
			Name:   "Embed",
			Fields: []ScratchField{FieldEmbedURL},
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"embedUrl": map[string]any{"type": "string", "pattern": "^https?://"},
				},
			},
			Validate: func(d Draft) string {
				if _, ok := NormalizeHTTPURL(d.EmbedURL); !ok {
					return msgEmbedURL
				}
				return ""
			},
			BuildConfig: func(d Draft) (map[string]any, bool) {
				normalized, ok := NormalizeHTTPURL(d.EmbedURL)
				if !ok {
					return nil, false
				}
				return map[string]any{"embedUrl": normalized}, true
			},
			Extract: func(config map[string]any, d *Draft) {
				d.EmbedURL = stringConfigValue(config, "embedUrl")
			},
		},
		{
			Type:   TypeLink,
			Name:   "Link",
			Fields: []ScratchField{FieldLinkURL},
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{"type": "string", "pattern": "^https?://"},
				},
			},
			Validate: func(d Draft) string {
				if _, ok := NormalizeHTTPURL(d.LinkURL); !ok {
					return msgLinkURL
				}
				return ""
			},
			BuildConfig: func(d Draft) (map[string]any, bool) {
				normalized, ok := NormalizeHTTPURL(d.LinkURL)
				if !ok {
					return nil, false
				}
				return map[string]any{"url": normalized}, true
			},
			Extract: func(config map[string]any, d *Draft) {
				d.LinkURL = stringConfigValue(config, "url")
			},
		},
		{
			Type:   TypeMap,
			Name:   "Map",
			Fields: []ScratchField{FieldPlacesText},
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"places": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
			},
			Validate: func(d Draft) string {
				if len(SplitPlaces(d.PlacesText)) == 0 {
					return msgMapNeedsPlace
				}
				return ""
			},
			BuildConfig: func(d Draft) (map[string]any, bool) {
				places := SplitPlaces(d.PlacesText)
				if len(places) == 0 {
					return nil, false
				}
				values := make([]any, len(places))
				for i, place := range places {
					values[i] = place
				}
				return map[string]any{"places": values}, true
			},
			Extract: func(config map[string]any, d *Draft) {
				d.PlacesText = joinPlaces(config["places"])
			},
		},
		{Type: TypeUserSettings, Name: "User settings"},
		{Type: TypeAdminSettings, Name: "Admin settings"},
		{Type: TypeSignin, Name: "Sign in"},
		{Type: TypeSignup, Name: "Sign up"},
	}
}

// SplitPlaces turns the newline-delimited places text into a trimmed list,
// dropping empty lines.
func SplitPlaces(text string) []string {
	var places []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			places = append(places, line)
		}
	}
	return places
}

func joinPlaces(value any) string {
	list, ok := value.([]any)
	if !ok {
		return ""
	}
	lines := make([]string, 0, len(list))
	for _, entry := range list {
		if s, ok := entry.(string); ok {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

func stringConfigValue(config map[string]any, key string) string {
	if config == nil {
		return ""
	}
	if s, ok := config[key].(string); ok {
		return s
	}
	return ""
}
