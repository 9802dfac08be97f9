package boardedit

// PreviewWidget synthesizes a persisted-shape widget from an unsaved draft so
// the page can render a live preview while editing. Pending creates get a
// negative placeholder id derived from their position; placeholder ids are
// never sent to the backend and must not survive a save.
func PreviewWidget(reg *TypeRegistry, d Draft, index int) Widget {
	id := d.ID
	if id == 0 {
		id = -int64(index + 1)
	}
	handler, _ := reg.Resolve(d.Type)
	config, ok := handler.BuildConfig(d)
	if !ok {
		config = map[string]any{}
	}
	return Widget{
		ID:      id,
		Type:    string(d.Type),
		Title:   d.Title,
		Layout:  d.Layout,
		Config:  config,
		Enabled: d.Enabled,
		Order:   index,
	}
}
