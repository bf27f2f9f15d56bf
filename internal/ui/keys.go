package ui

import (
	"strings"

	"github.com/TimelordUK/mconsole/internal/config"
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit         key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Top          key.Binding
	Bottom       key.Binding
	Include      key.Binding
	Exclude      key.Binding
	Nodes        key.Binding
	ToggleRegexp key.Binding
	ToggleTime   key.Binding
	ToggleAbs    key.Binding
	Follow       key.Binding
	Save         key.Binding
	Detail       key.Binding
	Goto         key.Binding
	Levels       key.Binding
}

func binding(keys []string, desc string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(strings.Join(keys, "/"), desc),
	)
}

func newKeyMap(cfg *config.KeybindingConfig) keyMap {
	return keyMap{
		Quit:         binding(cfg.Quit, "quit"),
		ScrollUp:     binding(cfg.ScrollUp, "up"),
		ScrollDown:   binding(cfg.ScrollDown, "down"),
		PageUp:       binding(cfg.PageUp, "page up"),
		PageDown:     binding(cfg.PageDown, "page down"),
		Top:          binding(cfg.Top, "top"),
		Bottom:       binding(cfg.Bottom, "bottom"),
		Include:      binding(cfg.Include, "include"),
		Exclude:      binding(cfg.Exclude, "exclude"),
		Nodes:        binding(cfg.Nodes, "nodes"),
		ToggleRegexp: binding(cfg.ToggleRegexp, "regexp"),
		ToggleTime:   binding(cfg.ToggleTime, "time"),
		ToggleAbs:    binding(cfg.ToggleAbs, "abs time"),
		Follow:       binding(cfg.Follow, "follow"),
		Save:         binding(cfg.Save, "save"),
		Detail:       binding(cfg.Detail, "detail"),
		Goto:         binding(cfg.Goto, "goto"),
		Levels:       binding(cfg.Levels, "levels"),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Levels, k.Include, k.Exclude, k.Nodes, k.ToggleRegexp, k.Follow, k.Save, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown, k.Top, k.Bottom, k.Goto},
		{k.Levels, k.Include, k.Exclude, k.Nodes, k.ToggleRegexp},
		{k.ToggleTime, k.ToggleAbs, k.Follow, k.Detail, k.Save, k.Quit},
	}
}
