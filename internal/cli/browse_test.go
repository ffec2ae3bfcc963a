package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eepp/lttngpack/pkg/distro"
)

func testBrowseDistros() []distro.Distro {
	return []distro.Distro{
		{Name: "Debian", Releases: []distro.Release{
			{Version: "12", Packages: []distro.Package{{Name: "lttng-tools", Version: "2.13.9"}}},
		}},
		{Name: "Fedora", Releases: []distro.Release{
			{Version: "40", Packages: []distro.Package{{Name: "lttng-tools", Version: "2.13.11"}}},
		}},
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestBrowseModelNavigation(t *testing.T) {
	m := newBrowseModel(testBrowseDistros())

	updated, _ := m.Update(keyMsg("j"))
	m = updated.(browseModel)
	if m.cursor != 1 {
		t.Errorf("cursor = %d after down, want 1", m.cursor)
	}

	// Cursor stays in range at the bottom.
	updated, _ = m.Update(keyMsg("j"))
	m = updated.(browseModel)
	if m.cursor != 1 {
		t.Errorf("cursor = %d after down at bottom, want 1", m.cursor)
	}

	updated, _ = m.Update(keyMsg("k"))
	m = updated.(browseModel)
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up, want 0", m.cursor)
	}
}

func TestBrowseModelSelection(t *testing.T) {
	m := newBrowseModel(testBrowseDistros())

	updated, _ := m.Update(keyMsg("j"))
	m = updated.(browseModel)
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(browseModel)

	if m.selected == nil || m.selected.Name != "Fedora" {
		t.Fatalf("selected = %v, want Fedora", m.selected)
	}
	if !strings.Contains(m.View(), "2.13.11") {
		t.Error("detail view should show the release version")
	}

	// Escape returns to the list.
	updated, _ = m.Update(keyMsg("esc"))
	m = updated.(browseModel)
	if m.selected != nil {
		t.Error("esc should clear the selection")
	}
	if !strings.Contains(m.View(), "Select Distro") {
		t.Error("list view should show the title")
	}
}

func TestBrowseModelQuit(t *testing.T) {
	m := newBrowseModel(testBrowseDistros())

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should produce a QuitMsg")
	}
}
