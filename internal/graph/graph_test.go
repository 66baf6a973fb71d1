package graph

import (
	"strings"
	"testing"

	"github.com/fanflow-app/fanflow/internal/models"
)

func TestForLocale(t *testing.T) {
	en := ForLocale(LocaleEnglish)
	if en == nil || en.Locale() != LocaleEnglish {
		t.Fatalf("expected english graph, got %v", en)
	}
	tr := ForLocale(LocaleTurkish)
	if tr == nil || tr.Locale() != LocaleTurkish {
		t.Fatalf("expected turkish graph, got %v", tr)
	}
	// Unknown locales fall back to the default instead of failing.
	fallback := ForLocale("de")
	if fallback.Locale() != DefaultLocale {
		t.Errorf("expected fallback to %s, got %s", DefaultLocale, fallback.Locale())
	}
}

func TestGetUnknownNode(t *testing.T) {
	g := ForLocale(LocaleEnglish)
	if _, ok := g.Get("no-such-node"); ok {
		t.Error("expected ok=false for unknown node id")
	}
}

func TestLocaleParity(t *testing.T) {
	if err := CheckParity(ForLocale(LocaleEnglish), ForLocale(LocaleTurkish)); err != nil {
		t.Fatalf("locale graphs out of sync: %v", err)
	}
}

func TestNodeKindsCarryExpectedShape(t *testing.T) {
	g := ForLocale(LocaleEnglish)
	for _, id := range []string{NodeWelcome, NodeTerms, NodeAskName, NodeNameInput, NodeMainMenu, NodeTeamSelect, NodeClipInput} {
		node, ok := g.Get(id)
		if !ok {
			t.Fatalf("missing node %s", id)
		}
		switch node.Kind {
		case models.NodeChoice:
			if len(node.Options) == 0 {
				t.Errorf("choice node %s has no options", id)
			}
		case models.NodeInput:
			if node.Input == nil {
				t.Errorf("input node %s has no input spec", id)
			}
		case models.NodeStatement:
			if len(node.Options) > 0 || node.Input != nil {
				t.Errorf("statement node %s carries interaction", id)
			}
		}
	}
}

func TestTeamSelectControlOptions(t *testing.T) {
	g := ForLocale(LocaleEnglish)
	node, ok := g.Get(NodeTeamSelect)
	if !ok {
		t.Fatal("team-select node missing")
	}

	toggles := 0
	haveConfirm := false
	for _, opt := range node.Options {
		if strings.HasPrefix(opt.ID, TogglePrefix) {
			toggles++
			if opt.NextNodeID != "" {
				t.Errorf("toggle option %s must not carry a graph transition", opt.ID)
			}
		}
		if opt.ID == OptConfirmTeams {
			haveConfirm = true
		}
	}
	if toggles != len(g.Teams()) {
		t.Errorf("expected %d toggle options, got %d", len(g.Teams()), toggles)
	}
	if !haveConfirm {
		t.Error("team-select is missing the confirm control option")
	}
}

func TestStringsForError(t *testing.T) {
	s := ForLocale(LocaleEnglish).Strings()
	tests := []struct {
		err  error
		want string
	}{
		{models.ErrInvalidEmail, s.ErrInvalidEmail},
		{models.ErrInvalidID, s.ErrInvalidID},
		{models.ErrInvalidPhone, s.ErrInvalidPhone},
		{models.ErrInvalidHandle, s.ErrInvalidHandle},
		{models.ErrHandleTooShort, s.ErrTooShort},
		{models.ErrInvalidLink, s.ErrInvalidLink},
		{models.ErrNothingSelected, s.ErrSelectTeam},
		{models.ErrProfileNotFound, s.GenericError},
	}
	for _, tt := range tests {
		if got := s.ForError(tt.err); got != tt.want {
			t.Errorf("ForError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
