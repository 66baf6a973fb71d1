// Package graph supplies the immutable message graphs driving the
// assistant conversation. A graph is a process-wide table mapping node ids
// to authored MessageNode definitions, loaded once per locale. Localized
// graphs are structurally identical (same ids, options and transition
// targets) so the dialog controller stays locale-independent.
package graph

import (
	"fmt"
	"log/slog"

	"github.com/fanflow-app/fanflow/internal/models"
)

// Node id constants. Both locale tables author exactly this node set.
const (
	NodeWelcome        = "welcome"
	NodeTerms          = "terms"
	NodeTermsDeclined  = "terms-declined"
	NodeAskName        = "ask-name"
	NodeNameInput      = "name-input"
	NodeAskEmail       = "ask-email"
	NodeEmailInput     = "email-input"
	NodeAskNationalID  = "ask-national-id"
	NodeIDInput        = "id-input"
	NodeSummary        = "summary"
	NodeMainMenu       = "main-menu"
	NodeChannelSelect  = "channel-select"
	NodeContactInput   = "contact-input"
	NodeTeamSelect     = "team-select"
	NodeNotifySaved    = "notify-saved"
	NodeClipInput      = "clip-input"
	NodeClipSaved      = "clip-saved"
	NodeMyClips        = "my-clips"
	NodeCooldownNotice = "cooldown-notice"
	NodeErrorNotice    = "error-notice"
)

// Control option ids and prefixes. Options carrying these ids have an
// empty NextNodeID and are resolved by the dialog controller rather than
// as graph transitions.
const (
	OptRestart        = "restart"
	OptConfirmTeams   = "confirm-teams"
	OptSummaryConfirm = "summary-confirm"
	OptRevealEmail    = "reveal-email"
	OptRevealID       = "reveal-id"
	OptMyClips        = "menu-myclips"

	// TogglePrefix marks multi-select toggle options ("toggle:<teamID>").
	TogglePrefix = "toggle:"
	// ChannelPrefix marks channel selection options ("channel:<name>").
	ChannelPrefix = "channel:"
	// OpenPrefix marks options that open an external link ("open:<url>").
	OpenPrefix = "open:"
)

// Supported locales.
const (
	LocaleEnglish = "en"
	LocaleTurkish = "tr"

	// DefaultLocale is used when a session requests an unknown locale.
	DefaultLocale = LocaleEnglish
)

// Team is one selectable team in the live-notification flow.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Strings holds the localized copy the controller needs outside node
// templates: inline validation errors, markers and fallback texts.
type Strings struct {
	ErrInvalidEmail  string
	ErrInvalidID     string
	ErrInvalidPhone  string
	ErrInvalidHandle string
	ErrTooShort      string
	ErrInvalidLink   string
	ErrSelectTeam    string

	SelectedSuffix  string // appended to toggled team option labels
	DefaultName     string // display name fallback for anonymous visitors
	NoClips         string
	CooldownMessage string
	GenericError    string
	NotProvided     string
	RestartConfirm  string
}

// ForError maps a validation error to its localized inline message.
// Unknown errors fall back to the generic message.
func (s Strings) ForError(err error) string {
	switch err {
	case models.ErrInvalidEmail:
		return s.ErrInvalidEmail
	case models.ErrInvalidID:
		return s.ErrInvalidID
	case models.ErrInvalidPhone:
		return s.ErrInvalidPhone
	case models.ErrInvalidHandle:
		return s.ErrInvalidHandle
	case models.ErrHandleTooShort:
		return s.ErrTooShort
	case models.ErrInvalidLink:
		return s.ErrInvalidLink
	case models.ErrNothingSelected:
		return s.ErrSelectTeam
	default:
		return s.GenericError
	}
}

// Graph is one locale's immutable node table.
type Graph struct {
	locale string
	nodes  map[string]models.MessageNode
	text   Strings
	teams  []Team
}

// Locale returns the graph's locale code.
func (g *Graph) Locale() string { return g.locale }

// Strings returns the graph's localized auxiliary copy.
func (g *Graph) Strings() Strings { return g.text }

// Teams returns the authored team list in display order.
func (g *Graph) Teams() []Team { return g.teams }

// Get returns the node for id. The second return is false when the id is
// not in the graph; callers must treat that as a no-op, never a failure.
func (g *Graph) Get(id string) (models.MessageNode, bool) {
	node, ok := g.nodes[id]
	if !ok {
		slog.Debug("Graph.Get: node not found", "locale", g.locale, "id", id)
	}
	return node, ok
}

// newGraph indexes the authored node list and verifies referential
// integrity; an authoring mistake is a programmer error and panics at
// process start rather than surfacing mid-conversation.
func newGraph(locale string, nodes []models.MessageNode, text Strings, teams []Team) *Graph {
	g := &Graph{
		locale: locale,
		nodes:  make(map[string]models.MessageNode, len(nodes)),
		text:   text,
		teams:  teams,
	}
	for _, n := range nodes {
		if _, dup := g.nodes[n.ID]; dup {
			panic(fmt.Sprintf("graph %s: duplicate node id %q", locale, n.ID))
		}
		g.nodes[n.ID] = n
	}
	if err := g.checkIntegrity(); err != nil {
		panic(fmt.Sprintf("graph %s: %v", locale, err))
	}
	return g
}

// checkIntegrity verifies that every authored transition target exists.
func (g *Graph) checkIntegrity() error {
	for id, n := range g.nodes {
		if n.Next != "" {
			if _, ok := g.nodes[n.Next]; !ok {
				return fmt.Errorf("node %q chains to unknown node %q", id, n.Next)
			}
		}
		for _, opt := range n.Options {
			if opt.NextNodeID == "" {
				continue
			}
			if _, ok := g.nodes[opt.NextNodeID]; !ok {
				return fmt.Errorf("node %q option %q targets unknown node %q", id, opt.ID, opt.NextNodeID)
			}
		}
	}
	return nil
}

var registry = make(map[string]*Graph)

// register adds a locale graph to the process-wide registry.
func register(g *Graph) {
	registry[g.locale] = g
}

// ForLocale returns the graph for the requested locale, falling back to
// the default locale for unknown codes.
func ForLocale(locale string) *Graph {
	if g, ok := registry[locale]; ok {
		return g
	}
	slog.Debug("Graph.ForLocale: unknown locale, using default", "locale", locale, "default", DefaultLocale)
	return registry[DefaultLocale]
}

// Locales returns the registered locale codes.
func Locales() []string {
	out := make([]string, 0, len(registry))
	for code := range registry {
		out = append(out, code)
	}
	return out
}

// CheckParity verifies that two locale graphs are structurally identical:
// same node ids, kinds, chain targets, option ids with matching targets,
// and matching input actions. Only display text may differ.
func CheckParity(a, b *Graph) error {
	if len(a.nodes) != len(b.nodes) {
		return fmt.Errorf("node count mismatch: %s has %d, %s has %d", a.locale, len(a.nodes), b.locale, len(b.nodes))
	}
	for id, na := range a.nodes {
		nb, ok := b.nodes[id]
		if !ok {
			return fmt.Errorf("node %q missing in %s", id, b.locale)
		}
		if na.Kind != nb.Kind {
			return fmt.Errorf("node %q kind mismatch: %s vs %s", id, na.Kind, nb.Kind)
		}
		if na.Next != nb.Next {
			return fmt.Errorf("node %q chain target mismatch: %q vs %q", id, na.Next, nb.Next)
		}
		if len(na.Options) != len(nb.Options) {
			return fmt.Errorf("node %q option count mismatch", id)
		}
		for i := range na.Options {
			oa, ob := na.Options[i], nb.Options[i]
			if oa.ID != ob.ID || oa.NextNodeID != ob.NextNodeID {
				return fmt.Errorf("node %q option %d mismatch: %s/%s vs %s/%s", id, i, oa.ID, oa.NextNodeID, ob.ID, ob.NextNodeID)
			}
		}
		if (na.Input == nil) != (nb.Input == nil) {
			return fmt.Errorf("node %q input spec presence mismatch", id)
		}
		if na.Input != nil && na.Input.ActionID != nb.Input.ActionID {
			return fmt.Errorf("node %q input action mismatch: %s vs %s", id, na.Input.ActionID, nb.Input.ActionID)
		}
	}
	if len(a.teams) != len(b.teams) {
		return fmt.Errorf("team count mismatch between %s and %s", a.locale, b.locale)
	}
	for i := range a.teams {
		if a.teams[i].ID != b.teams[i].ID {
			return fmt.Errorf("team %d id mismatch: %s vs %s", i, a.teams[i].ID, b.teams[i].ID)
		}
	}
	return nil
}

func init() {
	register(buildEnglish())
	register(buildTurkish())
	if err := CheckParity(registry[LocaleEnglish], registry[LocaleTurkish]); err != nil {
		panic(fmt.Sprintf("locale graphs out of sync: %v", err))
	}
}
