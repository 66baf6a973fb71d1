package graph

import "github.com/fanflow-app/fanflow/internal/models"

// HelpURL is the external help center link opened from the main menu.
const HelpURL = "https://fanflow.app/help"

// englishTeams is the authored team list. IDs are shared across locales;
// only display names may differ.
var englishTeams = []Team{
	{ID: "gs", Name: "Galatasaray"},
	{ID: "fb", Name: "Fenerbahçe"},
	{ID: "bjk", Name: "Beşiktaş"},
	{ID: "ts", Name: "Trabzonspor"},
	{ID: "nat", Name: "National Team"},
}

func buildEnglish() *Graph {
	text := Strings{
		ErrInvalidEmail:  "That doesn't look like a valid e-mail address. Mind trying again?",
		ErrInvalidID:     "The national id must be exactly 11 digits.",
		ErrInvalidPhone:  "The number must be digits only, 10 to 15 of them.",
		ErrInvalidHandle: "The handle must start with @.",
		ErrTooShort:      "That looks too short — give me at least 2 characters.",
		ErrInvalidLink:   "The link must start with http:// or https://.",
		ErrSelectTeam:    "Pick at least one team first.",

		SelectedSuffix:  " ✓",
		DefaultName:     "fan",
		NoClips:         "You haven't submitted any clips yet.",
		CooldownMessage: "Easy there! You did this just a moment ago — please try again a bit later. ⏳",
		GenericError:    "Something went wrong on my end. Please try again later.",
		NotProvided:     "not provided",
		RestartConfirm:  "That part of our chat is finished. Want to start over from the top?",
	}

	nodes := []models.MessageNode{
		{
			ID:     NodeWelcome,
			Text:   "Hey! I'm Vola, your matchday assistant. 👋",
			Sender: models.SenderAssistant,
			Kind:   models.NodeStatement,
			Next:   NodeTerms,
		},
		{
			ID:     NodeTerms,
			Text:   "Before we get going I need you to accept the terms of use and the privacy notice. Shall we?",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: "terms-accept", Label: "I accept ✅", NextNodeID: NodeAskName},
				{ID: "terms-decline", Label: "Not now", NextNodeID: NodeTermsDeclined},
			},
		},
		{
			ID:     NodeTermsDeclined,
			Text:   "No worries — I can't set things up without that, but come back any time.",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: OptRestart, Label: "Start over"},
			},
		},
		{
			ID:     NodeAskName,
			Text:   "Great! What should I call you?{{error}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: "name-keep", Label: "Call me {{displayName}}", NextNodeID: NodeAskEmail},
				{ID: "name-new", Label: "Let me type it", NextNodeID: NodeNameInput},
			},
		},
		{
			ID:     NodeNameInput,
			Text:   "Type the name you'd like me to use.{{error}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeInput,
			Input:  &models.InputSpec{Label: "Your name", ActionID: models.ActionSetName, Mode: models.InputModeText},
		},
		{
			ID:     NodeAskEmail,
			Text:   "Thanks {{displayName}}! Which e-mail should I use for updates?{{error}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: "email-keep", Label: "Keep {{emailDisplay}}", NextNodeID: NodeAskNationalID},
				{ID: "email-new", Label: "Use a different one", NextNodeID: NodeEmailInput},
				{ID: OptRevealEmail, Label: "Show / hide full address"},
			},
		},
		{
			ID:     NodeEmailInput,
			Text:   "Type the e-mail address you'd like to use.{{error}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeInput,
			Input:  &models.InputSpec{Label: "Your e-mail", ActionID: models.ActionSetEmail, Mode: models.InputModeEmail},
		},
		{
			ID:     NodeAskNationalID,
			Text:   "For prize draws I also need your national id. Want to add it now? You can always skip this.",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: "id-provide", Label: "Sure, let's add it", NextNodeID: NodeIDInput},
				{ID: "id-decline", Label: "Skip for now", NextNodeID: NodeSummary},
			},
		},
		{
			ID:     NodeIDInput,
			Text:   "Type your 11-digit national id.{{error}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeInput,
			Input:  &models.InputSpec{Label: "National id", ActionID: models.ActionSetNationalID, Mode: models.InputModeNumeric},
		},
		{
			ID:     NodeSummary,
			Text:   "Here's what I have:\n• Name: {{displayName}}\n• E-mail: {{emailDisplay}}\n• National id: {{idDisplay}}\nShall I save it?",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: OptSummaryConfirm, Label: "Save it ✅"},
				{ID: OptRevealID, Label: "Show / hide id"},
				{ID: OptRestart, Label: "Start over"},
			},
		},
		{
			ID:     NodeMainMenu,
			Text:   "What would you like to do, {{displayName}}?",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: "menu-live", Label: "Live match notifications 🔔", NextNodeID: NodeChannelSelect},
				{ID: "menu-clip", Label: "Submit a fan clip 🎬", NextNodeID: NodeClipInput},
				{ID: OptMyClips, Label: "My clips"},
				{ID: "menu-contact", Label: "Change notification channel", NextNodeID: NodeChannelSelect},
				{ID: OpenPrefix + HelpURL, Label: "Help center"},
				{ID: OptRestart, Label: "Start over"},
			},
		},
		{
			ID:     NodeChannelSelect,
			Text:   "Where should I send your match alerts?",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: ChannelPrefix + "sms", Label: "SMS 📱", NextNodeID: NodeContactInput},
				{ID: ChannelPrefix + "whatsapp", Label: "WhatsApp", NextNodeID: NodeContactInput},
				{ID: ChannelPrefix + "telegram", Label: "Telegram", NextNodeID: NodeContactInput},
				{ID: ChannelPrefix + "discord", Label: "Discord", NextNodeID: NodeContactInput},
				{ID: ChannelPrefix + "email", Label: "E-mail ✉️", NextNodeID: NodeContactInput},
				{ID: "back", Label: "Back", NextNodeID: NodeMainMenu},
			},
		},
		{
			ID:     NodeContactInput,
			Text:   "Good choice — {{channelName}} it is. Where can I reach you there?{{error}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeInput,
			Input:  &models.InputSpec{Label: "Your contact", ActionID: models.ActionSetContact, Mode: models.InputModeText},
		},
		{
			ID:          NodeTeamSelect,
			Text:        "Pick the teams you want alerts for.{{error}}\nSelected: {{selectedTeams}}",
			Sender:      models.SenderAssistant,
			Kind:        models.NodeChoice,
			Options:     teamSelectOptions(englishTeams, "Confirm ✅", "Back"),
			DefaultData: map[string]string{"selectedTeams": "—"},
		},
		{
			ID:     NodeNotifySaved,
			Text:   "Done! I'll ping you on {{channelName}} for: {{selectedTeams}} 🎉",
			Sender: models.SenderAssistant,
			Kind:   models.NodeStatement,
			Next:   NodeMainMenu,
		},
		{
			ID:     NodeClipInput,
			Text:   "Drop the link to your clip — YouTube, X, anywhere.{{error}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeInput,
			Input:  &models.InputSpec{Label: "Clip link", ActionID: models.ActionSubmitClip, Mode: models.InputModeURL},
		},
		{
			ID:     NodeClipSaved,
			Text:   "Your clip is in! The editors will take a look. 🙌",
			Sender: models.SenderAssistant,
			Kind:   models.NodeStatement,
			Next:   NodeMainMenu,
		},
		{
			ID:     NodeMyClips,
			Text:   "Your clips so far:\n{{clipList}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeStatement,
			Next:   NodeMainMenu,
		},
		{
			ID:     NodeCooldownNotice,
			Text:   "{{cooldownMessage}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeStatement,
			Next:   NodeMainMenu,
		},
		{
			ID:     NodeErrorNotice,
			Text:   "Something went wrong on my end. Let's head back to the menu — please try again later.",
			Sender: models.SenderAssistant,
			Kind:   models.NodeStatement,
			Next:   NodeMainMenu,
		},
	}

	return newGraph(LocaleEnglish, nodes, text, englishTeams)
}

// teamSelectOptions builds the team-select option list: one toggle option
// per team followed by the fixed confirm and back control options.
func teamSelectOptions(teams []Team, confirmLabel, backLabel string) []models.Option {
	opts := make([]models.Option, 0, len(teams)+2)
	for _, team := range teams {
		opts = append(opts, models.Option{ID: TogglePrefix + team.ID, Label: team.Name})
	}
	opts = append(opts,
		models.Option{ID: OptConfirmTeams, Label: confirmLabel},
		models.Option{ID: "back", Label: backLabel, NextNodeID: NodeChannelSelect},
	)
	return opts
}
