package graph

import "github.com/fanflow-app/fanflow/internal/models"

// turkishTeams mirrors englishTeams; ids must stay identical across locales.
var turkishTeams = []Team{
	{ID: "gs", Name: "Galatasaray"},
	{ID: "fb", Name: "Fenerbahçe"},
	{ID: "bjk", Name: "Beşiktaş"},
	{ID: "ts", Name: "Trabzonspor"},
	{ID: "nat", Name: "Millî Takım"},
}

func buildTurkish() *Graph {
	text := Strings{
		ErrInvalidEmail:  "Bu geçerli bir e-posta adresine benzemiyor. Tekrar dener misin?",
		ErrInvalidID:     "T.C. kimlik numarası tam olarak 11 haneli olmalı.",
		ErrInvalidPhone:  "Numara yalnızca rakamlardan oluşmalı, 10 ile 15 hane arasında.",
		ErrInvalidHandle: "Kullanıcı adı @ ile başlamalı.",
		ErrTooShort:      "Bu çok kısa görünüyor — en az 2 karakter gir.",
		ErrInvalidLink:   "Bağlantı http:// veya https:// ile başlamalı.",
		ErrSelectTeam:    "Önce en az bir takım seç.",

		SelectedSuffix:  " ✓",
		DefaultName:     "taraftar",
		NoClips:         "Henüz hiç klip göndermemişsin.",
		CooldownMessage: "Yavaş ol! Bunu az önce yaptın — lütfen biraz sonra tekrar dene. ⏳",
		GenericError:    "Bir şeyler ters gitti. Lütfen daha sonra tekrar dene.",
		NotProvided:     "girilmedi",
		RestartConfirm:  "Sohbetin bu bölümü tamamlandı. En baştan başlamak ister misin?",
	}

	nodes := []models.MessageNode{
		{
			ID:     NodeWelcome,
			Text:   "Selam! Ben Vola, maç günü asistanın. 👋",
			Sender: models.SenderAssistant,
			Kind:   models.NodeStatement,
			Next:   NodeTerms,
		},
		{
			ID:     NodeTerms,
			Text:   "Başlamadan önce kullanım koşullarını ve aydınlatma metnini kabul etmen gerekiyor. Başlayalım mı?",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: "terms-accept", Label: "Kabul ediyorum ✅", NextNodeID: NodeAskName},
				{ID: "terms-decline", Label: "Şimdi değil", NextNodeID: NodeTermsDeclined},
			},
		},
		{
			ID:     NodeTermsDeclined,
			Text:   "Sorun değil — bunsuz kurulumu yapamıyorum ama istediğin zaman dönebilirsin.",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: OptRestart, Label: "Baştan başla"},
			},
		},
		{
			ID:     NodeAskName,
			Text:   "Harika! Sana nasıl hitap edeyim?{{error}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: "name-keep", Label: "{{displayName}} de bana", NextNodeID: NodeAskEmail},
				{ID: "name-new", Label: "Kendim yazayım", NextNodeID: NodeNameInput},
			},
		},
		{
			ID:     NodeNameInput,
			Text:   "Kullanmamı istediğin ismi yaz.{{error}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeInput,
			Input:  &models.InputSpec{Label: "İsmin", ActionID: models.ActionSetName, Mode: models.InputModeText},
		},
		{
			ID:     NodeAskEmail,
			Text:   "Teşekkürler {{displayName}}! Güncellemeler için hangi e-postayı kullanayım?{{error}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: "email-keep", Label: "{{emailDisplay}} kalsın", NextNodeID: NodeAskNationalID},
				{ID: "email-new", Label: "Farklı bir adres", NextNodeID: NodeEmailInput},
				{ID: OptRevealEmail, Label: "Adresi göster / gizle"},
			},
		},
		{
			ID:     NodeEmailInput,
			Text:   "Kullanmak istediğin e-posta adresini yaz.{{error}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeInput,
			Input:  &models.InputSpec{Label: "E-postan", ActionID: models.ActionSetEmail, Mode: models.InputModeEmail},
		},
		{
			ID:     NodeAskNationalID,
			Text:   "Çekilişler için T.C. kimlik numaran da gerekiyor. Şimdi eklemek ister misin? Bunu her zaman atlayabilirsin.",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: "id-provide", Label: "Olur, ekleyelim", NextNodeID: NodeIDInput},
				{ID: "id-decline", Label: "Şimdilik atla", NextNodeID: NodeSummary},
			},
		},
		{
			ID:     NodeIDInput,
			Text:   "11 haneli T.C. kimlik numaranı yaz.{{error}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeInput,
			Input:  &models.InputSpec{Label: "Kimlik numarası", ActionID: models.ActionSetNationalID, Mode: models.InputModeNumeric},
		},
		{
			ID:     NodeSummary,
			Text:   "Elimdekiler şunlar:\n• İsim: {{displayName}}\n• E-posta: {{emailDisplay}}\n• Kimlik no: {{idDisplay}}\nKaydedeyim mi?",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: OptSummaryConfirm, Label: "Kaydet ✅"},
				{ID: OptRevealID, Label: "Numarayı göster / gizle"},
				{ID: OptRestart, Label: "Baştan başla"},
			},
		},
		{
			ID:     NodeMainMenu,
			Text:   "Ne yapmak istersin, {{displayName}}?",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: "menu-live", Label: "Canlı maç bildirimleri 🔔", NextNodeID: NodeChannelSelect},
				{ID: "menu-clip", Label: "Taraftar klibi gönder 🎬", NextNodeID: NodeClipInput},
				{ID: OptMyClips, Label: "Kliplerim"},
				{ID: "menu-contact", Label: "Bildirim kanalını değiştir", NextNodeID: NodeChannelSelect},
				{ID: OpenPrefix + HelpURL, Label: "Yardım merkezi"},
				{ID: OptRestart, Label: "Baştan başla"},
			},
		},
		{
			ID:     NodeChannelSelect,
			Text:   "Maç bildirimlerini nereye göndereyim?",
			Sender: models.SenderAssistant,
			Kind:   models.NodeChoice,
			Options: []models.Option{
				{ID: ChannelPrefix + "sms", Label: "SMS 📱", NextNodeID: NodeContactInput},
				{ID: ChannelPrefix + "whatsapp", Label: "WhatsApp", NextNodeID: NodeContactInput},
				{ID: ChannelPrefix + "telegram", Label: "Telegram", NextNodeID: NodeContactInput},
				{ID: ChannelPrefix + "discord", Label: "Discord", NextNodeID: NodeContactInput},
				{ID: ChannelPrefix + "email", Label: "E-posta ✉️", NextNodeID: NodeContactInput},
				{ID: "back", Label: "Geri", NextNodeID: NodeMainMenu},
			},
		},
		{
			ID:     NodeContactInput,
			Text:   "İyi seçim — {{channelName}} olsun. Sana orada nasıl ulaşırım?{{error}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeInput,
			Input:  &models.InputSpec{Label: "İletişim bilgin", ActionID: models.ActionSetContact, Mode: models.InputModeText},
		},
		{
			ID:          NodeTeamSelect,
			Text:        "Bildirim almak istediğin takımları seç.{{error}}\nSeçilenler: {{selectedTeams}}",
			Sender:      models.SenderAssistant,
			Kind:        models.NodeChoice,
			Options:     teamSelectOptions(turkishTeams, "Onayla ✅", "Geri"),
			DefaultData: map[string]string{"selectedTeams": "—"},
		},
		{
			ID:     NodeNotifySaved,
			Text:   "Tamamdır! Şu takımlar için {{channelName}} üzerinden haber vereceğim: {{selectedTeams}} 🎉",
			Sender: models.SenderAssistant,
			Kind:   models.NodeStatement,
			Next:   NodeMainMenu,
		},
		{
			ID:     NodeClipInput,
			Text:   "Klibinin bağlantısını bırak — YouTube, X, neresi olursa.{{error}}",
			Sender: models.SenderAssistant,
			Kind:   models.NodeInput,
			Input:  &models.InputSpec{Label: "Klip bağlantısı", ActionID: models.ActionSubmitClip, Mode: models.InputModeURL},
		},
		{
			ID:     NodeClipSaved,
			Text:   "Klibin bizde! Editörler en kısa sürede göz atacak. 🙌",
			Sender: models.SenderAssistant,
			Kind:   models.NodeStatement,
			Next:   NodeMainMenu,
		},
		{
			ID:     NodeMyClips,
			Text:   "Şimdiye kadarki kliplerin:\n{{clipList}}",
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
			Text:   "Bir şeyler ters gitti. Menüye dönelim — lütfen daha sonra tekrar dene.",
			Sender: models.SenderAssistant,
			Kind:   models.NodeStatement,
			Next:   NodeMainMenu,
		},
	}

	return newGraph(LocaleTurkish, nodes, text, turkishTeams)
}
