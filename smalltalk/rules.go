package smalltalk

import "strings"

// Rule pairs trigger substrings with a localized canned reply. Rules are
// evaluated in order; the first rule with any trigger contained in the
// lowercased message wins.
type Rule struct {
	Name     string
	Triggers []string
	Replies  map[Lang]string
}

func (r Rule) matches(normalized string) bool {
	for _, trigger := range r.Triggers {
		if strings.Contains(normalized, trigger) {
			return true
		}
	}
	return false
}

// Responder answers basic conversational messages before any domain gating
// or retrieval happens.
type Responder struct {
	rules []Rule
}

func NewResponder() *Responder {
	return &Responder{rules: defaultRules()}
}

// Respond returns the canned reply for the message in the given language, or
// ("", false) when no rule matches and the message should continue down the
// question pipeline.
func (r *Responder) Respond(text string, lang Lang) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return "", false
	}
	for _, rule := range r.rules {
		if !rule.matches(normalized) {
			continue
		}
		if reply, ok := rule.Replies[lang]; ok {
			return reply, true
		}
		return rule.Replies[LangUZ], true
	}
	return "", false
}

func defaultRules() []Rule {
	return []Rule{
		{
			Name:     "greeting",
			Triggers: []string{"salom", "assalomu", "hello", "hi there", "привет", "здравствуйте"},
			Replies: map[Lang]string{
				LangUZ: "Assalomu alaykum 😊 Savolingizni yozing.",
				LangRU: "Здравствуйте 😊 Задайте ваш вопрос.",
				LangEN: "Hello 😊 Ask your question.",
			},
		},
		{
			Name:     "farewell",
			Triggers: []string{"xayr", "hayr", "goodbye", "bye", "пока", "до свидания"},
			Replies: map[Lang]string{
				LangUZ: "Xayr! Sizni kutib qolamiz 😊",
				LangRU: "До свидания! Будем рады видеть вас снова 😊",
				LangEN: "Goodbye! We hope to see you again 😊",
			},
		},
		{
			Name:     "thanks",
			Triggers: []string{"rahmat", "raxmat", "рахмат", "спасибо", "thank you", "thanks"},
			Replies: map[Lang]string{
				LangUZ: "Arzimaydi 😊 Yana savollaringiz bo'lsa, yozing.",
				LangRU: "Не за что 😊 Пишите, если будут ещё вопросы.",
				LangEN: "You're welcome 😊 Feel free to ask more questions.",
			},
		},
		{
			Name: "authorship",
			Triggers: []string{
				"seni kim yaratgan", "sani kim yaratgan", "seni kim tuzgan",
				"sani kim tuzgan", "kim san", "kim sen", "who made you",
				"who created you", "кто тебя создал",
			},
			Replies: map[Lang]string{
				LangUZ: "Men asalarichilik bo'yicha yordamchi botman, Apiary Lab jamoasi tomonidan yaratilganman 🐝",
				LangRU: "Я бот-помощник по пчеловодству, созданный командой Apiary Lab 🐝",
				LangEN: "I am a beekeeping assistant bot built by the Apiary Lab team 🐝",
			},
		},
		{
			Name:     "contact",
			Triggers: []string{"aloqa", "qanday aloqaga chiqamiz", "contact", "how to contact", "связаться"},
			Replies: map[Lang]string{
				LangUZ: "Aloqa uchun: support@apiarylab.example 📞",
				LangRU: "Для связи: support@apiarylab.example 📞",
				LangEN: "Contact us: support@apiarylab.example 📞",
			},
		},
	}
}
