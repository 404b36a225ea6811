package bot

import "github.com/apiarylab/apiary-agent/smalltalk"

// Fixed replies for the three "no content" outcomes, per language. Each is a
// deliberate, user-visible result, not an error dressed up as an answer.
var (
	outOfDomainReplies = map[smalltalk.Lang]string{
		smalltalk.LangUZ: "🐝 Bu bot faqat asalarichilik bo'yicha savollarga javob beradi.",
		smalltalk.LangRU: "🐝 Этот бот отвечает только на вопросы о пчеловодстве.",
		smalltalk.LangEN: "🐝 This bot only answers beekeeping questions.",
	}

	noContextReplies = map[smalltalk.Lang]string{
		smalltalk.LangUZ: "❌ Ma'lumot topilmadi.",
		smalltalk.LangRU: "❌ Информация не найдена.",
		smalltalk.LangEN: "❌ No information found.",
	}

	indexUnavailableReplies = map[smalltalk.Lang]string{
		smalltalk.LangUZ: "⏳ Bilimlar bazasi hali tayyor emas. Birozdan so'ng qayta urinib ko'ring.",
		smalltalk.LangRU: "⏳ База знаний ещё не готова. Попробуйте чуть позже.",
		smalltalk.LangEN: "⏳ The knowledge base is not ready yet. Please try again shortly.",
	}
)

func reply(table map[smalltalk.Lang]string, lang smalltalk.Lang) string {
	if text, ok := table[lang]; ok {
		return text
	}
	return table[smalltalk.LangUZ]
}
