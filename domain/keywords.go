package domain

// The table unions Uzbek, Russian and English terms, including loanwords and
// frequent misspellings ("qandi"/"kandi", "varroa"/"varoa"). False positives
// from short stems are an accepted cost of recall.
func defaultTopics() []topicKeywords {
	return []topicKeywords{
		{
			topic: TopicGeneral,
			keywords: []string{
				// Uzbek
				"ari", "arilar", "asalari", "asalarim", "asalarilarim",
				"asalarichilik", "asalarichi", "ari oilasi", "ari uyasi",
				"ari zoti", "ari pashsha",
				// Russian
				"пчел", "пчёл", "пчеловод", "пасек", "улей", "улья", "рой",
				"роени", "взяток", "медонос",
				// English
				"bee", "bees", "beekeep", "beekeeping", "apiary", "apiarist",
				"colony", "colonies", "swarm", "forage", "nectar", "pollen",
			},
		},
		{
			topic: TopicHealth,
			keywords: []string{
				"varroa", "varoa", "варроа", "вароа", "kana", "ari kanasi",
				"nosema", "нозем", "nozema", "akarapidoz", "акарапидоз",
				"ich ketishi", "asalari ich ketishi", "kasallik", "kasalligi",
				"болезн", "лечени", "клещ", "гнилец", "аскосфероз",
				"foulbrood", "chalkbrood", "mite", "mites", "disease",
				"treatment", "oxalic", "formic", "amitraz", "bipin", "бипин",
			},
		},
		{
			topic: TopicFeeding,
			keywords: []string{
				"ozuqa", "oziqlantirish", "qishki ozuqa", "qandi", "kandi",
				"qand sharbati", "shakar sharbati", "sirop", "сироп",
				"подкормк", "кормлени", "канди", "сахарн",
				"feeding", "feed", "syrup", "sugar", "candy board", "fondant",
				"pollen patty", "substitute",
			},
		},
		{
			topic: TopicQueen,
			keywords: []string{
				"ona ari", "qirolicha", "ishchi ari", "erkak ari", "truten",
				"ona arisiz", "ona bola",
				"матк", "маточник", "трутень", "трутн", "пчеломатк",
				"queen", "drone", "worker bee", "virgin queen", "requeen",
				"grafting", "queen cell", "nuc", "nuklius", "нуклеус",
			},
		},
		{
			topic: TopicHive,
			keywords: []string{
				"uya", "ari uyasi", "ramka", "ramkalar", "asalari uyasi",
				"katak", "mum asos",
				"рамк", "корпус", "дадан", "рут", "лежак", "вощин", "соты",
				"hive", "frame", "frames", "super", "brood box", "foundation",
				"langstroth", "dadant", "comb", "honeycomb",
			},
		},
		{
			topic: TopicProducts,
			keywords: []string{
				"asal", "mum", "propolis", "perga", "gulchang", "ari sutit",
				"ari suti", "zahar",
				"мед", "мёд", "воск", "прополис", "перга", "пыльц",
				"маточное молочко", "забрус",
				"honey", "beeswax", "royal jelly", "bee bread", "extraction",
				"harvest", "uncapping",
			},
		},
		{
			topic: TopicWintering,
			keywords: []string{
				"qishlash", "qishlov", "qishga tayyorlash", "qishki",
				"зимовк", "зимован", "омшаник", "утеплени", "клуб пчел",
				"wintering", "overwinter", "winter cluster", "insulation",
				"winterizing",
			},
		},
	}
}
