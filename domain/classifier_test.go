package domain

import "testing"

func TestIsInDomainMatchesAcrossLanguages(t *testing.T) {
	c := NewClassifier()

	inDomain := []string{
		"Asalarichilik bilan shug'ullanmoqchiman",
		"qishki ozuqa qanday tayyorlanadi",
		"Как лечить пчёл от варроатоза?",
		"How do I requeen a colony in autumn?",
		"ona ari qartayib qolsa nima qilish kerak",
	}
	for _, text := range inDomain {
		if !c.IsInDomain(text) {
			t.Fatalf("expected in-domain: %q", text)
		}
	}

	outOfDomain := []string{
		"what is the weather today",
		"Какой курс доллара?",
		"bugun futbol o'yini soat nechada",
	}
	for _, text := range outOfDomain {
		if c.IsInDomain(text) {
			t.Fatalf("expected out-of-domain: %q", text)
		}
	}
}

func TestIsInDomainSubstringInsideLongerWord(t *testing.T) {
	c := NewClassifier()

	// Agglutinative suffixes must not defeat the match.
	if !c.IsInDomain("ASALARILARIMGA nima beray?") {
		t.Fatal("expected stem match inside a suffixed word")
	}
}

func TestIsInDomainEmptyInput(t *testing.T) {
	c := NewClassifier()
	if c.IsInDomain("") {
		t.Fatal("empty input must be out of domain")
	}
	if c.IsInDomain("   \t\n") {
		t.Fatal("whitespace-only input must be out of domain")
	}
}

func TestIsInDomainDeterministic(t *testing.T) {
	c := NewClassifier()
	text := "варроа клещ на рамке"
	first := c.IsInDomain(text)
	for i := 0; i < 100; i++ {
		if c.IsInDomain(text) != first {
			t.Fatal("classification must be deterministic")
		}
	}
}

func TestClassifyTopic(t *testing.T) {
	c := NewClassifier()

	cases := []struct {
		text  string
		topic Topic
	}{
		{"how to treat varroa mites", TopicHealth},
		{"qishki ozuqa uchun qandi tayyorlash", TopicFeeding},
		{"Пора ли менять матку?", TopicQueen},
		{"arilar uchib ketdi", TopicGeneral},
	}
	for _, tc := range cases {
		topic, ok := c.ClassifyTopic(tc.text)
		if !ok {
			t.Fatalf("expected in-domain: %q", tc.text)
		}
		if topic != tc.topic {
			t.Fatalf("topic for %q: got %s, want %s", tc.text, topic, tc.topic)
		}
	}

	if _, ok := c.ClassifyTopic("completely unrelated sentence about cars"); ok {
		t.Fatal("expected no topic for out-of-domain text")
	}
}
