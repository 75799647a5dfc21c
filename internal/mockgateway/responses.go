package mockgateway

import (
	"strings"
)

type section struct {
	emoji string
	title string
	body  string
}

// Compose builds a five-section answer for message from keyword rules. The
// result is deterministic for a given message.
func Compose(message string) string {
	lower := strings.ToLower(message)

	sections := []section{
		{"🌿", "Dosha Insight", doshaInsight(lower)},
		{"🌅", "Daily Routine (Dinacharya)", dinacharyaAdvice(lower)},
		{"🍵", "Diet Guidance", dietAdvice(lower)},
		{"🌱", "Herbal Information", herbalInfo(lower)},
		{"🧘", "Mind & Stress Management", mindAdvice(lower)},
	}

	var b strings.Builder
	b.WriteString(greeting(lower))
	for _, s := range sections {
		b.WriteString("\n\n")
		b.WriteString(s.emoji)
		b.WriteString(" **")
		b.WriteString(s.title)
		b.WriteString("**\n")
		b.WriteString(s.body)
	}
	b.WriteString("\n\n*Please consult a qualified Ayurvedic practitioner for personalized advice.*")
	return b.String()
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func greeting(msg string) string {
	switch {
	case containsAny(msg, "stress", "anxiety"):
		return "Namaste 🙏 I understand you're experiencing stress. Let me share some Ayurvedic wisdom to help restore your inner balance."
	case containsAny(msg, "sleep", "insomnia"):
		return "Namaste 🙏 Rest is essential for wellness. Here are some Ayurvedic insights to help improve your sleep quality."
	case containsAny(msg, "digest", "stomach", "bloat"):
		return "Namaste 🙏 Digestive health is the cornerstone of Ayurveda. Let me guide you with some traditional wisdom."
	default:
		return "Namaste 🙏 Thank you for sharing. Based on Ayurvedic principles, here are some personalized wellness insights for you."
	}
}

func doshaInsight(msg string) string {
	switch {
	case containsAny(msg, "hot", "anger", "acid"):
		return "Your symptoms suggest a Pitta imbalance. Pitta governs transformation and metabolism. When elevated, it can cause heat, irritation, and inflammation. Focus on cooling and calming practices."
	case containsAny(msg, "cold", "dry", "anxious", "restless"):
		return "Your description indicates possible Vata imbalance. Vata governs movement and creativity. When disturbed, it can cause anxiety, dryness, and restlessness. Grounding and warming practices will help."
	default:
		return "Based on your description, there may be a Kapha imbalance. Kapha provides structure and stability. When excessive, it can lead to heaviness and sluggishness. Invigorating and lightening practices are recommended."
	}
}

func dinacharyaAdvice(msg string) string {
	switch {
	case strings.Contains(msg, "sleep"):
		return "Try to sleep before 10 PM when Kapha energy supports deep rest. Wake with the sun (around 6 AM). Practice abhyanga (self-massage) with warm sesame oil before bathing to calm the nervous system."
	case containsAny(msg, "morning", "routine"):
		return "Start your day with warm water and lemon. Practice tongue scraping (jihwa prakshalana) to remove ama (toxins). Dedicate 15-20 minutes to gentle yoga or pranayama before breakfast."
	default:
		return "Establish regular meal times: breakfast by 8 AM, lunch (largest meal) between 12-1 PM, and light dinner by 7 PM. Take a short walk after meals to aid digestion. Wind down by 9 PM."
	}
}

func dietAdvice(msg string) string {
	switch {
	case containsAny(msg, "digest", "bloat"):
		return "Favor warm, cooked foods over raw. Include digestive spices like ginger, cumin, and fennel in your meals. Sip warm water or CCF tea (cumin, coriander, fennel) throughout the day. Avoid cold drinks with meals."
	case containsAny(msg, "energy", "tired"):
		return "Include iron-rich foods like dates, raisins, and green leafy vegetables. Prepare warm, nourishing meals with ghee. Avoid heavy, fried foods. Consider golden milk (turmeric milk) before bed."
	default:
		return "Eat fresh, seasonal, and locally grown foods when possible. Include all six tastes (sweet, sour, salty, bitter, pungent, astringent) in your meals for balance. Eat mindfully, without distractions."
	}
}

func herbalInfo(msg string) string {
	switch {
	case containsAny(msg, "stress", "anxi"):
		return "Ashwagandha is traditionally used as an adaptogen to support stress resilience. Brahmi may support mental clarity. These herbs are for educational purposes only. Consult an Ayurvedic practitioner before use."
	case strings.Contains(msg, "sleep"):
		return "Jatamansi and Tagara are traditionally used to promote restful sleep. Warm milk with nutmeg and cardamom before bed is a gentle sleep support. Always consult a practitioner before using herbs."
	default:
		return "Triphala is a classic Ayurvedic formulation that supports digestive health and gentle detoxification. Tulsi (Holy Basil) tea is widely used for its calming and immune-supporting properties. Consult a practitioner for personalized recommendations."
	}
}

func mindAdvice(msg string) string {
	if containsAny(msg, "stress", "anxi") {
		return "Practice Nadi Shodhana (alternate nostril breathing) for 5-10 minutes daily to balance the nervous system. Consider Yoga Nidra for deep relaxation. Limit screen time, especially before bed. Spend time in nature."
	}
	return "Begin each day with 10 minutes of meditation or pranayama. Practice gratitude before sleep. Engage in activities that bring joy (Ananda). Consider journaling to process emotions. Connect with loved ones regularly."
}

// Chunk splits text into fragments of roughly size words, keeping the
// separating whitespace so the fragments concatenate back to text.
func Chunk(text string, size int) []string {
	if size <= 0 {
		size = 1
	}

	var chunks []string
	var b strings.Builder
	words := 0
	inWord := false
	for _, r := range text {
		isSpace := r == ' ' || r == '\n' || r == '\t'
		if !isSpace && !inWord {
			if words == size {
				chunks = append(chunks, b.String())
				b.Reset()
				words = 0
			}
			words++
		}
		inWord = !isSpace
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}
