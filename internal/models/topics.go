package models

// Topic is a pre-set question offered on the welcome screen.
type Topic struct {
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

// HealthTopics are the starter topics shown before the first message.
var HealthTopics = []Topic{
	{Label: "COVID-19", Prompt: "Tell me about COVID-19 symptoms and prevention"},
	{Label: "Heart Health", Prompt: "What are common heart disease risk factors?"},
	{Label: "Vaccination", Prompt: "Why are vaccinations important?"},
	{Label: "Mental Health", Prompt: "How can I maintain good mental health?"},
}

// TopicByIndex returns the topic at a 1-based position.
func TopicByIndex(n int) (Topic, bool) {
	if n < 1 || n > len(HealthTopics) {
		return Topic{}, false
	}
	return HealthTopics[n-1], true
}
