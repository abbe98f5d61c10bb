package quiz

// Catalog lists the built-in topics offered on the topic selection screen.
var Catalog = []Topic{
	{ID: "wellness", Name: "Wellness"},
	{ID: "tech", Name: "Tech Trends"},
	{ID: "history", Name: "History"},
	{ID: "science", Name: "Science"},
	{ID: "geography", Name: "Geography"},
	{ID: "arts", Name: "Arts & Culture"},
}

// LookupTopic finds a catalogue topic by id.
func LookupTopic(id string) (Topic, bool) {
	for _, t := range Catalog {
		if t.ID == id {
			return t, true
		}
	}
	return Topic{}, false
}
